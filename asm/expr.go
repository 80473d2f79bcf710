// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Parse an .equ constant definition: `.equ NAME, expression`. The
// expression is evaluated immediately with all previously defined
// equates in scope, so constants are usable anywhere an immediate
// literal is.
func (a *assembler) parseEquate(line fstring, param any) error {
	name, remain := line.consumeWhile(labelChar)
	if name.isEmpty() || !name.startsWith(labelStartChar) {
		a.addError(line, "invalid equate name '%s'", line.str)
		return errParse
	}
	if _, found := a.constants[name.str]; found {
		a.addErrorKind(errKindDuplicateSym, name, "constant '%s' defined more than once", name.str)
		return errParse
	}

	remain = remain.consumeWhitespace()
	if remain.startsWithChar(',') {
		remain = remain.consume(1).consumeWhitespace()
	}
	if remain.isEmpty() {
		a.addError(line, "equate '%s' is missing a value", name.str)
		return errParse
	}

	v, err := evalConstExpr(remain.str, a.constants)
	if err != nil {
		a.addError(remain, "cannot evaluate equate '%s': %v", name.str, err)
		return errParse
	}

	a.logLine(name, "equate=%s val=$%X", name.str, v)
	a.constants[name.str] = v
	return nil
}

// Eval evaluates a constant arithmetic expression with the given named
// values in scope. Used by interactive tooling to evaluate expressions
// over a program's symbol table.
func Eval(src string, values map[string]int64) (int64, error) {
	return evalConstExpr(src, values)
}

// evalConstExpr evaluates a constant arithmetic expression with the
// given named constants predeclared.
func evalConstExpr(src string, consts map[string]int64) (int64, error) {
	predeclared := make(starlark.StringDict, len(consts))
	for name, v := range consts {
		predeclared[name] = starlark.MakeInt64(v)
	}

	var thread starlark.Thread
	var opts syntax.FileOptions
	globals, err := starlark.ExecFileOptions(&opts, &thread, "equ", "rc = "+src, predeclared)
	if err != nil {
		return 0, err
	}

	rc, ok := globals["rc"].(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("expression does not produce an integer")
	}
	v, ok := rc.Int64()
	if !ok {
		return 0, fmt.Errorf("expression value does not fit in 64 bits")
	}
	return v, nil
}
