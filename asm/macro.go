// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// macroMaxDepth bounds macro expansion nesting so that a
// self-referencing macro cannot expand forever.
const macroMaxDepth = 16

// A macro is a registered macro definition: its formal parameter list
// and its body, captured as raw source lines between .macro and
// .end_macro. Each invocation substitutes actual argument text for the
// formals and re-parses the body, so expansions never share state.
type macro struct {
	name   string
	decl   fstring // the .macro line, for diagnostics
	params []string
	body   []fstring
}

// Parse a .macro directive and begin capturing the macro body.
func (a *assembler) parseMacroStart(line fstring, param any) error {
	name, remain := line.consumeWhile(labelChar)
	if name.isEmpty() || !name.startsWith(labelStartChar) {
		a.addError(line, "invalid macro name '%s'", line.str)
		return errParse
	}
	if _, found := a.macros[name.str]; found {
		a.addError(name, "macro '%s' defined more than once", name.str)
		return errParse
	}

	params, err := a.parseMacroParams(name, remain)
	if err != nil {
		return err
	}

	a.logLine(name, "macro=%s params=%d", name.str, len(params))
	a.capture = &macro{name: name.str, decl: name, params: params}
	return nil
}

// Parse a macro's formal parameter list, either parenthesized and
// attached to the name or separated from it by whitespace.
func (a *assembler) parseMacroParams(name, remain fstring) ([]string, error) {
	list := remain.trim()
	if list.startsWithChar('(') {
		if !list.endsWithChar(')') {
			a.addError(list, "unterminated macro parameter list")
			return nil, errParse
		}
		list = list.consume(1)
		list = list.trunc(len(list.str) - 1)
	}

	var params []string
	for remain := list; !remain.isEmpty(); {
		var p fstring
		p, remain = remain.consumeUntilChar(',')
		if !remain.isEmpty() {
			remain = remain.consume(1)
		}
		p = p.trim()
		if !p.startsWith(labelStartChar) || p.scanWhile(labelChar) != len(p.str) {
			a.addError(p, "invalid macro parameter '%s'", p.str)
			return nil, errParse
		}
		params = append(params, p.str)
	}
	return params, nil
}

// Stash one line of a macro body until the closing .end_macro.
func (a *assembler) captureMacroLine(line fstring) error {
	word := line.trim()
	first := word.str
	if i := strings.IndexAny(first, " \t("); i >= 0 {
		first = first[:i]
	}
	switch strings.ToLower(first) {
	case ".end_macro":
		a.macros[a.capture.name] = a.capture
		a.logLine(a.capture.decl, "macro=%s lines=%d", a.capture.name, len(a.capture.body))
		a.capture = nil
		return nil
	case ".macro":
		a.addError(word, "nested macro definition")
		return errParse
	}
	if !word.isEmpty() {
		a.capture.body = append(a.capture.body, line)
	}
	return nil
}

// Parse a stray .end_macro with no matching .macro.
func (a *assembler) parseMacroEnd(line fstring, param any) error {
	a.addError(line, ".end_macro without .macro")
	return errParse
}

// Parse a macro invocation and expand it in place. The argument list
// follows the macro name, parenthesized or bare.
func (a *assembler) parseMacroCall(name, argline fstring) error {
	m, found := a.macros[name.str]
	if !found {
		a.addErrorKind(errKindUndefinedMacro, name, "macro '%s' is not defined", name.str)
		return errParse
	}

	args, err := a.parseMacroArgs(argline)
	if err != nil {
		return err
	}
	if len(args) != len(m.params) {
		a.addError(name, "macro '%s' expects %d argument(s), got %d", m.name, len(m.params), len(args))
		return errParse
	}

	if a.macroDepth >= macroMaxDepth {
		a.addErrorKind(errKindMacroRecursion, name, "macro expansion nested deeper than %d", macroMaxDepth)
		return errParse
	}

	a.logLine(name, "expand=%s", m.name)
	a.macroDepth++
	defer func() { a.macroDepth-- }()

	for _, bl := range m.body {
		expanded := substituteFormals(bl.str, m.params, args)
		if err := a.parseLine(bl.withText(expanded)); err != nil {
			return err
		}
	}
	return nil
}

// Parse a macro invocation's actual argument list into raw argument
// text strings.
func (a *assembler) parseMacroArgs(argline fstring) ([]string, error) {
	list := argline.trim()
	if list.startsWithChar('(') {
		if !list.endsWithChar(')') {
			a.addError(list, "unterminated macro argument list")
			return nil, errParse
		}
		list = list.consume(1)
		list = list.trunc(len(list.str) - 1)
	}

	var args []string
	for remain := list; !remain.isEmpty(); {
		var arg fstring
		arg, remain = remain.consumeUntilUnquotedChar(',')
		if !remain.isEmpty() {
			remain = remain.consume(1)
		}
		arg = arg.trim()
		if arg.isEmpty() {
			a.addError(remain, "empty macro argument")
			return nil, errParse
		}
		args = append(args, arg.str)
	}
	return args, nil
}

// substituteFormals replaces each occurrence of a formal parameter
// name, bare or backslash-escaped, with the corresponding actual
// argument text.
func substituteFormals(s string, params, args []string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		j, escaped := i, false
		if s[i] == '\\' && i+1 < len(s) && labelStartChar(s[i+1]) {
			j, escaped = i+1, true
		}
		if labelStartChar(s[j]) && (j == 0 || escaped || !labelChar(s[j-1])) {
			k := j
			for k < len(s) && labelChar(s[k]) {
				k++
			}
			word := s[j:k]
			if idx := paramIndex(params, word); idx >= 0 {
				b.WriteString(args[idx])
				i = k
				continue
			}
			if escaped {
				b.WriteByte('\\')
			}
			b.WriteString(word)
			i = k
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func paramIndex(params []string, name string) int {
	for i, p := range params {
		if p == name {
			return i
		}
	}
	return -1
}
