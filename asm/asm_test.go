// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/minisys/masm/isa"
)

func assemble(code string) (*Program, error) {
	r := strings.NewReader(code)
	return Assemble(r, "test", isa.RV32, io.Discard, 0)
}

func assembleArch(code string, arch isa.Architecture) (*Program, error) {
	r := strings.NewReader(code)
	return Assemble(r, "test", arch, io.Discard, 0)
}

func wordString(words []uint32) string {
	ss := make([]string, len(words))
	for i, w := range words {
		ss[i] = fmt.Sprintf("%08X", w)
	}
	return strings.Join(ss, " ")
}

func checkASM(t *testing.T, asm string, expected string) {
	t.Helper()
	prog, err := assemble(asm)
	if err != nil {
		t.Error(err)
		for _, e := range prog.Errors {
			t.Error(e)
		}
		return
	}

	s := wordString(prog.Code)
	if s != expected {
		t.Error("code doesn't match expected")
		t.Errorf("got: %s\n", s)
		t.Errorf("exp: %s\n", expected)
	}
}

func checkMIPS(t *testing.T, asm string, expected string) {
	t.Helper()
	prog, err := assembleArch(asm, isa.MIPS32)
	if err != nil {
		t.Error(err)
		for _, e := range prog.Errors {
			t.Error(e)
		}
		return
	}

	s := wordString(prog.Code)
	if s != expected {
		t.Error("code doesn't match expected")
		t.Errorf("got: %s\n", s)
		t.Errorf("exp: %s\n", expected)
	}
}

func checkASMError(t *testing.T, asm string, errPrefix string) {
	t.Helper()
	prog, err := assemble(asm)
	if err == nil {
		t.Errorf("Expected error on %s, didn't get one\n", asm)
		return
	}
	if len(prog.Errors) == 0 {
		t.Errorf("Expected error detail on %s, got none\n", asm)
		return
	}
	if !strings.HasPrefix(prog.Errors[0], errPrefix) {
		t.Errorf("Expected '%s...', got '%s'\n", errPrefix, prog.Errors[0])
	}
}

func TestRegisterRegister(t *testing.T) {
	asm := `
	add x1, x2, x3
	sub x1, x2, x3
	and x1, x2, x3
	or x1, x2, x3
	xor x1, x2, x3
	sll x1, x2, x3
	srl x1, x2, x3
	sra x1, x2, x3
	slt x1, x2, x3
	sltu x1, x2, x3`

	checkASM(t, asm, "003100B3 403100B3 003170B3 003160B3 003140B3 "+
		"003110B3 003150B3 403150B3 003120B3 003130B3")
}

func TestMultiplyDivide(t *testing.T) {
	asm := `
	mul x1, x2, x3
	div x4, x5, x6
	rem x4, x5, x6`

	checkASM(t, asm, "023100B3 0262C233 0262E233")
}

func TestImmediate(t *testing.T) {
	asm := `
	addi x1, x2, -1
	addi x10, x0, 5
	andi x1, x2, 0xFF
	ori x1, x2, 15
	slli x1, x2, 3
	srai x1, x2, 3`

	checkASM(t, asm, "FFF10093 00500513 0FF17093 00F16093 00311093 40315093")
}

func TestRegisterAliases(t *testing.T) {
	// ABI aliases and x-names encode identically.
	a, err := assemble("add ra, sp, gp")
	if err != nil {
		t.Fatal(err)
	}
	b, err := assemble("add x1, x2, x3")
	if err != nil {
		t.Fatal(err)
	}
	if a.Code[0] != b.Code[0] {
		t.Errorf("alias encoding mismatch: %08X != %08X", a.Code[0], b.Code[0])
	}
}

func TestLoadStore(t *testing.T) {
	asm := `
	.data
x:	.word 42
	.text
	lw a0, x
	sw a1, 4(sp)
	lb t0, 0(a0)`

	checkASM(t, asm, "00002503 00B12223 00050283")
}

func TestSystem(t *testing.T) {
	checkASM(t, "ecall", "00000073")
	checkASM(t, "ebreak", "00100073")
	checkASM(t, "nop", "00000013")
}

func TestBranches(t *testing.T) {
	asm := `
loop:	beq x1, x2, loop
	beq x1, x2, target
	nop
target:	bne x1, x2, loop`

	// loop at 0x800, target at 0x80C.
	checkASM(t, asm, "00208063 00208463 00000013 FE209AE3")
}

func TestJumps(t *testing.T) {
	asm := `
	jal ra, target
	nop
target:	jal target
	j target`

	checkASM(t, asm, "008000EF 00000013 000000EF FFDFF06F")
}

func TestLoadImmediate(t *testing.T) {
	asm := `
	li a0, 5
	li a0, -3
	li a0, 0x12345678`

	// 0x12345678: hi20 rounds to 0x12345, lo12 is 0x678.
	checkASM(t, asm, "00500513 FFD00513 12345537 67850513")
}

func TestLoadAddress(t *testing.T) {
	asm := `
	.data
	.space 16
msg:	.asciiz "hi"
	.text
	la a0, msg
	mv a1, a0
	ret`

	// msg is at data address 16.
	checkASM(t, asm, "00000537 01050513 00050593 00008067")
}

func TestForwardDataReference(t *testing.T) {
	asm := `
	.text
	lw a0, counter
	.data
	.space 8
counter: .word 1`

	prog, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	sym, ok := prog.Symbols["counter"]
	if !ok || sym.Addr != 8 || sym.Space != DataSpace {
		t.Errorf("bad symbol: %+v", sym)
	}
	// imm field holds the data address 8.
	if prog.Code[0] != 0x00802503 {
		t.Errorf("got %08X", prog.Code[0])
	}
}

func TestLabelAddresses(t *testing.T) {
	asm := `
main:	nop
	nop
here:	nop`

	prog, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Symbols["main"].Addr != uint32(isa.UserBase) {
		t.Errorf("main at %04X", prog.Symbols["main"].Addr)
	}
	if prog.Symbols["here"].Addr != uint32(isa.UserBase+8) {
		t.Errorf("here at %04X", prog.Symbols["here"].Addr)
	}
}

func TestGlobalDeclarations(t *testing.T) {
	asm := `
	.globl main
main:	nop`

	prog, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Globals) != 1 || prog.Globals[0] != "main" {
		t.Errorf("bad globals: %v", prog.Globals)
	}
}

func TestSameLabelInBothSpaces(t *testing.T) {
	asm := `
	.data
x:	.word 7
	.text
x:	lw a0, x
	beq a0, a0, x`

	// lw resolves x against the data space (address 0), beq against
	// the text space (address 0x800).
	checkASM(t, asm, "00002503 FEA50EE3")

	prog, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	if sym := prog.Symbols["x"]; sym.Space != TextSpace {
		t.Errorf("exported symbol in %v space", sym.Space)
	}
}

func TestDataDirectives(t *testing.T) {
	asm := `
	.data
	.byte 1, 2, -1
	.half 0x1234
	.word 42
	.asciiz "a\tb"
	.space 2`

	prog, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	exp := []byte{1, 2, 0xFF, 0x12, 0x34, 0, 0, 0, 42, 'a', '\t', 'b', 0, 0, 0}
	if len(prog.Data) != len(exp) {
		t.Fatalf("data length %d, expected %d", len(prog.Data), len(exp))
	}
	for i := range exp {
		if prog.Data[i] != exp[i] {
			t.Errorf("data[%d] = %02X, expected %02X", i, prog.Data[i], exp[i])
		}
	}
}

func TestEquates(t *testing.T) {
	asm := `
	.equ SIZE, 8
	.equ DOUBLE, SIZE * 2
	li a0, DOUBLE
	addi a1, a0, SIZE`

	checkASM(t, asm, "01000513 00850593")
}

func TestMacroExpansion(t *testing.T) {
	asm := `
.macro LOAD_TWO(ra_, rb_, val)
	li ra_, val
	li rb_, val
.end_macro
	LOAD_TWO(a0, a1, 7)
	LOAD_TWO a2, a3, 7`

	checkASM(t, asm, "00700513 00700593 00700613 00700693")
}

func TestMacroReferentialTransparency(t *testing.T) {
	asm := `
.macro TWICE(r)
	addi r, r, 1
	addi r, r, 1
.end_macro
	TWICE(a0)
	TWICE(a0)`

	prog, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Code) != 4 {
		t.Fatalf("expected 4 words, got %d", len(prog.Code))
	}
	if prog.Code[0] != prog.Code[2] || prog.Code[1] != prog.Code[3] {
		t.Error("identical invocations produced different code")
	}
}

func TestMacroEscapedFormals(t *testing.T) {
	asm := `
.macro SET(reg, val)
	li \reg, \val
.end_macro
	SET(a0, 9)`

	checkASM(t, asm, "00900513")
}

func TestNestedMacros(t *testing.T) {
	asm := `
.macro INNER(r)
	addi r, r, 1
.end_macro
.macro OUTER(r)
	INNER(r)
	INNER(r)
.end_macro
	OUTER(a0)`

	checkASM(t, asm, "00150513 00150513")
}

func TestIdempotence(t *testing.T) {
	asm := `
	.data
v:	.word 7
	.text
main:	lw a0, v
	li a7, 10
	ecall`

	p1, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := assemble(asm)
	if err != nil {
		t.Fatal(err)
	}
	if wordString(p1.Code) != wordString(p2.Code) {
		t.Error("assembling twice produced different code")
	}
	if string(p1.Data) != string(p2.Data) {
		t.Error("assembling twice produced different data")
	}
}

func TestMIPSInstructions(t *testing.T) {
	asm := `
	add $t0, $t1, $t2
	addi $t0, $t0, 1
	lw $t0, 4($sp)
	sll $zero, $zero, 0
	syscall`

	checkMIPS(t, asm, "012A4020 21080001 8FA80004 00000000 0000000C")
}

func TestMIPSBranchAndJump(t *testing.T) {
	asm := `
	beq $t0, $t1, done
	nop
done:	j done`

	// done is at 0x808; j encodes the absolute word index.
	checkMIPS(t, asm, "11090001 00000000 08000202")
}

func TestErrUndefinedSymbol(t *testing.T) {
	checkASMError(t, "lw a0, nowhere", "Undefined symbol error in 'test' line 1")
}

func TestErrDuplicateSymbol(t *testing.T) {
	asm := `
x:	nop
x:	nop`
	checkASMError(t, asm, "Duplicate symbol error in 'test' line 3")
}

func TestErrUnknownInstruction(t *testing.T) {
	checkASMError(t, "frobnicate a0, a1", "Unknown instruction error in 'test' line 1")
}

func TestErrUnknownRegister(t *testing.T) {
	checkASMError(t, "add x1, x2, x99", "Unknown register error in 'test' line 1")
	checkASMError(t, "lw a0, 0($t0)", "Unknown register error in 'test' line 1")
}

func TestErrOperandOutOfRange(t *testing.T) {
	checkASMError(t, "addi x1, x2, 5000", "Operand out of range error in 'test' line 1")
	checkASMError(t, "\t.data\n\t.byte 300", "Operand out of range error in 'test' line 2")
}

func TestErrUndefinedMacro(t *testing.T) {
	checkASMError(t, "NO_SUCH_MACRO(a0)", "Undefined macro error in 'test' line 1")
}

func TestErrNestedMacroDefinition(t *testing.T) {
	asm := `
.macro OUTER(r)
.macro INNER(x)
	nop
.end_macro
.end_macro`
	checkASMError(t, asm, "Syntax error in 'test' line 3")
}

func TestErrMacroRecursionLimit(t *testing.T) {
	asm := `
.macro SPIN(r)
	SPIN(r)
.end_macro
	SPIN(a0)`
	checkASMError(t, asm, "Macro recursion limit error in 'test' line 3")
}

func TestErrSyntax(t *testing.T) {
	checkASMError(t, ".bogus 12", "Syntax error in 'test' line 1")
	checkASMError(t, "add x1, x2,", "Syntax error in 'test' line 1")
	checkASMError(t, "\t.data\n\t.asciiz \"open", "Syntax error in 'test' line 2")
}

func TestRegionCapacityBoundary(t *testing.T) {
	capacity := int(isa.UserRegion.Words())

	fits := strings.Repeat("\tnop\n", capacity)
	if _, err := assemble(fits); err != nil {
		t.Errorf("program of exactly %d words failed: %v", capacity, err)
	}

	over := fits + "\tnop\n"
	prog, err := assemble(over)
	if err == nil {
		t.Fatalf("program of %d words assembled", capacity+1)
	}
	if !strings.HasPrefix(prog.Errors[0], "Region overflow") {
		t.Errorf("got '%s'", prog.Errors[0])
	}
}
