// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isa describes the Minisys instruction set tables, register
// files and memory layout shared by the assembler, linker and
// disassembler.
package isa

// Architecture selects the instruction set flavor assembled for the
// Minisys core.
type Architecture byte

const (
	// RV32 is the RISC-V flavored Minisys instruction set.
	RV32 Architecture = iota

	// MIPS32 is the MIPS flavored Minisys instruction set.
	MIPS32
)

// ParseArchitecture converts an architecture name from the command line
// into an Architecture value.
func ParseArchitecture(s string) (Architecture, bool) {
	switch s {
	case "rv32", "riscv", "risc-v":
		return RV32, true
	case "mips32", "mips":
		return MIPS32, true
	}
	return RV32, false
}

func (a Architecture) String() string {
	switch a {
	case RV32:
		return "rv32"
	case MIPS32:
		return "mips32"
	}
	return "unknown"
}

// NopWord returns the canonical no-operation word for the architecture.
// The linker fills unoccupied instruction memory with it, and the BIOS
// patch slot must hold it before the jump to main is installed.
func (a Architecture) NopWord() uint32 {
	switch a {
	case RV32:
		return 0x00000013 // addi x0, x0, 0
	default:
		return 0x00000000 // sll $0, $0, 0
	}
}
