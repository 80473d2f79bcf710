// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a Minisys instruction word
// disassembler.
package disasm

import (
	"fmt"

	"github.com/minisys/masm/isa"
)

// Disassemble the instruction word located at address 'addr'. Return a
// 'line' string representing the disassembled instruction. A word that
// matches no encoding-table entry is rendered as a raw .word
// directive.
func Disassemble(set *isa.InstructionSet, word, addr uint32) (line string) {
	if word == set.Arch.NopWord() {
		return "nop"
	}

	inst := lookup(set, word)
	if inst == nil {
		return fmt.Sprintf(".word 0x%08x", word)
	}

	if set.Arch == isa.MIPS32 {
		return formatMIPS(set.Arch, inst, word, addr)
	}
	return formatRV(set.Arch, inst, word, addr)
}

// lookup scans the instruction table for the entry whose fixed fields
// match the word.
func lookup(set *isa.InstructionSet, word uint32) *isa.Instruction {
	instructions := set.Instructions()
	for i := range instructions {
		if matches(&instructions[i], word) {
			return &instructions[i]
		}
	}
	return nil
}

func matches(inst *isa.Instruction, word uint32) bool {
	switch inst.Format {
	case isa.FormatR:
		return word&0x7F == inst.Opcode && (word>>12)&7 == inst.Funct3 &&
			word>>25 == inst.Funct7
	case isa.FormatIShift:
		return word&0x7F == inst.Opcode && (word>>12)&7 == inst.Funct3 &&
			word>>25 == inst.Funct7
	case isa.FormatI, isa.FormatLoad, isa.FormatStore, isa.FormatBranch, isa.FormatJalr:
		return word&0x7F == inst.Opcode && (word>>12)&7 == inst.Funct3
	case isa.FormatU, isa.FormatJ:
		return word&0x7F == inst.Opcode
	case isa.FormatSystem:
		return word == inst.Funct7<<20|inst.Opcode

	case isa.FormatMR, isa.FormatMJumpReg, isa.FormatMSystem:
		return word>>26 == inst.Opcode && word&0x3F == inst.Funct7
	case isa.FormatMShift:
		return word>>26 == inst.Opcode && word&0x3F == inst.Funct7 &&
			(word>>21)&31 == 0
	case isa.FormatMI, isa.FormatMLoad, isa.FormatMStore, isa.FormatMBranch,
		isa.FormatMLui, isa.FormatMJump:
		return word>>26 == inst.Opcode
	}
	return false
}

// signExtend treats the low 'bits' bits of v as a two's complement
// value.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

func formatRV(arch isa.Architecture, inst *isa.Instruction, word, addr uint32) string {
	rd := arch.RegisterName((word >> 7) & 31)
	rs1 := arch.RegisterName((word >> 15) & 31)
	rs2 := arch.RegisterName((word >> 20) & 31)

	switch inst.Format {
	case isa.FormatR:
		return fmt.Sprintf("%s %s, %s, %s", inst.Name, rd, rs1, rs2)

	case isa.FormatI, isa.FormatJalr:
		imm := signExtend(word>>20, 12)
		return fmt.Sprintf("%s %s, %s, %d", inst.Name, rd, rs1, imm)

	case isa.FormatIShift:
		return fmt.Sprintf("%s %s, %s, %d", inst.Name, rd, rs1, (word>>20)&31)

	case isa.FormatLoad:
		imm := signExtend(word>>20, 12)
		return fmt.Sprintf("%s %s, %d(%s)", inst.Name, rd, imm, rs1)

	case isa.FormatStore:
		imm := signExtend((word>>25)<<5|(word>>7)&31, 12)
		return fmt.Sprintf("%s %s, %d(%s)", inst.Name, rs2, imm, rs1)

	case isa.FormatBranch:
		u := (word>>31)<<12 | ((word>>7)&1)<<11 | ((word>>25)&0x3F)<<5 |
			((word >> 8) & 0xF) << 1
		target := addr + uint32(signExtend(u, 13))
		return fmt.Sprintf("%s %s, %s, 0x%x", inst.Name, rs1, rs2, target)

	case isa.FormatU:
		return fmt.Sprintf("%s %s, 0x%x", inst.Name, rd, word>>12)

	case isa.FormatJ:
		u := (word>>31)<<20 | ((word>>12)&0xFF)<<12 | ((word>>20)&1)<<11 |
			((word >> 21) & 0x3FF) << 1
		target := addr + uint32(signExtend(u, 21))
		return fmt.Sprintf("%s %s, 0x%x", inst.Name, rd, target)

	default:
		return inst.Name
	}
}

func formatMIPS(arch isa.Architecture, inst *isa.Instruction, word, addr uint32) string {
	rs := arch.RegisterName((word >> 21) & 31)
	rt := arch.RegisterName((word >> 16) & 31)
	rd := arch.RegisterName((word >> 11) & 31)

	switch inst.Format {
	case isa.FormatMR:
		return fmt.Sprintf("%s %s, %s, %s", inst.Name, rd, rs, rt)

	case isa.FormatMShift:
		return fmt.Sprintf("%s %s, %s, %d", inst.Name, rd, rt, (word>>6)&31)

	case isa.FormatMJumpReg:
		return fmt.Sprintf("%s %s", inst.Name, rs)

	case isa.FormatMI:
		imm := signExtend(word&0xFFFF, 16)
		return fmt.Sprintf("%s %s, %s, %d", inst.Name, rt, rs, imm)

	case isa.FormatMLoad, isa.FormatMStore:
		imm := signExtend(word&0xFFFF, 16)
		return fmt.Sprintf("%s %s, %d(%s)", inst.Name, rt, imm, rs)

	case isa.FormatMBranch:
		ofs := signExtend(word&0xFFFF, 16) << 2
		return fmt.Sprintf("%s %s, %s, 0x%x", inst.Name, rs, rt, addr+4+uint32(ofs))

	case isa.FormatMLui:
		return fmt.Sprintf("%s %s, 0x%x", inst.Name, rt, word&0xFFFF)

	case isa.FormatMJump:
		return fmt.Sprintf("%s 0x%x", inst.Name, (word&0x3FFFFFF)<<2)

	default:
		return inst.Name
	}
}
