// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

// Format describes the operand shape and bit layout of an instruction
// word. The first group covers the RISC-V flavored encodings, the
// second the MIPS flavored ones.
type Format byte

const (
	FormatR      Format = iota // rd, rs1, rs2
	FormatI                    // rd, rs1, imm12
	FormatIShift               // rd, rs1, shamt5
	FormatLoad                 // rd, imm12(rs1)
	FormatStore                // rs2, imm12(rs1)
	FormatBranch               // rs1, rs2, pc-relative offset
	FormatU                    // rd, imm20
	FormatJ                    // rd, pc-relative offset
	FormatJalr                 // rd, rs1, imm12
	FormatSystem               // no operands

	FormatMR       // rd, rs, rt
	FormatMShift   // rd, rt, shamt5
	FormatMJumpReg // rs
	FormatMI       // rt, rs, imm16
	FormatMLoad    // rt, imm16(rs)
	FormatMStore   // rt, imm16(rs)
	FormatMBranch  // rs, rt, pc-relative offset
	FormatMLui     // rt, imm16
	FormatMJump    // absolute target
	FormatMSystem  // no operands
)

// An Instruction describes one machine instruction: its mnemonic, its
// operand format, and the fixed fields of its encoding. For the MIPS
// flavored set, Funct7 holds the 6-bit funct field and Funct3 is
// unused.
type Instruction struct {
	Name   string
	Format Format
	Opcode uint32
	Funct3 uint32
	Funct7 uint32
}

// The RISC-V flavored Minisys instruction set: RV32I plus the M
// extension multiply/divide group.
var rv32Data = []Instruction{
	{"add", FormatR, 0x33, 0, 0x00},
	{"sub", FormatR, 0x33, 0, 0x20},
	{"sll", FormatR, 0x33, 1, 0x00},
	{"slt", FormatR, 0x33, 2, 0x00},
	{"sltu", FormatR, 0x33, 3, 0x00},
	{"xor", FormatR, 0x33, 4, 0x00},
	{"srl", FormatR, 0x33, 5, 0x00},
	{"sra", FormatR, 0x33, 5, 0x20},
	{"or", FormatR, 0x33, 6, 0x00},
	{"and", FormatR, 0x33, 7, 0x00},

	{"mul", FormatR, 0x33, 0, 0x01},
	{"mulh", FormatR, 0x33, 1, 0x01},
	{"mulhsu", FormatR, 0x33, 2, 0x01},
	{"mulhu", FormatR, 0x33, 3, 0x01},
	{"div", FormatR, 0x33, 4, 0x01},
	{"divu", FormatR, 0x33, 5, 0x01},
	{"rem", FormatR, 0x33, 6, 0x01},
	{"remu", FormatR, 0x33, 7, 0x01},

	{"addi", FormatI, 0x13, 0, 0},
	{"slti", FormatI, 0x13, 2, 0},
	{"sltiu", FormatI, 0x13, 3, 0},
	{"xori", FormatI, 0x13, 4, 0},
	{"ori", FormatI, 0x13, 6, 0},
	{"andi", FormatI, 0x13, 7, 0},
	{"slli", FormatIShift, 0x13, 1, 0x00},
	{"srli", FormatIShift, 0x13, 5, 0x00},
	{"srai", FormatIShift, 0x13, 5, 0x20},

	{"lb", FormatLoad, 0x03, 0, 0},
	{"lh", FormatLoad, 0x03, 1, 0},
	{"lw", FormatLoad, 0x03, 2, 0},
	{"lbu", FormatLoad, 0x03, 4, 0},
	{"lhu", FormatLoad, 0x03, 5, 0},

	{"sb", FormatStore, 0x23, 0, 0},
	{"sh", FormatStore, 0x23, 1, 0},
	{"sw", FormatStore, 0x23, 2, 0},

	{"beq", FormatBranch, 0x63, 0, 0},
	{"bne", FormatBranch, 0x63, 1, 0},
	{"blt", FormatBranch, 0x63, 4, 0},
	{"bge", FormatBranch, 0x63, 5, 0},
	{"bltu", FormatBranch, 0x63, 6, 0},
	{"bgeu", FormatBranch, 0x63, 7, 0},

	{"lui", FormatU, 0x37, 0, 0},
	{"auipc", FormatU, 0x17, 0, 0},

	{"jal", FormatJ, 0x6F, 0, 0},
	{"jalr", FormatJalr, 0x67, 0, 0},

	{"ecall", FormatSystem, 0x73, 0, 0x00},
	{"ebreak", FormatSystem, 0x73, 0, 0x01},
}

// The MIPS flavored Minisys instruction set.
var mips32Data = []Instruction{
	{"add", FormatMR, 0x00, 0, 0x20},
	{"addu", FormatMR, 0x00, 0, 0x21},
	{"sub", FormatMR, 0x00, 0, 0x22},
	{"subu", FormatMR, 0x00, 0, 0x23},
	{"and", FormatMR, 0x00, 0, 0x24},
	{"or", FormatMR, 0x00, 0, 0x25},
	{"xor", FormatMR, 0x00, 0, 0x26},
	{"nor", FormatMR, 0x00, 0, 0x27},
	{"slt", FormatMR, 0x00, 0, 0x2A},
	{"sltu", FormatMR, 0x00, 0, 0x2B},

	{"sll", FormatMShift, 0x00, 0, 0x00},
	{"srl", FormatMShift, 0x00, 0, 0x02},
	{"sra", FormatMShift, 0x00, 0, 0x03},

	{"jr", FormatMJumpReg, 0x00, 0, 0x08},

	{"addi", FormatMI, 0x08, 0, 0},
	{"addiu", FormatMI, 0x09, 0, 0},
	{"slti", FormatMI, 0x0A, 0, 0},
	{"sltiu", FormatMI, 0x0B, 0, 0},
	{"andi", FormatMI, 0x0C, 0, 0},
	{"ori", FormatMI, 0x0D, 0, 0},
	{"xori", FormatMI, 0x0E, 0, 0},
	{"lui", FormatMLui, 0x0F, 0, 0},

	{"lb", FormatMLoad, 0x20, 0, 0},
	{"lh", FormatMLoad, 0x21, 0, 0},
	{"lw", FormatMLoad, 0x23, 0, 0},
	{"lbu", FormatMLoad, 0x24, 0, 0},
	{"lhu", FormatMLoad, 0x25, 0, 0},
	{"sb", FormatMStore, 0x28, 0, 0},
	{"sh", FormatMStore, 0x29, 0, 0},
	{"sw", FormatMStore, 0x2B, 0, 0},

	{"beq", FormatMBranch, 0x04, 0, 0},
	{"bne", FormatMBranch, 0x05, 0, 0},

	{"j", FormatMJump, 0x02, 0, 0},
	{"jal", FormatMJump, 0x03, 0, 0},

	{"syscall", FormatMSystem, 0x00, 0, 0x0C},
	{"break", FormatMSystem, 0x00, 0, 0x0D},
}

// An InstructionSet holds all instructions assemblable for one
// architecture, indexed by mnemonic.
type InstructionSet struct {
	Arch         Architecture
	instructions []Instruction
	byName       map[string]*Instruction
}

// Lookup retrieves the instruction with the requested mnemonic, or nil
// if the architecture has no such instruction.
func (s *InstructionSet) Lookup(name string) *Instruction {
	return s.byName[name]
}

// Instructions returns all instructions in the set. The disassembler
// scans this list to invert encodings.
func (s *InstructionSet) Instructions() []Instruction {
	return s.instructions
}

func newInstructionSet(arch Architecture) *InstructionSet {
	set := &InstructionSet{Arch: arch}
	switch arch {
	case RV32:
		set.instructions = rv32Data
	case MIPS32:
		set.instructions = mips32Data
	}

	set.byName = make(map[string]*Instruction, len(set.instructions))
	for i := range set.instructions {
		set.byName[set.instructions[i].Name] = &set.instructions[i]
	}
	return set
}

var instructionSets [2]*InstructionSet

// GetInstructionSet returns the instruction set for the requested
// architecture.
func GetInstructionSet(arch Architecture) *InstructionSet {
	if instructionSets[arch] == nil {
		// Lazy-create the instruction set.
		instructionSets[arch] = newInstructionSet(arch)
	}
	return instructionSets[arch]
}
