// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "github.com/minisys/masm/isa"

// isValue reports whether the operand carries a resolved numeric
// value: an immediate literal, an equate or a resolved symbol.
func (o *operand) isValue() bool {
	return o.class == opImm || o.class == opSym
}

// branchTarget returns the operand's value as a branch displacement
// relative to pc. A symbol operand resolves to an absolute address and
// yields a delta; a numeric operand is taken as a literal displacement.
func (o *operand) branchTarget(pc int) int64 {
	if o.isAddr {
		return o.val - int64(pc)
	}
	return o.val
}

// encodeInstruction packs one canonical instruction and its resolved
// operands into a 32-bit word.
func (a *assembler) encodeInstruction(s *instruction) (uint32, error) {
	inst := a.instSet.Lookup(s.mnemonic.str)
	if inst == nil {
		a.addErrorKind(errKindUnknownInst, s.mnemonic, "instruction '%s' is not recognized", s.mnemonic.str)
		return 0, errParse
	}
	s.inst = inst

	ops := s.operands
	switch inst.Format {

	case isa.FormatR:
		if !a.wantOperands(s, opReg, opReg, opReg) {
			return 0, errParse
		}
		return inst.Funct7<<25 | ops[2].reg<<20 | ops[1].reg<<15 |
			inst.Funct3<<12 | ops[0].reg<<7 | inst.Opcode, nil

	case isa.FormatI:
		if len(ops) != 3 || ops[0].class != opReg || ops[1].class != opReg || !ops[2].isValue() {
			return 0, a.operandError(s)
		}
		imm, err := a.checkImm(ops[2], 12)
		if err != nil {
			return 0, err
		}
		return imm<<20 | ops[1].reg<<15 | inst.Funct3<<12 | ops[0].reg<<7 | inst.Opcode, nil

	case isa.FormatIShift:
		if len(ops) != 3 || ops[0].class != opReg || ops[1].class != opReg || !ops[2].isValue() {
			return 0, a.operandError(s)
		}
		if ops[2].val < 0 || ops[2].val > 31 {
			a.addErrorKind(errKindOutOfRange, ops[2].text, "shift amount %d is not in 0..31", ops[2].val)
			return 0, errParse
		}
		return inst.Funct7<<25 | uint32(ops[2].val)<<20 | ops[1].reg<<15 |
			inst.Funct3<<12 | ops[0].reg<<7 | inst.Opcode, nil

	case isa.FormatLoad:
		if !a.memShape(s) {
			return 0, a.operandError(s)
		}
		rs1, imm, err := a.memField(ops[1])
		if err != nil {
			return 0, err
		}
		return imm<<20 | rs1<<15 | inst.Funct3<<12 | ops[0].reg<<7 | inst.Opcode, nil

	case isa.FormatStore:
		if !a.memShape(s) {
			return 0, a.operandError(s)
		}
		rs1, imm, err := a.memField(ops[1])
		if err != nil {
			return 0, err
		}
		return (imm>>5)<<25 | ops[0].reg<<20 | rs1<<15 | inst.Funct3<<12 |
			(imm&0x1F)<<7 | inst.Opcode, nil

	case isa.FormatBranch:
		if len(ops) != 3 || ops[0].class != opReg || ops[1].class != opReg || !ops[2].isValue() {
			return 0, a.operandError(s)
		}
		ofs := ops[2].branchTarget(s.addr)
		if ofs < -4096 || ofs > 4094 || ofs&1 != 0 {
			a.addErrorKind(errKindOutOfRange, ops[2].text, "branch target offset %d is out of range", ofs)
			return 0, errParse
		}
		u := uint32(ofs) & 0x1FFF
		return (u>>12)<<31 | ((u>>5)&0x3F)<<25 | ops[1].reg<<20 | ops[0].reg<<15 |
			inst.Funct3<<12 | ((u>>1)&0xF)<<8 | ((u>>11)&1)<<7 | inst.Opcode, nil

	case isa.FormatU:
		if len(ops) != 2 || ops[0].class != opReg || !ops[1].isValue() {
			return 0, a.operandError(s)
		}
		imm, err := a.checkImm(ops[1], 20)
		if err != nil {
			return 0, err
		}
		return imm<<12 | ops[0].reg<<7 | inst.Opcode, nil

	case isa.FormatJ:
		// jal rd, target; plain "jal target" links through ra.
		var rd uint32
		var target *operand
		switch {
		case len(ops) == 2 && ops[0].class == opReg && ops[1].isValue():
			rd, target = ops[0].reg, &ops[1]
		case len(ops) == 1 && ops[0].isValue():
			rd, target = 1, &ops[0]
		default:
			return 0, a.operandError(s)
		}
		ofs := target.branchTarget(s.addr)
		if ofs < -(1<<20) || ofs >= 1<<20 || ofs&1 != 0 {
			a.addErrorKind(errKindOutOfRange, target.text, "jump target offset %d is out of range", ofs)
			return 0, errParse
		}
		u := uint32(ofs) & 0x1FFFFF
		return (u>>20)<<31 | ((u>>1)&0x3FF)<<21 | ((u>>11)&1)<<20 |
			((u>>12)&0xFF)<<12 | rd<<7 | inst.Opcode, nil

	case isa.FormatJalr:
		if len(ops) != 3 || ops[0].class != opReg || ops[1].class != opReg || !ops[2].isValue() {
			return 0, a.operandError(s)
		}
		imm, err := a.checkImm(ops[2], 12)
		if err != nil {
			return 0, err
		}
		return imm<<20 | ops[1].reg<<15 | inst.Funct3<<12 | ops[0].reg<<7 | inst.Opcode, nil

	case isa.FormatSystem:
		if len(ops) != 0 {
			return 0, a.operandError(s)
		}
		return inst.Funct7<<20 | inst.Opcode, nil

	case isa.FormatMR:
		if !a.wantOperands(s, opReg, opReg, opReg) {
			return 0, errParse
		}
		return inst.Opcode<<26 | ops[1].reg<<21 | ops[2].reg<<16 |
			ops[0].reg<<11 | inst.Funct7, nil

	case isa.FormatMShift:
		if len(ops) != 3 || ops[0].class != opReg || ops[1].class != opReg || !ops[2].isValue() {
			return 0, a.operandError(s)
		}
		if ops[2].val < 0 || ops[2].val > 31 {
			a.addErrorKind(errKindOutOfRange, ops[2].text, "shift amount %d is not in 0..31", ops[2].val)
			return 0, errParse
		}
		return inst.Opcode<<26 | ops[1].reg<<16 | ops[0].reg<<11 |
			uint32(ops[2].val)<<6 | inst.Funct7, nil

	case isa.FormatMJumpReg:
		if !a.wantOperands(s, opReg) {
			return 0, errParse
		}
		return inst.Opcode<<26 | ops[0].reg<<21 | inst.Funct7, nil

	case isa.FormatMI:
		if len(ops) != 3 || ops[0].class != opReg || ops[1].class != opReg || !ops[2].isValue() {
			return 0, a.operandError(s)
		}
		imm, err := a.checkImm(ops[2], 16)
		if err != nil {
			return 0, err
		}
		return inst.Opcode<<26 | ops[1].reg<<21 | ops[0].reg<<16 | imm, nil

	case isa.FormatMLoad, isa.FormatMStore:
		if !a.memShape(s) {
			return 0, a.operandError(s)
		}
		rs, imm, err := a.memField(ops[1])
		if err != nil {
			return 0, err
		}
		return inst.Opcode<<26 | rs<<21 | ops[0].reg<<16 | imm, nil

	case isa.FormatMBranch:
		if len(ops) != 3 || ops[0].class != opReg || ops[1].class != opReg || !ops[2].isValue() {
			return 0, a.operandError(s)
		}
		ofs := ops[2].branchTarget(s.addr + 4)
		if ofs&3 != 0 || !immFits(ofs>>2, 16) {
			a.addErrorKind(errKindOutOfRange, ops[2].text, "branch target offset %d is out of range", ofs)
			return 0, errParse
		}
		return inst.Opcode<<26 | ops[0].reg<<21 | ops[1].reg<<16 |
			uint32(ofs>>2)&0xFFFF, nil

	case isa.FormatMLui:
		if len(ops) != 2 || ops[0].class != opReg || !ops[1].isValue() {
			return 0, a.operandError(s)
		}
		imm, err := a.checkImm(ops[1], 16)
		if err != nil {
			return 0, err
		}
		return inst.Opcode<<26 | ops[0].reg<<16 | imm, nil

	case isa.FormatMJump:
		if len(ops) != 1 || !ops[0].isValue() {
			return 0, a.operandError(s)
		}
		if ops[0].val&3 != 0 || ops[0].val < 0 || ops[0].val>>2 >= 1<<26 {
			a.addErrorKind(errKindOutOfRange, ops[0].text, "jump target %d is out of range", ops[0].val)
			return 0, errParse
		}
		return inst.Opcode<<26 | uint32(ops[0].val>>2)&0x3FFFFFF, nil

	case isa.FormatMSystem:
		if len(ops) != 0 {
			return 0, a.operandError(s)
		}
		return inst.Opcode<<26 | inst.Funct7, nil
	}

	a.addErrorKind(errKindUnknownInst, s.mnemonic, "instruction '%s' has no encoder", s.mnemonic.str)
	return 0, errParse
}

func (a *assembler) operandError(s *instruction) error {
	a.addError(s.mnemonic, "invalid operands for '%s'", s.mnemonic.str)
	return errParse
}

// checkImm validates an immediate operand against its field width and
// returns the masked field value.
func (a *assembler) checkImm(o operand, bits uint) (uint32, error) {
	if !immFits(o.val, bits) {
		a.addErrorKind(errKindOutOfRange, o.text, "value %d does not fit in %d bits", o.val, bits)
		return 0, errParse
	}
	return uint32(o.val) & (1<<bits - 1), nil
}

// memShape reports whether a load or store instruction has the
// expected register destination/source plus one memory operand.
func (a *assembler) memShape(s *instruction) bool {
	return len(s.operands) == 2 && s.operands[0].class == opReg &&
		(s.operands[1].class == opMem || s.operands[1].isValue())
}

// memField extracts the base register and offset field of a memory
// operand. A bare symbol or immediate is accepted as an absolute
// address with register zero as the base.
func (a *assembler) memField(o operand) (reg uint32, imm uint32, err error) {
	width := uint(12)
	if a.arch == isa.MIPS32 {
		width = 16
	}

	imm, err = a.checkImm(o, width)
	if o.class == opMem {
		reg = o.reg
	}
	return reg, imm, err
}
