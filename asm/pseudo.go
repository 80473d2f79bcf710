// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "github.com/minisys/masm/isa"

// Pseudo-instruction tables. Each entry rewrites one convenience
// mnemonic into one or more canonical instructions. Mnemonics not
// listed here pass through to instruction matching untouched.

type pseudoFn func(a *assembler, s *instruction) ([]*instruction, error)

var rv32Pseudo = map[string]pseudoFn{
	"nop":  (*assembler).expandNop,
	"mv":   (*assembler).expandMove,
	"li":   (*assembler).expandLoadImm,
	"la":   (*assembler).expandLoadAddr,
	"j":    (*assembler).expandJump,
	"ret":  (*assembler).expandRet,
	"beqz": (*assembler).expandBranchZero,
	"bnez": (*assembler).expandBranchZero,
}

var mips32Pseudo = map[string]pseudoFn{
	"nop":  (*assembler).expandNop,
	"move": (*assembler).expandMove,
	"li":   (*assembler).expandLoadImm,
	"la":   (*assembler).expandLoadAddr,
}

// Rewrite pseudo-instructions into canonical instruction sequences.
// Expansion happens before address assignment, so every canonical
// instruction receives its own sequential word address.
func (a *assembler) expandPseudo() error {
	a.logSection("Expanding pseudo-instructions")

	table := rv32Pseudo
	if a.arch == isa.MIPS32 {
		table = mips32Pseudo
	}

	out := make([]segment, 0, len(a.segments))
	for _, s := range a.segments {
		ss, ok := s.(*instruction)
		if !ok {
			out = append(out, s)
			continue
		}
		fn, ok := table[ss.mnemonic.str]
		if !ok {
			out = append(out, ss)
			continue
		}

		repl, err := fn(a, ss)
		if err != nil {
			return err
		}
		a.logLine(ss.mnemonic, "pseudo=%s words=%d", ss.mnemonic.str, len(repl))
		for _, r := range repl {
			out = append(out, r)
		}
	}
	a.segments = out
	return nil
}

// synth builds a canonical instruction carrying the source position of
// the pseudo-instruction it replaces.
func synth(src *instruction, mnemonic string, ops ...operand) *instruction {
	return &instruction{
		addr:     -1,
		mnemonic: src.mnemonic.withText(mnemonic),
		operands: ops,
	}
}

func regOp(text fstring, n uint32) operand {
	return operand{class: opReg, text: text, reg: n}
}

func immOp(text fstring, v int64) operand {
	return operand{class: opImm, text: text, val: v}
}

func (a *assembler) wantOperands(s *instruction, classes ...opClass) bool {
	if len(s.operands) != len(classes) {
		a.addError(s.mnemonic, "'%s' expects %d operand(s), got %d", s.mnemonic.str, len(classes), len(s.operands))
		return false
	}
	for i, c := range classes {
		if s.operands[i].class != c {
			a.addError(s.operands[i].text, "invalid operand '%s' for '%s'", s.operands[i].text.str, s.mnemonic.str)
			return false
		}
	}
	return true
}

func (a *assembler) expandNop(s *instruction) ([]*instruction, error) {
	if len(s.operands) != 0 {
		a.addError(s.mnemonic, "'nop' takes no operands")
		return nil, errParse
	}
	t := s.mnemonic
	if a.arch == isa.MIPS32 {
		return []*instruction{synth(s, "sll", regOp(t, 0), regOp(t, 0), immOp(t, 0))}, nil
	}
	return []*instruction{synth(s, "addi", regOp(t, 0), regOp(t, 0), immOp(t, 0))}, nil
}

func (a *assembler) expandMove(s *instruction) ([]*instruction, error) {
	if !a.wantOperands(s, opReg, opReg) {
		return nil, errParse
	}
	t := s.mnemonic
	if a.arch == isa.MIPS32 {
		return []*instruction{synth(s, "addu", s.operands[0], s.operands[1], regOp(t, 0))}, nil
	}
	return []*instruction{synth(s, "addi", s.operands[0], s.operands[1], immOp(t, 0))}, nil
}

// Load-immediate: one instruction when the value fits the short
// immediate field, otherwise an upper-immediate load followed by a
// low-half fixup.
func (a *assembler) expandLoadImm(s *instruction) ([]*instruction, error) {
	if len(s.operands) != 2 || s.operands[0].class != opReg {
		a.addError(s.mnemonic, "invalid operands for 'li'")
		return nil, errParse
	}

	val := s.operands[1]
	switch val.class {
	case opImm:
	case opSym:
		// Equates are known before expansion; labels are not valid
		// load-immediate operands.
		c, ok := a.constants[val.sym]
		if !ok {
			a.addErrorKind(errKindUndefinedSym, val.text, "'%s' is not a defined constant", val.sym)
			return nil, errParse
		}
		val = immOp(val.text, c)
	default:
		a.addError(val.text, "invalid operand '%s' for 'li'", val.text.str)
		return nil, errParse
	}

	if !immFits(val.val, 32) {
		a.addErrorKind(errKindOutOfRange, val.text, "value %d does not fit in 32 bits", val.val)
		return nil, errParse
	}

	rd, t := s.operands[0], s.mnemonic
	if a.arch == isa.MIPS32 {
		switch {
		case val.val >= -0x8000 && val.val < 0:
			return []*instruction{synth(s, "addiu", rd, regOp(t, 0), val)}, nil
		case val.val >= 0 && val.val <= 0xFFFF:
			return []*instruction{synth(s, "ori", rd, regOp(t, 0), val)}, nil
		default:
			return []*instruction{
				synth(s, "lui", rd, immOp(t, hiHalf(a.arch, val.val))),
				synth(s, "ori", rd, rd, immOp(t, loHalf(a.arch, val.val))),
			}, nil
		}
	}

	if val.val >= -0x800 && val.val <= 0x7FF {
		return []*instruction{synth(s, "addi", rd, regOp(t, 0), val)}, nil
	}
	return []*instruction{
		synth(s, "lui", rd, immOp(t, hiHalf(a.arch, val.val))),
		synth(s, "addi", rd, rd, immOp(t, loHalf(a.arch, val.val))),
	}, nil
}

// Load-address: upper-immediate load of the symbol's high half, then
// an immediate fixup with the low half. The halves are computed during
// symbol resolution, once addresses are known.
func (a *assembler) expandLoadAddr(s *instruction) ([]*instruction, error) {
	if !a.wantOperands(s, opReg, opSym) {
		return nil, errParse
	}

	rd := s.operands[0]
	hi := s.operands[1]
	lo := s.operands[1]
	hi.part = partHi
	lo.part = partLo

	if a.arch == isa.MIPS32 {
		return []*instruction{
			synth(s, "lui", rd, hi),
			synth(s, "ori", rd, rd, lo),
		}, nil
	}
	return []*instruction{
		synth(s, "lui", rd, hi),
		synth(s, "addi", rd, rd, lo),
	}, nil
}

func (a *assembler) expandJump(s *instruction) ([]*instruction, error) {
	if len(s.operands) != 1 {
		a.addError(s.mnemonic, "'j' expects one operand")
		return nil, errParse
	}
	return []*instruction{synth(s, "jal", regOp(s.mnemonic, 0), s.operands[0])}, nil
}

func (a *assembler) expandRet(s *instruction) ([]*instruction, error) {
	if len(s.operands) != 0 {
		a.addError(s.mnemonic, "'ret' takes no operands")
		return nil, errParse
	}
	t := s.mnemonic
	return []*instruction{synth(s, "jalr", regOp(t, 0), regOp(t, 1), immOp(t, 0))}, nil
}

func (a *assembler) expandBranchZero(s *instruction) ([]*instruction, error) {
	if len(s.operands) != 2 || s.operands[0].class != opReg {
		a.addError(s.mnemonic, "invalid operands for '%s'", s.mnemonic.str)
		return nil, errParse
	}
	target := "beq"
	if s.mnemonic.str == "bnez" {
		target = "bne"
	}
	return []*instruction{synth(s, target, s.operands[0], regOp(s.mnemonic, 0), s.operands[1])}, nil
}
