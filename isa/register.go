// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

// rv32ABINames lists the RISC-V ABI register aliases in numeric order.
var rv32ABINames = []string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// mips32Names lists the MIPS register aliases in numeric order.
var mips32Names = []string{
	"$zero", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
}

var registerFiles [2]map[string]uint32

func init() {
	rv := make(map[string]uint32, 72)
	for i, name := range rv32ABINames {
		rv[name] = uint32(i)
		rv[numbered("x", i)] = uint32(i)
	}
	rv["fp"] = 8 // frame pointer, alias of s0

	mips := make(map[string]uint32, 64)
	for i, name := range mips32Names {
		mips[name] = uint32(i)
		mips[numbered("$", i)] = uint32(i)
	}

	registerFiles[RV32] = rv
	registerFiles[MIPS32] = mips
}

func numbered(prefix string, n int) string {
	if n < 10 {
		return prefix + string(rune('0'+n))
	}
	return prefix + string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// Register looks up a register name or alias in the architecture's
// register file, returning its 5-bit number.
func (a Architecture) Register(name string) (uint32, bool) {
	n, ok := registerFiles[a][name]
	return n, ok
}

// RegisterName returns the preferred alias for a register number. Used
// by the disassembler.
func (a Architecture) RegisterName(n uint32) string {
	n &= 31
	switch a {
	case RV32:
		return rv32ABINames[n]
	default:
		return mips32Names[n]
	}
}
