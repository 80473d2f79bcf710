// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minisys/masm/isa"
)

func TestDisassembleRV32(t *testing.T) {
	set := isa.GetInstructionSet(isa.RV32)
	tests := []struct {
		word uint32
		addr uint32
		want string
	}{
		{0x00000013, 0x0800, "nop"},
		{0x003100B3, 0x0800, "add ra, sp, gp"},
		{0x023100B3, 0x0800, "mul ra, sp, gp"},
		{0xFFF10093, 0x0800, "addi ra, sp, -1"},
		{0x00500513, 0x0800, "addi a0, zero, 5"},
		{0x00311093, 0x0800, "slli ra, sp, 3"},
		{0x00B12223, 0x0800, "sw a1, 4(sp)"},
		{0x00412503, 0x0800, "lw a0, 4(sp)"},
		{0x00208463, 0x0800, "beq ra, sp, 0x808"},
		{0xFE209AE3, 0x0820, "bne ra, sp, 0x814"},
		{0x008000EF, 0x0800, "jal ra, 0x808"},
		{0x00008067, 0x0800, "jalr zero, ra, 0"},
		{0x000122B7, 0x0800, "lui t0, 0x12"},
		{0x00000073, 0x0800, "ecall"},
		{0x00100073, 0x0800, "ebreak"},
		{0xFFFFFFFF, 0x0800, ".word 0xffffffff"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Disassemble(set, tc.word, tc.addr), "word %08x", tc.word)
	}
}

func TestDisassembleMIPS32(t *testing.T) {
	set := isa.GetInstructionSet(isa.MIPS32)
	tests := []struct {
		word uint32
		addr uint32
		want string
	}{
		{0x00000000, 0x0800, "nop"},
		{0x012A4020, 0x0800, "add $t0, $t1, $t2"},
		{0x21080001, 0x0800, "addi $t0, $t0, 1"},
		{0x8FA80004, 0x0800, "lw $t0, 4($sp)"},
		{0x00084080, 0x0800, "sll $t0, $t0, 2"},
		{0x03E00008, 0x0800, "jr $ra"},
		{0x11090001, 0x0800, "beq $t0, $t1, 0x808"},
		{0x08000202, 0x0800, "j 0x808"},
		{0x0000000C, 0x0800, "syscall"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Disassemble(set, tc.word, tc.addr), "word %08x", tc.word)
	}
}
