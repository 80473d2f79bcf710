// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAliases(t *testing.T) {
	cases := []struct {
		arch Architecture
		name string
		num  uint32
	}{
		{RV32, "zero", 0},
		{RV32, "x0", 0},
		{RV32, "ra", 1},
		{RV32, "sp", 2},
		{RV32, "s0", 8},
		{RV32, "fp", 8},
		{RV32, "a0", 10},
		{RV32, "a7", 17},
		{RV32, "t6", 31},
		{RV32, "x31", 31},
		{MIPS32, "$zero", 0},
		{MIPS32, "$0", 0},
		{MIPS32, "$v0", 2},
		{MIPS32, "$t0", 8},
		{MIPS32, "$sp", 29},
		{MIPS32, "$ra", 31},
		{MIPS32, "$31", 31},
	}
	for _, c := range cases {
		n, ok := c.arch.Register(c.name)
		require.True(t, ok, "register %s", c.name)
		assert.Equal(t, c.num, n, "register %s", c.name)
	}

	_, ok := RV32.Register("x32")
	assert.False(t, ok)
	_, ok = RV32.Register("$t0")
	assert.False(t, ok)
	_, ok = MIPS32.Register("a0")
	assert.False(t, ok)
}

func TestRegisterNameRoundTrip(t *testing.T) {
	for i := uint32(0); i < 32; i++ {
		name := RV32.RegisterName(i)
		n, ok := RV32.Register(name)
		require.True(t, ok)
		assert.Equal(t, i, n)
	}
}

func TestInstructionSetLookup(t *testing.T) {
	rv := GetInstructionSet(RV32)
	require.NotNil(t, rv.Lookup("add"))
	assert.Equal(t, FormatR, rv.Lookup("add").Format)
	assert.Equal(t, uint32(0x33), rv.Lookup("add").Opcode)
	assert.Nil(t, rv.Lookup("syscall"))

	mips := GetInstructionSet(MIPS32)
	require.NotNil(t, mips.Lookup("syscall"))
	assert.Nil(t, mips.Lookup("ecall"))

	// The set is built once and shared.
	assert.Same(t, rv, GetInstructionSet(RV32))
}

func TestNopWord(t *testing.T) {
	assert.Equal(t, uint32(0x00000013), RV32.NopWord())
	assert.Equal(t, uint32(0x00000000), MIPS32.NopWord())
}

func TestRegionCapacity(t *testing.T) {
	assert.Equal(t, uint32(512), BIOSRegion.Words())
	assert.True(t, UserRegion.Contains(UserSize))
	assert.False(t, UserRegion.Contains(UserSize+4))

	// The three regions tile instruction memory exactly.
	assert.Equal(t, uint32(TextMemSize),
		BIOSRegion.Size+UserRegion.Size+InterruptRegion.Size)
	assert.Equal(t, uint32(UserBase), BIOSRegion.Base+BIOSRegion.Size)
	assert.Equal(t, uint32(InterruptBase), UserRegion.Base+UserRegion.Size)
}
