// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

// Fixed instruction-memory map of the Minisys SoC. Addresses are in
// bytes. The BIOS occupies the bottom of instruction memory, the user
// program follows it, and the interrupt handler sits at the top.
const (
	BIOSBase      = 0x0000
	BIOSSize      = 0x0800
	UserBase      = 0x0800
	UserSize      = 0xE800
	InterruptBase = 0xF000
	InterruptSize = 0x1000
	TextMemSize   = 0x10000

	// Data memory is a separate byte-addressed space.
	DataBase    = 0x0000
	DataMemSize = 0x10000
)

// A Region is a named span of one of the two address spaces.
type Region struct {
	Name string
	Base uint32
	Size uint32
}

// Instruction-memory regions and the data space.
var (
	BIOSRegion      = Region{"bios", BIOSBase, BIOSSize}
	UserRegion      = Region{"user program", UserBase, UserSize}
	InterruptRegion = Region{"interrupt handler", InterruptBase, InterruptSize}
	DataRegion      = Region{"data", DataBase, DataMemSize}
)

// Contains reports whether a block of n bytes starting at the region's
// base fits within the region.
func (r Region) Contains(n uint32) bool {
	return n <= r.Size
}

// Words returns the region's capacity in 32-bit words.
func (r Region) Words() uint32 {
	return r.Size / 4
}
