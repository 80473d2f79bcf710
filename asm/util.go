// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strconv"

	"github.com/minisys/masm/isa"
)

// parseNumber interprets a numeric literal: decimal (optionally
// negative) or 0x-prefixed hexadecimal. Hexadecimal literals are
// unsigned and limited to 32 bits.
func parseNumber(s string) (int64, bool) {
	if len(s) == 0 {
		return 0, false
	}

	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, false
		}
		return int64(v), true
	}

	start := 0
	if s[0] == '-' {
		if len(s) == 1 {
			return 0, false
		}
		start = 1
	}
	for i := start; i < len(s); i++ {
		if !decimal(s[i]) {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// immFits reports whether v is representable in a field of the given
// bit width, either as a two's complement signed value or as an
// unsigned value.
func immFits(v int64, bits uint) bool {
	return v >= -(int64(1)<<(bits-1)) && v < int64(1)<<bits
}

// hiHalf returns the upper-immediate part of an address for the
// two-instruction load-address pattern. The RISC-V flavored split
// rounds the low 12 bits into the upper 20 so that the following
// add-immediate's sign extension cancels out.
func hiHalf(arch isa.Architecture, v int64) int64 {
	if arch == isa.RV32 {
		return ((v + 0x800) >> 12) & 0xFFFFF
	}
	return (v >> 16) & 0xFFFF
}

// loHalf returns the lower part of an address for the two-instruction
// load-address pattern.
func loHalf(arch isa.Architecture, v int64) int64 {
	if arch == isa.RV32 {
		lo := v & 0xFFF
		if lo >= 0x800 {
			lo -= 0x1000
		}
		return lo
	}
	return v & 0xFFFF
}
