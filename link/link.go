// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package link merges an assembled user program with preassembled BIOS
// and interrupt-handler images into the fixed Minisys memory layout.
package link

import (
	"fmt"

	"github.com/minisys/masm/asm"
	"github.com/minisys/masm/isa"
)

// Option type used by the Link function.
type Option uint

// Options for the Link function.
const (
	// BIOSOnly links without the interrupt-handler image, leaving its
	// region as no-op filler.
	BIOSOnly Option = 1 << iota
)

// A LinkedImage is the fully linked instruction memory plus the data
// memory image, ready for emission.
type LinkedImage struct {
	Arch isa.Architecture
	Text []uint32 // full instruction memory, one entry per word
	User []uint32 // the user program's words alone, for serial transfer
	Data []byte   // data memory image
}

// DataWords returns the data image packed into big-endian 32-bit
// words, zero-padded to a word boundary.
func (li *LinkedImage) DataWords() []uint32 {
	words := make([]uint32, (len(li.Data)+3)/4)
	for i, b := range li.Data {
		words[i/4] |= uint32(b) << uint((3-i%4)*8)
	}
	return words
}

// Link places the BIOS image at the bottom of instruction memory, the
// user program at the user-region base and the interrupt handler at
// the interrupt base, filling the gaps with no-op words. If the
// program defines a 'main' label, the BIOS patch slot is overwritten
// with a jump-and-link to it; otherwise the BIOS falls through to its
// safety loop. A nil bios or handler selects the built-in image.
func Link(prog *asm.Program, bios, handler *Image, options Option) (*LinkedImage, error) {
	arch := prog.Arch
	if bios == nil {
		bios = DefaultBIOS(arch)
	}
	if handler == nil {
		handler = DefaultInterrupt(arch)
	}

	if n := uint32(bios.Size()); n > isa.BIOSRegion.Words() {
		return nil, fmt.Errorf("Region overflow: BIOS image is %d words; the %s region holds %d",
			n, isa.BIOSRegion.Name, isa.BIOSRegion.Words())
	}
	if n := uint32(len(prog.Code)); n > isa.UserRegion.Words() {
		return nil, fmt.Errorf("Region overflow: program is %d words; the %s region holds %d",
			n, isa.UserRegion.Name, isa.UserRegion.Words())
	}
	if n := uint32(handler.Size()); n > isa.InterruptRegion.Words() {
		return nil, fmt.Errorf("Region overflow: interrupt image is %d words; the %s region holds %d",
			n, isa.InterruptRegion.Name, isa.InterruptRegion.Words())
	}
	if n := uint32(len(prog.Data)); !isa.DataRegion.Contains(n) {
		return nil, fmt.Errorf("Region overflow: data image is %d bytes; data memory holds %d",
			n, isa.DataRegion.Size)
	}

	bios = bios.clone()
	if sym, ok := prog.Symbols["main"]; ok && sym.Space == asm.TextSpace {
		w, err := encodeCall(arch, sym.Addr, isa.BIOSBase+patchSlot*4)
		if err != nil {
			return nil, err
		}
		if err := bios.patchJump(w); err != nil {
			return nil, err
		}
	}

	text := make([]uint32, isa.TextMemSize/4)
	nop := arch.NopWord()
	for i := range text {
		text[i] = nop
	}

	copy(text[isa.BIOSBase/4:], bios.Words())
	copy(text[isa.UserBase/4:], prog.Code)
	if options&BIOSOnly == 0 {
		copy(text[isa.InterruptBase/4:], handler.Words())
	}

	user := make([]uint32, len(prog.Code))
	copy(user, prog.Code)

	data := make([]byte, len(prog.Data))
	copy(data, prog.Data)

	return &LinkedImage{Arch: arch, Text: text, User: user, Data: data}, nil
}

// encodeCall builds the jump-and-link word the BIOS patch slot
// receives: a pc-relative jal through ra on the RISC-V flavored
// architecture, an absolute jal on the MIPS flavored one.
func encodeCall(arch isa.Architecture, target, pc uint32) (uint32, error) {
	if arch == isa.MIPS32 {
		return 0x03<<26 | (target>>2)&0x3FFFFFF, nil
	}

	ofs := int64(target) - int64(pc)
	if ofs < -(1<<20) || ofs >= 1<<20 || ofs&1 != 0 {
		return 0, fmt.Errorf("jump to main at %08x is out of range", target)
	}
	u := uint32(ofs) & 0x1FFFFF
	return (u>>20)<<31 | ((u>>1)&0x3FF)<<21 | ((u>>11)&1)<<20 |
		((u>>12)&0xFF)<<12 | 1<<7 | 0x6F, nil
}
