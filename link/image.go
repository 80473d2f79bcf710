// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/minisys/masm/isa"
)

// An Image is a preassembled instruction word sequence placed verbatim
// into instruction memory at link time. The BIOS image exposes one
// patchable slot at a fixed word offset; the slot must hold the
// architecture's no-op filler until the linker overwrites it.
type Image struct {
	arch  isa.Architecture
	words []uint32
}

// The BIOS jump slot sits in the image's first word.
const patchSlot = 0

// NewImage wraps preassembled instruction words in an Image.
func NewImage(arch isa.Architecture, words []uint32) *Image {
	return &Image{arch: arch, words: words}
}

// LoadImage reads a preassembled image from a stream holding one
// 8-digit hexadecimal word per line. Blank lines and '#' comment lines
// are skipped.
func LoadImage(arch isa.Architecture, r io.Reader) (*Image, error) {
	im := &Image{arch: arch}

	scanner := bufio.NewScanner(r)
	row := 0
	for scanner.Scan() {
		row++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		w, err := strconv.ParseUint(line, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("image line %d: invalid word '%s'", row, line)
		}
		im.words = append(im.words, uint32(w))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(im.words) == 0 {
		return nil, fmt.Errorf("image contains no words")
	}
	return im, nil
}

// Words returns the image's instruction words.
func (im *Image) Words() []uint32 {
	return im.words
}

// Size returns the image's length in words.
func (im *Image) Size() int {
	return len(im.words)
}

// patchJump overwrites the image's patch slot with a jump word. The
// slot must still hold the no-op filler the image was built with.
func (im *Image) patchJump(w uint32) error {
	if patchSlot >= len(im.words) {
		return fmt.Errorf("image has no patch slot")
	}
	if im.words[patchSlot] != im.arch.NopWord() {
		return fmt.Errorf("patch slot holds %08x, not the no-op filler", im.words[patchSlot])
	}
	im.words[patchSlot] = w
	return nil
}

// clone returns a copy of the image so that patching never mutates a
// caller-owned image.
func (im *Image) clone() *Image {
	words := make([]uint32, len(im.words))
	copy(words, im.words)
	return &Image{arch: im.arch, words: words}
}

// DefaultBIOS returns the built-in BIOS image: the patchable jump slot
// followed by a safety loop that spins forever when no user program
// was linked in.
func DefaultBIOS(arch isa.Architecture) *Image {
	switch arch {
	case isa.MIPS32:
		return NewImage(arch, []uint32{
			0x00000000, // patch slot: nop, becomes jal main
			0x08000001, // safety loop: j back to itself
		})
	default:
		return NewImage(arch, []uint32{
			0x00000013, // patch slot: nop, becomes jal ra, main
			0x0000006F, // safety loop: jal x0, 0
		})
	}
}

// DefaultInterrupt returns the built-in interrupt handler image: a
// stub that returns to the interrupted code immediately.
func DefaultInterrupt(arch isa.Architecture) *Image {
	switch arch {
	case isa.MIPS32:
		return NewImage(arch, []uint32{
			0x00000000, // nop
			0x03E00008, // jr $ra
		})
	default:
		return NewImage(arch, []uint32{
			0x00000013, // nop
			0x00008067, // jalr x0, ra, 0
		})
	}
}
