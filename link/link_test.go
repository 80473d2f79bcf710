// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minisys/masm/asm"
	"github.com/minisys/masm/isa"
)

func assemble(t *testing.T, arch isa.Architecture, src string) *asm.Program {
	t.Helper()
	prog, err := asm.Assemble(strings.NewReader(src), "test", arch, io.Discard, 0)
	require.NoError(t, err)
	require.Empty(t, prog.Errors)
	return prog
}

func TestLinkPatchesMain(t *testing.T) {
	prog := assemble(t, isa.RV32, `
main:
	li a0, 5
	ecall
`)

	img, err := Link(prog, nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, img.Text, int(isa.TextMemSize/4))

	// jal ra, 0x800 from address 0
	assert.Equal(t, uint32(0x001000EF), img.Text[0])
	assert.Equal(t, uint32(0x0000006F), img.Text[1])

	user := isa.UserBase / 4
	assert.Equal(t, uint32(0x00500513), img.Text[user])
	assert.Equal(t, uint32(0x00000073), img.Text[user+1])
	assert.Equal(t, uint32(0x00000013), img.Text[user+2])
	assert.Equal(t, []uint32{0x00500513, 0x00000073}, img.User)

	intr := isa.InterruptBase / 4
	assert.Equal(t, uint32(0x00000013), img.Text[intr])
	assert.Equal(t, uint32(0x00008067), img.Text[intr+1])
}

func TestLinkPatchesMainMIPS(t *testing.T) {
	prog := assemble(t, isa.MIPS32, `
main:
	syscall
`)

	img, err := Link(prog, nil, nil, 0)
	require.NoError(t, err)

	// jal 0x800 encoded as an absolute word-address jump
	assert.Equal(t, uint32(0x0C000200), img.Text[0])
	assert.Equal(t, uint32(0x0000000C), img.Text[isa.UserBase/4])
}

func TestLinkWithoutMain(t *testing.T) {
	prog := assemble(t, isa.RV32, `
start:
	nop
`)

	img, err := Link(prog, nil, nil, 0)
	require.NoError(t, err)

	// slot keeps the no-op filler; the safety loop follows
	assert.Equal(t, uint32(0x00000013), img.Text[0])
	assert.Equal(t, uint32(0x0000006F), img.Text[1])
}

func TestLinkBIOSOnly(t *testing.T) {
	prog := assemble(t, isa.RV32, `
main:
	ret
`)

	img, err := Link(prog, nil, nil, BIOSOnly)
	require.NoError(t, err)

	// the interrupt region stays no-op filler
	intr := isa.InterruptBase / 4
	assert.Equal(t, uint32(0x00000013), img.Text[intr])
	assert.Equal(t, uint32(0x00000013), img.Text[intr+1])
}

func TestLinkDataImage(t *testing.T) {
	prog := assemble(t, isa.RV32, `
	.data
greet:	.asciiz "Hi!"
	.word 0x11223344
	.text
main:	ret
`)

	img, err := Link(prog, nil, nil, 0)
	require.NoError(t, err)

	require.Equal(t, []byte{'H', 'i', '!', 0, 0x11, 0x22, 0x33, 0x44}, img.Data)
	assert.Equal(t, []uint32{0x48692100, 0x11223344}, img.DataWords())
}

func TestLinkDataWordsPadding(t *testing.T) {
	img := &LinkedImage{Arch: isa.RV32, Data: []byte{1, 2, 3, 4, 5}}
	assert.Equal(t, []uint32{0x01020304, 0x05000000}, img.DataWords())
}

func TestLinkRegionOverflow(t *testing.T) {
	prog := &asm.Program{
		Arch: isa.RV32,
		Code: make([]uint32, isa.UserRegion.Words()+1),
	}
	_, err := Link(prog, nil, nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Region overflow")
}

func TestLinkFullUserRegion(t *testing.T) {
	prog := &asm.Program{
		Arch: isa.RV32,
		Code: make([]uint32, isa.UserRegion.Words()),
	}
	_, err := Link(prog, nil, nil, 0)
	assert.NoError(t, err)
}

func TestLinkPatchSlotNotNop(t *testing.T) {
	prog := assemble(t, isa.RV32, `
main:	ret
`)

	bios := NewImage(isa.RV32, []uint32{0xDEADBEEF, 0x0000006F})
	_, err := Link(prog, bios, nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patch slot")
}

func TestLoadImage(t *testing.T) {
	src := "# built-in bios\n00000013\n\n0000006f\n"
	img, err := LoadImage(isa.RV32, strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x00000013, 0x0000006F}, img.Words())
	assert.Equal(t, 2, img.Size())
}

func TestLoadImageInvalid(t *testing.T) {
	_, err := LoadImage(isa.RV32, strings.NewReader("0000zzzz\n"))
	require.Error(t, err)

	_, err = LoadImage(isa.RV32, strings.NewReader("# nothing here\n"))
	require.Error(t, err)
}
