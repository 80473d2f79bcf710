// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCOE(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCOE(&buf, []uint32{0x00000013, 0x001000EF, 0xDEADBEEF})
	require.NoError(t, err)

	want := "memory_initialization_radix=16;\n" +
		"memory_initialization_vector=\n" +
		"00000013,\n" +
		"001000ef,\n" +
		"deadbeef;\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCOESingleWord(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCOE(&buf, []uint32{0x42})
	require.NoError(t, err)

	want := "memory_initialization_radix=16;\n" +
		"memory_initialization_vector=\n" +
		"00000042;\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCOEEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCOE(&buf, nil)
	require.NoError(t, err)

	want := "memory_initialization_radix=16;\n" +
		"memory_initialization_vector=\n" +
		"00000000;\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSerialNopProgram(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSerial(&buf, []uint32{0x00000013}, nil)
	require.NoError(t, err)

	want := "03020000\n" +
		"00\n00\n00\n13\n" +
		"03030000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSerialWithData(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSerial(&buf, []uint32{0x00500513, 0x00000073}, []byte{0x2A, 0x00})
	require.NoError(t, err)

	want := "03020000\n" +
		"00\n50\n05\n13\n" +
		"00\n00\n00\n73\n" +
		"03030000\n" +
		"2a\n00\n"
	assert.Equal(t, want, buf.String())
}
