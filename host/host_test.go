// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runSession(t *testing.T, commands ...string) string {
	t.Helper()
	h := New()
	var out bytes.Buffer
	input := strings.Join(commands, "\n") + "\n"
	h.RunCommands(strings.NewReader(input), &out, false)
	return out.String()
}

func TestCommandLookup(t *testing.T) {
	out := runSession(t, "help", "quit")
	require.Contains(t, out, "masm commands:")
	require.Contains(t, out, "assemble")
	require.Contains(t, out, "memory")
}

func TestCommandLookupErrors(t *testing.T) {
	out := runSession(t, "bogus", "s", "quit")
	require.Contains(t, out, "Command not found.")
	require.Contains(t, out, "Command is ambiguous.")
}

func TestCommandPrefixAndShortcut(t *testing.T) {
	// 'sy' is an unambiguous prefix of symbols; 'm' is the shortcut
	// for memory dump.
	out := runSession(t, "sy", "m", "quit")
	require.Contains(t, out, "No symbols.")
	require.Contains(t, out, "Nothing assembled.")
}

func TestHelpForCommand(t *testing.T) {
	out := runSession(t, "help save", "quit")
	require.Contains(t, out, "Usage: save <directory>")
}

func TestAssembleLinkSession(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.asm")
	code := "main:\tli a0, 5\n\tecall\n"
	require.NoError(t, os.WriteFile(src, []byte(code), 0644))

	out := runSession(t,
		"assemble "+src,
		"link",
		"disassemble 0x800 2",
		"evaluate main",
		"quit")

	require.Contains(t, out, "Assembled 'prog.asm': 2 words")
	require.Contains(t, out, "Linked 'prog': 16384 instruction words")
	require.Contains(t, out, "addi a0, zero, 5")
	require.Contains(t, out, "ecall")
	require.Contains(t, out, "$800")
}
