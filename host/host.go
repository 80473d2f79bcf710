// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive workbench around the Minisys
// assembler and linker.
//
// Within the host it is possible to assemble source files, link the
// assembled program against the BIOS and interrupt-handler images,
// disassemble linked instruction memory, dump the contents of data
// memory, inspect the symbol table, evaluate expressions over it, and
// write the output files consumed by the FPGA tooling and the serial
// bootloader.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/beevik/cmd"

	"github.com/minisys/masm/asm"
	"github.com/minisys/masm/disasm"
	"github.com/minisys/masm/emit"
	"github.com/minisys/masm/isa"
	"github.com/minisys/masm/link"
)

// A Host represents an interactive Minisys assembler session: the last
// assembled program, the linked image built from it, and the settings
// controlling both.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Command
	lastArgs    []string
	settings    *settings
	prog        *asm.Program
	image       *link.LinkedImage
	name        string // base name of the last assembled file
}

// New creates a new host environment.
func New() *Host {
	return &Host{
		settings: newSettings(),
	}
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c *cmd.Command
		var args []string
		if line != "" {
			c, args, err = cmds.LookupCommand(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c, args = h.lastCmd, h.lastArgs
		}

		if c == nil {
			continue
		}
		h.lastCmd, h.lastArgs = c, args

		handler := c.Data.(func(*Host, *cmd.Command, []string) error)
		err = handler(h, c, args)
		if err != nil {
			break
		}
	}
}

func (h *Host) print(args ...interface{}) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...interface{}) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...interface{}) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
		h.flush()
	}
}

func (h *Host) arch() (isa.Architecture, error) {
	arch, ok := isa.ParseArchitecture(h.settings.Arch)
	if !ok {
		return 0, fmt.Errorf("unknown architecture '%s'", h.settings.Arch)
	}
	return arch, nil
}

func (h *Host) cmdAssemble(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	filename := args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	arch, err := h.arch()
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	file, err := os.Open(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	defer file.Close()

	var options asm.Option
	if h.settings.Verbose {
		options |= asm.Verbose
	}

	prog, err := asm.Assemble(file, filename, arch, h.output, options)
	if err != nil || len(prog.Errors) > 0 {
		h.printf("Failed to assemble: %s\n", filepath.Base(filename))
		if prog != nil {
			for _, e := range prog.Errors {
				h.println(e)
			}
		}
		return nil
	}

	h.prog = prog
	h.image = nil

	base := filepath.Base(filename)
	h.name = strings.TrimSuffix(base, filepath.Ext(base))

	h.printf("Assembled '%s': %d words, %d data bytes, %d symbols.\n",
		base, len(prog.Code), len(prog.Data), len(prog.Symbols))
	return nil
}

func (h *Host) cmdLink(c *cmd.Command, args []string) error {
	if h.prog == nil {
		h.println("Nothing assembled.")
		return nil
	}

	bios, err := h.loadImage(h.settings.BIOSFile)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	handler, err := h.loadImage(h.settings.HandlerFile)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	var options link.Option
	if h.settings.BIOSOnly {
		options |= link.BIOSOnly
	}

	image, err := link.Link(h.prog, bios, handler, options)
	if err != nil {
		h.printf("Failed to link: %v\n", err)
		return nil
	}

	h.image = image
	h.printf("Linked '%s': %d instruction words, %d data bytes.\n",
		h.name, len(image.Text), len(image.Data))
	return nil
}

// loadImage reads a preassembled image file, or returns nil so that
// the linker falls back to its built-in image.
func (h *Host) loadImage(filename string) (*link.Image, error) {
	if filename == "" {
		return nil, nil
	}

	arch, err := h.arch()
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %v", filepath.Base(filename), err)
	}
	defer file.Close()

	img, err := link.LoadImage(arch, file)
	if err != nil {
		return nil, fmt.Errorf("failed to load '%s': %v", filepath.Base(filename), err)
	}
	return img, nil
}

func (h *Host) cmdSave(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}
	if h.image == nil {
		h.println("Nothing linked.")
		return nil
	}

	dir := args[0]
	if err := emit.WriteFiles(dir, h.name, h.image); err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("Saved '%s' output files to '%s'.\n", h.name, dir)
	return nil
}

func (h *Host) cmdDisassemble(c *cmd.Command, args []string) error {
	if h.image == nil {
		h.println("Nothing linked.")
		return nil
	}

	if len(args) == 0 {
		args = []string{"$"}
	}

	var addr uint32
	switch args[0] {
	case "$":
		addr = h.settings.NextDisasmAddr
		if addr == 0 {
			addr = isa.UserBase
		}

	case ".":
		addr = isa.UserBase

	default:
		a, err := h.parseExpr(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}
	addr &^= 3

	lines := h.settings.DisasmLines
	if len(args) > 1 {
		l, err := h.parseExpr(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(l)
	}

	set := isa.GetInstructionSet(h.image.Arch)
	for i := 0; i < lines && addr/4 < uint32(len(h.image.Text)); i++ {
		word := h.image.Text[addr/4]
		d := disasm.Disassemble(set, word, addr)

		str := fmt.Sprintf("%04X-   %08X    %-24s", addr, word, d)
		if h.prog != nil && h.prog.Map != nil {
			if l, ok := h.prog.Map.FindLine(int(addr)); ok {
				str += fmt.Sprintf(" ; %s:%d", h.prog.Map.File(l), l.Line)
			}
		}
		h.println(str)

		addr += 4
	}

	h.settings.NextDisasmAddr = addr
	h.lastArgs = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdMemoryDump(c *cmd.Command, args []string) error {
	if h.prog == nil {
		h.println("Nothing assembled.")
		return nil
	}

	var addr uint32
	if len(args) > 0 {
		switch args[0] {
		case "$":
			addr = h.settings.NextMemDumpAddr

		case ".":
			addr = isa.DataBase

		default:
			a, err := h.parseExpr(args[0])
			if err != nil {
				h.printf("%v\n", err)
				return nil
			}
			addr = a
		}
	}

	bytes := uint32(h.settings.MemDumpBytes)
	if len(args) >= 2 {
		var err error
		bytes, err = h.parseExpr(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	h.dumpMemory(addr, bytes)

	h.settings.NextMemDumpAddr = addr + bytes
	h.lastArgs = []string{"$", fmt.Sprintf("%d", bytes)}
	return nil
}

func (h *Host) cmdSymbols(c *cmd.Command, args []string) error {
	if h.prog == nil || len(h.prog.Symbols) == 0 {
		h.println("No symbols.")
		return nil
	}

	globals := make(map[string]bool, len(h.prog.Globals))
	for _, name := range h.prog.Globals {
		globals[name] = true
	}

	names := make([]string, 0, len(h.prog.Symbols))
	for name := range h.prog.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	h.println("Name             Addr      Space")
	h.println("---------------- --------  -----")
	for _, name := range names {
		sym := h.prog.Symbols[name]
		space := "text"
		if sym.Space == asm.DataSpace {
			space = "data"
		}
		suffix := ""
		if globals[name] {
			suffix = "  (global)"
		}
		h.printf("%-16s $%08X %s%s\n", name, sym.Addr, space, suffix)
	}
	return nil
}

func (h *Host) cmdEval(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	expr := strings.Join(args, " ")
	v, err := asm.Eval(expr, h.symbolValues())
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("$%X\n", v)
	return nil
}

func (h *Host) cmdHelp(c *cmd.Command, args []string) error {
	err := cmds.GetHelp(h.output, args)
	if err != nil {
		h.printf("%v.\n", err)
	}
	h.flush()
	return nil
}

func (h *Host) cmdSet(c *cmd.Command, args []string) error {
	switch len(args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c)

	default:
		key, value := strings.ToLower(args[0]), strings.Join(args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("Setting '%s' not found", key)
		case reflect.String:
			err = h.settings.Set(key, value)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int64
			v, err = asm.Eval(value, h.symbolValues())
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) cmdQuit(c *cmd.Command, args []string) error {
	return errors.New("Exiting program")
}

// symbolValues returns the assembled program's symbols as expression
// variables.
func (h *Host) symbolValues() map[string]int64 {
	values := make(map[string]int64)
	if h.prog != nil {
		for name, sym := range h.prog.Symbols {
			values[name] = int64(sym.Addr)
		}
	}
	return values
}

func (h *Host) parseExpr(expr string) (uint32, error) {
	v, err := asm.Eval(expr, h.symbolValues())
	if err != nil {
		return 0, err
	}

	if v < 0 {
		v += 0x100000000
	}
	return uint32(v), nil
}

// dumpMemory displays the data-memory bytes in the requested address
// range, eight bytes per row with a printable-character column.
func (h *Host) dumpMemory(addr0, bytes uint32) {
	if bytes == 0 {
		return
	}

	data := h.prog.Data
	if h.image != nil {
		data = h.image.Data
	}

	load := func(a uint32) byte {
		if int(a) < len(data) {
			return data[a]
		}
		return 0
	}

	addr1 := addr0 + bytes - 1
	if addr1 >= isa.DataMemSize {
		addr1 = isa.DataMemSize - 1
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if addr1-addr0 < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := addr0, uint32(6), uint32(32); a <= addr1; a, c1, c2 = a+1, c1+3, c2+1 {
			m := load(a)
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(string(buf))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := addr0 &^ 7
	stop := (addr1 + 8) &^ 7
	if stop > isa.DataMemSize {
		stop = isa.DataMemSize
	}

	a := start
	for r := start; r < stop; r += 8 {
		addrToBuf(a, buf[0:4])
		for c1, c2 := uint32(6), uint32(32); c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= addr0 && a <= addr1 {
				m := load(a)
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(string(buf))
	}
}

func (h *Host) displayUsage(c *cmd.Command) {
	c.DisplayUsage(h.output)
	h.flush()
}
