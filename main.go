// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/minisys/masm/asm"
	"github.com/minisys/masm/emit"
	"github.com/minisys/masm/host"
	"github.com/minisys/masm/isa"
	"github.com/minisys/masm/link"
)

var (
	biosOnly    bool
	debug       bool
	interactive bool
	archName    string
	biosFile    string
	handlerFile string
)

func init() {
	flag.BoolVar(&biosOnly, "bios-only", false, "link without the interrupt handler image")
	flag.BoolVar(&biosOnly, "s", false, "link without the interrupt handler image (shorthand)")
	flag.BoolVar(&debug, "debug", false, "verbose assembly output")
	flag.BoolVar(&debug, "d", false, "verbose assembly output (shorthand)")
	flag.BoolVar(&interactive, "i", false, "start an interactive session")
	flag.StringVar(&archName, "arch", "rv32", "instruction set architecture (rv32 or mips32)")
	flag.StringVar(&biosFile, "bios", "", "preassembled BIOS image file")
	flag.StringVar(&handlerFile, "handler", "", "preassembled interrupt handler image file")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: masm [options] <input-file> <output-directory>\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	args := parseArgs()

	if interactive || len(args) == 0 {
		h := host.New()
		h.RunCommands(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
		return
	}

	if len(args) < 2 {
		flag.CommandLine.Usage()
		os.Exit(1)
	}

	if err := run(args[0], args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs runs the flag parser over the whole command line, allowing
// options to follow the positional arguments.
func parseArgs() []string {
	var positional []string

	args := os.Args[1:]
	for {
		flag.CommandLine.Parse(args)
		rest := flag.Args()
		if len(rest) == 0 {
			return positional
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// run assembles and links an input file and writes the output files
// into the output directory.
func run(input, outdir string) error {
	arch, ok := isa.ParseArchitecture(archName)
	if !ok {
		return fmt.Errorf("unknown architecture '%s'", archName)
	}

	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open '%s': %v", input, err)
	}
	defer file.Close()

	var options asm.Option
	out := io.Writer(io.Discard)
	if debug {
		options |= asm.Verbose
		out = os.Stdout
	}

	prog, err := asm.Assemble(file, input, arch, out, options)
	if len(prog.Errors) > 0 {
		for _, e := range prog.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("assembly of '%s' failed", filepath.Base(input))
	}
	if err != nil {
		return err
	}

	bios, err := loadImage(arch, biosFile)
	if err != nil {
		return err
	}
	handler, err := loadImage(arch, handlerFile)
	if err != nil {
		return err
	}

	var lopts link.Option
	if biosOnly {
		lopts |= link.BIOSOnly
	}

	img, err := link.Link(prog, bios, handler, lopts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outdir, 0755); err != nil {
		return fmt.Errorf("failed to create '%s': %v", outdir, err)
	}

	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return emit.WriteFiles(outdir, name, img)
}

// loadImage reads a preassembled image file, or returns nil so that
// the linker falls back to its built-in image.
func loadImage(arch isa.Architecture, filename string) (*link.Image, error) {
	if filename == "" {
		return nil, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %v", filename, err)
	}
	defer file.Close()

	return link.LoadImage(arch, file)
}
