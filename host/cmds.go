// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

var cmds *cmd.Tree

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "masm"})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "assemble",
		Brief: "Assemble a source file",
		Description: "Run the assembler on the specified file. The" +
			" assembled program replaces any previously assembled one" +
			" and becomes the input of the link command.",
		Usage: "assemble <filename>",
		Data:  (*Host).cmdAssemble,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "link",
		Brief: "Link the assembled program",
		Description: "Link the assembled program with the BIOS and" +
			" interrupt handler images, producing the full instruction" +
			" memory image. Use the set command to select alternate" +
			" image files or BIOS-only linking.",
		Usage: "link",
		Data:  (*Host).cmdLink,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "save",
		Brief: "Write output files",
		Description: "Write the linked image's output files into the" +
			" specified directory: the text and data COE files and the" +
			" serial bootload file.",
		Usage: "save <directory>",
		Data:  (*Host).cmdSave,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble instruction memory",
		Description: "Disassemble linked instruction memory starting at" +
			" the requested address. The number of instructions to" +
			" disassemble may be specified as an option.",
		Usage: "disassemble [<address>] [<count>]",
		Data:  (*Host).cmdDisassemble,
	})

	// Memory commands
	me := root.AddSubtree(cmd.TreeDescriptor{Name: "memory", Brief: "Memory commands"})
	me.AddCommand(cmd.CommandDescriptor{
		Name:  "dump",
		Brief: "Dump data memory at address",
		Description: "Dump the contents of data memory starting" +
			" from the specified address. The number of bytes to" +
			" dump may be specified as an option.",
		Usage: "memory dump [<address>] [<bytes>]",
		Data:  (*Host).cmdMemoryDump,
	})

	root.AddCommand(cmd.CommandDescriptor{
		Name:  "symbols",
		Brief: "Display the symbol table",
		Description: "Display every symbol of the assembled program" +
			" with its address and address space.",
		Usage: "symbols",
		Data:  (*Host).cmdSymbols,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "evaluate",
		Brief:       "Evaluate an expression",
		Description: "Evaluate an expression over the program's symbols.",
		Usage:       "evaluate <expression>",
		Data:        (*Host).cmdEval,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. Type the set" +
			" command without a variable name or value to display the current" +
			" values of all configuration variables.",
		Usage: "set <var> <value>",
		Data:  (*Host).cmdSet,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})

	// Add command shortcuts.
	root.AddShortcut("a", "assemble")
	root.AddShortcut("l", "link")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("e", "evaluate")
	root.AddShortcut("m", "memory dump")
	root.AddShortcut("?", "help")

	cmds = root
}
