// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass macro assembler for the Minisys
// instruction sets.
package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minisys/masm/isa"
)

var errParse = errors.New("parse error")

// Error kinds reported during assembly. Every fatal condition maps to
// one of these so the message surfaced to the user names the failure
// class along with the offending line.
const (
	errKindSyntax         = "Syntax"
	errKindUndefinedMacro = "Undefined macro"
	errKindMacroRecursion = "Macro recursion limit"
	errKindUndefinedSym   = "Undefined symbol"
	errKindOutOfRange     = "Operand out of range"
	errKindUnknownInst    = "Unknown instruction"
	errKindUnknownReg     = "Unknown register"
	errKindDuplicateSym   = "Duplicate symbol"
	errKindRegionOverflow = "Region overflow"
)

// Space identifies one of the two Harvard address spaces.
type Space byte

const (
	// TextSpace is the instruction-memory address space.
	TextSpace Space = iota

	// DataSpace is the data-memory address space.
	DataSpace
)

func (s Space) String() string {
	if s == TextSpace {
		return "text"
	}
	return "data"
}

type directiveData struct {
	fn    func(a *assembler, line fstring, param any) error
	param any
}

var directives = map[string]directiveData{
	".text":      {fn: (*assembler).parseTextSegment},
	".data":      {fn: (*assembler).parseDataSegment},
	".byte":      {fn: (*assembler).parseData, param: 1},
	".half":      {fn: (*assembler).parseData, param: 2},
	".word":      {fn: (*assembler).parseData, param: 4},
	".asciiz":    {fn: (*assembler).parseAsciiz},
	".space":     {fn: (*assembler).parseSpace},
	".globl":     {fn: (*assembler).parseGlobal},
	".global":    {fn: (*assembler).parseGlobal},
	".equ":       {fn: (*assembler).parseEquate},
	".eq":        {fn: (*assembler).parseEquate},
	".macro":     {fn: (*assembler).parseMacroStart},
	".end_macro": {fn: (*assembler).parseMacroEnd},
}

// A segment is a small chunk of program output: one instruction, one
// data directive's bytes, or a label binding point.
type segment interface {
	address() int
}

// An instruction segment holds a single canonical instruction and its
// parsed operands.
type instruction struct {
	addr     int              // address assigned to the segment
	mnemonic fstring          // mnemonic string with source position
	inst     *isa.Instruction // matched instruction table entry
	operands []operand
}

func (i *instruction) address() int {
	return i.addr
}

// A labeldef segment binds a label to the active cursor of the address
// space it was defined in.
type labeldef struct {
	addr int
	name fstring
	sp   Space
}

func (l *labeldef) address() int {
	return l.addr
}

// A datum segment holds the values of one .byte/.half/.word directive.
type datum struct {
	addr  int
	unit  int // value width in bytes: 1, 2 or 4
	items []operand
}

func (d *datum) address() int {
	return d.addr
}

func (d *datum) bytes() int {
	return d.unit * len(d.items)
}

// A stringdata segment holds the bytes of an .asciiz directive,
// escapes already interpreted and NUL terminator included.
type stringdata struct {
	addr int
	b    []byte
}

func (s *stringdata) address() int {
	return s.addr
}

// A spacer segment reserves zero-filled data bytes.
type spacer struct {
	addr int
	n    int
}

func (s *spacer) address() int {
	return s.addr
}

// symPart selects which half of a resolved address an operand takes.
// The load-address pseudo-instruction splits a symbol across two
// instructions this way.
type symPart byte

const (
	partNone symPart = iota
	partHi
	partLo
)

type opClass byte

const (
	opReg opClass = iota // register operand
	opImm                // numeric literal or equate
	opSym                // symbol reference, resolved in pass 2
	opMem                // offset(register) memory operand
)

// An operand is one parsed instruction operand. Symbol references keep
// their name until pass 2 fills in val.
type operand struct {
	class  opClass
	text   fstring // operand text with source position
	reg    uint32  // register number (opReg, opMem)
	val    int64   // resolved value (opImm, opSym, opMem offset)
	sym    string  // symbol name (opSym, opMem with symbolic offset)
	part   symPart // address half selector for la expansions
	isAddr bool    // val is an absolute address resolved from a label
}

// An asmerror is used to keep track of errors encountered during
// assembly.
type asmerror struct {
	kind string
	line fstring // line causing the error
	msg  string  // error message
}

// A symbol is a label definition in one of the two address spaces.
type symbol struct {
	name  string
	sp    Space
	addr  int
	bound bool
}

// The assembler is a state object used during the assembly of machine
// code from assembly code.
type assembler struct {
	arch        isa.Architecture    // requested architecture
	instSet     *isa.InstructionSet // instruction table for the arch
	space       Space               // address space being parsed
	textCursor  int                 // instruction-space address cursor
	dataCursor  int                 // data-space address cursor
	code        []uint32            // encoded user-program words
	data        []byte              // data-memory image
	r           io.Reader           // the reader passed to Assemble
	constants   map[string]int64    // equate name -> value
	labels      map[Space]map[string]*symbol // label name -> symbol, per address space
	globals     []string            // .globl declarations
	macros      map[string]*macro   // macro name -> definition
	capture     *macro              // macro body being captured
	macroDepth  int                 // current expansion nesting depth
	sourceLines []SourceLine        // address -> source line mappings
	files       []string            // processed files
	segments    []segment           // parsed program segments
	out         io.Writer           // output used for verbose output
	verbose     bool                // verbose output
	errors      []asmerror          // errors encountered during assembly
}

// A Symbol is a resolved label exported in the assembled program.
type Symbol struct {
	Name  string
	Addr  uint32
	Space Space
}

// A Program contains the assembled user program and the data
// associated with it.
type Program struct {
	Arch    isa.Architecture  // architecture the program was assembled for
	Code    []uint32          // encoded instruction words, in address order
	Data    []byte            // data-memory image
	Symbols map[string]Symbol // every label, by name
	Globals []string          // symbols declared with .globl
	Errors  []string          // errors encountered during assembly
	Map     *SourceMap        // instruction address to source line map
}

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose Option = 1 << iota // verbose output during assembly
)

// Assemble reads Minisys assembly code from the provided stream and
// assembles it into instruction words and a data image. The user
// program's instruction addresses start at the user-program region
// base, where the linker will place it.
func Assemble(r io.Reader, filename string, arch isa.Architecture, out io.Writer, options Option) (*Program, error) {
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		arch:      arch,
		instSet:   isa.GetInstructionSet(arch),
		space:     TextSpace,
		r:         r,
		constants: make(map[string]int64),
		labels:    map[Space]map[string]*symbol{TextSpace: {}, DataSpace: {}},
		macros:    make(map[string]*macro),
		files:     []string{filename},
		segments:  make([]segment, 0, 32),
		out:       out,
		verbose:   (options & Verbose) != 0,
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).parse,           // Parse the assembly code, expanding macros
		(*assembler).expandPseudo,    // Rewrite pseudo-instructions as canonical ones
		(*assembler).assignAddresses, // Assign addresses to instructions and data
		(*assembler).resolveSymbols,  // Resolve symbol references to addresses
		(*assembler).generateCode,    // Encode the instruction words
		(*assembler).buildData,       // Build the data-memory image
	}

	// Execute assembler steps, breaking if an error is encountered
	// in any one of them.
	var err error
	for _, step := range steps {
		err = step(a)
		if err != nil {
			break
		}
		if len(a.errors) > 0 {
			err = errParse
			break
		}
	}

	errstrs := make([]string, 0, len(a.errors))
	for _, e := range a.errors {
		filename := a.files[e.line.fileIndex]
		s := fmt.Sprintf("%s error in '%s' line %d, col %d: %s", e.kind, filename, e.line.row, e.line.column+1, e.msg)
		errstrs = append(errstrs, s)
	}

	prog := &Program{
		Arch:    a.arch,
		Code:    a.code,
		Data:    a.data,
		Symbols: a.exportSymbols(),
		Globals: a.globals,
		Errors:  errstrs,
		Map: &SourceMap{
			Files: a.files,
			Lines: a.sourceLines,
		},
	}

	return prog, err
}

func (a *assembler) exportSymbols() map[string]Symbol {
	syms := make(map[string]Symbol)
	// A name defined in both spaces exports its text-space binding.
	for _, sp := range []Space{DataSpace, TextSpace} {
		for name, sym := range a.labels[sp] {
			if !sym.bound {
				continue
			}
			syms[name] = Symbol{Name: name, Addr: uint32(sym.addr), Space: sym.sp}
		}
	}
	return syms
}

// Read the assembly code and perform the initial parsing. Build up the
// segment list, the equate table, the label table and the macro
// registry. Macro invocations are expanded as they are encountered, so
// the segment list that comes out of this step is macro-free.
func (a *assembler) parse() error {
	a.logSection("Parsing assembly code")

	scanner := bufio.NewScanner(a.r)
	row := 1
	for scanner.Scan() {
		line := newFstring(0, row, scanner.Text())
		err := a.parseLine(line.stripTrailingComment())
		if err != nil {
			return err
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if a.capture != nil {
		a.addError(a.capture.decl, "macro '%s' missing .end_macro", a.capture.name)
		return errParse
	}
	return nil
}

// Parse a single line of assembly code.
func (a *assembler) parseLine(line fstring) error {
	// While capturing a macro body, stash lines verbatim until the
	// closing .end_macro.
	if a.capture != nil {
		return a.captureMacroLine(line)
	}

	line = line.consumeWhitespace()
	if line.isEmpty() {
		return nil
	}

	a.log("---")

	// A leading word ending in ':' is a label definition. The rest of
	// the line is parsed as usual.
	word, remain := line.consumeWhile(wordChar)
	if word.endsWithChar(':') {
		label := word.trunc(len(word.str) - 1)
		if err := a.storeLabel(label); err != nil {
			return err
		}
		line = remain.consumeWhitespace()
		if line.isEmpty() {
			return nil
		}
		word, remain = line.consumeWhile(wordChar)
	}

	if word.startsWithChar('.') {
		d, ok := directives[strings.ToLower(word.str)]
		if !ok {
			a.addError(word, "unknown directive '%s'", word.str)
			return errParse
		}
		return d.fn(a, remain.consumeWhitespace(), d.param)
	}

	// A macro invocation may attach its argument list directly to the
	// name with parentheses.
	if i := strings.IndexByte(word.str, '('); i >= 0 {
		return a.parseMacroCall(word.trunc(i), line.consume(i))
	}
	if _, ok := a.macros[word.str]; ok {
		return a.parseMacroCall(word, remain.consumeWhitespace())
	}

	return a.parseInstruction(word, remain.consumeWhitespace())
}

// Store a label into the assembler's label list and record a binding
// point for it in the active address space.
func (a *assembler) storeLabel(label fstring) error {
	if !label.startsWith(labelStartChar) || label.scanWhile(labelChar) != len(label.str) {
		a.addError(label, "invalid label '%s'", label.str)
		return errParse
	}

	if _, found := a.labels[a.space][label.str]; found {
		a.addErrorKind(errKindDuplicateSym, label, "label '%s' defined more than once in the %s space", label.str, a.space)
		return errParse
	}

	sym := &symbol{name: label.str, sp: a.space}
	a.labels[a.space][label.str] = sym
	a.segments = append(a.segments, &labeldef{addr: -1, name: label, sp: a.space})

	a.logLine(label, "label=%s space=%s", label.str, a.space)
	return nil
}

// Parse a .text segment directive.
func (a *assembler) parseTextSegment(line fstring, param any) error {
	a.logLine(line, "segment=text")
	a.space = TextSpace
	return nil
}

// Parse a .data segment directive.
func (a *assembler) parseDataSegment(line fstring, param any) error {
	a.logLine(line, "segment=data")
	a.space = DataSpace
	return nil
}

// Parse a .globl directive.
func (a *assembler) parseGlobal(line fstring, param any) error {
	name, remain := line.consumeWhile(labelChar)
	if name.isEmpty() || !remain.trim().isEmpty() {
		a.addError(line, "invalid .globl symbol '%s'", line.str)
		return errParse
	}
	a.logLine(name, "globl=%s", name.str)
	a.globals = append(a.globals, name.str)
	return nil
}

// Parse a .byte/.half/.word data directive.
func (a *assembler) parseData(line fstring, param any) error {
	if a.space != DataSpace {
		a.addError(line, "data directive outside .data segment")
		return errParse
	}

	seg := &datum{addr: -1, unit: param.(int)}

	remain := line
	for !remain.isEmpty() {
		var item fstring
		item, remain = remain.consumeUntilChar(',')
		if !remain.isEmpty() {
			remain = remain.consume(1).consumeWhitespace()
		}

		o, err := a.parseDataItem(item.trim())
		if err != nil {
			return err
		}
		seg.items = append(seg.items, o)
	}

	if len(seg.items) == 0 {
		a.addError(line, "data directive requires at least one value")
		return errParse
	}

	a.logLine(line, "bytes=%d", seg.bytes())
	a.segments = append(a.segments, seg)
	return nil
}

// Parse one value of a data directive: a numeric literal, an equate or
// a label reference.
func (a *assembler) parseDataItem(item fstring) (operand, error) {
	if item.isEmpty() {
		a.addError(item, "missing data value")
		return operand{}, errParse
	}
	if v, ok := parseNumber(item.str); ok {
		return operand{class: opImm, text: item, val: v}, nil
	}
	if item.startsWith(labelStartChar) && item.scanWhile(labelChar) == len(item.str) {
		return operand{class: opSym, text: item, sym: item.str}, nil
	}
	a.addError(item, "invalid data value '%s'", item.str)
	return operand{}, errParse
}

// Parse an .asciiz directive.
func (a *assembler) parseAsciiz(line fstring, param any) error {
	if a.space != DataSpace {
		a.addError(line, "data directive outside .data segment")
		return errParse
	}

	b, err := a.parseStringLiteral(line)
	if err != nil {
		return err
	}

	seg := &stringdata{addr: -1, b: append(b, 0)}
	a.logLine(line, "asciiz len=%d", len(seg.b))
	a.segments = append(a.segments, seg)
	return nil
}

// Parse a quoted string literal, interpreting \n, \t, \" and \\
// escape sequences.
func (a *assembler) parseStringLiteral(line fstring) ([]byte, error) {
	if !line.startsWithChar('"') {
		a.addError(line, "string literal must begin with a quote")
		return nil, errParse
	}

	var b []byte
	s := line.str
	i := 1
	for ; i < len(s) && s[i] != '"'; i++ {
		c := s[i]
		if c != '\\' {
			b = append(b, c)
			continue
		}
		i++
		if i == len(s) {
			break
		}
		switch s[i] {
		case 'n':
			b = append(b, '\n')
		case 't':
			b = append(b, '\t')
		case '"':
			b = append(b, '"')
		case '\\':
			b = append(b, '\\')
		default:
			a.addError(line.consume(i-1), "invalid escape sequence '\\%c'", s[i])
			return nil, errParse
		}
	}
	if i >= len(s) || s[i] != '"' {
		a.addError(line, "unterminated string literal")
		return nil, errParse
	}
	if !line.consume(i + 1).trim().isEmpty() {
		a.addError(line.consume(i+1), "unexpected text after string literal")
		return nil, errParse
	}
	return b, nil
}

// Parse a .space directive.
func (a *assembler) parseSpace(line fstring, param any) error {
	if a.space != DataSpace {
		a.addError(line, "data directive outside .data segment")
		return errParse
	}

	arg := line.trim()
	v, ok := parseNumber(arg.str)
	if !ok {
		if c, found := a.constants[arg.str]; found {
			v, ok = c, true
		}
	}
	if !ok || v < 0 || v > isa.DataMemSize {
		a.addError(arg, "invalid .space size '%s'", arg.str)
		return errParse
	}

	seg := &spacer{addr: -1, n: int(v)}
	a.logLine(line, "space=%d", seg.n)
	a.segments = append(a.segments, seg)
	return nil
}

// Parse an instruction mnemonic and its operand list. The mnemonic is
// not validated here; pseudo-instruction expansion and instruction
// matching happen in later steps.
func (a *assembler) parseInstruction(mnemonic, remain fstring) error {
	if !mnemonic.startsWith(alpha) {
		a.addError(mnemonic, "invalid mnemonic '%s'", mnemonic.str)
		return errParse
	}

	a.logLine(mnemonic, "op=%s", mnemonic.str)

	seg := &instruction{addr: -1, mnemonic: mnemonic}
	for !remain.isEmpty() {
		var field fstring
		field, remain = remain.consumeUntilChar(',')
		if !remain.isEmpty() {
			remain = remain.consume(1).consumeWhitespace()
			if remain.isEmpty() {
				a.addError(remain, "trailing comma in operand list")
				return errParse
			}
		}

		o, err := a.parseOperand(field.trim())
		if err != nil {
			return err
		}
		seg.operands = append(seg.operands, o)
	}

	a.segments = append(a.segments, seg)
	return nil
}

// Parse a single instruction operand.
func (a *assembler) parseOperand(field fstring) (operand, error) {
	if field.isEmpty() {
		a.addError(field, "missing operand")
		return operand{}, errParse
	}

	// offset(register) memory operand
	if field.endsWithChar(')') {
		return a.parseMemOperand(field)
	}

	if reg, ok := a.arch.Register(field.str); ok {
		return operand{class: opReg, text: field, reg: reg}, nil
	}

	if v, ok := parseNumber(field.str); ok {
		return operand{class: opImm, text: field, val: v}, nil
	}

	// A token shaped like a register name but absent from the register
	// file is an unknown register, not a symbol.
	if looksLikeRegister(a.arch, field.str) {
		a.addErrorKind(errKindUnknownReg, field, "unknown register '%s'", field.str)
		return operand{}, errParse
	}

	if field.startsWith(labelStartChar) && field.scanWhile(labelChar) == len(field.str) {
		return operand{class: opSym, text: field, sym: field.str}, nil
	}

	a.addError(field, "invalid operand '%s'", field.str)
	return operand{}, errParse
}

func looksLikeRegister(arch isa.Architecture, s string) bool {
	if arch == isa.MIPS32 {
		return len(s) > 0 && s[0] == '$'
	}
	if len(s) < 2 || s[0] != 'x' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !decimal(s[i]) {
			return false
		}
	}
	return true
}

// Parse an offset(register) memory operand. The offset may be a
// numeric literal, an equate or a symbol; it may also be empty, which
// means zero.
func (a *assembler) parseMemOperand(field fstring) (operand, error) {
	open := field.scanUntilChar('(')
	if open == len(field.str) {
		a.addError(field, "invalid memory operand '%s'", field.str)
		return operand{}, errParse
	}

	offset := field.trunc(open).trim()
	regname := field.consume(open + 1)
	regname = regname.trunc(len(regname.str) - 1).trim()

	reg, ok := a.arch.Register(regname.str)
	if !ok {
		a.addErrorKind(errKindUnknownReg, regname, "unknown register '%s'", regname.str)
		return operand{}, errParse
	}

	o := operand{class: opMem, text: field, reg: reg}
	switch {
	case offset.isEmpty():
		o.val = 0
	default:
		if v, numeric := parseNumber(offset.str); numeric {
			o.val = v
		} else if offset.startsWith(labelStartChar) && offset.scanWhile(labelChar) == len(offset.str) {
			o.sym = offset.str
		} else {
			a.addError(offset, "invalid memory offset '%s'", offset.str)
			return operand{}, errParse
		}
	}
	return o, nil
}

// Determine addresses of all segments. The two address spaces have
// independent cursors: instructions advance the text cursor one word
// at a time starting at the user-program base, data directives advance
// the data cursor by their byte size.
func (a *assembler) assignAddresses() error {
	a.logSection("Assigning addresses")

	a.textCursor = isa.UserBase
	a.dataCursor = isa.DataBase

	for _, s := range a.segments {
		switch ss := s.(type) {
		case *instruction:
			ss.addr = a.textCursor
			a.sourceLines = append(a.sourceLines, SourceLine{
				Address:   ss.addr,
				FileIndex: ss.mnemonic.fileIndex,
				Line:      ss.mnemonic.row,
			})
			a.log("%04X  %s", ss.addr, ss.mnemonic.str)
			a.textCursor += 4

		case *labeldef:
			sym := a.labels[ss.sp][ss.name.str]
			switch ss.sp {
			case TextSpace:
				ss.addr = a.textCursor
			case DataSpace:
				ss.addr = a.dataCursor
			}
			sym.addr = ss.addr
			sym.bound = true
			a.log("%04X  %s: (%s)", ss.addr, ss.name.str, ss.sp)

		case *datum:
			ss.addr = a.dataCursor
			a.log("%04X  .data len=%d", ss.addr, ss.bytes())
			a.dataCursor += ss.bytes()

		case *stringdata:
			ss.addr = a.dataCursor
			a.log("%04X  .asciiz len=%d", ss.addr, len(ss.b))
			a.dataCursor += len(ss.b)

		case *spacer:
			ss.addr = a.dataCursor
			a.log("%04X  .space len=%d", ss.addr, ss.n)
			a.dataCursor += ss.n
		}
	}

	if n := a.dataCursor - isa.DataBase; n > isa.DataMemSize {
		a.addErrorKind(errKindRegionOverflow, fstring{}, "data image is %d bytes, exceeding the %d byte data memory", n, isa.DataMemSize)
	}
	return nil
}

// Resolve every symbol reference in instruction operands and data
// items against the equate table and the label table.
func (a *assembler) resolveSymbols() error {
	a.logSection("Resolving symbols")

	for _, s := range a.segments {
		switch ss := s.(type) {
		case *instruction:
			sp := a.referenceSpace(ss)
			for i := range ss.operands {
				if err := a.resolveOperand(&ss.operands[i], sp); err != nil {
					return err
				}
			}
		case *datum:
			for i := range ss.items {
				if err := a.resolveOperand(&ss.items[i], DataSpace); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// referenceSpace returns the address space an instruction's label
// operands refer to. Branches and jumps target instruction addresses;
// everything else targets data addresses.
func (a *assembler) referenceSpace(s *instruction) Space {
	if inst := a.instSet.Lookup(s.mnemonic.str); inst != nil {
		switch inst.Format {
		case isa.FormatBranch, isa.FormatJ, isa.FormatMBranch, isa.FormatMJump:
			return TextSpace
		}
	}
	return DataSpace
}

// lookupLabel finds a bound label, trying the preferred address space
// first so that a name defined in both spaces resolves to the one the
// referencing context targets.
func (a *assembler) lookupLabel(name string, preferred Space) (*symbol, bool) {
	if sym, ok := a.labels[preferred][name]; ok && sym.bound {
		return sym, true
	}
	other := TextSpace
	if preferred == TextSpace {
		other = DataSpace
	}
	if sym, ok := a.labels[other][name]; ok && sym.bound {
		return sym, true
	}
	return nil, false
}

func (a *assembler) resolveOperand(o *operand, preferred Space) error {
	if o.sym == "" {
		return nil
	}

	if v, ok := a.constants[o.sym]; ok {
		o.val = v
	} else if sym, ok := a.lookupLabel(o.sym, preferred); ok {
		o.val = int64(sym.addr)
		o.isAddr = true
	} else {
		a.addErrorKind(errKindUndefinedSym, o.text, "symbol '%s' is not defined", o.sym)
		return errParse
	}

	switch o.part {
	case partHi:
		o.val = hiHalf(a.arch, o.val)
		o.isAddr = false
	case partLo:
		o.val = loHalf(a.arch, o.val)
		o.isAddr = false
	}

	a.log("%-15s val=$%X", o.sym, o.val)
	return nil
}

// Generate the instruction words.
func (a *assembler) generateCode() error {
	a.logSection("Generating code")

	for _, s := range a.segments {
		ss, ok := s.(*instruction)
		if !ok {
			continue
		}
		w, err := a.encodeInstruction(ss)
		if err != nil {
			return err
		}
		a.code = append(a.code, w)
		a.log("%04X-   %08X    %s", ss.addr, w, ss.mnemonic.str)
	}

	if len(a.code) > int(isa.UserRegion.Words()) {
		a.addErrorKind(errKindRegionOverflow, fstring{}, "program is %d words, exceeding the %d word user region", len(a.code), isa.UserRegion.Words())
	}
	return nil
}

// Build the data-memory image.
func (a *assembler) buildData() error {
	a.logSection("Building data image")

	for _, s := range a.segments {
		switch ss := s.(type) {
		case *datum:
			start := len(a.data)
			for _, item := range ss.items {
				b, err := a.dataValueBytes(ss.unit, item)
				if err != nil {
					return err
				}
				a.data = append(a.data, b...)
			}
			a.logBytes(ss.addr, a.data[start:])

		case *stringdata:
			a.data = append(a.data, ss.b...)
			a.logBytes(ss.addr, ss.b)

		case *spacer:
			a.data = append(a.data, make([]byte, ss.n)...)
			a.log("%04X-*  (%d zero bytes)", ss.addr, ss.n)
		}
	}
	return nil
}

// dataValueBytes converts one resolved data item to its big-endian
// byte representation, checking the directive's representable range.
func (a *assembler) dataValueBytes(unit int, item operand) ([]byte, error) {
	v := item.val
	min := int64(-1) << (unit*8 - 1)
	max := int64(1)<<(unit*8) - 1
	if v < min || v > max {
		a.addErrorKind(errKindOutOfRange, item.text, "value %d does not fit in %d byte(s)", v, unit)
		return nil, errParse
	}

	b := make([]byte, unit)
	u := uint64(v)
	for i := 0; i < unit; i++ {
		b[i] = byte(u >> uint((unit-1-i)*8))
	}
	return b, nil
}

// Append an error message to the assembler's error state.
func (a *assembler) addError(l fstring, format string, args ...any) {
	a.addErrorKind(errKindSyntax, l, format, args...)
}

// Append an error of a specific kind to the assembler's error state.
func (a *assembler) addErrorKind(kind string, l fstring, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.errors = append(a.errors, asmerror{kind, l, msg})
	if a.verbose {
		filename := a.files[l.fileIndex]
		fmt.Fprintf(a.out, "%s error in '%s' line %d, col %d: %s\n", kind, filename, l.row, l.column+1, msg)
		fmt.Fprintln(a.out, l.full)
		for i := 0; i < l.column; i++ {
			fmt.Fprintf(a.out, "-")
		}
		fmt.Fprintln(a.out, "^")
	}
}

// In verbose mode, log a string to the output writer.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line of assembly
// code.
func (a *assembler) logLine(line fstring, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-3d %-3d | %-20s | %s\n", line.row, line.column+1, detail, line.str)
	}
}

// In verbose mode, log a series of bytes with starting address.
func (a *assembler) logBytes(addr int, b []byte) {
	if a.verbose {
		for i, n := 0, len(b); i < n; i += 4 {
			j := i + 4
			if j > n {
				j = n
			}
			a.log("%04X-*  % X", addr+i, b[i:j])
		}
	}
}

// In verbose mode, log a section header to the output writer.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
