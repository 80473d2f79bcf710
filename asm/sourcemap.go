// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "sort"

// A SourceMap associates instruction-memory addresses with the source
// code lines they were assembled from.
type SourceMap struct {
	Files []string
	Lines []SourceLine
}

// A SourceLine associates a single address with a source file line.
type SourceLine struct {
	Address   int // instruction address
	FileIndex int // source file index
	Line      int // 1-based line number
}

// FindLine returns the source line associated with an instruction
// address.
func (m *SourceMap) FindLine(addr int) (SourceLine, bool) {
	i := sort.Search(len(m.Lines), func(i int) bool {
		return m.Lines[i].Address >= addr
	})
	if i < len(m.Lines) && m.Lines[i].Address == addr {
		return m.Lines[i], true
	}
	return SourceLine{}, false
}

// File returns the name of the file referenced by a source line.
func (m *SourceMap) File(l SourceLine) string {
	if l.FileIndex < 0 || l.FileIndex >= len(m.Files) {
		return ""
	}
	return m.Files[l.FileIndex]
}
