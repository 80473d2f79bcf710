// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emit serializes linked memory images into the FPGA
// configuration format and the serial bootload format.
package emit

import (
	"bufio"
	"fmt"
	"io"
)

// WriteCOE writes memory words in the COE memory-initialization
// format: a radix declaration, a vector header, and one 8-digit
// hexadecimal word per line, comma separated and semicolon terminated.
// An empty word slice produces a single zero word so that the vector
// is never empty.
func WriteCOE(w io.Writer, words []uint32) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "memory_initialization_radix=16;")
	fmt.Fprintln(bw, "memory_initialization_vector=")

	if len(words) == 0 {
		fmt.Fprintln(bw, "00000000;")
		return bw.Flush()
	}

	for i, word := range words {
		sep := ","
		if i == len(words)-1 {
			sep = ";"
		}
		fmt.Fprintf(bw, "%08x%s\n", word, sep)
	}
	return bw.Flush()
}
