// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"bufio"
	"fmt"
	"io"
)

// Handshake markers delimiting the program and data byte streams
// during a serial bootload transfer.
const (
	programMarker = "03020000"
	dataMarker    = "03030000"
)

// WriteSerial writes the serial bootload stream: the program handshake
// marker, every program word split into big-endian bytes with one
// 2-digit hexadecimal byte per line, the data handshake marker, and
// every data byte. The data marker is present even when the data image
// is empty, so the receiver always sees both phases.
func WriteSerial(w io.Writer, words []uint32, data []byte) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, programMarker)
	for _, word := range words {
		fmt.Fprintf(bw, "%02x\n", byte(word>>24))
		fmt.Fprintf(bw, "%02x\n", byte(word>>16))
		fmt.Fprintf(bw, "%02x\n", byte(word>>8))
		fmt.Fprintf(bw, "%02x\n", byte(word))
	}

	fmt.Fprintln(bw, dataMarker)
	for _, b := range data {
		fmt.Fprintf(bw, "%02x\n", b)
	}
	return bw.Flush()
}
