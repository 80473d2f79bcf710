// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/minisys/masm/link"
)

// WriteFiles writes the output files for a linked image into a
// directory: '<name>_text.coe' holding the full instruction memory,
// '<name>_data.coe' holding the data memory (omitted when the data
// image is empty), and '<name>_serial.txt' holding the serial bootload
// stream for the user program and data.
func WriteFiles(dir, name string, img *link.LinkedImage) error {
	err := writeFile(filepath.Join(dir, name+"_text.coe"), func(f *os.File) error {
		return WriteCOE(f, img.Text)
	})
	if err != nil {
		return err
	}

	if len(img.Data) > 0 {
		err = writeFile(filepath.Join(dir, name+"_data.coe"), func(f *os.File) error {
			return WriteCOE(f, img.DataWords())
		})
		if err != nil {
			return err
		}
	}

	return writeFile(filepath.Join(dir, name+"_serial.txt"), func(f *os.File) error {
		return WriteSerial(f, img.User, img.Data)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %v", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write '%s': %v", path, err)
	}
	return f.Close()
}
