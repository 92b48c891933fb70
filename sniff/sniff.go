// face-recorder - record and replay facial capture animation frames
//  Copyright (C) 2021, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package sniff guesses whether a recording file is a legacy line
// based recording or a binary recording container.
//
// Legacy recordings have no header, so this is a heuristic: the start
// of the file is treated as text if it is printable UTF-8. Very short
// or oddly encoded files can be misclassified.
package sniff

import (
	"fmt"
	"io"
	"os"
	"unicode"
	"unicode/utf8"
)

// ProbeSize is the number of bytes inspected.
const ProbeSize = 32

type Format int

const (
	Text Format = iota
	Binary
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Classify inspects the start of the file at path.
func Classify(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Binary, err
	}
	defer f.Close()
	return ClassifyReader(f)
}

// ClassifyReader inspects up to ProbeSize bytes from r.
func ClassifyReader(r io.Reader) (Format, error) {
	buf := make([]byte, ProbeSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Binary, err
	}
	return ClassifyBytes(buf[:n]), nil
}

// ClassifyBytes classifies a prefix of a file. An empty prefix is
// Text, as an empty legacy recording has no lines.
func ClassifyBytes(prefix []byte) Format {
	for len(prefix) > 0 {
		r, size := utf8.DecodeRune(prefix)
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(prefix) {
				// A rune cut short by the probe window.
				return Text
			}
			return Binary
		}
		if !isTextRune(r) {
			return Binary
		}
		prefix = prefix[size:]
	}
	return Text
}

func isTextRune(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return true
	}
	return !unicode.IsControl(r)
}
