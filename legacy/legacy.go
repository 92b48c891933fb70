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

// Package legacy reads and writes the old line based recording format
// and migrates it to recording containers.
//
// Each non-blank line holds one frame: the structured JSON form of the
// frame, base64 encoded with the standard alphabet.
package legacy

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/TheCacophonyProject/face-recorder/frame"
)

// Ext is the file extension used by legacy recordings.
const Ext = ".gesichter"

const maxLineSize = 1 << 20

var lineEnding = []byte("\r\n")

// MalformedLegacyLineError reports a line that couldn't be decoded.
// Line counts from 1 and includes blank lines.
type MalformedLegacyLineError struct {
	Line int
	Err  error
}

func (e *MalformedLegacyLineError) Error() string {
	return fmt.Sprintf("legacy line %d: %v", e.Line, e.Err)
}

func (e *MalformedLegacyLineError) Unwrap() error {
	return e.Err
}

func newScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLineSize)
	return s
}

// CountLines returns the number of non-blank lines in r.
func CountLines(r io.Reader) (int, error) {
	s := newScanner(r)
	count := 0
	for s.Scan() {
		if len(bytes.TrimSpace(s.Bytes())) > 0 {
			count++
		}
	}
	return count, s.Err()
}

type Reader struct {
	s    *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{s: newScanner(r)}
}

// Line returns the line number of the frame last returned by Next.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the frame on the next non-blank line, or io.EOF.
func (r *Reader) Next() (frame.Structured, error) {
	for r.s.Scan() {
		r.line++
		line := bytes.TrimSpace(r.s.Bytes())
		if len(line) == 0 {
			continue
		}
		s, err := DecodeLine(line)
		if err != nil {
			return frame.Structured{}, &MalformedLegacyLineError{Line: r.line, Err: err}
		}
		return s, nil
	}
	if err := r.s.Err(); err != nil {
		return frame.Structured{}, err
	}
	return frame.Structured{}, io.EOF
}

// DecodeLine decodes a single line without its line ending.
func DecodeLine(line []byte) (frame.Structured, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(line)))
	n, err := base64.StdEncoding.Decode(raw, line)
	if err != nil {
		return frame.Structured{}, fmt.Errorf("bad base64: %w", err)
	}
	var s frame.Structured
	if err := json.Unmarshal(raw[:n], &s); err != nil {
		return frame.Structured{}, fmt.Errorf("bad frame json: %w", err)
	}
	return s, nil
}

// EncodeLine returns the line for s, without a line ending.
func EncodeLine(s frame.Structured) ([]byte, error) {
	js, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	line := make([]byte, base64.StdEncoding.EncodedLen(len(js)))
	base64.StdEncoding.Encode(line, js)
	return line, nil
}

// Writer writes frames as legacy lines.
type Writer struct {
	w     *bufio.Writer
	count int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(s frame.Structured) error {
	line, err := EncodeLine(s)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(line); err != nil {
		return err
	}
	if _, err := w.w.Write(lineEnding); err != nil {
		return err
	}
	w.count++
	return nil
}

func (w *Writer) Count() int {
	return w.count
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}
