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

// Package recording reads and writes recording containers: a version
// byte and a frame count followed by length prefixed frames, all
// optionally wrapped in a compression filter.
package recording

import (
	"encoding/binary"
	"io"

	"github.com/TheCacophonyProject/face-recorder/frame"
)

const (
	// Ext is the file extension used for recordings.
	Ext = ".face"

	// TempExt is appended to a recording's name while it is written.
	TempExt = ".temp"

	headerSize = 1 + 4
)

// WriterOption configures a Writer or FileWriter.
type WriterOption func(*writerConfig)

type writerConfig struct {
	compression Compression
}

// WithCompression wraps the recording in the given filter.
func WithCompression(c Compression) WriterOption {
	return func(cfg *writerConfig) {
		cfg.compression = c
	}
}

func newWriterConfig(opts []WriterOption) writerConfig {
	var cfg writerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewWriter writes the header for a recording of declared frames to w
// and returns a Writer for the frames. Close must be called to flush
// the compression filter. Closing doesn't close w.
func NewWriter(w io.Writer, declared uint32, opts ...WriterOption) (*Writer, error) {
	cfg := newWriterConfig(opts)
	cw, err := cfg.compression.newCompressor(w)
	if err != nil {
		return nil, err
	}
	if err := writeHeader(cw, frame.FormatVersion, declared); err != nil {
		cw.Close()
		return nil, err
	}
	return &Writer{
		w:           cw,
		compression: cfg.compression,
		declared:    declared,
	}, nil
}

type Writer struct {
	w           io.WriteCloser
	compression Compression
	declared    uint32
	count       uint32
	closed      bool
}

func writeHeader(w io.Writer, version uint8, count uint32) error {
	var header [headerSize]byte
	header[0] = version
	binary.BigEndian.PutUint32(header[1:], count)
	_, err := w.Write(header[:])
	return err
}

// appendFrame checks f may go into a recording holding count of
// declared frames and returns its length prefixed encoding.
func appendFrame(f frame.Frame, count, declared uint32) ([]byte, error) {
	if f.Version != frame.FormatVersion {
		return nil, &VersionMismatchError{Frame: f.Version, Recording: frame.FormatVersion}
	}
	if count >= declared {
		return nil, ErrTooManyFrames
	}
	return frame.EncodeWithLengthPrefix(f)
}

func (w *Writer) Append(f frame.Frame) error {
	b, err := appendFrame(f, w.count, w.declared)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of frames appended so far.
func (w *Writer) Count() uint32 {
	return w.count
}

func (w *Writer) Declared() uint32 {
	return w.declared
}

// Close flushes the compression filter. If fewer frames than declared
// were appended the output is still flushed but ErrIncompleteRecording
// is returned, as the header can no longer be corrected.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.w.Close(); err != nil {
		return err
	}
	if w.count < w.declared {
		return ErrIncompleteRecording
	}
	return nil
}
