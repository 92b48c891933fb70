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

package recording

import (
	"io"
	"os"

	"github.com/TheCacophonyProject/face-recorder/frame"
)

type ReaderOption func(*FileReader)

// Loop makes the reader start again from the first frame after the
// last one instead of returning io.EOF.
func Loop(loop bool) ReaderOption {
	return func(fr *FileReader) {
		fr.loop = loop
	}
}

// Open opens the recording at path.
func Open(path string, opts ...ReaderOption) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	fr := &FileReader{f: f, r: r}
	for _, opt := range opts {
		opt(fr)
	}
	return fr, nil
}

type FileReader struct {
	f    *os.File
	r    *Reader
	loop bool
	pass int
}

// Next returns the next frame. When looping, the recording is reread
// from the start after its last frame, so io.EOF is only returned for a
// recording with no frames.
func (fr *FileReader) Next() (frame.Frame, error) {
	f, err := fr.r.Next()
	if err != io.EOF || !fr.loop || fr.r.FrameCount() == 0 {
		return f, err
	}
	if err := fr.rewind(); err != nil {
		return frame.Frame{}, err
	}
	return fr.r.Next()
}

func (fr *FileReader) rewind() error {
	fr.r.Close()
	if _, err := fr.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r, err := NewReader(fr.f)
	if err != nil {
		return err
	}
	fr.r = r
	fr.pass++
	return nil
}

func (fr *FileReader) Name() string {
	return fr.f.Name()
}

func (fr *FileReader) FrameCount() uint32 {
	return fr.r.FrameCount()
}

func (fr *FileReader) Version() uint8 {
	return fr.r.Version()
}

func (fr *FileReader) Compression() Compression {
	return fr.r.Compression()
}

// Index returns the position in the current pass of the frame last
// returned by Next, starting from zero.
func (fr *FileReader) Index() int {
	return int(fr.r.Position()) - 1
}

// Pass returns how many times the reader has looped.
func (fr *FileReader) Pass() int {
	return fr.pass
}

func (fr *FileReader) Close() error {
	fr.r.Close()
	return fr.f.Close()
}
