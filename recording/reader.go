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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/TheCacophonyProject/face-recorder/frame"
)

// NewReader reads the recording header from r. The compression filter
// is detected from the first bytes of r.
func NewReader(r io.Reader) (*Reader, error) {
	raw := bufio.NewReader(r)
	compression := detectCompression(raw)
	dec, err := compression.newDecompressor(raw)
	if err != nil {
		return nil, &CorruptRecordingError{Reason: "bad " + compression.String() + " stream", Err: err}
	}

	rd := &Reader{
		dec:         dec,
		r:           bufio.NewReader(dec),
		compression: compression,
		buf:         make([]byte, frame.MaxSize),
	}
	if err := rd.readHeader(); err != nil {
		dec.Close()
		return nil, err
	}
	return rd, nil
}

// Reader returns the frames of a recording in order. Once every
// declared frame has been returned Next checks nothing follows them.
type Reader struct {
	dec         io.ReadCloser
	r           *bufio.Reader
	compression Compression
	version     uint8
	count       uint32
	read        uint32
	err         error
	buf         []byte
}

func (r *Reader) readHeader() error {
	var header [headerSize]byte
	n, err := io.ReadFull(r.r, header[:])
	if n > 0 && header[0] != frame.FormatVersion {
		return &IncompatibleVersionError{Got: header[0], Want: frame.FormatVersion}
	}
	if err != nil {
		return &CorruptRecordingError{Reason: "truncated header", Err: err}
	}
	r.version = header[0]
	r.count = binary.BigEndian.Uint32(header[1:])
	return nil
}

func (r *Reader) Version() uint8 {
	return r.version
}

// FrameCount returns the number of frames declared in the header.
func (r *Reader) FrameCount() uint32 {
	return r.count
}

// Position returns the number of frames returned by Next so far.
func (r *Reader) Position() uint32 {
	return r.read
}

func (r *Reader) Compression() Compression {
	return r.compression
}

// Next returns the next frame, or io.EOF after the last one. Errors
// are sticky: once Next fails it keeps returning the same error.
func (r *Reader) Next() (frame.Frame, error) {
	if r.err != nil {
		return frame.Frame{}, r.err
	}
	f, err := r.next()
	if err != nil {
		r.err = err
	}
	return f, err
}

func (r *Reader) next() (frame.Frame, error) {
	if r.read == r.count {
		if err := r.checkEnd(); err != nil {
			return frame.Frame{}, err
		}
		return frame.Frame{}, io.EOF
	}

	var prefix [frame.LengthPrefixSize]byte
	if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
		return frame.Frame{}, r.shortRead(err)
	}
	size := binary.BigEndian.Uint32(prefix[:])
	if size < frame.MinSize || size > frame.MaxSize {
		return frame.Frame{}, &frame.SizeError{Op: "read", Size: int(size)}
	}
	b := r.buf[:size]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return frame.Frame{}, r.shortRead(err)
	}
	f, err := frame.Decode(b)
	if err != nil {
		return frame.Frame{}, err
	}
	r.read++
	return f, nil
}

func (r *Reader) shortRead(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &CorruptRecordingError{
			Reason: fmt.Sprintf("header declares %d frames but only %d present", r.count, r.read),
		}
	}
	return &CorruptRecordingError{Reason: fmt.Sprintf("reading frame %d", r.read), Err: err}
}

func (r *Reader) checkEnd() error {
	_, err := r.r.ReadByte()
	switch err {
	case io.EOF:
		return nil
	case nil:
		return &CorruptRecordingError{
			Reason: fmt.Sprintf("data after the %d declared frames", r.count),
		}
	default:
		return &CorruptRecordingError{Reason: "reading end of recording", Err: err}
	}
}

// Close releases the decompressor. It doesn't close the underlying
// reader.
func (r *Reader) Close() error {
	return r.dec.Close()
}

// ReadAll reads every frame of the recording at path.
func ReadAll(path string) ([]frame.Frame, error) {
	fr, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	frames := make([]frame.Frame, 0, min(fr.FrameCount(), 1<<16))
	for {
		f, err := fr.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}
