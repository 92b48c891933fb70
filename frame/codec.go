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

package frame

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/TheCacophonyProject/face-recorder/loglimiter"
)

const (
	// FormatVersion is the only frame version this codec understands.
	FormatVersion uint8 = 6

	// Packet size limits, see
	// https://github.com/EpicGames/UnrealEngine/blob/2bf1a5b83a7076a0fd275887b373f8ec9e99d431/Engine/Plugins/Runtime/AR/AppleAR/AppleARKitFaceSupport/Source/AppleARKitFaceSupport/Private/AppleARKitLiveLinkSource.cpp#L256
	MinSize = 264
	MaxSize = 774

	// LengthPrefixSize is the size of the length in front of each
	// frame in a recording.
	LengthPrefixSize = 4

	// version, two string lengths, frame time, shape count
	fixedSize = 1 + 4 + 4 + 16 + 1
)

var trailingLog = loglimiter.New(time.Minute)

// EncodedSize returns the number of bytes Encode would produce for f.
func EncodedSize(f Frame) int {
	return fixedSize + len(f.DeviceID) + len(f.SubjectName) + 4*int(f.ShapeCount)
}

// Encode serialises f into the Live Link wire format.
func Encode(f Frame) ([]byte, error) {
	size, err := checkEncodable(f)
	if err != nil {
		return nil, err
	}
	return appendFrame(make([]byte, 0, size), f), nil
}

// EncodeWithLengthPrefix serialises f preceded by its big-endian
// 32-bit length, as stored in a recording.
func EncodeWithLengthPrefix(f Frame) ([]byte, error) {
	size, err := checkEncodable(f)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, LengthPrefixSize+size)
	b = binary.BigEndian.AppendUint32(b, uint32(size))
	return appendFrame(b, f), nil
}

func checkEncodable(f Frame) (int, error) {
	if int(f.ShapeCount) > NumShapes {
		return 0, &EncodingError{Err: &ShapeCountError{Count: int(f.ShapeCount)}}
	}
	size := EncodedSize(f)
	if size < MinSize || size > MaxSize {
		return 0, &EncodingError{Err: &SizeError{Op: "encode", Size: size}}
	}
	return size, nil
}

func appendFrame(b []byte, f Frame) []byte {
	b = append(b, f.Version)
	b = appendString(b, f.DeviceID)
	b = appendString(b, f.SubjectName)
	b = binary.BigEndian.AppendUint32(b, uint32(f.Time.FrameNumber))
	b = binary.BigEndian.AppendUint32(b, math.Float32bits(f.Time.SubFrame))
	b = binary.BigEndian.AppendUint32(b, uint32(f.Time.Numerator))
	b = binary.BigEndian.AppendUint32(b, uint32(f.Time.Denominator))
	b = append(b, f.ShapeCount)
	for _, v := range f.Shapes[:f.ShapeCount] {
		b = binary.BigEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

func appendString(b []byte, s string) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

// Decode parses a frame from the Live Link wire format. Bytes left
// over after the last blendshape are logged and ignored.
func Decode(b []byte) (Frame, error) {
	f, n, err := decode(b)
	if err != nil {
		return Frame{}, err
	}
	if n != len(b) {
		trailingLog.Printf("left over data after frame: %d/%d bytes used", n, len(b))
	}
	return f, nil
}

// DecodeStrict is like Decode but fails if any bytes are left over.
func DecodeStrict(b []byte) (Frame, error) {
	f, n, err := decode(b)
	if err != nil {
		return Frame{}, err
	}
	if n != len(b) {
		return Frame{}, &TrailingBytesError{Consumed: n, Size: len(b)}
	}
	return f, nil
}

func decode(b []byte) (Frame, int, error) {
	if len(b) < MinSize || len(b) > MaxSize {
		return Frame{}, 0, &SizeError{Op: "decode", Size: len(b)}
	}

	c := &cursor{buf: b}
	var f Frame
	f.Version = c.uint8("version")
	if c.err == nil && f.Version != FormatVersion {
		return Frame{}, 0, &VersionError{Got: f.Version, Want: FormatVersion}
	}
	f.DeviceID = c.string("device_id")
	f.SubjectName = c.string("subject_name")
	f.Time.FrameNumber = c.int32("frame_number")
	f.Time.SubFrame = c.float32("sub_frame")
	f.Time.Numerator = c.int32("numerator")
	f.Time.Denominator = c.int32("denominator")
	f.ShapeCount = c.uint8("blendshape_count")
	if c.err != nil {
		return Frame{}, 0, c.err
	}
	if int(f.ShapeCount) > NumShapes {
		return Frame{}, 0, &ShapeCountError{Count: int(f.ShapeCount)}
	}
	for i := 0; i < int(f.ShapeCount); i++ {
		f.Shapes[i] = c.float32(shapeNames[i])
	}
	if c.err != nil {
		return Frame{}, 0, c.err
	}
	return f, c.pos, nil
}

// cursor reads big-endian fields from a buffer. The first failure is
// kept in err and every later read is a no-op.
type cursor struct {
	buf []byte
	pos int
	err error
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *cursor) take(field string, n int) []byte {
	if c.err != nil {
		return nil
	}
	if n > c.remaining() {
		c.err = &TruncatedBufferError{Field: field, Need: n, Remaining: c.remaining()}
		return nil
	}
	p := c.buf[c.pos : c.pos+n]
	c.pos += n
	return p
}

func (c *cursor) uint8(field string) uint8 {
	p := c.take(field, 1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (c *cursor) uint32(field string) uint32 {
	p := c.take(field, 4)
	if p == nil {
		return 0
	}
	return binary.BigEndian.Uint32(p)
}

func (c *cursor) int32(field string) int32 {
	return int32(c.uint32(field))
}

func (c *cursor) float32(field string) float32 {
	return math.Float32frombits(c.uint32(field))
}

func (c *cursor) string(field string) string {
	n := c.int32(field + " length")
	if c.err != nil {
		return ""
	}
	if n < 0 || int(n) > c.remaining() {
		c.err = &StringLengthError{Field: field, Length: n, Remaining: c.remaining()}
		return ""
	}
	return string(c.take(field, int(n)))
}
