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
	"errors"
	"fmt"
)

// SizeError is returned when an encoded frame is smaller than MinSize
// or larger than MaxSize.
type SizeError struct {
	Op   string
	Size int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: frame size %d outside of %d - %d bytes", e.Op, e.Size, MinSize, MaxSize)
}

// EncodingError wraps the reason a frame could not be encoded.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return "encoding frame: " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// StringLengthError is returned when a string length prefix is
// negative or runs past the end of the buffer.
type StringLengthError struct {
	Field     string
	Length    int32
	Remaining int
}

func (e *StringLengthError) Error() string {
	return fmt.Sprintf("invalid %s length %d (%d bytes left)", e.Field, e.Length, e.Remaining)
}

// TruncatedBufferError is returned when a fixed width field can't be
// read in full.
type TruncatedBufferError struct {
	Field     string
	Need      int
	Remaining int
}

func (e *TruncatedBufferError) Error() string {
	return fmt.Sprintf("truncated frame reading %s: need %d bytes, %d left", e.Field, e.Need, e.Remaining)
}

// ShapeCountError is returned when a frame declares more blendshapes
// than the canonical list holds.
type ShapeCountError struct {
	Count int
}

func (e *ShapeCountError) Error() string {
	return fmt.Sprintf("blendshape count %d exceeds %d", e.Count, NumShapes)
}

// VersionError is returned when a frame's version byte isn't
// FormatVersion.
type VersionError struct {
	Got  uint8
	Want uint8
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported frame version %d (want %d)", e.Got, e.Want)
}

// TrailingBytesError is returned by DecodeStrict when bytes remain
// after the last field.
type TrailingBytesError struct {
	Consumed int
	Size     int
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("%d trailing bytes after frame (%d/%d)", e.Size-e.Consumed, e.Consumed, e.Size)
}

// UnknownShapeError is returned when a name isn't in the canonical
// blendshape list.
type UnknownShapeError struct {
	Name string
}

func (e *UnknownShapeError) Error() string {
	return fmt.Sprintf("unknown blendshape %q", e.Name)
}

// IsRecoverable reports whether err describes a single bad frame.
// A live capture can skip such a frame and carry on.
func IsRecoverable(err error) bool {
	var (
		sizeErr     *SizeError
		strErr      *StringLengthError
		truncErr    *TruncatedBufferError
		countErr    *ShapeCountError
		versionErr  *VersionError
		trailingErr *TrailingBytesError
	)
	return errors.As(err, &sizeErr) ||
		errors.As(err, &strErr) ||
		errors.As(err, &truncErr) ||
		errors.As(err, &countErr) ||
		errors.As(err, &versionErr) ||
		errors.As(err, &trailingErr)
}
