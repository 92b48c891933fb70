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
	"errors"
	"fmt"
)

var (
	// ErrTooManyFrames is returned by Append once the declared number
	// of frames has been written.
	ErrTooManyFrames = errors.New("more frames than declared in recording header")

	// ErrIncompleteRecording is returned by Writer.Close when fewer
	// frames than declared were appended.
	ErrIncompleteRecording = errors.New("fewer frames than declared in recording header")
)

// VersionMismatchError is returned when appending a frame whose
// version differs from the recording's.
type VersionMismatchError struct {
	Frame     uint8
	Recording uint8
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("frame version %d doesn't match recording version %d", e.Frame, e.Recording)
}

// IncompatibleVersionError is returned when a recording was written
// with a different format version.
type IncompatibleVersionError struct {
	Got  uint8
	Want uint8
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("incompatible recording version %d (want %d)", e.Got, e.Want)
}

// CorruptRecordingError is returned when a recording doesn't hold
// exactly the frames its header declares.
type CorruptRecordingError struct {
	Reason string
	Err    error
}

func (e *CorruptRecordingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt recording: %s: %v", e.Reason, e.Err)
	}
	return "corrupt recording: " + e.Reason
}

func (e *CorruptRecordingError) Unwrap() error {
	return e.Err
}
