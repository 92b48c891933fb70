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

package recorder

import "github.com/TheCacophonyProject/face-recorder/frame"

// Recorder receives the frames of a capture session.
type Recorder interface {
	CheckCanRecord() error
	// StartRecording begins a recording of at most maxFrames frames.
	StartRecording(maxFrames uint32) error
	WriteFrame(frame.Frame) error
	// StopRecording finishes the recording with the frames written so
	// far.
	StopRecording() error
	// Abort discards the recording.
	Abort() error
}

// RecordingListener is told about each finished recording.
type RecordingListener interface {
	WhenRecorded(path string, frames uint32)
}

type nullListener struct{}

func (nullListener) WhenRecorded(string, uint32) {}

// NoWriteRecorder drops every frame. It is used for dry runs.
type NoWriteRecorder struct {
}

func (*NoWriteRecorder) CheckCanRecord() error        { return nil }
func (*NoWriteRecorder) StartRecording(uint32) error  { return nil }
func (*NoWriteRecorder) WriteFrame(frame.Frame) error { return nil }
func (*NoWriteRecorder) StopRecording() error         { return nil }
func (*NoWriteRecorder) Abort() error                 { return nil }
