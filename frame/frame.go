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

// Package frame implements the Live Link face frame: one timestamped
// set of ARKit blendshape weights plus the identity of the capturing
// device.
package frame

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultSubjectName is the subject used for synthesized frames.
const DefaultSubjectName = "LLV"

// AnonymousDeviceID replaces the device id of renamed recordings. It
// is not a UUID.
const AnonymousDeviceID = "DEADC0DE-1337-1337-1337-CAFEBABE"

// MaxDeviceIDSize is the longest device id that still leaves room for
// every blendshape in a frame.
const MaxDeviceIDSize = MaxSize - fixedSize - NumShapes*4

// NilDeviceID is the device id used for synthesized frames.
var NilDeviceID = uuid.Nil.String()

// Time is the logical timestamp of a frame plus the capture frame rate
// as a ratio (60/1 for 60 fps).
type Time struct {
	FrameNumber int32
	SubFrame    float32
	Numerator   int32
	Denominator int32
}

// Rate returns the frame rate in frames per second, or 0 if the
// denominator is zero.
func (t Time) Rate() float64 {
	if t.Denominator == 0 {
		return 0
	}
	return float64(t.Numerator) / float64(t.Denominator)
}

// Frame is a single face capture frame. Only the first ShapeCount
// entries of Shapes are part of the frame; the rest are zero.
type Frame struct {
	Version     uint8
	DeviceID    string
	SubjectName string
	Time        Time
	ShapeCount  uint8
	Shapes      [NumShapes]float32
}

// Shape returns the weight of shape s.
// Unknown shapes are 0.
func (f Frame) Shape(s Shape) float32 {
	if int(s) >= NumShapes {
		return 0
	}
	return f.Shapes[s]
}

// WithShape returns a copy of f with shape s set to v. ShapeCount
// grows to include s if needed. An unknown shape leaves f unchanged.
func (f Frame) WithShape(s Shape, v float32) Frame {
	if int(s) >= NumShapes {
		return f
	}
	f.Shapes[s] = v
	if int(s) >= int(f.ShapeCount) {
		f.ShapeCount = uint8(s) + 1
	}
	return f
}

// ShapeMap returns the present shapes keyed by canonical name.
func (f Frame) ShapeMap() map[string]float32 {
	out := make(map[string]float32, f.ShapeCount)
	for i := 0; i < int(f.ShapeCount) && i < NumShapes; i++ {
		out[shapeNames[i]] = f.Shapes[i]
	}
	return out
}

// Equal reports whether both frames hold the same field values.
func (f Frame) Equal(other Frame) bool {
	return f == other
}

// Diff describes each field which differs between f and other.
func (f Frame) Diff(other Frame) []string {
	var diffs []string
	if f.Version != other.Version {
		diffs = append(diffs, fmt.Sprintf("version differ: %d != %d", f.Version, other.Version))
	}
	if f.DeviceID != other.DeviceID {
		diffs = append(diffs, fmt.Sprintf("device_id differ: %s != %s", f.DeviceID, other.DeviceID))
	}
	if f.SubjectName != other.SubjectName {
		diffs = append(diffs, fmt.Sprintf("subject_name differ: %s != %s", f.SubjectName, other.SubjectName))
	}
	if f.Time != other.Time {
		diffs = append(diffs, fmt.Sprintf("frame_time differ: %+v != %+v", f.Time, other.Time))
	}
	if f.ShapeCount != other.ShapeCount {
		diffs = append(diffs, fmt.Sprintf("blendshape_count differ: %d != %d", f.ShapeCount, other.ShapeCount))
	}
	for i := range f.Shapes {
		if f.Shapes[i] != other.Shapes[i] {
			diffs = append(diffs, fmt.Sprintf("%s differ: %v != %v", Shape(i), f.Shapes[i], other.Shapes[i]))
		}
	}
	return diffs
}

// Default returns the synthetic frame number n: every shape present,
// JawOpen cycling from 0 to 1 every 30 frames.
func Default(n int) Frame {
	f := Frame{
		Version:     FormatVersion,
		DeviceID:    NilDeviceID,
		SubjectName: DefaultSubjectName,
		Time: Time{
			FrameNumber: int32(1337 + n),
			SubFrame:    float32(float64(n)*0.000614 + 0.121),
			Numerator:   60,
			Denominator: 1,
		},
		ShapeCount: uint8(NumShapes),
	}
	f.Shapes[JawOpen] = float32(fract(float64(n) / 30))
	return f
}

func fract(x float64) float64 {
	_, frac := math.Modf(x)
	return frac
}

// Anonymize returns a copy of f with its identity replaced. An empty
// deviceID means AnonymousDeviceID.
func Anonymize(f Frame, subject, deviceID string) Frame {
	if deviceID == "" {
		deviceID = AnonymousDeviceID
	}
	f.SubjectName = subject
	f.DeviceID = deviceID
	return f
}

// ValidDeviceID reports whether id can be used as a device id. Device
// ids are opaque: any non-empty UTF-8 string up to MaxDeviceIDSize
// bytes.
func ValidDeviceID(id string) bool {
	return id != "" && len(id) <= MaxDeviceIDSize && utf8.ValidString(id)
}
