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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Structured is the JSON form of a frame as written by the original
// line based recorder. Raw holds the optional embedded wire frame.
type Structured struct {
	Frame
	Raw []byte
}

type jsonTime struct {
	FrameNumber int32   `json:"frame_number"`
	SubFrame    float32 `json:"sub_frame"`
	Numerator   int32   `json:"numerator"`
	Denominator int32   `json:"denominator"`
}

type jsonRawFrame struct {
	Size int    `json:"size"`
	Data []byte `json:"data"`
}

type jsonFrame struct {
	Version         *uint8        `json:"version"`
	DeviceID        *string       `json:"device_id"`
	SubjectName     *string       `json:"subject_name"`
	FrameTime       *jsonTime     `json:"frame_time"`
	BlendshapeCount *int          `json:"blendshape_count"`
	Blendshapes     *shapeValues  `json:"blendshapes"`
	RawFrame        *jsonRawFrame `json:"raw_frame,omitempty"`
}

// shapeValues is the blendshapes object. It is always written in
// canonical order regardless of how it was read.
type shapeValues struct {
	count  int
	values [NumShapes]float32
	// highest index set while reading, -1 if none
	highest int
}

func (s shapeValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < s.count; i++ {
		v := float64(s.values[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("blendshape %s: unsupported value %v", Shape(i), v)
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(strconv.Quote(shapeNames[i]))
		buf.WriteString(": ")
		buf.Write(strconv.AppendFloat(nil, v, 'g', -1, 32))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *shapeValues) UnmarshalJSON(b []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.highest = -1
	for name, v := range raw {
		shape, err := ParseShape(name)
		if err != nil {
			return err
		}
		s.values[shape] = float32(v)
		if int(shape) > s.highest {
			s.highest = int(shape)
		}
	}
	return nil
}

// MarshalJSON writes the frame in the legacy structured form.
func (f Frame) MarshalJSON() ([]byte, error) {
	return Structured{Frame: f}.MarshalJSON()
}

// UnmarshalJSON reads the legacy structured form, ignoring any raw
// frame.
func (f *Frame) UnmarshalJSON(b []byte) error {
	var s Structured
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = s.Frame
	return nil
}

func (s Structured) MarshalJSON() ([]byte, error) {
	f := s.Frame
	if int(f.ShapeCount) > NumShapes {
		return nil, &ShapeCountError{Count: int(f.ShapeCount)}
	}
	count := int(f.ShapeCount)
	out := jsonFrame{
		Version:     &f.Version,
		DeviceID:    &f.DeviceID,
		SubjectName: &f.SubjectName,
		FrameTime: &jsonTime{
			FrameNumber: f.Time.FrameNumber,
			SubFrame:    f.Time.SubFrame,
			Numerator:   f.Time.Numerator,
			Denominator: f.Time.Denominator,
		},
		BlendshapeCount: &count,
		Blendshapes:     &shapeValues{count: count, values: f.Shapes},
	}
	if s.Raw != nil {
		out.RawFrame = &jsonRawFrame{Size: len(s.Raw), Data: s.Raw}
	}
	return json.Marshal(out)
}

func (s *Structured) UnmarshalJSON(b []byte) error {
	var in jsonFrame
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch {
	case in.Version == nil:
		return errors.New("missing version")
	case in.DeviceID == nil:
		return errors.New("missing device_id")
	case in.SubjectName == nil:
		return errors.New("missing subject_name")
	case in.FrameTime == nil:
		return errors.New("missing frame_time")
	case in.BlendshapeCount == nil:
		return errors.New("missing blendshape_count")
	case in.Blendshapes == nil:
		return errors.New("missing blendshapes")
	}
	count := *in.BlendshapeCount
	if count < 0 || count > NumShapes {
		return &ShapeCountError{Count: count}
	}
	if in.Blendshapes.highest >= count {
		return fmt.Errorf("blendshape %s present but blendshape_count is %d", Shape(in.Blendshapes.highest), count)
	}

	*s = Structured{
		Frame: Frame{
			Version:     *in.Version,
			DeviceID:    *in.DeviceID,
			SubjectName: *in.SubjectName,
			Time: Time{
				FrameNumber: in.FrameTime.FrameNumber,
				SubFrame:    in.FrameTime.SubFrame,
				Numerator:   in.FrameTime.Numerator,
				Denominator: in.FrameTime.Denominator,
			},
			ShapeCount: uint8(count),
			Shapes:     in.Blendshapes.values,
		},
	}
	if in.RawFrame != nil {
		s.Raw = in.RawFrame.Data
	}
	return nil
}
