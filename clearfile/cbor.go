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

package clearfile

import (
	"errors"
	"fmt"

	"github.com/TheCacophonyProject/face-recorder/frame"
)

// The CBOR document uses the same keys as the JSON one. Blendshapes
// are a map so a document may carry any subset of names.
type cborDocument struct {
	Count  int         `cbor:"count"`
	Frames []cborFrame `cbor:"frames"`
}

type cborTime struct {
	FrameNumber int32   `cbor:"frame_number"`
	SubFrame    float32 `cbor:"sub_frame"`
	Numerator   int32   `cbor:"numerator"`
	Denominator int32   `cbor:"denominator"`
}

type cborFrame struct {
	Version         *uint8             `cbor:"version"`
	DeviceID        *string            `cbor:"device_id"`
	SubjectName     *string            `cbor:"subject_name"`
	FrameTime       *cborTime          `cbor:"frame_time"`
	BlendshapeCount *int               `cbor:"blendshape_count"`
	Blendshapes     map[string]float32 `cbor:"blendshapes"`
	RawFrame        []byte             `cbor:"raw_frame,omitempty"`
}

func toCBOR(s frame.Structured) cborFrame {
	f := s.Frame
	count := int(f.ShapeCount)
	return cborFrame{
		Version:     &f.Version,
		DeviceID:    &f.DeviceID,
		SubjectName: &f.SubjectName,
		FrameTime: &cborTime{
			FrameNumber: f.Time.FrameNumber,
			SubFrame:    f.Time.SubFrame,
			Numerator:   f.Time.Numerator,
			Denominator: f.Time.Denominator,
		},
		BlendshapeCount: &count,
		Blendshapes:     f.ShapeMap(),
		RawFrame:        s.Raw,
	}
}

func (cf cborFrame) structured() (frame.Structured, error) {
	switch {
	case cf.Version == nil:
		return frame.Structured{}, errors.New("missing version")
	case cf.DeviceID == nil:
		return frame.Structured{}, errors.New("missing device_id")
	case cf.SubjectName == nil:
		return frame.Structured{}, errors.New("missing subject_name")
	case cf.FrameTime == nil:
		return frame.Structured{}, errors.New("missing frame_time")
	case cf.BlendshapeCount == nil:
		return frame.Structured{}, errors.New("missing blendshape_count")
	case cf.Blendshapes == nil:
		return frame.Structured{}, errors.New("missing blendshapes")
	}
	count := *cf.BlendshapeCount
	if count < 0 || count > frame.NumShapes {
		return frame.Structured{}, &frame.ShapeCountError{Count: count}
	}

	f := frame.Frame{
		Version:     *cf.Version,
		DeviceID:    *cf.DeviceID,
		SubjectName: *cf.SubjectName,
		Time: frame.Time{
			FrameNumber: cf.FrameTime.FrameNumber,
			SubFrame:    cf.FrameTime.SubFrame,
			Numerator:   cf.FrameTime.Numerator,
			Denominator: cf.FrameTime.Denominator,
		},
		ShapeCount: uint8(count),
	}
	for name, v := range cf.Blendshapes {
		shape, err := frame.ParseShape(name)
		if err != nil {
			return frame.Structured{}, err
		}
		if int(shape) >= count {
			return frame.Structured{}, fmt.Errorf("blendshape %s present but blendshape_count is %d", shape, count)
		}
		f.Shapes[shape] = v
	}
	return frame.Structured{Frame: f, Raw: cf.RawFrame}, nil
}
