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
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNames(t *testing.T) {
	names := ShapeNames()
	require.Len(t, names, 61)
	assert.Equal(t, "EyeBlinkLeft", names[0])
	assert.Equal(t, "JawOpen", names[17])
	assert.Equal(t, "RightEyeRoll", names[60])

	for i, name := range names {
		s, err := ParseShape(name)
		require.NoError(t, err)
		assert.Equal(t, Shape(i), s)
		assert.Equal(t, name, s.String())
	}
}

func TestParseUnknownShape(t *testing.T) {
	_, err := ParseShape("jawopen")
	var shapeErr *UnknownShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "jawopen", shapeErr.Name)
}

func TestDefaultFrame(t *testing.T) {
	f := Default(0)
	assert.Equal(t, FormatVersion, f.Version)
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", f.DeviceID)
	assert.Equal(t, "LLV", f.SubjectName)
	assert.Equal(t, int32(1337), f.Time.FrameNumber)
	assert.Equal(t, float32(0.121), f.Time.SubFrame)
	assert.Equal(t, 60.0, f.Time.Rate())
	assert.Equal(t, uint8(NumShapes), f.ShapeCount)
	assert.Equal(t, float32(0), f.Shape(JawOpen))

	f = Default(15)
	assert.Equal(t, int32(1352), f.Time.FrameNumber)
	assert.InDelta(t, 0.5, f.Shape(JawOpen), 1e-6)

	f = Default(30)
	assert.InDelta(t, 0, f.Shape(JawOpen), 1e-6)
}

func TestAnonymize(t *testing.T) {
	f := Anonymize(Default(1), "Subject", "")
	assert.Equal(t, "Subject", f.SubjectName)
	assert.Equal(t, "DEADC0DE-1337-1337-1337-CAFEBABE", f.DeviceID)
	assert.True(t, ValidDeviceID(f.DeviceID))

	f = Anonymize(Default(1), "Other", NilDeviceID)
	assert.Equal(t, NilDeviceID, f.DeviceID)
	_, err := Encode(f)
	assert.NoError(t, err)
}

func TestValidDeviceID(t *testing.T) {
	assert.True(t, ValidDeviceID(AnonymousDeviceID))
	assert.True(t, ValidDeviceID(NilDeviceID))
	assert.True(t, ValidDeviceID("iPhone von Lisa"))
	assert.True(t, ValidDeviceID(strings.Repeat("a", MaxDeviceIDSize)))

	assert.False(t, ValidDeviceID(""))
	assert.False(t, ValidDeviceID(strings.Repeat("a", MaxDeviceIDSize+1)))
	assert.False(t, ValidDeviceID("\xff\xfe"))
}

func TestLongestDeviceIDEncodes(t *testing.T) {
	f := Anonymize(Default(0), "", strings.Repeat("a", MaxDeviceIDSize))
	b, err := Encode(f)
	require.NoError(t, err)
	assert.Len(t, b, MaxSize)
}

func TestUnknownShape(t *testing.T) {
	f := Default(0)
	assert.Equal(t, f, f.WithShape(Shape(NumShapes), 1))
	assert.Equal(t, float32(0), f.Shape(Shape(NumShapes)))
	assert.Equal(t, f, f.WithShape(Shape(255), 1))
}

func TestDiff(t *testing.T) {
	a := Default(0)
	b := a.WithShape(CheekPuff, 0.25)
	b.SubjectName = "other"

	diffs := a.Diff(b)
	require.Len(t, diffs, 2)
	assert.Contains(t, diffs[0], "subject_name")
	assert.Contains(t, diffs[1], "CheekPuff")
	assert.False(t, a.Equal(b))
}

func TestShapeMap(t *testing.T) {
	f := Frame{}.WithShape(EyeLookInLeft, 0.75)
	m := f.ShapeMap()
	assert.Len(t, m, 3)
	assert.Equal(t, float32(0.75), m["EyeLookInLeft"])
}

func TestJSONRoundTrip(t *testing.T) {
	f := makeTestFrame()
	b, err := json.Marshal(f)
	require.NoError(t, err)

	var f2 Frame
	require.NoError(t, json.Unmarshal(b, &f2))
	assert.Equal(t, f, f2)
}

func TestJSONShapesInCanonicalOrder(t *testing.T) {
	b, err := json.Marshal(Default(3))
	require.NoError(t, err)
	s := string(b)

	prev := -1
	for _, name := range ShapeNames() {
		i := strings.Index(s, `"`+name+`"`)
		require.True(t, i > prev, name)
		prev = i
	}
}

func TestJSONLegacyForm(t *testing.T) {
	in := `{"version": 6, "device_id": "abc", "subject_name": "me",
		"frame_time": {"frame_number": 12, "sub_frame": 0.12099999934434891, "numerator": 60, "denominator": 1},
		"blendshape_count": 3,
		"blendshapes": {"EyeLookDownLeft": 0.5, "EyeBlinkLeft": 0.25, "EyeLookInLeft": 1.0}}`

	var s Structured
	require.NoError(t, json.Unmarshal([]byte(in), &s))
	assert.Nil(t, s.Raw)
	assert.Equal(t, "abc", s.DeviceID)
	assert.Equal(t, int32(12), s.Time.FrameNumber)
	assert.Equal(t, float32(0.121), s.Time.SubFrame)
	assert.Equal(t, uint8(3), s.ShapeCount)
	assert.Equal(t, float32(0.25), s.Shape(EyeBlinkLeft))
	assert.Equal(t, float32(0.5), s.Shape(EyeLookDownLeft))
	assert.Equal(t, float32(1), s.Shape(EyeLookInLeft))
}

func TestJSONRawFrame(t *testing.T) {
	f := Default(2)
	raw, err := Encode(f)
	require.NoError(t, err)

	b, err := json.Marshal(Structured{Frame: f, Raw: raw})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"raw_frame"`)

	var s Structured
	require.NoError(t, json.Unmarshal(b, &s))
	assert.Equal(t, f, s.Frame)
	assert.Equal(t, raw, s.Raw)
}

func TestJSONRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"unknown shape":     `{"version":6,"device_id":"","subject_name":"","frame_time":{},"blendshape_count":1,"blendshapes":{"Nose":1}}`,
		"shape past count":  `{"version":6,"device_id":"","subject_name":"","frame_time":{},"blendshape_count":1,"blendshapes":{"JawOpen":1}}`,
		"count too large":   `{"version":6,"device_id":"","subject_name":"","frame_time":{},"blendshape_count":62,"blendshapes":{}}`,
		"missing version":   `{"device_id":"","subject_name":"","frame_time":{},"blendshape_count":0,"blendshapes":{}}`,
		"missing frametime": `{"version":6,"device_id":"","subject_name":"","blendshape_count":0,"blendshapes":{}}`,
		"not an object":     `[1, 2, 3]`,
	}
	for name, in := range tests {
		var f Frame
		assert.Error(t, json.Unmarshal([]byte(in), &f), name)
	}
}
