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

// Package synth generates calibration recordings that sweep each
// blendshape from a minimum to a maximum value.
package synth

import (
	"errors"
	"math"

	"github.com/TheCacophonyProject/face-recorder/frame"
)

// AllShapes selects a sweep over every blendshape in canonical order.
const AllShapes = "all"

// Generate returns framesPerShape frames for each selected shape. Within
// a shape's block the shape ramps linearly from min to max and every
// other shape is zero.
func Generate(shape string, framesPerShape int, min, max float32) ([]frame.Frame, error) {
	if framesPerShape < 1 {
		return nil, errors.New("frames per shape should be at least 1")
	}
	shapes, err := selectShapes(shape)
	if err != nil {
		return nil, err
	}

	frames := make([]frame.Frame, 0, len(shapes)*framesPerShape)
	for _, s := range shapes {
		for j := 0; j < framesPerShape; j++ {
			f := frame.Default(len(frames))
			f.Shapes[frame.JawOpen] = 0
			f.Shapes[s] = sweepValue(j, framesPerShape, min, max)
			frames = append(frames, f)
		}
	}
	return frames, nil
}

func selectShapes(name string) ([]frame.Shape, error) {
	if name == "" || name == AllShapes {
		return frame.Shapes(), nil
	}
	s, err := frame.ParseShape(name)
	if err != nil {
		return nil, err
	}
	return []frame.Shape{s}, nil
}

// sweepValue is the value at step j of n, hitting max exactly on the
// last step.
func sweepValue(j, n int, min, max float32) float32 {
	if j == n-1 {
		return max
	}
	return min + (max-min)*float32(j)/float32(n-1)
}

// FramesPerShape converts a duration per shape into a frame count at
// fps, never less than one frame.
func FramesPerShape(seconds, fps float64) int {
	n := int(math.Round(seconds * fps))
	if n < 1 {
		return 1
	}
	return n
}
