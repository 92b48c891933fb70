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

// Package clearfile converts recordings to and from an editable "clear"
// document holding the frame count and every frame in structured form.
package clearfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/TheCacophonyProject/face-recorder/frame"
)

type Format int

const (
	JSON Format = iota
	CBOR
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case CBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func ParseFormat(name string) (Format, error) {
	switch name {
	case "json", "":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	default:
		return JSON, fmt.Errorf("unknown clear file format: %q", name)
	}
}

func (f *Format) UnmarshalText(b []byte) error {
	parsed, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

type jsonDocument struct {
	Count  *int               `json:"count"`
	Frames []frame.Structured `json:"frames"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("clearfile: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("clearfile: CBOR decoder initialization failed: " + err.Error())
	}
}

// Export writes frames to w as a clear document.
func Export(w io.Writer, frames []frame.Structured, format Format) error {
	switch format {
	case JSON:
		count := len(frames)
		return json.NewEncoder(w).Encode(jsonDocument{Count: &count, Frames: frames})
	case CBOR:
		doc := cborDocument{Count: len(frames), Frames: make([]cborFrame, len(frames))}
		for i, s := range frames {
			doc.Frames[i] = toCBOR(s)
		}
		return encMode.NewEncoder(w).Encode(doc)
	default:
		return fmt.Errorf("unsupported clear file format: %v", format)
	}
}

// Import reads a clear document. The declared count must match the
// number of frames.
func Import(r io.Reader, format Format) ([]frame.Structured, error) {
	var frames []frame.Structured
	var count int
	switch format {
	case JSON:
		var doc jsonDocument
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
		if doc.Count == nil {
			return nil, errors.New("missing count")
		}
		count, frames = *doc.Count, doc.Frames
	case CBOR:
		var doc cborDocument
		if err := decMode.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
		frames = make([]frame.Structured, len(doc.Frames))
		for i, cf := range doc.Frames {
			s, err := cf.structured()
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			frames[i] = s
		}
		count = doc.Count
	default:
		return nil, fmt.Errorf("unsupported clear file format: %v", format)
	}
	if count != len(frames) {
		return nil, fmt.Errorf("count is %d but %d frames present", count, len(frames))
	}
	return frames, nil
}
