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

package capture

import (
	"io"
	"log"
	"os"

	"github.com/TheCacophonyProject/face-recorder/frame"
	"github.com/TheCacophonyProject/face-recorder/legacy"
	"github.com/TheCacophonyProject/face-recorder/recording"
	"github.com/TheCacophonyProject/face-recorder/sniff"
)

// Source yields the frames of a recording for playback.
type Source interface {
	Next() (frame.Frame, error)
	FrameCount() uint32
	Close() error
}

// OpenSource opens a recording container or a legacy recording,
// telling them apart with the sniffer. With loop set the source starts
// over after its last frame.
func OpenSource(path string, loop bool) (Source, error) {
	format, err := sniff.Classify(path)
	if err != nil {
		return nil, err
	}
	if format == sniff.Text {
		log.Printf("%s looks like a legacy recording", path)
		src, err := openLegacySource(path, loop)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	fr, err := recording.Open(path, recording.Loop(loop))
	if err != nil {
		return nil, err
	}
	return fr, nil
}

// ReadFrames reads every frame of a recording container or legacy
// recording.
func ReadFrames(path string) ([]frame.Frame, error) {
	src, err := OpenSource(path, false)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var frames []frame.Frame
	for {
		f, err := src.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}

// legacySource holds a legacy recording in memory, as the format has
// no frame count to stream against.
type legacySource struct {
	frames []frame.Frame
	next   int
	loop   bool
}

func openLegacySource(path string, loop bool) (*legacySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src := &legacySource{loop: loop}
	r := legacy.NewReader(f)
	for {
		s, err := r.Next()
		if err == io.EOF {
			return src, nil
		}
		if err != nil {
			return nil, err
		}
		src.frames = append(src.frames, s.Frame)
	}
}

func (s *legacySource) Next() (frame.Frame, error) {
	if s.next == len(s.frames) {
		if !s.loop || len(s.frames) == 0 {
			return frame.Frame{}, io.EOF
		}
		s.next = 0
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

func (s *legacySource) FrameCount() uint32 {
	return uint32(len(s.frames))
}

func (s *legacySource) Close() error {
	return nil
}
