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

package legacy

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/TheCacophonyProject/face-recorder/frame"
	"github.com/TheCacophonyProject/face-recorder/loglimiter"
	"github.com/TheCacophonyProject/face-recorder/recording"
)

var rawLog = loglimiter.New(10 * time.Second)

// Options controls how frames are rewritten during migration.
type Options struct {
	// Rename replaces the subject name and device id of every frame
	// when set.
	Rename string
	// DeviceID used when renaming, frame.AnonymousDeviceID if empty.
	DeviceID    string
	Compression recording.Compression
}

func (o Options) apply(f frame.Frame) frame.Frame {
	if o.Rename == "" {
		return f
	}
	return frame.Anonymize(f, o.Rename, o.DeviceID)
}

// Migrate converts the legacy recording at legacyPath into a recording
// container at outputPath and returns the number of frames written. No
// output file is left behind if any line fails to convert.
func Migrate(legacyPath, outputPath string, opts Options) (int, error) {
	in, err := os.Open(legacyPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	count, err := CountLines(in)
	if err != nil {
		return 0, err
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	fw, err := recording.Create(outputPath, uint32(count), recording.WithCompression(opts.Compression))
	if err != nil {
		return 0, err
	}
	n, err := migrateFrames(NewReader(in), fw, opts)
	if err != nil {
		fw.Abort()
		return 0, err
	}
	if err := fw.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

func migrateFrames(r *Reader, fw *recording.FileWriter, opts Options) (int, error) {
	n := 0
	for {
		s, err := r.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		checkRaw(r.Line(), s)
		if err := fw.Append(opts.apply(s.Frame)); err != nil {
			return n, &MalformedLegacyLineError{Line: r.Line(), Err: err}
		}
		n++
	}
}

// checkRaw compares an embedded wire frame with the structured fields.
// The structured fields are always the ones kept.
func checkRaw(line int, s frame.Structured) {
	if len(s.Raw) == 0 {
		return
	}
	raw, err := frame.Decode(s.Raw)
	if err != nil {
		rawLog.Printf("legacy line %d: ignoring undecodable raw frame: %v", line, err)
		return
	}
	if diffs := s.Frame.Diff(raw); len(diffs) > 0 {
		rawLog.Printf("legacy line %d: raw frame disagrees with structured fields: %s", line, strings.Join(diffs, ", "))
	}
}

// Export writes frames as a legacy recording. Raw wire frames are
// embedded when withRaw is set.
func Export(w io.Writer, frames []frame.Frame, withRaw bool) error {
	lw := NewWriter(w)
	for _, f := range frames {
		s := frame.Structured{Frame: f}
		if withRaw {
			raw, err := frame.Encode(f)
			if err != nil {
				return err
			}
			s.Raw = raw
		}
		if err := lw.Write(s); err != nil {
			return err
		}
	}
	return lw.Flush()
}
