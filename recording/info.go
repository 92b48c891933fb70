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
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
)

// Info summarises a recording file. Building it reads every frame, so
// a recording that passes Stat is readable end to end.
type Info struct {
	Path        string
	Size        int64
	Digest      string
	Compression Compression
	Version     uint8
	FrameCount  uint32
	Subjects    []string
	FirstFrame  int32
	LastFrame   int32
	Duration    time.Duration
}

// Stat reads the recording at path and summarises it.
func Stat(path string) (*Info, error) {
	digest, size, err := fileDigest(path)
	if err != nil {
		return nil, err
	}

	fr, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	info := &Info{
		Path:        path,
		Size:        size,
		Digest:      digest,
		Compression: fr.Compression(),
		Version:     fr.Version(),
		FrameCount:  fr.FrameCount(),
	}
	seen := make(map[string]bool)
	var rate float64
	for i := 0; ; i++ {
		f, err := fr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if i == 0 {
			info.FirstFrame = f.Time.FrameNumber
		}
		info.LastFrame = f.Time.FrameNumber
		rate = f.Time.Rate()
		if !seen[f.SubjectName] {
			seen[f.SubjectName] = true
			info.Subjects = append(info.Subjects, f.SubjectName)
		}
	}
	if rate > 0 && info.LastFrame > info.FirstFrame {
		secs := float64(info.LastFrame-info.FirstFrame) / rate
		info.Duration = time.Duration(secs * float64(time.Second))
	}
	return info, nil
}

func fileDigest(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := blake3.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func (i *Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "path:        %s\n", i.Path)
	fmt.Fprintf(&b, "size:        %s\n", humanize.Bytes(uint64(i.Size)))
	fmt.Fprintf(&b, "blake3:      %s\n", i.Digest)
	fmt.Fprintf(&b, "compression: %s\n", i.Compression)
	fmt.Fprintf(&b, "version:     %d\n", i.Version)
	fmt.Fprintf(&b, "frames:      %s\n", humanize.Comma(int64(i.FrameCount)))
	if i.FrameCount > 0 {
		fmt.Fprintf(&b, "frame range: %d - %d\n", i.FirstFrame, i.LastFrame)
		fmt.Fprintf(&b, "duration:    %s\n", i.Duration.Round(time.Millisecond))
		fmt.Fprintf(&b, "subjects:    %s\n", strings.Join(i.Subjects, ", "))
	}
	return b.String()
}
