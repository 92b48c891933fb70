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

import (
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/TheCacophonyProject/face-recorder/frame"
	"github.com/TheCacophonyProject/face-recorder/legacy"
	"github.com/TheCacophonyProject/face-recorder/recording"
)

// NewLegacyRecorder returns a recorder writing the old line based
// format, for tools that haven't moved to recording containers. When
// withRaw is set each line also carries the wire frame.
func NewLegacyRecorder(config Config, withRaw bool) *LegacyRecorder {
	return &LegacyRecorder{config: config, withRaw: withRaw, nowFunc: time.Now}
}

type LegacyRecorder struct {
	config  Config
	withRaw bool
	nowFunc func() time.Time

	mu        sync.Mutex
	file      *os.File
	writer    *legacy.Writer
	maxFrames uint32
}

func (lr *LegacyRecorder) CheckCanRecord() error {
	return lr.config.checkCanRecord()
}

func (lr *LegacyRecorder) StartRecording(maxFrames uint32) error {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.file != nil {
		return errors.New("already recording")
	}

	path := lr.config.recordingPath(legacy.Ext, lr.nowFunc())
	f, err := os.Create(path + recording.TempExt)
	if err != nil {
		return err
	}
	log.Printf("legacy recording started: %s", path)
	lr.file = f
	lr.writer = legacy.NewWriter(f)
	lr.maxFrames = maxFrames
	return nil
}

func (lr *LegacyRecorder) WriteFrame(f frame.Frame) error {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.file == nil {
		return errors.New("not recording")
	}
	if uint32(lr.writer.Count()) >= lr.maxFrames {
		return recording.ErrTooManyFrames
	}

	s := frame.Structured{Frame: lr.config.anonymize(f)}
	if lr.withRaw {
		raw, err := frame.Encode(s.Frame)
		if err != nil {
			return err
		}
		s.Raw = raw
	}
	return lr.writer.Write(s)
}

func (lr *LegacyRecorder) StopRecording() error {
	file, writer := lr.detach()
	if file == nil {
		return nil
	}
	tempName := file.Name()
	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tempName)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempName)
		return err
	}
	finalName := strings.TrimSuffix(tempName, recording.TempExt)
	if err := os.Rename(tempName, finalName); err != nil {
		return err
	}
	count := uint32(writer.Count())
	logFinished(finalName, count)
	lr.config.listener().WhenRecorded(finalName, count)
	return nil
}

func (lr *LegacyRecorder) Abort() error {
	file, _ := lr.detach()
	if file == nil {
		return nil
	}
	file.Close()
	return os.Remove(file.Name())
}

func (lr *LegacyRecorder) Status() (uint32, string) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.file == nil {
		return 0, ""
	}
	return uint32(lr.writer.Count()), strings.TrimSuffix(lr.file.Name(), recording.TempExt)
}

func (lr *LegacyRecorder) detach() (*os.File, *legacy.Writer) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	file, writer := lr.file, lr.writer
	lr.file, lr.writer = nil, nil
	return file, writer
}
