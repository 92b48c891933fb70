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
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/TheCacophonyProject/face-recorder/frame"
	"github.com/TheCacophonyProject/face-recorder/recording"
)

// Config holds the settings shared by the file based recorders.
type Config struct {
	OutputDir string
	// Path overrides the generated recording name when set.
	Path         string
	MinDiskSpace uint64
	Compression  recording.Compression
	// Rename, when set, replaces the subject of every frame and its
	// device id with DeviceID.
	Rename   string
	DeviceID string
	Listener RecordingListener
}

func (c *Config) anonymize(f frame.Frame) frame.Frame {
	if c.Rename == "" {
		return f
	}
	return frame.Anonymize(f, c.Rename, c.DeviceID)
}

func (c *Config) listener() RecordingListener {
	if c.Listener == nil {
		return nullListener{}
	}
	return c.Listener
}

func (c *Config) recordingPath(ext string, now time.Time) string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(c.OutputDir, newRecordingName(now, ext))
}

func (c *Config) checkCanRecord() error {
	dir := c.OutputDir
	if c.Path != "" {
		dir = filepath.Dir(c.Path)
	}
	enoughSpace, err := checkDiskSpace(c.MinDiskSpace, dir)
	if err != nil {
		return fmt.Errorf("problem with checking disk space: %v", err)
	} else if !enoughSpace {
		return errors.New("not enough free disk space to start recording")
	}
	return nil
}

func newRecordingName(now time.Time, ext string) string {
	return now.Format("20060102.150405.000") + ext
}

func NewFileRecorder(config Config) *FileRecorder {
	return &FileRecorder{config: config, nowFunc: time.Now}
}

// FileRecorder writes each recording to a recording container. It is
// safe to call Status from other goroutines.
type FileRecorder struct {
	config  Config
	nowFunc func() time.Time

	mu     sync.Mutex
	writer *recording.FileWriter
}

func (fr *FileRecorder) CheckCanRecord() error {
	return fr.config.checkCanRecord()
}

func (fr *FileRecorder) StartRecording(maxFrames uint32) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.writer != nil {
		return errors.New("already recording")
	}

	path := fr.config.recordingPath(recording.Ext, fr.nowFunc())
	writer, err := recording.Create(path, maxFrames, recording.WithCompression(fr.config.Compression))
	if err != nil {
		return err
	}
	log.Printf("recording started: %s", path)
	fr.writer = writer
	return nil
}

func (fr *FileRecorder) WriteFrame(f frame.Frame) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.writer == nil {
		return errors.New("not recording")
	}
	return fr.writer.Append(fr.config.anonymize(f))
}

func (fr *FileRecorder) StopRecording() error {
	fr.mu.Lock()
	writer := fr.writer
	fr.writer = nil
	fr.mu.Unlock()
	if writer == nil {
		return nil
	}

	if err := writer.Close(); err != nil {
		return err
	}
	logFinished(writer.Name(), writer.Count())
	fr.config.listener().WhenRecorded(writer.Name(), writer.Count())
	return nil
}

func (fr *FileRecorder) Abort() error {
	fr.mu.Lock()
	writer := fr.writer
	fr.writer = nil
	fr.mu.Unlock()
	if writer == nil {
		return nil
	}
	log.Printf("recording discarded: %s", writer.Name())
	return writer.Abort()
}

// Status returns the number of frames in the current recording and its
// path. The path is empty when not recording.
func (fr *FileRecorder) Status() (uint32, string) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.writer == nil {
		return 0, ""
	}
	return fr.writer.Count(), fr.writer.Name()
}

func logFinished(path string, frames uint32) {
	size := "unknown size"
	if fi, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	log.Printf("recording stopped: %s (%d frames, %s)", path, frames, size)
}
