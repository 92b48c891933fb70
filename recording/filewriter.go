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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/TheCacophonyProject/face-recorder/frame"
)

// SpoolExt marks the scratch file frames are written to before a
// recording is finished.
const SpoolExt = ".spool"

// Create starts a recording at path with room for up to declared
// frames. Frames are spooled next to path and only moved into place by
// Close, so path never holds a partial recording. The header written by
// Close holds the number of frames actually appended.
func Create(path string, declared uint32, opts ...WriterOption) (*FileWriter, error) {
	cfg := newWriterConfig(opts)
	if cfg.compression > LZ4 {
		return nil, fmt.Errorf("unsupported compression: %d", uint8(cfg.compression))
	}
	spool, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*"+SpoolExt)
	if err != nil {
		return nil, err
	}
	return &FileWriter{
		path:        path,
		spool:       spool,
		bw:          bufio.NewWriter(spool),
		compression: cfg.compression,
		declared:    declared,
	}, nil
}

type FileWriter struct {
	path        string
	spool       *os.File
	bw          *bufio.Writer
	compression Compression
	declared    uint32
	count       uint32
	done        bool
}

func (fw *FileWriter) Append(f frame.Frame) error {
	if fw.done {
		return os.ErrClosed
	}
	b, err := appendFrame(f, fw.count, fw.declared)
	if err != nil {
		return err
	}
	if _, err := fw.bw.Write(b); err != nil {
		return err
	}
	fw.count++
	return nil
}

// Name returns the final path of the recording.
func (fw *FileWriter) Name() string {
	return fw.path
}

func (fw *FileWriter) Count() uint32 {
	return fw.count
}

func (fw *FileWriter) Declared() uint32 {
	return fw.declared
}

// Close writes the finished recording to path.
func (fw *FileWriter) Close() error {
	if fw.done {
		return nil
	}
	fw.done = true
	defer fw.removeSpool()

	if err := fw.bw.Flush(); err != nil {
		return err
	}
	if _, err := fw.spool.Seek(0, io.SeekStart); err != nil {
		return err
	}

	tempName := fw.path + TempExt
	if err := fw.writeTo(tempName); err != nil {
		os.Remove(tempName)
		return err
	}
	if err := os.Rename(tempName, fw.path); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("failed to move recording into place: %v", err)
	}
	return nil
}

func (fw *FileWriter) writeTo(name string) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	cw, err := fw.compression.newCompressor(bw)
	if err != nil {
		return err
	}
	if err := writeHeader(cw, frame.FormatVersion, fw.count); err != nil {
		cw.Close()
		return err
	}
	// Plain Write calls only: lz4's ReadFrom expects an untouched writer
	// and the header has already gone through.
	if _, err := io.Copy(struct{ io.Writer }{cw}, fw.spool); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return out.Close()
}

// Abort discards the recording. Nothing is written to path.
func (fw *FileWriter) Abort() error {
	if fw.done {
		return nil
	}
	fw.done = true
	return fw.removeSpool()
}

func (fw *FileWriter) removeSpool() error {
	fw.spool.Close()
	return os.Remove(fw.spool.Name())
}
