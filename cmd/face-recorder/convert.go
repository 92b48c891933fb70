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

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/TheCacophonyProject/face-recorder/capture"
	"github.com/TheCacophonyProject/face-recorder/clearfile"
	"github.com/TheCacophonyProject/face-recorder/frame"
	"github.com/TheCacophonyProject/face-recorder/legacy"
	"github.com/TheCacophonyProject/face-recorder/recording"
	"github.com/TheCacophonyProject/face-recorder/sniff"
	"github.com/TheCacophonyProject/face-recorder/synth"
)

const (
	legacyFormat = "legacy"

	defaultTimePerShape = 1.1
)

func compressionFor(name string, conf *Config) (recording.Compression, error) {
	if name == "" {
		return conf.Compression, nil
	}
	return recording.ParseCompression(name)
}

func anonymizeAll(frames []frame.Frame, rename string, conf *Config) {
	if rename == "" {
		return
	}
	for i := range frames {
		frames[i] = frame.Anonymize(frames[i], rename, conf.Anonymize.DeviceID)
	}
}

// writeRecording writes frames to a new recording at path.
func writeRecording(path string, frames []frame.Frame, c recording.Compression) error {
	fw, err := recording.Create(path, uint32(len(frames)), recording.WithCompression(c))
	if err != nil {
		return err
	}
	for i, f := range frames {
		if err := fw.Append(f); err != nil {
			fw.Abort()
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return fw.Close()
}

func runMigrate(cmd *MigrateCmd, conf *Config) error {
	compression, err := compressionFor(cmd.Compression, conf)
	if err != nil {
		return err
	}
	n, err := legacy.Migrate(cmd.Legacy, cmd.Output, legacy.Options{
		Rename:      cmd.Rename,
		DeviceID:    conf.Anonymize.DeviceID,
		Compression: compression,
	})
	if err != nil {
		return err
	}
	log.Printf("migrated %d frames to %s", n, cmd.Output)
	return nil
}

func runUnpack(cmd *UnpackCmd, conf *Config) error {
	frames, err := capture.ReadFrames(cmd.Recording)
	if err != nil {
		return err
	}
	anonymizeAll(frames, cmd.Rename, conf)

	out, err := os.Create(cmd.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	if cmd.Format == legacyFormat {
		err = legacy.Export(out, frames, cmd.WithRaw)
	} else {
		err = exportClearFile(out, frames, cmd)
	}
	if err != nil {
		os.Remove(cmd.Output)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Printf("unpacked %d frames to %s", len(frames), cmd.Output)
	return nil
}

func exportClearFile(out *os.File, frames []frame.Frame, cmd *UnpackCmd) error {
	format, err := clearfile.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}
	structured := make([]frame.Structured, len(frames))
	for i, f := range frames {
		structured[i].Frame = f
		if cmd.WithRaw {
			if structured[i].Raw, err = frame.Encode(f); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}
	}
	return clearfile.Export(out, structured, format)
}

func runPack(cmd *PackCmd, conf *Config) error {
	format, err := clearfile.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}
	compression, err := compressionFor(cmd.Compression, conf)
	if err != nil {
		return err
	}

	in, err := os.Open(cmd.ClearFile)
	if err != nil {
		return err
	}
	defer in.Close()
	structured, err := clearfile.Import(in, format)
	if err != nil {
		return err
	}

	frames := make([]frame.Frame, len(structured))
	for i, s := range structured {
		frames[i] = s.Frame
	}
	anonymizeAll(frames, cmd.Rename, conf)
	if err := writeRecording(cmd.Output, frames, compression); err != nil {
		return err
	}
	log.Printf("packed %d frames to %s", len(frames), cmd.Output)
	return nil
}

func runSynth(cmd *SynthCmd, conf *Config) error {
	framesPerShape := cmd.FramesPerShape
	if framesPerShape == 0 {
		seconds := cmd.TimePerShape
		if seconds == 0 {
			seconds = defaultTimePerShape
		}
		framesPerShape = synth.FramesPerShape(seconds, conf.FPS)
	}
	frames, err := synth.Generate(cmd.Shape, framesPerShape, cmd.Min, cmd.Max)
	if err != nil {
		return err
	}
	if err := writeRecording(cmd.Output, frames, conf.Compression); err != nil {
		return err
	}
	log.Printf("wrote %d frames (%d per shape) to %s", len(frames), framesPerShape, cmd.Output)
	return nil
}

func runInfo(cmd *InfoCmd) error {
	format, err := sniff.Classify(cmd.Path)
	if err != nil {
		return err
	}
	if format == sniff.Binary {
		info, err := recording.Stat(cmd.Path)
		if err != nil {
			return err
		}
		fmt.Print(info)
		return nil
	}

	f, err := os.Open(cmd.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	lines, err := legacy.CountLines(f)
	if err != nil {
		return err
	}
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	fmt.Printf("path:        %s\n", cmd.Path)
	fmt.Printf("format:      legacy\n")
	fmt.Printf("size:        %s\n", humanize.Bytes(uint64(fi.Size())))
	fmt.Printf("frames:      %s\n", humanize.Comma(int64(lines)))
	return nil
}
