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
	"context"
	"log"
	"os"
	"time"

	"github.com/coreos/go-systemd/daemon"

	"github.com/TheCacophonyProject/face-recorder/capture"
	"github.com/TheCacophonyProject/face-recorder/events"
	"github.com/TheCacophonyProject/face-recorder/recorder"
	"github.com/TheCacophonyProject/face-recorder/throttle"
	"github.com/TheCacophonyProject/face-recorder/transport"
)

const watchdogInterval = 10 * time.Second

func runRecord(ctx context.Context, cmd *RecordCmd, conf *Config) error {
	frames := conf.RecordFrames
	if cmd.Frames > 0 {
		frames = cmd.Frames
	}
	listen := conf.Listen
	if cmd.Listen != "" {
		listen = cmd.Listen
	}

	if cmd.Output == "" && !cmd.DryRun {
		if err := os.MkdirAll(conf.OutputDir, 0755); err != nil {
			return err
		}
		log.Println("deleting temp files")
		if err := recorder.DeleteTempFiles(conf.OutputDir); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rec := newRecorder(cmd, conf)
	if status, ok := rec.(events.StatusProvider); ok {
		log.Println("starting d-bus service")
		if err := events.StartService(status, cancel); err != nil {
			log.Printf("failed to start d-bus service: %v", err)
		}
	}

	conn, err := transport.Listen(listen)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("waiting for %d frames on %s", frames, conn.LocalAddr())

	daemon.SdNotify(false, "READY=1")
	go notifyWatchdog(ctx)

	stats, err := capture.Record(ctx, conn, rec, frames, conf.LogInterval)
	if err != nil {
		return err
	}
	log.Printf("received %d/%d frames, %d skipped", stats.Frames, frames, stats.Skipped)
	return nil
}

func newRecorder(cmd *RecordCmd, conf *Config) recorder.Recorder {
	if cmd.DryRun {
		return new(recorder.NoWriteRecorder)
	}
	rename := conf.Anonymize.Subject
	if cmd.Rename != "" {
		rename = cmd.Rename
	}
	recConf := recorder.Config{
		OutputDir:    conf.OutputDir,
		Path:         cmd.Output,
		MinDiskSpace: conf.MinDiskSpace,
		Compression:  conf.Compression,
		Rename:       rename,
		DeviceID:     conf.Anonymize.DeviceID,
		Listener:     events.NewRecordingEvents(),
	}
	if cmd.Legacy {
		return recorder.NewLegacyRecorder(recConf, cmd.WithRaw)
	}
	return recorder.NewFileRecorder(recConf)
}

func notifyWatchdog(ctx context.Context) {
	ticker := time.NewTicker(watchdogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			daemon.SdNotify(false, "WATCHDOG=1")
		}
	}
}

func runPlay(ctx context.Context, cmd *PlayCmd, conf *Config) error {
	fps := conf.FPS
	if cmd.FPS != 0 {
		fps = cmd.FPS
	}
	if clamped := throttle.ClampFPS(fps); clamped != fps {
		log.Printf("fps %v out of range, using %v", fps, clamped)
		fps = clamped
	}
	target := conf.Target
	if cmd.Target != "" {
		target = cmd.Target
	}

	src, err := capture.OpenSource(cmd.Path, !cmd.NoLoop)
	if err != nil {
		return err
	}
	defer src.Close()

	conn, err := transport.Dial(target)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Printf("sending %d frames to %s @%vfps", src.FrameCount(), target, fps)
	stats, err := capture.Play(ctx, src, conn, throttle.NewPacer(fps), conf.LogInterval)
	if err != nil {
		return err
	}
	log.Printf("sent %d frames", stats.Frames)
	return nil
}
