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

// Package capture runs the record and playback loops between the
// network and recordings.
package capture

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/TheCacophonyProject/face-recorder/frame"
	"github.com/TheCacophonyProject/face-recorder/loglimiter"
	"github.com/TheCacophonyProject/face-recorder/recorder"
	"github.com/TheCacophonyProject/face-recorder/throttle"
	"github.com/TheCacophonyProject/face-recorder/transport"
)

var skipLog = loglimiter.New(30 * time.Second)

// Stats describes a finished record or playback run.
type Stats struct {
	Frames int
	// Skipped counts datagrams that didn't hold a usable frame.
	Skipped int
	// Interrupted is set when the run was cancelled before completing.
	Interrupted bool
}

// Record receives up to maxFrames frames from rx and writes them to
// rec. Undecodable datagrams are skipped. If ctx is cancelled the
// recording is finished with the frames received so far.
func Record(ctx context.Context, rx transport.Receiver, rec recorder.Recorder, maxFrames uint32, logInterval int) (Stats, error) {
	var stats Stats
	if err := rec.CheckCanRecord(); err != nil {
		return stats, err
	}
	if err := rec.StartRecording(maxFrames); err != nil {
		return stats, err
	}

	buf := make([]byte, transport.BufferSize)
	for uint32(stats.Frames) < maxFrames {
		n, err := rx.Receive(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				stats.Interrupted = true
				log.Printf("recording interrupted after %d frames", stats.Frames)
				break
			}
			rec.Abort()
			return stats, err
		}

		f, err := frame.Decode(buf[:n])
		if err != nil {
			if !frame.IsRecoverable(err) {
				rec.Abort()
				return stats, err
			}
			stats.Skipped++
			skipLog.Printf("skipping frame: %v", err)
			continue
		}
		if err := rec.WriteFrame(f); err != nil {
			rec.Abort()
			return stats, err
		}
		stats.Frames++
		if logInterval > 0 && stats.Frames%logInterval == 0 {
			log.Printf("%d frames received", stats.Frames)
		}
	}

	if err := rec.StopRecording(); err != nil {
		return stats, err
	}
	return stats, nil
}

// Play sends the frames of src to tx, paced by pacer. It returns when
// src is exhausted or ctx is cancelled; any other error stops playback.
func Play(ctx context.Context, src Source, tx transport.Sender, pacer *throttle.Pacer, logInterval int) (Stats, error) {
	var stats Stats
	for {
		f, err := src.Next()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}
		b, err := frame.Encode(f)
		if err != nil {
			return stats, err
		}

		if err := pacer.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				stats.Interrupted = true
				return stats, nil
			}
			return stats, err
		}
		if err := tx.Send(b); err != nil {
			return stats, err
		}
		stats.Frames++
		if logInterval > 0 && stats.Frames%logInterval == 0 {
			log.Printf("%d frames sent", stats.Frames)
		}
	}
}
