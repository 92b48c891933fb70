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

// Package throttle paces frame playback.
package throttle

import (
	"context"
	"time"

	"github.com/juju/ratelimit"
)

// Playback rate limits in frames per second. Receivers can't keep up
// with more than MaxFPS.
const (
	MinFPS = 1
	MaxFPS = 76
)

// ClampFPS limits fps to [MinFPS, MaxFPS].
func ClampFPS(fps float64) float64 {
	if !(fps >= MinFPS) {
		return MinFPS
	}
	if fps > MaxFPS {
		return MaxFPS
	}
	return fps
}

func NewPacer(fps float64) *Pacer {
	return NewPacerWithClock(fps, new(realClock))
}

// NewPacerWithClock returns a Pacer letting through fps frames a
// second, measured with clock.
func NewPacerWithClock(fps float64, clock ratelimit.Clock) *Pacer {
	fps = ClampFPS(fps)
	// A bucket holding a single token lets the first frame through at
	// once and spaces the rest 1/fps apart.
	return &Pacer{
		bucket: ratelimit.NewBucketWithRateAndClock(fps, 1, clock),
		clock:  clock,
		fps:    fps,
	}
}

// Pacer spaces frames evenly in time.
type Pacer struct {
	bucket *ratelimit.Bucket
	clock  ratelimit.Clock
	fps    float64
}

// FPS returns the clamped rate.
func (p *Pacer) FPS() float64 {
	return p.fps
}

// Interval returns the time between frames.
func (p *Pacer) Interval() time.Duration {
	return time.Duration(float64(time.Second) / p.fps)
}

// Wait blocks until the next frame is due. It returns early with the
// context's error if ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := p.bucket.Take(1)
	if d <= 0 {
		return nil
	}
	if cs, ok := p.clock.(contextSleeper); ok {
		return cs.SleepContext(ctx, d)
	}
	p.clock.Sleep(d)
	return ctx.Err()
}

type contextSleeper interface {
	SleepContext(ctx context.Context, d time.Duration) error
}

// realClock implements ratelimit.Clock in terms of standard time functions.
type realClock struct{}

// Now implements Clock.Now by calling time.Now.
func (realClock) Now() time.Time {
	return time.Now()
}

// Sleep implements Clock.Sleep by calling time.Sleep.
func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (realClock) SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
