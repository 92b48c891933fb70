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

package throttle

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/juju/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPacer(fps float64) (*Pacer, *testClock) {
	clock := &testClock{now: time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewPacerWithClock(fps, clock), clock
}

func TestFirstFrameIsImmediate(t *testing.T) {
	pacer, clock := newTestPacer(60)
	start := clock.Now()
	require.NoError(t, pacer.Wait(context.Background()))
	assert.Equal(t, start, clock.Now())
}

func TestFramesAreSpaced(t *testing.T) {
	pacer, clock := newTestPacer(60)
	ctx := context.Background()
	require.NoError(t, pacer.Wait(ctx))

	start := clock.Now()
	for i := 0; i < 60; i++ {
		require.NoError(t, pacer.Wait(ctx))
	}
	assert.InDelta(t, float64(time.Second), float64(clock.Now().Sub(start)), float64(time.Millisecond))
}

func TestRateIsClamped(t *testing.T) {
	assert.Equal(t, float64(MaxFPS), ClampFPS(500))
	assert.Equal(t, float64(MinFPS), ClampFPS(0))
	assert.Equal(t, float64(MinFPS), ClampFPS(-3))
	assert.Equal(t, float64(MinFPS), ClampFPS(math.NaN()))
	assert.Equal(t, 24.0, ClampFPS(24))

	pacer, clock := newTestPacer(1000)
	assert.Equal(t, float64(MaxFPS), pacer.FPS())
	ctx := context.Background()
	require.NoError(t, pacer.Wait(ctx))
	start := clock.Now()
	require.NoError(t, pacer.Wait(ctx))
	assert.InDelta(t, float64(pacer.Interval()), float64(clock.Now().Sub(start)), float64(time.Millisecond))
}

func TestIdleDoesNotBurst(t *testing.T) {
	pacer, clock := newTestPacer(10)
	ctx := context.Background()
	require.NoError(t, pacer.Wait(ctx))

	// After a long pause only one frame goes out straight away.
	clock.Sleep(time.Minute)
	start := clock.Now()
	require.NoError(t, pacer.Wait(ctx))
	assert.Equal(t, start, clock.Now())
	require.NoError(t, pacer.Wait(ctx))
	assert.InDelta(t, float64(100*time.Millisecond), float64(clock.Now().Sub(start)), float64(time.Millisecond))
}

func TestCancelledWait(t *testing.T) {
	pacer, _ := newTestPacer(60)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, pacer.Wait(ctx))
}

func TestRealClockCancel(t *testing.T) {
	pacer := NewPacer(MinFPS)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, pacer.Wait(ctx))

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	assert.Equal(t, context.Canceled, pacer.Wait(ctx))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

var _ ratelimit.Clock = new(testClock)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
}
