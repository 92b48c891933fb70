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

package capture

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/face-recorder/frame"
	"github.com/TheCacophonyProject/face-recorder/legacy"
	"github.com/TheCacophonyProject/face-recorder/recorder"
	"github.com/TheCacophonyProject/face-recorder/recording"
	"github.com/TheCacophonyProject/face-recorder/throttle"
)

type fakeReceiver struct {
	datagrams [][]byte
	// called once all datagrams are delivered
	onEmpty func()
	err     error
}

func (r *fakeReceiver) Receive(ctx context.Context, buf []byte) (int, error) {
	if len(r.datagrams) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		if r.onEmpty != nil {
			r.onEmpty()
		}
		<-ctx.Done()
		return 0, ctx.Err()
	}
	d := r.datagrams[0]
	r.datagrams = r.datagrams[1:]
	return copy(buf, d), nil
}

type fakeSender struct {
	sent   [][]byte
	onSend func(n int)
}

func (s *fakeSender) Send(b []byte) error {
	s.sent = append(s.sent, append([]byte(nil), b...))
	if s.onSend != nil {
		s.onSend(len(s.sent))
	}
	return nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
}

func encoded(t *testing.T, n int) [][]byte {
	var out [][]byte
	for i := 0; i < n; i++ {
		b, err := frame.Encode(frame.Default(i))
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec"+recording.Ext)
	frames := encoded(t, 3)
	rx := &fakeReceiver{datagrams: [][]byte{frames[0], {}, frames[1], []byte("not a frame"), frames[2]}}
	rec := recorder.NewFileRecorder(recorder.Config{Path: path})

	stats, err := Record(context.Background(), rx, rec, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, Stats{Frames: 3, Skipped: 2}, stats)

	got, err := recording.ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, f := range got {
		assert.True(t, frame.Default(i).Equal(f))
	}
}

func TestRecordInterrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec"+recording.Ext)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rx := &fakeReceiver{datagrams: encoded(t, 2), onEmpty: cancel}
	rec := recorder.NewFileRecorder(recorder.Config{Path: path})

	stats, err := Record(ctx, rx, rec, 300, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Frames)
	assert.True(t, stats.Interrupted)

	// The header holds the frames actually received.
	fr, err := recording.Open(path)
	require.NoError(t, err)
	defer fr.Close()
	assert.Equal(t, uint32(2), fr.FrameCount())
	got, err := recording.ReadAll(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRecordReceiveError(t *testing.T) {
	dir := t.TempDir()
	rx := &fakeReceiver{datagrams: encoded(t, 1), err: io.ErrClosedPipe}
	rec := recorder.NewFileRecorder(recorder.Config{OutputDir: dir})

	_, err := Record(context.Background(), rx, rec, 5, 0)
	assert.Equal(t, io.ErrClosedPipe, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordDryRun(t *testing.T) {
	rx := &fakeReceiver{datagrams: encoded(t, 4)}
	stats, err := Record(context.Background(), rx, new(recorder.NoWriteRecorder), 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Frames)
}

func writeRecording(t *testing.T, path string, n int, c recording.Compression) {
	fw, err := recording.Create(path, uint32(n), recording.WithCompression(c))
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, fw.Append(frame.Default(i)))
	}
	require.NoError(t, fw.Close())
}

func TestPlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec"+recording.Ext)
	writeRecording(t, path, 3, recording.Zstd)
	src, err := OpenSource(path, false)
	require.NoError(t, err)
	defer src.Close()

	clock := &testClock{now: time.Unix(1000, 0)}
	start := clock.Now()
	tx := new(fakeSender)
	stats, err := Play(context.Background(), src, tx, throttle.NewPacerWithClock(30, clock), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Frames)
	assert.False(t, stats.Interrupted)

	require.Len(t, tx.sent, 3)
	for i, b := range tx.sent {
		f, err := frame.DecodeStrict(b)
		require.NoError(t, err)
		assert.True(t, frame.Default(i).Equal(f))
	}
	// Two gaps of 1/30s between three frames.
	assert.InDelta(t, float64(time.Second/15), float64(clock.Now().Sub(start)), float64(time.Millisecond))
}

func TestPlayLoopUntilCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec"+recording.Ext)
	writeRecording(t, path, 3, recording.None)
	src, err := OpenSource(path, true)
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tx := &fakeSender{onSend: func(n int) {
		if n == 7 {
			cancel()
		}
	}}
	clock := &testClock{now: time.Unix(1000, 0)}
	stats, err := Play(ctx, src, tx, throttle.NewPacerWithClock(60, clock), 0)
	require.NoError(t, err)
	assert.True(t, stats.Interrupted)
	assert.Equal(t, 7, stats.Frames)

	f, err := frame.DecodeStrict(tx.sent[6])
	require.NoError(t, err)
	assert.Equal(t, frame.Default(0).Time, f.Time)
}

func TestPlayCorruptRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec"+recording.Ext)
	writeRecording(t, path, 2, recording.None)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b[:len(b)-10], 0644))

	src, err := OpenSource(path, false)
	require.NoError(t, err)
	defer src.Close()

	tx := new(fakeSender)
	clock := &testClock{now: time.Unix(1000, 0)}
	stats, err := Play(context.Background(), src, tx, throttle.NewPacerWithClock(60, clock), 0)
	var corrupt *recording.CorruptRecordingError
	assert.True(t, errors.As(err, &corrupt))
	assert.Equal(t, 1, stats.Frames)
}

func TestOpenLegacySource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old"+legacy.Ext)
	var frames []frame.Frame
	for i := 0; i < 4; i++ {
		frames = append(frames, frame.Default(i))
	}
	buf := new(bytes.Buffer)
	require.NoError(t, legacy.Export(buf, frames, false))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	got, err := ReadFrames(path)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := range frames {
		assert.True(t, frames[i].Equal(got[i]))
	}

	src, err := OpenSource(path, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), src.FrameCount())
	for i := 0; i < 9; i++ {
		f, err := src.Next()
		require.NoError(t, err)
		assert.Equal(t, frames[i%4].Time, f.Time)
	}
}

func TestOpenEmptyLegacySource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty"+legacy.Ext)
	require.NoError(t, os.WriteFile(path, nil, 0644))

	src, err := OpenSource(path, true)
	require.NoError(t, err)
	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReadFramesContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec"+recording.Ext)
	writeRecording(t, path, 5, recording.LZ4)
	got, err := ReadFrames(path)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
