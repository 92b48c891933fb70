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
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/face-recorder/frame"
	"github.com/TheCacophonyProject/face-recorder/recording"
)

func TestDefaultConfig(t *testing.T) {
	conf, err := ParseConfig([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, Config{
		OutputDir:    "/var/spool/face-recorder",
		MinDiskSpace: 200,
		Compression:  recording.Gzip,
		Listen:       ":11111",
		Target:       "localhost:11111",
		FPS:          60,
		RecordFrames: 300,
		LogInterval:  300,
		Anonymize: AnonymizeConfig{
			DeviceID: "DEADC0DE-1337-1337-1337-CAFEBABE",
		},
	}, *conf)
}

func TestAllSet(t *testing.T) {
	// All config set at non-default values.
	config := []byte(`
output-dir: "/some/where"
min-disk-space: 5
compression: zstd
listen: "127.0.0.1:9000"
target: "10.0.0.2:9000"
fps: 30
record-frames: 1200
log-interval: 0
anonymize:
    subject: "subject-7"
    device-id: "6F3A8B2C-1D4E-4F50-9A6B-7C8D9E0F1A2B"
`)

	conf, err := ParseConfig(config)
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	assert.Equal(t, Config{
		OutputDir:    "/some/where",
		MinDiskSpace: 5,
		Compression:  recording.Zstd,
		Listen:       "127.0.0.1:9000",
		Target:       "10.0.0.2:9000",
		FPS:          30,
		RecordFrames: 1200,
		LogInterval:  0,
		Anonymize: AnonymizeConfig{
			Subject:  "subject-7",
			DeviceID: "6F3A8B2C-1D4E-4F50-9A6B-7C8D9E0F1A2B",
		},
	}, *conf)
}

func TestMissingConfigFile(t *testing.T) {
	conf, err := ParseConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":11111", conf.Listen)
}

func TestInvalidCompression(t *testing.T) {
	conf, err := ParseConfig([]byte("compression: bzip2"))
	assert.Nil(t, conf)
	assert.EqualError(t, err, "invalid compression")
}

func TestFPSOutOfRange(t *testing.T) {
	conf, err := ParseConfig([]byte("fps: 120"))
	assert.Nil(t, conf)
	assert.EqualError(t, err, "fps should be in range 1 - 76")

	conf, err = ParseConfig([]byte("fps: 0"))
	assert.Nil(t, conf)
	assert.EqualError(t, err, "fps should be in range 1 - 76")
}

func TestNoRecordFrames(t *testing.T) {
	conf, err := ParseConfig([]byte("record-frames: 0"))
	assert.Nil(t, conf)
	assert.EqualError(t, err, "record-frames should be at least 1")
}

func TestAnonymousDeviceIDNeedNotBeUUID(t *testing.T) {
	conf, err := ParseConfig([]byte("anonymize:\n    device-id: not-a-uuid"))
	require.NoError(t, err)
	assert.Equal(t, "not-a-uuid", conf.Anonymize.DeviceID)
}

func TestAnonymousDeviceIDTooLong(t *testing.T) {
	config := "anonymize:\n    device-id: " + strings.Repeat("a", frame.MaxDeviceIDSize+1)
	conf, err := ParseConfig([]byte(config))
	assert.Nil(t, conf)
	assert.EqualError(t, err, "anonymize device-id should be UTF-8 text of at most 504 bytes")
}
