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
	"errors"
	"fmt"
	"log"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/face-recorder/frame"
	"github.com/TheCacophonyProject/face-recorder/recording"
	"github.com/TheCacophonyProject/face-recorder/throttle"
)

type Config struct {
	OutputDir    string
	MinDiskSpace uint64
	Compression  recording.Compression
	Listen       string
	Target       string
	FPS          float64
	RecordFrames uint32
	LogInterval  int
	Anonymize    AnonymizeConfig
}

func (conf *Config) Validate() error {
	if conf.OutputDir == "" {
		return errors.New("output-dir should be set")
	}
	if conf.Listen == "" {
		return errors.New("listen should be set")
	}
	if conf.FPS < throttle.MinFPS || conf.FPS > throttle.MaxFPS {
		return errors.New("fps should be in range 1 - 76")
	}
	if conf.RecordFrames < 1 {
		return errors.New("record-frames should be at least 1")
	}
	if conf.LogInterval < 0 {
		return errors.New("log-interval can't be negative")
	}
	if err := conf.Anonymize.Validate(); err != nil {
		return err
	}
	return nil
}

// AnonymizeConfig is the identity written into frames when a recording
// is renamed.
type AnonymizeConfig struct {
	Subject  string `yaml:"subject"`
	DeviceID string `yaml:"device-id"`
}

func (conf *AnonymizeConfig) Validate() error {
	if conf.DeviceID != "" && !frame.ValidDeviceID(conf.DeviceID) {
		return fmt.Errorf("anonymize device-id should be UTF-8 text of at most %d bytes", frame.MaxDeviceIDSize)
	}
	return nil
}

type rawConfig struct {
	OutputDir    string          `yaml:"output-dir"`
	MinDiskSpace uint64          `yaml:"min-disk-space"`
	Compression  string          `yaml:"compression"`
	Listen       string          `yaml:"listen"`
	Target       string          `yaml:"target"`
	FPS          float64         `yaml:"fps"`
	RecordFrames uint32          `yaml:"record-frames"`
	LogInterval  int             `yaml:"log-interval"`
	Anonymize    AnonymizeConfig `yaml:"anonymize"`
}

var defaultConfig = rawConfig{
	OutputDir:    "/var/spool/face-recorder",
	MinDiskSpace: 200,
	Compression:  "gzip",
	Listen:       ":11111",
	Target:       "localhost:11111",
	FPS:          60,
	RecordFrames: 300,
	LogInterval:  300,
	Anonymize: AnonymizeConfig{
		DeviceID: frame.AnonymousDeviceID,
	},
}

// ParseConfigFile reads the configuration at filename. A missing file
// gives the defaults.
func ParseConfigFile(filename string) (*Config, error) {
	buf, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		log.Printf("no config at %s, using defaults", filename)
		return ParseConfig(nil)
	} else if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	raw := defaultConfig
	if err := yaml.Unmarshal(buf, &raw); err != nil {
		return nil, err
	}

	compression, err := recording.ParseCompression(raw.Compression)
	if err != nil {
		return nil, errors.New("invalid compression")
	}
	conf := &Config{
		OutputDir:    raw.OutputDir,
		MinDiskSpace: raw.MinDiskSpace,
		Compression:  compression,
		Listen:       raw.Listen,
		Target:       raw.Target,
		FPS:          raw.FPS,
		RecordFrames: raw.RecordFrames,
		LogInterval:  raw.LogInterval,
		Anonymize:    raw.Anonymize,
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func logConfig(conf *Config) {
	log.Printf("output dir: %s", conf.OutputDir)
	log.Printf("min disk space: %d MB", conf.MinDiskSpace)
	log.Printf("compression: %s", conf.Compression)
	log.Printf("listen: %s, target: %s", conf.Listen, conf.Target)
	log.Printf("playback fps: %v, frames per recording: %d", conf.FPS, conf.RecordFrames)
}
