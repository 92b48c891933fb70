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
	"errors"
	"log"
	"os/signal"
	"syscall"

	arg "github.com/alexflint/go-arg"
)

var version = "<not set>"

type RecordCmd struct {
	Frames  uint32 `arg:"-n,--frames" help:"number of frames to record (default from config)"`
	Output  string `arg:"-o,--output" help:"recording path (default: timestamped file in output-dir)"`
	Listen  string `arg:"--listen" help:"UDP address to receive frames on (default from config)"`
	DryRun  bool   `arg:"--dry-run" help:"receive frames without writing them"`
	Legacy  bool   `arg:"--legacy" help:"write the old line based format"`
	WithRaw bool   `arg:"--with-raw" help:"embed wire frames in legacy lines"`
	Rename  string `arg:"--rename" help:"anonymize frames with this subject name"`
}

type PlayCmd struct {
	Path   string  `arg:"positional,required" help:"recording to play"`
	FPS    float64 `arg:"--fps" help:"frames per second, 1 - 76 (default from config)"`
	Target string  `arg:"--target" help:"UDP address to send frames to (default from config)"`
	NoLoop bool    `arg:"--no-loop" help:"stop after the last frame"`
}

type MigrateCmd struct {
	Legacy      string `arg:"positional,required" help:"legacy recording"`
	Output      string `arg:"positional,required" help:"recording to write"`
	Rename      string `arg:"--rename" help:"anonymize frames with this subject name"`
	Compression string `arg:"--compression" help:"none, gzip, zstd or lz4 (default from config)"`
}

type UnpackCmd struct {
	Recording string `arg:"positional,required" help:"recording or legacy recording"`
	Output    string `arg:"positional,required" help:"file to write"`
	Format    string `arg:"--format" default:"json" help:"json, cbor or legacy"`
	Rename    string `arg:"--rename" help:"anonymize frames with this subject name"`
	WithRaw   bool   `arg:"--with-raw" help:"include the wire form of each frame"`
}

type PackCmd struct {
	ClearFile   string `arg:"positional,required" help:"clear file to read"`
	Output      string `arg:"positional,required" help:"recording to write"`
	Format      string `arg:"--format" default:"json" help:"json or cbor"`
	Rename      string `arg:"--rename" help:"anonymize frames with this subject name"`
	Compression string `arg:"--compression" help:"none, gzip, zstd or lz4 (default from config)"`
}

type SynthCmd struct {
	Output         string  `arg:"positional,required" help:"recording to write"`
	Shape          string  `arg:"--shape" default:"all" help:"blendshape to sweep, or all"`
	FramesPerShape int     `arg:"--frames-per-shape" help:"frames per blendshape"`
	TimePerShape   float64 `arg:"--time-per-shape" default:"1.1" help:"seconds per blendshape when --frames-per-shape isn't given"`
	Min            float32 `arg:"--min" default:"0" help:"value at the start of each sweep"`
	Max            float32 `arg:"--max" default:"1" help:"value at the end of each sweep"`
}

type InfoCmd struct {
	Path string `arg:"positional,required" help:"recording to describe"`
}

type Args struct {
	ConfigFile string      `arg:"-c,--config" help:"path to configuration file"`
	Timestamps bool        `arg:"-t,--timestamps" help:"include timestamps in log output"`
	Record     *RecordCmd  `arg:"subcommand:record" help:"record frames sent by a capture app"`
	Play       *PlayCmd    `arg:"subcommand:play" help:"send a recording to a receiver"`
	Migrate    *MigrateCmd `arg:"subcommand:migrate" help:"convert a legacy recording"`
	Unpack     *UnpackCmd  `arg:"subcommand:unpack" help:"write a recording as an editable clear file"`
	Pack       *PackCmd    `arg:"subcommand:pack" help:"build a recording from a clear file"`
	Synth      *SynthCmd   `arg:"subcommand:synth" help:"generate a calibration recording"`
	Info       *InfoCmd    `arg:"subcommand:info" help:"describe a recording"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/face-recorder.yaml"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()

	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case args.Record != nil:
		logConfig(conf)
		return runRecord(ctx, args.Record, conf)
	case args.Play != nil:
		return runPlay(ctx, args.Play, conf)
	case args.Migrate != nil:
		return runMigrate(args.Migrate, conf)
	case args.Unpack != nil:
		return runUnpack(args.Unpack, conf)
	case args.Pack != nil:
		return runPack(args.Pack, conf)
	case args.Synth != nil:
		return runSynth(args.Synth, conf)
	case args.Info != nil:
		return runInfo(args.Info)
	default:
		return errors.New("no command given, see --help")
	}
}
