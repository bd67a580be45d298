/*
NAME
  main.go

DESCRIPTION
  voiceware is a command-line decoder for Nortel Millennium VoiceWare
  ROM images. It converts NEC uPD7759 ADPCM messages to WAV files with
  embedded metadata, copies raw PCM messages through verbatim, and can
  list ROM contents in mapping file format.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

// Package main is the voiceware command-line front end.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/telaudio/voiceware/extract"
	"github.com/telaudio/voiceware/mapping"
	"github.com/telaudio/voiceware/rom"
)

// Current software version.
const version = "v1.0.0"

// Rotating log file configuration, used when -log is given.
const (
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
)

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "Usage: %s <rom_filepath> [-m <map_filepath>] [-i <message_index>] [-l|--list] [-q|--quiet] [-v|--verbose]\n", os.Args[0])
	fmt.Fprintln(w, "Decodes Nortel Millennium VoiceWare ROM files (NEC uPD7759 ADPCM).")
	fmt.Fprintln(w, "Uses 0-based segment indexing.")
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
}

func main() {
	var (
		mapPath = flag.String("m", "", "path to the optional tab-delimited mapping file (SegIdx\\tMsgIdxInSeg\\tFilenameBase[\\tComment])")
		target  = flag.Int64("i", -1, "decode only the given absolute message index (0-based); ignored with -l")
		outDir  = flag.String("o", ".", "directory output files are written to")
		logPath = flag.String("log", "", "also write logs to a rotating file at this path")
		showVer = flag.Bool("version", false, "show version and exit")
		list    bool
		quiet   bool
		verbose bool
	)
	flag.BoolVar(&list, "l", false, "list messages in mapping file format to stdout instead of decoding")
	flag.BoolVar(&list, "list", false, "alias for -l")
	flag.BoolVar(&quiet, "q", false, "suppress all informational output; only errors are printed (overrides -v)")
	flag.BoolVar(&quiet, "quiet", false, "alias for -q")
	flag.BoolVar(&verbose, "v", false, "enable verbose debugging output (ignored with -q)")
	flag.BoolVar(&verbose, "verbose", false, "alias for -v")
	flag.Usage = usage
	flag.Parse()

	if *showVer {
		fmt.Println(version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		if flag.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "ERROR: input ROM filepath is required")
		} else {
			fmt.Fprintf(os.Stderr, "ERROR: unexpected argument %q\n", flag.Arg(1))
		}
		usage()
		os.Exit(1)
	}
	romPath := flag.Arg(0)

	// Quiet overrides verbose.
	if quiet {
		verbose = false
	}
	level := int8(logging.Info)
	switch {
	case quiet:
		level = int8(logging.Error)
	case verbose:
		level = int8(logging.Debug)
	}

	var w io.Writer = os.Stderr
	if *logPath != "" {
		fileLog := &lumberjack.Logger{
			Filename:   *logPath,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
		w = io.MultiWriter(os.Stderr, fileLog)
	}
	log := logging.New(level, w, true)

	romName := filepath.Base(romPath)
	log.Info("starting voiceware", "version", version)
	log.Info("input ROM", "path", romPath, "artistTag", romName)
	if *mapPath != "" {
		log.Info("mapping file", "path", *mapPath)
	}
	switch {
	case list:
		log.Info("mode: listing messages")
	case *target >= 0:
		log.Info("mode: decoding target message", "index", *target)
	default:
		log.Info("mode: decoding all messages")
	}

	if *target < extract.TargetAll {
		fmt.Fprintf(os.Stderr, "ERROR: invalid message index %d for -i option\n", *target)
		usage()
		os.Exit(1)
	}
	if list && *target >= 0 {
		log.Info("option -i ignored when -l or --list is specified")
		*target = extract.TargetAll
	}

	var maps *mapping.Index
	if *mapPath != "" {
		var err error
		maps, err = mapping.LoadFile(*mapPath, log)
		if err != nil {
			log.Fatal("could not load mappings", "error", err.Error())
		}
		log.Debug("loaded mappings", "count", maps.Len())
	}

	img, err := rom.FromFile(romPath)
	if err != nil {
		log.Fatal("could not load ROM", "error", err.Error())
	}
	log.Debug("ROM loaded", "bytes", img.Len())

	e := extract.New(extract.Config{
		Logger:   log,
		Out:      os.Stdout,
		OutDir:   *outDir,
		ROMName:  romName,
		Mappings: maps,
		Target:   *target,
		List:     list,
		Quiet:    quiet,
	})
	if err := e.Run(img); err != nil {
		log.Fatal("processing failed", "error", err.Error())
	}
	log.Info("processing finished")
}
