/*
NAME
  extract.go

DESCRIPTION
  extract.go contains the top-level driver that walks a VoiceWare ROM
  image and dispatches each message to the ADPCM decoder, the raw PCM
  writer or the lister.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

// Package extract drives decoding and listing of VoiceWare ROM images.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/telaudio/voiceware/codec/adpcm"
	"github.com/telaudio/voiceware/codec/pcm"
	"github.com/telaudio/voiceware/container/wav"
	"github.com/telaudio/voiceware/mapping"
	"github.com/telaudio/voiceware/rom"
)

// sampleRate is the fixed output rate of VoiceWare audio.
const sampleRate = 8000

// TargetAll selects every message in the ROM.
const TargetAll int64 = -1

// Config holds the extractor configuration.
type Config struct {
	// Logger must be set; all diagnostics go through it.
	Logger logging.Logger

	// Out receives list-mode output. Defaults to os.Stdout.
	Out io.Writer

	// OutDir is the directory output files are written to.
	// Defaults to the current directory.
	OutDir string

	// ROMName is the base filename of the input ROM, used for the
	// IART tag and the list header.
	ROMName string

	// Mappings is the optional message mapping index.
	Mappings *mapping.Index

	// Target restricts decoding to one absolute message index.
	// Use TargetAll for every message. Ignored in list mode.
	Target int64

	List  bool // Emit the mapping-format inventory instead of decoding.
	Quiet bool // Suppress all non-error output.
}

// Extractor walks a ROM image and processes its messages in ascending
// (segment, in-segment) order, which is also ascending absolute index.
type Extractor struct {
	cfg Config

	// buf is reused across ADPCM messages within a run.
	buf pcm.Buffer
}

// New returns an Extractor for the given configuration.
func New(cfg Config) *Extractor {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	return &Extractor{cfg: cfg}
}

// Run processes every segment of img. In decode mode with a target
// index it stops as soon as that message has been processed and fails
// if the index is never reached. Traversal errors from the first
// segment, or an offset table overrun anywhere, abort the run.
func (e *Extractor) Run(img *rom.Image) error {
	if e.cfg.List && !e.cfg.Quiet {
		fmt.Fprintf(e.cfg.Out, "# ROM: %s\n\n", e.cfg.ROMName)
	}

	it := rom.NewSegments(img)
	absolute := 0
	for {
		seg, err := it.Next()
		if err != nil {
			return err
		}
		if seg == nil {
			break
		}
		e.cfg.Logger.Debug("processing segment", "segment", seg.Index, "base", seg.Base, "messages", seg.Count())

		for i := 0; i < seg.Count(); i++ {
			abs := absolute + i
			if e.cfg.List {
				e.list(img, seg, i)
				continue
			}
			if e.cfg.Target >= 0 && int64(abs) != e.cfg.Target {
				continue
			}
			e.process(img, seg, i, abs)
			if e.cfg.Target >= 0 {
				return nil
			}
		}
		absolute += seg.Count()
	}

	if !e.cfg.List && e.cfg.Target >= 0 {
		return errors.Errorf("target message index %d not found in ROM", e.cfg.Target)
	}
	return nil
}

// baseName returns the output base name and comment for a message,
// falling back to the default message_<seg>_<idx> form.
func (e *Extractor) baseName(seg, msg int) (base, comment string) {
	if m := e.cfg.Mappings.Lookup(uint32(seg), uint32(msg)); m != nil {
		return m.OutputBase, m.Comment
	}
	return fmt.Sprintf("message_%d_%03d", seg, msg), ""
}

// process decodes or copies a single message. Per-message failures are
// logged and skipped; they never abort the run.
func (e *Extractor) process(img *rom.Image, seg *rom.Segment, i, abs int) {
	log := e.cfg.Logger
	start := seg.MessageStart(i)
	if start >= img.Len() {
		log.Warning("message start out of bounds; skipping",
			"absolute", abs, "segment", seg.Index, "message", i, "start", start, "romSize", img.Len())
		return
	}
	mode, _ := img.Byte(start)
	base, comment := e.baseName(seg.Index, i)

	log.Info("processing message", "absolute", abs, "segment", seg.Index, "message", i, "mode", mode, "offset", start)

	switch mode {
	case rom.ModeADPCM:
		e.decodeADPCM(img, start, abs, base, comment)

	case rom.ModePCM:
		end := seg.MessageEnd(i, img.Len())
		if end <= start {
			log.Warning("cannot determine raw PCM data range; skipping", "absolute", abs)
			return
		}
		path := filepath.Join(e.cfg.OutDir, base+".pcm")
		if err := saveRawPCM(path, img, start, end); err != nil {
			log.Error("could not save raw PCM", "absolute", abs, "error", err.Error())
			return
		}
		log.Info("saved raw PCM data", "path", path, "bytes", end-start)

	default:
		log.Warning("unknown message mode; skipping", "absolute", abs, "mode", mode, "offset", start)
	}
}

// decodeADPCM decodes the command stream beginning after the mode byte
// at start and writes the result as a WAV file. A message producing
// zero samples yields no file and no error.
func (e *Extractor) decodeADPCM(img *rom.Image, start, abs int, base, comment string) {
	log := e.cfg.Logger
	stream, err := img.Bytes(start+1, img.Len()-start-1)
	if err != nil {
		log.Warning("message has no command stream; skipping", "absolute", abs)
		return
	}

	e.buf.Reset()
	dec := adpcm.NewDecoder(&e.buf, log)
	if err := dec.Decode(stream); err != nil {
		log.Error("decoding failed; no WAV file written", "absolute", abs, "error", err.Error())
		return
	}
	if e.buf.Len() == 0 {
		log.Info("message produced 0 PCM samples; no WAV file written", "absolute", abs)
		return
	}

	path := filepath.Join(e.cfg.OutDir, base+".wav")
	md := wav.Metadata{
		SampleRate: sampleRate,
		Album:      wav.Album,
		Artist:     e.cfg.ROMName,
		Title:      base,
		Track:      strconv.Itoa(abs),
		Date:       time.Now().Format("2006-01-02"),
		Comment:    comment,
	}
	if err := wav.WriteFile(path, e.buf.Samples(), md); err != nil {
		log.Error("could not write WAV", "absolute", abs, "error", err.Error())
		return
	}
	log.Info("wrote WAV", "path", path, "samples", e.buf.Len())
}
