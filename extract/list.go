/*
NAME
  list.go

DESCRIPTION
  list.go contains the inventory lister. Its output is itself a valid
  mapping file: re-parsing it reproduces the printed output base names.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

package extract

import (
	"fmt"
	"strings"

	"github.com/telaudio/voiceware/rom"
)

// Comment alignment for list output: filenames are padded with tabs to
// a 40-column target assuming 8-space tab stops.
const (
	tabWidth   = 8
	alignWidth = 40
)

// list emits one inventory line for a message. Quiet mode suppresses
// the output but traversal accounting continues in the caller.
func (e *Extractor) list(img *rom.Image, seg *rom.Segment, i int) {
	if e.cfg.Quiet {
		return
	}

	base, userComment := e.baseName(seg.Index, i)

	var mode byte
	modeOK := false
	start := seg.MessageStart(i)
	if start < img.Len() {
		mode, _ = img.Byte(start)
		modeOK = true
	} else {
		e.cfg.Logger.Warning("cannot read mode byte for list entry; offset out of bounds",
			"segment", seg.Index, "message", i, "start", start)
	}

	// The comment field always opens with '#'. A raw PCM message is
	// tagged (PCM) unless the user comment already carries it.
	comment := "#"
	pcmTagged := false
	if modeOK && mode == rom.ModePCM && !strings.Contains(userComment, "(PCM)") {
		comment += " (PCM)"
		pcmTagged = true
	}
	if userComment != "" {
		if pcmTagged || comment == "#" {
			comment += " "
		}
		comment += userComment
	} else if !pcmTagged {
		comment += " "
	}

	// At least one tab separates the filename from the comment even
	// when the filename already overruns the target column.
	stops := len(base) / tabWidth
	targetStops := (alignWidth + tabWidth - 1) / tabWidth
	tabs := 1
	if stops < targetStops {
		tabs = targetStops - stops
	}

	fmt.Fprintf(e.cfg.Out, "%d\t%d\t%s%s%s\n", seg.Index, i, base, strings.Repeat("\t", tabs), comment)
}
