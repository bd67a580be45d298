/*
NAME
  mapping.go

DESCRIPTION
  mapping.go contains the message mapping schema, its tab-delimited file
  loader and the index used to look up output names during extraction.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

// Package mapping provides loading and lookup of VoiceWare message
// mapping files, which assign output filenames and comments to messages
// by (segment, in-segment) index.
package mapping

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// Mapping is one record of a mapping file: a message key and its
// user-supplied output base name and optional comment.
type Mapping struct {
	Segment    uint32 // 0-based segment index.
	Message    uint32 // 0-based index within the segment.
	OutputBase string // Output filename without extension.
	Comment    string // Cleaned comment, empty when absent.
}

// Index is an ordered collection of mappings with last-writer-wins
// semantics on duplicate keys. Lookup is linear; mapping files are
// small enough that this has never mattered.
type Index struct {
	mappings []Mapping

	log logging.Logger
}

// NewIndex returns an empty Index. log may be nil.
func NewIndex(log logging.Logger) *Index {
	return &Index{log: log}
}

// Add inserts m, replacing any existing mapping with the same
// (Segment, Message) key.
func (idx *Index) Add(m Mapping) {
	for i := range idx.mappings {
		if idx.mappings[i].Segment == m.Segment && idx.mappings[i].Message == m.Message {
			if idx.log != nil {
				idx.log.Debug("replacing duplicate mapping", "segment", m.Segment, "message", m.Message)
			}
			idx.mappings[i] = m
			return
		}
	}
	idx.mappings = append(idx.mappings, m)
}

// Lookup returns the mapping for (seg, msg), or nil if none exists.
func (idx *Index) Lookup(seg, msg uint32) *Mapping {
	if idx == nil {
		return nil
	}
	for i := range idx.mappings {
		if idx.mappings[i].Segment == seg && idx.mappings[i].Message == msg {
			return &idx.mappings[i]
		}
	}
	return nil
}

// Len returns the number of mappings in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.mappings)
}

// CleanComment strips leading whitespace, then a single leading '#',
// then any whitespace immediately following that '#'.
func CleanComment(s string) string {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	if strings.HasPrefix(s, "#") {
		s = strings.TrimLeft(s[1:], " \t\n\v\f\r")
	}
	return s
}

// Load parses a mapping file from r. Blank lines and lines whose first
// non-whitespace character is '#' are skipped. Records are
// seg<TAB>msg<TAB>name[<TAB>comment]; a malformed line aborts the load
// with a line-numbered error. log may be nil.
func Load(r io.Reader, log logging.Logger) (*Index, error) {
	idx := NewIndex(log)
	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimLeft(sc.Text(), " \t\v\f\r")
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.SplitN(line, "\t", 4)
		if len(fields) < 3 {
			return nil, errors.Errorf("invalid mapping at line %d: missing tabs", lineNum)
		}

		seg, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, errors.Errorf("invalid segment index %q at line %d", fields[0], lineNum)
		}
		msg, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, errors.Errorf("invalid message index %q at line %d", fields[1], lineNum)
		}

		m := Mapping{
			Segment:    uint32(seg),
			Message:    uint32(msg),
			OutputBase: strings.TrimRight(fields[2], " \t\n\v\f\r"),
		}
		if len(fields) == 4 {
			m.Comment = CleanComment(strings.TrimRight(fields[3], " \t\n\v\f\r"))
		}
		idx.Add(m)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read mapping file")
	}
	return idx, nil
}

// LoadFile loads a mapping file from path.
func LoadFile(path string, log logging.Logger) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open mapping file %s", path)
	}
	defer f.Close()
	idx, err := Load(f, log)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping file %s", path)
	}
	return idx, nil
}
