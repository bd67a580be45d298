/*
NAME
  segment.go

DESCRIPTION
  segment.go provides traversal of the fixed-pitch 128 KiB segments of a
  VoiceWare ROM image and decoding of their message offset tables.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

package rom

import (
	"bytes"

	"github.com/pkg/errors"
)

// headerSize is the last-message-index byte plus the 4-byte magic.
const headerSize = 5

// Traversal errors. ErrBadMagic and ErrShortHeader are fatal only for
// the first segment; for later segments they terminate traversal
// cleanly. ErrOffsetTable is fatal wherever it occurs.
var (
	ErrShortHeader = errors.New("ROM too small for segment header")
	ErrBadMagic    = errors.New("invalid magic number in segment header")
	ErrOffsetTable = errors.New("offset table exceeds segment or ROM bounds")
)

// Segment is a logical view of one 128 KiB region of the ROM: its index,
// base byte offset and decoded message offset table.
type Segment struct {
	Index   int      // 0-based segment index.
	Base    int      // Byte offset of the segment in the ROM.
	Offsets []uint16 // Word offsets of each message, relative to Base.
}

// Count returns the number of messages in the segment.
func (s *Segment) Count() int { return len(s.Offsets) }

// MessageStart returns the absolute byte offset of message i's mode byte.
func (s *Segment) MessageStart(i int) int {
	return s.Base + 2*int(s.Offsets[i])
}

// MessageEnd returns the absolute byte offset one past the last byte of
// message i, taken as the start of the next message, or the segment end
// for the final message, clamped to romLen.
func (s *Segment) MessageEnd(i, romLen int) int {
	end := s.Base + SegmentSize
	if i+1 < len(s.Offsets) {
		end = s.Base + 2*int(s.Offsets[i+1])
	}
	if end > romLen {
		end = romLen
	}
	return end
}

// Segments iterates over the segments of a ROM image at a fixed
// SegmentSize stride, independent of each segment's payload length.
type Segments struct {
	img  *Image
	base int
	idx  int
}

// NewSegments returns an iterator positioned at the first segment.
func NewSegments(img *Image) *Segments {
	return &Segments{img: img}
}

// Next returns the next segment, or (nil, nil) once traversal has
// terminated cleanly. A short or unrecognised header is an error only
// for the first segment; trailing junk or a truncated file otherwise
// ends the walk. An offset table that overruns its segment or the ROM
// is an error at any position.
func (it *Segments) Next() (*Segment, error) {
	if it.idx > 0 && it.base >= it.img.Len() {
		return nil, nil
	}

	if it.base+headerSize > it.img.Len() {
		if it.idx == 0 {
			return nil, ErrShortHeader
		}
		return nil, nil
	}

	header, err := it.img.Bytes(it.base, headerSize)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(header[1:headerSize], Magic[:]) {
		if it.idx == 0 {
			return nil, ErrBadMagic
		}
		return nil, nil
	}

	count := int(header[0]) + 1
	tableStart := it.base + headerSize
	tableEnd := tableStart + 2*count
	if tableEnd > it.img.Len() || tableEnd > it.base+SegmentSize {
		return nil, errors.Wrapf(ErrOffsetTable, "segment %d, %d messages", it.idx, count)
	}

	offsets := make([]uint16, count)
	for i := 0; i < count; i++ {
		off, err := it.img.ReadU16BE(tableStart + 2*i)
		if err != nil {
			return nil, err
		}
		offsets[i] = off
	}

	seg := &Segment{Index: it.idx, Base: it.base, Offsets: offsets}
	it.base += SegmentSize
	it.idx++
	return seg, nil
}
