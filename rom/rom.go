/*
NAME
  rom.go

DESCRIPTION
  rom.go provides an in-memory VoiceWare ROM image with bounds-checked
  accessors.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

// Package rom provides access to Nortel Millennium VoiceWare ROM images,
// including segment traversal and message offset tables.
package rom

import (
	"os"

	"github.com/pkg/errors"
)

// Segment geometry and message modes of the VoiceWare ROM format.
const (
	SegmentSize = 131072 // Segments repeat at a fixed 128 KiB pitch.

	ModeADPCM = 0x00 // Message holds a uPD7759 ADPCM command stream.
	ModePCM   = 0x40 // Message holds raw PCM, copied through verbatim.
)

// Magic is the 4-byte signature found at byte 1 of every segment header.
var Magic = [4]byte{0x5A, 0xA5, 0x69, 0x55}

// ErrOutOfRange is returned by Image accessors for reads beyond the ROM.
var ErrOutOfRange = errors.New("read out of ROM range")

// Image is an immutable in-memory ROM image. All accessors are
// bounds-checked; an out-of-range read is a recoverable error, never a
// panic.
type Image struct {
	data []byte
}

// NewImage returns an Image backed by the given bytes. The caller must
// not modify data after the call.
func NewImage(data []byte) *Image {
	return &Image{data: data}
}

// FromFile loads a ROM image from path. Empty files are rejected.
func FromFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read ROM file")
	}
	if len(data) == 0 {
		return nil, errors.Errorf("ROM file %s is empty", path)
	}
	return NewImage(data), nil
}

// Len returns the size of the ROM in bytes.
func (img *Image) Len() int { return len(img.data) }

// Byte returns the byte at off.
func (img *Image) Byte(off int) (byte, error) {
	if off < 0 || off >= len(img.data) {
		return 0, errors.Wrapf(ErrOutOfRange, "offset 0x%x, ROM size 0x%x", off, len(img.data))
	}
	return img.data[off], nil
}

// Bytes returns the n bytes starting at off. The returned slice aliases
// the ROM and must not be modified.
func (img *Image) Bytes(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(img.data) {
		return nil, errors.Wrapf(ErrOutOfRange, "range [0x%x,0x%x), ROM size 0x%x", off, off+n, len(img.data))
	}
	return img.data[off : off+n], nil
}

// ReadU16BE returns the big-endian 16-bit value at off.
func (img *Image) ReadU16BE(off int) (uint16, error) {
	if off < 0 || off+2 > len(img.data) {
		return 0, errors.Wrapf(ErrOutOfRange, "u16 at 0x%x, ROM size 0x%x", off, len(img.data))
	}
	return uint16(img.data[off])<<8 | uint16(img.data[off+1]), nil
}
