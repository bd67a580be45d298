/*
NAME
  wav.go

DESCRIPTION
  wav.go contains the RIFF/WAVE emitter used for decoded VoiceWare
  messages: 16-bit mono PCM with a LIST/INFO metadata chunk.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

// Package wav emits RIFF/WAVE files with LIST/INFO metadata.
package wav

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Album is the IALB tag value stamped into every produced file.
const Album = "Nortel Millennium VoiceWare"

// fmtChunkSize is the size of the 16-byte PCM form of the fmt chunk.
const fmtChunkSize = 16

// ErrDataTooLarge is returned when the sample data would exceed the
// 32-bit RIFF chunk size limit.
var ErrDataTooLarge = errors.New("WAV data chunk exceeds 4 GiB limit")

// Metadata holds the INFO tags written to the LIST chunk. Comment is
// optional; the remaining fields are always written, in the fixed order
// IALB, IART, INAM, ITRK, ICRD, ICMT.
type Metadata struct {
	SampleRate int

	Album   string // IALB
	Artist  string // IART: ROM base filename.
	Title   string // INAM: output base filename.
	Track   string // ITRK: absolute message index, decimal.
	Date    string // ICRD: YYYY-MM-DD.
	Comment string // ICMT: mapping comment, omitted when empty.
}

// infoTags returns the tag/value pairs in emission order, excluding an
// empty comment.
func (md *Metadata) infoTags() [][2]string {
	tags := [][2]string{
		{"IALB", md.Album},
		{"IART", md.Artist},
		{"INAM", md.Title},
		{"ITRK", md.Track},
		{"ICRD", md.Date},
	}
	if md.Comment != "" {
		tags = append(tags, [2]string{"ICMT", md.Comment})
	}
	return tags
}

// infoChunkSize returns the byte size of one INFO sub-chunk: ID, size
// field, NUL-terminated text and the odd-size pad byte.
func infoChunkSize(text string) uint32 {
	n := uint32(len(text)) + 1
	return 8 + n + n%2
}

// errWriter accumulates the first write error so the chunk emission
// below can read as straight-line code.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) id(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *errWriter) u16(v uint16) {
	if e.err != nil {
		return
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, e.err = e.w.Write(b[:])
}

func (e *errWriter) u32(v uint32) {
	if e.err != nil {
		return
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, e.err = e.w.Write(b[:])
}

func (e *errWriter) bytes(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

// info writes one INFO sub-chunk: ID, little-endian size including the
// trailing NUL, the text, its NUL, and a pad byte iff the size is odd.
func (e *errWriter) info(id, text string) {
	n := uint32(len(text)) + 1
	e.id(id)
	e.u32(n)
	e.bytes([]byte(text))
	e.bytes([]byte{0})
	if n%2 != 0 {
		e.bytes([]byte{0})
	}
}

// Encode writes a complete RIFF/WAVE file to w. All chunk sizes are
// precomputed so the header sizes exactly match the bytes emitted.
func Encode(w io.Writer, samples []int16, md Metadata) error {
	dataSize64 := uint64(len(samples)) * 2
	if dataSize64 > math.MaxUint32 {
		return errors.Wrapf(ErrDataTooLarge, "%d samples", len(samples))
	}
	dataSize := uint32(dataSize64)
	paddedDataSize := dataSize + dataSize%2

	infoDataSize := uint32(4) // "INFO" type ID.
	for _, tag := range md.infoTags() {
		infoDataSize += infoChunkSize(tag[1])
	}

	riffSize := uint32(4) + // "WAVE" type ID.
		(8 + fmtChunkSize) +
		(8 + infoDataSize) +
		(8 + paddedDataSize)

	e := &errWriter{w: w}

	e.id("RIFF")
	e.u32(riffSize)
	e.id("WAVE")

	e.id("fmt ")
	e.u32(fmtChunkSize)
	e.u16(1) // PCM format tag.
	e.u16(1) // Mono.
	e.u32(uint32(md.SampleRate))
	e.u32(uint32(md.SampleRate) * 2) // Byte rate.
	e.u16(2)                         // Block align.
	e.u16(16)                        // Bits per sample.

	e.id("LIST")
	e.u32(infoDataSize)
	e.id("INFO")
	for _, tag := range md.infoTags() {
		e.info(tag[0], tag[1])
	}

	e.id("data")
	e.u32(dataSize)
	var b [2]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint16(b[:], uint16(s))
		e.bytes(b[:])
	}
	if dataSize%2 != 0 {
		e.bytes([]byte{0})
	}

	return errors.Wrap(e.err, "could not write WAV")
}

// WriteFile encodes samples to a new file at path. The file is closed
// on all exit paths.
func WriteFile(path string, samples []int16, md Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create WAV file %s", path)
	}
	if err := Encode(f, samples, md); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "could not close WAV file %s", path)
}
