/*
NAME
  pcm.go

DESCRIPTION
  pcm.go contains the 16-bit PCM sample buffer that the ADPCM decoder
  writes into.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

// Package pcm provides buffering of decoded 16-bit PCM audio samples.
package pcm

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// initCap is the initial sample capacity of a Buffer.
const initCap = 2048

// ErrTooLarge is returned when a Buffer would exceed the RIFF data
// chunk limit of 2^32-1 bytes.
var ErrTooLarge = errors.New("PCM buffer exceeds RIFF chunk limit")

// Buffer is an append-only sequence of signed 16-bit mono PCM samples.
// The zero value is ready to use.
type Buffer struct {
	samples []int16
}

// Append adds a single sample to the buffer.
func (b *Buffer) Append(s int16) error {
	if uint64(len(b.samples)+1)*2 > math.MaxUint32 {
		return ErrTooLarge
	}
	if b.samples == nil {
		b.samples = make([]int16, 0, initCap)
	}
	b.samples = append(b.samples, s)
	return nil
}

// AppendZero adds n zero samples to the buffer.
func (b *Buffer) AppendZero(n int) error {
	if uint64(len(b.samples)+n)*2 > math.MaxUint32 {
		return ErrTooLarge
	}
	if b.samples == nil {
		b.samples = make([]int16, 0, initCap)
	}
	for i := 0; i < n; i++ {
		b.samples = append(b.samples, 0)
	}
	return nil
}

// Len returns the number of samples in the buffer.
func (b *Buffer) Len() int { return len(b.samples) }

// Samples returns the buffered samples. The returned slice aliases the
// buffer and is valid until the next Append or Reset.
func (b *Buffer) Samples() []int16 { return b.samples }

// Reset empties the buffer, retaining its capacity for reuse across
// messages.
func (b *Buffer) Reset() { b.samples = b.samples[:0] }

// Bytes returns the samples as little-endian bytes, the form they take
// in a WAV data chunk.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, 2*len(b.samples))
	for i, s := range b.samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}
