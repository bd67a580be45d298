/*
NAME
  adpcm.go

DESCRIPTION
  adpcm.go contains a decoder for the NEC uPD7759 ADPCM command streams
  found in VoiceWare ROM messages. A message is an opcode stream that
  alternates between command bytes and nibble data blocks, terminated by
  a zero opcode.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

// Package adpcm provides decoding of NEC uPD7759 ADPCM command streams
// to 16-bit PCM.
package adpcm

import (
	"math"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/telaudio/voiceware/codec/pcm"
)

// shortBlockNibbles is the fixed data length of a short block opcode.
const shortBlockNibbles = 256

// ErrTruncated is returned when the command stream ends inside a length
// byte or data block, or before any sample has been produced.
var ErrTruncated = errors.New("command stream truncated")

// Decoder decodes a single uPD7759 command stream into a pcm.Buffer.
// Predictor and state start at zero for each message and are not
// carried across messages; create a new Decoder per message.
type Decoder struct {
	dst *pcm.Buffer

	pred    int16 // Current predicted sample.
	state   int   // State index into stepTable, 0-15.
	emitted int

	log logging.Logger
}

// NewDecoder returns a Decoder writing samples to dst. log may be nil
// to disable trace output.
func NewDecoder(dst *pcm.Buffer, log logging.Logger) *Decoder {
	return &Decoder{dst: dst, log: log}
}

// Emitted returns the number of samples produced so far.
func (d *Decoder) Emitted() int { return d.emitted }

// Decode runs the command state machine over stream, the message bytes
// following the mode byte. It returns nil on a zero terminator, and
// also when the stream ends while a command byte is expected provided
// at least one sample was produced; any other truncation is
// ErrTruncated.
func (d *Decoder) Decode(stream []byte) error {
	pos := 0
	for {
		if pos >= len(stream) {
			if d.emitted > 0 {
				if d.log != nil {
					d.log.Warning("unexpected end of data while reading command; accepting partial message", "samples", d.emitted)
				}
				return nil
			}
			return errors.Wrap(ErrTruncated, "end of data before first command completed")
		}
		cmd := stream[pos]
		pos++
		if d.log != nil {
			d.log.Debug("command read", "cmd", cmd, "pos", pos-1)
		}

		switch {
		case cmd == 0x00:
			return nil

		case cmd <= 0x3F:
			// Silence run: 8 zero samples per count, predictor untouched.
			n := int(cmd) * 8
			if err := d.dst.AppendZero(n); err != nil {
				return err
			}
			d.emitted += n

		case cmd <= 0x7F:
			if err := d.playBlock(stream, &pos, shortBlockNibbles, 0); err != nil {
				return err
			}

		case cmd <= 0xBF:
			if pos >= len(stream) {
				return errors.Wrapf(ErrTruncated, "end of data reading length for long block 0x%02x", cmd)
			}
			n := int(stream[pos]) + 1
			pos++
			if err := d.playBlock(stream, &pos, n, 0); err != nil {
				return err
			}

		default:
			if pos >= len(stream) {
				return errors.Wrapf(ErrTruncated, "end of data reading length for repeat block 0x%02x", cmd)
			}
			n := int(stream[pos]) + 1
			pos++
			repeats := int((cmd >> 3) & 0x07)
			if err := d.playBlock(stream, &pos, n, repeats); err != nil {
				return err
			}
		}
	}
}

// playBlock decodes a block of nibbles starting at *pos, playing it
// repeats additional times after the first pass. Predictor and state
// are not reset between passes; each pass continues from where the
// previous one left off. On return *pos is advanced past the block's
// ceil(nibbles/2) bytes.
func (d *Decoder) playBlock(stream []byte, pos *int, nibbles, repeats int) error {
	start := *pos
	if d.log != nil {
		d.log.Debug("play block", "nibbles", nibbles, "plays", repeats+1, "pos", start)
	}
	for play := 0; play <= repeats; play++ {
		p := start
		for remaining := nibbles; remaining > 0; {
			if p >= len(stream) {
				return errors.Wrapf(ErrTruncated, "end of data in block at byte %d", p)
			}
			b := stream[p]
			p++
			// High nibble first, then the low nibble unless the count
			// runs out on an odd boundary.
			if err := d.decodeNibble(b >> 4); err != nil {
				return err
			}
			remaining--
			if remaining > 0 {
				if err := d.decodeNibble(b & 0x0F); err != nil {
					return err
				}
				remaining--
			}
		}
	}
	*pos = start + (nibbles+1)/2
	return nil
}

// decodeNibble applies one 4-bit code to the predictor and state, and
// emits the scaled sample. The <<7 scaling and its two corner re-clamps
// reproduce the reference decoder exactly; see the package tests.
func (d *Decoder) decodeNibble(nibble byte) error {
	delta := stepTable[d.state][nibble]

	next := int32(d.pred) + int32(delta)
	if next > math.MaxInt16 {
		next = math.MaxInt16
	} else if next < math.MinInt16 {
		next = math.MinInt16
	}
	d.pred = int16(next)

	st := d.state + stateTable[nibble]
	if st < 0 {
		st = 0
	} else if st > 15 {
		st = 15
	}
	d.state = st

	sample := int16(int32(d.pred) << 7)
	if d.pred > math.MaxInt16>>7 && delta > 0 {
		sample = math.MaxInt16
	}
	if d.pred < math.MinInt16>>7 && delta < 0 {
		sample = math.MinInt16
	}

	if err := d.dst.Append(sample); err != nil {
		return err
	}
	d.emitted++
	return nil
}
