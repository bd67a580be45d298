/*
NAME
  adpcm_test.go

DESCRIPTION
  adpcm_test.go contains tests for the uPD7759 command-stream decoder,
  including the pinned checksum of the decoding tables.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

package adpcm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/telaudio/voiceware/codec/pcm"
)

// tableChecksum is the pinned SHA-256 of the decoding tables. The
// tables are a trusted constant asset; any edit must fail this test.
const tableChecksum = "f407ec992493a344a934b799e6ef3e7a415be37d0ef72ae42cfd08b209be84cb"

func TestTableChecksum(t *testing.T) {
	h := sha256.New()
	for _, row := range stepTable {
		for _, d := range row {
			fmt.Fprintf(h, "%d,", d)
		}
	}
	for _, s := range stateTable {
		fmt.Fprintf(h, "%d,", s)
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != tableChecksum {
		t.Errorf("table checksum = %s, want %s", got, tableChecksum)
	}
}

// decode runs a fresh decoder over stream and returns the samples.
func decode(t *testing.T, stream []byte) ([]int16, error) {
	t.Helper()
	var buf pcm.Buffer
	err := NewDecoder(&buf, nil).Decode(stream)
	return buf.Samples(), err
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		stream  []byte
		want    []int16
		wantErr error
	}{
		{
			name:   "empty message",
			stream: []byte{0x00},
			want:   nil,
		},
		{
			name:   "silence run",
			stream: []byte{0x01, 0x00},
			want:   make([]int16, 8),
		},
		{
			name:   "three silence counts",
			stream: []byte{0x03, 0x00},
			want:   make([]int16, 24),
		},
		{
			name: "short block of zero nibbles",
			// 256 zero nibbles: the predictor holds at 0 and the
			// state adjustment of -1 clamps at 0.
			stream: append(append([]byte{0x40}, make([]byte, 128)...), 0x00),
			want:   make([]int16, 256),
		},
		{
			name:   "long block odd nibble count",
			stream: []byte{0x80, 0x00, 0x48, 0x00},
			// One nibble: only the high nibble (4) of the data byte
			// is consumed; the low nibble (8) is never decoded.
			want: []int16{3 << 7},
		},
		{
			name:   "repeat block plays twice",
			stream: []byte{0xC8, 0x01, 0x44, 0x00},
			// Two nibbles of 4 played twice with no state reset
			// between passes.
			want: []int16{3 << 7, 7 << 7, 12 << 7, 18 << 7},
		},
		{
			name:   "repeat count zero equals long block",
			stream: []byte{0xC0, 0x01, 0x44, 0x00},
			want:   []int16{3 << 7, 7 << 7},
		},
		{
			name:   "truncated at command with samples is accepted",
			stream: []byte{0x01},
			want:   make([]int16, 8),
		},
		{
			name:    "empty stream",
			stream:  nil,
			wantErr: ErrTruncated,
		},
		{
			name:    "truncated length byte",
			stream:  []byte{0x80},
			wantErr: ErrTruncated,
		},
		{
			name:    "truncated repeat length byte",
			stream:  []byte{0xC0},
			wantErr: ErrTruncated,
		},
		{
			name: "truncated data fails despite samples",
			// Silence emits 8 samples, but EOF inside the short
			// block's data is always a decode failure.
			stream:  []byte{0x01, 0x40, 0x11},
			wantErr: ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode(t, tt.stream)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("samples mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSampleScalingSaturates(t *testing.T) {
	// Six max-positive nibbles walk the predictor up to 457, past the
	// 255 ceiling where the <<7 scaling overflows; the decoder must
	// emit a saturated sample there.
	samples, err := decode(t, []byte{0x80, 0x05, 0x77, 0x77, 0x77, 0x00})
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	want := []int16{10 << 7, 29 << 7, 62 << 7, 126 << 7, 243 << 7, math.MaxInt16}
	if diff := cmp.Diff(want, samples); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleCountAccounting(t *testing.T) {
	// Emitted sample count equals silence samples plus nibbles times
	// plays across all opcodes.
	stream := []byte{
		0x02,             // 16 silence samples.
		0x80, 0x02, 0x00, 0x08, // Long block: 3 nibbles, 2 bytes.
		0xD0, 0x03, 0x00, 0x00, // Repeat block: 4 nibbles, 3 plays.
		0x00,
	}
	var buf pcm.Buffer
	dec := NewDecoder(&buf, nil)
	if err := dec.Decode(stream); err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	want := 16 + 3 + 4*3
	if dec.Emitted() != want || buf.Len() != want {
		t.Errorf("emitted %d samples (buffer %d), want %d", dec.Emitted(), buf.Len(), want)
	}
}
