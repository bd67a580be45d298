/*
NAME
  rawpcm.go

DESCRIPTION
  rawpcm.go copies raw PCM message ranges out of the ROM verbatim,
  including the leading mode byte.

LICENSE
  Copyright (C) 2025 the telaudio project authors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the telaudio project.
*/

package extract

import (
	"os"

	"github.com/pkg/errors"

	"github.com/telaudio/voiceware/rom"
)

// saveRawPCM writes the ROM bytes [start, end) to a new file at path.
func saveRawPCM(path string, img *rom.Image, start, end int) error {
	data, err := img.Bytes(start, end-start)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot open output PCM file %s", path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "could not write PCM file %s", path)
	}
	return errors.Wrapf(f.Close(), "could not close PCM file %s", path)
}
