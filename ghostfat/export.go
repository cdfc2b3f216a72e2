package ghostfat

import (
	"fmt"
	"io"
)

// WriteImage streams the full volume image to w, one synthesized block
// at a time. The result is a mountable FAT16 disk image reflecting the
// flash content at the time of the call, which is useful for
// inspecting the volume with host tooling when no hardware is
// attached.
func (g *GhostFat) WriteImage(w io.Writer) error {
	block := make([]byte, BlockSize)
	for lba := uint32(0); lba <= g.MaxLBA(); lba++ {
		if err := g.ReadBlock(lba, block); err != nil {
			return err
		}
		if _, err := w.Write(block); err != nil {
			return fmt.Errorf("writing block 0x%X: %w", lba, err)
		}
	}
	return nil
}
