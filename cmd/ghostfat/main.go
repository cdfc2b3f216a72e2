// Command ghostfat works with UF2 GhostFat volumes offline: it can
// export the FAT16 image a device would present over USB, and it can
// replay a UF2 file against the emulated drive to preview exactly what
// would end up in flash.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/antonok-edm/stm32-usb/flash"
	"github.com/antonok-edm/stm32-usb/ghostfat"
)

var rootCmd = &cobra.Command{
	Use:   "ghostfat",
	Short: "inspect and exercise UF2 GhostFat volumes without hardware",
}

var (
	totalBlocks   uint32
	volumeLabel   string
	flashStartArg string
	flashEndArg   string
	pageSize      uint32
	familyArg     string
)

// registerVolumeFlags adds the volume and flash-window geometry flags
// shared by all subcommands.
func registerVolumeFlags(fs *pflag.FlagSet) {
	fs.Uint32Var(&totalBlocks, "blocks", 8000, "number of 512-byte blocks the volume advertises")
	fs.StringVar(&volumeLabel, "label", "BLUEPILL", "volume label")
	fs.StringVar(&flashStartArg, "flash-start", "0x08010000", "first address of the exposed flash window")
	fs.StringVar(&flashEndArg, "flash-end", "0x08030000", "end (exclusive) of the exposed flash window")
	fs.Uint32Var(&pageSize, "page-size", 1024, "flash page size in bytes")
	fs.StringVar(&familyArg, "family", "0", "required UF2 family id, 0 accepts any")
}

func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %v", s, err)
	}
	return uint32(v), nil
}

// newVolume builds an in-memory flash window and a GhostFat volume
// over it from the shared flags.
func newVolume() (*flash.Mem, *ghostfat.GhostFat, error) {
	start, err := parseAddr(flashStartArg)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseAddr(flashEndArg)
	if err != nil {
		return nil, nil, err
	}
	family, err := parseAddr(familyArg)
	if err != nil {
		return nil, nil, err
	}
	if pageSize == 0 || pageSize&(pageSize-1) != 0 {
		return nil, nil, fmt.Errorf("page size %d is not a power of two", pageSize)
	}
	if end <= start || start%pageSize != 0 || end%pageSize != 0 {
		return nil, nil, fmt.Errorf("flash window [%s, %s) is not page-aligned", flashStartArg, flashEndArg)
	}

	dev := flash.NewMem(start, end, pageSize)
	gf, err := ghostfat.New(dev,
		ghostfat.WithTotalBlocks(totalBlocks),
		ghostfat.WithVolumeLabel(volumeLabel),
		ghostfat.WithFamily(family),
		ghostfat.WithModTime(time.Now()),
	)
	if err != nil {
		return nil, nil, err
	}
	return dev, gf, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
