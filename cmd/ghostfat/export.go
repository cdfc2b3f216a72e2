package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/antonok-edm/stm32-usb/flash"
	"github.com/antonok-edm/stm32-usb/ghostfat"
	"github.com/antonok-edm/stm32-usb/progress"
)

var (
	exportOutput   string
	exportFirmware string
	exportZstd     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "write the synthesized volume image to a file or block device",
	Long: `Export builds the FAT16 image the device would present over USB and
writes it out. With --firmware, a raw firmware image is programmed
into the flash window first, so CURRENT.UF2 on the exported volume
carries it.`,
	RunE: runExport,
}

func init() {
	registerVolumeFlags(exportCmd.Flags())
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "drive.img", "destination file or block device")
	exportCmd.Flags().StringVar(&exportFirmware, "firmware", "", "raw firmware image to preload into the flash window")
	exportCmd.Flags().BoolVar(&exportZstd, "zstd", false, "compress the image with zstd")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	dev, gf, err := newVolume()
	if err != nil {
		return err
	}

	if exportFirmware != "" {
		fw, err := os.ReadFile(exportFirmware)
		if err != nil {
			return err
		}
		start, end := dev.AddressRange()
		if uint32(len(fw)) > end-start {
			return fmt.Errorf("firmware %s (%s) exceeds the %s flash window",
				exportFirmware, progress.Bytes(uint64(len(fw))), progress.Bytes(uint64(end-start)))
		}
		if err := flash.WriteBytes(dev, start, fw); err != nil {
			return fmt.Errorf("preloading firmware: %w", err)
		}
	}

	imageSize := int64(gf.MaxLBA()+1) * ghostfat.BlockSize

	var f *os.File
	if fi, err := os.Stat(exportOutput); err == nil && fi.Mode()&os.ModeDevice != 0 {
		f, err = os.OpenFile(exportOutput, os.O_WRONLY, 0)
		if err != nil {
			return err
		}
		size, err := deviceSize(f)
		if err != nil {
			f.Close()
			return fmt.Errorf("checking capacity of %s: %w", exportOutput, err)
		}
		if size < imageSize {
			f.Close()
			return fmt.Errorf("device %s holds %s, image needs %s",
				exportOutput, progress.Bytes(uint64(size)), progress.Bytes(uint64(imageSize)))
		}
	} else {
		f, err = os.OpenFile(exportOutput, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
	}
	defer f.Close()

	// The digest covers the uncompressed image.
	h := sha256.New()
	var w io.Writer = io.MultiWriter(f, h)
	var zw *zstd.Encoder
	if exportZstd {
		zw, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return err
		}
		w = io.MultiWriter(zw, h)
	}

	if err := gf.WriteImage(w); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("wrote %s to %s (sha256 %x)", progress.Bytes(uint64(imageSize)), exportOutput, h.Sum(nil))
	return nil
}
