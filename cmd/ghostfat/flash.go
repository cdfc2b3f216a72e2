package main

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/antonok-edm/stm32-usb/progress"
	"github.com/antonok-edm/stm32-usb/uf2"
)

var flashOutput string

var flashCmd = &cobra.Command{
	Use:   "flash <firmware.uf2>",
	Short: "replay a UF2 file against the emulated drive",
	Long: `Flash feeds every 512-byte block of a UF2 file through the volume's
write path, exactly as a host copying the file onto the drive would,
then saves the programmed flash window. Use it to preview what a UF2
file does to a device before touching hardware. Files ending in .zst
are decompressed transparently.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlash,
}

func init() {
	registerVolumeFlags(flashCmd.Flags())
	flashCmd.Flags().StringVarP(&flashOutput, "output", "o", "flash.bin", "destination for the programmed flash window")
	rootCmd.AddCommand(flashCmd)
}

func runFlash(cmd *cobra.Command, args []string) error {
	dev, gf, err := newVolume()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	var rep progress.Reporter
	if strings.HasSuffix(args[0], ".zst") {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return err
		}
		defer zr.Close()
		r = zr
	} else if fi, err := f.Stat(); err == nil {
		rep.SetTotalBlocks(uint64(fi.Size()) / uf2.BlockSize)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		rep.Report(ctx)
	}()

	first, last := gf.FirmwareRegion()
	lba := first
	block := make([]byte, uf2.BlockSize)
	for {
		if _, err := io.ReadFull(r, block); err == io.EOF {
			break
		} else if err != nil {
			cancel()
			<-done
			return err
		}
		if err := gf.WriteBlock(lba, block); err != nil {
			cancel()
			<-done
			return err
		}
		if b, err := uf2.Parse(block); err == nil {
			rep.AddBlock(int(b.PayloadSize))
		}
		// Hosts wrap within the pseudo-file when the UF2 is larger
		// than the exposed window.
		if lba++; lba > last {
			lba = first
		}
	}
	cancel()
	<-done

	start, end := dev.AddressRange()
	window := make([]byte, end-start)
	if err := dev.ReadBytes(start, window); err != nil {
		return err
	}
	if err := os.WriteFile(flashOutput, window, 0644); err != nil {
		return err
	}

	log.Printf("programmed %s in %d blocks (%d sectors dropped), flash window saved to %s",
		progress.Bytes(rep.Bytes()), rep.Blocks(), gf.DroppedBlocks(), flashOutput)
	return nil
}
