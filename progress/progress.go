// Package progress reports the progress of a firmware transfer: blocks
// fed through the emulated drive and bytes programmed into flash.
package progress

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// A Reporter accumulates transfer counters and periodically prints a
// status line. The counters may be bumped from the transfer loop while
// Report runs in a separate goroutine.
type Reporter struct {
	blocks      uint64
	bytes       uint64
	totalBlocks uint64
}

// SetTotalBlocks sets the number of transfer blocks expected, used for
// the percentage display. Zero disables the percentage.
func (r *Reporter) SetTotalBlocks(n uint64) {
	atomic.StoreUint64(&r.totalBlocks, n)
}

// AddBlock records one transfer block handed to the device, carrying n
// programmed payload bytes.
func (r *Reporter) AddBlock(n int) {
	atomic.AddUint64(&r.blocks, 1)
	atomic.AddUint64(&r.bytes, uint64(n))
}

// Blocks returns the number of blocks recorded so far.
func (r *Reporter) Blocks() uint64 {
	return atomic.LoadUint64(&r.blocks)
}

// Bytes returns the number of payload bytes recorded so far.
func (r *Reporter) Bytes() uint64 {
	return atomic.LoadUint64(&r.bytes)
}

// Report prints a status line every second until ctx is done.
func (r *Reporter) Report(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	lastBytes := r.Bytes()
	for {
		select {
		case <-ticker.C:
			blocks := r.Blocks()
			bytes := r.Bytes()
			status := fmt.Sprintf("%d blocks, %s programmed (%s/s)",
				blocks, Bytes(bytes), Bytes(bytes-lastBytes))
			if total := atomic.LoadUint64(&r.totalBlocks); total > 0 {
				status = fmt.Sprintf("[%3d%%] %s", blocks*100/total, status)
			}
			fmt.Printf("\r%s", status)
			lastBytes = bytes
		case <-ctx.Done():
			fmt.Printf("\n")
			return
		}
	}
}

// Bytes formats a byte count for humans.
func Bytes(n uint64) string {
	switch {
	case n > (1024 * 1024):
		return fmt.Sprintf("%.f MiB", float64(n)/1024/1024)
	case n > 1024:
		return fmt.Sprintf("%.f KiB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
