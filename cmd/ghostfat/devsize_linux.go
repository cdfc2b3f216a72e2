//go:build linux

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// deviceSize returns the capacity of a block device in bytes.
func deviceSize(f *os.File) (int64, error) {
	size, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKGETSIZE64)
	if err != nil {
		return 0, err
	}
	return int64(size), nil
}
