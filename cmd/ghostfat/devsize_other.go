//go:build !linux

package main

import (
	"fmt"
	"os"
)

func deviceSize(f *os.File) (int64, error) {
	return 0, fmt.Errorf("block device capacity detection is only supported on Linux")
}
