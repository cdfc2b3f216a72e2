// Package ghostfat synthesizes a read/write FAT16 volume on demand
// from a small fixed catalog of virtual files and the live content of
// flash. No filesystem metadata is stored anywhere: every 512-byte
// sector a host asks for is computed from the volume geometry when the
// request arrives, and sectors written into the firmware pseudo-file
// are decoded as UF2 transfer blocks and programmed into flash.
//
// The resulting volume is what a host computer sees when the device
// enumerates as a USB drive: a couple of informational files plus
// CURRENT.UF2, a pseudo-file that always reflects the firmware
// currently in flash and accepts a new image by being overwritten.
package ghostfat
