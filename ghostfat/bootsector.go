package ghostfat

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// ErrInsufficientBytes indicates a destination buffer shorter than the
// record being packed into it. Seeing it means a programming error;
// sectors handed in by the block-device layer are always 512 bytes.
var ErrInsufficientBytes = errors.New("ghostfat: buffer shorter than record")

// bootSectorSize is the packed size of BootSector, the portion of
// sector 0 up to (not including) the boot code area.
const bootSectorSize = 62

// BootSector is the FAT16 BIOS parameter block occupying the start of
// sector 0. Field order and widths match the on-disk layout so the
// whole struct serializes directly with encoding/binary. Built once at
// construction, read-only thereafter.
type BootSector struct {
	JumpInstruction      [3]byte
	OEMInfo              [8]byte
	SectorSize           uint16
	SectorsPerCluster    uint8
	ReservedSectors      uint16
	FATCopies            uint8
	RootDirectoryEntries uint16
	TotalSectors16       uint16
	MediaDescriptor      uint8
	SectorsPerFAT        uint16
	SectorsPerTrack      uint16
	Heads                uint16
	HiddenSectors        uint32
	TotalSectors32       uint32
	PhysicalDriveNum     uint8
	Reserved             uint8
	ExtendedBootSig      uint8
	VolumeSerialNumber   uint32
	VolumeLabel          [11]byte
	FilesystemIdentifier [8]byte
}

// Pack writes the boot sector record into p.
func (b *BootSector) Pack(p []byte) error {
	if len(p) < bootSectorSize {
		return ErrInsufficientBytes
	}
	buf := bytes.NewBuffer(make([]byte, 0, bootSectorSize))
	// Writing into a bytes.Buffer never fails.
	binary.Write(buf, binary.LittleEndian, b)
	copy(p, buf.Bytes())
	return nil
}

func newBootSector(g Geometry, label [11]byte, serial uint32) BootSector {
	b := BootSector{
		JumpInstruction:      [3]byte{0xEB, 0x3C, 0x90},
		SectorSize:           BlockSize,
		SectorsPerCluster:    1,
		ReservedSectors:      reservedSectors,
		FATCopies:            fatCopies,
		RootDirectoryEntries: rootDirEntries,
		MediaDescriptor:      0xF8,
		SectorsPerFAT:        uint16(g.SectorsPerFAT),
		SectorsPerTrack:      1,
		Heads:                1,
		TotalSectors32:       g.TotalBlocks - 1,
		ExtendedBootSig:      0x29,
		VolumeSerialNumber:   serial,
		VolumeLabel:          label,
	}
	// Hosts read the 32-bit count when the 16-bit field is zero.
	if g.TotalBlocks-2 <= 0xFFFF {
		b.TotalSectors16 = uint16(g.TotalBlocks - 2)
	}
	for i := range b.OEMInfo {
		b.OEMInfo[i] = ' '
	}
	copy(b.OEMInfo[:], "UF2 UF2")
	for i := range b.FilesystemIdentifier {
		b.FilesystemIdentifier[i] = ' '
	}
	copy(b.FilesystemIdentifier[:], "FAT16")
	return b
}
