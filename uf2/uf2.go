// Package uf2 implements the UF2 transfer block format
// (https://github.com/microsoft/uf2), the 512-byte wire record that
// carries firmware payload into and out of the emulated drive.
//
// A UF2 file is a sequence of such blocks; hosts deliver them simply
// by copying the file onto the drive, so every incoming 512-byte
// sector must be treated as a potential block and quietly rejected
// when the magic markers don't match.
package uf2

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MagicStart0 is "UF2\n", the first word of every block.
	MagicStart0 = 0x0A324655
	// MagicStart1 is the second magic word.
	MagicStart1 = 0x9E5D5157
	// MagicEnd is the final word of every block.
	MagicEnd = 0x0AB16F30

	// BlockSize is the fixed on-the-wire size of a block.
	BlockSize = 512
	// DataSize is the capacity of the data area.
	DataSize = 476
	// PayloadSize is the number of firmware bytes conventionally
	// carried per block.
	PayloadSize = 256

	headerSize = 32
)

// Flag bits.
const (
	// FlagNotMainFlash marks a block that should be skipped when
	// writing the device's main flash.
	FlagNotMainFlash = 0x00000001
	// FlagFileContainer marks a block holding part of a file rather
	// than firmware.
	FlagFileContainer = 0x00001000
	// FlagFamilyIDPresent means the FamilyID field holds a board
	// family identifier instead of a file size.
	FlagFamilyIDPresent = 0x00002000
	// FlagMD5Present means the data area ends with an MD5 checksum
	// record.
	FlagMD5Present = 0x00004000
)

// FamilySTM32F1 is the family identifier for STM32F103 boards.
const FamilySTM32F1 = 0x5EE21E5

var (
	// ErrNotUF2 indicates the magic markers don't match; the sector is
	// not a UF2 block.
	ErrNotUF2 = errors.New("uf2: magic markers missing")

	// ErrInsufficientBytes indicates a buffer shorter than the fixed
	// 512-byte block size.
	ErrInsufficientBytes = errors.New("uf2: buffer shorter than a UF2 block")
)

// Block is one 512-byte UF2 transfer block. It exists only for the
// duration of a single decode or encode.
type Block struct {
	Flags       uint32
	TargetAddr  uint32
	PayloadSize uint32
	BlockNo     uint32
	NumBlocks   uint32
	// FamilyID holds the board family when FlagFamilyIDPresent is set,
	// the total file size otherwise.
	FamilyID uint32
	Data     [DataSize]byte
}

// Parse decodes a 512-byte sector as a UF2 block. It returns ErrNotUF2
// when the magic markers are wrong and ErrInsufficientBytes when p is
// too short; callers treat either as "not a protocol block" and drop
// the sector without signalling an error upstream.
func Parse(p []byte) (*Block, error) {
	if len(p) < BlockSize {
		return nil, ErrInsufficientBytes
	}
	if binary.LittleEndian.Uint32(p[0:4]) != MagicStart0 ||
		binary.LittleEndian.Uint32(p[4:8]) != MagicStart1 ||
		binary.LittleEndian.Uint32(p[508:512]) != MagicEnd {
		return nil, ErrNotUF2
	}
	b := &Block{
		Flags:       binary.LittleEndian.Uint32(p[8:12]),
		TargetAddr:  binary.LittleEndian.Uint32(p[12:16]),
		PayloadSize: binary.LittleEndian.Uint32(p[16:20]),
		BlockNo:     binary.LittleEndian.Uint32(p[20:24]),
		NumBlocks:   binary.LittleEndian.Uint32(p[24:28]),
		FamilyID:    binary.LittleEndian.Uint32(p[28:32]),
	}
	if b.PayloadSize > DataSize {
		return nil, fmt.Errorf("uf2: payload size %d exceeds data area (%d bytes)", b.PayloadSize, DataSize)
	}
	copy(b.Data[:], p[headerSize:headerSize+DataSize])
	return b, nil
}

// Pack serializes the block into p, which must hold at least 512
// bytes.
func (b *Block) Pack(p []byte) error {
	if len(p) < BlockSize {
		return ErrInsufficientBytes
	}
	binary.LittleEndian.PutUint32(p[0:4], MagicStart0)
	binary.LittleEndian.PutUint32(p[4:8], MagicStart1)
	binary.LittleEndian.PutUint32(p[8:12], b.Flags)
	binary.LittleEndian.PutUint32(p[12:16], b.TargetAddr)
	binary.LittleEndian.PutUint32(p[16:20], b.PayloadSize)
	binary.LittleEndian.PutUint32(p[20:24], b.BlockNo)
	binary.LittleEndian.PutUint32(p[24:28], b.NumBlocks)
	binary.LittleEndian.PutUint32(p[28:32], b.FamilyID)
	copy(p[headerSize:headerSize+DataSize], b.Data[:])
	binary.LittleEndian.PutUint32(p[508:512], MagicEnd)
	return nil
}

// Payload returns the firmware bytes carried by the block.
func (b *Block) Payload() []byte {
	return b.Data[:b.PayloadSize]
}

// FamilyMatches reports whether the block is acceptable for the given
// board family. Family 0 accepts every block; a concrete family
// requires the block to carry a matching identifier.
func (b *Block) FamilyMatches(family uint32) bool {
	if family == 0 {
		return true
	}
	return b.Flags&FlagFamilyIDPresent != 0 && b.FamilyID == family
}
