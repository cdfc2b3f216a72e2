package ghostfat

import (
	"encoding/binary"
	"fmt"
	"log"
	"time"

	"github.com/antonok-edm/stm32-usb/flash"
	"github.com/antonok-edm/stm32-usb/uf2"
)

const (
	// firmwareChunk is the number of flash bytes carried per transfer
	// block, so every 512-byte sector of the firmware pseudo-file
	// expands 256 flash bytes into one UF2 block.
	firmwareChunk = uf2.PayloadSize

	endOfChain = 0xFFFF
)

// BlockDevice is the boundary the USB mass-storage layer drives.
// *GhostFat satisfies it. Calls must be serialized by the caller;
// concurrent calls into one volume are not supported.
type BlockDevice interface {
	// ReadBlock fills block with the content of the given sector.
	// Addresses past MaxLBA yield zero-filled content; the only error
	// is a block buffer that isn't exactly 512 bytes.
	ReadBlock(lba uint32, block []byte) error

	// WriteBlock accepts a sector written by the host. Writes outside
	// the firmware pseudo-file and sectors that don't parse as
	// transfer blocks are silently ignored; flash faults while
	// programming an accepted block propagate.
	WriteBlock(lba uint32, block []byte) error

	// MaxLBA returns the highest valid logical block address.
	MaxLBA() uint32
}

// extent is a file's contiguous cluster allocation, inclusive on both
// ends.
type extent struct {
	first, last uint32
}

// GhostFat synthesizes every sector of a FAT16 volume on demand. The
// only mutable state behind it is the flash device itself; repeated
// reads without an intervening write are byte-identical.
type GhostFat struct {
	geo   Geometry
	boot  BootSector
	files []File
	exts  []extent
	fwIdx int

	dev         flash.Device
	windowStart uint32
	windowEnd   uint32

	family  uint32
	modTime time.Time
	logger  *log.Logger
	dropped uint64
}

var _ BlockDevice = (*GhostFat)(nil)

// New builds a volume over the given flash device. The firmware
// pseudo-file spans the device's whole address window.
func New(dev flash.Device, opts ...Option) (*GhostFat, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	windowStart, windowEnd := dev.AddressRange()
	if windowEnd <= windowStart || (windowEnd-windowStart)%firmwareChunk != 0 {
		return nil, fmt.Errorf("ghostfat: flash window [0x%X, 0x%X) is not a positive multiple of %d bytes",
			windowStart, windowEnd, firmwareChunk)
	}

	if len(cfg.files) == 0 {
		return nil, fmt.Errorf("ghostfat: catalog is empty")
	}
	if 1+len(cfg.files) > rootDirEntries {
		return nil, fmt.Errorf("ghostfat: catalog of %d files overflows the %d-entry root directory",
			len(cfg.files), rootDirEntries)
	}

	// Allocate contiguous cluster extents in catalog order, starting
	// at cluster 2.
	exts := make([]extent, len(cfg.files))
	fwIdx := -1
	cluster := uint32(2)
	for i, f := range cfg.files {
		n := uint32(1)
		if f.firmware {
			if fwIdx >= 0 {
				return nil, fmt.Errorf("ghostfat: catalog has more than one firmware file")
			}
			fwIdx = i
			n = (windowEnd - windowStart) / firmwareChunk
		} else if len(f.content) > BlockSize {
			n = (uint32(len(f.content)) + BlockSize - 1) / BlockSize
		}
		exts[i] = extent{first: cluster, last: cluster + n - 1}
		cluster += n
	}
	if fwIdx < 0 {
		return nil, fmt.Errorf("ghostfat: catalog has no firmware file")
	}

	geo := NewGeometry(cfg.totalBlocks)
	if cluster-1 >= 0xFFF0 || geo.ClusterStart+(cluster-2) > geo.TotalBlocks {
		return nil, fmt.Errorf("ghostfat: %d-block volume too small for catalog ending at cluster %d",
			cfg.totalBlocks, cluster-1)
	}

	return &GhostFat{
		geo:         geo,
		boot:        newBootSector(geo, cfg.label, cfg.serial),
		files:       cfg.files,
		exts:        exts,
		fwIdx:       fwIdx,
		dev:         dev,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		family:      cfg.family,
		modTime:     cfg.modTime,
		logger:      cfg.logger,
	}, nil
}

// MaxLBA returns the highest valid logical block address.
func (g *GhostFat) MaxLBA() uint32 {
	return g.geo.MaxLBA()
}

// DroppedBlocks returns the number of sectors written into the
// firmware area that were discarded because they didn't carry an
// acceptable transfer block. Hosts legitimately write non-protocol
// filler sectors, so a non-zero count is not by itself a failure.
func (g *GhostFat) DroppedBlocks() uint64 {
	return g.dropped
}

// FirmwareRegion returns the inclusive LBA range backing the firmware
// pseudo-file, the only region where writes have any effect.
func (g *GhostFat) FirmwareRegion() (first, last uint32) {
	e := g.exts[g.fwIdx]
	return g.geo.ClusterStart + e.first - 2, g.geo.ClusterStart + e.last - 2
}

// ReadBlock synthesizes the sector at lba into block. It is a pure
// function of the address, the catalog and the current flash content.
func (g *GhostFat) ReadBlock(lba uint32, block []byte) error {
	if len(block) != BlockSize {
		return fmt.Errorf("ghostfat: block buffer must be %d bytes, got %d", BlockSize, len(block))
	}
	for i := range block {
		block[i] = 0
	}

	switch {
	case lba == 0:
		// Pack cannot fail into a full sector.
		g.boot.Pack(block)
		block[510] = 0x55
		block[511] = 0xAA
	case lba < g.geo.RootDirStart:
		g.readFAT(lba, block)
	case lba < g.geo.ClusterStart:
		g.readRootDir(lba-g.geo.RootDirStart, block)
	case lba <= g.geo.MaxLBA():
		g.readCluster(lba-g.geo.ClusterStart, block)
	}
	return nil
}

// readFAT fills one sector of the allocation table. Both FAT copies
// are identical.
func (g *GhostFat) readFAT(lba uint32, block []byte) {
	sector := lba - g.geo.FAT0Start
	if sector >= g.geo.SectorsPerFAT {
		sector -= g.geo.SectorsPerFAT
	}

	base := sector * (BlockSize / 2)
	for i := uint32(0); i < BlockSize/2; i++ {
		if v := g.fatEntry(base + i); v != 0 {
			binary.LittleEndian.PutUint16(block[2*i:], v)
		}
	}
}

// fatEntry computes the allocation-table entry for cluster n: the two
// reserved marker entries, then one contiguous chain per catalog file
// linking each cluster to the next and terminating with the
// end-of-chain marker. Unallocated clusters are zero.
func (g *GhostFat) fatEntry(n uint32) uint16 {
	switch n {
	case 0:
		return 0xFF00 | uint16(g.boot.MediaDescriptor)
	case 1:
		return 0xFFFF
	}
	for _, e := range g.exts {
		if n >= e.first && n <= e.last {
			if n == e.last {
				return endOfChain
			}
			return uint16(n + 1)
		}
	}
	return 0
}

// readRootDir fills one sector of the root directory: the volume-label
// entry first, then one entry per catalog file in order. Unused slots
// stay zeroed.
func (g *GhostFat) readRootDir(sector uint32, block []byte) {
	const perSector = BlockSize / dirEntrySize
	idx := int(sector) * perSector
	for slot := 0; slot < perSector && idx <= len(g.files); slot, idx = slot+1, idx+1 {
		var de dirEntry
		if idx == 0 {
			de.Name = g.boot.VolumeLabel
			de.Attrs = attrVolumeLabel | attrArchive
		} else {
			f := g.files[idx-1]
			de.Name = f.name
			de.StartCluster = uint16(g.exts[idx-1].first)
			if f.firmware {
				de.Size = (g.windowEnd - g.windowStart) * (BlockSize / firmwareChunk)
			} else {
				de.Size = uint32(len(f.content))
			}
			de.setTimes(g.modTime)
		}
		de.pack(block[slot*dirEntrySize:])
	}
}

// readCluster fills one sector of the data region.
func (g *GhostFat) readCluster(index uint32, block []byte) {
	n := index + 2
	for i, e := range g.exts {
		if n < e.first || n > e.last {
			continue
		}
		if f := g.files[i]; !f.firmware {
			if off := (n - e.first) * BlockSize; off < uint32(len(f.content)) {
				copy(block, f.content[off:])
			}
		} else {
			g.readFirmware(n-e.first, block)
		}
		return
	}
}

// readFirmware synthesizes the transfer block exposing the chunk of
// flash backing sector idx of the firmware file. A chunk that would
// fall outside the flash window leaves the sector all-zero.
func (g *GhostFat) readFirmware(idx uint32, block []byte) {
	addr := g.windowStart + idx*firmwareChunk
	if addr < g.windowStart || addr > g.windowEnd-firmwareChunk {
		return
	}

	b := uf2.Block{
		TargetAddr:  addr,
		PayloadSize: firmwareChunk,
		BlockNo:     idx,
		NumBlocks:   (g.windowEnd - g.windowStart) / firmwareChunk,
	}
	if g.family != 0 {
		b.Flags = uf2.FlagFamilyIDPresent
		b.FamilyID = g.family
	}
	if err := g.dev.ReadBytes(addr, b.Data[:firmwareChunk]); err != nil {
		// Expose a zero sector rather than failing the host's read.
		return
	}
	b.Pack(block)
}

// WriteBlock handles a sector written by the host. Anything outside
// the firmware pseudo-file's cluster range is a no-op; inside it the
// sector is decoded as a transfer block and its payload programmed
// into flash.
func (g *GhostFat) WriteBlock(lba uint32, block []byte) error {
	if lba < g.geo.ClusterStart {
		return nil
	}
	n := lba - g.geo.ClusterStart + 2
	if e := g.exts[g.fwIdx]; n < e.first || n > e.last {
		return nil
	}

	b, err := uf2.Parse(block)
	if err != nil {
		g.drop(lba, "%v", err)
		return nil
	}
	if b.Flags&uf2.FlagNotMainFlash != 0 {
		g.drop(lba, "block %d flagged not-main-flash", b.BlockNo)
		return nil
	}
	if !b.FamilyMatches(g.family) {
		g.drop(lba, "family 0x%X does not match 0x%X", b.FamilyID, g.family)
		return nil
	}
	if b.TargetAddr < g.windowStart || b.TargetAddr > g.windowEnd-b.PayloadSize {
		g.drop(lba, "target 0x%X outside flash window", b.TargetAddr)
		return nil
	}

	if g.logger != nil {
		g.logger.Printf("ghostfat: writing %d bytes at 0x%X (block %d/%d)",
			b.PayloadSize, b.TargetAddr, b.BlockNo+1, b.NumBlocks)
	}
	return flash.WriteBytes(g.dev, b.TargetAddr, b.Payload())
}

func (g *GhostFat) drop(lba uint32, format string, args ...interface{}) {
	g.dropped++
	if g.logger != nil {
		g.logger.Printf("ghostfat: dropping sector 0x%X: %s", lba, fmt.Sprintf(format, args...))
	}
}
