package ghostfat

// BlockSize is the sector size of the emulated volume. FAT drivers
// overwhelmingly assume 512 and the USB mass-storage layer above
// exchanges blocks of exactly this size.
const BlockSize = 512

const (
	reservedSectors = 1
	rootDirSectors  = 4
	fatCopies       = 2

	rootDirEntries = rootDirSectors * BlockSize / dirEntrySize
)

// Geometry fixes the layout of the volume: boot sector, two FAT
// copies, a four-sector root directory and the cluster data area, laid
// out contiguously in that order. One cluster is one 512-byte sector.
// It is computed once at construction and never mutated.
type Geometry struct {
	// TotalBlocks is the number of addressable 512-byte blocks.
	TotalBlocks uint32

	// SectorsPerFAT is ceil(TotalBlocks*2/512): one 16-bit entry per
	// block, rounded up to whole sectors.
	SectorsPerFAT uint32

	// Region start LBAs.
	FAT0Start    uint32
	FAT1Start    uint32
	RootDirStart uint32
	ClusterStart uint32
}

// NewGeometry computes the region layout for a volume of the given
// total block count.
func NewGeometry(totalBlocks uint32) Geometry {
	sectorsPerFAT := (totalBlocks*2 + BlockSize - 1) / BlockSize
	g := Geometry{
		TotalBlocks:   totalBlocks,
		SectorsPerFAT: sectorsPerFAT,
		FAT0Start:     reservedSectors,
	}
	g.FAT1Start = g.FAT0Start + sectorsPerFAT
	g.RootDirStart = g.FAT1Start + sectorsPerFAT
	g.ClusterStart = g.RootDirStart + rootDirSectors
	return g
}

// MaxLBA returns the highest valid logical block address.
func (g Geometry) MaxLBA() uint32 {
	return g.TotalBlocks - 1
}
