package ghostfat_test

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/antonok-edm/stm32-usb/flash"
	"github.com/antonok-edm/stm32-usb/ghostfat"
	"github.com/antonok-edm/stm32-usb/uf2"
)

const (
	flashStart = uint32(0x08010000)
	flashEnd   = uint32(0x08011000) // 4 KiB window, 16 transfer blocks
	pageSize   = uint32(1024)
)

func newTestVolume(t *testing.T, opts ...ghostfat.Option) (*flash.Mem, *ghostfat.GhostFat) {
	t.Helper()
	dev := flash.NewMem(flashStart, flashEnd, pageSize)
	gf, err := ghostfat.New(dev, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return dev, gf
}

func readBlock(t *testing.T, gf *ghostfat.GhostFat, lba uint32) []byte {
	t.Helper()
	block := make([]byte, ghostfat.BlockSize)
	if err := gf.ReadBlock(lba, block); err != nil {
		t.Fatal(err)
	}
	return block
}

// rawDirEntry mirrors the on-disk 32-byte directory entry layout so
// tests decode root-directory sectors independently of the package
// internals.
type rawDirEntry struct {
	Name             [11]byte
	Attrs            uint8
	Reserved         uint8
	CreateTimeFine   uint8
	CreateTime       uint16
	CreateDate       uint16
	LastAccessDate   uint16
	HighStartCluster uint16
	UpdateTime       uint16
	UpdateDate       uint16
	StartCluster     uint16
	Size             uint32
}

func parseDirEntries(t *testing.T, sector []byte) []rawDirEntry {
	t.Helper()
	entries := make([]rawDirEntry, len(sector)/32)
	if err := binary.Read(bytes.NewReader(sector), binary.LittleEndian, &entries); err != nil {
		t.Fatal(err)
	}
	return entries
}

func name11(s string) (n [11]byte) {
	for i := range n {
		n[i] = ' '
	}
	copy(n[:], s)
	return n
}

func TestBootSector(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t)
	block := readBlock(t, gf, 0)

	var got ghostfat.BootSector
	if err := binary.Read(bytes.NewReader(block), binary.LittleEndian, &got); err != nil {
		t.Fatal(err)
	}

	want := ghostfat.BootSector{
		JumpInstruction:      [3]byte{0xEB, 0x3C, 0x90},
		OEMInfo:              [8]byte{'U', 'F', '2', ' ', 'U', 'F', '2', ' '},
		SectorSize:           512,
		SectorsPerCluster:    1,
		ReservedSectors:      1,
		FATCopies:            2,
		RootDirectoryEntries: 64,
		TotalSectors16:       7998,
		MediaDescriptor:      0xF8,
		SectorsPerFAT:        32,
		SectorsPerTrack:      1,
		Heads:                1,
		TotalSectors32:       7999,
		ExtendedBootSig:      0x29,
		VolumeSerialNumber:   0x00420042,
		VolumeLabel:          name11("BLUEPILL"),
		FilesystemIdentifier: [8]byte{'F', 'A', 'T', '1', '6', ' ', ' ', ' '},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected boot sector: diff (-want +got):\n%s", diff)
	}

	if block[510] != 0x55 || block[511] != 0xAA {
		t.Fatalf("boot signature = %02X %02X, want 55 AA", block[510], block[511])
	}
	for i := 62; i < 510; i++ {
		if block[i] != 0 {
			t.Fatalf("byte %d of the boot sector is 0x%02X, want 0", i, block[i])
		}
	}
}

func TestReadBlockIsPure(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t)
	geo := ghostfat.NewGeometry(8000)

	for _, lba := range []uint32{0, 1, geo.FAT1Start, geo.RootDirStart, geo.ClusterStart, geo.ClusterStart + 3, gf.MaxLBA()} {
		first := readBlock(t, gf, lba)
		second := readBlock(t, gf, lba)
		if len(first) != ghostfat.BlockSize {
			t.Fatalf("lba 0x%X: got %d bytes", lba, len(first))
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("lba 0x%X: repeated reads differ", lba)
		}
	}
}

func TestReadBlockOutsideRegions(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t)
	geo := ghostfat.NewGeometry(8000)
	zero := make([]byte, ghostfat.BlockSize)

	// Allocated clusters end well before the last LBA; everything in
	// between, and anything past MaxLBA, reads as zeros.
	for _, lba := range []uint32{geo.ClusterStart + 2 + 16, gf.MaxLBA(), gf.MaxLBA() + 1, gf.MaxLBA() + 1000} {
		if got := readBlock(t, gf, lba); !bytes.Equal(got, zero) {
			t.Fatalf("lba 0x%X is not zero-filled", lba)
		}
	}
}

func TestReadBlockWrongSize(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t)
	if err := gf.ReadBlock(0, make([]byte, 128)); err == nil {
		t.Fatal("ReadBlock accepted a non-512-byte buffer")
	}
}

func TestFATChains(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t)
	geo := ghostfat.NewGeometry(8000)

	fat0 := readBlock(t, gf, geo.FAT0Start)
	entry := func(n int) uint16 {
		return binary.LittleEndian.Uint16(fat0[2*n:])
	}

	if got := entry(0); got != 0xFFF8 {
		t.Errorf("FAT[0] = 0x%04X, want 0xFFF8 (media marker)", got)
	}
	if got := entry(1); got != 0xFFFF {
		t.Errorf("FAT[1] = 0x%04X, want 0xFFFF", got)
	}
	// The two static files occupy one cluster each.
	for n := 2; n <= 3; n++ {
		if got := entry(n); got != 0xFFFF {
			t.Errorf("FAT[%d] = 0x%04X, want end-of-chain", n, got)
		}
	}
	// The 4 KiB flash window expands to 16 transfer blocks, so the
	// firmware chain runs from cluster 4 to 19.
	for n := 4; n < 19; n++ {
		if got, want := entry(n), uint16(n+1); got != want {
			t.Errorf("FAT[%d] = 0x%04X, want 0x%04X", n, got, want)
		}
	}
	if got := entry(19); got != 0xFFFF {
		t.Errorf("FAT[19] = 0x%04X, want end-of-chain", got)
	}
	for n := 20; n < 256; n++ {
		if got := entry(n); got != 0 {
			t.Fatalf("FAT[%d] = 0x%04X, want unallocated", n, got)
		}
	}

	// The second FAT copy is identical, later FAT sectors are empty.
	if fat1 := readBlock(t, gf, geo.FAT1Start); !bytes.Equal(fat0, fat1) {
		t.Error("FAT copies differ")
	}
	if got := readBlock(t, gf, geo.FAT0Start+1); !bytes.Equal(got, make([]byte, ghostfat.BlockSize)) {
		t.Error("FAT sector 1 is not empty")
	}
}

func TestRootDirectory(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t)
	geo := ghostfat.NewGeometry(8000)

	entries := parseDirEntries(t, readBlock(t, gf, geo.RootDirStart))

	want := []rawDirEntry{
		{Name: name11("BLUEPILL"), Attrs: 0x28},
		{Name: name11("INFO_UF2TXT"), StartCluster: 2, Size: 255},
		{Name: name11("INDEX   HTM"), StartCluster: 3, Size: 255},
		{Name: name11("CURRENT UF2"), StartCluster: 4, Size: 2 * (flashEnd - flashStart)},
	}
	if diff := cmp.Diff(want, entries[:4]); diff != "" {
		t.Fatalf("unexpected directory entries: diff (-want +got):\n%s", diff)
	}

	var empty rawDirEntry
	for i, e := range entries[4:] {
		if e != empty {
			t.Fatalf("directory slot %d is not empty: %+v", 4+i, e)
		}
	}

	// Remaining root directory sectors hold no entries.
	zero := make([]byte, ghostfat.BlockSize)
	for s := uint32(1); s < 4; s++ {
		if got := readBlock(t, gf, geo.RootDirStart+s); !bytes.Equal(got, zero) {
			t.Fatalf("root directory sector %d is not empty", s)
		}
	}
}

func TestDirectoryTimestamps(t *testing.T) {
	t.Parallel()

	mod := time.Date(2017, 9, 6, 8, 13, 28, 0, time.UTC)
	_, gf := newTestVolume(t, ghostfat.WithModTime(mod))
	geo := ghostfat.NewGeometry(8000)

	entries := parseDirEntries(t, readBlock(t, gf, geo.RootDirStart))
	e := entries[1]
	wantDate := uint16(2017-1980)<<9 | 9<<5 | 6
	wantTime := uint16(8)<<11 | 13<<5 | 28/2
	if e.CreateDate != wantDate || e.UpdateDate != wantDate || e.LastAccessDate != wantDate {
		t.Errorf("dates = %04X/%04X/%04X, want 0x%04X", e.CreateDate, e.UpdateDate, e.LastAccessDate, wantDate)
	}
	if e.CreateTime != wantTime || e.UpdateTime != wantTime {
		t.Errorf("times = 0x%04X/0x%04X, want 0x%04X", e.CreateTime, e.UpdateTime, wantTime)
	}
}

func TestStaticFileContent(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t)
	geo := ghostfat.NewGeometry(8000)

	block := readBlock(t, gf, geo.ClusterStart)
	const info = "UF2 Bootloader 1.2.3\r\nModel: BluePill\r\nBoard-ID: xyz_123\r\n"
	if got := string(block[:len(info)]); got != info {
		t.Fatalf("INFO_UF2.TXT starts %q, want %q", got, info)
	}
	// Static content is space-padded to its fixed 255-byte slot, the
	// rest of the sector is zero.
	for i := len(info); i < 255; i++ {
		if block[i] != ' ' {
			t.Fatalf("byte %d = 0x%02X, want space padding", i, block[i])
		}
	}
	for i := 255; i < ghostfat.BlockSize; i++ {
		if block[i] != 0 {
			t.Fatalf("byte %d = 0x%02X, want 0", i, block[i])
		}
	}

	if block := readBlock(t, gf, geo.ClusterStart+1); !bytes.HasPrefix(block, []byte("<!doctype html>")) {
		t.Fatal("INDEX.HTM content missing")
	}
}

func TestFirmwareRead(t *testing.T) {
	t.Parallel()

	dev, gf := newTestVolume(t)
	geo := ghostfat.NewGeometry(8000)

	pattern := make([]byte, 256)
	for i := range pattern {
		pattern[i] = byte(i ^ 0x5A)
	}
	if err := flash.WriteBytes(dev, flashStart+256, pattern); err != nil {
		t.Fatal(err)
	}

	// Cluster 4 is the first firmware cluster; block 1 covers flash
	// bytes 256..511.
	b, err := uf2.Parse(readBlock(t, gf, geo.ClusterStart+3))
	if err != nil {
		t.Fatal(err)
	}
	if b.TargetAddr != flashStart+256 || b.BlockNo != 1 || b.NumBlocks != 16 || b.PayloadSize != 256 {
		t.Fatalf("unexpected header: addr=0x%X block=%d/%d payload=%d",
			b.TargetAddr, b.BlockNo, b.NumBlocks, b.PayloadSize)
	}
	if diff := cmp.Diff(pattern, b.Payload()); diff != "" {
		t.Fatalf("unexpected payload: diff (-want +got):\n%s", diff)
	}

	// An untouched chunk reads back as erased flash.
	b, err = uf2.Parse(readBlock(t, gf, geo.ClusterStart+4))
	if err != nil {
		t.Fatal(err)
	}
	if b.BlockNo != 2 || !bytes.Equal(b.Payload(), bytes.Repeat([]byte{0xFF}, 256)) {
		t.Fatal("unexpected content for an untouched chunk")
	}
}

func TestFirmwareRegion(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t)
	geo := ghostfat.NewGeometry(8000)

	first, last := gf.FirmwareRegion()
	if want := geo.ClusterStart + 2; first != want {
		t.Errorf("first = 0x%X, want 0x%X", first, want)
	}
	if want := geo.ClusterStart + 2 + 15; last != want {
		t.Errorf("last = 0x%X, want 0x%X", last, want)
	}
}

func packBlock(t *testing.T, b *uf2.Block) []byte {
	t.Helper()
	sector := make([]byte, uf2.BlockSize)
	if err := b.Pack(sector); err != nil {
		t.Fatal(err)
	}
	return sector
}

func windowSnapshot(t *testing.T, dev *flash.Mem) []byte {
	t.Helper()
	start, end := dev.AddressRange()
	snap := make([]byte, end-start)
	if err := dev.ReadBytes(start, snap); err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestWriteBlockRoundTrip(t *testing.T) {
	t.Parallel()

	dev, gf := newTestVolume(t)
	first, _ := gf.FirmwareRegion()

	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(255 - i)
	}
	b := &uf2.Block{
		TargetAddr:  flashStart + 512,
		PayloadSize: 256,
		BlockNo:     2,
		NumBlocks:   16,
	}
	copy(b.Data[:], payload)

	// The host may scribble the block at any sector of the
	// pseudo-file; the target address inside the block is what counts.
	if err := gf.WriteBlock(first, packBlock(t, b)); err != nil {
		t.Fatal(err)
	}

	got := make([]byte, 256)
	if err := dev.ReadBytes(flashStart+512, got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Fatalf("flash content: diff (-want +got):\n%s", diff)
	}

	// Reading the matching sector back yields the same payload.
	rb, err := uf2.Parse(readBlock(t, gf, first+2))
	if err != nil {
		t.Fatal(err)
	}
	if rb.TargetAddr != flashStart+512 || !bytes.Equal(rb.Payload(), payload) {
		t.Fatal("read-back block does not match the write")
	}
	if got := gf.DroppedBlocks(); got != 0 {
		t.Fatalf("DroppedBlocks = %d, want 0", got)
	}
}

func TestWriteBlockIgnoresNonProtocol(t *testing.T) {
	t.Parallel()

	dev, gf := newTestVolume(t)
	first, _ := gf.FirmwareRegion()
	before := windowSnapshot(t, dev)

	corrupted := packBlock(t, &uf2.Block{TargetAddr: flashStart, PayloadSize: 256})
	corrupted[0] ^= 0xFF

	if err := gf.WriteBlock(first, corrupted); err != nil {
		t.Fatalf("corrupted magic surfaced an error: %v", err)
	}
	if err := gf.WriteBlock(first+1, make([]byte, 512)); err != nil {
		t.Fatalf("filler sector surfaced an error: %v", err)
	}
	if err := gf.WriteBlock(first+2, make([]byte, 64)); err != nil {
		t.Fatalf("short sector surfaced an error: %v", err)
	}

	if diff := cmp.Diff(before, windowSnapshot(t, dev)); diff != "" {
		t.Fatalf("flash changed: diff (-want +got):\n%s", diff)
	}
	if got := gf.DroppedBlocks(); got != 3 {
		t.Fatalf("DroppedBlocks = %d, want 3", got)
	}
}

func TestWriteBlockOutsideFirmwareFile(t *testing.T) {
	t.Parallel()

	dev, gf := newTestVolume(t)
	geo := ghostfat.NewGeometry(8000)
	before := windowSnapshot(t, dev)

	valid := packBlock(t, &uf2.Block{TargetAddr: flashStart, PayloadSize: 256})
	// Writes everywhere but the pseudo-file are plain no-ops: not even
	// counted as drops.
	for _, lba := range []uint32{0, geo.FAT0Start, geo.RootDirStart, geo.ClusterStart, geo.ClusterStart + 1} {
		if err := gf.WriteBlock(lba, valid); err != nil {
			t.Fatalf("lba 0x%X: %v", lba, err)
		}
	}

	if diff := cmp.Diff(before, windowSnapshot(t, dev)); diff != "" {
		t.Fatalf("flash changed: diff (-want +got):\n%s", diff)
	}
	if got := gf.DroppedBlocks(); got != 0 {
		t.Fatalf("DroppedBlocks = %d, want 0", got)
	}
}

func TestWriteBlockChecks(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name  string
		opts  []ghostfat.Option
		block *uf2.Block
		drop  bool
	}{
		{
			name:  "target below window",
			block: &uf2.Block{TargetAddr: flashStart - 256, PayloadSize: 256},
			drop:  true,
		},
		{
			name:  "target above window",
			block: &uf2.Block{TargetAddr: flashEnd, PayloadSize: 256},
			drop:  true,
		},
		{
			name:  "not main flash",
			block: &uf2.Block{Flags: uf2.FlagNotMainFlash, TargetAddr: flashStart, PayloadSize: 256},
			drop:  true,
		},
		{
			name:  "family filter rejects untagged",
			opts:  []ghostfat.Option{ghostfat.WithFamily(uf2.FamilySTM32F1)},
			block: &uf2.Block{TargetAddr: flashStart, PayloadSize: 256},
			drop:  true,
		},
		{
			name: "family filter accepts tagged",
			opts: []ghostfat.Option{ghostfat.WithFamily(uf2.FamilySTM32F1)},
			block: &uf2.Block{
				Flags:       uf2.FlagFamilyIDPresent,
				FamilyID:    uf2.FamilySTM32F1,
				TargetAddr:  flashStart,
				PayloadSize: 256,
			},
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dev, gf := newTestVolume(t, tt.opts...)
			first, _ := gf.FirmwareRegion()
			for i := range tt.block.Data[:tt.block.PayloadSize] {
				tt.block.Data[i] = 0xA5
			}

			if err := gf.WriteBlock(first, packBlock(t, tt.block)); err != nil {
				t.Fatal(err)
			}

			wantDropped := uint64(0)
			if tt.drop {
				wantDropped = 1
			}
			if got := gf.DroppedBlocks(); got != wantDropped {
				t.Fatalf("DroppedBlocks = %d, want %d", got, wantDropped)
			}
			if !tt.drop {
				got := make([]byte, 256)
				if err := dev.ReadBytes(tt.block.TargetAddr, got); err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(got, bytes.Repeat([]byte{0xA5}, 256)) {
					t.Fatal("accepted block was not programmed")
				}
			}
		})
	}
}

func TestVolumeOptions(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t,
		ghostfat.WithVolumeLabel("TESTVOL"),
		ghostfat.WithSerialNumber(0xDEADBEEF),
		ghostfat.WithTotalBlocks(512),
	)

	block := readBlock(t, gf, 0)
	var boot ghostfat.BootSector
	if err := binary.Read(bytes.NewReader(block), binary.LittleEndian, &boot); err != nil {
		t.Fatal(err)
	}
	if boot.VolumeLabel != name11("TESTVOL") {
		t.Errorf("label = %q", boot.VolumeLabel)
	}
	if boot.VolumeSerialNumber != 0xDEADBEEF {
		t.Errorf("serial = 0x%X", boot.VolumeSerialNumber)
	}
	if got, want := gf.MaxLBA(), uint32(511); got != want {
		t.Errorf("MaxLBA = %d, want %d", got, want)
	}

	geo := ghostfat.NewGeometry(512)
	entries := parseDirEntries(t, readBlock(t, gf, geo.RootDirStart))
	if entries[0].Name != name11("TESTVOL") {
		t.Errorf("volume label entry = %q", entries[0].Name)
	}
}

func TestNewRejectsBadCatalogs(t *testing.T) {
	t.Parallel()

	dev := flash.NewMem(flashStart, flashEnd, pageSize)

	for _, tt := range []struct {
		name string
		opts []ghostfat.Option
	}{
		{"empty catalog", []ghostfat.Option{ghostfat.WithFiles()}},
		{"no firmware file", []ghostfat.Option{ghostfat.WithFiles(
			ghostfat.NewStaticFile("A       TXT", "a"),
		)}},
		{"two firmware files", []ghostfat.Option{ghostfat.WithFiles(
			ghostfat.NewFirmwareFile("A       UF2"),
			ghostfat.NewFirmwareFile("B       UF2"),
		)}},
		{"volume too small", []ghostfat.Option{ghostfat.WithTotalBlocks(16)}},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ghostfat.New(dev, tt.opts...); err == nil {
				t.Fatal("New accepted an invalid configuration")
			}
		})
	}
}

func TestWriteImage(t *testing.T) {
	t.Parallel()

	_, gf := newTestVolume(t, ghostfat.WithTotalBlocks(512))

	var buf bytes.Buffer
	if err := gf.WriteImage(&buf); err != nil {
		t.Fatal(err)
	}
	img := buf.Bytes()
	if len(img) != 512*ghostfat.BlockSize {
		t.Fatalf("image is %d bytes, want %d", len(img), 512*ghostfat.BlockSize)
	}
	if img[510] != 0x55 || img[511] != 0xAA {
		t.Fatal("image does not start with a boot sector")
	}
}
