package ghostfat

import (
	"bytes"
	"encoding/binary"
	"time"
)

const dirEntrySize = 32

// Directory entry attribute bits.
const (
	attrReadOnly    = 0x01
	attrVolumeLabel = 0x08
	attrArchive     = 0x20
)

// dirEntry is the fixed 32-byte FAT directory entry record,
// synthesized per request and never stored.
type dirEntry struct {
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

func (d *dirEntry) pack(p []byte) error {
	if len(p) < dirEntrySize {
		return ErrInsufficientBytes
	}
	buf := bytes.NewBuffer(make([]byte, 0, dirEntrySize))
	binary.Write(buf, binary.LittleEndian, d)
	copy(p, buf.Bytes())
	return nil
}

// setTimes fills the timestamp fields from t, FAT-encoded. The zero
// time leaves them zeroed, which hosts render as "no date".
func (d *dirEntry) setTimes(t time.Time) {
	if t.IsZero() {
		return
	}
	d.CreateTime = fatTime(t)
	d.CreateDate = fatDate(t)
	d.LastAccessDate = d.CreateDate
	d.UpdateTime = d.CreateTime
	d.UpdateDate = d.CreateDate
}

func fatTime(t time.Time) uint16 {
	return uint16(t.Hour())<<11 |
		uint16(t.Minute())<<5 |
		uint16(t.Second()/2)
}

func fatDate(t time.Time) uint16 {
	return uint16(t.Year()-1980)<<9 |
		uint16(t.Month())<<5 |
		uint16(t.Day())
}
