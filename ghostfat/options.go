package ghostfat

import (
	"log"
	"time"
)

type config struct {
	totalBlocks uint32
	label       [nameLen]byte
	serial      uint32
	files       []File
	family      uint32
	modTime     time.Time
	logger      *log.Logger
}

func defaultConfig() config {
	cfg := config{
		totalBlocks: 8000,
		serial:      0x00420042,
		files:       DefaultFiles(),
	}
	copy(cfg.label[:], padded("BLUEPILL", nameLen))
	return cfg
}

// Option configures a GhostFat volume.
type Option func(*config)

// WithTotalBlocks sets the number of 512-byte blocks the volume
// advertises. The default is 8000 (just under 4 MiB).
func WithTotalBlocks(n uint32) Option {
	return func(c *config) {
		c.totalBlocks = n
	}
}

// WithVolumeLabel sets the 11-character volume label, space-padded and
// truncated as needed. The default is "BLUEPILL".
func WithVolumeLabel(label string) Option {
	return func(c *config) {
		copy(c.label[:], padded(label, nameLen))
	}
}

// WithSerialNumber sets the volume serial number reported in the boot
// sector.
func WithSerialNumber(serial uint32) Option {
	return func(c *config) {
		c.serial = serial
	}
}

// WithFiles replaces the default catalog. Exactly one entry must be a
// firmware file; New reports an error otherwise.
func WithFiles(files ...File) Option {
	return func(c *config) {
		c.files = files
	}
}

// WithFamily restricts accepted transfer blocks to the given UF2 board
// family, e.g. uf2.FamilySTM32F1. The default 0 accepts every block.
func WithFamily(family uint32) Option {
	return func(c *config) {
		c.family = family
	}
}

// WithModTime stamps directory entries with the given modification
// time. By default the timestamp fields are zero.
func WithModTime(t time.Time) Option {
	return func(c *config) {
		c.modTime = t
	}
}

// WithLogger enables diagnostics about dropped transfer blocks and
// block writes. The volume is silent by default.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
