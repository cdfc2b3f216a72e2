package ghostfat

const (
	nameLen          = 11
	staticContentLen = 255
)

// A File is one entry in the fixed catalog the volume exposes. Its
// content is either a static blob fixed at construction or the live
// firmware image read out of flash. The catalog is built once at mount
// time and stays immutable for the process lifetime; its order is the
// directory and cluster-chain order.
type File struct {
	name     [nameLen]byte
	content  []byte
	firmware bool
}

// NewStaticFile returns a catalog entry with fixed content. The name
// must be in packed 8.3 form without the dot, e.g. "INFO_UF2TXT"; it
// is space-padded to 11 bytes and truncated beyond that. Content is
// space-padded to 255 bytes, the fixed static slot size.
func NewStaticFile(name, content string) File {
	f := File{content: padded(content, staticContentLen)}
	copy(f.name[:], padded(name, nameLen))
	return f
}

// NewFirmwareFile returns the catalog entry whose content is the live
// flash image, encoded as UF2 blocks. A catalog must contain exactly
// one.
func NewFirmwareFile(name string) File {
	f := File{firmware: true}
	copy(f.name[:], padded(name, nameLen))
	return f
}

func padded(s string, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	copy(b, s)
	return b
}

// DefaultFiles returns the stock catalog: two informational text files
// and the CURRENT.UF2 firmware pseudo-file.
func DefaultFiles() []File {
	return []File{
		NewStaticFile("INFO_UF2TXT", "UF2 Bootloader 1.2.3\r\nModel: BluePill\r\nBoard-ID: xyz_123\r\n"),
		NewStaticFile("INDEX   HTM", "<!doctype html>\n<html><body><script>\nlocation.replace(INDEX_URL);\n</script></body></html>\n"),
		NewFirmwareFile("CURRENT UF2"),
	}
}
