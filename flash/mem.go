package flash

// Mem is an in-memory flash device with NOR-style semantics: erasing
// sets a whole page to 0xFF and programming can only clear bits. It is
// used by the tests and by host-side tooling that wants to build
// volume images without hardware attached.
//
// Mem keeps counters of the operations performed so tests can assert
// that the write coalescer touches flash the minimal number of times.
type Mem struct {
	start    uint32
	end      uint32
	pageSize uint32

	cells  []byte
	buf    []byte
	page   uint32
	staged bool
	locked bool

	// Operation counters.
	PageReads int
	Erases    int
	Programs  int
}

// NewMem returns an erased in-memory device covering the half-open
// address window [start, end) with the given page size. The window
// must be page-aligned on both ends.
func NewMem(start, end, pageSize uint32) *Mem {
	if pageSize == 0 || pageSize&(pageSize-1) != 0 {
		panic("flash: page size must be a power of two")
	}
	if start%pageSize != 0 || end%pageSize != 0 || end <= start {
		panic("flash: address window must be page-aligned")
	}
	cells := make([]byte, end-start)
	for i := range cells {
		cells[i] = 0xFF
	}
	return &Mem{
		start:    start,
		end:      end,
		pageSize: pageSize,
		cells:    cells,
		buf:      make([]byte, pageSize),
		locked:   true,
	}
}

func (m *Mem) PageSize() uint32               { return m.pageSize }
func (m *Mem) AddressRange() (uint32, uint32) { return m.start, m.end }
func (m *Mem) PageBuffer() []byte             { return m.buf }
func (m *Mem) CurrentPage() (uint32, bool)    { return m.page, m.staged }
func (m *Mem) OperationPending() bool         { return false }

func (m *Mem) Unlock() error {
	m.locked = false
	return nil
}

func (m *Mem) Lock() error {
	m.locked = true
	return nil
}

func (m *Mem) ErasePage(page uint32) error {
	if page%m.pageSize != 0 {
		return ErrUnsafeErase
	}
	if page < m.start || page+m.pageSize > m.end {
		return ErrInvalidAddress
	}
	if m.locked {
		// Real hardware raises a protection fault here.
		return ErrHardware
	}
	m.Erases++
	off := page - m.start
	for i := uint32(0); i < m.pageSize; i++ {
		m.cells[off+i] = 0xFF
	}
	return nil
}

func (m *Mem) PageErased(page uint32) bool {
	if page < m.start || page+m.pageSize > m.end {
		return false
	}
	off := page - m.start
	for i := uint32(0); i < m.pageSize; i++ {
		if m.cells[off+i] != 0xFF {
			return false
		}
	}
	return true
}

func (m *Mem) ReadPage(page uint32) error {
	if page%m.pageSize != 0 {
		return ErrInvalidAddress
	}
	if page < m.start || page+m.pageSize > m.end {
		return ErrInvalidAddress
	}
	m.PageReads++
	copy(m.buf, m.cells[page-m.start:])
	m.page = page
	m.staged = true
	return nil
}

func (m *Mem) WritePage() error {
	if !m.staged {
		return ErrHardware
	}
	if m.locked {
		return ErrHardware
	}
	m.Programs++
	off := m.page - m.start
	for i := uint32(0); i < m.pageSize; i++ {
		// Programming can only clear bits.
		m.cells[off+i] &= m.buf[i]
	}
	for i := uint32(0); i < m.pageSize; i++ {
		if m.cells[off+i] != m.buf[i] {
			return ErrWrite
		}
	}
	return nil
}

func (m *Mem) ReadBytes(addr uint32, p []byte) error {
	if addr < m.start || addr+uint32(len(p)) > m.end {
		return ErrInvalidAddress
	}
	copy(p, m.cells[addr-m.start:])
	return nil
}
