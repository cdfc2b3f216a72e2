// Package flash abstracts the non-volatile memory behind the emulated
// USB drive and provides a page write coalescer which turns arbitrary
// byte-range writes into the minimal sequence of page-aligned
// erase/program cycles.
//
// The hardware binding supplies a Device; tests and host-side tooling
// use the in-memory Mem implementation.
package flash

import "errors"

//go:generate mockgen -source=flash.go -destination=mock_flash.go -package=flash

var (
	// ErrUnsafeErase indicates a request attempted to erase an address
	// that doesn't align with a page boundary and could destroy
	// unrelated data.
	ErrUnsafeErase = errors.New("flash: erase target not aligned to a page boundary")

	// ErrHardware indicates the hardware didn't behave as expected.
	// Unrecoverable.
	ErrHardware = errors.New("flash: hardware error")

	// ErrWrite indicates reading back after programming returned an
	// unexpected value.
	ErrWrite = errors.New("flash: verify after program failed")

	// ErrErase indicates reading back after an erase shows the page is
	// not blank.
	ErrErase = errors.New("flash: verify after erase failed")

	// ErrInvalidAddress indicates an address outside the device's
	// valid window.
	ErrInvalidAddress = errors.New("flash: address out of range")
)

// Device is the contract a flash driver must satisfy. All operations
// are synchronous from the caller's point of view; drivers whose
// hardware completes erases and programs asynchronously report
// completion through OperationPending.
type Device interface {
	// PageSize returns the erase/program granularity in bytes. Must be
	// a power of two.
	PageSize() uint32

	// AddressRange returns the half-open window [start, end) of valid
	// flash addresses.
	AddressRange() (start, end uint32)

	// PageBuffer returns the driver's staging buffer, PageSize bytes
	// long. The buffer holds the page most recently loaded by
	// ReadPage and is what WritePage programs.
	PageBuffer() []byte

	// CurrentPage returns the address of the page staged in the page
	// buffer, or ok == false when nothing has been staged yet.
	CurrentPage() (page uint32, ok bool)

	// Unlock enables erasing and programming.
	Unlock() error

	// Lock disables erasing and programming.
	Lock() error

	// OperationPending reports whether a previously started erase or
	// program operation is still running.
	OperationPending() bool

	// ErasePage erases the page at the given address. Whether an erase
	// is actually necessary is decided at a higher level.
	ErasePage(page uint32) error

	// PageErased reports whether the page at the given address is
	// blank.
	PageErased(page uint32) bool

	// ReadPage loads a whole page into the page buffer and marks it as
	// the current page.
	ReadPage(page uint32) error

	// WritePage programs the page buffer back to the current page. The
	// driver should verify the result and skip words that already hold
	// the desired value to reduce flash aging.
	WritePage() error

	// ReadBytes fills p with flash content starting at addr.
	ReadBytes(addr uint32, p []byte) error
}

// PageAddress rounds addr down to the boundary of the page containing
// it. Panics if the device's page size is not a power of two; that is
// a driver bug, not a runtime condition.
func PageAddress(d Device, addr uint32) uint32 {
	size := d.PageSize()
	if size == 0 || size&(size-1) != 0 {
		panic("flash: page size must be a power of two")
	}
	return addr &^ (size - 1)
}

// BusyWait spins until the device reports no pending operation. There
// is no timeout: a wedged device stalls the volume indefinitely, which
// is accepted for small bounded firmware images.
func BusyWait(d Device) {
	for d.OperationPending() {
	}
}
