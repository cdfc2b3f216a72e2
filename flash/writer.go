package flash

import "bytes"

// WriteBytes writes p to flash starting at addr, touching the minimum
// set of pages and never corrupting unrelated bytes of a touched page.
//
// Each touched page is read into the device's page buffer, the
// applicable sub-range of p is overlaid, and the buffer is flushed
// back when the next page is needed or at the end of the call. Any
// device fault aborts the whole call; pages flushed before the fault
// are not rolled back, so callers must treat failure as "state
// uncertain, retry the whole transfer".
func WriteBytes(d Device, addr uint32, p []byte) error {
	if len(p) == 0 {
		return nil
	}

	pageSize := d.PageSize()
	start := PageAddress(d, addr)
	end := PageAddress(d, addr+uint32(len(p))-1)

	for page := start; ; page += pageSize {
		if cur, ok := d.CurrentPage(); ok {
			if cur != page {
				if err := FlushPage(d); err != nil {
					return err
				}
				if err := d.ReadPage(page); err != nil {
					return err
				}
			}
		} else if err := d.ReadPage(page); err != nil {
			return err
		}

		buf := d.PageBuffer()
		if page < addr {
			// First page starts before the write: overlay the head of
			// p at the in-page offset.
			offset := addr - page
			count := pageSize - offset
			if count > uint32(len(p)) {
				count = uint32(len(p))
			}
			copy(buf[offset:offset+count], p[:count])
		} else {
			offset := page - addr
			count := uint32(len(p)) - offset
			if count > pageSize {
				count = pageSize
			}
			copy(buf[:count], p[offset:offset+count])
		}

		if page == end {
			break
		}
	}

	return FlushPage(d)
}

// FlushPage commits the staged page back to flash. Nothing happens
// when no page is staged or the buffer matches what is already on
// flash. The page is erased first only when the buffer needs a bit set
// that the current cells hold clear; NOR flash programming can only
// clear bits. The page stays staged afterwards.
func FlushPage(d Device) error {
	page, ok := d.CurrentPage()
	if !ok {
		return nil
	}

	buf := d.PageBuffer()
	cur := make([]byte, len(buf))
	if err := d.ReadBytes(page, cur); err != nil {
		return err
	}
	if bytes.Equal(cur, buf) {
		return nil
	}

	needErase := false
	for i := range buf {
		if cur[i]&buf[i] != buf[i] {
			needErase = true
			break
		}
	}

	if err := d.Unlock(); err != nil {
		return err
	}
	err := commitPage(d, page, needErase)
	if lockErr := d.Lock(); err == nil {
		err = lockErr
	}
	return err
}

func commitPage(d Device, page uint32, erase bool) error {
	if erase {
		if err := d.ErasePage(page); err != nil {
			return err
		}
		BusyWait(d)
		if !d.PageErased(page) {
			return ErrErase
		}
	}
	return d.WritePage()
}
