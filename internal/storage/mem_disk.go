package storage

import (
	"sync"

	"github.com/pkg/errors"
)

// MemDiskManager keeps pages in memory. Allocated pages that were never written
// read back as zeros, the same as a sparse segment file.
type MemDiskManager struct {
	mu    sync.Mutex
	space *spaceMap
	pages map[PageID][]byte
}

func NewMemDiskManager(maxPages int) *MemDiskManager {
	return &MemDiskManager{
		space: newSpaceMap(maxPages),
		pages: make(map[PageID][]byte),
	}
}

func (m *MemDiskManager) AllocatePages(count int) (PageID, error) {
	if count <= 0 {
		return InvalidPageID, ErrInvalidRunSize
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	first, ok := m.space.firstFit(count)
	if !ok {
		return InvalidPageID, errors.Wrapf(ErrOutOfSpace, "allocate %d pages", count)
	}
	m.space.setRange(first, count, true)
	return first, nil
}

func (m *MemDiskManager) DeallocatePages(first PageID, count int) error {
	if count <= 0 {
		return ErrInvalidRunSize
	}
	if !first.Valid() {
		return ErrInvalidPageID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.space.allRange(first, count) {
		return errors.Wrapf(ErrPageNotAllocated, "deallocate pages [%d,%d)", first, int(first)+count)
	}
	m.space.setRange(first, count, false)
	for i := 0; i < count; i++ {
		delete(m.pages, first+PageID(i))
	}
	return nil
}

func (m *MemDiskManager) DeallocatePage(pageID PageID) error {
	return m.DeallocatePages(pageID, 1)
}

func (m *MemDiskManager) ReadPage(pageID PageID, dst *Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkAllocated(pageID); err != nil {
		return err
	}
	buf, ok := m.pages[pageID]
	if !ok {
		dst.Reset()
		return nil
	}
	copy(dst.Data(), buf)
	return nil
}

func (m *MemDiskManager) WritePage(pageID PageID, src *Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkAllocated(pageID); err != nil {
		return err
	}
	buf, ok := m.pages[pageID]
	if !ok {
		buf = make([]byte, PageSize)
		m.pages[pageID] = buf
	}
	copy(buf, src.Data())
	return nil
}

// AllocatedPages returns the number of pages currently allocated.
func (m *MemDiskManager) AllocatedPages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.space.allocated()
}

func (m *MemDiskManager) checkAllocated(pageID PageID) error {
	if !pageID.Valid() {
		return ErrInvalidPageID
	}
	if !m.space.isSet(pageID) {
		return errors.Wrapf(ErrPageNotAllocated, "page %d", pageID)
	}
	return nil
}
