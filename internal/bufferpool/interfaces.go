package bufferpool

import "github.com/tuannm99/novapool/internal/storage"

// Manager is the client surface of the buffer pool.
type Manager interface {
	Pin(pageID storage.PageID, dst *storage.Page, emptyPage bool) error
	Unpin(pageID storage.PageID, dirty bool) error
	NewPage(dst *storage.Page, howMany int) (storage.PageID, error)
	FreePage(pageID storage.PageID) error
	FlushPage(pageID storage.PageID) error
	FlushAll() error
	NumBuffers() int
	NumUnpinnedBuffers() int
}

var _ Manager = (*Pool)(nil)
