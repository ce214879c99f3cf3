package storage

import "io"

// DiskManager allocates page numbers and moves whole pages between disk and memory.
// The buffer pool is its only caller; it never interprets page contents.
type DiskManager interface {
	// AllocatePages reserves count contiguous pages and returns the first one.
	AllocatePages(count int) (PageID, error)
	DeallocatePages(first PageID, count int) error
	DeallocatePage(pageID PageID) error
	ReadPage(pageID PageID, dst *Page) error
	WritePage(pageID PageID, src *Page) error
}

// Syncer is implemented by disk managers with state that must reach stable storage.
type Syncer interface {
	Sync() error
}

var (
	_ DiskManager = (*FileDiskManager)(nil)
	_ DiskManager = (*MemDiskManager)(nil)
	_ Syncer      = (*FileDiskManager)(nil)
	_ io.Closer   = (*FileDiskManager)(nil)
)
