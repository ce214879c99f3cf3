package storage

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	OneB  = 1 << 0  // 1
	OneKB = 1 << 10 // 1,024
	OneMB = 1 << 20 // 1,048,576
	OneGB = 1 << 30 // 1,073,741,824

	SegmentSize       = 1 << 30                // 1,073,741,824 (1 GiB)
	PageSize          = 1 << 13                // 8,192 (8 KiB)
	MaxPagePerSegment = SegmentSize / PageSize // 131,072 pages/segment

	// DefaultMaxPages bounds the allocation map when no limit is configured.
	DefaultMaxPages = 1 << 20
)

const (
	FileMode0644 = 0o644
	FileMode0664 = 0o664
	FileMode0755 = 0o755
)

// PageID is a page number inside one database file set.
type PageID int32

// InvalidPageID marks an empty frame or a failed allocation.
const InvalidPageID PageID = -1

func (id PageID) Valid() bool { return id >= 0 }

type StorageMode int

const (
	File   StorageMode = iota + 1 // segmented files on local disk
	Memory                        // volatile, for tests and the shell
)

func (s StorageMode) String() string {
	switch s {
	case File:
		return "file"
	case Memory:
		return "memory"
	default:
		return "unknown"
	}
}

func GetStorageMode(s string) (StorageMode, error) {
	switch s {
	case "file":
		return File, nil
	case "memory":
		return Memory, nil
	default:
		return 0, fmt.Errorf("invalid storage mode: %s", s)
	}
}

var (
	ErrWrongSize        = errors.New("storage: buffer size != PageSize")
	ErrOffsetOutOfRange = errors.New("storage: offset out of page bounds")
	ErrInvalidPageID    = errors.New("storage: invalid page id")
	ErrInvalidRunSize   = errors.New("storage: run size must be positive")
	ErrPageNotAllocated = errors.New("storage: page is not allocated")
	ErrOutOfSpace       = errors.New("storage: no contiguous run of free pages")
	ErrClosed           = errors.New("storage: disk manager is closed")
	ErrCorruptSpaceMap  = errors.New("storage: space map file is corrupted")
)
