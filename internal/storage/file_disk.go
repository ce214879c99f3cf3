package storage

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

type FileSet interface {
	OpenSegment(segNo int32) (*os.File, error)
}

var _ FileSet = (*LocalFileSet)(nil)

// LocalFileSet represents a local directory + base file name.
// Segments are stored as: Base, Base.1, Base.2, ...
type LocalFileSet struct {
	Dir  string
	Base string
}

func (lfs LocalFileSet) OpenSegment(segNo int32) (*os.File, error) {
	path := filepath.Join(lfs.Dir, SegFileName(lfs.Base, segNo))
	if err := os.MkdirAll(lfs.Dir, FileMode0755); err != nil {
		return nil, err
	}
	// RDWR | CREATE (no truncate)
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, FileMode0644)
}

// SpaceMapPath is where the allocation bitmap of the file set is persisted.
func (lfs LocalFileSet) SpaceMapPath() string {
	return filepath.Join(lfs.Dir, lfs.Base+".map")
}

// FileDiskManager stores pages in 1 GiB segment files and tracks allocation in a
// bitmap that is persisted next to the segments on Sync and Close.
type FileDiskManager struct {
	fs LocalFileSet

	mu     sync.Mutex
	space  *spaceMap
	segs   map[int32]*os.File // open segment files, cached
	closed bool
}

// OpenFileDiskManager opens (or creates) the file set and loads its space map.
func OpenFileDiskManager(fs LocalFileSet, maxPages int) (*FileDiskManager, error) {
	if err := os.MkdirAll(fs.Dir, FileMode0755); err != nil {
		return nil, errors.Wrap(err, "create data directory")
	}
	dm := &FileDiskManager{
		fs:    fs,
		space: newSpaceMap(maxPages),
		segs:  make(map[int32]*os.File),
	}

	data, err := os.ReadFile(fs.SpaceMapPath())
	switch {
	case err == nil:
		if err := dm.space.UnmarshalBinary(data); err != nil {
			return nil, errors.Wrapf(err, "load %s", fs.SpaceMapPath())
		}
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrap(err, "read space map")
	}
	return dm, nil
}

func (dm *FileDiskManager) locate(pageID PageID) (segNo int32, offset int64) {
	segNo = int32(pageID) / MaxPagePerSegment
	pageInSeg := int32(pageID) % MaxPagePerSegment
	offset = int64(pageInSeg) * PageSize
	return segNo, offset
}

func (dm *FileDiskManager) segment(segNo int32) (*os.File, error) {
	if f, ok := dm.segs[segNo]; ok {
		return f, nil
	}
	f, err := dm.fs.OpenSegment(segNo)
	if err != nil {
		return nil, errors.Wrapf(err, "open segment %d", segNo)
	}
	dm.segs[segNo] = f
	return f, nil
}

func (dm *FileDiskManager) AllocatePages(count int) (PageID, error) {
	if count <= 0 {
		return InvalidPageID, ErrInvalidRunSize
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.closed {
		return InvalidPageID, ErrClosed
	}

	first, ok := dm.space.firstFit(count)
	if !ok {
		return InvalidPageID, errors.Wrapf(ErrOutOfSpace, "allocate %d pages", count)
	}
	dm.space.setRange(first, count, true)
	return first, nil
}

func (dm *FileDiskManager) DeallocatePages(first PageID, count int) error {
	if count <= 0 {
		return ErrInvalidRunSize
	}
	if !first.Valid() {
		return ErrInvalidPageID
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.closed {
		return ErrClosed
	}

	if !dm.space.allRange(first, count) {
		return errors.Wrapf(ErrPageNotAllocated, "deallocate pages [%d,%d)", first, int(first)+count)
	}
	dm.space.setRange(first, count, false)
	return nil
}

func (dm *FileDiskManager) DeallocatePage(pageID PageID) error {
	return dm.DeallocatePages(pageID, 1)
}

// ReadPage reads exactly one page into dst.
// If the segment is shorter than the page's offset+PageSize, the remainder is
// zero-filled, so freshly allocated pages read as zeros.
func (dm *FileDiskManager) ReadPage(pageID PageID, dst *Page) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	f, off, err := dm.prepare(pageID)
	if err != nil {
		return err
	}
	buf := dst.Data()
	n, err := f.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return errors.Wrapf(err, "read page %d", pageID)
	}
	// Zero-fill the rest of the page if we hit EOF early or a short read.
	clear(buf[n:])
	return nil
}

// WritePage writes exactly one page from src at the location computed from pageID.
func (dm *FileDiskManager) WritePage(pageID PageID, src *Page) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	f, off, err := dm.prepare(pageID)
	if err != nil {
		return err
	}
	n, err := f.WriteAt(src.Data(), off)
	if err != nil {
		return errors.Wrapf(err, "write page %d", pageID)
	}
	if n != PageSize {
		return errors.Wrapf(io.ErrShortWrite, "write page %d", pageID)
	}
	return nil
}

func (dm *FileDiskManager) prepare(pageID PageID) (*os.File, int64, error) {
	if dm.closed {
		return nil, 0, ErrClosed
	}
	if !pageID.Valid() {
		return nil, 0, ErrInvalidPageID
	}
	if !dm.space.isSet(pageID) {
		return nil, 0, errors.Wrapf(ErrPageNotAllocated, "page %d", pageID)
	}
	segNo, off := dm.locate(pageID)
	f, err := dm.segment(segNo)
	if err != nil {
		return nil, 0, err
	}
	return f, off, nil
}

// AllocatedPages returns the number of pages currently allocated.
func (dm *FileDiskManager) AllocatedPages() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.space.allocated()
}

// Sync fsyncs open segments and rewrites the space map atomically.
func (dm *FileDiskManager) Sync() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.closed {
		return ErrClosed
	}
	return dm.syncLocked()
}

func (dm *FileDiskManager) syncLocked() error {
	for segNo, f := range dm.segs {
		if err := f.Sync(); err != nil {
			return errors.Wrapf(err, "sync segment %d", segNo)
		}
	}

	data, err := dm.space.MarshalBinary()
	if err != nil {
		return err
	}
	path := dm.fs.SpaceMapPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FileMode0644); err != nil {
		return errors.Wrap(err, "write space map")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "install space map")
	}
	return nil
}

// Close syncs and closes every open segment. A closed manager rejects all calls.
func (dm *FileDiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.closed {
		return nil
	}

	err := dm.syncLocked()
	for segNo, f := range dm.segs {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close segment %d", segNo)
		}
	}
	dm.segs = nil
	dm.closed = true
	return err
}
