package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novapool/internal/storage"
)

const (
	opAlloc   = "alloc"
	opDealloc = "dealloc"
	opRead    = "read"
	opWrite   = "write"
)

type diskOp struct {
	kind   string
	pageID storage.PageID
	count  int
	data   []byte // snapshot for writes
}

// recordingDisk logs every call that reaches the disk and can inject failures.
type recordingDisk struct {
	*storage.MemDiskManager

	ops       []diskOp
	failRead  map[storage.PageID]error
	failWrite map[storage.PageID]error
	failAlloc error
}

func newRecordingDisk(t *testing.T, preallocated int) *recordingDisk {
	t.Helper()
	mem := storage.NewMemDiskManager(1024)
	if preallocated > 0 {
		_, err := mem.AllocatePages(preallocated)
		require.NoError(t, err)
	}
	return &recordingDisk{
		MemDiskManager: mem,
		failRead:       make(map[storage.PageID]error),
		failWrite:      make(map[storage.PageID]error),
	}
}

func (d *recordingDisk) AllocatePages(count int) (storage.PageID, error) {
	if d.failAlloc != nil {
		return storage.InvalidPageID, d.failAlloc
	}
	first, err := d.MemDiskManager.AllocatePages(count)
	if err == nil {
		d.ops = append(d.ops, diskOp{kind: opAlloc, pageID: first, count: count})
	}
	return first, err
}

func (d *recordingDisk) DeallocatePages(first storage.PageID, count int) error {
	d.ops = append(d.ops, diskOp{kind: opDealloc, pageID: first, count: count})
	return d.MemDiskManager.DeallocatePages(first, count)
}

func (d *recordingDisk) DeallocatePage(pageID storage.PageID) error {
	d.ops = append(d.ops, diskOp{kind: opDealloc, pageID: pageID, count: 1})
	return d.MemDiskManager.DeallocatePage(pageID)
}

func (d *recordingDisk) ReadPage(pageID storage.PageID, dst *storage.Page) error {
	d.ops = append(d.ops, diskOp{kind: opRead, pageID: pageID})
	if err := d.failRead[pageID]; err != nil {
		return err
	}
	return d.MemDiskManager.ReadPage(pageID, dst)
}

func (d *recordingDisk) WritePage(pageID storage.PageID, src *storage.Page) error {
	snap := make([]byte, storage.PageSize)
	copy(snap, src.Data())
	d.ops = append(d.ops, diskOp{kind: opWrite, pageID: pageID, data: snap})
	if err := d.failWrite[pageID]; err != nil {
		return err
	}
	return d.MemDiskManager.WritePage(pageID, src)
}

func (d *recordingDisk) reset() { d.ops = nil }

func (d *recordingDisk) count(kind string, pageID storage.PageID) int {
	n := 0
	for _, op := range d.ops {
		if op.kind == kind && op.pageID == pageID {
			n++
		}
	}
	return n
}

func (d *recordingDisk) kinds() []string {
	out := make([]string, 0, len(d.ops))
	for _, op := range d.ops {
		out = append(out, op.kind)
	}
	return out
}

// seed writes v at offset 0 of pageID directly on disk, bypassing the pool.
func (d *recordingDisk) seed(t *testing.T, pageID storage.PageID, v int32) {
	t.Helper()
	p := storage.NewPage()
	require.NoError(t, p.SetInt32(0, v))
	require.NoError(t, d.MemDiskManager.WritePage(pageID, p))
}

func (d *recordingDisk) stored(t *testing.T, pageID storage.PageID) int32 {
	t.Helper()
	p := storage.NewPage()
	require.NoError(t, d.MemDiskManager.ReadPage(pageID, p))
	v, err := p.GetInt32(0)
	require.NoError(t, err)
	return v
}
