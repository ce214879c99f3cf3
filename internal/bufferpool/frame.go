package bufferpool

import "github.com/tuannm99/novapool/internal/storage"

// FrameID indexes the pool's frame table. It is a handle, not a pointer: callers
// never get at the frame array itself.
type FrameID int

const InvalidFrameID FrameID = -1

// frameDesc describes what one frame currently holds.
type frameDesc struct {
	pageID   storage.PageID
	pinCount int32
	dirty    bool
}

func (f *frameDesc) resident() bool {
	return f.pageID != storage.InvalidPageID
}

func (f *frameDesc) reset() {
	f.pageID = storage.InvalidPageID
	f.pinCount = 0
	f.dirty = false
}

// frameTable is the descriptor array kept parallel to the page buffers.
type frameTable struct {
	descs []frameDesc
	pages []storage.Page
}

func newFrameTable(capacity int) *frameTable {
	ft := &frameTable{
		descs: make([]frameDesc, capacity),
		pages: make([]storage.Page, capacity),
	}
	for i := range ft.descs {
		ft.descs[i].reset()
		ft.pages[i] = *storage.NewPage()
	}
	return ft
}

func (ft *frameTable) len() int { return len(ft.descs) }

func (ft *frameTable) desc(id FrameID) *frameDesc { return &ft.descs[id] }

func (ft *frameTable) page(id FrameID) *storage.Page { return &ft.pages[id] }

func (ft *frameTable) valid(id FrameID) bool {
	return id >= 0 && int(id) < len(ft.descs)
}
