package bufferpool

import "github.com/tuannm99/novapool/internal/storage"

// PageView holds one pin on a page and the caller's view of its frame.
// Release gives the pin back exactly once.
type PageView struct {
	m        Manager
	id       storage.PageID
	page     storage.Page
	dirty    bool
	released bool
}

// PinView pins pageID on m and returns a view bound to it.
func PinView(m Manager, pageID storage.PageID, emptyPage bool) (*PageView, error) {
	v := &PageView{m: m, id: pageID}
	if err := m.Pin(pageID, &v.page, emptyPage); err != nil {
		return nil, err
	}
	return v, nil
}

// NewPageView allocates a run of howMany pages and returns a view on the first.
func NewPageView(m Manager, howMany int) (*PageView, error) {
	v := &PageView{m: m}
	id, err := m.NewPage(&v.page, howMany)
	if err != nil {
		return nil, err
	}
	v.id = id
	return v, nil
}

func (v *PageView) ID() storage.PageID { return v.id }

func (v *PageView) Page() *storage.Page { return &v.page }

// MarkDirty records that the contents changed; Release reports it to the pool.
func (v *PageView) MarkDirty() { v.dirty = true }

func (v *PageView) Released() bool { return v.released }

func (v *PageView) Release() error {
	if v.released {
		return nil
	}
	if err := v.m.Unpin(v.id, v.dirty); err != nil {
		return err
	}
	v.released = true
	return nil
}
