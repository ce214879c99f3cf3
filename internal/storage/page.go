package storage

import (
	"encoding/binary"
)

// Page is a fixed-size (PageSize) byte container.
//
// A Page either owns its bytes or, after SetPage, is a view on another page's
// bytes. The buffer pool hands pinned frames to callers as views: writes through
// the view reach the frame, but the slice is capacity-capped so a caller can never
// grow past the frame boundary.
//
// The zero value is usable; its storage is allocated on first access.
type Page struct {
	buf []byte
}

func NewPage() *Page {
	return &Page{buf: make([]byte, PageSize)}
}

// NewPageFrom wraps buf without copying. buf must be exactly PageSize bytes.
func NewPageFrom(buf []byte) (*Page, error) {
	if len(buf) != PageSize {
		return nil, ErrWrongSize
	}
	return &Page{buf: buf[:PageSize:PageSize]}, nil
}

func (p *Page) ensure() {
	if p.buf == nil {
		p.buf = make([]byte, PageSize)
	}
}

// Data exposes the page contents.
func (p *Page) Data() []byte {
	p.ensure()
	return p.buf[:PageSize:PageSize]
}

// SetPage makes p a view on other's storage. Nothing is copied.
func (p *Page) SetPage(other *Page) {
	other.ensure()
	p.buf = other.buf[:PageSize:PageSize]
}

// CopyFrom copies other's contents into p's own storage.
func (p *Page) CopyFrom(other *Page) {
	copy(p.Data(), other.Data())
}

// Shares reports whether p and other are backed by the same bytes.
func (p *Page) Shares(other *Page) bool {
	if p.buf == nil || other.buf == nil {
		return false
	}
	return &p.buf[0] == &other.buf[0]
}

// Reset zero-fills the page.
func (p *Page) Reset() {
	clear(p.Data())
}

// ---- typed accessors ----

func (p *Page) bounds(off, width int) error {
	if off < 0 || off+width > PageSize {
		return ErrOffsetOutOfRange
	}
	return nil
}

func (p *Page) GetInt32(off int) (int32, error) {
	if err := p.bounds(off, 4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(p.Data()[off:])), nil
}

func (p *Page) SetInt32(off int, v int32) error {
	if err := p.bounds(off, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p.Data()[off:], uint32(v))
	return nil
}

func (p *Page) GetUint16(off int) (uint16, error) {
	if err := p.bounds(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p.Data()[off:]), nil
}

func (p *Page) SetUint16(off int, v uint16) error {
	if err := p.bounds(off, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(p.Data()[off:], v)
	return nil
}

// GetBytes returns a copy of n bytes starting at off.
func (p *Page) GetBytes(off, n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrOffsetOutOfRange
	}
	if err := p.bounds(off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p.Data()[off:off+n])
	return out, nil
}

func (p *Page) SetBytes(off int, b []byte) error {
	if err := p.bounds(off, len(b)); err != nil {
		return err
	}
	copy(p.Data()[off:], b)
	return nil
}
