package bufferpool

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tuannm99/novapool/internal/storage"
)

var DefaultCapacity = 128

// Pool is a fixed set of page frames in front of a DiskManager.
//
// A frame is in the replacement queue exactly when its pin count is zero, and
// every resident frame has one entry in the page index. Public methods are
// serialized by mu; nothing blocks waiting for a frame.
type Pool struct {
	disk storage.DiskManager
	log  *logrus.Entry

	mu                sync.Mutex
	frames            *frameTable
	pageTable         PageIndex
	replacementPolicy Replacer
	stats             Stats
}

type Option func(*poolOptions)

type poolOptions struct {
	index  IndexKind
	logger *logrus.Logger
}

// WithIndex selects the page index implementation. Default IndexMap.
func WithIndex(kind IndexKind) Option {
	return func(o *poolOptions) { o.index = kind }
}

func WithLogger(l *logrus.Logger) Option {
	return func(o *poolOptions) { o.logger = l }
}

func NewPool(disk storage.DiskManager, capacity int, opts ...Option) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	o := poolOptions{index: IndexMap}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logrus.New()
		o.logger.SetOutput(io.Discard)
	}

	p := &Pool{
		disk:              disk,
		log:               o.logger.WithField("component", "bufferpool"),
		frames:            newFrameTable(capacity),
		pageTable:         newPageIndex(o.index, capacity),
		replacementPolicy: newFIFOReplacer(capacity),
	}
	// Every frame starts empty and unpinned, queued in frame order.
	for i := 0; i < capacity; i++ {
		p.replacementPolicy.SetEvictable(FrameID(i), true)
	}
	return p
}

// Pin makes pageID resident, increments its pin count and binds dst to the
// frame's buffer. With emptyPage set a miss skips the disk read and hands out a
// zeroed buffer; the caller owns the contents. dst may be nil.
func (p *Pool) Pin(pageID storage.PageID, dst *storage.Page, emptyPage bool) error {
	if !pageID.Valid() {
		return ErrInvalidPageID
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pin(pageID, dst, emptyPage)
}

func (p *Pool) pin(pageID storage.PageID, dst *storage.Page, emptyPage bool) error {
	// 1) HIT
	if idx, ok := p.pageTable.Lookup(pageID); ok {
		f := p.frames.desc(idx)
		if f.pinCount == 0 {
			p.replacementPolicy.SetEvictable(idx, false)
		}
		f.pinCount++
		p.replacementPolicy.RecordAccess(idx)
		p.stats.Hits++
		p.bind(dst, idx)
		return nil
	}
	p.stats.Misses++

	// 2) Claim the oldest unpinned frame
	victimIdx, ok := p.replacementPolicy.Evict()
	if !ok {
		return newError("pin", KindCapacity, pageID, nil)
	}
	victim := p.frames.desc(victimIdx)

	if victim.resident() {
		if victim.dirty {
			if err := p.writeFrame(victimIdx); err != nil {
				// Victim keeps its page and its place at the head of the queue.
				p.replacementPolicy.Unevict(victimIdx)
				return newError("pin", KindStorageIO, pageID, err)
			}
		}
		p.log.Debugf("evict frame %d (page %d) for page %d", victimIdx, victim.pageID, pageID)
		p.pageTable.Remove(victim.pageID)
		p.stats.Evictions++
	}
	victim.reset()

	// 3) Load requested page
	buf := p.frames.page(victimIdx)
	if emptyPage {
		buf.Reset()
	} else {
		if err := p.disk.ReadPage(pageID, buf); err != nil {
			// The old page is already gone; the frame goes back as an empty candidate.
			buf.Reset()
			p.replacementPolicy.Unevict(victimIdx)
			return newError("pin", KindStorageIO, pageID, errors.Wrapf(err, "read page %d", pageID))
		}
		p.stats.Reads++
	}

	victim.pageID = pageID
	victim.pinCount = 1
	victim.dirty = false
	p.pageTable.Insert(pageID, victimIdx)
	p.bind(dst, victimIdx)
	return nil
}

func (p *Pool) bind(dst *storage.Page, idx FrameID) {
	if dst != nil {
		dst.SetPage(p.frames.page(idx))
	}
}

// Unpin releases one pin on pageID. dirty is sticky: once any holder reports a
// modification the frame stays dirty until written.
func (p *Pool) Unpin(pageID storage.PageID, dirty bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable.Lookup(pageID)
	if !ok {
		return newError("unpin", KindNotFound, pageID, nil)
	}
	f := p.frames.desc(idx)
	if f.pinCount <= 0 {
		return newError("unpin", KindAlreadyUnpinned, pageID, nil)
	}

	if dirty {
		f.dirty = true
	}
	f.pinCount--
	if f.pinCount == 0 {
		p.replacementPolicy.SetEvictable(idx, true)
	}
	return nil
}

// NewPage allocates howMany contiguous pages on disk and pins the first one as
// an empty page bound to dst. If no frame is available the run is deallocated
// again and InvalidPageID is returned with the pin error.
func (p *Pool) NewPage(dst *storage.Page, howMany int) (storage.PageID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	first, err := p.disk.AllocatePages(howMany)
	if err != nil {
		return storage.InvalidPageID, newError("new page", KindStorageIO, storage.InvalidPageID,
			errors.Wrapf(err, "allocate %d pages", howMany))
	}

	if err := p.pin(first, dst, true); err != nil {
		p.log.Warnf("new page: pin %d failed, releasing %d allocated pages: %v", first, howMany, err)
		if derr := p.disk.DeallocatePages(first, howMany); derr != nil {
			p.log.Warnf("new page: deallocate run at %d failed: %v", first, derr)
		}
		return storage.InvalidPageID, err
	}
	return first, nil
}

// FreePage drops pageID from the pool and deallocates it on disk. A resident
// page may still carry the caller's own pin; more than one pin is refused.
// Dirty contents are discarded.
func (p *Pool) FreePage(pageID storage.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.pageTable.Lookup(pageID); ok {
		f := p.frames.desc(idx)
		if f.pinCount > 1 {
			return newError("free", KindStillPinned, pageID, nil)
		}
		p.pageTable.Remove(pageID)
		f.reset()
		p.frames.page(idx).Reset()
		if !p.replacementPolicy.Contains(idx) {
			p.replacementPolicy.SetEvictable(idx, true)
		}
	}

	if err := p.disk.DeallocatePage(pageID); err != nil {
		return newError("free", KindStorageIO, pageID, errors.Wrapf(err, "deallocate page %d", pageID))
	}
	return nil
}

// FlushPage writes pageID if it is resident and dirty.
func (p *Pool) FlushPage(pageID storage.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable.Lookup(pageID)
	if !ok {
		return nil
	}
	return p.flushFrame(idx)
}

// FlushAll visits every frame slot; empty and clean frames are skipped.
func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < p.frames.len(); i++ {
		if err := p.flushFrame(FrameID(i)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) flushFrame(idx FrameID) error {
	f := p.frames.desc(idx)
	if !f.resident() || !f.dirty {
		return nil
	}
	if err := p.writeFrame(idx); err != nil {
		return newError("flush", KindStorageIO, f.pageID, err)
	}
	f.dirty = false
	return nil
}

func (p *Pool) writeFrame(idx FrameID) error {
	f := p.frames.desc(idx)
	if err := p.disk.WritePage(f.pageID, p.frames.page(idx)); err != nil {
		return errors.Wrapf(err, "write page %d", f.pageID)
	}
	p.stats.Writes++
	p.log.Debugf("wrote frame %d (page %d)", idx, f.pageID)
	return nil
}

// ---- introspection ----

func (p *Pool) NumBuffers() int {
	return p.frames.len()
}

func (p *Pool) NumUnpinnedBuffers() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for i := range p.frames.descs {
		if p.frames.descs[i].pinCount == 0 {
			n++
		}
	}
	return n
}

func (p *Pool) mustFrame(id FrameID) *frameDesc {
	if !p.frames.valid(id) {
		panic(fmt.Sprintf("bufferpool: frame index out of bound: %d", id))
	}
	return p.frames.desc(id)
}

// FramePageID returns the page held by frame id, or storage.InvalidPageID.
func (p *Pool) FramePageID(id FrameID) storage.PageID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mustFrame(id).pageID
}

func (p *Pool) FramePinCount(id FrameID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.mustFrame(id).pinCount)
}

func (p *Pool) FrameDirty(id FrameID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mustFrame(id).dirty
}

// Lookup reports which frame holds pageID.
func (p *Pool) Lookup(pageID storage.PageID) (FrameID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageTable.Lookup(pageID)
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// DumpFrames writes one line per frame: id, page, pin count, dirty, queued.
func (p *Pool) DumpFrames(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FRAME\tPAGE\tPIN\tDIRTY\tQUEUED")
	for i := range p.frames.descs {
		f := &p.frames.descs[i]
		page := "-"
		if f.resident() {
			page = fmt.Sprintf("%d", f.pageID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%t\t%t\n", i, page, f.pinCount, f.dirty,
			p.replacementPolicy.Contains(FrameID(i)))
	}
	return tw.Flush()
}
