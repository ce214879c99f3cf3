package bufferpool

// fifoReplacer evicts frames in the order they became unpinned.
// The queue is an intrusive doubly linked list over frame ids, so every
// operation is O(1).
type fifoReplacer struct {
	next   []FrameID
	prev   []FrameID
	queued []bool
	head   FrameID // next victim
	tail   FrameID // most recently unpinned
	size   int
}

var _ Replacer = (*fifoReplacer)(nil)

func newFIFOReplacer(capacity int) *fifoReplacer {
	r := &fifoReplacer{
		next:   make([]FrameID, capacity),
		prev:   make([]FrameID, capacity),
		queued: make([]bool, capacity),
		head:   InvalidFrameID,
		tail:   InvalidFrameID,
	}
	for i := range r.next {
		r.next[i] = InvalidFrameID
		r.prev[i] = InvalidFrameID
	}
	return r
}

func (r *fifoReplacer) inRange(id FrameID) bool {
	return id >= 0 && int(id) < len(r.queued)
}

// RecordAccess is a no-op: FIFO order ignores hits.
func (r *fifoReplacer) RecordAccess(FrameID) {}

func (r *fifoReplacer) SetEvictable(id FrameID, evictable bool) {
	if evictable {
		r.pushBack(id)
		return
	}
	r.unlink(id)
}

func (r *fifoReplacer) Evict() (FrameID, bool) {
	if r.head == InvalidFrameID {
		return InvalidFrameID, false
	}
	id := r.head
	r.unlink(id)
	return id, true
}

func (r *fifoReplacer) Unevict(id FrameID) {
	if !r.inRange(id) || r.queued[id] {
		return
	}
	r.queued[id] = true
	r.prev[id] = InvalidFrameID
	r.next[id] = r.head
	if r.head != InvalidFrameID {
		r.prev[r.head] = id
	}
	r.head = id
	if r.tail == InvalidFrameID {
		r.tail = id
	}
	r.size++
}

func (r *fifoReplacer) Remove(id FrameID) { r.unlink(id) }

func (r *fifoReplacer) Contains(id FrameID) bool {
	return r.inRange(id) && r.queued[id]
}

func (r *fifoReplacer) Size() int { return r.size }

// Order returns the queued frames from next victim to most recent.
func (r *fifoReplacer) Order() []FrameID {
	out := make([]FrameID, 0, r.size)
	for id := r.head; id != InvalidFrameID; id = r.next[id] {
		out = append(out, id)
	}
	return out
}

func (r *fifoReplacer) pushBack(id FrameID) {
	if !r.inRange(id) || r.queued[id] {
		return
	}
	r.queued[id] = true
	r.next[id] = InvalidFrameID
	r.prev[id] = r.tail
	if r.tail != InvalidFrameID {
		r.next[r.tail] = id
	}
	r.tail = id
	if r.head == InvalidFrameID {
		r.head = id
	}
	r.size++
}

func (r *fifoReplacer) unlink(id FrameID) {
	if !r.inRange(id) || !r.queued[id] {
		return
	}
	prev, next := r.prev[id], r.next[id]
	if prev == InvalidFrameID {
		r.head = next
	} else {
		r.next[prev] = next
	}
	if next == InvalidFrameID {
		r.tail = prev
	} else {
		r.prev[next] = prev
	}
	r.prev[id] = InvalidFrameID
	r.next[id] = InvalidFrameID
	r.queued[id] = false
	r.size--
}
