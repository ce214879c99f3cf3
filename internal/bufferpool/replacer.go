package bufferpool

// Replacer chooses the victim frame among the frames that are not pinned.
type Replacer interface {
	RecordAccess(frameID FrameID)
	// SetEvictable adds the frame to (true) or drops it from (false) the candidates.
	// Adding a frame that is already a candidate does nothing.
	SetEvictable(frameID FrameID, evictable bool)
	Evict() (frameID FrameID, ok bool)
	// Unevict gives back a frame returned by Evict so it is the next victim.
	Unevict(frameID FrameID)
	Remove(frameID FrameID)
	Contains(frameID FrameID) bool
	Size() int
}
