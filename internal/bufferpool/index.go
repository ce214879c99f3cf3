package bufferpool

import (
	"fmt"

	"github.com/tuannm99/novapool/internal/storage"
)

// PageIndex maps a resident page to the frame holding it.
type PageIndex interface {
	Insert(pageID storage.PageID, frameID FrameID)
	// Remove drops the mapping only if it is currently stored for pageID.
	Remove(pageID storage.PageID)
	Lookup(pageID storage.PageID) (FrameID, bool)
	Len() int
}

type IndexKind int

const (
	IndexMap  IndexKind = iota // Go map, no collisions
	IndexHash                  // fixed directory, collisions overwrite
)

func (k IndexKind) String() string {
	switch k {
	case IndexMap:
		return "map"
	case IndexHash:
		return "hash"
	default:
		return "unknown"
	}
}

func ParseIndexKind(s string) (IndexKind, error) {
	switch s {
	case "map", "":
		return IndexMap, nil
	case "hash":
		return IndexHash, nil
	default:
		return 0, fmt.Errorf("invalid index kind: %s", s)
	}
}

func newPageIndex(kind IndexKind, frames int) PageIndex {
	if kind == IndexHash {
		return newHashIndex(frames)
	}
	return newMapIndex(frames)
}

type mapIndex struct {
	m map[storage.PageID]FrameID
}

func newMapIndex(frames int) *mapIndex {
	return &mapIndex{m: make(map[storage.PageID]FrameID, frames)}
}

func (x *mapIndex) Insert(pageID storage.PageID, frameID FrameID) { x.m[pageID] = frameID }

func (x *mapIndex) Remove(pageID storage.PageID) { delete(x.m, pageID) }

func (x *mapIndex) Lookup(pageID storage.PageID) (FrameID, bool) {
	id, ok := x.m[pageID]
	return id, ok
}

func (x *mapIndex) Len() int { return len(x.m) }

const (
	hashMinBuckets = 101
	hashA          = 3
	hashB          = 5
)

type hashEntry struct {
	pageID  storage.PageID
	frameID FrameID
	used    bool
}

// hashIndex is a single-slot-per-bucket directory. Inserting a page whose bucket
// is taken replaces the previous mapping; the displaced page stays in its frame
// but can no longer be found. Kept for behavior-compatible runs.
type hashIndex struct {
	dir []hashEntry
	n   int
}

func newHashIndex(frames int) *hashIndex {
	size := max(hashMinBuckets, 2*frames)
	return &hashIndex{dir: make([]hashEntry, size)}
}

func (x *hashIndex) bucket(pageID storage.PageID) int {
	size := int64(len(x.dir))
	return int(((hashA*int64(pageID)+hashB)%size + size) % size)
}

func (x *hashIndex) Insert(pageID storage.PageID, frameID FrameID) {
	e := &x.dir[x.bucket(pageID)]
	if !e.used {
		x.n++
	}
	*e = hashEntry{pageID: pageID, frameID: frameID, used: true}
}

func (x *hashIndex) Remove(pageID storage.PageID) {
	e := &x.dir[x.bucket(pageID)]
	if e.used && e.pageID == pageID {
		*e = hashEntry{}
		x.n--
	}
}

func (x *hashIndex) Lookup(pageID storage.PageID) (FrameID, bool) {
	e := x.dir[x.bucket(pageID)]
	if e.used && e.pageID == pageID {
		return e.frameID, true
	}
	return InvalidFrameID, false
}

func (x *hashIndex) Len() int { return x.n }
