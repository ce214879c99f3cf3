package storage

import (
	"encoding/binary"
	"math/bits"
)

const spaceMapMagic uint32 = 0x4e50534d // "NPSM"

// spaceMap is the page allocation bitmap: bit i set means page i is allocated.
type spaceMap struct {
	words    []uint64
	maxPages int
}

func newSpaceMap(maxPages int) *spaceMap {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &spaceMap{maxPages: maxPages}
}

func (m *spaceMap) isSet(id PageID) bool {
	w := int(id) / 64
	if id < 0 || w >= len(m.words) {
		return false
	}
	return m.words[w]&(1<<(uint(id)%64)) != 0
}

func (m *spaceMap) setRange(first PageID, count int, on bool) {
	need := (int(first) + count + 63) / 64
	for len(m.words) < need {
		m.words = append(m.words, 0)
	}
	for i := int(first); i < int(first)+count; i++ {
		if on {
			m.words[i/64] |= 1 << (uint(i) % 64)
		} else {
			m.words[i/64] &^= 1 << (uint(i) % 64)
		}
	}
}

// allRange reports whether every page in [first, first+count) is allocated.
func (m *spaceMap) allRange(first PageID, count int) bool {
	for i := 0; i < count; i++ {
		if !m.isSet(first + PageID(i)) {
			return false
		}
	}
	return true
}

// firstFit finds the lowest run of count free pages below maxPages.
func (m *spaceMap) firstFit(count int) (PageID, bool) {
	run := 0
	for i := 0; i < m.maxPages; i++ {
		w := i / 64
		if i%64 == 0 && w < len(m.words) && m.words[w] == ^uint64(0) {
			run = 0
			i += 63
			continue
		}
		if m.isSet(PageID(i)) {
			run = 0
			continue
		}
		run++
		if run == count {
			return PageID(i - count + 1), true
		}
	}
	return InvalidPageID, false
}

func (m *spaceMap) allocated() int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// MarshalBinary layout: magic(4) | nwords(4) | words(8 each), little endian.
func (m *spaceMap) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8+8*len(m.words))
	binary.LittleEndian.PutUint32(out[0:], spaceMapMagic)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(m.words)))
	for i, w := range m.words {
		binary.LittleEndian.PutUint64(out[8+8*i:], w)
	}
	return out, nil
}

func (m *spaceMap) UnmarshalBinary(data []byte) error {
	if len(data) < 8 || binary.LittleEndian.Uint32(data[0:]) != spaceMapMagic {
		return ErrCorruptSpaceMap
	}
	n := int(binary.LittleEndian.Uint32(data[4:]))
	if len(data) != 8+8*n {
		return ErrCorruptSpaceMap
	}
	m.words = make([]uint64, n)
	for i := range m.words {
		m.words[i] = binary.LittleEndian.Uint64(data[8+8*i:])
	}
	return nil
}
