package bufferpool

// Stats is a snapshot of pool activity since construction.
type Stats struct {
	Hits      uint64 // Pin found the page resident
	Misses    uint64 // Pin had to claim a frame
	Reads     uint64 // pages read from disk
	Writes    uint64 // pages written to disk (evictions and flushes)
	Evictions uint64 // resident pages displaced by a miss
}

// HitRatio returns Hits / (Hits + Misses), or 0 before the first Pin.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
