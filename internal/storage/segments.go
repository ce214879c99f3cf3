package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SegFileName returns segment file name:
//   - seg 0: base
//   - seg N>0: base.N
func SegFileName(base string, segNo int32) string {
	if segNo <= 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, segNo)
}

// ListSegments scans lfs.Dir and returns all segment numbers for lfs.Base in
// ascending order. It matches Base and Base.<int>; the space map is not a segment.
func ListSegments(lfs LocalFileSet) ([]int32, error) {
	ents, err := os.ReadDir(lfs.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	segs := make([]int32, 0)
	prefix := lfs.Base + "."

	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == lfs.Base {
			segs = append(segs, 0)
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		n64, err := strconv.ParseInt(strings.TrimPrefix(name, prefix), 10, 32)
		if err != nil || n64 <= 0 {
			continue
		}
		segs = append(segs, int32(n64))
	}

	sort.Slice(segs, func(i, j int) bool { return segs[i] < segs[j] })
	return segs, nil
}

// RemoveFileSet removes Base, Base.1, Base.2, ... and the space map. The file
// set must not be open.
func RemoveFileSet(lfs LocalFileSet) error {
	segs, err := ListSegments(lfs)
	if err != nil {
		return err
	}
	paths := make([]string, 0, len(segs)+1)
	for _, segNo := range segs {
		paths = append(paths, filepath.Join(lfs.Dir, SegFileName(lfs.Base, segNo)))
	}
	paths = append(paths, lfs.SpaceMapPath())
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrapf(err, "remove %s", path)
		}
	}
	return nil
}
