package shell

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tuannm99/novapool/internal/bufferpool"
	"github.com/tuannm99/novapool/internal/storage"
)

var (
	ErrUnknownCommand = errors.New("shell: unknown command")
	ErrUsage          = errors.New("shell: usage")
	ErrNotPinned      = errors.New("shell: page is not pinned by this session")
)

// Pool is what the shell drives: the client surface plus diagnostics.
type Pool interface {
	bufferpool.Manager
	DumpFrames(w io.Writer) error
	Stats() bufferpool.Stats
}

type command struct {
	usage string
	help  string
	run   func(s *Shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"pin":      {"pin <page> [empty]", "pin a page, optionally without reading it", (*Shell).pin},
		"unpin":    {"unpin <page> [dirty]", "release one pin held by this session", (*Shell).unpin},
		"new":      {"new [count]", "allocate a run of pages and pin the first", (*Shell).newPage},
		"free":     {"free <page>", "drop a page from the pool and deallocate it", (*Shell).free},
		"flush":    {"flush <page>", "write a page if it is resident and dirty", (*Shell).flush},
		"flushall": {"flushall", "write every dirty frame", (*Shell).flushAll},
		"read":     {"read <page> <offset> <len>", "hex dump bytes of a pinned page", (*Shell).read},
		"write":    {"write <page> <offset> <text>", "write text into a pinned page and mark it dirty", (*Shell).write},
		"frames":   {"frames", "print the frame table", (*Shell).frames},
		"stats":    {"stats", "print pool counters", (*Shell).stats},
		"help":     {"help", "show this help", (*Shell).help},
	}
}

// Shell interprets one command per line against a pool. Pins taken through the
// shell are tracked so they can be released by unpin or Close.
type Shell struct {
	pool Pool
	out  io.Writer
	held map[storage.PageID][]*bufferpool.PageView
}

func New(pool Pool, out io.Writer) *Shell {
	return &Shell{
		pool: pool,
		out:  out,
		held: make(map[storage.PageID][]*bufferpool.PageView),
	}
}

// Exec runs a single command line. Blank lines are ignored.
func (s *Shell) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	cmd, ok := commands[name]
	if !ok {
		return errors.Wrap(ErrUnknownCommand, name)
	}
	if err := cmd.run(s, fields[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			return errors.Wrap(ErrUsage, cmd.usage)
		}
		return err
	}
	return nil
}

// Held returns how many pins the session holds on pageID.
func (s *Shell) Held(pageID storage.PageID) int {
	return len(s.held[pageID])
}

// Close releases every pin the session still holds, without marking pages dirty
// beyond what write already recorded.
func (s *Shell) Close() error {
	var first error
	for id, views := range s.held {
		for _, v := range views {
			if err := v.Release(); err != nil && first == nil {
				first = err
			}
		}
		delete(s.held, id)
	}
	return first
}

func (s *Shell) track(v *bufferpool.PageView) {
	s.held[v.ID()] = append(s.held[v.ID()], v)
}

func (s *Shell) latest(pageID storage.PageID) (*bufferpool.PageView, error) {
	views := s.held[pageID]
	if len(views) == 0 {
		return nil, errors.Wrapf(ErrNotPinned, "page %d", pageID)
	}
	return views[len(views)-1], nil
}

func (s *Shell) pin(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	id, err := parsePageID(args[0])
	if err != nil {
		return err
	}
	empty := len(args) == 2 && args[1] == "empty"
	if len(args) == 2 && !empty {
		return ErrUsage
	}
	v, err := bufferpool.PinView(s.pool, id, empty)
	if err != nil {
		return err
	}
	s.track(v)
	fmt.Fprintf(s.out, "pinned page %d (held %d)\n", id, s.Held(id))
	return nil
}

func (s *Shell) unpin(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	id, err := parsePageID(args[0])
	if err != nil {
		return err
	}
	dirty := len(args) == 2 && args[1] == "dirty"
	if len(args) == 2 && !dirty {
		return ErrUsage
	}
	v, err := s.latest(id)
	if err != nil {
		return err
	}
	if dirty {
		v.MarkDirty()
	}
	if err := v.Release(); err != nil {
		return err
	}
	views := s.held[id]
	if len(views) == 1 {
		delete(s.held, id)
	} else {
		s.held[id] = views[:len(views)-1]
	}
	fmt.Fprintf(s.out, "unpinned page %d\n", id)
	return nil
}

func (s *Shell) newPage(args []string) error {
	count := 1
	switch len(args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return ErrUsage
		}
		count = n
	default:
		return ErrUsage
	}
	v, err := bufferpool.NewPageView(s.pool, count)
	if err != nil {
		return err
	}
	s.track(v)
	fmt.Fprintf(s.out, "new page %d (run of %d, pinned)\n", v.ID(), count)
	return nil
}

func (s *Shell) free(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parsePageID(args[0])
	if err != nil {
		return err
	}
	if err := s.pool.FreePage(id); err != nil {
		return err
	}
	// The frame was reset together with any pin the session held on it.
	delete(s.held, id)
	fmt.Fprintf(s.out, "freed page %d\n", id)
	return nil
}

func (s *Shell) flush(args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parsePageID(args[0])
	if err != nil {
		return err
	}
	if err := s.pool.FlushPage(id); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "flushed page %d\n", id)
	return nil
}

func (s *Shell) flushAll(args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := s.pool.FlushAll(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "flushed all frames")
	return nil
}

func (s *Shell) read(args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	id, err := parsePageID(args[0])
	if err != nil {
		return err
	}
	off, err1 := strconv.Atoi(args[1])
	n, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		return ErrUsage
	}
	v, err := s.latest(id)
	if err != nil {
		return err
	}
	return v.Page().Dump(s.out, off, n)
}

func (s *Shell) write(args []string) error {
	if len(args) < 3 {
		return ErrUsage
	}
	id, err := parsePageID(args[0])
	if err != nil {
		return err
	}
	off, err := strconv.Atoi(args[1])
	if err != nil {
		return ErrUsage
	}
	v, err := s.latest(id)
	if err != nil {
		return err
	}
	text := strings.Join(args[2:], " ")
	if err := v.Page().SetBytes(off, []byte(text)); err != nil {
		return err
	}
	v.MarkDirty()
	fmt.Fprintf(s.out, "wrote %d bytes to page %d at %d\n", len(text), id, off)
	return nil
}

func (s *Shell) frames(args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return s.pool.DumpFrames(s.out)
}

func (s *Shell) stats(args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	st := s.pool.Stats()
	fmt.Fprintf(s.out, "frames=%d unpinned=%d hits=%d misses=%d reads=%d writes=%d evictions=%d hit_ratio=%.2f\n",
		s.pool.NumBuffers(), s.pool.NumUnpinnedBuffers(),
		st.Hits, st.Misses, st.Reads, st.Writes, st.Evictions, st.HitRatio())
	return nil
}

func (s *Shell) help(_ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(s.out, "  %-30s %s\n", c.usage, c.help)
	}
	return nil
}

func parsePageID(s string) (storage.PageID, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return storage.InvalidPageID, errors.Wrapf(ErrUsage, "bad page id %q", s)
	}
	return storage.PageID(n), nil
}
