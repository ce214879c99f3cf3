package bufferpool

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tuannm99/novapool/internal/storage"
)

var (
	ErrNoFreeFrame   = errors.New("bufferpool: no free frame available (all pinned)")
	ErrPageNotFound  = errors.New("bufferpool: page is not resident")
	ErrPageUnpinned  = errors.New("bufferpool: page is already unpinned")
	ErrPagePinned    = errors.New("bufferpool: page is pinned")
	ErrStorageIO     = errors.New("bufferpool: storage I/O failed")
	ErrInvalidPageID = errors.New("bufferpool: invalid page id")
)

// Kind classifies pool failures.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindCapacity
	KindNotFound
	KindAlreadyUnpinned
	KindStillPinned
	KindStorageIO
)

func (k Kind) String() string {
	switch k {
	case KindCapacity:
		return "capacity"
	case KindNotFound:
		return "not_found"
	case KindAlreadyUnpinned:
		return "already_unpinned"
	case KindStillPinned:
		return "still_pinned"
	case KindStorageIO:
		return "storage_io"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindCapacity:
		return ErrNoFreeFrame
	case KindNotFound:
		return ErrPageNotFound
	case KindAlreadyUnpinned:
		return ErrPageUnpinned
	case KindStillPinned:
		return ErrPagePinned
	case KindStorageIO:
		return ErrStorageIO
	default:
		return nil
	}
}

// Error is returned by every failing Pool operation except argument validation.
// errors.Is(err, ErrNoFreeFrame) and friends match on Kind; for KindStorageIO the
// disk manager's error stays reachable through Unwrap.
type Error struct {
	Op     string
	Kind   Kind
	PageID storage.PageID
	Err    error
}

func newError(op string, kind Kind, pageID storage.PageID, cause error) *Error {
	if cause == nil {
		cause = kind.sentinel()
	}
	return &Error{Op: op, Kind: kind, PageID: pageID, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "<nil>"
	}
	if e.Kind == KindStorageIO {
		return fmt.Sprintf("bufferpool: %s page %d: %v", e.Op, e.PageID, e.Err)
	}
	return fmt.Sprintf("%s (op=%s page=%d)", e.Err.Error(), e.Op, e.PageID)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsCapacity(err error) bool        { return errors.Is(err, ErrNoFreeFrame) }
func IsNotFound(err error) bool        { return errors.Is(err, ErrPageNotFound) }
func IsAlreadyUnpinned(err error) bool { return errors.Is(err, ErrPageUnpinned) }
func IsStillPinned(err error) bool     { return errors.Is(err, ErrPagePinned) }
func IsStorageIO(err error) bool       { return errors.Is(err, ErrStorageIO) }
