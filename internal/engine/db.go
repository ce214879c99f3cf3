package engine

import (
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tuannm99/novapool/internal"
	"github.com/tuannm99/novapool/internal/bufferpool"
	"github.com/tuannm99/novapool/internal/storage"
)

var ErrDatabaseClosed = errors.New("novapool: database is closed")

// Database owns the disk manager and the buffer pool built from one configuration.
type Database struct {
	Config *internal.NovaPoolConfig
	Disk   storage.DiskManager
	Pool   *bufferpool.Pool

	log    *logrus.Logger
	closed bool
}

// Open builds the disk manager named by cfg.Storage.Mode and a pool in front of it.
func Open(cfg *internal.NovaPoolConfig, log *logrus.Logger) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	mode, _ := storage.GetStorageMode(cfg.Storage.Mode)
	index, _ := bufferpool.ParseIndexKind(cfg.BufferPool.Index)

	var disk storage.DiskManager
	switch mode {
	case storage.File:
		fs := storage.LocalFileSet{Dir: cfg.Storage.Workdir, Base: cfg.Storage.Base}
		dm, err := storage.OpenFileDiskManager(fs, cfg.Storage.MaxPages)
		if err != nil {
			return nil, errors.Wrap(err, "open disk manager")
		}
		disk = dm
	case storage.Memory:
		disk = storage.NewMemDiskManager(cfg.Storage.MaxPages)
	}

	pool := bufferpool.NewPool(disk, cfg.BufferPool.Frames,
		bufferpool.WithIndex(index),
		bufferpool.WithLogger(log),
	)

	log.WithFields(logrus.Fields{
		"mode":   mode.String(),
		"dir":    filepath.Clean(cfg.Storage.Workdir),
		"frames": pool.NumBuffers(),
		"index":  index.String(),
	}).Info("database opened")

	return &Database{Config: cfg, Disk: disk, Pool: pool, log: log}, nil
}

// Close flushes every dirty frame, then syncs and closes the disk manager.
// Pinned pages are flushed too; their holders must not use them afterwards.
func (db *Database) Close() error {
	if db.closed {
		return ErrDatabaseClosed
	}
	db.closed = true

	err := db.Pool.FlushAll()
	if err != nil {
		db.log.Errorf("flush on close: %v", err)
	}
	if c, ok := db.Disk.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	st := db.Pool.Stats()
	db.log.WithFields(logrus.Fields{
		"hits":      st.Hits,
		"misses":    st.Misses,
		"writes":    st.Writes,
		"evictions": st.Evictions,
	}).Info("database closed")
	return err
}

// Sync flushes dirty frames and asks the disk manager to persist its state.
func (db *Database) Sync() error {
	if db.closed {
		return ErrDatabaseClosed
	}
	if err := db.Pool.FlushAll(); err != nil {
		return err
	}
	if s, ok := db.Disk.(storage.Syncer); ok {
		return s.Sync()
	}
	return nil
}

// Destroy removes the page files named by cfg. Memory mode has nothing to remove.
// The database must not be open.
func Destroy(cfg *internal.NovaPoolConfig) error {
	mode, err := storage.GetStorageMode(cfg.Storage.Mode)
	if err != nil {
		return err
	}
	if mode != storage.File {
		return nil
	}
	return storage.RemoveFileSet(storage.LocalFileSet{Dir: cfg.Storage.Workdir, Base: cfg.Storage.Base})
}
