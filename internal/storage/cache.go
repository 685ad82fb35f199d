package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-logr/logr"
)

// Cache wraps a badger-backed persistent store with a ristretto
// read-through layer in front of it, for values (NNUE weight blobs) large
// enough that an in-memory hit matters within one process lifetime.
type Cache struct {
	db  *badger.DB
	mem *ristretto.Cache[string, []byte]
	log logr.Logger
}

// NewCache opens (creating if needed) the badger database under the
// engine's data directory and builds the in-memory layer in front of it.
func NewCache(log logr.Logger) (*Cache, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return NewCacheAt(dbDir, log)
}

// NewCacheAt opens the cache at an explicit directory, bypassing
// GetDatabaseDir's platform-specific resolution. Exported for tests; the
// engine itself always goes through NewCache.
func NewCacheAt(dbDir string, log logr.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(dbDir).WithLogger(badgerLogr{log})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	mem, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,
		MaxCost:     64 << 20, // 64 MB of decompressed weight blobs in memory
		BufferItems: 64,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db, mem: mem, log: log}, nil
}

// Close releases both cache layers.
func (c *Cache) Close() error {
	c.mem.Close()
	return c.db.Close()
}

// badgerLogr adapts a logr.Logger to badger's four-method Logger interface.
type badgerLogr struct{ log logr.Logger }

func (b badgerLogr) Errorf(format string, args ...interface{}) {
	b.log.Error(nil, "badger", "msg", fmt.Sprintf(format, args...))
}
func (b badgerLogr) Warningf(format string, args ...interface{}) {
	b.log.Info("badger warning", "msg", fmt.Sprintf(format, args...))
}
func (b badgerLogr) Infof(format string, args ...interface{}) {
	b.log.V(1).Info("badger", "msg", fmt.Sprintf(format, args...))
}
func (b badgerLogr) Debugf(format string, args ...interface{}) {
	b.log.V(2).Info("badger", "msg", fmt.Sprintf(format, args...))
}
