package storage

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// weightsKey derives a cache key from the file's path, size, and mtime so a
// replaced EvalFile invalidates the cache automatically instead of serving
// stale weights under a reused path.
func weightsKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return fmt.Sprintf("weights:%s:%d:%d", path, info.Size(), info.ModTime().UnixNano()), nil
}

// LoadWeights returns the decompressed weight blob for path, checking the
// in-memory layer before falling back to badger. ok is false on a clean
// miss in both layers; err is only set on a real I/O failure.
func (c *Cache) LoadWeights(path string) (blob []byte, ok bool, err error) {
	key, err := weightsKey(path)
	if err != nil {
		return nil, false, err
	}

	if v, hit := c.mem.Get(key); hit {
		return v, true, nil
	}

	err = c.db.View(func(txn *badger.Txn) error {
		item, gerr := txn.Get([]byte(key))
		if gerr == badger.ErrKeyNotFound {
			return nil
		}
		if gerr != nil {
			return gerr
		}
		return item.Value(func(val []byte) error {
			blob = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	if blob == nil {
		return nil, false, nil
	}

	c.mem.Set(key, blob, int64(len(blob)))
	return blob, true, nil
}

// StoreWeights writes the decompressed weight blob for path into both cache
// layers.
func (c *Cache) StoreWeights(path string, blob []byte) error {
	key, err := weightsKey(path)
	if err != nil {
		return err
	}

	c.mem.Set(key, blob, int64(len(blob)))

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), blob)
	})
}
