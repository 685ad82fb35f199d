package storage

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
)

const keyTuningOverrides = "tuning_overrides"

// SaveTuningOverrides persists every SPSA_* value that differs from its
// default, so a restarted engine resumes with the last setoption values
// applied rather than falling back to tuning.DefaultParams's defaults.
func (c *Cache) SaveTuningOverrides(overrides map[string]int) error {
	data, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyTuningOverrides), data)
	})
}

// LoadTuningOverrides returns the persisted SPSA_* overrides, or an empty
// map if none were ever saved.
func (c *Cache) LoadTuningOverrides() (map[string]int, error) {
	overrides := make(map[string]int)

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyTuningOverrides))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &overrides)
		})
	})

	return overrides, err
}
