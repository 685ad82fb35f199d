package storage

import (
	"os"
	"testing"

	"github.com/hailam/shogi-usi/internal/telemetry"
)

func TestGetDataDirCreatesDirectory(t *testing.T) {
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if dataDir == "" {
		t.Fatalf("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); err != nil {
		t.Fatalf("data directory was not created: %v", err)
	}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCacheAt(t.TempDir(), telemetry.Logger())
	if err != nil {
		t.Fatalf("NewCacheAt: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestWeightsCacheRoundTripsThroughMemoryLayer(t *testing.T) {
	c := newTestCache(t)
	weightsFile := t.TempDir() + "/weights.bin"
	if err := os.WriteFile(weightsFile, []byte("unused"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	blob := []byte{1, 2, 3, 4, 5}
	if err := c.StoreWeights(weightsFile, blob); err != nil {
		t.Fatalf("StoreWeights: %v", err)
	}

	got, ok, err := c.LoadWeights(weightsFile)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if !ok {
		t.Fatalf("expected a cache hit after StoreWeights")
	}
	if string(got) != string(blob) {
		t.Fatalf("got %v, want %v", got, blob)
	}
}

func TestWeightsCacheMissOnUnknownFile(t *testing.T) {
	c := newTestCache(t)
	weightsFile := t.TempDir() + "/weights.bin"
	if err := os.WriteFile(weightsFile, []byte("unused"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, ok, err := c.LoadWeights(weightsFile)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if ok {
		t.Fatalf("expected a cache miss on a file never stored")
	}
}

func TestWeightsCacheInvalidatesOnFileChange(t *testing.T) {
	c := newTestCache(t)
	weightsFile := t.TempDir() + "/weights.bin"
	if err := os.WriteFile(weightsFile, []byte("version one"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := c.StoreWeights(weightsFile, []byte{9, 9}); err != nil {
		t.Fatalf("StoreWeights: %v", err)
	}

	if err := os.WriteFile(weightsFile, []byte("a very different version two"), 0644); err != nil {
		t.Fatalf("WriteFile (rewrite): %v", err)
	}

	_, ok, err := c.LoadWeights(weightsFile)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if ok {
		t.Fatalf("expected a changed file (different size) to miss the cache keyed on its old stat")
	}
}

func TestTuningOverridesRoundTrip(t *testing.T) {
	c := newTestCache(t)

	empty, err := c.LoadTuningOverrides()
	if err != nil {
		t.Fatalf("LoadTuningOverrides (empty): %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no overrides before any save, got %v", empty)
	}

	overrides := map[string]int{"SPSA_NMP_REDUCTION_BASE": 12}
	if err := c.SaveTuningOverrides(overrides); err != nil {
		t.Fatalf("SaveTuningOverrides: %v", err)
	}

	got, err := c.LoadTuningOverrides()
	if err != nil {
		t.Fatalf("LoadTuningOverrides: %v", err)
	}
	if got["SPSA_NMP_REDUCTION_BASE"] != 12 {
		t.Fatalf("got %v, want SPSA_NMP_REDUCTION_BASE=12", got)
	}
}
