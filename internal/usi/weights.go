package usi

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/hailam/shogi-usi/internal/nnue"
	"github.com/hailam/shogi-usi/internal/search"
)

// loadEvaluator wires path's NNUE weights into eng, going through the
// controller's weight cache when one is configured. A cache hit skips
// decompression entirely; a cache miss decompresses once and stores the
// result so the next EvalFile load (or the next process start, since the
// cache is disk-backed) doesn't pay for it again.
func (c *Controller) loadEvaluator(eng *search.Engine, path string) error {
	if c.cache == nil {
		return eng.LoadEvaluator(path)
	}

	if blob, ok, err := c.cache.LoadWeights(path); err != nil {
		c.log.Error(err, "weight cache lookup failed, loading from disk", "path", path)
	} else if ok {
		net := nnue.NewNetwork()
		if err := net.LoadWeightsFromDecompressedReader(bytes.NewReader(blob)); err != nil {
			c.log.Error(err, "cached weight blob failed to decode, reloading from disk", "path", path)
		} else {
			eng.LoadEvaluatorFromNetwork(net)
			return nil
		}
	}

	blob, err := decompressWeightsFile(path)
	if err != nil {
		return err
	}
	net := nnue.NewNetwork()
	if err := net.LoadWeightsFromDecompressedReader(bytes.NewReader(blob)); err != nil {
		return fmt.Errorf("usi: decode weights %s: %w", path, err)
	}
	eng.LoadEvaluatorFromNetwork(net)

	if err := c.cache.StoreWeights(path, blob); err != nil {
		c.log.Error(err, "failed to persist decompressed weights to cache", "path", path)
	}
	return nil
}

func decompressWeightsFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("usi: open weights %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("usi: open gzip stream %s: %w", path, err)
	}
	defer gz.Close()

	blob, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("usi: decompress weights %s: %w", path, err)
	}
	return blob, nil
}
