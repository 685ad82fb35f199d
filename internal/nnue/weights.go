package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Weight file format: a gzip-compressed stream of the fields below, in
// order. Compression matters here: FeatureDimension's hand+board feature
// space makes L1Weights the dominant cost, and it is extremely sparse in
// the sense that most rows are near-zero after training regularization.
const (
	MagicNumber = 0x53474B53 // "SKGS": Shogi Go Kifu Search
	FileVersion = 1
)

// FileHeader precedes the weight payload inside the (decompressed) stream.
type FileHeader struct {
	Magic            uint32
	Version          uint32
	FeatureDimension uint32
	L1Size           uint32
	L2Size           uint32
}

// LoadWeights reads a gzip-compressed weights file into n.
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("nnue: open weights: %w", err)
	}
	defer f.Close()
	return n.LoadWeightsFromReader(f)
}

// LoadWeightsFromReader reads a gzip-compressed weights stream into n.
func (n *Network) LoadWeightsFromReader(r io.Reader) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("nnue: open gzip stream: %w", err)
	}
	defer gz.Close()
	return n.LoadWeightsFromDecompressedReader(gz)
}

// LoadWeightsFromDecompressedReader reads the header/payload stream with no
// gzip framing, for callers that already hold the decompressed blob (an
// internal/storage cache hit, for instance) and would otherwise pay to
// regzip it just to satisfy LoadWeightsFromReader.
func (n *Network) LoadWeightsFromDecompressedReader(r io.Reader) error {
	gz := r
	var header FileHeader
	if err := binary.Read(gz, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("nnue: read header: %w", err)
	}
	if header.Magic != MagicNumber {
		return fmt.Errorf("nnue: bad magic: got %08x, want %08x", header.Magic, MagicNumber)
	}
	if header.Version != FileVersion {
		return fmt.Errorf("nnue: unsupported weights version %d", header.Version)
	}
	if int(header.FeatureDimension) != FeatureDimension {
		return fmt.Errorf("nnue: feature dimension mismatch: file has %d, expected %d", header.FeatureDimension, FeatureDimension)
	}
	if header.L1Size != L1Size || header.L2Size != L2Size {
		return fmt.Errorf("nnue: layer size mismatch: file has L1=%d L2=%d, expected L1=%d L2=%d",
			header.L1Size, header.L2Size, L1Size, L2Size)
	}

	if n.L1Weights == nil {
		n.L1Weights = make([][L1Size]int16, FeatureDimension)
	}
	for i := range n.L1Weights {
		if err := binary.Read(gz, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("nnue: read L1 weights at feature %d: %w", i, err)
		}
	}
	if err := binary.Read(gz, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("nnue: read L1 bias: %w", err)
	}
	for i := 0; i < L1Size*2; i++ {
		if err := binary.Read(gz, binary.LittleEndian, &n.L2Weights[i]); err != nil {
			return fmt.Errorf("nnue: read L2 weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(gz, binary.LittleEndian, &n.L2Bias); err != nil {
		return fmt.Errorf("nnue: read L2 bias: %w", err)
	}
	if err := binary.Read(gz, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("nnue: read output weights: %w", err)
	}
	if err := binary.Read(gz, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: read output bias: %w", err)
	}
	return nil
}

// SaveWeights writes n as a gzip-compressed weights file.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("nnue: create weights file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("nnue: open gzip writer: %w", err)
	}
	defer gz.Close()

	header := FileHeader{
		Magic:            MagicNumber,
		Version:          FileVersion,
		FeatureDimension: uint32(FeatureDimension),
		L1Size:           L1Size,
		L2Size:           L2Size,
	}
	if err := binary.Write(gz, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("nnue: write header: %w", err)
	}
	for i := range n.L1Weights {
		if err := binary.Write(gz, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("nnue: write L1 weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(gz, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("nnue: write L1 bias: %w", err)
	}
	for i := 0; i < L1Size*2; i++ {
		if err := binary.Write(gz, binary.LittleEndian, &n.L2Weights[i]); err != nil {
			return fmt.Errorf("nnue: write L2 weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(gz, binary.LittleEndian, &n.L2Bias); err != nil {
		return fmt.Errorf("nnue: write L2 bias: %w", err)
	}
	if err := binary.Write(gz, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("nnue: write output weights: %w", err)
	}
	if err := binary.Write(gz, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: write output bias: %w", err)
	}
	return nil
}
