package nnue

import (
	"golang.org/x/sys/cpu"

	"github.com/hailam/shogi-usi/internal/shogi"
)

// wideDotProduct reports whether the host can retire the L2 dot product's
// 4-way unrolled form profitably. This is a runtime guard layered on top of
// ordinary Go, not a hand-written vector kernel: it picks between two
// pure-Go loop shapes rather than switching build-tagged assembly files,
// since this package has no per-architecture variants to select between.
var wideDotProduct = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// Layer dimensions. L1 is per-perspective; Forward concatenates both
// perspectives before L2, matching the standard NNUE shape.
const (
	L1Size     = 256
	L2Size     = 32
	OutputSize = 1

	L1QuantShift = 6
	L2QuantShift = 6
	OutputScale  = 600
)

// ClampedReLU clamps a quantized activation to [0, 127].
func ClampedReLU(x int16) int8 {
	if x < 0 {
		return 0
	}
	if x > 127 {
		return 127
	}
	return int8(x)
}

// Network holds the NNUE weights. L1Weights is indexed by feature slot
// rather than a fixed array: FeatureDimension is too large to spell out as
// an array type, and most slots in a given position are inactive anyway.
type Network struct {
	L1Weights [][L1Size]int16
	L1Bias    [L1Size]int16

	L2Weights [L1Size * 2][L2Size]int8
	L2Bias    [L2Size]int32

	OutputWeights [L2Size]int8
	OutputBias    int32
}

// NewNetwork allocates a network with zeroed weights.
func NewNetwork() *Network {
	return &Network{
		L1Weights: make([][L1Size]int16, FeatureDimension),
	}
}

// InitRandom fills the network with small deterministic pseudo-random
// weights, for evaluation without a trained weights file.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 128
	}

	for i := range n.L1Weights {
		for j := 0; j < L1Size; j++ {
			n.L1Weights[i][j] = next() >> 5
		}
	}
	for i := 0; i < L1Size; i++ {
		n.L1Bias[i] = next() >> 3
	}
	clamp8 := func(v int16) int8 {
		if v > 127 {
			return 127
		}
		if v < -128 {
			return -128
		}
		return int8(v)
	}
	for i := 0; i < L1Size*2; i++ {
		for j := 0; j < L2Size; j++ {
			n.L2Weights[i][j] = clamp8(next() >> 6)
		}
	}
	for i := 0; i < L2Size; i++ {
		n.L2Bias[i] = int32(next())
	}
	for i := 0; i < L2Size; i++ {
		n.OutputWeights[i] = clamp8(next() >> 6)
	}
	n.OutputBias = int32(next()) * 100
}

// Forward computes the network output from an accumulator, returning a
// centipawn score from sideToMove's perspective.
func (n *Network) Forward(acc *Accumulator, sideToMove shogi.Color) int {
	var stmAcc, nstmAcc *[L1Size]int16
	if sideToMove == shogi.Black {
		stmAcc = &acc.Black
		nstmAcc = &acc.White
	} else {
		stmAcc = &acc.White
		nstmAcc = &acc.Black
	}

	var l1Out [L1Size * 2]int8
	for i := 0; i < L1Size; i++ {
		l1Out[i] = ClampedReLU(stmAcc[i])
		l1Out[L1Size+i] = ClampedReLU(nstmAcc[i])
	}

	var l2Out [L2Size]int8
	for i := 0; i < L2Size; i++ {
		var sum int32
		if wideDotProduct {
			sum = dotProductWide(l1Out[:], n.L2Weights, i)
		} else {
			sum = dotProductScalar(l1Out[:], n.L2Weights, i)
		}
		l2Out[i] = ClampedReLU(int16((n.L2Bias[i] + sum) >> L1QuantShift))
	}

	output := n.OutputBias
	for i := 0; i < L2Size; i++ {
		output += int32(l2Out[i]) * int32(n.OutputWeights[i])
	}

	return int(output * OutputScale >> (L2QuantShift + 8))
}

// dotProductScalar accumulates column i of weights one element at a time.
func dotProductScalar(in []int8, weights [L1Size * 2][L2Size]int8, col int) int32 {
	var sum int32
	for j := 0; j < L1Size*2; j++ {
		sum += int32(in[j]) * int32(weights[j][col])
	}
	return sum
}

// dotProductWide accumulates column i four lanes at a time into separate
// partial sums, mirroring the reduction shape a real AVX2/ASIMD kernel would
// use before the final horizontal add, so the instruction-level parallelism
// is available to the compiler even though the lanes are ordinary int32s.
func dotProductWide(in []int8, weights [L1Size * 2][L2Size]int8, col int) int32 {
	var s0, s1, s2, s3 int32
	j := 0
	for ; j+4 <= L1Size*2; j += 4 {
		s0 += int32(in[j]) * int32(weights[j][col])
		s1 += int32(in[j+1]) * int32(weights[j+1][col])
		s2 += int32(in[j+2]) * int32(weights[j+2][col])
		s3 += int32(in[j+3]) * int32(weights[j+3][col])
	}
	sum := s0 + s1 + s2 + s3
	for ; j < L1Size*2; j++ {
		sum += int32(in[j]) * int32(weights[j][col])
	}
	return sum
}
