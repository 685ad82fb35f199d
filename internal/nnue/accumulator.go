package nnue

import (
	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tt"
)

// Accumulator stores L1 activations per perspective, updated incrementally
// as moves are played rather than recomputed from scratch each node.
type Accumulator struct {
	Black    [L1Size]int16
	White    [L1Size]int16
	Computed bool
}

// AccumulatorStack mirrors a search's make/unmake stack, one slot per ply,
// so Push/Pop track the accumulator alongside the position without
// recomputation on unmake.
type AccumulatorStack struct {
	stack [tt.MaxPly]Accumulator
	top   int
}

// NewAccumulatorStack returns an empty stack positioned at the root.
func NewAccumulatorStack() *AccumulatorStack {
	return &AccumulatorStack{}
}

// Push copies the current accumulator down to the next ply, ready for
// UpdateIncremental to amend in place after the move is made.
func (s *AccumulatorStack) Push() {
	if s.top < len(s.stack)-1 {
		s.stack[s.top+1] = s.stack[s.top]
		s.top++
	}
}

// Pop discards the current ply's accumulator, returning to the parent's.
func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

// Current returns the accumulator for the ply at the top of the stack.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.stack[s.top]
}

// Reset returns the stack to an empty root accumulator.
func (s *AccumulatorStack) Reset() {
	s.top = 0
	s.stack[0].Computed = false
}

// ComputeFull rebuilds acc from scratch for pos, the fallback path used on
// the first evaluation of a line and whenever a king move makes the
// incremental diff invalid.
func (acc *Accumulator) ComputeFull(pos *shogi.Position, net *Network) {
	active := GetActiveFeatures(pos)

	copy(acc.Black[:], net.L1Bias[:])
	copy(acc.White[:], net.L1Bias[:])

	for _, idx := range active[shogi.Black] {
		addWeights(&acc.Black, net.L1Weights[idx])
	}
	for _, idx := range active[shogi.White] {
		addWeights(&acc.White, net.L1Weights[idx])
	}

	acc.Computed = true
}

// UpdateIncremental amends acc for the move just made on pos (m, undo as
// returned by pos.MakeMove), falling back to ComputeFull on a king move or
// if acc had no prior state to amend.
func (acc *Accumulator) UpdateIncremental(pos *shogi.Position, m shogi.Move, undo shogi.UndoInfo, net *Network) {
	if !acc.Computed {
		acc.ComputeFull(pos, net)
		return
	}

	add, rem, refresh := ChangedFeatures(pos, m, undo)
	if refresh {
		acc.ComputeFull(pos, net)
		return
	}

	for _, idx := range rem[shogi.Black] {
		subWeights(&acc.Black, net.L1Weights[idx])
	}
	for _, idx := range add[shogi.Black] {
		addWeights(&acc.Black, net.L1Weights[idx])
	}
	for _, idx := range rem[shogi.White] {
		subWeights(&acc.White, net.L1Weights[idx])
	}
	for _, idx := range add[shogi.White] {
		addWeights(&acc.White, net.L1Weights[idx])
	}
}

func addWeights(dst *[L1Size]int16, w [L1Size]int16) {
	for i := 0; i < L1Size; i++ {
		dst[i] += w[i]
	}
}

func subWeights(dst *[L1Size]int16, w [L1Size]int16) {
	for i := 0; i < L1Size; i++ {
		dst[i] -= w[i]
	}
}
