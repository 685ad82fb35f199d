package nnue

import "github.com/hailam/shogi-usi/internal/shogi"

// Evaluator is the search-facing NNUE evaluation interface: construct one
// per search (or reuse across searches via Reset), and call Evaluate,
// Update, Push, and Pop alongside the position's own make/unmake.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator creates an evaluator. If weightsFile is empty, the network
// is filled with small deterministic pseudo-random weights instead of
// trained parameters, which is enough to exercise search and move
// ordering without a real evaluation file.
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()

	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(0x53686f6769)
	}

	return &Evaluator{
		net:   net,
		stack: NewAccumulatorStack(),
	}, nil
}

// Evaluate returns the position's score in centipawns from the side to
// move's perspective.
func (e *Evaluator) Evaluate(pos *shogi.Position) int {
	acc := e.stack.Current()
	if !acc.Computed {
		acc.ComputeFull(pos, e.net)
	}
	return e.net.Forward(acc, pos.SideToMove)
}

// Push saves the current accumulator before a move is made.
func (e *Evaluator) Push() {
	e.stack.Push()
}

// Pop restores the accumulator after a move is unmade.
func (e *Evaluator) Pop() {
	e.stack.Pop()
}

// Refresh forces a full recomputation of the current accumulator.
func (e *Evaluator) Refresh(pos *shogi.Position) {
	e.stack.Current().ComputeFull(pos, e.net)
}

// Update incrementally amends the accumulator for a move just made on pos.
// m and undo must be the move and UndoInfo from the MakeMove call that
// produced pos's current state. Call this after Push and after the move
// has actually been applied.
func (e *Evaluator) Update(pos *shogi.Position, m shogi.Move, undo shogi.UndoInfo) {
	e.stack.Current().UpdateIncremental(pos, m, undo, e.net)
}

// Reset clears the accumulator stack, used when starting evaluation of a
// new game or a position set via the USI position command.
func (e *Evaluator) Reset() {
	e.stack.Reset()
}

// NewEvaluatorFromNetwork wraps an already-loaded network in a fresh
// evaluator with its own accumulator stack. Callers that hold weights
// decoded by some other path than NewEvaluator's file read (a persisted
// cache hit, for instance) use this instead of round-tripping through a
// temporary file.
func NewEvaluatorFromNetwork(net *Network) *Evaluator {
	return &Evaluator{
		net:   net,
		stack: NewAccumulatorStack(),
	}
}

// NewEvaluatorSharingNetwork returns an evaluator with its own accumulator
// stack that reuses other's already-loaded network weights. Weights are
// read-only after loading, so many search workers can share one in
// memory while each keeps its own thread-local accumulator stack, the way
// the search's make/unmake stack is itself per-worker.
func NewEvaluatorSharingNetwork(other *Evaluator) *Evaluator {
	return &Evaluator{
		net:   other.net,
		stack: NewAccumulatorStack(),
	}
}
