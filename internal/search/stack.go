// Package search implements the alpha-beta search core: iterative deepening
// with aspiration windows, a negamax tree with the pruning and extension
// suite described by the engine's tuning parameters, and a capture-only
// quiescence search. It is the consumer of internal/shogi, internal/tt,
// internal/history, internal/nnue, and internal/tuning, wiring them the way
// the chess engine this package is descended from wires its own equivalents
// in internal/engine.
package search

import (
	"math"

	"github.com/hailam/shogi-usi/internal/history"
	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tt"
)

// MaxPly bounds every per-ply array in the worker; must exceed any depth
// iterative deepening can reach plus the deepest extension chain.
const MaxPly = tt.MaxPly

// Infinity is a sentinel outside any real evaluation or mate score, used as
// the initial alpha-beta window and "no score yet" marker.
const Infinity = 1 << 20

// MateScore is the score magnitude assigned to an immediate checkmate
// before the ply-to-mate bias is subtracted. Shared with tt.MateValue:
// the table's own AdjustScoreFromTT/AdjustScoreToTT only treat a stored
// score as a mate score once it crosses tt.MateValue-tt.MaxPly, so a
// worker's mate scores must live in that same range for TT-crossing mate
// distances to come out correctly adjusted.
const MateScore = tt.MateValue

// lmrReductions is a precomputed base reduction table, indexed by
// [depth][moveCount], following the logarithmic shape popularized by
// Stockfish: 21.46*log(depth)*log(moveCount)/1024. This constant shape
// itself is not tunable (internal/tuning.Params carries the additive and
// multiplicative adjustments layered on top of it, not the table itself).
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(21.46 * math.Log(float64(d)) * math.Log(float64(m)) / 1024.0)
		}
	}
}

// SearchStack carries per-ply state a worker needs for continuation-history
// lookups, hindsight depth adjustment, and cutoff-count-scaled LMR, mirroring
// the per-ply Stack array of the engine this package generalizes.
type SearchStack struct {
	movedPiece shogi.Piece
	moveTo     shogi.Square
	hasMove    bool

	statScore int
	reduction int
	cutoffCnt int
}

// PVTable stores the principal variation discovered at each ply, using the
// standard triangular layout: pv[ply] holds the continuation from ply to the
// end of the line, copied up from pv[ply+1] on every alpha improvement.
type PVTable struct {
	moves  [MaxPly][MaxPly]shogi.Move
	length [MaxPly]int
}

// Line returns the root principal variation as a plain slice.
func (t *PVTable) Line() []shogi.Move {
	n := t.length[0]
	out := make([]shogi.Move, n)
	copy(out, t.moves[0][:n])
	return out
}

// continuationContext builds a history.ContinuationContext from the search
// stack looking back from ply, skipping offsets whose ply would be at or
// before the root.
func continuationContext(stack *[MaxPly]SearchStack, ply int) history.ContinuationContext {
	var ctx history.ContinuationContext
	for offset := 1; offset <= history.ContinuationOffsets; offset++ {
		src := ply - offset
		if src < 0 || !stack[src].hasMove {
			ctx.Piece[offset-1] = shogi.NoPiece
			continue
		}
		ctx.Piece[offset-1] = stack[src].movedPiece
		ctx.To[offset-1] = stack[src].moveTo
	}
	return ctx
}
