// Package history implements the move-ordering statistics tables that
// drive quiet-move ordering, pruning margins, and post-hoc eval
// correction: butterfly, continuation, capture, pawn, and low-ply
// histories, plus the killer/counter-move tables and the two correction
// histories (pawn-structure and minor-piece). Generalizes the teacher's
// single combined MoveOrderer (engine/ordering.go) into the richer table
// set a shogi search needs, split across dedicated tables per kind of
// signal rather than one flat [from][to] array.
package history

import (
	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tt"
	"github.com/hailam/shogi-usi/internal/tuning"
)

// DimPiece sizes every table indexed by shogi.Piece: valid pieces occupy
// [0, DimPiece), shogi.NoPiece itself (==DimPiece) is never indexed.
const DimPiece = int(shogi.NoPiece)

// ContinuationOffsets is how many plies back continuation history looks:
// offsets 1..6 as named by the per-node continuation-history pointers.
const ContinuationOffsets = 6

// LowPlyWindow bounds the early-ply window low-ply history applies to.
const LowPlyWindow = 4

// PawnHistorySize is the number of buckets the reduced pawn hash maps
// into for pawn_history and the pawn correction history.
const PawnHistorySize = 4096

// CorrectionHistorySize is the bucket count for both correction tables.
const CorrectionHistorySize = 16384

// Stat score tables saturate at these bounds.
const (
	StatMin = -30000
	StatMax = 30000
)

// Correction history accumulates in wider units, scaled down by
// correctionGrain before being added to a static eval, and saturates at
// CorrectionLimit after scaling.
const (
	correctionGrain = 256
	CorrectionLimit = 1024
)

type continuationBank [DimPiece][shogi.NumSquares][DimPiece][shogi.NumSquares]int16

// History owns every move-ordering and eval-correction table for one
// search. Per §5's sharing rules: used single-threaded per worker in a
// minimal configuration, or behind the caller's own synchronization in a
// multi-threaded one (the package itself performs no locking).
type History struct {
	main         [2][shogi.NumSquares][shogi.NumSquares]int16
	dropHistory  [2][shogi.NumPieceTypes][shogi.NumSquares]int16
	capture      [DimPiece][shogi.NumSquares][shogi.NumPieceTypes]int16
	continuation [ContinuationOffsets]*continuationBank
	lowPly       [LowPlyWindow][shogi.NumSquares][shogi.NumSquares]int16
	pawnHist     [PawnHistorySize][2][DimPiece][shogi.NumSquares]int16

	killers      [tt.MaxPly][2]shogi.Move
	counterMove  [DimPiece][shogi.NumSquares]shogi.Move

	correctionPawn  [2][CorrectionHistorySize]int32
	correctionMinor [2][CorrectionHistorySize]int32

	ttMoveHistory int32
}

// New allocates a zeroed history. The continuation banks are allocated
// individually (each ~10MB) rather than embedded inline, so New is the
// only place that pays for them.
func New() *History {
	h := &History{}
	for i := range h.continuation {
		h.continuation[i] = new(continuationBank)
	}
	return h
}

// NewSearch resets per-search, position-specific state (killers and
// counter-moves are stale once the root position changes) while leaving
// the longer-lived scalar tables — main/continuation/capture/low-ply/
// pawn/correction histories, and the TT-move-match signal — intact. The
// gravity update rule (applyGravity) already keeps those bounded and
// decaying, so no separate per-search halving pass is needed here, unlike
// the teacher's Clear, which halves its single flat history table on
// every call because it has no gravity term.
func (h *History) NewSearch() {
	for i := range h.killers {
		h.killers[i][0] = shogi.NoMove
		h.killers[i][1] = shogi.NoMove
	}
	for i := range h.counterMove {
		for j := range h.counterMove[i] {
			h.counterMove[i][j] = shogi.NoMove
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// applyGravity implements the gravity update rule shared by every stat
// table: h <- h + bonus - h*|bonus|/StatMax, which both moves h toward
// bonus's sign and decays it toward zero automatically as |h| approaches
// the saturation bound.
func applyGravity(h int16, bonus int) int16 {
	v := int(h)
	v += bonus - v*abs(bonus)/StatMax
	return int16(clamp(v, StatMin, StatMax))
}

// Bonus computes the fail-high reward magnitude for depth d from tp's
// stat-bonus coefficients.
func Bonus(tp *tuning.Params, depth int) int {
	return clamp(tp.StatBonusDepthMult*depth+tp.StatBonusOffset, 0, tp.StatBonusMax)
}

// Malus computes the fail-high penalty magnitude applied to earlier
// quiet/capture moves tried at depth d from tp's stat-malus coefficients.
func Malus(tp *tuning.Params, depth int) int {
	return clamp(tp.StatMalusDepthMult*depth+tp.StatMalusOffset, 0, tp.StatMalusMax)
}

// --- Killers ---

// Killers returns the two killer moves recorded at ply.
func (h *History) Killers(ply int) (shogi.Move, shogi.Move) {
	if ply < 0 || ply >= len(h.killers) {
		return shogi.NoMove, shogi.NoMove
	}
	return h.killers[ply][0], h.killers[ply][1]
}

// UpdateKillers records m as the newest killer at ply, demoting any
// existing first killer to second.
func (h *History) UpdateKillers(ply int, m shogi.Move) {
	if ply < 0 || ply >= len(h.killers) {
		return
	}
	if h.killers[ply][0] == m {
		return
	}
	h.killers[ply][1] = h.killers[ply][0]
	h.killers[ply][0] = m
}

// --- Counter moves ---

// CounterMove returns the recorded reply to (prevPiece, prevTo), or
// NoMove if none has been recorded.
func (h *History) CounterMove(prevPiece shogi.Piece, prevTo shogi.Square) shogi.Move {
	if int(prevPiece) >= DimPiece {
		return shogi.NoMove
	}
	return h.counterMove[prevPiece][prevTo]
}

// UpdateCounterMove records m as the reply to (prevPiece, prevTo).
func (h *History) UpdateCounterMove(prevPiece shogi.Piece, prevTo shogi.Square, m shogi.Move) {
	if int(prevPiece) >= DimPiece {
		return
	}
	h.counterMove[prevPiece][prevTo] = m
}

// --- Main (butterfly) history ---

// MainScore returns the quiet-move butterfly history score.
func (h *History) MainScore(c shogi.Color, from, to shogi.Square) int {
	return int(h.main[c][from][to])
}

// UpdateMain applies a signed bonus (positive on a fail-high, negative
// malus on moves tried and rejected before it) to the butterfly entry.
func (h *History) UpdateMain(c shogi.Color, from, to shogi.Square, bonus int) {
	h.main[c][from][to] = applyGravity(h.main[c][from][to], bonus)
}

// --- Drop history ---
//
// Drops have no origin square, so they cannot share main_history's
// [from][to] shape; they get their own [color][droppedType][to] table
// instead of overloading a square index with a piece-type value.

// DropHistoryScore returns the quiet-drop history score for dropping pt
// onto to.
func (h *History) DropHistoryScore(c shogi.Color, pt shogi.PieceType, to shogi.Square) int {
	return int(h.dropHistory[c][pt][to])
}

// UpdateDropHistory applies a signed bonus to the drop history entry.
func (h *History) UpdateDropHistory(c shogi.Color, pt shogi.PieceType, to shogi.Square, bonus int) {
	h.dropHistory[c][pt][to] = applyGravity(h.dropHistory[c][pt][to], bonus)
}

// --- Capture history ---

// CaptureScore returns the capture history score for a piece capturing
// capturedType on to.
func (h *History) CaptureScore(piece shogi.Piece, to shogi.Square, capturedType shogi.PieceType) int {
	if int(piece) >= DimPiece || int(capturedType) >= shogi.NumPieceTypes {
		return 0
	}
	return int(h.capture[piece][to][capturedType])
}

// UpdateCapture applies a signed bonus to the capture history entry.
func (h *History) UpdateCapture(piece shogi.Piece, to shogi.Square, capturedType shogi.PieceType, bonus int) {
	if int(piece) >= DimPiece || int(capturedType) >= shogi.NumPieceTypes {
		return
	}
	h.capture[piece][to][capturedType] = applyGravity(h.capture[piece][to][capturedType], bonus)
}

// --- Continuation history ---

// ContinuationScore returns the continuation history score for playing
// (piece, to) given that (prevPiece, prevTo) was played offset plies
// earlier (offset in [1, ContinuationOffsets]).
func (h *History) ContinuationScore(offset int, prevPiece, piece shogi.Piece, prevTo, to shogi.Square) int {
	bank := h.bank(offset)
	if bank == nil || int(prevPiece) >= DimPiece || int(piece) >= DimPiece {
		return 0
	}
	return int(bank[prevPiece][prevTo][piece][to])
}

// UpdateContinuation applies a signed bonus to the continuation entry at
// the given ply offset.
func (h *History) UpdateContinuation(offset int, prevPiece, piece shogi.Piece, prevTo, to shogi.Square, bonus int) {
	bank := h.bank(offset)
	if bank == nil || int(prevPiece) >= DimPiece || int(piece) >= DimPiece {
		return
	}
	bank[prevPiece][prevTo][piece][to] = applyGravity(bank[prevPiece][prevTo][piece][to], bonus)
}

func (h *History) bank(offset int) *continuationBank {
	if offset < 1 || offset > ContinuationOffsets {
		return nil
	}
	return h.continuation[offset-1]
}

// --- Low-ply history ---

// LowPlyScore returns the low-ply history score for (from, to) at ply,
// or 0 outside the bounded early-ply window.
func (h *History) LowPlyScore(ply int, from, to shogi.Square) int {
	if ply < 0 || ply >= LowPlyWindow {
		return 0
	}
	return int(h.lowPly[ply][from][to])
}

// UpdateLowPly applies a signed bonus to the low-ply entry at ply, a
// no-op outside the bounded window.
func (h *History) UpdateLowPly(ply int, from, to shogi.Square, bonus int) {
	if ply < 0 || ply >= LowPlyWindow {
		return
	}
	h.lowPly[ply][from][to] = applyGravity(h.lowPly[ply][from][to], bonus)
}

// --- Pawn history ---

func pawnBucket(pawnHash uint64) int {
	return int(pawnHash % PawnHistorySize)
}

// PawnHistoryScore returns the pawn-structure-conditioned quiet history
// score for (piece, to) under the given pawn hash.
func (h *History) PawnHistoryScore(pawnHash uint64, c shogi.Color, piece shogi.Piece, to shogi.Square) int {
	if int(piece) >= DimPiece {
		return 0
	}
	return int(h.pawnHist[pawnBucket(pawnHash)][c][piece][to])
}

// UpdatePawnHistory applies a signed bonus to the pawn-hash-bucketed
// quiet history entry.
func (h *History) UpdatePawnHistory(pawnHash uint64, c shogi.Color, piece shogi.Piece, to shogi.Square, bonus int) {
	if int(piece) >= DimPiece {
		return
	}
	b := pawnBucket(pawnHash)
	h.pawnHist[b][c][piece][to] = applyGravity(h.pawnHist[b][c][piece][to], bonus)
}

// --- TT-move-history (smoothed TT-move-matches-best signal) ---

const ttMoveHistoryWindow = 1024

// TTMoveHistoryScore reports the current smoothed estimate, roughly in
// [-StatMax, StatMax], of how often the TT move has matched the search's
// chosen best move.
func (h *History) TTMoveHistoryScore() int {
	return int(h.ttMoveHistory)
}

// UpdateTTMoveHistory folds in one more observation via exponential
// smoothing: a hit nudges the signal toward StatMax, a miss toward
// -StatMax, each by 1/ttMoveHistoryWindow of the remaining distance.
func (h *History) UpdateTTMoveHistory(matched bool) {
	target := -StatMax
	if matched {
		target = StatMax
	}
	h.ttMoveHistory += int32((target - int(h.ttMoveHistory)) / ttMoveHistoryWindow)
}
