package search

import "github.com/hailam/shogi-usi/internal/shogi"

// qsPieceValue gives each base piece type a coarse material value for
// quiescence delta pruning, independent of the NNUE network output and of
// shogi.SEE's own internal value table (unexported, and SEE wants an
// exchange estimate while this wants a plain capture-size estimate).
var qsPieceValue = [shogi.NumPieceTypes]int{
	shogi.Pawn:   100,
	shogi.Lance:  300,
	shogi.Knight: 400,
	shogi.Silver: 500,
	shogi.Gold:   600,
	shogi.Bishop: 800,
	shogi.Rook:   900,
	shogi.King:   0,
}

// qsCaptureValue estimates the material gained by playing m, used only for
// quiescence delta-pruning decisions (not for move ordering, which uses
// internal/history's MVV-LVA-plus-history scoring).
func qsCaptureValue(pos *shogi.Position, m shogi.Move) int {
	if m.IsDrop() {
		return 0
	}
	captured := pos.PieceAt(m.To())
	value := 0
	if captured != shogi.NoPiece {
		value = qsPieceValue[captured.Kind().Unpromote()]
	}
	if m.IsPromotion() {
		moving := pos.PieceAt(m.From())
		value += qsPieceValue[moving.Kind().Promote().Unpromote()] - qsPieceValue[moving.Kind()]
	}
	return value
}

// clampEval keeps a raw evaluator output strictly inside the mate-score
// window so a saturated evaluation can never be confused with a genuine
// forced mate.
func clampEval(v int) int {
	const limit = MateScore - MaxPly - 1
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
