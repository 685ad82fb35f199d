package history

import (
	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tuning"
)

// Move ordering priority bands, mirroring the teacher's scoreMove ladder
// (TT move, good captures, killers, quiets, bad captures) with bands
// inserted for the counter-move and continuation-history signals shogi's
// richer history set adds.
const (
	ttMoveScore      = 10_000_000
	goodCaptureBase  = 1_000_000
	killerScore1     = 900_000
	killerScore2     = 800_000
	counterMoveScore = 750_000
	badCaptureBase   = -1_000_000
)

// pieceValue gives a coarse material value per base PieceType, used only
// for MVV-LVA ordering (not for eval). Promoted kinds are unpromoted
// first by the caller.
var pieceValue = [shogi.NumPieceTypes]int{
	shogi.Pawn:   1,
	shogi.Lance:  3,
	shogi.Knight: 4,
	shogi.Silver: 5,
	shogi.Gold:   6,
	shogi.Bishop: 8,
	shogi.Rook:   10,
	shogi.King:   0,
}

// mvvLva scores victim-attacker pairs: higher victim value and lower
// attacker value search first.
func mvvLvaScore(victim, attacker shogi.PieceType) int {
	return pieceValue[victim.Unpromote()]*10 - pieceValue[attacker.Unpromote()]
}

// ContinuationContext carries the (piece, to) of the moves played at each
// of the ContinuationOffsets prior plies, innermost (1 ply back) first.
// A slot whose Piece is shogi.NoPiece means that ply is out of range
// (near the root) and is skipped.
type ContinuationContext struct {
	Piece [ContinuationOffsets]shogi.Piece
	To    [ContinuationOffsets]shogi.Square
}

// ScoreQuiet returns the ordering score for a non-capturing quiet move
// (board move or drop) already known not to be the TT move.
func (h *History) ScoreQuiet(pos *shogi.Position, m shogi.Move, ply int, ctx ContinuationContext) int {
	k1, k2 := h.Killers(ply)
	if m == k1 {
		return killerScore1
	}
	if m == k2 {
		return killerScore2
	}

	var piece shogi.Piece
	var to shogi.Square
	if m.IsDrop() {
		piece = shogi.NewPiece(m.DropPiece(), pos.SideToMove)
		to = m.To()
	} else {
		piece = pos.PieceAt(m.From())
		to = m.To()
	}

	if ctx.Piece[0] != shogi.NoPiece && h.CounterMove(ctx.Piece[0], ctx.To[0]) == m {
		return counterMoveScore
	}

	var score int
	if m.IsDrop() {
		score = h.DropHistoryScore(pos.SideToMove, m.DropPiece(), to)
	} else {
		score = h.MainScore(pos.SideToMove, m.From(), to)
		score += h.LowPlyScore(ply, m.From(), to) / 2
	}
	for offset := 1; offset <= ContinuationOffsets; offset++ {
		prevPiece := ctx.Piece[offset-1]
		if prevPiece == shogi.NoPiece {
			continue
		}
		score += h.ContinuationScore(offset, prevPiece, piece, ctx.To[offset-1], to) / offset
	}
	return score
}

// ScoreCapture returns the ordering score for a move that captures
// capturedType with attackerPiece landing on to. seeGain is the move's
// static-exchange result: a negative value (the mover ends up behind on
// material after both sides recapture) drops the move into the bad-capture
// band below every killer and quiet move, matching the lazy move-ordering
// phases (TT, good captures, killers, quiets, bad captures) rather than
// trusting MVV-LVA alone to separate winning from losing trades.
func (h *History) ScoreCapture(attackerPiece shogi.Piece, to shogi.Square, capturedType shogi.PieceType, seeGain int) int {
	base := goodCaptureBase
	if seeGain < 0 {
		base = badCaptureBase
	}
	score := base + mvvLvaScore(capturedType, attackerPiece.Kind())*1000
	score += h.CaptureScore(attackerPiece, to, capturedType) / 4
	return score
}

// ScoreMoves assigns an ordering score to every move in moves, treating
// ttMove as the highest-priority move if present.
func (h *History) ScoreMoves(pos *shogi.Position, moves *shogi.MoveList, ply int, ttMove shogi.Move, ctx ContinuationContext) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		switch {
		case m == ttMove && ttMove != shogi.NoMove:
			scores[i] = ttMoveScore
		case isCapture(pos, m):
			attacker := moveAttackerPiece(pos, m)
			scores[i] = h.ScoreCapture(attacker, m.To(), capturedType(pos, m), shogi.SEE(pos, m))
		default:
			scores[i] = h.ScoreQuiet(pos, m, ply, ctx)
		}
	}
	return scores
}

func isCapture(pos *shogi.Position, m shogi.Move) bool {
	return !m.IsDrop() && pos.PieceAt(m.To()) != shogi.NoPiece
}

func moveAttackerPiece(pos *shogi.Position, m shogi.Move) shogi.Piece {
	if m.IsDrop() {
		return shogi.NewPiece(m.DropPiece(), pos.SideToMove)
	}
	return pos.PieceAt(m.From())
}

func capturedType(pos *shogi.Position, m shogi.Move) shogi.PieceType {
	return pos.PieceAt(m.To()).Kind().Unpromote()
}

// UpdateQuiet folds a fail-high (isBest true, the standard positive
// bonus) or an earlier-tried-and-rejected quiet move (isBest false, the
// symmetric malus) into every quiet table m touches: butterfly/drop,
// continuation at each valid offset, low-ply, and killers on a genuine
// best-move update. Callers pass depth so Bonus/Malus can scale the
// update; search supplies ctx describing the moves played at the ply
// offsets leading to this node.
func (h *History) UpdateQuiet(tp *tuning.Params, pos *shogi.Position, m shogi.Move, ply, depth int, ctx ContinuationContext, isBest bool) {
	magnitude := Bonus(tp, depth)
	if !isBest {
		magnitude = -Malus(tp, depth)
	}

	var piece shogi.Piece
	to := m.To()
	if m.IsDrop() {
		piece = shogi.NewPiece(m.DropPiece(), pos.SideToMove)
		h.UpdateDropHistory(pos.SideToMove, m.DropPiece(), to, magnitude)
	} else {
		piece = pos.PieceAt(m.From())
		h.UpdateMain(pos.SideToMove, m.From(), to, magnitude)
		h.UpdateLowPly(ply, m.From(), to, magnitude)
	}
	for offset := 1; offset <= ContinuationOffsets; offset++ {
		prevPiece := ctx.Piece[offset-1]
		if prevPiece == shogi.NoPiece {
			continue
		}
		h.UpdateContinuation(offset, prevPiece, piece, ctx.To[offset-1], to, magnitude)
	}

	if isBest {
		h.UpdateKillers(ply, m)
		if ctx.Piece[0] != shogi.NoPiece {
			h.UpdateCounterMove(ctx.Piece[0], ctx.To[0], m)
		}
	}
}

// UpdateCaptureStat folds a fail-high/rejected-capture bonus or malus
// into the capture history entry for a move that captures capturedType.
func (h *History) UpdateCaptureStat(tp *tuning.Params, attackerPiece shogi.Piece, to shogi.Square, capturedType shogi.PieceType, depth int, isBest bool) {
	magnitude := Bonus(tp, depth)
	if !isBest {
		magnitude = -Malus(tp, depth)
	}
	h.UpdateCapture(attackerPiece, to, capturedType, magnitude)
}

// SortMoves sorts moves descending by scores in place. A selection sort,
// matching the teacher's choice: realistic shogi branching (tens to a
// few hundred moves) never makes an O(n^2) sort the bottleneck, and it
// keeps moves/scores swapped in lockstep trivially.
func SortMoves(moves *shogi.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove moves the highest-scoring move at or after index into index,
// enabling lazy move-at-a-time ordering instead of a full up-front sort.
func PickMove(moves *shogi.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}
