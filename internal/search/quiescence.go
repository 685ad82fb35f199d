package search

import (
	"github.com/hailam/shogi-usi/internal/history"
	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tt"
)

// quiescence resolves the tactical noise at the end of a branch: captures
// only when not in check, every evasion when in check, with a stand-pat
// cutoff and delta/SEE pruning keeping the tree shallow.
func (w *Worker) quiescence(ply, alpha, beta int) int {
	if ply >= MaxPly-1 {
		return w.evaluate()
	}
	if w.nodes&2047 == 0 && w.stopped() {
		return 0
	}
	w.nodes++
	w.pv.length[ply] = ply

	if score, ok := w.checkRepetition(ply); ok {
		return score
	}

	var ttMove shogi.Move
	entry, found := w.tt.Probe(w.pos.Hash, ply)
	if found {
		ttMove = entry.Move
		switch entry.Bound {
		case tt.BoundExact:
			return entry.Score
		case tt.BoundLower:
			if entry.Score >= beta {
				return entry.Score
			}
		case tt.BoundUpper:
			if entry.Score <= alpha {
				return entry.Score
			}
		}
	}

	inCheck := w.pos.InCheck()

	var bestScore, standPat int
	if !inCheck {
		standPat = w.evaluate()
		bestScore = standPat
		if standPat >= beta {
			if !found {
				w.tt.Store(w.pos.Hash, 0, tt.BoundLower, standPat, standPat, false, shogi.NoMove, ply)
			}
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	} else {
		bestScore = -Infinity
	}

	var moves *shogi.MoveList
	if inCheck {
		moves = shogi.GenerateLegalMoves(w.pos)
	} else {
		moves = shogi.GenerateCaptures(w.pos)
	}

	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return bestScore
	}

	ctx := continuationContext(&w.searchStack, ply)
	scores := w.hist.ScoreMoves(w.pos, moves, ply, ttMove, ctx)

	bestMove := shogi.NoMove
	bound := tt.BoundUpper

	bigDelta := qsPieceValue[shogi.Rook] + 200

	for i := 0; i < moves.Len(); i++ {
		history.PickMove(moves, scores, i)
		move := moves.Get(i)

		capture := isCaptureMove(w.pos, move)

		if !inCheck {
			if !capture && !move.IsPromotion() {
				continue
			}
			if standPat+qsCaptureValue(w.pos, move)+bigDelta <= alpha {
				continue
			}
			if capture && shogi.SEE(w.pos, move) < 0 {
				continue
			}
		}

		undo := w.doMove(ply, move)
		score := -w.quiescence(ply+1, -beta, -alpha)
		w.undoMove(move, undo)

		if w.stopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
			if score > alpha {
				alpha = score
				bound = tt.BoundExact
				w.pv.moves[ply][ply] = move
				for j := ply + 1; j < w.pv.length[ply+1]; j++ {
					w.pv.moves[ply][j] = w.pv.moves[ply+1][j]
				}
				w.pv.length[ply] = w.pv.length[ply+1]
			}
		}

		if score >= beta {
			bound = tt.BoundLower
			break
		}
	}

	w.tt.Store(w.pos.Hash, 0, bound, bestScore, standPat, false, bestMove, ply)
	return bestScore
}
