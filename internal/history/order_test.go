package history

import (
	"testing"

	"github.com/hailam/shogi-usi/internal/shogi"
)

func TestScoreCaptureDropsLosingCaptureBelowKillersAndQuiets(t *testing.T) {
	h := New()
	attacker := shogi.NewPiece(shogi.Rook, shogi.Black)

	winning := h.ScoreCapture(attacker, shogi.Square(10), shogi.Pawn, 100)
	losing := h.ScoreCapture(attacker, shogi.Square(10), shogi.Pawn, -800)

	if winning < killerScore1 {
		t.Fatalf("expected a winning capture to score above killers, got %d", winning)
	}
	if losing >= killerScore2 {
		t.Fatalf("expected a losing capture to score below killers, got %d", losing)
	}

	quiet := h.ScoreQuiet(shogi.StartPosition(), shogi.NewMove(shogi.Square(1), shogi.Square(2), false), 0, ContinuationContext{})
	if losing >= quiet {
		t.Fatalf("expected a losing capture (%d) to score below an unremarkable quiet move (%d)", losing, quiet)
	}
}

func TestScoreMovesRanksLosingCaptureBelowQuietMove(t *testing.T) {
	// A black rook can capture a white pawn that a white gold directly
	// behind it recaptures with, losing the exchange; a black king shuffle
	// is available as an ordinary quiet move in the same position.
	pos, err := shogi.FromSFEN("k8/9/4g4/4p4/9/9/9/9/4R3K b - 1")
	if err != nil {
		t.Fatalf("FromSFEN: %v", err)
	}

	rookFrom := shogi.NewSquare(4, 8)
	pawnAt := shogi.NewSquare(4, 3)
	losingCapture := shogi.NewMove(rookFrom, pawnAt, false)
	if see := shogi.SEE(pos, losingCapture); see >= 0 {
		t.Fatalf("expected the rook-for-pawn trade to be losing, SEE = %d", see)
	}

	kingFrom := shogi.NewSquare(8, 8)
	kingTo := shogi.NewSquare(7, 8)
	quietMove := shogi.NewMove(kingFrom, kingTo, false)

	h := New()
	moves := shogi.MoveList{}
	moves.Add(losingCapture)
	moves.Add(quietMove)

	scores := h.ScoreMoves(pos, &moves, 0, shogi.NoMove, ContinuationContext{})
	if scores[0] >= scores[1] {
		t.Fatalf("expected the losing capture (score %d) to rank below the quiet move (score %d)", scores[0], scores[1])
	}
}
