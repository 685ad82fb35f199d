package search

import (
	"sync/atomic"
	"testing"

	"github.com/hailam/shogi-usi/internal/history"
	"github.com/hailam/shogi-usi/internal/nnue"
	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tt"
	"github.com/hailam/shogi-usi/internal/tuning"
)

func newTestWorker(t *testing.T) *Worker {
	t.Helper()
	table := tt.New(4)
	hist := history.New()
	var stop atomic.Bool
	w := NewWorker(0, table, hist, tuning.DefaultParams(), &stop)

	eval, err := nnue.NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	w.SetEvaluator(eval)
	return w
}

func TestWorkerSearchDepthReturnsLegalMoveFromStart(t *testing.T) {
	w := newTestWorker(t)
	pos := shogi.StartPosition()
	w.InitSearch(pos)

	legal := shogi.GenerateLegalMoves(pos)
	legalSet := make(map[shogi.Move]bool, legal.Len())
	for i := 0; i < legal.Len(); i++ {
		legalSet[legal.Get(i)] = true
	}

	move, score := w.SearchDepth(3, -Infinity, Infinity)
	if move == shogi.NoMove {
		t.Fatalf("expected a move, got NoMove")
	}
	if !legalSet[move] {
		t.Fatalf("SearchDepth returned illegal move %v", move)
	}
	if score <= -MateScore || score >= MateScore {
		t.Fatalf("expected a bounded score from the start position, got %d", score)
	}
}

func TestWorkerFindsMateInOne(t *testing.T) {
	w := newTestWorker(t)
	// White king boxed into the 9a corner by its own gold on 9b and silver
	// on 8b; Black drops a gold on 8a, defended by Black's silver on 7b.
	// Neither the 9b gold nor the 8b silver can step to 8a, so the drop is
	// an unescapable, uncapturable mate in one.
	pos, err := shogi.FromSFEN("k8/gsS6/9/9/9/9/9/9/8K b G 1")
	if err != nil {
		t.Fatalf("FromSFEN: %v", err)
	}
	w.InitSearch(pos)

	mate := shogi.NewDrop(shogi.Gold, shogi.NewSquare(1, 0))
	move, score := w.SearchDepth(1, -Infinity, Infinity)

	if move != mate {
		t.Fatalf("expected the mating gold drop %v, got %v", mate, move)
	}
	if score != MateScore-1 {
		t.Fatalf("expected a mate-in-1 score of %d, got %d", MateScore-1, score)
	}
}

func TestWorkerDeeperSearchDoesNotWorsenScore(t *testing.T) {
	w := newTestWorker(t)
	pos := shogi.StartPosition()
	w.InitSearch(pos)

	_, shallow := w.SearchDepth(1, -Infinity, Infinity)
	w.Reset()
	w.InitSearch(pos)
	_, deep := w.SearchDepth(3, -Infinity, Infinity)

	if deep < shallow-300 {
		t.Fatalf("depth-3 score (%d) regressed far below depth-1 score (%d) from a symmetric start position",
			deep, shallow)
	}
}

func TestWorkerQuiescenceMatchesStandPatWithNoCaptures(t *testing.T) {
	w := newTestWorker(t)
	pos := shogi.StartPosition()
	w.InitSearch(pos)

	score := w.quiescence(0, -Infinity, Infinity)
	standPat := w.evaluate()
	if score != standPat {
		t.Fatalf("expected quiescence to return the stand-pat score when no captures exist, got %d want %d",
			score, standPat)
	}
}

func TestWorkerSearchStopsOnFlag(t *testing.T) {
	table := tt.New(4)
	hist := history.New()
	var stop atomic.Bool
	w := NewWorker(0, table, hist, tuning.DefaultParams(), &stop)
	eval, err := nnue.NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	w.SetEvaluator(eval)

	pos := shogi.StartPosition()
	w.InitSearch(pos)
	stop.Store(true)

	score := w.negamax(10, 0, -Infinity, Infinity, shogi.NoMove, shogi.NoMove, false)
	if score != 0 {
		t.Fatalf("expected a stopped search to bail out with score 0, got %d", score)
	}
}
