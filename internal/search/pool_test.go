package search

import (
	"context"
	"testing"
	"time"

	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tuning"
)

func newTestEngine(t *testing.T, workers int) *Engine {
	t.Helper()
	e := NewEngine(workers, 4, tuning.DefaultParams())
	if err := e.LoadEvaluator(""); err != nil {
		t.Fatalf("LoadEvaluator: %v", err)
	}
	return e
}

func TestEngineSearchWithLimitsReturnsLegalMove(t *testing.T) {
	e := newTestEngine(t, 2)
	pos := shogi.StartPosition()

	legal := shogi.GenerateLegalMoves(pos)
	legalSet := make(map[shogi.Move]bool, legal.Len())
	for i := 0; i < legal.Len(); i++ {
		legalSet[legal.Get(i)] = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	move, _, depth, pv := e.SearchWithLimits(ctx, pos, UCILimits{Depth: 3}, 0)
	if move == shogi.NoMove {
		t.Fatalf("expected a move from the start position, got NoMove")
	}
	if !legalSet[move] {
		t.Fatalf("SearchWithLimits returned an illegal move %v", move)
	}
	if depth < 1 {
		t.Fatalf("expected depth >= 1, got %d", depth)
	}
	if len(pv) == 0 || pv[0] != move {
		t.Fatalf("expected PV to start with the reported best move, got %v", pv)
	}
}

func TestEngineSearchRespectsNodeLimit(t *testing.T) {
	e := newTestEngine(t, 1)
	pos := shogi.StartPosition()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	move, _, _, _ := e.SearchWithLimits(ctx, pos, UCILimits{Nodes: 500}, 0)
	if move == shogi.NoMove {
		t.Fatalf("expected a move even under a small node budget")
	}
}

func TestEngineSearchMultiPVReturnsDistinctMoves(t *testing.T) {
	e := newTestEngine(t, 1)
	pos := shogi.StartPosition()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := e.SearchMultiPV(ctx, pos, UCILimits{Depth: 2}, 0, 2)
	if len(results) < 1 {
		t.Fatalf("expected at least one PV, got none")
	}
	if len(results) == 2 && results[0].Move == results[1].Move {
		t.Fatalf("expected distinct moves across PV lines, got the same move twice: %v", results[0].Move)
	}
}

func TestEngineStopHaltsSearchPromptly(t *testing.T) {
	e := newTestEngine(t, 2)
	pos := shogi.StartPosition()

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		e.SearchWithLimits(ctx, pos, UCILimits{Infinite: true}, 0)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	e.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Stop did not halt the search within the timeout")
	}
}

func TestEngineResizePreservesRootHistory(t *testing.T) {
	e := newTestEngine(t, 2)
	pos := shogi.StartPosition()
	hashes := []uint64{pos.Hash}
	checks := []bool{pos.InCheck()}
	e.SetPositionHistory(hashes, checks)

	e.Resize(3)
	if e.Threads() != 3 {
		t.Fatalf("expected 3 threads after Resize, got %d", e.Threads())
	}
	if len(e.workers[0].rootHashes) != 1 || e.workers[0].rootHashes[0] != pos.Hash {
		t.Fatalf("Resize lost the previously recorded root history")
	}
}
