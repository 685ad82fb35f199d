package usi

import (
	"context"
	"fmt"
	"time"

	"github.com/hailam/shogi-usi/internal/search"
	"github.com/hailam/shogi-usi/internal/shogi"
)

// runSearch drives one `go` command's worker goroutine: it owns eng.OnInfo
// for the duration of the call, translates every callback into the
// WorkerMessage stream, and guarantees a FinishedMsg is always sent last,
// even if the search panics. It must never be called concurrently with
// another runSearch sharing the same *search.Engine: the controller enforces
// that by only ever having one search in flight.
func runSearch(ctx context.Context, eng *search.Engine, pos *shogi.Position, limits search.UCILimits, ply int, numPV int, id SearchID, out chan<- WorkerMessage) {
	defer func() {
		if r := recover(); r != nil {
			out <- ErrorMsg{ID: id, Err: fmt.Errorf("search worker panic: %v", r)}
			out <- FinishedMsg{ID: id, FromGuard: true}
		}
	}()

	out <- SearchStartedMsg{ID: id, StartTime: time.Now()}

	eng.OnInfo = func(info search.Info) {
		out <- InfoMsg{ID: id, Info: info}
		var best shogi.Move
		if len(info.PV) > 0 {
			best = info.PV[0]
		}
		out <- PartialResultMsg{ID: id, Move: best, PV: info.PV, Depth: info.Depth, Score: info.Score}
		out <- IterationCompleteMsg{ID: id, Depth: info.Depth}
	}

	if numPV > 1 {
		results := eng.SearchMultiPV(ctx, pos, limits, ply, numPV)
		if len(results) == 0 {
			out <- SearchFinishedMsg{ID: id, RootHash: pos.Hash, Move: shogi.NoMove}
			out <- FinishedMsg{ID: id}
			return
		}
		primary := results[0]
		out <- SearchFinishedMsg{
			ID:       id,
			RootHash: pos.Hash,
			Move:     primary.Move,
			Score:    primary.Score,
			Depth:    primary.Depth,
			PV:       primary.PV,
		}
		out <- FinishedMsg{ID: id}
		return
	}

	move, score, depth, pv := eng.SearchWithLimits(ctx, pos, limits, ply)
	out <- SearchFinishedMsg{
		ID:       id,
		RootHash: pos.Hash,
		Move:     move,
		Score:    score,
		Depth:    depth,
		PV:       pv,
	}
	out <- FinishedMsg{ID: id}
}
