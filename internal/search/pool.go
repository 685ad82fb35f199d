package search

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/shogi-usi/internal/history"
	"github.com/hailam/shogi-usi/internal/nnue"
	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tt"
	"github.com/hailam/shogi-usi/internal/tuning"
)

// Info is the aggregate the session controller turns into a USI `info`
// line: one per completed iteration across the whole pool.
type Info struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []shogi.Move
	HashFull int
	NPS      uint64
}

// PVResult is one line of a Multi-PV search.
type PVResult struct {
	Move  shogi.Move
	Score int
	PV    []shogi.Move
	Depth int
}

// Engine owns the fixed worker pool, transposition table, and shared
// move-ordering tables for one game session. It coordinates iterative
// deepening with aspiration windows across its workers the way the engine
// this package generalizes coordinates its own Lazy-SMP pool, with
// errgroup.Group standing in for that engine's WaitGroup-plus-channel
// bookkeeping so a worker panic turns into a propagated error instead of a
// silently abandoned goroutine.
type Engine struct {
	workers []*Worker
	tt      *tt.Table
	hist    *history.History
	tp      *tuning.Params
	netEval *nnue.Evaluator

	stopFlag atomic.Bool

	rootHashes []uint64
	rootChecks []bool

	// OnInfo is called once per completed iteration, from whichever
	// worker goroutine reported it; callers that touch shared state from
	// it must synchronize themselves.
	OnInfo func(Info)
}

// NewEngine builds a pool of numWorkers workers (clamped to at least 1)
// sharing one transposition table sized ttMB megabytes and one tuning set.
// Call LoadEvaluator before the first search.
func NewEngine(numWorkers, ttMB int, tp *tuning.Params) *Engine {
	if numWorkers < 1 {
		numWorkers = 1
	}
	table := tt.New(ttMB)
	hist := history.New()

	e := &Engine{
		tt:      table,
		hist:    hist,
		tp:      tp,
		workers: make([]*Worker, numWorkers),
	}
	for i := range e.workers {
		e.workers[i] = NewWorker(i, table, hist, tp, &e.stopFlag)
	}
	return e
}

// LoadEvaluator loads the NNUE network once and gives every worker its own
// accumulator stack over the same shared, read-only weights.
func (e *Engine) LoadEvaluator(weightsFile string) error {
	ev, err := nnue.NewEvaluator(weightsFile)
	if err != nil {
		return err
	}
	e.setEvaluator(ev)
	return nil
}

// LoadEvaluatorFromNetwork wires an already-loaded network into the pool,
// for a caller (the session controller's weight cache) that decoded the
// weights itself rather than asking LoadEvaluator to read the file.
func (e *Engine) LoadEvaluatorFromNetwork(net *nnue.Network) {
	e.setEvaluator(nnue.NewEvaluatorFromNetwork(net))
}

func (e *Engine) setEvaluator(ev *nnue.Evaluator) {
	e.netEval = ev
	e.workers[0].SetEvaluator(ev)
	for _, w := range e.workers[1:] {
		w.SetEvaluator(nnue.NewEvaluatorSharingNetwork(ev))
	}
}

// Threads returns the number of workers in the pool.
func (e *Engine) Threads() int { return len(e.workers) }

// Resize recreates the pool with a new worker count, preserving the
// transposition table, history, and tuning set, but discarding the loaded
// evaluator (callers must call LoadEvaluator again).
func (e *Engine) Resize(numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	e.workers = make([]*Worker, numWorkers)
	for i := range e.workers {
		w := NewWorker(i, e.tt, e.hist, e.tp, &e.stopFlag)
		w.SetRootHistory(e.rootHashes, e.rootChecks)
		e.workers[i] = w
	}
	e.netEval = nil
}

// SetPositionHistory records the game's position history (for repetition
// detection across the root) and forwards it to every worker.
func (e *Engine) SetPositionHistory(hashes []uint64, checks []bool) {
	e.rootHashes = append(e.rootHashes[:0], hashes...)
	e.rootChecks = append(e.rootChecks[:0], checks...)
	for _, w := range e.workers {
		w.SetRootHistory(hashes, checks)
	}
}

// Stop asserts the shared stop flag; every worker halts at its next
// checkpoint.
func (e *Engine) Stop() { e.stopFlag.Store(true) }

// Clear resets the transposition table and move-ordering tables for a new
// game.
func (e *Engine) Clear() {
	e.tt.Clear()
	*e.hist = *history.New()
}

// TTHashFull reports transposition table occupancy in parts-per-thousand.
func (e *Engine) TTHashFull() int { return e.tt.HashFull() }

func (e *Engine) totalNodes() uint64 {
	var total uint64
	for _, w := range e.workers {
		total += w.Nodes()
	}
	return total
}

// startDepth implements the teacher's depth-staggering heuristic: helper
// workers skip shallow iterations that the main worker (id 0) will finish
// almost instantly, so the pool's aggregate effort concentrates on depths
// worth sharing through the transposition table.
func startDepth(workerID int) int {
	switch {
	case workerID >= 6:
		return 4
	case workerID >= 3:
		return 3
	case workerID >= 1:
		return 2
	default:
		return 1
	}
}

// SearchWithLimits runs the pool's iterative-deepening search under limits
// and returns the best move, score, and depth reached, blocking until a
// stop condition fires. ply is the position's half-move number, used by
// the time manager's game-phase heuristics.
func (e *Engine) SearchWithLimits(ctx context.Context, pos *shogi.Position, limits UCILimits, ply int) (shogi.Move, int, int, []shogi.Move) {
	tm := NewTimeManager()
	tm.Init(limits, pos.SideToMove, ply)

	e.stopFlag.Store(false)
	e.tt.NewSearch()
	e.hist.NewSearch()
	for _, w := range e.workers {
		w.Reset()
	}

	maxDepth := MaxPly - 1
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	resultCh := make(chan Result, len(e.workers)*maxDepth)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range e.workers {
		w := w
		g.Go(func() error {
			e.runWorker(gctx, w, pos, maxDepth, resultCh)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(resultCh)
		close(done)
	}()

	var bestMove shogi.Move
	var bestScore, bestDepth int
	var bestPV []shogi.Move

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

resultLoop:
	for {
		select {
		case result, ok := <-resultCh:
			if !ok {
				break resultLoop
			}
			if result.Move == shogi.NoMove {
				continue
			}
			if result.Depth < bestDepth || (result.Depth == bestDepth && result.Score <= bestScore) {
				continue
			}
			bestMove, bestScore, bestDepth = result.Move, result.Score, result.Depth
			bestPV = result.PV

			if e.OnInfo != nil {
				nodes := e.totalNodes()
				elapsed := time.Since(startTime)
				e.OnInfo(Info{
					Depth:    bestDepth,
					Score:    bestScore,
					Nodes:    nodes,
					Time:     elapsed,
					PV:       result.PV,
					HashFull: e.tt.HashFull(),
					NPS:      nps(nodes, elapsed),
				})
			}

			if bestScore > MateScore-MaxPly || bestScore < -MateScore+MaxPly {
				e.stopFlag.Store(true)
			}

			if limits.Nodes > 0 && e.totalNodes() >= limits.Nodes {
				e.stopFlag.Store(true)
			}

		case <-ticker.C:
			if tm.ShouldStop() {
				e.stopFlag.Store(true)
			}

		case <-ctx.Done():
			e.stopFlag.Store(true)

		case <-done:
			break resultLoop
		}
	}

	e.stopFlag.Store(true)
	<-done
	return bestMove, bestScore, bestDepth, bestPV
}

// runWorker drives one worker's iterative deepening, applying depth
// staggering and aspiration windows around each successive score the way
// the engine this package generalizes drives its own Lazy-SMP helpers.
func (e *Engine) runWorker(ctx context.Context, w *Worker, pos *shogi.Position, maxDepth int, resultCh chan<- Result) {
	w.InitSearch(pos.Copy())
	w.SetResultChannel(resultCh)

	var prevScore int
	recentScores := make([]int, 0, 10)

	for depth := startDepth(w.ID()); depth <= maxDepth; depth++ {
		if e.stopFlag.Load() || ctx.Err() != nil {
			return
		}

		var score int

		if depth >= 5 && prevScore != 0 {
			window := aspirationWindow(w.ID(), recentScores)
			alpha := prevScore - window
			beta := prevScore + window
			w.SetRootDelta(window)
			retries := 0

			for {
				_, score = w.SearchDepth(depth, alpha, beta)
				if e.stopFlag.Load() || ctx.Err() != nil {
					return
				}

				if score <= alpha {
					retries++
					if retries >= 2 {
						alpha = -Infinity
					} else {
						alpha = prevScore - window*2
					}
				} else if score >= beta {
					retries++
					if retries >= 2 {
						beta = Infinity
					} else {
						beta = prevScore + window*2
					}
				} else {
					break
				}
				if alpha == -Infinity && beta == Infinity {
					break
				}
			}
		} else {
			w.SetRootDelta(0)
			_, score = w.SearchDepth(depth, -Infinity, Infinity)
		}

		if e.stopFlag.Load() || ctx.Err() != nil {
			return
		}

		prevScore = score
		recentScores = append(recentScores, score)
		if len(recentScores) > 10 {
			recentScores = recentScores[1:]
		}
	}
}

// aspirationWindow sizes the next iteration's window from recent score
// volatility: wide after a tactical swing, narrow on a quiet position,
// with a small per-worker stagger so helper workers don't all probe the
// exact same window.
func aspirationWindow(workerID int, recent []int) int {
	volatility := 0
	if len(recent) >= 2 {
		lo, hi := recent[0], recent[0]
		for _, s := range recent {
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
		volatility = hi - lo
	}

	var window int
	switch {
	case volatility > 400:
		window = 150 + volatility/4
	case volatility < 50:
		window = 25
	default:
		window = 50 + volatility/8
	}
	window += (workerID % 8) * 3
	return window
}

func nps(nodes uint64, elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(nodes) / elapsed.Seconds())
}

// DefaultThreads returns the engine's default pool size, matching the
// machine's available processors the way the engine this package
// generalizes sizes its own pool.
func DefaultThreads() int {
	return runtime.GOMAXPROCS(0)
}

// SearchMultiPV runs numPV successive full searches, each excluding the
// moves already reported, returning lines best-score first.
func (e *Engine) SearchMultiPV(ctx context.Context, pos *shogi.Position, limits UCILimits, ply, numPV int) []PVResult {
	if numPV < 1 {
		numPV = 1
	}

	results := make([]PVResult, 0, numPV)
	excluded := make([]shogi.Move, 0, numPV)

	for i := 0; i < numPV; i++ {
		for _, w := range e.workers {
			w.SetExcludedMoves(excluded)
		}
		move, score, depth, pv := e.SearchWithLimits(ctx, pos, limits, ply)
		for _, w := range e.workers {
			w.SetExcludedMoves(nil)
		}
		if move == shogi.NoMove {
			break
		}

		results = append(results, PVResult{
			Move:  move,
			Score: score,
			PV:    pv,
			Depth: depth,
		})
		excluded = append(excluded, move)
	}

	for i := 0; i < len(results)-1; i++ {
		best := i
		for j := i + 1; j < len(results); j++ {
			if results[j].Score > results[best].Score {
				best = j
			}
		}
		if best != i {
			results[i], results[best] = results[best], results[i]
		}
	}

	return results
}
