// Package usi implements the USI protocol session controller: the single
// goroutine that owns stdin/stdout, tracks search state, and turns a `go`
// command into a worker run whose result eventually reaches the GUI as
// exactly one `bestmove` line, however that search actually ends.
package usi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/hailam/shogi-usi/internal/search"
	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/storage"
	"github.com/hailam/shogi-usi/internal/telemetry"
	"github.com/hailam/shogi-usi/internal/tuning"
)

// searchSession is the per-`go` bookkeeping shared between the worker
// collector goroutine and a concurrent `stop` handler. Exactly one
// bestmove is ever emitted through it, guarded by emitOnce.
type searchSession struct {
	id      SearchID
	limits  search.UCILimits
	ply     int
	toMove  shogi.Color

	mu              sync.Mutex
	committedMove   shogi.Move
	committedPonder shogi.Move
	committedDepth  int
	committedScore  int

	emitOnce sync.Once
	done     chan struct{}
}

func newSearchSession(id SearchID, limits search.UCILimits, ply int, toMove shogi.Color) *searchSession {
	return &searchSession{
		id:     id,
		limits: limits,
		ply:    ply,
		toMove: toMove,
		done:   make(chan struct{}),
	}
}

func (s *searchSession) setCommitted(move, ponder shogi.Move, depth, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committedMove, s.committedPonder, s.committedDepth, s.committedScore = move, ponder, depth, score
}

func (s *searchSession) committed() (move, ponder shogi.Move, depth, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committedMove, s.committedPonder, s.committedDepth, s.committedScore
}

// Controller is the USI session: one instance per engine process, driven
// by Run over stdin, writing USI protocol lines to out (stdout in
// production, a buffer in tests).
type Controller struct {
	tp    *tuning.Params
	opts  *OptionTable
	cache *storage.Cache
	log   logr.Logger
	metrics *telemetry.SearchMetrics

	out   io.Writer
	outMu sync.Mutex

	engMu           sync.Mutex
	eng             *search.Engine
	appliedHashMB   int
	appliedEvalFile string

	posMu            sync.Mutex
	posPoisoned      bool
	position         *shogi.Position
	posHashes        []uint64
	posChecks        []bool
	lastPositionArgs []string

	state           atomic.Int32
	searchIDCounter atomic.Uint64

	sessMu  sync.Mutex
	session *searchSession
	cancel  context.CancelFunc
}

// NewController builds a session controller around an already-constructed
// search engine. cache may be nil, in which case NNUE weight loads always
// hit disk and tuning overrides are never persisted across restarts.
func NewController(eng *search.Engine, tp *tuning.Params, cache *storage.Cache, out io.Writer) *Controller {
	c := &Controller{
		tp:            tp,
		opts:          NewOptionTable(tp),
		cache:         cache,
		log:           telemetry.Logger(),
		metrics:       telemetry.NewSearchMetrics(),
		out:           out,
		eng:           eng,
		appliedHashMB: defaultHashMB,
		position:      shogi.StartPosition(),
	}
	c.posHashes = []uint64{c.position.Hash}
	c.posChecks = []bool{c.position.InCheck()}
	c.state.Store(int32(Idle))

	if cache != nil {
		overrides, err := cache.LoadTuningOverrides()
		if err != nil {
			c.log.Error(err, "load persisted tuning overrides, starting from defaults")
		}
		for name, v := range overrides {
			tuning.SetByName(tp, name, v)
		}
	}
	return c
}

func (c *Controller) println(format string, args ...interface{}) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Run reads USI commands from r until quit or EOF.
func (c *Controller) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "usi":
			c.handleUSI()
		case "isready":
			c.handleIsReady()
		case "setoption":
			c.handleSetOption(args)
		case "usinewgame":
			c.handleUSINewGame()
		case "position":
			c.handlePosition(args)
		case "go":
			c.handleGo(args)
		case "stop":
			c.handleStop()
		case "ponderhit":
			c.handlePonderHit()
		case "gameover":
			c.handleGameOver(args)
		case "quit":
			c.handleQuit()
			return nil
		default:
			c.log.V(1).Info("unrecognized command", "cmd", cmd)
		}
	}
	return scanner.Err()
}

func (c *Controller) handleUSI() {
	c.println("id name ShogiUSI")
	c.println("id author hailam")
	for _, l := range c.opts.Lines() {
		c.println("%s", l)
	}
	c.println("usiok")
}

func (c *Controller) handleIsReady() {
	c.applyPendingEngineOptions()
	c.println("readyok")
}

// applyPendingEngineOptions reconciles the live engine with whatever
// USI_Hash/Threads/EvalFile values setoption has accumulated. Hash and
// Threads changes require a fresh transposition table and worker pool, so
// they rebuild the engine outright rather than attempting a resize; this
// is only safe between searches, which isready and usinewgame both are by
// USI convention.
func (c *Controller) applyPendingEngineOptions() {
	c.engMu.Lock()
	defer c.engMu.Unlock()

	if c.opts.HashMB() != c.appliedHashMB || c.opts.Threads() != c.eng.Threads() {
		newEng := search.NewEngine(c.opts.Threads(), c.opts.HashMB(), c.tp)
		newEng.SetPositionHistory(c.posHashes, c.posChecks)
		if c.appliedEvalFile != "" {
			if err := c.loadEvaluator(newEng, c.appliedEvalFile); err != nil {
				c.log.Error(err, "reload evaluator after engine rebuild", "path", c.appliedEvalFile)
			}
		}
		c.eng = newEng
		c.appliedHashMB = c.opts.HashMB()
	}

	if ef := c.opts.EvalFile(); ef != "" && ef != c.appliedEvalFile {
		if err := c.loadEvaluator(c.eng, ef); err != nil {
			c.println("info string EvalFile load failed: %v", err)
			c.log.Error(err, "load EvalFile", "path", ef)
		} else {
			c.appliedEvalFile = ef
		}
	}
}

func (c *Controller) handleSetOption(args []string) {
	if len(args) == 0 || args[0] != "name" {
		c.println("info string setoption: missing name")
		return
	}
	valueIdx := -1
	for i, a := range args {
		if a == "value" {
			valueIdx = i
			break
		}
	}
	var name, value string
	if valueIdx == -1 {
		name = strings.Join(args[1:], " ")
	} else {
		name = strings.Join(args[1:valueIdx], " ")
		value = strings.Join(args[valueIdx+1:], " ")
	}
	name = strings.TrimSpace(name)

	info, recognized := c.opts.Set(name, value)
	if info != "" {
		c.println("%s", info)
	}
	if !recognized {
		c.log.Info("setoption ignored unknown option", "name", name, "value", value)
	}

	if c.cache != nil {
		overrides := make(map[string]int)
		for _, spec := range tuning.Specs(c.tp) {
			if v := spec.Value(); v != spec.Default {
				overrides[spec.Name] = v
			}
		}
		if err := c.cache.SaveTuningOverrides(overrides); err != nil {
			c.log.Error(err, "persist tuning overrides")
		}
	}
}

func (c *Controller) handleUSINewGame() {
	c.applyPendingEngineOptions()

	c.engMu.Lock()
	c.eng.Clear()
	c.engMu.Unlock()

	start := shogi.StartPosition()
	c.posMu.Lock()
	c.position = start
	c.posHashes = []uint64{start.Hash}
	c.posChecks = []bool{start.InCheck()}
	c.lastPositionArgs = nil
	c.posPoisoned = false
	c.posMu.Unlock()
}

func (c *Controller) handlePosition(args []string) {
	applied, err := applyPositionCommand(args)
	if err != nil {
		c.println("info string position error: %v", err)
		c.log.Info("position command rejected, keeping previous position", "err", err.Error())
		return
	}

	c.commitPosition(applied, args)
}

// commitPosition swaps a successfully-applied position into the shared
// fields under posMu. The fields are updated one at a time rather than as a
// single struct, so a panic partway through (a future field added here
// without updating every call site, say) would otherwise leave the position
// lock's state inconsistent without anyone noticing. The recover below
// poisons the lock instead: it nils out the position so the next
// snapshotPosition call detects it and force-replays lastPositionArgs
// rather than handing a search a half-updated position.
func (c *Controller) commitPosition(applied appliedPosition, args []string) {
	c.posMu.Lock()
	defer c.posMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			c.position = nil
			c.posPoisoned = true
			c.log.Error(fmt.Errorf("%v", r), "panic committing position, marking lock poisoned")
		}
	}()

	c.position = applied.pos
	c.posHashes = applied.hashes
	c.posChecks = applied.checks
	c.lastPositionArgs = append([]string(nil), args...)
	c.posPoisoned = false
}

// snapshotPosition returns the controller's current position and its
// associated root history, recovering from a previous position-command
// failure by replaying the last command that succeeded. A poisoned lock
// (left over from a panic mid-mutation, which MakeMove never causes on its
// own but a future caller might) is force-reset and logged rather than
// left to deadlock the session forever.
func (c *Controller) snapshotPosition() (*shogi.Position, []uint64, []bool, bool) {
	c.posMu.Lock()
	defer c.posMu.Unlock()

	if c.posPoisoned {
		c.log.Info("position lock was left poisoned, forcing reset to last known-good position")
		c.posPoisoned = false
	}

	if c.position == nil {
		if c.lastPositionArgs == nil {
			return nil, nil, nil, false
		}
		applied, err := applyPositionCommand(c.lastPositionArgs)
		if err != nil {
			c.log.Error(err, "position recovery failed, resigning")
			return nil, nil, nil, false
		}
		c.position, c.posHashes, c.posChecks = applied.pos, applied.hashes, applied.checks
	}

	return c.position.Copy(), append([]uint64(nil), c.posHashes...), append([]bool(nil), c.posChecks...), true
}

func (c *Controller) handleGo(args []string) {
	if State(c.state.Load()) != Idle {
		c.log.Info("go received while not idle, ignoring")
		return
	}

	pos, hashes, checks, ok := c.snapshotPosition()
	if !ok {
		c.emitBestMoveStandalone(shogi.NoMove, shogi.NoMove, Resign)
		return
	}

	goOpts := ParseGoOptions(args)
	limits := goOpts.ToLimits()
	numPV := c.opts.MultiPV()

	id := SearchID(c.searchIDCounter.Add(1))
	sess := newSearchSession(id, limits, pos.Ply, pos.SideToMove)
	ctx, cancel := context.WithCancel(context.Background())

	c.sessMu.Lock()
	c.session = sess
	c.cancel = cancel
	c.sessMu.Unlock()

	c.state.Store(int32(Searching))

	c.engMu.Lock()
	eng := c.eng
	eng.SetPositionHistory(hashes, checks)
	c.engMu.Unlock()

	msgCh := make(chan WorkerMessage, 64)

	go func() {
		runSearch(ctx, eng, pos, limits, pos.Ply, numPV, id, msgCh)
	}()
	go c.collectMessages(sess, msgCh, pos)
}

// collectMessages is the sole reader of a search's message stream. It
// updates the session's committed best move as iterations complete,
// forwards info lines to the GUI, and performs the natural (non-stop)
// bestmove emission once the worker reports it finished.
func (c *Controller) collectMessages(sess *searchSession, msgCh <-chan WorkerMessage, pos *shogi.Position) {
	for msg := range msgCh {
		if msg.searchID() != sess.id {
			continue
		}

		switch m := msg.(type) {
		case SearchStartedMsg:
			c.log.V(1).Info("search started", "search_id", m.ID)

		case InfoMsg:
			c.println("%s", formatInfo(m.Info, 0))
			c.metrics.RecordIteration(context.Background(), m.Info.Nodes, m.Info.NPS)

		case PartialResultMsg:
			ponder := shogi.NoMove
			if len(m.PV) > 1 {
				ponder = m.PV[1]
			}
			sess.setCommitted(m.Move, ponder, m.Depth, m.Score)

		case IterationCompleteMsg:
			// Nothing beyond what PartialResultMsg already recorded; kept
			// distinct in the protocol for ordering clarity.

		case SearchFinishedMsg:
			ponder := shogi.NoMove
			if len(m.PV) > 1 {
				ponder = m.PV[1]
			}
			sess.setCommitted(m.Move, ponder, m.Depth, m.Score)
			c.emitBestMove(sess, m.Move, ponder, SessionInSearchFinished)

		case FinishedMsg:
			if m.FromGuard {
				fallback := RandomLegalMove(pos)
				if fallback != shogi.NoMove {
					c.emitBestMove(sess, fallback, shogi.NoMove, Resign)
				} else {
					c.emitBestMove(sess, shogi.NoMove, shogi.NoMove, Resign)
				}
			}
			return

		case ErrorMsg:
			c.log.Error(m.Err, "search worker error", "search_id", m.ID)
		}
	}
}

// emitBestMove is the single sink every bestmove flows through, whichever
// path (natural finish, user stop, or a staged timeout) gets there first;
// emitOnce guarantees exactly one line is written per search.
func (c *Controller) emitBestMove(sess *searchSession, move, ponder shogi.Move, source BestMoveSource) {
	sess.emitOnce.Do(func() {
		c.finalizeSearch()

		line := "bestmove " + move.String()
		if ponder != shogi.NoMove {
			line += " ponder " + ponder.String()
		}
		c.println("%s", line)

		c.log.Info("bestmove emitted",
			"move", move.String(),
			"source", source.String(),
			"reason", source.TerminationReason().String())

		close(sess.done)
	})
}

// emitBestMoveStandalone covers the rare path where a search never starts
// at all (no usable position), so there is no searchSession to route
// through.
func (c *Controller) emitBestMoveStandalone(move, ponder shogi.Move, source BestMoveSource) {
	line := "bestmove " + move.String()
	if ponder != shogi.NoMove {
		line += " ponder " + ponder.String()
	}
	c.println("%s", line)
	c.log.Info("bestmove emitted",
		"move", move.String(),
		"source", source.String(),
		"reason", source.TerminationReason().String())
}

func (c *Controller) finalizeSearch() {
	c.state.Store(int32(Idle))
	c.sessMu.Lock()
	c.session = nil
	c.cancel = nil
	c.sessMu.Unlock()
}

func (c *Controller) handleStop() {
	prev := State(c.state.Swap(int32(StopRequested)))

	c.sessMu.Lock()
	sess := c.session
	cancel := c.cancel
	c.sessMu.Unlock()
	if sess == nil {
		c.state.Store(int32(Idle))
		return
	}

	if prev == StopRequested {
		// Already stopping from an earlier `stop`; just wait for whichever
		// timeout or natural finish gets there first instead of restarting
		// the staged wait on top of it.
		<-sess.done
		return
	}
	if prev == Idle {
		c.state.Store(int32(Idle))
		return
	}

	c.engMu.Lock()
	c.eng.Stop()
	c.engMu.Unlock()
	if cancel != nil {
		cancel()
	}

	pos, _, _, ok := c.snapshotPosition()

	move, ponder, _, _ := sess.committed()
	if ok && IsLegalNow(pos, move) {
		c.emitBestMove(sess, move, ponder, SessionOnStop)
		<-sess.done
		return
	}

	tm := search.NewTimeManager()
	tm.Init(sess.limits, sess.toMove, sess.ply)
	isByoyomi := sess.limits.Byoyomi > 0
	stage1, stage2 := stopTimeouts(isByoyomi, tm.SafetyMargin())

	select {
	case <-sess.done:
		return
	case <-time.After(stage1):
	}

	remaining := stage2 - stage1
	if remaining < 0 {
		remaining = 0
	}
	select {
	case <-sess.done:
		return
	case <-time.After(remaining):
	}

	move, ponder, _, _ = sess.committed()
	if ok && IsLegalNow(pos, move) {
		c.emitBestMove(sess, move, ponder, PartialResultTimeout)
		<-sess.done
		return
	}

	if ok {
		if fb := RandomLegalMove(pos); fb != shogi.NoMove {
			c.emitBestMove(sess, fb, shogi.NoMove, EmergencyFallbackTimeout)
			<-sess.done
			return
		}
	}
	c.emitBestMove(sess, shogi.NoMove, shogi.NoMove, ResignTimeout)
	<-sess.done
}

func (c *Controller) handlePonderHit() {
	// Ponder is accepted as an option but the pool always searches to the
	// limits it was given; there is no separate ponder budget to switch
	// out of, so ponderhit is a no-op beyond acknowledging receipt.
	c.log.V(1).Info("ponderhit")
}

func (c *Controller) handleGameOver(args []string) {
	result := "unknown"
	if len(args) > 0 {
		result = args[0]
	}
	c.log.Info("game over", "result", result)
}

func (c *Controller) handleQuit() {
	if State(c.state.Load()) != Idle {
		c.handleStop()
	}
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			c.log.Error(err, "close weight/tuning cache")
		}
	}
}
