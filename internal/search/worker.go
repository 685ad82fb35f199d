package search

import (
	"sync/atomic"

	"github.com/hailam/shogi-usi/internal/history"
	"github.com/hailam/shogi-usi/internal/nnue"
	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tt"
	"github.com/hailam/shogi-usi/internal/tuning"
)

// maxRootHistory bounds how much game history a worker retains for
// repetition detection, beyond which only the most recent positions matter.
const maxRootHistory = 640

// Worker runs one search tree. Workers in a pool share the transposition
// table and, optionally, history signal, but own their position copy, PV
// table, and per-ply search stack, matching the teacher's Lazy-SMP worker
// split of shared vs. per-worker state.
type Worker struct {
	id int

	pos *shogi.Position

	hist *history.History
	tp   *tuning.Params

	nodes uint64
	pv    PVTable

	evalStack   [MaxPly]int
	searchStack [MaxPly]SearchStack

	posHistory   [MaxPly + maxRootHistory]uint64
	checkHistory [MaxPly + maxRootHistory]bool
	posHistLen   int
	rootHashes   []uint64
	rootChecks   []bool

	excludedRootMoves []shogi.Move

	tt *tt.Table

	eval *nnue.Evaluator

	stopFlag *atomic.Bool

	rootDelta int
	nmpMinPly int

	resultCh chan<- Result
}

// Result reports a completed iteration from one worker, mirroring the
// teacher's WorkerResult but carrying a shogi.Move PV.
type Result struct {
	WorkerID int
	Depth    int
	Score    int
	Move     shogi.Move
	PV       []shogi.Move
	Nodes    uint64
}

// NewWorker creates a search worker sharing t, h, and tp with the rest of
// the pool, and sig as its per-search stop flag.
func NewWorker(id int, t *tt.Table, h *history.History, tp *tuning.Params, sig *atomic.Bool) *Worker {
	return &Worker{
		id:       id,
		tt:       t,
		hist:     h,
		tp:       tp,
		stopFlag: sig,
	}
}

// SetEvaluator attaches the NNUE evaluator this worker drives via its
// Push/Pop/Update/Evaluate protocol.
func (w *Worker) SetEvaluator(e *nnue.Evaluator) { w.eval = e }

// ID returns the worker's pool index.
func (w *Worker) ID() int { return w.id }

// Nodes returns the number of nodes visited by the worker's most recent
// search.
func (w *Worker) Nodes() uint64 { return w.nodes }

// SetResultChannel sets the channel SearchDepth reports completed
// iterations on.
func (w *Worker) SetResultChannel(ch chan<- Result) { w.resultCh = ch }

// SetExcludedMoves sets the root moves to skip, used by Multi-PV to drive
// successive searches that exclude already-reported lines.
func (w *Worker) SetExcludedMoves(moves []shogi.Move) { w.excludedRootMoves = moves }

// SetRootHistory records the game's position history (for repetition
// detection) and per-position check status, most recent last.
func (w *Worker) SetRootHistory(hashes []uint64, checks []bool) {
	w.rootHashes = append(w.rootHashes[:0], hashes...)
	w.rootChecks = append(w.rootChecks[:0], checks...)
}

// SetRootDelta sets the current aspiration window width, used to scale LMR.
func (w *Worker) SetRootDelta(delta int) { w.rootDelta = delta }

// Reset clears per-search counters ahead of a new iterative-deepening run.
func (w *Worker) Reset() {
	w.nodes = 0
}

// InitSearch installs pos as the worker's dedicated position copy and seeds
// the repetition-detection buffers from the recorded root history.
func (w *Worker) InitSearch(pos *shogi.Position) {
	w.pos = pos
	if w.eval != nil {
		w.eval.Reset()
	}

	rootLen := len(w.rootHashes)
	if rootLen > maxRootHistory {
		start := rootLen - maxRootHistory
		copy(w.posHistory[:maxRootHistory], w.rootHashes[start:])
		copy(w.checkHistory[:maxRootHistory], w.rootChecks[start:])
		rootLen = maxRootHistory
	} else {
		copy(w.posHistory[:rootLen], w.rootHashes)
		copy(w.checkHistory[:rootLen], w.rootChecks)
	}
	w.posHistory[rootLen] = w.pos.Hash
	w.checkHistory[rootLen] = w.pos.InCheck()
	w.posHistLen = rootLen + 1
}

// Pos returns the worker's current position.
func (w *Worker) Pos() *shogi.Position { return w.pos }

func (w *Worker) stopped() bool { return w.stopFlag.Load() }

func (w *Worker) isExcludedRootMove(m shogi.Move) bool {
	for _, excluded := range w.excludedRootMoves {
		if m == excluded {
			return true
		}
	}
	return false
}

// evaluate returns the NNUE score for the current position from the side
// to move's perspective, adjusted by correction history.
func (w *Worker) evaluate() int {
	raw := clampEval(w.eval.Evaluate(w.pos))
	pawnHash := w.pos.PawnHash()
	minorHash := w.pos.MinorHash()
	return w.hist.ApplyCorrection(raw, w.pos.SideToMove, pawnHash, minorHash)
}

// drawScore returns the current draw value, including the jitter term that
// keeps the search from treating every drawish line identically.
func (w *Worker) drawScore() int {
	return int(w.nodes)&w.tp.DrawJitterMask + w.tp.DrawJitterOffset
}

// checkRepetition inspects the position history for sennichite (fourfold
// repetition) and perpetual check. ok reports whether a terminal score was
// determined; when ok, score is the value to return immediately, from the
// current side to move's perspective.
func (w *Worker) checkRepetition(ply int) (score int, ok bool) {
	currentHash := w.pos.Hash
	repeats := 0
	matchIdx := -1
	for i := w.posHistLen - 3; i >= 0; i -= 2 {
		if w.posHistory[i] == currentHash {
			repeats++
			if matchIdx < 0 {
				matchIdx = i
			}
			if repeats >= 3 {
				break
			}
		} else {
			continue
		}
	}
	if repeats < 3 || matchIdx < 0 {
		return 0, false
	}

	cur := w.posHistLen - 1
	usChecked := true
	for i := matchIdx; i <= cur; i += 2 {
		if !w.checkHistory[i] {
			usChecked = false
			break
		}
	}
	if usChecked {
		return MateScore - ply, true
	}

	themChecked := true
	for i := matchIdx + 1; i < cur; i += 2 {
		if !w.checkHistory[i] {
			themChecked = false
			break
		}
	}
	if themChecked && matchIdx+1 <= cur-1 {
		return -(MateScore - ply), true
	}

	return w.drawScore(), true
}

// doMove plays m, maintaining the NNUE accumulator stack and the
// repetition-detection buffers. The returned UndoInfo must be passed to
// undoMove.
func (w *Worker) doMove(ply int, m shogi.Move) shogi.UndoInfo {
	w.eval.Push()
	undo := w.pos.MakeMove(m)
	w.eval.Update(w.pos, m, undo)
	w.posHistory[w.posHistLen] = w.pos.Hash
	w.checkHistory[w.posHistLen] = w.pos.InCheck()
	w.posHistLen++
	return undo
}

func (w *Worker) undoMove(m shogi.Move, undo shogi.UndoInfo) {
	w.posHistLen--
	w.pos.UnmakeMove(m, undo)
	w.eval.Pop()
}

// SearchDepth runs one full iterative-deepening iteration at depth, seeded
// with the given aspiration window, and reports the result on the worker's
// result channel if set.
func (w *Worker) SearchDepth(depth, alpha, beta int) (shogi.Move, int) {
	score := w.negamax(depth, 0, alpha, beta, shogi.NoMove, shogi.NoMove, false)

	var best shogi.Move
	if w.pv.length[0] > 0 {
		best = w.pv.moves[0][0]
	}
	if best == shogi.NoMove && !w.stopped() {
		moves := shogi.GenerateLegalMoves(w.pos)
		if moves.Len() > 0 {
			best = moves.Get(0)
		}
	}

	if w.resultCh != nil && !w.stopped() {
		w.resultCh <- Result{
			WorkerID: w.id,
			Depth:    depth,
			Score:    score,
			Move:     best,
			PV:       w.pv.Line(),
			Nodes:    w.nodes,
		}
	}
	return best, score
}

// negamax implements the alpha-beta search core described by the
// engine's component design: mate-distance pruning, a TT probe, static
// eval with correction, razoring, futility, null-move pruning, ProbCut,
// internal iterative reduction, then a move loop carrying singular
// extension, late move reductions, and move-level futility.
func (w *Worker) negamax(depth, ply int, alpha, beta int, prevMove, excludedMove shogi.Move, cutNode bool) int {
	if ply >= MaxPly-1 {
		return w.evaluate()
	}
	if w.nodes&2047 == 0 && w.stopped() {
		return 0
	}
	w.nodes++
	w.pv.length[ply] = ply

	isPVNode := alpha < beta-1
	tp := w.tp

	// 1. Mate distance pruning.
	if ply > 0 {
		matingAlpha := -MateScore + ply
		if alpha < matingAlpha {
			alpha = matingAlpha
		}
		matingBeta := MateScore - ply - 1
		if beta > matingBeta {
			beta = matingBeta
		}
		if alpha >= beta {
			return alpha
		}

		if score, ok := w.checkRepetition(ply); ok {
			return score
		}
	}

	// 2. TT probe.
	var ttMove shogi.Move
	ttPv := false
	entry, found := w.tt.Probe(w.pos.Hash, ply)
	if found {
		ttMove = entry.Move
		ttPv = entry.PV
		ttCutoffAllowed := ply > 0 || !w.isExcludedRootMove(ttMove)
		if excludedMove == shogi.NoMove && entry.Depth >= depth && ttCutoffAllowed {
			switch entry.Bound {
			case tt.BoundExact:
				return entry.Score
			case tt.BoundLower:
				if entry.Score > alpha {
					alpha = entry.Score
				}
			case tt.BoundUpper:
				if entry.Score < beta {
					beta = entry.Score
				}
			}
			if alpha >= beta {
				return entry.Score
			}
		}
	}

	if depth <= 0 {
		return w.quiescence(ply, alpha, beta)
	}

	inCheck := w.pos.InCheck()

	// 8. Internal iterative reduction.
	if depth >= tp.IIRDepthBoundary && ttMove == shogi.NoMove && !inCheck {
		depth -= tp.IIRPriorReductionThresholdDeep
	} else if depth >= 4 && ttMove == shogi.NoMove && !inCheck {
		depth -= tp.IIRPriorReductionThresholdShallow
	}

	extension := 0
	if inCheck {
		extension = 1
	}
	if extension == 0 && depth >= 6 && ply > 0 && w.detectSeriousThreats() {
		extension = 1
	}

	// 3. Static eval, correction, improving/opponentWorsening.
	rawEval := w.evaluate()
	staticEval := rawEval
	w.evalStack[ply] = staticEval

	improving := ply >= 2 && staticEval > w.evalStack[ply-2]
	opponentWorsening := ply >= 1 && staticEval > -w.evalStack[ply-1]

	if ply >= 1 {
		priorReduction := w.searchStack[ply-1].reduction
		if priorReduction >= 3 && !opponentWorsening {
			depth++
		}
		if priorReduction >= 2 && depth >= 2 {
			if staticEval+w.evalStack[ply-1] > tp.IIREvalSumThreshold {
				depth--
			}
		}
	}
	if ply+2 < MaxPly {
		w.searchStack[ply+2].cutoffCnt = 0
	}

	// 4. Razoring.
	if depth <= 5 && !inCheck && ply > 0 && !ttPv {
		razorMargin := tp.RazoringMarginBase + tp.RazoringMarginDepth2Coeff*depth*depth
		if staticEval+razorMargin <= alpha {
			score := w.quiescence(ply, alpha, beta)
			if score <= alpha {
				return score
			}
		}
	}

	// 5. Futility pruning (return static eval).
	if depth <= 6 && !inCheck && ply > 0 && !ttPv {
		margin := tp.FutilityMarginBase * depth
		if found {
			margin -= tp.FutilityMarginTTBonus
		}
		if !improving {
			margin -= tp.FutilityImprovingScale / 1024
		}
		if opponentWorsening {
			margin -= tp.FutilityOpponentWorseningScale / 4096
		}
		if staticEval-margin >= beta {
			return staticEval
		}
	}

	// 6. Null move pruning.
	if !inCheck && depth >= 3 && ply > 0 && !ttPv && ply >= w.nmpMinPly && hasNonPawnMaterial(w.pos) {
		r := tp.NMPReductionBase + depth/tp.NMPReductionDepthDiv
		if r > depth-1 {
			r = depth - 1
		}
		if r > 0 {
			prevCheckers := w.pos.Checkers
			prevHash := w.pos.MakeNullMove()
			nullScore := -w.negamax(depth-1-r, ply+1, -beta, -beta+1, shogi.NoMove, shogi.NoMove, !cutNode)
			w.pos.UnmakeNullMove(prevHash, prevCheckers)

			if nullScore >= beta {
				if depth >= tp.NMPVerificationDepthThreshold {
					w.nmpMinPly = ply + (depth-r)*tp.NMPMinPlyUpdateNum/tp.NMPMinPlyUpdateDen
					verify := w.negamax(depth-1-r, ply, beta-1, beta, prevMove, shogi.NoMove, false)
					w.nmpMinPly = 0
					if verify >= beta {
						return nullScore
					}
				} else {
					return nullScore
				}
			}
		}
	}

	// 7. ProbCut.
	if depth >= tp.ProbCutDepthBase && !inCheck && ply > 0 && abs(beta) < MateScore-MaxPly {
		margin := tp.ProbCutBetaMarginBase
		if improving {
			margin -= tp.ProbCutBetaImprovingSub
		}
		probBeta := beta + margin
		probDepth := depth - tp.ProbCutDepthBase - (staticEval-beta)/safeDiv(tp.ProbCutDynamicReductionDiv)
		if probDepth < 1 {
			probDepth = 1
		}
		if probDepth > depth {
			probDepth = depth
		}

		captures := shogi.GenerateCaptures(w.pos)
		for i := 0; i < captures.Len(); i++ {
			capture := captures.Get(i)
			if shogi.SEE(w.pos, capture) < tp.SmallProbCutMargin {
				continue
			}
			undo := w.doMove(ply, capture)
			score := -w.negamax(probDepth, ply+1, -probBeta, -probBeta+1, capture, shogi.NoMove, !cutNode)
			w.undoMove(capture, undo)
			if score >= probBeta {
				return score
			}
		}
	}

	pruneQuietMoves := false
	if depth <= 6 && !inCheck && ply > 0 {
		if staticEval+futilityPruneMargins[depth] <= alpha {
			pruneQuietMoves = true
		}
	}

	// Singular extension setup (applied to the TT move once reached in the
	// move loop).
	singularExtension := 0
	if depth >= tp.SingularMinDepthBase && ttMove != shogi.NoMove && excludedMove == shogi.NoMove && found {
		minDepth := tp.SingularMinDepthBase
		if ttPv {
			minDepth += tp.SingularMinDepthTTPVAdd
		}
		if depth >= minDepth && entry.Depth >= depth-tp.SingularTTDepthMargin &&
			(entry.Bound == tt.BoundLower || entry.Bound == tt.BoundExact) {
			margin := tp.SingularBetaMarginBase
			if ttPv && !isPVNode {
				margin += tp.SingularBetaMarginTTPVNonPVAdd
			}
			singularBeta := entry.Score - margin*depth/safeDiv(tp.SingularBetaMarginDiv)
			singularDepth := (depth - 1) / safeDiv(tp.SingularDepthDiv)

			singularScore := w.negamax(singularDepth, ply, singularBeta-1, singularBeta, prevMove, ttMove, cutNode)

			if singularScore < singularBeta {
				ttCapture := isCaptureMove(w.pos, ttMove)
				doubleMargin := tp.SingularDoubleMarginBase
				if isPVNode {
					doubleMargin += tp.SingularDoubleMarginPVNode
				}
				if !ttCapture {
					doubleMargin += tp.SingularDoubleMarginNonTTCapture
				}
				tripleMargin := tp.SingularTripleMarginBase
				if isPVNode {
					tripleMargin += tp.SingularTripleMarginPVNode
				}
				if !ttCapture {
					tripleMargin += tp.SingularTripleMarginNonTTCapture
				}
				if ttPv {
					tripleMargin += tp.SingularTripleMarginTTPV
				}

				singularExtension = 1
				if singularScore < singularBeta-doubleMargin {
					singularExtension = 2
				}
				if singularScore < singularBeta-tripleMargin {
					singularExtension = 3
				}
			} else if entry.Score >= beta {
				singularExtension = tp.SingularNegativeExtensionTTFailHigh
			} else if cutNode {
				singularExtension = tp.SingularNegativeExtensionCutNode
			}
		}
	}

	moves := shogi.GenerateLegalMoves(w.pos)
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return w.drawScore()
	}

	ctx := continuationContext(&w.searchStack, ply)
	scores := w.hist.ScoreMoves(w.pos, moves, ply, ttMove, ctx)

	bestScore := -Infinity
	bestMove := shogi.NoMove
	bound := tt.BoundUpper
	searched := 0

	quietsTried := make([]shogi.Move, 0, moves.Len())
	capturesTried := make([]captureTry, 0, moves.Len())

	for i := 0; i < moves.Len(); i++ {
		history.PickMove(moves, scores, i)
		move := moves.Get(i)

		if ply == 0 && w.isExcludedRootMove(move) {
			continue
		}
		if move == excludedMove {
			continue
		}

		capture := isCaptureMove(w.pos, move)
		promotion := move.IsPromotion()

		if pruneQuietMoves && !capture && !promotion && bestMove != shogi.NoMove {
			continue
		}
		if capture && depth <= 7 && !inCheck && searched > 0 {
			if shogi.SEE(w.pos, move) < -20*depth {
				continue
			}
		}
		if depth <= 7 && ply > 0 && !inCheck && searched > 0 && !capture && !promotion && move != ttMove {
			threshold := lmpThreshold(depth)
			if !improving {
				threshold = threshold * 2 / 3
			}
			if searched >= threshold {
				continue
			}
		}

		movingPiece := w.pos.PieceAt(move.From())
		if move.IsDrop() {
			movingPiece = shogi.NewPiece(move.DropPiece(), w.pos.SideToMove)
		}
		moveTo := move.To()

		undo := w.doMove(ply, move)
		searched++

		w.searchStack[ply].movedPiece = movingPiece
		w.searchStack[ply].moveTo = moveTo
		w.searchStack[ply].hasMove = true

		newDepth := depth - 1 + extension
		if move == ttMove && singularExtension != 0 {
			newDepth += singularExtension
		}

		var score int
		if searched > 4 && depth >= 3 && !inCheck && !capture && !promotion {
			score = w.searchReduced(depth, ply, newDepth, alpha, beta, move, movingPiece, moveTo,
				searched, improving, ttMove, ttPv, cutNode, isPVNode)
		} else if searched == 1 {
			score = -w.negamax(newDepth, ply+1, -beta, -alpha, move, shogi.NoMove, false)
		} else {
			score = -w.negamax(newDepth, ply+1, -alpha-1, -alpha, move, shogi.NoMove, !cutNode)
			if score > alpha && score < beta {
				score = -w.negamax(newDepth, ply+1, -beta, -alpha, move, shogi.NoMove, false)
			}
		}

		w.undoMove(move, undo)

		if w.stopped() {
			return 0
		}

		if !capture && !promotion {
			quietsTried = append(quietsTried, move)
		} else if capture {
			capturesTried = append(capturesTried, captureTry{attacker: movingPiece, to: moveTo, captured: capturedKind(w.pos, move)})
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
			if extension < 2 || isPVNode {
				w.searchStack[ply].cutoffCnt++
			}
			w.updateAllStats(ply, depth, ttMove, move, movingPiece, moveTo, capture, ctx, quietsTried, capturesTried)
			w.tt.Store(w.pos.Hash, depth, tt.BoundLower, score, staticEval, ttPv, bestMove, ply)
			return score
		}
	}

	if bestMove == shogi.NoMove && bestScore == -Infinity {
		bestScore = alpha
	}

	if bound == tt.BoundExact && !inCheck && depth >= 2 {
		evalError := bestScore - rawEval
		w.hist.UpdateCorrectionPawn(w.pos.SideToMove, w.pos.PawnHash(), evalError, depth)
		w.hist.UpdateCorrectionMinor(w.pos.SideToMove, w.pos.MinorHash(), evalError, depth)
	}

	w.tt.Store(w.pos.Hash, depth, bound, bestScore, staticEval, ttPv, bestMove, ply)
	return bestScore
}

// searchReduced runs the LMR zero-window probe and the re-search escalation
// the node-kind sequence requires of late, quiet moves.
func (w *Worker) searchReduced(depth, ply, newDepth, alpha, beta int, move shogi.Move, movingPiece shogi.Piece, moveTo shogi.Square,
	moveCount int, improving bool, ttMove shogi.Move, ttPv, cutNode, isPVNode bool) int {
	tp := w.tp
	d := depth
	if d > 63 {
		d = 63
	}
	m := moveCount
	if m > 63 {
		m = 63
	}
	reduction := lmrReductions[d][m]*1024 + tp.LMRReductionBaseOffset

	if w.rootDelta > 0 && w.rootDelta < Infinity {
		delta := beta - alpha
		reduction -= delta * tp.LMRReductionDeltaScale / w.rootDelta
	}
	if !improving {
		reduction += tp.LMRReductionNonImprovingMult * 1024 / tp.LMRReductionNonImprovingDiv
	}
	if move == ttMove {
		reduction -= tp.LMRStep16TTMovePenalty
	}
	if ttPv {
		sub := tp.LMRStep16TTPVSubBase
		if isPVNode {
			sub += tp.LMRStep16TTPVSubPVNode
		}
		if cutNode {
			sub -= tp.LMRStep16TTPVSubCutNode
		}
		reduction -= sub
		reduction += tp.LMRTTPVAdd
	}
	if cutNode {
		extra := tp.LMRStep16CutNodeAdd
		if ttMove == shogi.NoMove {
			extra += tp.LMRStep16CutNodeNoTTAdd
		}
		reduction += extra
	}

	allNode := !isPVNode && !cutNode
	if allNode && depth > 2 {
		reduction += reduction / (depth + 1)
	}
	if ply+1 < MaxPly {
		cutoffCnt := w.searchStack[ply+1].cutoffCnt
		if cutoffCnt > 1 {
			extra := tp.LMRStep16CutoffCountAdd
			if allNode {
				extra += tp.LMRStep16CutoffCountAllNodeAdd
			}
			reduction += extra
		}
	}

	ctx := continuationContext(&w.searchStack, ply)
	mainHist := w.hist.ScoreQuiet(w.pos, move, ply, ctx)
	statScore := 2 * mainHist
	w.searchStack[ply].statScore = statScore
	reduction -= statScore * tp.LMRStep16StatScoreScaleNum / 8192
	reduction -= moveCount * tp.LMRStep16MoveCountMul

	r := reduction / 1024
	if r < 1 {
		r = 1
	}
	reducedDepth := newDepth - r
	if reducedDepth < 1 {
		reducedDepth = 1
	}
	w.searchStack[ply].reduction = r

	score := -w.negamax(reducedDepth, ply+1, -alpha-1, -alpha, move, shogi.NoMove, !cutNode)
	if score > alpha && reducedDepth < newDepth {
		doDeeper := score > alpha+tp.LMRResearchDeeperBase+tp.LMRResearchDeeperDepthMul*r
		doShallower := score < alpha+tp.LMRResearchShallowerThreshold
		researchDepth := newDepth
		if doDeeper {
			researchDepth = newDepth + 1
		} else if doShallower && newDepth > 1 {
			researchDepth = newDepth - 1
		}
		score = -w.negamax(researchDepth, ply+1, -alpha-1, -alpha, move, shogi.NoMove, !cutNode)
	}
	if score > alpha {
		score = -w.negamax(newDepth, ply+1, -beta, -alpha, move, shogi.NoMove, false)
	}
	return score
}

type captureTry struct {
	attacker shogi.Piece
	to       shogi.Square
	captured shogi.PieceType
}

// updateAllStats applies the fail-high bonus to the move that caused the
// cutoff and the symmetric malus to every move already tried and rejected
// at this node, across every history table that move kind touches.
func (w *Worker) updateAllStats(ply, depth int, ttMove, best shogi.Move, bestPiece shogi.Piece, bestTo shogi.Square, bestIsCapture bool,
	ctx history.ContinuationContext, quiets []shogi.Move, captures []captureTry) {
	tp := w.tp
	pawnHash := w.pos.PawnHash()

	w.hist.UpdateTTMoveHistory(ttMove != shogi.NoMove && ttMove == best)

	if bestIsCapture {
		w.hist.UpdateCaptureStat(tp, bestPiece, bestTo, capturedKindAt(w.pos, bestTo), depth, true)
	} else {
		w.hist.UpdateQuiet(tp, w.pos, best, ply, depth, ctx, true)
		w.hist.UpdatePawnHistory(pawnHash, w.pos.SideToMove, bestPiece, bestTo, history.Bonus(tp, depth))
		w.updateContinuationHistories(ply, bestPiece, bestTo, depth, true)

		for _, q := range quiets {
			if q == best {
				continue
			}
			w.hist.UpdateQuiet(tp, w.pos, q, ply, depth, ctx, false)
			qPiece := w.pos.PieceAt(q.From())
			if q.IsDrop() {
				qPiece = shogi.NewPiece(q.DropPiece(), w.pos.SideToMove)
			}
			w.hist.UpdatePawnHistory(pawnHash, w.pos.SideToMove, qPiece, q.To(), -history.Malus(tp, depth))
		}
	}

	for _, c := range captures {
		if c.attacker == bestPiece && c.to == bestTo && bestIsCapture {
			continue
		}
		w.hist.UpdateCaptureStat(tp, c.attacker, c.to, c.captured, depth, false)
	}
}

// updateContinuationHistories folds a fail-high bonus or earlier-rejection
// malus into the continuation tables at offsets 1..6 plies back.
func (w *Worker) updateContinuationHistories(ply int, piece shogi.Piece, to shogi.Square, depth int, isGood bool) {
	magnitude := history.Bonus(w.tp, depth)
	if !isGood {
		magnitude = -history.Malus(w.tp, depth)
	}
	for offset := 1; offset <= history.ContinuationOffsets; offset++ {
		src := ply - offset
		if src < 0 || !w.searchStack[src].hasMove {
			break
		}
		ss := &w.searchStack[src]
		w.hist.UpdateContinuation(offset, ss.movedPiece, piece, ss.moveTo, to, magnitude)
	}
}

// detectSeriousThreats flags positions where the side to move has a piece
// hanging to an enemy attack and undefended, used as a lightweight extension
// trigger in place of a full SEE-based threat scan every node.
func (w *Worker) detectSeriousThreats() bool {
	pos := w.pos
	us := pos.SideToMove
	them := us.Other()

	ourPieces := pos.Occupied[us].AndNot(shogi.SquareBB(pos.KingSquare[us]))
	threatened := false
	ourPieces.ForEach(func(sq shogi.Square) {
		if threatened {
			return
		}
		piece := pos.PieceAt(sq)
		if qsPieceValue[piece.Kind().Unpromote()] < 500 {
			return
		}
		attackers := shogi.AttackersTo(pos, sq, them)
		if attackers.IsEmpty() {
			return
		}
		defenders := shogi.AttackersTo(pos, sq, us).Clear(sq)
		if defenders.IsEmpty() {
			threatened = true
		}
	})
	return threatened
}

func hasNonPawnMaterial(pos *shogi.Position) bool {
	us := pos.SideToMove
	for kind := shogi.Lance; kind < shogi.NumPieceTypes; kind++ {
		if kind == shogi.King {
			continue
		}
		if !pos.Pieces[us][shogi.PieceType(kind)].IsEmpty() {
			return true
		}
	}
	return false
}

func isCaptureMove(pos *shogi.Position, m shogi.Move) bool {
	return !m.IsDrop() && pos.PieceAt(m.To()) != shogi.NoPiece
}

func capturedKind(pos *shogi.Position, m shogi.Move) shogi.PieceType {
	return pos.PieceAt(m.To()).Kind().Unpromote()
}

func capturedKindAt(pos *shogi.Position, sq shogi.Square) shogi.PieceType {
	p := pos.PieceAt(sq)
	if p == shogi.NoPiece {
		return shogi.NoPieceType
	}
	return p.Kind().Unpromote()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// safeDiv guards a tunable divisor field against being set to zero by a
// tuning harness, which would otherwise panic the search.
func safeDiv(v int) int {
	if v == 0 {
		return 1
	}
	return v
}

var lmpTable = [8]int{0, 3, 5, 9, 14, 20, 27, 35}

// futilityPruneMargins bounds the node-level "are quiet moves hopeless
// here" check used ahead of the move loop, indexed by remaining depth.
var futilityPruneMargins = [7]int{0, 200, 300, 500, 700, 900, 1100}

func lmpThreshold(depth int) int {
	if depth < 0 {
		return lmpTable[0]
	}
	if depth >= len(lmpTable) {
		return lmpTable[len(lmpTable)-1]
	}
	return lmpTable[depth]
}
