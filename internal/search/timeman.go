package search

import (
	"time"

	"github.com/hailam/shogi-usi/internal/shogi"
)

// UCILimits carries the time-control fields a USI go command can supply.
// Byoyomi is the per-move allotment granted once the main clock in Time is
// spent; unlike Inc it does not accumulate and is not deducted from Time.
type UCILimits struct {
	Time      [2]time.Duration // btime, wtime: remaining main-clock time for each color
	Inc       [2]time.Duration // binc, winc: Fischer increment added after each move
	Byoyomi   time.Duration    // per-move allotment once the main clock runs out
	MovesToGo int              // moves until the next time control; 0 = sudden death
	MoveTime  time.Duration    // fixed time per move, overrides every other field
	Depth     int              // maximum search depth
	Nodes     uint64           // maximum nodes to search
	Infinite  bool             // search until stopped
	Ponder    bool             // ponder mode
}

// TimeManager turns a go command's limits into an optimum/maximum search
// budget and a safety margin the session controller uses to size its
// byoyomi stop-wait timeouts.
type TimeManager struct {
	optimumTime  time.Duration
	maximumTime  time.Duration
	safetyMargin time.Duration
	startTime    time.Time
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init initializes the time manager for a new search. ply is the current
// game ply (half-move number).
func (tm *TimeManager) Init(limits UCILimits, us shogi.Color, ply int) {
	tm.startTime = time.Now()

	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
		tm.safetyMargin = limits.MoveTime
		return
	}

	if limits.Infinite || (limits.Time[us] == 0 && limits.Byoyomi == 0) {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		tm.safetyMargin = time.Hour
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]
	byoyomi := limits.Byoyomi

	if timeLeft == 0 {
		// Main clock exhausted: every move is budgeted purely out of the
		// per-move byoyomi allotment, which is replenished regardless of
		// how the previous move went.
		tm.optimumTime = byoyomi * 75 / 100
		tm.maximumTime = byoyomi - byoyomi/20
		tm.safetyMargin = byoyomi
		tm.clampMinimums()
		return
	}

	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	baseTime := timeLeft / time.Duration(mtg)
	baseTime += inc * 9 / 10
	// Byoyomi does not draw down the main clock, so most of it is free
	// time on top of the per-move share computed above.
	baseTime += byoyomi * 9 / 10

	tm.optimumTime = baseTime
	if ply < 8 {
		tm.optimumTime = baseTime * 85 / 100
	}

	maxFromOptimum := tm.optimumTime * 5
	maxFromRemaining := timeLeft*8/10 + byoyomi
	if maxFromOptimum < maxFromRemaining {
		tm.maximumTime = maxFromOptimum
	} else {
		tm.maximumTime = maxFromRemaining
	}

	safetyCeiling := timeLeft*95/100 + byoyomi
	if tm.maximumTime > safetyCeiling {
		tm.maximumTime = safetyCeiling
	}

	if byoyomi > 0 {
		tm.safetyMargin = byoyomi
	} else {
		tm.safetyMargin = timeLeft * 5 / 100
		if tm.safetyMargin > time.Second {
			tm.safetyMargin = time.Second
		}
	}

	tm.clampMinimums()
}

func (tm *TimeManager) clampMinimums() {
	if tm.optimumTime < 10*time.Millisecond {
		tm.optimumTime = 10 * time.Millisecond
	}
	if tm.maximumTime < 50*time.Millisecond {
		tm.maximumTime = 50 * time.Millisecond
	}
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the target time for this move.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

// MaximumTime returns the maximum time allowed.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// SafetyMargin returns the byoyomi-derived (or time-percentage-derived)
// cushion the session controller scales its staged stop timeouts from.
func (tm *TimeManager) SafetyMargin() time.Duration {
	return tm.safetyMargin
}

// ShouldStop returns true if we should stop searching.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.maximumTime
}

// PastOptimum returns true if we've exceeded the optimum time.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimumTime
}

// AdjustForStability adjusts time allocation based on best move stability.
// stability is the number of consecutive depths with the same best move.
func (tm *TimeManager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		tm.optimumTime = tm.optimumTime * 40 / 100
	case stability >= 4:
		tm.optimumTime = tm.optimumTime * 60 / 100
	case stability >= 2:
		tm.optimumTime = tm.optimumTime * 80 / 100
	}
}

// AdjustForInstability increases time when the best move keeps changing.
// changes is the number of best-move changes in recent depths.
func (tm *TimeManager) AdjustForInstability(changes int) {
	switch {
	case changes >= 4:
		tm.optimumTime = tm.optimumTime * 200 / 100
	case changes >= 2:
		tm.optimumTime = tm.optimumTime * 150 / 100
	default:
		return
	}
	if tm.optimumTime > tm.maximumTime {
		tm.optimumTime = tm.maximumTime
	}
}
