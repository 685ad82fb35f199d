package usi

import "time"

// stopTimeouts derives the two staged wait budgets a `stop` command uses
// when no committed best move is available yet: stage1 is the first wait
// for the in-flight search to finish on its own, and stage2 (measured from
// the start of the wait, not from stage1's end) is the hard ceiling after
// which the controller answers with whatever it has, however thin: the
// committed move, else a random legal move, else resign. No fallback is
// tried at the stage1 boundary itself; the wait simply continues.
//
// Byoyomi searches scale both budgets off the time manager's safety margin
// so a 10-second byoyomi gets noticeably more stop latitude than a 1-second
// one; everything else (fixed movetime, infinite, sudden-death search with
// no byoyomi) gets small fixed budgets since there's no larger clock
// overrun to protect against.
func stopTimeouts(isByoyomi bool, safetyMargin time.Duration) (stage1, stage2 time.Duration) {
	if !isByoyomi {
		return 100 * time.Millisecond, 150 * time.Millisecond
	}

	safetyMS := safetyMargin.Milliseconds()

	const stage1Factor = 0.5
	const totalFactor = 1.0

	var stage1Min, stage1Max int64
	if safetyMS < 800 {
		stage1Min, stage1Max = 200, 600
	} else {
		stage1Min, stage1Max = 400, 1000
	}
	stage1MS := clampInt64(int64(float64(safetyMS)*stage1Factor), stage1Min, stage1Max)

	var totalMin, totalMax int64
	if safetyMS < 1600 {
		totalMin, totalMax = 400, 1200
	} else {
		totalMin, totalMax = 800, 2000
	}
	totalMS := clampInt64(int64(float64(safetyMS)*totalFactor), totalMin, totalMax)

	if totalMS < stage1MS {
		totalMS = stage1MS
	}

	return time.Duration(stage1MS) * time.Millisecond, time.Duration(totalMS) * time.Millisecond
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
