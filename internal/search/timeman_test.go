package search

import (
	"testing"
	"time"

	"github.com/hailam/shogi-usi/internal/shogi"
)

func TestTimeManagerFixedMoveTime(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{MoveTime: 3 * time.Second}, shogi.Black, 20)

	if tm.OptimumTime() != 3*time.Second || tm.MaximumTime() != 3*time.Second {
		t.Fatalf("fixed movetime should set optimum == maximum == movetime, got %v/%v",
			tm.OptimumTime(), tm.MaximumTime())
	}
}

func TestTimeManagerInfinite(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{Infinite: true}, shogi.Black, 1)

	if tm.MaximumTime() < time.Hour {
		t.Fatalf("infinite search should not bound maximum time, got %v", tm.MaximumTime())
	}
}

func TestTimeManagerByoyomiOnly(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{
		Time:    [2]time.Duration{0, 0},
		Byoyomi: 10 * time.Second,
	}
	tm.Init(limits, shogi.Black, 40)

	if tm.OptimumTime() <= 0 || tm.OptimumTime() >= 10*time.Second {
		t.Fatalf("byoyomi-only optimum should be a fraction of the allotment, got %v", tm.OptimumTime())
	}
	if tm.MaximumTime() >= 10*time.Second {
		t.Fatalf("byoyomi-only maximum must leave a safety cushion below the allotment, got %v", tm.MaximumTime())
	}
	if tm.SafetyMargin() != 10*time.Second {
		t.Fatalf("byoyomi-only safety margin should equal the allotment, got %v", tm.SafetyMargin())
	}
}

func TestTimeManagerMainClockWithByoyomi(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{
		Time:    [2]time.Duration{0, 60 * time.Second},
		Byoyomi: 5 * time.Second,
	}
	tm.Init(limits, shogi.White, 30)

	if tm.OptimumTime() <= 0 {
		t.Fatalf("expected a positive optimum, got %v", tm.OptimumTime())
	}
	if tm.MaximumTime() > 60*time.Second+5*time.Second {
		t.Fatalf("maximum must respect the main clock plus byoyomi ceiling, got %v", tm.MaximumTime())
	}
	if tm.SafetyMargin() != 5*time.Second {
		t.Fatalf("safety margin should track byoyomi when present, got %v", tm.SafetyMargin())
	}
}

func TestTimeManagerMainClockNoByoyomi(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{
		Time: [2]time.Duration{0, 120 * time.Second},
		Inc:  [2]time.Duration{0, time.Second},
	}
	tm.Init(limits, shogi.White, 16)

	if tm.OptimumTime() <= 0 || tm.OptimumTime() >= tm.MaximumTime() {
		t.Fatalf("expected 0 < optimum < maximum, got optimum=%v maximum=%v", tm.OptimumTime(), tm.MaximumTime())
	}
	if tm.SafetyMargin() <= 0 || tm.SafetyMargin() > time.Second {
		t.Fatalf("time-percentage safety margin should be capped at one second, got %v", tm.SafetyMargin())
	}
}

func TestTimeManagerEarlyPlyReduction(t *testing.T) {
	limits := UCILimits{Time: [2]time.Duration{0, 300 * time.Second}}

	early := NewTimeManager()
	early.Init(limits, shogi.White, 2)

	late := NewTimeManager()
	late.Init(limits, shogi.White, 20)

	if early.OptimumTime() >= late.OptimumTime() {
		t.Fatalf("an early-ply optimum should be reduced relative to a later ply at the same clock, got early=%v late=%v",
			early.OptimumTime(), late.OptimumTime())
	}
}

func TestTimeManagerStabilityAdjustments(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{Time: [2]time.Duration{0, 120 * time.Second}}, shogi.White, 20)

	optimum := tm.OptimumTime()
	tm.AdjustForStability(6)
	if tm.OptimumTime() != optimum*40/100 {
		t.Fatalf("stability>=6 should cut optimum to 40%%, got %v from base %v", tm.OptimumTime(), optimum)
	}
}

func TestTimeManagerInstabilityCapsAtMaximum(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{Time: [2]time.Duration{0, 30 * time.Second}}, shogi.White, 20)

	tm.AdjustForInstability(10)
	if tm.OptimumTime() > tm.MaximumTime() {
		t.Fatalf("instability adjustment must never push optimum past maximum, got optimum=%v maximum=%v",
			tm.OptimumTime(), tm.MaximumTime())
	}
}

func TestTimeManagerShouldStopAndPastOptimum(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{MoveTime: 5 * time.Millisecond}, shogi.Black, 1)

	if tm.ShouldStop() {
		t.Fatalf("should not report stop immediately after Init")
	}
	time.Sleep(10 * time.Millisecond)
	if !tm.ShouldStop() {
		t.Fatalf("expected ShouldStop to report true once maximum time elapses")
	}
	if !tm.PastOptimum() {
		t.Fatalf("expected PastOptimum to report true once optimum time elapses")
	}
}
