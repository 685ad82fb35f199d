package usi

import "testing"

func TestStopTimeoutsNonByoyomiUsesFixedBudgets(t *testing.T) {
	s1, s2 := stopTimeouts(false, 0)
	if s1 != 100_000_000 || s2 != 150_000_000 { // 100ms / 150ms in ns
		t.Fatalf("got stage1=%v stage2=%v, want 100ms/150ms", s1, s2)
	}
}

func TestStopTimeoutsByoyomiLowSafetyClampsToFloor(t *testing.T) {
	// A tiny safety margin should clamp up to the floor of each band
	// rather than producing a near-zero wait.
	s1, s2 := stopTimeouts(true, 1_000_000) // 1ms
	if s1 != 200_000_000 {
		t.Fatalf("stage1 = %v, want 200ms floor", s1)
	}
	if s2 != 400_000_000 {
		t.Fatalf("stage2 = %v, want 400ms floor", s2)
	}
}

func TestStopTimeoutsByoyomiHighSafetyUsesHigherBand(t *testing.T) {
	// 2000ms safety margin is above both the 800ms and 1600ms band
	// boundaries, so the clamps switch to the higher ranges.
	s1, s2 := stopTimeouts(true, 2_000_000_000)
	if s1 != 1_000_000_000 { // clamp(1000ms, 400, 1000) = 1000ms ceiling
		t.Fatalf("stage1 = %v, want 1000ms ceiling", s1)
	}
	if s2 != 2_000_000_000 { // clamp(2000ms, 800, 2000) = 2000ms ceiling
		t.Fatalf("stage2 = %v, want 2000ms ceiling", s2)
	}
}

func TestStopTimeoutsByoyomiMidSafetyScalesLinearly(t *testing.T) {
	// 500ms safety margin: stage1 factor 0.5 -> 250ms, inside the
	// [200,600] band for safety<800ms, so it should pass through
	// unclamped.
	s1, _ := stopTimeouts(true, 500_000_000)
	if s1 != 250_000_000 {
		t.Fatalf("stage1 = %v, want 250ms unclamped", s1)
	}
}
