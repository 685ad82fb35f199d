package usi

import (
	"strings"
	"testing"

	"github.com/hailam/shogi-usi/internal/tuning"
)

func TestOptionTableLinesIncludeFixedAndTuningOptions(t *testing.T) {
	ot := NewOptionTable(tuning.DefaultParams())
	lines := ot.Lines()

	want := []string{"USI_Hash", "Threads", "USI_Ponder", "MultiPV", "EvalFile"}
	for _, name := range want {
		found := false
		for _, l := range lines {
			if strings.Contains(l, "name "+name+" ") {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected an option line for %s, got %v", name, lines)
		}
	}

	if len(lines) <= len(want) {
		t.Fatalf("expected tuning options appended beyond the fixed set, got %d lines", len(lines))
	}
}

func TestOptionTableSetHashClamps(t *testing.T) {
	ot := NewOptionTable(tuning.DefaultParams())
	ot.Set("USI_Hash", "999999999")
	if ot.HashMB() != maxHashMB {
		t.Fatalf("HashMB = %d, want clamp to %d", ot.HashMB(), maxHashMB)
	}
}

func TestOptionTableSetThreadsAndMultiPV(t *testing.T) {
	ot := NewOptionTable(tuning.DefaultParams())
	ot.Set("Threads", "4")
	if ot.Threads() != 4 {
		t.Fatalf("Threads() = %d, want 4", ot.Threads())
	}
	ot.Set("MultiPV", "3")
	if ot.MultiPV() != 3 {
		t.Fatalf("MultiPV() = %d, want 3", ot.MultiPV())
	}
}

func TestOptionTableSetUnknownOptionIsReportedNotFatal(t *testing.T) {
	ot := NewOptionTable(tuning.DefaultParams())
	info, recognized := ot.Set("NotARealOption", "1")
	if recognized {
		t.Fatalf("expected an unknown option name to be unrecognized")
	}
	if info == "" {
		t.Fatalf("expected an info string reporting the unknown option")
	}
}

func TestOptionTableSetTuningOptionClampsAndReports(t *testing.T) {
	ot := NewOptionTable(tuning.DefaultParams())
	specs := tuning.Specs(ot.tp)
	if len(specs) == 0{
		t.Fatalf("expected at least one tuning spec")
	}
	name := specs[0].Name
	info, recognized := ot.Set(name, "999999999")
	if !recognized {
		t.Fatalf("expected %s to be recognized", name)
	}
	if info == "" {
		t.Fatalf("expected a clamp to be reported for an out-of-range value")
	}
}
