package tuning

import "testing"

func TestSetByNameClampsToRange(t *testing.T) {
	p := DefaultParams()

	res, ok := SetByName(p, "SPSA_IIR_DEPTH_BOUNDARY", 9999)
	if !ok {
		t.Fatalf("expected known option name to be recognized")
	}
	if !res.Clamped || res.Applied != res.Max {
		t.Fatalf("expected clamp to max, got applied=%d clamped=%v", res.Applied, res.Clamped)
	}
	if p.IIRDepthBoundary != res.Max {
		t.Fatalf("field not updated: got %d, want %d", p.IIRDepthBoundary, res.Max)
	}
}

func TestSetByNameInRangeIsNotClamped(t *testing.T) {
	p := DefaultParams()

	res, ok := SetByName(p, "SPSA_NMP_REDUCTION_BASE", 12)
	if !ok {
		t.Fatalf("expected known option name to be recognized")
	}
	if res.Clamped || res.Applied != 12 {
		t.Fatalf("expected applied=12 clamped=false, got applied=%d clamped=%v", res.Applied, res.Clamped)
	}
	if p.NMPReductionBase != 12 {
		t.Fatalf("field not updated: got %d, want 12", p.NMPReductionBase)
	}
}

func TestSetByNameUnknownOption(t *testing.T) {
	p := DefaultParams()
	if _, ok := SetByName(p, "SPSA_DOES_NOT_EXIST", 1); ok {
		t.Fatalf("expected unknown option to report ok=false")
	}
}

func TestAllSpecsHaveDefaultsInRangeAndMatchParams(t *testing.T) {
	p := DefaultParams()
	for _, s := range Specs(p) {
		if s.Default < s.Min || s.Default > s.Max {
			t.Errorf("%s: default %d outside [%d, %d]", s.Name, s.Default, s.Min, s.Max)
		}
		if *s.ptr != s.Default {
			t.Errorf("%s: DefaultParams() field = %d, want spec default %d", s.Name, *s.ptr, s.Default)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := DefaultParams()
	cp := p.Clone()
	cp.NMPReductionBase = 99
	if p.NMPReductionBase == 99 {
		t.Fatalf("mutating the clone mutated the original")
	}
}
