package nnue

import (
	"testing"

	"github.com/hailam/shogi-usi/internal/shogi"
)

func TestFeatureIndicesStayInBounds(t *testing.T) {
	pos := shogi.StartPosition()
	active := GetActiveFeatures(pos)
	for persp := 0; persp < 2; persp++ {
		if len(active[persp]) == 0 {
			t.Fatalf("perspective %d: expected active features for the start position", persp)
		}
		for _, idx := range active[persp] {
			if idx < 0 || idx >= FeatureDimension {
				t.Fatalf("perspective %d: feature index %d out of [0, %d)", persp, idx, FeatureDimension)
			}
		}
	}
}

func TestHandFeatureIndexDistinctByLevel(t *testing.T) {
	kingSq := shogi.NewSquare(4, 8)
	i1 := HandFeatureIndex(shogi.Black, kingSq, shogi.Pawn, shogi.Black, 1)
	i2 := HandFeatureIndex(shogi.Black, kingSq, shogi.Pawn, shogi.Black, 2)
	if i1 == i2 {
		t.Fatalf("expected distinct feature slots for distinct hand count levels")
	}
	if i1 < BoardFeatureSize || i2 < BoardFeatureSize {
		t.Fatalf("hand features must land after the board feature block")
	}
}

func TestBoardFeatureIndexPerspectiveDiffer(t *testing.T) {
	kingSq := shogi.NewSquare(4, 8)
	sq := shogi.NewSquare(2, 2)
	black := BoardFeatureIndex(shogi.Black, kingSq, shogi.Silver, shogi.White, sq)
	white := BoardFeatureIndex(shogi.White, kingSq, shogi.Silver, shogi.White, sq)
	if black == white {
		t.Fatalf("expected the two perspectives to produce different feature slots")
	}
}

func TestIncrementalMatchesFullRecompute(t *testing.T) {
	pos := shogi.StartPosition()
	net := NewNetwork()
	net.InitRandom(1)

	from, _ := shogi.ParseSquare("7g")
	to, _ := shogi.ParseSquare("7f")
	m := shogi.NewMove(from, to, false)

	incremental := &Accumulator{}
	incremental.ComputeFull(pos, net)

	undo := pos.MakeMove(m)
	incremental.UpdateIncremental(pos, m, undo, net)

	rebuilt := &Accumulator{}
	rebuilt.ComputeFull(pos, net)

	if incremental.Black != rebuilt.Black {
		t.Errorf("Black accumulator diverged after incremental update")
	}
	if incremental.White != rebuilt.White {
		t.Errorf("White accumulator diverged after incremental update")
	}
}

func TestIncrementalMatchesFullRecomputeOnCapture(t *testing.T) {
	// A black pawn on rank e facing a white pawn on rank d, same file: the
	// one legal capture available exercises ChangedFeatures' capture
	// branch, which hands the captured piece to the mover's (us's) hand.
	pos, err := shogi.FromSFEN("k8/9/9/4p4/4P4/9/9/9/8K b - 1")
	if err != nil {
		t.Fatalf("FromSFEN: %v", err)
	}
	net := NewNetwork()
	net.InitRandom(1)

	from := shogi.NewSquare(4, 4)
	to := shogi.NewSquare(4, 3)
	m := shogi.NewMove(from, to, false)

	incremental := &Accumulator{}
	incremental.ComputeFull(pos, net)

	undo := pos.MakeMove(m)
	if undo.CapturedKind != shogi.Pawn {
		t.Fatalf("expected the move to capture a pawn, got %v", undo.CapturedKind)
	}
	incremental.UpdateIncremental(pos, m, undo, net)

	rebuilt := &Accumulator{}
	rebuilt.ComputeFull(pos, net)

	if incremental.Black != rebuilt.Black {
		t.Errorf("Black accumulator diverged after an incremental capture update")
	}
	if incremental.White != rebuilt.White {
		t.Errorf("White accumulator diverged after an incremental capture update")
	}
}

func TestEvaluatorPushPopRoundTrips(t *testing.T) {
	pos := shogi.StartPosition()
	e, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}

	before := e.Evaluate(pos)

	from, _ := shogi.ParseSquare("7g")
	to, _ := shogi.ParseSquare("7f")
	m := shogi.NewMove(from, to, false)

	e.Push()
	undo := pos.MakeMove(m)
	e.Update(pos, m, undo)
	_ = e.Evaluate(pos)

	pos.UnmakeMove(m, undo)
	e.Pop()
	after := e.Evaluate(pos)

	if before != after {
		t.Errorf("Evaluate() after push/pop round trip = %d, want %d", after, before)
	}
}

func TestForwardIsDeterministic(t *testing.T) {
	pos := shogi.StartPosition()
	e, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	a := e.Evaluate(pos)
	b := e.Evaluate(pos)
	if a != b {
		t.Errorf("Evaluate() is not deterministic: %d != %d", a, b)
	}
}
