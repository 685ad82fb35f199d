package history

import (
	"testing"

	"github.com/hailam/shogi-usi/internal/shogi"
	"github.com/hailam/shogi-usi/internal/tuning"
)

func TestMainHistoryGravityMovesTowardBonusAndSaturates(t *testing.T) {
	h := New()
	tp := tuning.DefaultParams()
	from, to := shogi.Square(10), shogi.Square(20)

	for i := 0; i < 1000; i++ {
		h.UpdateMain(shogi.Black, from, to, Bonus(tp, 10))
	}
	score := h.MainScore(shogi.Black, from, to)
	if score <= 0 {
		t.Fatalf("expected a positive score after repeated positive updates, got %d", score)
	}
	if score > StatMax {
		t.Fatalf("score %d exceeds StatMax %d", score, StatMax)
	}

	for i := 0; i < 1000; i++ {
		h.UpdateMain(shogi.Black, from, to, -Malus(tp, 10))
	}
	score = h.MainScore(shogi.Black, from, to)
	if score >= 0 {
		t.Fatalf("expected repeated negative updates to drive the score negative, got %d", score)
	}
	if score < StatMin {
		t.Fatalf("score %d exceeds StatMin %d", score, StatMin)
	}
}

func TestKillersShiftAndDoNotDuplicate(t *testing.T) {
	h := New()
	m1 := shogi.NewMove(shogi.Square(1), shogi.Square(2), false)
	m2 := shogi.NewMove(shogi.Square(3), shogi.Square(4), false)

	h.UpdateKillers(5, m1)
	h.UpdateKillers(5, m1) // duplicate of the current first killer, must not shift
	k1, k2 := h.Killers(5)
	if k1 != m1 || k2 != shogi.NoMove {
		t.Fatalf("killers = (%v, %v), want (%v, NoMove)", k1, k2, m1)
	}

	h.UpdateKillers(5, m2)
	k1, k2 = h.Killers(5)
	if k1 != m2 || k2 != m1 {
		t.Fatalf("killers after second update = (%v, %v), want (%v, %v)", k1, k2, m2, m1)
	}
}

func TestCounterMoveRoundTrip(t *testing.T) {
	h := New()
	prevPiece := shogi.NewPiece(shogi.Silver, shogi.White)
	prevTo := shogi.Square(40)
	reply := shogi.NewMove(shogi.Square(1), shogi.Square(2), false)

	if got := h.CounterMove(prevPiece, prevTo); got != shogi.NoMove {
		t.Fatalf("expected no counter move initially, got %v", got)
	}
	h.UpdateCounterMove(prevPiece, prevTo, reply)
	if got := h.CounterMove(prevPiece, prevTo); got != reply {
		t.Fatalf("CounterMove() = %v, want %v", got, reply)
	}
}

func TestNewSearchClearsKillersAndCounterMovesOnly(t *testing.T) {
	h := New()
	tp := tuning.DefaultParams()
	from, to := shogi.Square(1), shogi.Square(2)
	h.UpdateMain(shogi.Black, from, to, Bonus(tp, 8))
	before := h.MainScore(shogi.Black, from, to)

	m := shogi.NewMove(from, to, false)
	h.UpdateKillers(3, m)
	h.UpdateCounterMove(shogi.NewPiece(shogi.Gold, shogi.Black), to, m)

	h.NewSearch()

	if k1, k2 := h.Killers(3); k1 != shogi.NoMove || k2 != shogi.NoMove {
		t.Errorf("expected killers cleared after NewSearch, got (%v, %v)", k1, k2)
	}
	if got := h.CounterMove(shogi.NewPiece(shogi.Gold, shogi.Black), to); got != shogi.NoMove {
		t.Errorf("expected counter move cleared after NewSearch, got %v", got)
	}
	if after := h.MainScore(shogi.Black, from, to); after != before {
		t.Errorf("main history should survive NewSearch: before=%d after=%d", before, after)
	}
}

func TestDropHistorySeparateFromMain(t *testing.T) {
	h := New()
	tp := tuning.DefaultParams()
	to := shogi.Square(15)
	h.UpdateDropHistory(shogi.Black, shogi.Pawn, to, Bonus(tp, 5))

	if got := h.DropHistoryScore(shogi.Black, shogi.Pawn, to); got <= 0 {
		t.Errorf("expected a positive drop history score, got %d", got)
	}
	// A board move sharing the same "to" and an unrelated "from" must be
	// unaffected: drops and board moves never alias the same table.
	if got := h.MainScore(shogi.Black, shogi.Square(0), to); got != 0 {
		t.Errorf("expected main history untouched by a drop update, got %d", got)
	}
}

func TestContinuationHistoryOffsetsAreIndependent(t *testing.T) {
	h := New()
	tp := tuning.DefaultParams()
	prevPiece := shogi.NewPiece(shogi.Rook, shogi.Black)
	piece := shogi.NewPiece(shogi.Gold, shogi.White)
	prevTo, to := shogi.Square(5), shogi.Square(6)

	h.UpdateContinuation(1, prevPiece, piece, prevTo, to, Bonus(tp, 6))
	if got := h.ContinuationScore(1, prevPiece, piece, prevTo, to); got <= 0 {
		t.Errorf("offset 1 score = %d, want positive", got)
	}
	if got := h.ContinuationScore(2, prevPiece, piece, prevTo, to); got != 0 {
		t.Errorf("offset 2 score = %d, want 0 (independent of offset 1)", got)
	}
}

func TestPawnHistoryBucketsByHash(t *testing.T) {
	h := New()
	tp := tuning.DefaultParams()
	piece := shogi.NewPiece(shogi.Silver, shogi.Black)
	to := shogi.Square(33)

	h.UpdatePawnHistory(0xABC, shogi.Black, piece, to, Bonus(tp, 4))
	if got := h.PawnHistoryScore(0xABC, shogi.Black, piece, to); got <= 0 {
		t.Errorf("expected a positive score for the updated hash bucket, got %d", got)
	}
	// A pawn hash landing in a different bucket must read back zero.
	otherHash := uint64(0xABC + 1)
	if bucket1, bucket2 := pawnBucket(0xABC), pawnBucket(otherHash); bucket1 == bucket2 {
		t.Fatalf("test setup bug: both hashes landed in bucket %d", bucket1)
	}
	if got := h.PawnHistoryScore(otherHash, shogi.Black, piece, to); got != 0 {
		t.Errorf("expected a different bucket to read back 0, got %d", got)
	}
}

func TestCorrectionHistoryBoundsAndBuckets(t *testing.T) {
	h := New()
	for i := 0; i < 10000; i++ {
		h.UpdateCorrectionPawn(shogi.Black, 0x1, 1000, 10)
	}
	adj := h.CorrectionPawn(shogi.Black, 0x1)
	if adj > CorrectionLimit || adj < -CorrectionLimit {
		t.Errorf("correction %d exceeds CorrectionLimit %d", adj, CorrectionLimit)
	}
	if adj <= 0 {
		t.Errorf("expected a positive correction after repeated positive error samples, got %d", adj)
	}

	corrected := h.ApplyCorrection(500, shogi.Black, 0x1, 0x2)
	if corrected <= 500 {
		t.Errorf("ApplyCorrection(500) = %d, want > 500 given a positive pawn correction", corrected)
	}
}

func TestTTMoveHistorySmoothingTracksRecentObservations(t *testing.T) {
	h := New()
	for i := 0; i < 5000; i++ {
		h.UpdateTTMoveHistory(true)
	}
	hot := h.TTMoveHistoryScore()
	if hot <= 0 {
		t.Fatalf("expected a positive signal after many matches, got %d", hot)
	}

	for i := 0; i < 5000; i++ {
		h.UpdateTTMoveHistory(false)
	}
	cold := h.TTMoveHistoryScore()
	if cold >= hot {
		t.Fatalf("expected the signal to fall after many misses: hot=%d cold=%d", hot, cold)
	}
}
