package tt

import (
	"testing"

	"github.com/hailam/shogi-usi/internal/shogi"
)

func TestStoreProbeRoundTrip(t *testing.T) {
	table := New(1)
	move := shogi.NewMove(shogi.Square(10), shogi.Square(20), false)
	table.Store(0xdeadbeefcafef00d, 12, BoundExact, 137, -42, true, move, 3)

	entry, ok := table.Probe(0xdeadbeefcafef00d, 3)
	if !ok {
		t.Fatal("expected a hit after store")
	}
	if entry.Move != move {
		t.Errorf("move = %v, want %v", entry.Move, move)
	}
	if entry.Score != 137 {
		t.Errorf("score = %d, want 137", entry.Score)
	}
	if entry.StaticEval != -42 {
		t.Errorf("staticEval = %d, want -42", entry.StaticEval)
	}
	if entry.Depth != 12 {
		t.Errorf("depth = %d, want 12", entry.Depth)
	}
	if entry.Bound != BoundExact {
		t.Errorf("bound = %v, want BoundExact", entry.Bound)
	}
	if !entry.PV {
		t.Error("expected tt_pv flag set")
	}
}

func TestProbeMissOnUnstoredKey(t *testing.T) {
	table := New(1)
	table.Store(0x1111111111111111, 5, BoundLower, 10, 10, false, shogi.NoMove, 0)

	if _, ok := table.Probe(0x2222222222222222, 0); ok {
		t.Error("expected a miss for a never-stored key")
	}
}

func TestMateScoreAdjustedAcrossStoreAndProbe(t *testing.T) {
	table := New(1)
	mateScore := MateValue - 3 // mate in 3 plies from this node

	table.Store(0xabc, 10, BoundExact, mateScore, 0, false, shogi.NoMove, 5)
	entry, ok := table.Probe(0xabc, 5)
	if !ok {
		t.Fatal("expected a hit")
	}
	if entry.Score != mateScore {
		t.Errorf("score after round trip = %d, want %d (same ply in and out)", entry.Score, mateScore)
	}

	// Probing from a shallower ply than the store should translate the
	// mate distance relative to the new root.
	entry2, ok := table.Probe(0xabc, 2)
	if !ok {
		t.Fatal("expected a hit")
	}
	if entry2.Score <= entry.Score {
		t.Errorf("mate score probed at a shallower ply should report a shorter mate, got %d vs %d", entry2.Score, entry.Score)
	}
}

// TestAgingPrefersRetainingDeeperEntries fills a single-bucket table with
// distinct-key depth-4 entries at generation G, then starts a new search
// (generation G+1) and stores one more distinct-key entry. With the
// bucket already full, exactly one of the depth-4 entries must be
// evicted; the other bucketSlots-1 must survive untouched.
func TestAgingPrefersRetainingDeeperEntries(t *testing.T) {
	table := newTable(1) // single bucket, forces all keys to collide
	keys := []uint64{0x1, 0x2, 0x3, 0x4}
	if len(keys) != bucketSlots {
		t.Fatalf("test assumes bucketSlots == %d", len(keys))
	}
	for _, k := range keys {
		table.Store(k, 4, BoundExact, 0, 0, false, shogi.NoMove, 0)
	}

	table.NewSearch() // generation advances to G+1
	table.Store(0x5, 3, BoundLower, 0, 0, false, shogi.NoMove, 0)

	survivors := 0
	for _, k := range keys {
		if _, ok := table.Probe(k, 0); ok {
			survivors++
		}
	}
	if survivors != len(keys)-1 {
		t.Errorf("expected %d of the original depth-4 entries to survive, got %d", len(keys)-1, survivors)
	}
	if _, ok := table.Probe(0x5, 0); !ok {
		t.Error("expected the new generation's entry to be present")
	}
}

func TestClearResetsTable(t *testing.T) {
	table := New(1)
	table.Store(0x42, 5, BoundExact, 1, 1, false, shogi.NoMove, 0)
	table.Clear()
	if _, ok := table.Probe(0x42, 0); ok {
		t.Error("expected a miss after Clear")
	}
	if table.HashFull() != 0 {
		t.Errorf("HashFull() after Clear = %d, want 0", table.HashFull())
	}
}
