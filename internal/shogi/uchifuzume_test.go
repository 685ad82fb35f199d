package shogi

import "testing"

// Each position below places White's king alone in the "9a" corner, which
// has exactly three neighbors: 8a, 9b, 8b. Black holds one pawn and is to
// move; dropping it on 9b gives check. The three cases vary what else
// defends/attacks those three squares, exercising the drop-pawn-mate
// exclusion rule's four steps.

func mustPos(t *testing.T, sfen string) *Position {
	t.Helper()
	pos, err := FromSFEN(sfen)
	if err != nil {
		t.Fatalf("FromSFEN(%q): %v", sfen, err)
	}
	return pos
}

// TestUchifuzumeMateExcluded: Black Gold on 9c (covers 9b, 8b) and Black
// Rook on 8d (covers the 8-file, so 8a and 8b too) leave the king no
// escape and the checking pawn defended. The drop must not be generated.
func TestUchifuzumeMateExcluded(t *testing.T) {
	pos := mustPos(t, "k8/9/G8/1R7/9/9/9/9/8K b P 1")

	moves := GenerateLegalMoves(pos)
	target, err := ParseSquare("9b")
	if err != nil {
		t.Fatal(err)
	}
	drop := NewDrop(Pawn, target)
	if moves.Contains(drop) {
		t.Errorf("expected P*9b to be excluded as drop-pawn-mate, but it was generated")
	}
}

// TestUchifuzumeCheckNotMate: same as above but without the rook, so 8a is
// uncovered and the king escapes there. The drop gives check but is legal.
func TestUchifuzumeCheckNotMate(t *testing.T) {
	pos := mustPos(t, "k8/9/G8/9/9/9/9/9/8K b P 1")

	moves := GenerateLegalMoves(pos)
	target, err := ParseSquare("9b")
	if err != nil {
		t.Fatal(err)
	}
	drop := NewDrop(Pawn, target)
	if !moves.Contains(drop) {
		t.Errorf("expected P*9b to be a legal check (king escapes to 8a), but it was excluded")
	}
}

// TestUchifuzumeDefendedNotMate: same mating net as the first case, but
// White has an unpinned Gold on 8b that can capture the dropped pawn. Not
// mate, so the drop remains legal.
func TestUchifuzumeDefendedNotMate(t *testing.T) {
	pos := mustPos(t, "k8/1g7/G8/1R7/9/9/9/9/8K b P 1")

	moves := GenerateLegalMoves(pos)
	target, err := ParseSquare("9b")
	if err != nil {
		t.Fatal(err)
	}
	drop := NewDrop(Pawn, target)
	if !moves.Contains(drop) {
		t.Errorf("expected P*9b to be legal (white gold on 8b can capture it), but it was excluded")
	}
}

// TestNifuExcludesSameFileDrop verifies a pawn cannot be dropped on a file
// that already holds one of the dropping side's unpromoted pawns.
func TestNifuExcludesSameFileDrop(t *testing.T) {
	pos := mustPos(t, "k8/9/9/9/9/9/4P4/9/K8 b P 1")

	moves := GenerateLegalMoves(pos)
	for _, m := range moves.Slice() {
		if m.IsDrop() && m.DropPiece() == Pawn && m.To().File() == 4 {
			t.Errorf("nifu: pawn drop %v onto an already-pawned file should be excluded", m)
		}
	}
}

// TestLastRankExcludesPawnAndLanceDrops verifies pawn/lance drops onto the
// dropping side's last rank are excluded (they would have no legal move).
func TestLastRankExcludesPawnAndLanceDrops(t *testing.T) {
	pos := mustPos(t, "k8/9/9/9/9/9/9/9/K8 b PL 1")

	moves := GenerateLegalMoves(pos)
	lastRank, err := ParseSquare("5a")
	if err != nil {
		t.Fatal(err)
	}
	if moves.Contains(NewDrop(Pawn, lastRank)) {
		t.Errorf("pawn drop onto Black's last rank should be excluded")
	}
	if moves.Contains(NewDrop(Lance, lastRank)) {
		t.Errorf("lance drop onto Black's last rank should be excluded")
	}
}
