package shogi

import "testing"

func TestStartPositionSFENRoundTrip(t *testing.T) {
	pos := StartPosition()
	got := pos.ToSFEN()
	if got != StartSFEN {
		t.Errorf("ToSFEN() = %q, want %q", got, StartSFEN)
	}
}

// TestStartPositionFileAssignment pins down the file-ordering convention:
// the leftmost character of an SFEN row is file 9. Black's rook sits on
// file 2 and bishop on file 8 in the real starting layout (mirrored for
// White), which only shows up correctly if rows are parsed left-to-right
// as file 9 down to file 1.
func TestStartPositionFileAssignment(t *testing.T) {
	pos := StartPosition()

	rookSq, err := ParseSquare("2h")
	if err != nil {
		t.Fatal(err)
	}
	bishopSq, err := ParseSquare("8h")
	if err != nil {
		t.Fatal(err)
	}

	rook := pos.PieceAt(rookSq)
	if rook.Kind() != Rook || rook.Color() != Black {
		t.Errorf("expected Black rook on 2h, got %v", rook)
	}
	bishop := pos.PieceAt(bishopSq)
	if bishop.Kind() != Bishop || bishop.Color() != Black {
		t.Errorf("expected Black bishop on 8h, got %v", bishop)
	}
}

func TestMakeUnmakeMoveRestoresHash(t *testing.T) {
	pos := StartPosition()
	startHash := pos.Hash

	moves := GenerateLegalMoves(pos)
	if moves.Len() != 30 {
		t.Fatalf("expected 30 legal moves from the start position, got %d", moves.Len())
	}

	for _, m := range moves.Slice() {
		undo := pos.MakeMove(m)
		if pos.Hash == startHash {
			t.Errorf("move %v did not change the hash", m)
		}
		pos.UnmakeMove(m, undo)
		if pos.Hash != startHash {
			t.Errorf("move %v: hash not restored after unmake, got %d want %d", m, pos.Hash, startHash)
		}
		if pos.SideToMove != Black {
			t.Errorf("move %v: side to move not restored", m)
		}
	}
}

func TestMakeMoveRecyclesCaptureIntoHand(t *testing.T) {
	// Black bishop takes White's bishop across an open diagonal.
	pos := mustPos(t, "k8/9/9/9/4b4/9/9/9/K7B b - 1")
	from, _ := ParseSquare("1i")
	to, _ := ParseSquare("5e")

	before := pos.Hands[Black].Count(Bishop)
	undo := pos.MakeMove(NewMove(from, to, false))
	if pos.Hands[Black].Count(Bishop) != before+1 {
		t.Errorf("expected captured bishop to enter Black's hand")
	}
	if pos.PieceAt(to).Kind() != Bishop || pos.PieceAt(to).Color() != Black {
		t.Errorf("expected Black bishop to occupy the capture square")
	}
	pos.UnmakeMove(NewMove(from, to, false), undo)
	if pos.Hands[Black].Count(Bishop) != before {
		t.Errorf("unmake did not restore hand count")
	}
	if pos.PieceAt(to).Color() != White {
		t.Errorf("unmake did not restore the captured piece")
	}
}
