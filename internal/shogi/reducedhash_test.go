package shogi

import "testing"

func TestPawnHashChangesWithPawnMoveNotOtherwise(t *testing.T) {
	pos := StartPosition()
	before := pos.PawnHash()

	moves := GenerateLegalMoves(pos)
	var pawnMove Move
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if !m.IsDrop() && pos.PieceAt(m.From()).Kind() == Pawn {
			pawnMove = m
			break
		}
	}
	if pawnMove == NoMove {
		t.Fatalf("expected a legal pawn move from the start position")
	}

	undo := pos.MakeMove(pawnMove)
	after := pos.PawnHash()
	if before == after {
		t.Errorf("expected PawnHash to change after a pawn move")
	}
	pos.UnmakeMove(pawnMove, undo)
	if restored := pos.PawnHash(); restored != before {
		t.Errorf("PawnHash after unmake = %d, want %d", restored, before)
	}
}

func TestMinorHashIndependentOfPawnHash(t *testing.T) {
	pos := StartPosition()
	pawnHash := pos.PawnHash()
	minorHash := pos.MinorHash()
	if pawnHash == minorHash {
		t.Errorf("PawnHash and MinorHash collided for the start position")
	}
}

func TestReducedHashesStableAcrossEquivalentPositions(t *testing.T) {
	a := StartPosition()
	b, err := FromSFEN(a.ToSFEN())
	if err != nil {
		t.Fatalf("FromSFEN: %v", err)
	}
	if a.PawnHash() != b.PawnHash() {
		t.Errorf("PawnHash differs between a position and its SFEN round trip")
	}
	if a.MinorHash() != b.MinorHash() {
		t.Errorf("MinorHash differs between a position and its SFEN round trip")
	}
}
