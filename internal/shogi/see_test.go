package shogi

import "testing"

func TestSEENonCaptureIsZero(t *testing.T) {
	pos := StartPosition()
	moves := GenerateLegalMoves(pos)
	var quiet Move
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if !m.IsDrop() && pos.PieceAt(m.To()) == NoPiece {
			quiet = m
			break
		}
	}
	if quiet == NoMove {
		t.Fatalf("expected a quiet move from the start position")
	}
	if v := SEE(pos, quiet); v != 0 {
		t.Errorf("SEE(quiet) = %d, want 0", v)
	}
}

func mustParseSquare(t *testing.T, s string) Square {
	t.Helper()
	sq, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return sq
}

func TestSEEFreePawnCaptureIsPositive(t *testing.T) {
	sfen := "k8/9/9/9/4p4/4P4/9/9/8K b - 1"
	pos, err := FromSFEN(sfen)
	if err != nil {
		t.Fatalf("FromSFEN: %v", err)
	}
	from := mustParseSquare(t, "5f")
	to := mustParseSquare(t, "5e")
	m := NewMove(from, to, false)
	if v := SEE(pos, m); v <= 0 {
		t.Errorf("SEE(undefended pawn capture) = %d, want > 0", v)
	}
}

func TestSEELosingCaptureIsNegative(t *testing.T) {
	sfen := "k8/9/4g4/4p4/9/9/4R4/9/8K b - 1"
	pos, err := FromSFEN(sfen)
	if err != nil {
		t.Fatalf("FromSFEN: %v", err)
	}
	from := mustParseSquare(t, "5g")
	to := mustParseSquare(t, "5d")
	m := NewMove(from, to, false)
	if v := SEE(pos, m); v >= 0 {
		t.Errorf("SEE(rook takes gold-defended pawn) = %d, want < 0", v)
	}
}
