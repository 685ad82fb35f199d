package usi

import (
	"testing"

	"github.com/hailam/shogi-usi/internal/shogi"
)

func TestParseMoveBoardMove(t *testing.T) {
	pos := shogi.StartPosition()
	m, err := ParseMove(pos, "7g7f")
	if err != nil {
		t.Fatalf("ParseMove(7g7f): %v", err)
	}
	if m.String() != "7g7f" {
		t.Fatalf("got %s, want 7g7f", m.String())
	}
}

func TestParseMoveRejectsIllegal(t *testing.T) {
	pos := shogi.StartPosition()
	if _, err := ParseMove(pos, "1a1b"); err == nil {
		t.Fatalf("expected an error for an illegal move")
	}
}

func TestParseMoveMalformed(t *testing.T) {
	pos := shogi.StartPosition()
	if _, err := ParseMove(pos, "zz"); err == nil {
		t.Fatalf("expected an error for a malformed move")
	}
}

func TestIsLegalNowRejectsNoMove(t *testing.T) {
	pos := shogi.StartPosition()
	if IsLegalNow(pos, shogi.NoMove) {
		t.Fatalf("NoMove must never be reported legal")
	}
}

func TestIsLegalNowAcceptsGeneratedMove(t *testing.T) {
	pos := shogi.StartPosition()
	legal := shogi.GenerateLegalMoves(pos)
	if legal.Len() == 0 {
		t.Fatalf("expected legal moves from the start position")
	}
	if !IsLegalNow(pos, legal.Get(0)) {
		t.Fatalf("expected the first generated legal move to be reported legal")
	}
}

func TestRandomLegalMoveReturnsSomethingLegal(t *testing.T) {
	pos := shogi.StartPosition()
	m := RandomLegalMove(pos)
	if !IsLegalNow(pos, m) {
		t.Fatalf("RandomLegalMove returned %s, which is not legal", m)
	}
}
