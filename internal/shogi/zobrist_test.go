package shogi

import "testing"

func TestZobristKeysAreDistinct(t *testing.T) {
	seen := make(map[uint64]string)
	check := func(key uint64, label string) {
		if other, ok := seen[key]; ok {
			t.Errorf("zobrist key collision between %q and %q", label, other)
		}
		seen[key] = label
	}

	for c := Black; c <= White; c++ {
		for kind := 0; kind < NumPieceKinds; kind++ {
			for sq := Square(0); sq < NumSquares; sq++ {
				check(ZobristPiece(c, PieceType(kind), sq), "piece")
			}
		}
	}
	check(ZobristSideToMove(), "side")
}

func TestIncrementalHashMatchesFromSFEN(t *testing.T) {
	pos := StartPosition()
	moves := GenerateLegalMoves(pos)
	m := moves.Get(0)
	undo := pos.MakeMove(m)

	rebuilt, err := FromSFEN(pos.ToSFEN())
	if err != nil {
		t.Fatalf("FromSFEN: %v", err)
	}
	if rebuilt.Hash != pos.Hash {
		t.Errorf("incremental hash %d does not match a from-scratch rebuild %d", pos.Hash, rebuilt.Hash)
	}
	pos.UnmakeMove(m, undo)
}
