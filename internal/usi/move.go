package usi

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/hailam/shogi-usi/internal/shogi"
)

// ParseMove resolves USI move notation ("7g7f", "2b3c+", "P*5e") against
// the legal moves available in pos, rather than trusting the wire format
// to encode a move that is actually legal right now. A move string that
// parses but matches nothing legal is reported the same as a malformed one:
// the caller only ever sees "valid" or "rejected", never a move it still
// has to re-check.
func ParseMove(pos *shogi.Position, s string) (shogi.Move, error) {
	legal := shogi.GenerateLegalMoves(pos)

	if strings.Contains(s, "*") {
		parts := strings.SplitN(s, "*", 2)
		if len(parts) != 2 || len(parts[0]) != 1 {
			return shogi.NoMove, fmt.Errorf("malformed drop move %q", s)
		}
		to, err := shogi.ParseSquare(parts[1])
		if err != nil {
			return shogi.NoMove, fmt.Errorf("malformed drop move %q: %w", s, err)
		}
		dropChar := parts[0][0]
		for i := 0; i < legal.Len(); i++ {
			m := legal.Get(i)
			if m.IsDrop() && m.To() == to && m.DropPiece().USIChar() == dropChar {
				return m, nil
			}
		}
		return shogi.NoMove, fmt.Errorf("no legal drop matches %q", s)
	}

	if len(s) < 4 {
		return shogi.NoMove, fmt.Errorf("malformed move %q", s)
	}
	from, err := shogi.ParseSquare(s[0:2])
	if err != nil {
		return shogi.NoMove, fmt.Errorf("malformed move %q: %w", s, err)
	}
	to, err := shogi.ParseSquare(s[2:4])
	if err != nil {
		return shogi.NoMove, fmt.Errorf("malformed move %q: %w", s, err)
	}
	promote := len(s) == 5 && s[4] == '+'

	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if !m.IsDrop() && m.From() == from && m.To() == to && m.IsPromotion() == promote {
			return m, nil
		}
	}
	return shogi.NoMove, fmt.Errorf("no legal move matches %q", s)
}

// IsLegalNow reports whether m is currently legal in pos, used to revalidate
// a committed move picked up from a PartialResult or SearchFinished message
// against whatever position the controller is holding right now before it
// is ever written to stdout.
func IsLegalNow(pos *shogi.Position, m shogi.Move) bool {
	if m == shogi.NoMove {
		return false
	}
	legal := shogi.GenerateLegalMoves(pos)
	return legal.Contains(m)
}

// RandomLegalMove returns an arbitrary legal move in pos, or NoMove if none
// exists (checkmate or stalemate), for the last-resort fallback tier below
// any partial search result.
func RandomLegalMove(pos *shogi.Position) shogi.Move {
	legal := shogi.GenerateLegalMoves(pos)
	if legal.Len() == 0 {
		return shogi.NoMove
	}
	return legal.Get(rand.IntN(legal.Len()))
}
