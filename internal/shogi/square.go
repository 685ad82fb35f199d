package shogi

import "fmt"

// Square represents a square on the 9x9 shogi board (0-80).
// Linear index = rank*9 + file, file and rank both 0-indexed.
// File 0 corresponds to the "9" file and file 8 to the "1" file in
// standard shogi notation (files are conventionally numbered 9..1 from
// Black's left); rank 0 is the "a" rank (far from Black) and rank 8 is "i".
type Square uint8

// NoSquare is the sentinel invalid square.
const NoSquare Square = 81

// NumSquares is the number of playable squares.
const NumSquares = 81

// NewSquare builds a Square from 0-indexed file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*9 + file)
}

// File returns the 0-indexed file (0 = file 9, 8 = file 1).
func (sq Square) File() int {
	return int(sq) % 9
}

// Rank returns the 0-indexed rank (0 = rank a, 8 = rank i).
func (sq Square) Rank() int {
	return int(sq) / 9
}

// IsValid reports whether sq is a real board square.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// RelativeRank returns the rank as seen by color c: 0 is the owner's
// furthest-back rank, 8 is the furthest-forward (enemy camp) rank.
func (sq Square) RelativeRank(c Color) int {
	if c == Black {
		return 8 - sq.Rank()
	}
	return sq.Rank()
}

// Mirror returns sq reflected to the opposite side's perspective, used
// when indexing NNUE features from White's side of the board.
func (sq Square) Mirror() Square {
	return NewSquare(8-sq.File(), 8-sq.Rank())
}

// String renders a square in USI/SFEN notation, e.g. "5g" (file 5, rank g).
func (sq Square) String() string {
	if !sq.IsValid() {
		return "*"
	}
	file := 9 - sq.File() // file 0 -> "9", file 8 -> "1"
	rank := byte('a' + sq.Rank())
	return fmt.Sprintf("%d%c", file, rank)
}

// ParseSquare parses USI/SFEN square notation such as "5g" or "1a".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	if s[0] < '1' || s[0] > '9' {
		return NoSquare, fmt.Errorf("invalid square file: %q", s)
	}
	if s[1] < 'a' || s[1] > 'i' {
		return NoSquare, fmt.Errorf("invalid square rank: %q", s)
	}
	file := 9 - int(s[0]-'0')
	rank := int(s[1] - 'a')
	return NewSquare(file, rank), nil
}
