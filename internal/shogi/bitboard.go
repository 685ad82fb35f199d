package shogi

import "math/bits"

// Bitboard is a 128-bit set of squares (81 used) split across two 64-bit
// words: Lo holds squares 0-62, Hi holds squares 63-80. The split point
// has no board meaning (it does not align with a rank boundary); all
// operations go through Square-indexed helpers rather than relying on
// word-aligned shifts, unlike the teacher's single-uint64 chess Bitboard
// which exploits LERF shift tricks directly. Shogi's 81 squares need two
// words, so directional moves here are served by precomputed per-square
// tables (see attacks.go) instead of shift operators.
type Bitboard struct {
	Lo, Hi uint64
}

const loBits = 63

// Empty is the zero bitboard.
var Empty = Bitboard{}

// squareBit returns the (word, bit-within-word) pair for a square.
func squareBit(sq Square) (hi bool, bit uint) {
	s := uint(sq)
	if s < loBits {
		return false, s
	}
	return true, s - loBits
}

// SquareBB returns a bitboard containing exactly sq.
func SquareBB(sq Square) Bitboard {
	var bb Bitboard
	if hi, bit := squareBit(sq); hi {
		bb.Hi = 1 << bit
	} else {
		bb.Lo = 1 << bit
	}
	return bb
}

// Set returns bb with sq added.
func (bb Bitboard) Set(sq Square) Bitboard {
	return bb.Or(SquareBB(sq))
}

// Clear returns bb with sq removed.
func (bb Bitboard) Clear(sq Square) Bitboard {
	return bb.AndNot(SquareBB(sq))
}

// IsSet reports whether sq is a member of bb.
func (bb Bitboard) IsSet(sq Square) bool {
	if hi, bit := squareBit(sq); hi {
		return bb.Hi&(1<<bit) != 0
	} else {
		return bb.Lo&(1<<bit) != 0
	}
}

// Toggle flips membership of sq.
func (bb Bitboard) Toggle(sq Square) Bitboard {
	return bb.Xor(SquareBB(sq))
}

func (a Bitboard) And(b Bitboard) Bitboard    { return Bitboard{a.Lo & b.Lo, a.Hi & b.Hi} }
func (a Bitboard) Or(b Bitboard) Bitboard     { return Bitboard{a.Lo | b.Lo, a.Hi | b.Hi} }
func (a Bitboard) Xor(b Bitboard) Bitboard    { return Bitboard{a.Lo ^ b.Lo, a.Hi ^ b.Hi} }
func (a Bitboard) AndNot(b Bitboard) Bitboard { return Bitboard{a.Lo &^ b.Lo, a.Hi &^ b.Hi} }
func (a Bitboard) Not() Bitboard              { return AllSquares.AndNot(a) }

// IsEmpty reports whether no square is set.
func (bb Bitboard) IsEmpty() bool {
	return bb.Lo == 0 && bb.Hi == 0
}

// More reports whether bb has more than one bit set.
func (bb Bitboard) More() bool {
	lo, hi := bb.Lo, bb.Hi
	if lo != 0 {
		lo &= lo - 1
	} else {
		hi &= hi - 1
	}
	return lo != 0 || hi != 0
}

// PopCount returns the number of set squares.
func (bb Bitboard) PopCount() int {
	return bits.OnesCount64(bb.Lo) + bits.OnesCount64(bb.Hi)
}

// LSB returns the lowest-indexed set square, or NoSquare if empty.
func (bb Bitboard) LSB() Square {
	if bb.Lo != 0 {
		return Square(bits.TrailingZeros64(bb.Lo))
	}
	if bb.Hi != 0 {
		return Square(loBits + bits.TrailingZeros64(bb.Hi))
	}
	return NoSquare
}

// PopLSB returns the lowest-indexed set square and a copy of bb with it
// removed.
func (bb Bitboard) PopLSB() (Square, Bitboard) {
	sq := bb.LSB()
	if sq == NoSquare {
		return NoSquare, bb
	}
	return sq, bb.Clear(sq)
}

// ForEach calls fn for every set square, lowest to highest.
func (bb Bitboard) ForEach(fn func(Square)) {
	for !bb.IsEmpty() {
		var sq Square
		sq, bb = bb.PopLSB()
		fn(sq)
	}
}

// Squares returns the set squares as a slice, lowest to highest.
func (bb Bitboard) Squares() []Square {
	out := make([]Square, 0, bb.PopCount())
	bb.ForEach(func(sq Square) { out = append(out, sq) })
	return out
}

// AllSquares is the full 81-square mask.
var AllSquares Bitboard

func init() {
	for sq := Square(0); sq < NumSquares; sq++ {
		AllSquares = AllSquares.Set(sq)
	}
}

// FileMask returns a bitboard of every square on the given 0-indexed file.
func FileMask(file int) Bitboard {
	var bb Bitboard
	for rank := 0; rank < 9; rank++ {
		bb = bb.Set(NewSquare(file, rank))
	}
	return bb
}

// RankMask returns a bitboard of every square on the given 0-indexed rank.
func RankMask(rank int) Bitboard {
	var bb Bitboard
	for file := 0; file < 9; file++ {
		bb = bb.Set(NewSquare(file, rank))
	}
	return bb
}

// String renders the bitboard as a 9x9 ASCII grid, rank a at top.
func (bb Bitboard) String() string {
	out := make([]byte, 0, 9*10)
	for rank := 0; rank < 9; rank++ {
		for file := 8; file >= 0; file-- {
			if bb.IsSet(NewSquare(file, rank)) {
				out = append(out, '1')
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}
