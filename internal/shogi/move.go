package shogi

import "fmt"

// Move encodes a shogi move in 16 bits:
// bits 0-6:  to square (0-80)
// bits 7-13: from square (0-80), or dropped PieceType when IsDrop
// bit 14:    promote flag
// bit 15:    drop flag
type Move uint16

const (
	moveToMask   = 0x7F
	moveFromMask = 0x7F
	flagPromote  = 1 << 14
	flagDrop     = 1 << 15
)

// NoMove is the null/invalid move sentinel.
const NoMove Move = 0

// NewMove creates a board move, optionally promoting.
func NewMove(from, to Square, promote bool) Move {
	m := Move(to&moveToMask) | Move(from&moveFromMask)<<7
	if promote {
		m |= flagPromote
	}
	return m
}

// NewDrop creates a drop move of pt onto to.
func NewDrop(pt PieceType, to Square) Move {
	return Move(to&moveToMask) | Move(pt)<<7 | flagDrop
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m & moveToMask)
}

// From returns the origin square (only meaningful if !IsDrop).
func (m Move) From() Square {
	return Square((m >> 7) & moveFromMask)
}

// DropPiece returns the dropped piece type (only meaningful if IsDrop).
func (m Move) DropPiece() PieceType {
	return PieceType((m >> 7) & moveFromMask)
}

// IsDrop reports whether m is a drop move.
func (m Move) IsDrop() bool {
	return m&flagDrop != 0
}

// IsPromotion reports whether m promotes the moved piece.
func (m Move) IsPromotion() bool {
	return m&flagPromote != 0 && !m.IsDrop()
}

// String renders m in USI move notation: "7g7f", "2b3c+", or "P*5e".
func (m Move) String() string {
	if m == NoMove {
		return "resign"
	}
	if m.IsDrop() {
		return fmt.Sprintf("%c*%s", m.DropPiece().USIChar(), m.To())
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += "+"
	}
	return s
}

// MoveList is a fixed-size move buffer sized for realistic shogi branching
// factor, avoiding per-node allocation the way the teacher's chess
// MoveList does.
type MoveList struct {
	moves [600]Move
	count int
}

func (ml *MoveList) Add(m Move) { ml.moves[ml.count] = m; ml.count++ }
func (ml *MoveList) Len() int   { return ml.count }
func (ml *MoveList) Get(i int) Move { return ml.moves[i] }
func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }
func (ml *MoveList) Swap(i, j int) { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }
func (ml *MoveList) Clear()        { ml.count = 0 }

func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

func (ml *MoveList) Slice() []Move { return ml.moves[:ml.count] }

// UndoInfo stores everything needed to reverse a MakeMove.
type UndoInfo struct {
	CapturedKind PieceType // NoPieceType if no capture
	Hash         uint64
	Checkers     Bitboard
	KingSquare   [2]Square
	Pieces       [2][NumPieceKinds]Bitboard
	Occupied     [2]Bitboard
	AllOccupied  Bitboard
	Hands        [2]Hand
}
