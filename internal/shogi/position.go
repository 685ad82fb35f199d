package shogi

import (
	"fmt"
	"strings"
)

// Position represents a full shogi board state: piece placement (bitboards
// plus a mailbox for O(1) PieceAt), hands, side to move, ply count, and an
// incrementally maintained Zobrist hash. Mirrors the teacher's bitboard
// Position with a mailbox, generalized from 64 squares/6 piece types to
// shogi's 81 squares/14 kinds (including promoted forms) and two hands.
type Position struct {
	Board       [NumSquares]Piece
	Pieces      [2][NumPieceKinds]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard
	Hands       [2]Hand
	SideToMove  Color
	Ply         int
	Hash        uint64
	KingSquare  [2]Square
	Checkers    Bitboard
}

// NewPosition returns an empty position (no pieces, Black to move).
func NewPosition() *Position {
	p := &Position{}
	for i := range p.Board {
		p.Board[i] = NoPiece
	}
	p.KingSquare[Black] = NoSquare
	p.KingSquare[White] = NoSquare
	return p
}

// StartPosition returns the standard shogi starting position.
func StartPosition() *Position {
	p, err := FromSFEN(StartSFEN)
	if err != nil {
		panic("shogi: invalid built-in start SFEN: " + err.Error())
	}
	return p
}

// PieceAt returns the piece standing on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	return p.Board[sq]
}

// IsEmpty reports whether sq has no piece.
func (p *Position) IsEmpty(sq Square) bool {
	return p.Board[sq] == NoPiece
}

// InCheck reports whether the side to move's king is currently attacked.
func (p *Position) InCheck() bool {
	return !p.Checkers.IsEmpty()
}

// Copy returns a deep copy of p (Position has no pointer fields, so a
// plain dereference-copy suffices).
func (p *Position) Copy() *Position {
	cp := *p
	return &cp
}

// setPiece places piece on sq, updating bitboards, mailbox, and hash.
// sq must currently be empty.
func (p *Position) setPiece(sq Square, piece Piece) {
	c := piece.Color()
	kind := piece.Kind()
	bb := SquareBB(sq)
	p.Pieces[c][kind] = p.Pieces[c][kind].Or(bb)
	p.Occupied[c] = p.Occupied[c].Or(bb)
	p.AllOccupied = p.AllOccupied.Or(bb)
	p.Board[sq] = piece
	p.Hash ^= ZobristPiece(c, kind, sq)
	if kind == King {
		p.KingSquare[c] = sq
	}
}

// removePiece clears sq, which must currently hold piece.
func (p *Position) removePiece(sq Square, piece Piece) {
	c := piece.Color()
	kind := piece.Kind()
	bb := SquareBB(sq)
	p.Pieces[c][kind] = p.Pieces[c][kind].AndNot(bb)
	p.Occupied[c] = p.Occupied[c].AndNot(bb)
	p.AllOccupied = p.AllOccupied.AndNot(bb)
	p.Board[sq] = NoPiece
	p.Hash ^= ZobristPiece(c, kind, sq)
}

func (p *Position) addToHand(c Color, pt PieceType) {
	n := p.Hands[c].Count(pt)
	p.Hash ^= ZobristHand(c, pt, n)
	p.Hands[c] = p.Hands[c].Add(pt)
	p.Hash ^= ZobristHand(c, pt, n+1)
}

func (p *Position) removeFromHand(c Color, pt PieceType) {
	n := p.Hands[c].Count(pt)
	p.Hash ^= ZobristHand(c, pt, n)
	p.Hands[c] = p.Hands[c].Remove(pt)
	p.Hash ^= ZobristHand(c, pt, n-1)
}

// ComputeCheckers recomputes p.Checkers from scratch: the set of enemy
// pieces currently attacking the side-to-move's king.
func (p *Position) ComputeCheckers() {
	us := p.SideToMove
	them := us.Other()
	kingSq := p.KingSquare[us]
	if kingSq == NoSquare {
		p.Checkers = Empty
		return
	}
	p.Checkers = AttackersTo(p, kingSq, them)
}

// MakeMove applies m (assumed pseudo-legal) and returns undo information.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedKind: NoPieceType,
		Hash:         p.Hash,
		Checkers:     p.Checkers,
		KingSquare:   p.KingSquare,
		Pieces:       p.Pieces,
		Occupied:     p.Occupied,
		AllOccupied:  p.AllOccupied,
		Hands:        p.Hands,
	}

	us := p.SideToMove
	to := m.To()

	if m.IsDrop() {
		pt := m.DropPiece()
		p.removeFromHand(us, pt)
		p.setPiece(to, NewPiece(pt, us))
	} else {
		from := m.From()
		moving := p.PieceAt(from)
		captured := p.PieceAt(to)
		if captured != NoPiece {
			undo.CapturedKind = captured.Kind()
			p.removePiece(to, captured)
			p.addToHand(us, captured.Kind().Unpromote())
		}
		p.removePiece(from, moving)
		if m.IsPromotion() {
			moving = moving.Promote()
		}
		p.setPiece(to, moving)
	}

	p.Hash ^= ZobristSideToMove()
	p.SideToMove = us.Other()
	p.Ply++
	p.ComputeCheckers()

	return undo
}

// UnmakeMove reverses m using undo, which must be the UndoInfo returned by
// the matching MakeMove call.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	p.SideToMove = p.SideToMove.Other()
	p.Ply--
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.KingSquare = undo.KingSquare
	p.Pieces = undo.Pieces
	p.Occupied = undo.Occupied
	p.AllOccupied = undo.AllOccupied
	p.Hands = undo.Hands

	p.rebuildMailboxFromBitboards()
}

// rebuildMailboxFromBitboards restores p.Board from p.Pieces after an undo,
// since undo restores bitboards directly rather than replaying inverse
// setPiece/removePiece calls square by square.
func (p *Position) rebuildMailboxFromBitboards() {
	for i := range p.Board {
		p.Board[i] = NoPiece
	}
	for c := Black; c <= White; c++ {
		for kind := 0; kind < NumPieceKinds; kind++ {
			p.Pieces[c][kind].ForEach(func(sq Square) {
				p.Board[sq] = NewPiece(PieceType(kind), c)
			})
		}
	}
}

// MakeNullMove flips the side to move without playing a move, used by null
// move pruning. Returns the hash to restore on UnmakeNullMove.
func (p *Position) MakeNullMove() uint64 {
	prevHash := p.Hash
	p.Hash ^= ZobristSideToMove()
	p.SideToMove = p.SideToMove.Other()
	p.Ply++
	p.ComputeCheckers()
	return prevHash
}

// UnmakeNullMove reverses MakeNullMove.
func (p *Position) UnmakeNullMove(prevHash uint64, prevCheckers Bitboard) {
	p.SideToMove = p.SideToMove.Other()
	p.Ply--
	p.Hash = prevHash
	p.Checkers = prevCheckers
}

// Validate checks the structural invariants §3.2 requires: exactly one
// king per color, no nifu, no pawn/lance on the last rank, no knight on
// the last two ranks.
func (p *Position) Validate() error {
	for _, c := range [2]Color{Black, White} {
		if p.Pieces[c][King].PopCount() != 1 {
			return fmt.Errorf("shogi: color %v does not have exactly one king", c)
		}
		for file := 0; file < 9; file++ {
			if p.Pieces[c][Pawn].And(FileMask(file)).PopCount() > 1 {
				return fmt.Errorf("shogi: nifu on file %d for %v", file, c)
			}
		}
		bad := func(bb Bitboard, lastRanks int) bool {
			found := false
			bb.ForEach(func(sq Square) {
				if sq.RelativeRank(c) >= 9-lastRanks {
					found = true
				}
			})
			return found
		}
		if bad(p.Pieces[c][Pawn], 1) || bad(p.Pieces[c][Lance], 1) {
			return fmt.Errorf("shogi: pawn/lance on last rank for %v", c)
		}
		if bad(p.Pieces[c][Knight], 2) {
			return fmt.Errorf("shogi: knight on last two ranks for %v", c)
		}
	}
	return nil
}

// String renders a human-readable board diagram (not SFEN).
func (p *Position) String() string {
	var b strings.Builder
	for rank := 0; rank < 9; rank++ {
		for file := 8; file >= 0; file-- {
			piece := p.Board[NewSquare(file, rank)]
			fmt.Fprintf(&b, "%3s", piece.String())
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "side=%v ply=%d hand[B]=%s hand[W]=%s\n",
		p.SideToMove, p.Ply, p.Hands[Black].String(Black), p.Hands[White].String(White))
	return b.String()
}
