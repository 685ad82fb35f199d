package shogi

import (
	"fmt"
	"strconv"
	"strings"
)

// StartSFEN is the standard shogi starting position in SFEN notation.
const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

var usiPieceToType = map[byte]PieceType{
	'p': Pawn, 'l': Lance, 'n': Knight, 's': Silver,
	'g': Gold, 'b': Bishop, 'r': Rook, 'k': King,
}

// FromSFEN parses board rows + side-to-move + hand + ply per §6.2: rows
// separated by '/', listed rank a..i, within a row squares listed file
// 9..1, '+' promotion prefix, digits for empty runs, hand as concatenated
// counts with '-' for empty, trailing ply number. Accepts the compact
// 4-token form (normalizing a missing ply to 1).
func FromSFEN(sfen string) (*Position, error) {
	fields := strings.Fields(strings.TrimSpace(sfen))
	if len(fields) < 3 {
		return nil, fmt.Errorf("shogi: malformed sfen: %q", sfen)
	}
	p := NewPosition()

	rows := strings.Split(fields[0], "/")
	if len(rows) != 9 {
		return nil, fmt.Errorf("shogi: sfen must have 9 rows, got %d", len(rows))
	}
	for rank, row := range rows {
		// The leftmost character of an SFEN row is file 9 (internal file
		// index 0); file index increases left to right across the row.
		file := 0
		i := 0
		for i < len(row) {
			ch := row[i]
			switch {
			case ch >= '1' && ch <= '9':
				// Consume a possibly multi-digit empty run.
				j := i
				for j < len(row) && row[j] >= '0' && row[j] <= '9' {
					j++
				}
				n, _ := strconv.Atoi(row[i:j])
				file += n
				i = j
			case ch == '+':
				if i+1 >= len(row) {
					return nil, fmt.Errorf("shogi: dangling '+' in sfen row %q", row)
				}
				base, ok := usiPieceToType[lower(row[i+1])]
				if !ok {
					return nil, fmt.Errorf("shogi: unknown piece %q", row[i+1])
				}
				c := colorFromCase(row[i+1])
				sq := NewSquare(file, rank)
				p.setPiece(sq, NewPiece(base.Promote(), c))
				file++
				i += 2
			default:
				base, ok := usiPieceToType[lower(ch)]
				if !ok {
					return nil, fmt.Errorf("shogi: unknown piece %q", string(ch))
				}
				c := colorFromCase(ch)
				sq := NewSquare(file, rank)
				p.setPiece(sq, NewPiece(base, c))
				file++
				i++
			}
		}
		if file != 9 {
			return nil, fmt.Errorf("shogi: sfen row %q does not span 9 files", row)
		}
	}

	switch fields[1] {
	case "b":
		p.SideToMove = Black
	case "w":
		p.SideToMove = White
		p.Hash ^= ZobristSideToMove()
	default:
		return nil, fmt.Errorf("shogi: unknown side to move %q", fields[1])
	}

	if fields[2] != "-" {
		hand := fields[2]
		i := 0
		for i < len(hand) {
			j := i
			for j < len(hand) && hand[j] >= '0' && hand[j] <= '9' {
				j++
			}
			count := 1
			if j > i {
				count, _ = strconv.Atoi(hand[i:j])
			}
			if j >= len(hand) {
				return nil, fmt.Errorf("shogi: dangling hand count in %q", hand)
			}
			pt, ok := usiPieceToType[lower(hand[j])]
			if !ok {
				return nil, fmt.Errorf("shogi: unknown hand piece %q", string(hand[j]))
			}
			c := colorFromCase(hand[j])
			for k := 0; k < count; k++ {
				p.addToHand(c, pt)
			}
			i = j + 1
		}
	}

	p.Ply = 1
	if len(fields) >= 4 {
		if n, err := strconv.Atoi(fields[3]); err == nil {
			p.Ply = n
		}
	}

	p.ComputeCheckers()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func colorFromCase(b byte) Color {
	if b >= 'A' && b <= 'Z' {
		return Black
	}
	return White
}

// ToSFEN renders p in SFEN notation.
func (p *Position) ToSFEN() string {
	var b strings.Builder
	for rank := 0; rank < 9; rank++ {
		empty := 0
		for file := 0; file < 9; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				fmt.Fprintf(&b, "%d", empty)
				empty = 0
			}
			b.WriteString(piece.String())
		}
		if empty > 0 {
			fmt.Fprintf(&b, "%d", empty)
		}
		if rank != 8 {
			b.WriteByte('/')
		}
	}
	b.WriteByte(' ')
	if p.SideToMove == Black {
		b.WriteByte('b')
	} else {
		b.WriteByte('w')
	}
	b.WriteByte(' ')

	handStr := p.Hands[Black].String(Black) + p.Hands[White].String(White)
	if handStr == "" {
		b.WriteByte('-')
	} else {
		b.WriteString(handStr)
	}
	fmt.Fprintf(&b, " %d", p.Ply)
	return b.String()
}
