package shogi

import "github.com/cespare/xxhash/v2"

// PawnHash and MinorHash compute reduced-board hashes over a subset of the
// board (pawns; silver/knight/gold) plus hand counts for those same piece
// types, independent of the main incremental Zobrist key. Correction
// history (internal/history) buckets its per-pattern eval adjustment by
// these, so two positions differing only in, say, rook placement land in
// the same bucket. xxhash is a natural fit: these are recomputed from
// scratch once per node rather than maintained incrementally, so a fast
// non-cryptographic hash over a small serialized buffer beats maintaining
// another full Zobrist table.

// PawnHash returns a hash of every pawn's square and both hands' pawn
// counts.
func (p *Position) PawnHash() uint64 {
	return reducedHashMulti(p, Pawn)
}

// MinorHash returns a hash of every silver/knight/gold's square (including
// promoted silver/knight, which still move like a Gold) and both hands'
// counts for those types.
func (p *Position) MinorHash() uint64 {
	return reducedHashMulti(p, Silver, Knight, Gold, PromotedSilver, PromotedKnight)
}

func reducedHashMulti(p *Position, kinds ...PieceType) uint64 {
	var buf [NumSquares + 2]byte
	n := 0

	for sq := Square(0); sq < NumSquares; sq++ {
		pc := p.Board[sq]
		if pc == NoPiece {
			continue
		}
		for _, k := range kinds {
			if pc.Kind() == k {
				buf[n] = byte(sq)<<1 | byte(pc.Color())
				n++
				break
			}
		}
	}

	h := xxhash.New()
	h.Write(buf[:n])

	var bases [NumPieceKinds]bool
	for _, k := range kinds {
		bases[k.Unpromote()] = true
	}
	for _, c := range [2]Color{Black, White} {
		for base, present := range bases {
			if !present || handIndex(PieceType(base)) < 0 {
				continue
			}
			count := p.Hands[c].Count(PieceType(base))
			h.Write([]byte{byte(c), byte(base), byte(count)})
		}
	}

	return h.Sum64()
}
