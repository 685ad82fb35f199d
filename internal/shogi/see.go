package shogi

// seeValues gives each piece kind a coarse material value for the static
// exchange swap algorithm, independent of any eval network. Promoted
// non-slider kinds share Gold's value; Horse/Dragon sit above Bishop/Rook
// by their extra king-step mobility.
var seeValues = [NumPieceKinds]int{
	Pawn:           100,
	Lance:          300,
	Knight:         400,
	Silver:         500,
	Gold:           600,
	Bishop:         800,
	Rook:           900,
	King:           15000,
	PromotedPawn:   600,
	PromotedLance:  600,
	PromotedKnight: 600,
	PromotedSilver: 600,
	PromotedBishop: 1000,
	PromotedRook:   1100,
}

// SEE estimates the net material result, from the mover's perspective, of
// playing capture m and then letting both sides recapture on m.To() with
// their least valuable attacker until neither side wants to continue.
// Returns 0 for a non-capturing move.
func SEE(pos *Position, m Move) int {
	if m.IsDrop() {
		return 0
	}
	to := m.To()
	victim := pos.PieceAt(to)
	if victim == NoPiece {
		return 0
	}

	from := m.From()
	attacker := pos.PieceAt(from)
	gain := seeValues[victim.Kind()]
	if m.IsPromotion() {
		gain += seeValues[attacker.Kind().Promote()] - seeValues[attacker.Kind()]
	}

	attackerValue := seeValues[attacker.Kind()]
	if m.IsPromotion() {
		attackerValue = seeValues[attacker.Kind().Promote()]
	}

	occ := pos.AllOccupied.AndNot(SquareBB(from))
	return seeSwap(pos, to, attacker.Color().Other(), occ, gain, attackerValue)
}

// seeSwap runs the alternating-capture swap, side to move first.
func seeSwap(pos *Position, target Square, side Color, occ Bitboard, initialGain, firstAttackerValue int) int {
	var gain [32]int
	d := 0
	gain[d] = initialGain
	attackerValue := firstAttackerValue

	for {
		d++
		if d >= len(gain) {
			break
		}
		gain[d] = attackerValue - gain[d-1]
		if max(-gain[d-1], gain[d]) < 0 {
			break
		}

		sq, piece := leastValuableAttacker(pos, target, side, occ)
		if sq == NoSquare {
			break
		}
		occ = occ.AndNot(SquareBB(sq))
		attackerValue = seeValues[piece.Kind()]
		side = side.Other()
	}

	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// attackersToOcc mirrors AttackersTo but against a caller-supplied
// occupancy rather than pos.AllOccupied, so the swap algorithm can reveal
// x-ray attackers as pieces are removed from the exchange.
func attackersToOcc(pos *Position, sq Square, byColor Color, occ Bitboard) Bitboard {
	opp := byColor.Other()
	var attackers Bitboard

	attackers = attackers.Or(StepAttacksFor(Pawn, opp, sq).And(pos.Pieces[byColor][Pawn]).And(occ))
	attackers = attackers.Or(StepAttacksFor(Knight, opp, sq).And(pos.Pieces[byColor][Knight]).And(occ))
	attackers = attackers.Or(StepAttacksFor(Silver, opp, sq).And(pos.Pieces[byColor][Silver]).And(occ))

	goldLike := pos.Pieces[byColor][Gold].
		Or(pos.Pieces[byColor][PromotedPawn]).
		Or(pos.Pieces[byColor][PromotedLance]).
		Or(pos.Pieces[byColor][PromotedKnight]).
		Or(pos.Pieces[byColor][PromotedSilver])
	attackers = attackers.Or(StepAttacksFor(Gold, opp, sq).And(goldLike).And(occ))

	kingLike := pos.Pieces[byColor][King].Or(pos.Pieces[byColor][PromotedBishop]).Or(pos.Pieces[byColor][PromotedRook])
	attackers = attackers.Or(StepAttacksFor(King, byColor, sq).And(kingLike).And(occ))

	diagSliders := pos.Pieces[byColor][Bishop].Or(pos.Pieces[byColor][PromotedBishop])
	attackers = attackers.Or(BishopAttacks(sq, occ).And(diagSliders).And(occ))

	orthoSliders := pos.Pieces[byColor][Rook].Or(pos.Pieces[byColor][PromotedRook])
	attackers = attackers.Or(RookAttacks(sq, occ).And(orthoSliders).And(occ))

	lances := pos.Pieces[byColor][Lance].And(occ)
	if !lances.IsEmpty() {
		lanceDirIdx := 2
		if byColor == White {
			lanceDirIdx = 3
		}
		for _, s := range orthoRays[sq][lanceDirIdx] {
			if !occ.IsSet(s) {
				continue
			}
			if lances.IsSet(s) {
				attackers = attackers.Set(s)
			}
			break
		}
	}

	return attackers
}

// leastValuableAttacker returns the cheapest byColor piece (by seeValues)
// currently attacking sq under occ, or NoSquare if none remain.
func leastValuableAttacker(pos *Position, sq Square, byColor Color, occ Bitboard) (Square, Piece) {
	attackers := attackersToOcc(pos, sq, byColor, occ)
	if attackers.IsEmpty() {
		return NoSquare, NoPiece
	}

	best := NoSquare
	bestValue := 1 << 30
	attackers.ForEach(func(s Square) {
		p := pos.PieceAt(s)
		v := seeValues[p.Kind()]
		if v < bestValue {
			bestValue = v
			best = s
		}
	})
	if best == NoSquare {
		return NoSquare, NoPiece
	}
	return best, pos.PieceAt(best)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
