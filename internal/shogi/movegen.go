package shogi

// promoRule classifies how a board move's promotion options are generated,
// mirroring the teacher's movegen.go switch-on-piece-kind structure.
type promoRule int

const (
	promoNever promoRule = iota
	promoOptional
	promoPawnLance // must promote on the last rank
	promoKnight    // must promote on the last two ranks
)

// inPromotionZone reports whether either endpoint of a board move lies in
// the mover's promotion zone (the last three ranks of advance).
func inPromotionZone(from, to Square, us Color) bool {
	return from.RelativeRank(us) >= 6 || to.RelativeRank(us) >= 6
}

// addBoardMoves emits every (from, to) pair in targets, with the promotion
// variants promoRule dictates.
func addBoardMoves(ml *MoveList, from Square, targets Bitboard, us Color, rule promoRule) {
	targets.ForEach(func(to Square) {
		switch rule {
		case promoNever:
			ml.Add(NewMove(from, to, false))
		case promoOptional:
			ml.Add(NewMove(from, to, false))
			if inPromotionZone(from, to, us) {
				ml.Add(NewMove(from, to, true))
			}
		case promoPawnLance:
			if to.RelativeRank(us) == 8 {
				ml.Add(NewMove(from, to, true))
				return
			}
			ml.Add(NewMove(from, to, false))
			if inPromotionZone(from, to, us) {
				ml.Add(NewMove(from, to, true))
			}
		case promoKnight:
			if to.RelativeRank(us) >= 7 {
				ml.Add(NewMove(from, to, true))
				return
			}
			ml.Add(NewMove(from, to, false))
			if inPromotionZone(from, to, us) {
				ml.Add(NewMove(from, to, true))
			}
		}
	})
}

// generateKingMoves emits every king step onto a non-own-occupied square.
// King safety is left entirely to the IsLegal safety net (see below), so no
// attacked-square filtering happens here.
func generateKingMoves(pos *Position, ml *MoveList) {
	us := pos.SideToMove
	from := pos.KingSquare[us]
	targets := StepAttacksFor(King, us, from).AndNot(pos.Occupied[us])
	addBoardMoves(ml, from, targets, us, promoNever)
}

// goldLikeKinds lists every piece kind that moves with the Gold step
// pattern: Gold itself plus every promoted P/L/N/S.
var goldLikeKinds = [5]PieceType{Gold, PromotedPawn, PromotedLance, PromotedKnight, PromotedSilver}

// generateBoardMoves emits pseudo-legal moves for every non-king piece of
// the side to move whose destination lies within mask (mask restricts to
// check-evading squares; Allsquares when not in check).
func generateBoardMoves(pos *Position, ml *MoveList, mask Bitboard) {
	us := pos.SideToMove
	occ := pos.AllOccupied
	notOwn := pos.Occupied[us].Not()

	pos.Pieces[us][Pawn].ForEach(func(from Square) {
		targets := StepAttacksFor(Pawn, us, from).And(notOwn).And(mask)
		addBoardMoves(ml, from, targets, us, promoPawnLance)
	})
	pos.Pieces[us][Lance].ForEach(func(from Square) {
		targets := LanceAttacks(from, us, occ).And(notOwn).And(mask)
		addBoardMoves(ml, from, targets, us, promoPawnLance)
	})
	pos.Pieces[us][Knight].ForEach(func(from Square) {
		targets := StepAttacksFor(Knight, us, from).And(notOwn).And(mask)
		addBoardMoves(ml, from, targets, us, promoKnight)
	})
	pos.Pieces[us][Silver].ForEach(func(from Square) {
		targets := StepAttacksFor(Silver, us, from).And(notOwn).And(mask)
		addBoardMoves(ml, from, targets, us, promoOptional)
	})
	for _, kind := range goldLikeKinds {
		pos.Pieces[us][kind].ForEach(func(from Square) {
			targets := StepAttacksFor(Gold, us, from).And(notOwn).And(mask)
			addBoardMoves(ml, from, targets, us, promoNever)
		})
	}
	pos.Pieces[us][Bishop].ForEach(func(from Square) {
		targets := BishopAttacks(from, occ).And(notOwn).And(mask)
		addBoardMoves(ml, from, targets, us, promoOptional)
	})
	pos.Pieces[us][Rook].ForEach(func(from Square) {
		targets := RookAttacks(from, occ).And(notOwn).And(mask)
		addBoardMoves(ml, from, targets, us, promoOptional)
	})
	pos.Pieces[us][PromotedBishop].ForEach(func(from Square) {
		targets := HorseAttacks(from, occ).And(notOwn).And(mask)
		addBoardMoves(ml, from, targets, us, promoNever)
	})
	pos.Pieces[us][PromotedRook].ForEach(func(from Square) {
		targets := DragonAttacks(from, occ).And(notOwn).And(mask)
		addBoardMoves(ml, from, targets, us, promoNever)
	})
}

// generateDrops emits legal drop moves. dropTargetMask restricts destination
// squares when the side to move is in check (the interposing squares for a
// slider check, or Empty when the checker cannot be blocked); when not in
// check it is AllSquares.
func generateDrops(pos *Position, ml *MoveList, dropTargetMask Bitboard) {
	us := pos.SideToMove
	empty := pos.AllOccupied.Not().And(dropTargetMask)
	if empty.IsEmpty() {
		return
	}

	for _, pt := range HandOrder {
		if pos.Hands[us].Count(pt) == 0 {
			continue
		}
		valid := empty
		switch pt {
		case Pawn:
			for file := 0; file < 9; file++ {
				if !pos.Pieces[us][Pawn].And(FileMask(file)).IsEmpty() {
					valid = valid.AndNot(FileMask(file))
				}
			}
			valid = valid.AndNot(LastRanksMask(us, 1))
			valid = excludeUchifuzume(pos, us, valid)
		case Lance:
			valid = valid.AndNot(LastRanksMask(us, 1))
		case Knight:
			valid = valid.AndNot(LastRanksMask(us, 2))
		}
		valid.ForEach(func(to Square) { ml.Add(NewDrop(pt, to)) })
	}
}

// isSliderKind reports whether kind moves by sliding (so a check it delivers
// may be blockable by interposition).
func isSliderKind(kind PieceType) bool {
	switch kind {
	case Lance, Bishop, Rook, PromotedBishop, PromotedRook:
		return true
	default:
		return false
	}
}

// GeneratePseudoLegalMoves produces every move consistent with check-evasion
// masking but without the final own-king-safety check (pins and
// king-walks-into-attack are not yet excluded). Used internally by
// GenerateLegalMoves; exported for search code that wants to avoid the
// make/unmake filtering cost. Callers that consume its moves directly must
// use IsLegal themselves, since a pseudo-legal move may leave the mover's
// own king in check.
func GeneratePseudoLegalMoves(pos *Position) *MoveList {
	var ml MoveList
	us := pos.SideToMove
	kingSq := pos.KingSquare[us]
	numCheckers := pos.Checkers.PopCount()

	if numCheckers >= 2 {
		generateKingMoves(pos, &ml)
		return &ml
	}

	nonKingMask := AllSquares
	dropTargetMask := AllSquares
	if numCheckers == 1 {
		checkerSq := pos.Checkers.LSB()
		checkerKind := pos.PieceAt(checkerSq).Kind()
		nonKingMask = pos.Checkers
		dropTargetMask = Empty
		if isSliderKind(checkerKind) {
			between := Between(checkerSq, kingSq)
			nonKingMask = nonKingMask.Or(between)
			dropTargetMask = between
		}
	}

	generateKingMoves(pos, &ml)
	generateBoardMoves(pos, &ml, nonKingMask)
	generateDrops(pos, &ml, dropTargetMask)
	return &ml
}

// IsLegal reports whether playing m from pos leaves the mover's own king
// safe. This is the universal safety net: rather than precomputing pin rays,
// every candidate move is tried via make/unmake and checked against
// AttackersTo, so pins, discovered checks, and king walks into attack are
// all caught by one code path.
func IsLegal(pos *Position, m Move) bool {
	us := pos.SideToMove
	undo := pos.MakeMove(m)
	kingSq := pos.KingSquare[us]
	safe := !IsSquareAttacked(pos, kingSq, pos.SideToMove)
	pos.UnmakeMove(m, undo)
	return safe
}

// GenerateLegalMoves returns every legal move available to the side to move.
func GenerateLegalMoves(pos *Position) *MoveList {
	pseudo := GeneratePseudoLegalMoves(pos)
	var out MoveList
	for _, m := range pseudo.Slice() {
		if IsLegal(pos, m) {
			out.Add(m)
		}
	}
	return &out
}

// HasLegalMoves reports whether the side to move has any legal move,
// without building the full list (used for checkmate/stalemate detection).
func HasLegalMoves(pos *Position) bool {
	pseudo := GeneratePseudoLegalMoves(pos)
	for _, m := range pseudo.Slice() {
		if IsLegal(pos, m) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is in check with no legal
// reply.
func IsCheckmate(pos *Position) bool {
	return pos.InCheck() && !HasLegalMoves(pos)
}

// GenerateCaptures returns only the capturing board moves (no drops, since a
// drop can never capture), for use by quiescence search.
func GenerateCaptures(pos *Position) *MoveList {
	all := GenerateLegalMoves(pos)
	var out MoveList
	for _, m := range all.Slice() {
		if !m.IsDrop() && pos.PieceAt(m.To()) != NoPiece {
			out.Add(m)
		}
	}
	return &out
}

// excludeUchifuzume removes, from a pawn drop's candidate squares, the
// single square (if any) that would deliver an illegal drop-pawn checkmate.
// Implements the four-step procedure: find the one square where a dropped
// pawn would check the enemy king; if that square isn't even a candidate,
// the rule is moot; otherwise simulate the drop and ask whether the king
// can escape (stepping away or capturing the undefended pawn) or any other
// defender can capture it — if neither, the drop delivers checkmate and
// must be excluded.
func excludeUchifuzume(pos *Position, us Color, validSquares Bitboard) Bitboard {
	them := us.Other()
	kingSq := pos.KingSquare[them]
	if kingSq == NoSquare {
		return validSquares
	}

	fwd := -1
	if us == White {
		fwd = 1
	}
	candRank := kingSq.Rank() - fwd
	if candRank < 0 || candRank > 8 {
		return validSquares
	}
	candSq := NewSquare(kingSq.File(), candRank)
	if !validSquares.IsSet(candSq) {
		return validSquares
	}

	undo := pos.MakeMove(NewDrop(Pawn, candSq))
	mates := isUchifuzumeMate(pos, them, candSq)
	pos.UnmakeMove(NewDrop(Pawn, candSq), undo)

	if mates {
		return validSquares.Clear(candSq)
	}
	return validSquares
}

// isUchifuzumeMate must be called right after the candidate pawn drop has
// been made (pos.SideToMove == them). It reports whether them has no legal
// response: no king escape (including capturing the undefended pawn) and no
// other defender can capture the pawn. Any pin on a would-be defender is
// caught automatically by IsLegal, since that performs a full make/unmake
// own-king-safety check.
func isUchifuzumeMate(pos *Position, them Color, pawnSq Square) bool {
	kingSq := pos.KingSquare[them]

	canEscape := false
	kingTargets := StepAttacksFor(King, them, kingSq).AndNot(pos.Occupied[them])
	kingTargets.ForEach(func(to Square) {
		if canEscape {
			return
		}
		if IsLegal(pos, NewMove(kingSq, to, false)) {
			canEscape = true
		}
	})
	if canEscape {
		return false
	}

	canDefend := false
	defenders := AttackersTo(pos, pawnSq, them).Clear(kingSq)
	defenders.ForEach(func(from Square) {
		if canDefend {
			return
		}
		if IsLegal(pos, NewMove(from, pawnSq, false)) {
			canDefend = true
		}
	})
	return !canDefend
}
