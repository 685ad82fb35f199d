package shogi

// direction is a (file delta, rank delta) step.
type direction struct{ df, dr int }

var (
	orthogonal = [4]direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal   = [4]direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// rays[sq][dir] lists the squares from sq outward along dir, nearest first,
// stopping at the board edge. Used by slider attack generation: walk the
// ray, union squares up to and including the first occupied one.
var orthoRays [NumSquares][4][]Square
var diagRays [NumSquares][4][]Square

// stepAttacks[kind][color][sq] is the precomputed attack set for a
// non-sliding piece kind standing on sq.
var stepAttacks [NumPieceKinds][2][NumSquares]Bitboard

// betweenBB[a][b] is the set of squares strictly between a and b if they
// share a rank, file, or diagonal; otherwise empty. Used for pin-ray and
// check-blocking computation, mirroring the teacher's ComputePinned
// sniper/Between() pattern generalized to shogi's extra piece types.
var betweenBB [NumSquares][NumSquares]Bitboard

// lineBB[a][b] is the full line (both rays) through a and b if aligned.
var lineBB [NumSquares][NumSquares]Bitboard

// lastRankMask[c][n-1] is the set of squares in the last n ranks of color
// c's advance (used to forbid pawn/lance on the last rank, knight on the
// last two), precomputed once since it is consulted on every drop
// generation.
var lastRankMask [2][2]Bitboard

func init() {
	initRays()
	initStepAttacks()
	initBetween()
	for _, c := range [2]Color{Black, White} {
		for n := 1; n <= 2; n++ {
			var bb Bitboard
			for sq := Square(0); sq < NumSquares; sq++ {
				if sq.RelativeRank(c) >= 9-n {
					bb = bb.Set(sq)
				}
			}
			lastRankMask[c][n-1] = bb
		}
	}
}

// LastRanksMask returns the squares within the last n (1 or 2) ranks of
// color c's advance.
func LastRanksMask(c Color, n int) Bitboard {
	return lastRankMask[c][n-1]
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 9 && rank >= 0 && rank < 9
}

func initRays() {
	for sq := Square(0); sq < NumSquares; sq++ {
		f, r := sq.File(), sq.Rank()
		for i, d := range orthogonal {
			var squares []Square
			nf, nr := f+d.df, r+d.dr
			for onBoard(nf, nr) {
				squares = append(squares, NewSquare(nf, nr))
				nf += d.df
				nr += d.dr
			}
			orthoRays[sq][i] = squares
		}
		for i, d := range diagonal {
			var squares []Square
			nf, nr := f+d.df, r+d.dr
			for onBoard(nf, nr) {
				squares = append(squares, NewSquare(nf, nr))
				nf += d.df
				nr += d.dr
			}
			diagRays[sq][i] = squares
		}
	}
}

// slideAttack walks rays from sq, including squares up to and including
// the first square occupied in occ, then stopping.
func slideAttack(sq Square, rays [4][]Square, occ Bitboard) Bitboard {
	var bb Bitboard
	for _, ray := range rays {
		for _, s := range ray {
			bb = bb.Set(s)
			if occ.IsSet(s) {
				break
			}
		}
	}
	return bb
}

// LanceAttacks returns the lance attack set from sq for color c given
// occupancy occ (lance only slides straight toward the enemy camp).
func LanceAttacks(sq Square, c Color, occ Bitboard) Bitboard {
	dirIdx := 2 // {0,1}
	if c == Black {
		dirIdx = 3 // {0,-1}
	}
	var bb Bitboard
	for _, s := range orthoRays[sq][dirIdx] {
		bb = bb.Set(s)
		if occ.IsSet(s) {
			break
		}
	}
	return bb
}

// BishopAttacks returns the diagonal slider attack set from sq.
func BishopAttacks(sq Square, occ Bitboard) Bitboard {
	return slideAttack(sq, diagRays[sq], occ)
}

// RookAttacks returns the orthogonal slider attack set from sq.
func RookAttacks(sq Square, occ Bitboard) Bitboard {
	return slideAttack(sq, orthoRays[sq], occ)
}

// HorseAttacks returns a promoted bishop's attack set: diagonal slide plus
// orthogonal king-step.
func HorseAttacks(sq Square, occ Bitboard) Bitboard {
	return BishopAttacks(sq, occ).Or(stepAttacks[King][0][sq])
}

// DragonAttacks returns a promoted rook's attack set: orthogonal slide
// plus diagonal king-step.
func DragonAttacks(sq Square, occ Bitboard) Bitboard {
	return RookAttacks(sq, occ).Or(stepAttacks[King][0][sq])
}

func setStep(kind PieceType, c Color, sq Square, deltas []direction) {
	f, r := sq.File(), sq.Rank()
	var bb Bitboard
	for _, d := range deltas {
		nf, nr := f+d.df, r+d.dr
		if onBoard(nf, nr) {
			bb = bb.Set(NewSquare(nf, nr))
		}
	}
	stepAttacks[kind][c][sq] = bb
}

func initStepAttacks() {
	// Black moves toward decreasing rank (toward rank 0); White toward
	// increasing rank, matching Square.RelativeRank's convention.
	pawnDelta := map[Color][]direction{
		Black: {{0, -1}},
		White: {{0, 1}},
	}
	knightDelta := map[Color][]direction{
		Black: {{1, -2}, {-1, -2}},
		White: {{1, 2}, {-1, 2}},
	}
	silverDelta := map[Color][]direction{
		Black: {{0, -1}, {1, -1}, {-1, -1}, {1, 1}, {-1, 1}},
		White: {{0, 1}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1}},
	}
	goldDelta := map[Color][]direction{
		Black: {{0, -1}, {1, -1}, {-1, -1}, {1, 0}, {-1, 0}, {0, 1}},
		White: {{0, 1}, {1, 1}, {-1, 1}, {1, 0}, {-1, 0}, {0, -1}},
	}
	kingDelta := append(append([]direction{}, orthogonal[:]...), diagonal[:]...)

	for sq := Square(0); sq < NumSquares; sq++ {
		for _, c := range [2]Color{Black, White} {
			setStep(Pawn, c, sq, pawnDelta[c])
			setStep(Knight, c, sq, knightDelta[c])
			setStep(Silver, c, sq, silverDelta[c])
			setStep(Gold, c, sq, goldDelta[c])
			setStep(PromotedPawn, c, sq, goldDelta[c])
			setStep(PromotedLance, c, sq, goldDelta[c])
			setStep(PromotedKnight, c, sq, goldDelta[c])
			setStep(PromotedSilver, c, sq, goldDelta[c])
			setStep(King, c, sq, kingDelta)
		}
	}
}

// StepAttacksFor returns the precomputed attack bitboard for a non-sliding
// piece kind+color standing on sq. For King the color argument is unused.
func StepAttacksFor(kind PieceType, c Color, sq Square) Bitboard {
	return stepAttacks[kind][c][sq]
}

func initBetween() {
	for a := Square(0); a < NumSquares; a++ {
		for i, ray := range orthoRays[a] {
			_ = i
			for _, b := range ray {
				accumulateBetween(a, b, orthoRays[a])
			}
		}
		for _, ray := range diagRays[a] {
			for _, b := range ray {
				accumulateBetween(a, b, diagRays[a])
			}
		}
	}
}

func accumulateBetween(a, b Square, rays [4][]Square) {
	for _, ray := range rays {
		found := false
		var between Bitboard
		for _, s := range ray {
			if s == b {
				found = true
				break
			}
			between = between.Set(s)
		}
		if found {
			betweenBB[a][b] = between
			var full Bitboard
			for _, s := range ray {
				full = full.Set(s)
			}
			lineBB[a][b] = full.Set(a)
			return
		}
	}
}

// Between returns the squares strictly between a and b if aligned
// (rank, file, or diagonal), else Empty.
func Between(a, b Square) Bitboard {
	return betweenBB[a][b]
}

// Line returns the full ray (including a) through a and b if aligned.
func Line(a, b Square) Bitboard {
	return lineBB[a][b]
}

// Aligned reports whether a, b, c lie on a common rank, file, or diagonal.
func Aligned(a, b, c Square) bool {
	l := lineBB[a][b]
	return !l.IsEmpty() && l.IsSet(c)
}

// AttackersTo returns every byColor piece currently attacking sq, given the
// position's occupancy. Generalizes the teacher's AttackersByColor/
// IsSquareAttacked helpers to shogi's directional step pieces (pawn,
// knight, silver, gold move differently for Black vs White) and to the
// lance's one-directional slide.
func AttackersTo(pos *Position, sq Square, byColor Color) Bitboard {
	occ := pos.AllOccupied
	opp := byColor.Other()
	var attackers Bitboard

	// Step pieces: a byColor piece at os attacks sq iff os is in the
	// attack set that a piece of the *opposite* color standing on sq
	// would generate (direction reversal).
	attackers = attackers.Or(StepAttacksFor(Pawn, opp, sq).And(pos.Pieces[byColor][Pawn]))
	attackers = attackers.Or(StepAttacksFor(Knight, opp, sq).And(pos.Pieces[byColor][Knight]))
	attackers = attackers.Or(StepAttacksFor(Silver, opp, sq).And(pos.Pieces[byColor][Silver]))

	goldLike := pos.Pieces[byColor][Gold].
		Or(pos.Pieces[byColor][PromotedPawn]).
		Or(pos.Pieces[byColor][PromotedLance]).
		Or(pos.Pieces[byColor][PromotedKnight]).
		Or(pos.Pieces[byColor][PromotedSilver])
	attackers = attackers.Or(StepAttacksFor(Gold, opp, sq).And(goldLike))

	kingLike := pos.Pieces[byColor][King].Or(pos.Pieces[byColor][PromotedBishop]).Or(pos.Pieces[byColor][PromotedRook])
	attackers = attackers.Or(StepAttacksFor(King, byColor, sq).And(kingLike))

	// Diagonal sliders: Bishop and Horse.
	diagSliders := pos.Pieces[byColor][Bishop].Or(pos.Pieces[byColor][PromotedBishop])
	attackers = attackers.Or(BishopAttacks(sq, occ).And(diagSliders))

	// Orthogonal sliders: Rook and Dragon attack in all 4 directions;
	// Lance only attacks toward its own forward direction, i.e. only
	// from the square lying on the ray *behind* sq from byColor's
	// perspective (dirIdx 2/south holds Black lance attackers, dirIdx
	// 3/north holds White lance attackers, matching LanceAttacks).
	orthoSliders := pos.Pieces[byColor][Rook].Or(pos.Pieces[byColor][PromotedRook])
	attackers = attackers.Or(RookAttacks(sq, occ).And(orthoSliders))

	lances := pos.Pieces[byColor][Lance]
	if !lances.IsEmpty() {
		lanceDirIdx := 2
		if byColor == White {
			lanceDirIdx = 3
		}
		for _, s := range orthoRays[sq][lanceDirIdx] {
			if occ.IsSet(s) {
				if lances.IsSet(s) {
					attackers = attackers.Set(s)
				}
				break
			}
		}
	}

	return attackers
}

// IsSquareAttacked reports whether sq is attacked by any byColor piece.
func IsSquareAttacked(pos *Position, sq Square, byColor Color) bool {
	return !AttackersTo(pos, sq, byColor).IsEmpty()
}
