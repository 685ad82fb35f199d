package nnue

import "github.com/hailam/shogi-usi/internal/shogi"

// boardKinds is the count of non-king piece kinds a board feature can hold:
// the seven base types plus six promoted forms (Gold and King never
// promote, so NumPieceKinds-1 excludes only King).
const boardKinds = shogi.NumPieceKinds - 1

// pieceIndex maps a non-king PieceType to a dense [0, boardKinds) slot,
// closing the gap King leaves at position 7 in the PieceType enum.
func pieceIndex(kind shogi.PieceType) int {
	if kind == shogi.King {
		return -1
	}
	if int(kind) < int(shogi.King) {
		return int(kind)
	}
	return int(kind) - 1
}

// handOffset[i] is the feature-slot offset of the first count-level of
// shogi.HandOrder[i] within one (king, owner-color) hand block. handDims
// is the total slot count per (king, owner-color) block.
var handOffset, handDims = computeHandLayout()

func computeHandLayout() ([7]int, int) {
	var off [7]int
	total := 0
	for i, pt := range shogi.HandOrder {
		off[i] = total
		total += shogi.HandMax(pt)
	}
	return off, total
}

func handSlot(pt shogi.PieceType) int {
	for i, p := range shogi.HandOrder {
		if p == pt {
			return handOffset[i]
		}
	}
	return -1
}

// Board feature space: one slot per (king square, piece kind x owner
// relative to the perspective, piece square).
const (
	boardColorKinds  = boardKinds * 2
	BoardFeatureSize = shogi.NumSquares * boardColorKinds * shogi.NumSquares
)

// Hand feature space follows the board space: one slot per (king square,
// hand-owner relative to the perspective, piece type, count level).
var (
	handBlockSize = handDims * 2
	HandFeatureSize = shogi.NumSquares * handBlockSize
)

// FeatureDimension is the total per-perspective input width.
var FeatureDimension = BoardFeatureSize + HandFeatureSize

// view reorients (kingSq, sq, color) into perspective's frame: Black's own
// frame is canonical, White's perspective mirrors every square and swaps
// color labels so both perspectives see "their own" pieces the same way.
func view(perspective shogi.Color, kingSq, sq shogi.Square, color shogi.Color) (shogi.Square, shogi.Square, shogi.Color) {
	if perspective == shogi.Black {
		return kingSq, sq, color
	}
	return kingSq.Mirror(), sq.Mirror(), color.Other()
}

// BoardFeatureIndex returns the feature slot for a piece of kind/color on
// sq, seen from perspective with its king on kingSq. Returns -1 for King
// (kings are never encoded as board features; the king square indexes the
// feature space itself).
func BoardFeatureIndex(perspective shogi.Color, kingSq shogi.Square, kind shogi.PieceType, color shogi.Color, sq shogi.Square) int {
	pi := pieceIndex(kind)
	if pi < 0 {
		return -1
	}
	vKing, vSq, vColor := view(perspective, kingSq, sq, color)
	colorSlot := pi + int(vColor)*boardKinds
	return int(vKing)*boardColorKinds*shogi.NumSquares + colorSlot*shogi.NumSquares + int(vSq)
}

// HandFeatureIndex returns the feature slot for holding at least level
// pieces of pt in owner's hand, seen from perspective. level must be in
// [1, HandMax(pt)].
func HandFeatureIndex(perspective shogi.Color, kingSq shogi.Square, pt shogi.PieceType, owner shogi.Color, level int) int {
	slot := handSlot(pt)
	if slot < 0 {
		return -1
	}
	vKing, _, vColor := view(perspective, kingSq, kingSq, owner)
	colorOff := int(vColor) * handDims
	return BoardFeatureSize + int(vKing)*handBlockSize + colorOff + slot + (level - 1)
}

// GetActiveFeatures returns every active feature index, per perspective
// (index 0 = Black's perspective, 1 = White's), for a full accumulator
// rebuild.
func GetActiveFeatures(pos *shogi.Position) [2][]int {
	var out [2][]int
	out[0] = make([]int, 0, 64)
	out[1] = make([]int, 0, 64)

	kingSq := pos.KingSquare

	for sq := shogi.Square(0); sq < shogi.NumSquares; sq++ {
		p := pos.PieceAt(sq)
		if p == shogi.NoPiece || p.Kind() == shogi.King {
			continue
		}
		for persp := shogi.Black; persp <= shogi.White; persp++ {
			idx := BoardFeatureIndex(persp, kingSq[persp], p.Kind(), p.Color(), sq)
			out[persp] = append(out[persp], idx)
		}
	}

	for _, owner := range [2]shogi.Color{shogi.Black, shogi.White} {
		for _, pt := range shogi.HandOrder {
			n := pos.Hands[owner].Count(pt)
			for level := 1; level <= n; level++ {
				for persp := shogi.Black; persp <= shogi.White; persp++ {
					idx := HandFeatureIndex(persp, kingSq[persp], pt, owner, level)
					out[persp] = append(out[persp], idx)
				}
			}
		}
	}

	return out
}

// ChangedFeatures computes the incremental feature diff for move m, which
// must already have been applied to pos via MakeMove with undo as the
// UndoInfo it returned. refresh reports that the move changed a king
// square, which this package treats as a full-rebuild trigger rather than
// diffing the entire reoriented feature space for that perspective.
func ChangedFeatures(pos *shogi.Position, m shogi.Move, undo shogi.UndoInfo) (add, rem [2][]int, refresh bool) {
	to := m.To()
	result := pos.PieceAt(to)
	if result.Kind() == shogi.King {
		return add, rem, true
	}

	us := pos.SideToMove.Other()
	kingSq := pos.KingSquare

	addIdx := func(persp shogi.Color, idx int) {
		add[persp] = append(add[persp], idx)
	}
	remIdx := func(persp shogi.Color, idx int) {
		rem[persp] = append(rem[persp], idx)
	}

	if m.IsDrop() {
		pt := m.DropPiece()
		beforeCount := undo.Hands[us].Count(pt)
		for persp := shogi.Black; persp <= shogi.White; persp++ {
			remIdx(persp, HandFeatureIndex(persp, kingSq[persp], pt, us, beforeCount))
			addIdx(persp, BoardFeatureIndex(persp, kingSq[persp], pt, us, to))
		}
	} else {
		from := m.From()
		origKind := result.Kind()
		if m.IsPromotion() {
			origKind = origKind.Unpromote()
		}
		for persp := shogi.Black; persp <= shogi.White; persp++ {
			remIdx(persp, BoardFeatureIndex(persp, kingSq[persp], origKind, us, from))
			addIdx(persp, BoardFeatureIndex(persp, kingSq[persp], result.Kind(), us, to))
		}
		if undo.CapturedKind != shogi.NoPieceType {
			them := us.Other()
			base := undo.CapturedKind.Unpromote()
			afterCount := pos.Hands[us].Count(base)
			for persp := shogi.Black; persp <= shogi.White; persp++ {
				remIdx(persp, BoardFeatureIndex(persp, kingSq[persp], undo.CapturedKind, them, to))
				addIdx(persp, HandFeatureIndex(persp, kingSq[persp], base, us, afterCount))
			}
		}
	}

	return add, rem, false
}
