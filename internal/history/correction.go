package history

import "github.com/hailam/shogi-usi/internal/shogi"

// Correction history learns a per-bucket adjustment to the NNUE static
// eval, indexed by a reduced board hash (pawn structure, or minor-piece
// placement) rather than the full Zobrist key, so the same structural
// pattern across many positions shares one learned correction. Values
// accumulate in units of correctionGrain and are divided back down by it
// before being folded into an eval, which lets the stored int32 carry
// more precision than the final eval adjustment needs.

func correctionBucket(reducedHash uint64) int {
	return int(reducedHash % CorrectionHistorySize)
}

// CorrectionPawn returns the current pawn-structure eval correction, in
// eval units, for color c.
func (h *History) CorrectionPawn(c shogi.Color, pawnHash uint64) int {
	return int(h.correctionPawn[c][correctionBucket(pawnHash)]) / correctionGrain
}

// CorrectionMinor returns the current minor-piece-placement eval
// correction, in eval units, for color c.
func (h *History) CorrectionMinor(c shogi.Color, minorHash uint64) int {
	return int(h.correctionMinor[c][correctionBucket(minorHash)]) / correctionGrain
}

// UpdateCorrectionPawn folds one more (search score - static eval) error
// sample into the pawn correction bucket, weighted by depth the way the
// main stat tables are.
func (h *History) UpdateCorrectionPawn(c shogi.Color, pawnHash uint64, evalError, depth int) {
	updateCorrectionEntry(&h.correctionPawn[c][correctionBucket(pawnHash)], evalError, depth)
}

// UpdateCorrectionMinor is UpdateCorrectionPawn's counterpart for the
// minor-piece reduced hash.
func (h *History) UpdateCorrectionMinor(c shogi.Color, minorHash uint64, evalError, depth int) {
	updateCorrectionEntry(&h.correctionMinor[c][correctionBucket(minorHash)], evalError, depth)
}

func updateCorrectionEntry(entry *int32, evalError, depth int) {
	weight := clamp(depth+1, 1, 16)
	bonus := evalError * weight * correctionGrain / 32
	v := int(*entry) + bonus
	limit := CorrectionLimit * correctionGrain
	*entry = int32(clamp(v, -limit, limit))
}

// ApplyCorrection adds the pawn and minor corrections for c to a raw
// static eval, saturating the total adjustment at CorrectionLimit so a
// pathological bucket can't swing the eval further than the tables are
// meant to.
func (h *History) ApplyCorrection(staticEval int, c shogi.Color, pawnHash, minorHash uint64) int {
	adj := h.CorrectionPawn(c, pawnHash) + h.CorrectionMinor(c, minorHash)
	adj = clamp(adj, -CorrectionLimit, CorrectionLimit)
	return staticEval + adj
}
