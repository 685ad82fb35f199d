package tt

import "github.com/hailam/shogi-usi/internal/shogi"

// Packed layout of a slot's 64-bit data word (low bit first):
//
//	bits  0-15  move (shogi.Move, 16 bits)
//	bits 16-31  score, int16
//	bits 32-47  static eval, int16
//	bits 48-54  depth, 0-127
//	bit     55  tt_pv flag
//	bits 56-57  bound (Bound)
//	bits 58-63  generation, 0-63
const (
	shiftMove       = 0
	shiftScore      = 16
	shiftStaticEval = 32
	shiftDepth      = 48
	shiftPV         = 55
	shiftBound      = 56
	shiftGeneration = 58
)

func packData(move shogi.Move, score, staticEval, depth int, bound Bound, pv bool, generation uint8) uint64 {
	var pvBit uint64
	if pv {
		pvBit = 1
	}
	return uint64(uint16(move))<<shiftMove |
		uint64(uint16(int16(score)))<<shiftScore |
		uint64(uint16(int16(staticEval)))<<shiftStaticEval |
		uint64(depth&0x7F)<<shiftDepth |
		pvBit<<shiftPV |
		uint64(bound&0x3)<<shiftBound |
		uint64(generation&generationMask)<<shiftGeneration
}

func unpackData(data uint64) (move shogi.Move, score, staticEval, depth int, bound Bound, pv bool, generation uint8) {
	move = shogi.Move(uint16(data >> shiftMove))
	score = int(int16(uint16(data >> shiftScore)))
	staticEval = int(int16(uint16(data >> shiftStaticEval)))
	depth = int((data >> shiftDepth) & 0x7F)
	pv = (data>>shiftPV)&1 != 0
	bound = Bound((data >> shiftBound) & 0x3)
	generation = uint8((data >> shiftGeneration) & generationMask)
	return
}
