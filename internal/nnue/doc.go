// Package nnue implements incremental NNUE (Efficiently Updatable Neural
// Network) evaluation for shogi positions: a HalfKP-style feature set
// generalized from 64-square/5-piece-type chess to 81 squares, shogi's
// fourteen piece kinds (six of which are promoted forms), and the two
// hands of captured pieces available to drop. Architecture and
// quantization follow the lineage of the NNUE approach popularized by
// Shogi's own YaneuraOu/Apery engines and later ported back into
// Stockfish: a linear input layer sized per (king square, piece, hand
// count) feature, clipped-ReLU activations, and a small dense output
// stack, all in fixed-point integer arithmetic for deterministic,
// allocation-free evaluation inside search.
package nnue
