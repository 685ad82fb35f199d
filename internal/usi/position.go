package usi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hailam/shogi-usi/internal/shogi"
)

// appliedPosition is the result of successfully applying a `position`
// command: the resulting position plus the root-relative hash/check
// history the search's repetition detection is handed through
// SetPositionHistory, recomputed from scratch on every apply (no incremental carry-over
// between unrelated positions).
type appliedPosition struct {
	pos    *shogi.Position
	hashes []uint64
	checks []bool
}

// applyPositionCommand parses a `position` command's argument tokens
// (everything after the literal "position") and replays it from either
// startpos or an SFEN, applying any trailing moves. It never mutates
// caller state itself; on success the caller swaps it in atomically, on
// failure the caller keeps whatever position it already had.
func applyPositionCommand(args []string) (result appliedPosition, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = appliedPosition{}, fmt.Errorf("position: panic applying command: %v", r)
		}
	}()
	return applyPositionCommandUnguarded(args)
}

// applyPositionCommandUnguarded does the actual parsing and move replay.
// MakeMove assumes its argument is pseudo-legal, so a future bug anywhere
// upstream of ParseMove (a malformed legal-move table, a corrupted position)
// could in principle panic mid-replay; applyPositionCommand's recover above
// turns that into the same "keep the previous position" error path a
// malformed SFEN already takes, instead of taking the whole process down.
func applyPositionCommandUnguarded(args []string) (appliedPosition, error) {
	if len(args) == 0 {
		return appliedPosition{}, errors.New("position: missing startpos/sfen")
	}

	var pos *shogi.Position
	idx := 1

	switch args[0] {
	case "startpos":
		pos = shogi.StartPosition()

	case "sfen":
		end := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				end = i
				break
			}
		}
		if end <= 1 {
			return appliedPosition{}, errors.New("position sfen: missing SFEN fields")
		}
		sfen := strings.Join(args[1:end], " ")
		var err error
		pos, err = shogi.FromSFEN(sfen)
		if err != nil {
			return appliedPosition{}, fmt.Errorf("position sfen %q: %w", sfen, err)
		}
		idx = end

	default:
		return appliedPosition{}, fmt.Errorf("position: unknown kind %q", args[0])
	}

	hashes := []uint64{pos.Hash}
	checks := []bool{pos.InCheck()}

	if idx < len(args) {
		if args[idx] != "moves" {
			return appliedPosition{}, fmt.Errorf("position: unexpected token %q", args[idx])
		}
		for _, ms := range args[idx+1:] {
			m, err := ParseMove(pos, ms)
			if err != nil {
				return appliedPosition{}, fmt.Errorf("position: applying move %q: %w", ms, err)
			}
			pos.MakeMove(m)
			hashes = append(hashes, pos.Hash)
			checks = append(checks, pos.InCheck())
		}
	}

	return appliedPosition{pos: pos, hashes: hashes, checks: checks}, nil
}
