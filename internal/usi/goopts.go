package usi

import (
	"strconv"
	"time"

	"github.com/hailam/shogi-usi/internal/search"
	"github.com/hailam/shogi-usi/internal/shogi"
)

// GoOptions is the parsed token stream of a `go` command.
type GoOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	Ponder    bool
	BTime     time.Duration
	WTime     time.Duration
	BInc      time.Duration
	WInc      time.Duration
	Byoyomi   time.Duration
	MovesToGo int
}

// ParseGoOptions reads a `go`command's argument tokens. Unrecognized tokens
// are ignored, matching the USI/UCI convention of tolerating unknown flags
// rather than rejecting the whole command.
func ParseGoOptions(args []string) GoOptions {
	var g GoOptions
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			i++
			if i < len(args) {
				g.Depth, _ = strconv.Atoi(args[i])
			}
		case "nodes":
			i++
			if i < len(args) {
				n, _ := strconv.ParseUint(args[i], 10, 64)
				g.Nodes = n
			}
		case "movetime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				g.MoveTime = time.Duration(ms) * time.Millisecond
			}
		case "infinite":
			g.Infinite = true
		case "ponder":
			g.Ponder = true
		case "btime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				g.BTime = time.Duration(ms) * time.Millisecond
			}
		case "wtime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				g.WTime = time.Duration(ms) * time.Millisecond
			}
		case "binc":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				g.BInc = time.Duration(ms) * time.Millisecond
			}
		case "winc":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				g.WInc = time.Duration(ms) * time.Millisecond
			}
		case "byoyomi":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				g.Byoyomi = time.Duration(ms) * time.Millisecond
			}
		case "movestogo":
			i++
			if i < len(args) {
				g.MovesToGo, _ = strconv.Atoi(args[i])
			}
		}
	}
	return g
}

// ToLimits converts the parsed tokens into the search package's own limits
// type, indexed by color the way TimeManager.Init expects.
func (g GoOptions) ToLimits() search.UCILimits {
	var limits search.UCILimits
	limits.Time[shogi.Black] = g.BTime
	limits.Time[shogi.White] = g.WTime
	limits.Inc[shogi.Black] = g.BInc
	limits.Inc[shogi.White] = g.WInc
	limits.Byoyomi = g.Byoyomi
	limits.MovesToGo = g.MovesToGo
	limits.MoveTime = g.MoveTime
	limits.Depth = g.Depth
	limits.Nodes = g.Nodes
	limits.Infinite = g.Infinite
	limits.Ponder = g.Ponder
	return limits
}
