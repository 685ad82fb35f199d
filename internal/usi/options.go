package usi

import (
	"fmt"
	"strconv"

	"github.com/hailam/shogi-usi/internal/search"
	"github.com/hailam/shogi-usi/internal/tuning"
)

// OptionTable holds every setoption-settable value: the fixed USI_Hash /
// Threads / USI_Ponder / MultiPV / EvalFile surface, plus every SPSA_* entry
// from the tuning package's option table.
type OptionTable struct {
	tp *tuning.Params

	hashMB   int
	threads  int
	ponder   bool
	multiPV  int
	evalFile string
}

const (
	defaultHashMB  = 64
	minHashMB      = 1
	maxHashMB      = 65536
	maxThreads     = 512
	maxMultiPV     = 32
)

// NewOptionTable builds a table over tp with engine defaults for the
// non-tuning options.
func NewOptionTable(tp *tuning.Params) *OptionTable {
	return &OptionTable{
		tp:      tp,
		hashMB:  defaultHashMB,
		threads: search.DefaultThreads(),
		multiPV: 1,
	}
}

// Lines renders every option this table exposes as a USI "option name"
// announcement line, in the order sent after "usi".
func (t *OptionTable) Lines() []string {
	lines := []string{
		fmt.Sprintf("option name USI_Hash type spin default %d min %d max %d", defaultHashMB, minHashMB, maxHashMB),
		fmt.Sprintf("option name Threads type spin default %d min 1 max %d", t.threads, maxThreads),
		"option name USI_Ponder type check default false",
		fmt.Sprintf("option name MultiPV type spin default 1 min 1 max %d", maxMultiPV),
		"option name EvalFile type filename default <empty>",
	}
	lines = append(lines, tuning.USIOptionLines(t.tp)...)
	return lines
}

// Set applies one setoption name/value pair. It returns an info string to
// forward to the GUI (empty if nothing is worth reporting) and whether the
// option name was recognized at all. Unknown names are reported but never
// treated as fatal: the USI error taxonomy says ignore and move on.
func (t *OptionTable) Set(name, value string) (info string, recognized bool) {
	switch name {
	case "USI_Hash":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Sprintf("info string setoption USI_Hash: %v", err), true
		}
		t.hashMB = clampInt(n, minHashMB, maxHashMB)
		return "", true

	case "Threads":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Sprintf("info string setoption Threads: %v", err), true
		}
		t.threads = clampInt(n, 1, maxThreads)
		return "", true

	case "USI_Ponder":
		t.ponder = value == "true"
		return "", true

	case "MultiPV":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Sprintf("info string setoption MultiPV: %v", err), true
		}
		t.multiPV = clampInt(n, 1, maxMultiPV)
		return "", true

	case "EvalFile":
		t.evalFile = value
		return "", true

	default:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Sprintf("info string setoption %s: not an integer", name), false
		}
		res, ok := tuning.SetByName(t.tp, name, n)
		if !ok {
			return fmt.Sprintf("info string setoption: unknown option %s", name), false
		}
		if res.Clamped {
			return fmt.Sprintf("info string setoption %s: clamped %d to [%d, %d] -> %d", name, n, res.Min, res.Max, res.Applied), true
		}
		return "", true
	}
}

func (t *OptionTable) HashMB() int      { return t.hashMB }
func (t *OptionTable) Threads() int     { return t.threads }
func (t *OptionTable) Ponder() bool     { return t.ponder }
func (t *OptionTable) MultiPV() int     { return t.multiPV }
func (t *OptionTable) EvalFile() string { return t.evalFile }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
