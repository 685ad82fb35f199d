package usi

import (
	"fmt"
	"strings"

	"github.com/hailam/shogi-usi/internal/search"
	"github.com/hailam/shogi-usi/internal/tt"
)

// formatInfo renders one completed-iteration report as a USI "info" line.
// multiPV is 0 for a single-PV search, otherwise the 1-based line index.
func formatInfo(info search.Info, multiPV int) string {
	var b strings.Builder
	b.WriteString("info")
	fmt.Fprintf(&b, " depth %d", info.Depth)
	if multiPV > 0 {
		fmt.Fprintf(&b, " multipv %d", multiPV)
	}
	fmt.Fprintf(&b, " score %s", formatScore(info.Score))
	fmt.Fprintf(&b, " nodes %d", info.Nodes)
	fmt.Fprintf(&b, " nps %d", info.NPS)
	fmt.Fprintf(&b, " hashfull %d", info.HashFull)
	fmt.Fprintf(&b, " time %d", info.Time.Milliseconds())
	if len(info.PV) > 0 {
		b.WriteString(" pv")
		for _, m := range info.PV {
			b.WriteByte(' ')
			b.WriteString(m.String())
		}
	}
	return b.String()
}

// formatScore renders a centipawn or mate score, distinguishing mate
// distances the way USI_Ponder-aware GUIs expect: "score mate N" counts
// plies to mate, signed by who delivers it.
func formatScore(score int) string {
	if score >= tt.MateValue-tt.MaxPly {
		pliesToMate := tt.MateValue - score
		return fmt.Sprintf("mate %d", pliesToMate)
	}
	if score <= -tt.MateValue+tt.MaxPly {
		pliesToMate := tt.MateValue + score
		return fmt.Sprintf("mate -%d", pliesToMate)
	}
	return fmt.Sprintf("cp %d", score)
}
