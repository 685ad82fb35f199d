package tuning

import "fmt"

// USIOptionLines renders every spec as a USI "option name ... type spin"
// line, in table order, for the engine's usiok announcement.
func USIOptionLines(p *Params) []string {
	specs := Specs(p)
	lines := make([]string, len(specs))
	for i, s := range specs {
		lines[i] = fmt.Sprintf("option name %s type spin default %d min %d max %d", s.Name, s.Default, s.Min, s.Max)
	}
	return lines
}
