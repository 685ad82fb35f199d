package telemetry

import "github.com/dustin/go-humanize"

// Bytes renders n as a human-readable size for startup/isready log lines,
// e.g. "Hash 64 MB" or "EvalFile 21 MB loaded (3.2 MB compressed)".
func Bytes(n uint64) string {
	return humanize.Bytes(n)
}
