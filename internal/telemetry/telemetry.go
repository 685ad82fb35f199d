// Package telemetry wires the engine's diagnostic output: a process-wide
// logr.Logger writing to stderr (stdout is reserved for USI protocol
// lines), and the OpenTelemetry tracer/meter the search and session
// controller instrument themselves with.
package telemetry

import (
	"log"
	"os"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

var (
	loggerOnce sync.Once
	logger     logr.Logger
)

// Logger returns the process-wide logger, built lazily on first use. Every
// package that logs takes one in its constructor rather than calling
// fmt.Println/log.Printf directly.
func Logger() logr.Logger {
	loggerOnce.Do(func() {
		logger = stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds))
	})
	return logger
}

// SetLogger overrides the process-wide logger, for callers (tests, or a
// future host process) that want a different sink than stderr.
func SetLogger(l logr.Logger) {
	loggerOnce.Do(func() {}) // ensure Logger's lazy init never overwrites this
	logger = l
}
