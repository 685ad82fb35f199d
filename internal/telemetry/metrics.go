package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hailam/shogi-usi"

// Tracer returns the engine-wide tracer. No exporter is wired by default
// (otel's global provider is a no-op until a host process registers one),
// but every search still goes through real span creation so a future
// collector needs no code changes to light up.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Meter returns the engine-wide meter.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// SearchMetrics holds the counters/histograms recorded once per go search.
// Construct one and keep it for the engine's lifetime; instrument creation
// is not free enough to repeat per search.
type SearchMetrics struct {
	nodes   metric.Int64Counter
	ttHits  metric.Int64Counter
	ttProbe metric.Int64Counter
	nps     metric.Int64Histogram
}

// NewSearchMetrics registers the search instruments against the engine-wide
// meter. Errors from instrument creation are logged and otherwise ignored:
// a nil instrument from a failed registration is still safe to call, it
// just silently drops the measurement, which matches otel's own
// fail-open philosophy for telemetry that must never break the engine.
func NewSearchMetrics() *SearchMetrics {
	m := Meter()
	log := Logger()

	nodes, err := m.Int64Counter("shogi_usi.search.nodes",
		metric.WithDescription("nodes searched"))
	if err != nil {
		log.Error(err, "register nodes counter")
	}
	ttHits, err := m.Int64Counter("shogi_usi.tt.hits",
		metric.WithDescription("transposition table probe hits"))
	if err != nil {
		log.Error(err, "register tt hits counter")
	}
	ttProbe, err := m.Int64Counter("shogi_usi.tt.probes",
		metric.WithDescription("transposition table probes"))
	if err != nil {
		log.Error(err, "register tt probes counter")
	}
	nps, err := m.Int64Histogram("shogi_usi.search.nps",
		metric.WithDescription("nodes per second at search completion"))
	if err != nil {
		log.Error(err, "register nps histogram")
	}

	return &SearchMetrics{nodes: nodes, ttHits: ttHits, ttProbe: ttProbe, nps: nps}
}

// RecordIteration records one iterative-deepening iteration's aggregate
// node count and instantaneous nodes-per-second.
func (s *SearchMetrics) RecordIteration(ctx context.Context, nodes uint64, nps uint64) {
	if s.nodes != nil {
		s.nodes.Add(ctx, int64(nodes))
	}
	if s.nps != nil {
		s.nps.Record(ctx, int64(nps))
	}
}

// RecordTTProbe records one transposition table probe and whether it hit.
func (s *SearchMetrics) RecordTTProbe(ctx context.Context, hit bool) {
	if s.ttProbe != nil {
		s.ttProbe.Add(ctx, 1)
	}
	if hit && s.ttHits != nil {
		s.ttHits.Add(ctx, 1)
	}
}

// StartSearchSpan opens the one-span-per-search the session controller
// wraps around every go command.
func StartSearchSpan(ctx context.Context, searchID uint64, depthLimit int, byoyomiMS int64) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "search",
		trace.WithAttributes(
			attribute.Int64("search_id", int64(searchID)),
			attribute.Int("depth_limit", depthLimit),
			attribute.Int64("byoyomi_ms", byoyomiMS),
		))
}
