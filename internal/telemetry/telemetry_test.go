package telemetry

import (
	"context"
	"testing"
)

func TestLoggerIsStable(t *testing.T) {
	a := Logger()
	b := Logger()
	if a.GetSink() != b.GetSink() {
		t.Fatalf("expected Logger() to return the same sink across calls")
	}
}

func TestSearchMetricsRecordDoesNotPanicWithoutExporter(t *testing.T) {
	sm := NewSearchMetrics()
	ctx := context.Background()
	sm.RecordIteration(ctx, 1000, 50000)
	sm.RecordTTProbe(ctx, true)
	sm.RecordTTProbe(ctx, false)
}

func TestStartSearchSpanReturnsUsableContext(t *testing.T) {
	ctx, span := StartSearchSpan(context.Background(), 1, 10, 5000)
	defer span.End()
	if ctx == nil {
		t.Fatalf("expected a non-nil context")
	}
}

func TestBytesFormatsHumanReadable(t *testing.T) {
	if got := Bytes(1024); got == "" {
		t.Fatalf("expected a non-empty human-readable size")
	}
}
