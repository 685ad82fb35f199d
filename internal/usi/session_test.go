package usi

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hailam/shogi-usi/internal/search"
	"github.com/hailam/shogi-usi/internal/tuning"
)

// syncBuffer lets the session's background goroutines write USI lines
// while the test polls the accumulated output, without racing on the
// underlying bytes.Buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func newTestController(t *testing.T) (*Controller, *syncBuffer) {
	t.Helper()
	tp := tuning.DefaultParams()
	eng := search.NewEngine(1, 4, tp)
	if err := eng.LoadEvaluator(""); err != nil {
		t.Fatalf("LoadEvaluator: %v", err)
	}
	out := &syncBuffer{}
	return NewController(eng, tp, nil, out), out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not satisfied within %v", timeout)
	}
}

func TestHandleUSIAnnouncesIdAndOptions(t *testing.T) {
	c, out := newTestController(t)
	c.handleUSI()
	got := out.String()
	if !strings.Contains(got, "id name") {
		t.Fatalf("expected an id name line, got %q", got)
	}
	if !strings.Contains(got, "usiok") {
		t.Fatalf("expected a trailing usiok, got %q", got)
	}
	if !strings.Contains(got, "USI_Hash") {
		t.Fatalf("expected the USI_Hash option line, got %q", got)
	}
}

func TestHandleIsReadyRespondsReadyOk(t *testing.T) {
	c, out := newTestController(t)
	c.handleIsReady()
	if !strings.Contains(out.String(), "readyok") {
		t.Fatalf("expected readyok, got %q", out.String())
	}
}

func TestHandlePositionThenGoEmitsBestmove(t *testing.T) {
	c, out := newTestController(t)
	c.handleUSINewGame()
	c.handlePosition([]string{"startpos"})
	c.handleGo([]string{"depth", "2"})

	waitFor(t, 2*time.Second, func() bool {
		return State(c.state.Load()) == Idle && strings.Contains(out.String(), "bestmove")
	})
}

func TestHandlePositionRejectsMalformedAndKeepsPrevious(t *testing.T) {
	c, out := newTestController(t)
	c.handlePosition([]string{"startpos"})
	prev := c.position

	c.handlePosition([]string{"sfen", "not-a-real-sfen"})

	if c.position != prev {
		t.Fatalf("expected position to be unchanged after a malformed position command")
	}
	if !strings.Contains(out.String(), "info string position error") {
		t.Fatalf("expected a position error info string, got %q", out.String())
	}
}

func TestHandleGoThenStopEventuallyEmitsBestmove(t *testing.T) {
	c, out := newTestController(t)
	c.handleUSINewGame()
	c.handlePosition([]string{"startpos"})
	c.handleGo([]string{"movetime", "5000"})

	// Give the worker a brief moment to start before asking it to stop.
	time.Sleep(5 * time.Millisecond)
	c.handleStop()

	waitFor(t, 2*time.Second, func() bool {
		return State(c.state.Load()) == Idle && strings.Contains(out.String(), "bestmove")
	})
}

func TestHandleGoIgnoredWhileSearching(t *testing.T) {
	c, out := newTestController(t)
	c.handleUSINewGame()
	c.handlePosition([]string{"startpos"})
	c.handleGo([]string{"movetime", "2000"})
	time.Sleep(5 * time.Millisecond)

	beforeID := c.searchIDCounter.Load()
	c.handleGo([]string{"depth", "1"})
	if c.searchIDCounter.Load() != beforeID {
		t.Fatalf("expected a go received mid-search to be ignored, not start a new search")
	}

	c.handleStop()
	waitFor(t, 2*time.Second, func() bool {
		return State(c.state.Load()) == Idle && strings.Contains(out.String(), "bestmove")
	})
}

func TestSnapshotPositionRecoversFromNilPosition(t *testing.T) {
	c, _ := newTestController(t)
	c.handleUSINewGame()
	c.handlePosition([]string{"startpos", "moves", "7g7f"})

	// Simulate a position left nil by a poisoned commit: snapshotPosition
	// must replay lastPositionArgs rather than report no usable position.
	c.posMu.Lock()
	c.position = nil
	c.posMu.Unlock()

	pos, _, _, ok := c.snapshotPosition()
	if !ok {
		t.Fatalf("expected snapshotPosition to recover by replaying lastPositionArgs")
	}
	if pos == nil {
		t.Fatalf("expected a non-nil recovered position")
	}
}

func TestSnapshotPositionResetsPoisonedFlag(t *testing.T) {
	c, _ := newTestController(t)
	c.handleUSINewGame()
	c.handlePosition([]string{"startpos"})

	c.posMu.Lock()
	c.posPoisoned = true
	c.posMu.Unlock()

	if _, _, _, ok := c.snapshotPosition(); !ok {
		t.Fatalf("expected snapshotPosition to succeed despite a poisoned flag")
	}

	c.posMu.Lock()
	poisoned := c.posPoisoned
	c.posMu.Unlock()
	if poisoned {
		t.Fatalf("expected snapshotPosition to clear the poisoned flag")
	}
}

func TestHandleSetOptionClampsTuningValue(t *testing.T) {
	c, out := newTestController(t)
	specs := tuning.Specs(c.tp)
	if len(specs) == 0 {
		t.Fatalf("expected at least one tuning spec")
	}
	name := specs[0].Name
	c.handleSetOption([]string{"name", name, "value", "999999999"})
	if !strings.Contains(out.String(), "clamped") {
		t.Fatalf("expected a clamp report, got %q", out.String())
	}
}
