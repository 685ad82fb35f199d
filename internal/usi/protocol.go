package usi

import (
	"time"

	"github.com/hailam/shogi-usi/internal/search"
	"github.com/hailam/shogi-usi/internal/shogi"
)

// SearchID identifies one `go` command's worker run. Messages carrying a
// stale id (left over from a search the controller already moved past)
// are dropped silently by the collector loop.
type SearchID uint64

// WorkerMessage is the typed stream a search worker sends back to the
// controller. Every concrete message carries the search_id it belongs to.
type WorkerMessage interface {
	searchID() SearchID
}

// SearchStartedMsg is always the first message for a given search_id.
type SearchStartedMsg struct {
	ID        SearchID
	StartTime time.Time
}

func (m SearchStartedMsg) searchID() SearchID { return m.ID }

// InfoMsg carries one iteration's aggregate info, forwarded to the GUI
// as a USI `info` line.
type InfoMsg struct {
	ID   SearchID
	Info search.Info
}

func (m InfoMsg) searchID() SearchID { return m.ID }

// PartialResultMsg reports the best root move found so far, usable as a
// fallback bestmove if the search is stopped before finishing. PV carries
// the rest of the line so a stop landing mid-iteration can still report a
// ponder move, not just the bestmove.
type PartialResultMsg struct {
	ID    SearchID
	Move  shogi.Move
	PV    []shogi.Move
	Depth int
	Score int
}

func (m PartialResultMsg) searchID() SearchID { return m.ID }

// IterationCompleteMsg marks the end of one iterative-deepening depth.
// Depths are delivered in non-decreasing order for a given search.
type IterationCompleteMsg struct {
	ID    SearchID
	Depth int
}

func (m IterationCompleteMsg) searchID() SearchID { return m.ID }

// SearchFinishedMsg reports the search's final result, reached by hitting
// a stop condition (max depth, node limit, mate, or an asserted stop flag).
type SearchFinishedMsg struct {
	ID       SearchID
	RootHash uint64
	Move     shogi.Move
	Score    int
	Depth    int
	PV       []shogi.Move
}

func (m SearchFinishedMsg) searchID() SearchID { return m.ID }

// FinishedMsg is always the last message for a given search_id. FromGuard
// is true when the worker's panic-recovery guard produced it instead of
// the worker returning normally.
type FinishedMsg struct {
	ID        SearchID
	FromGuard bool
}

func (m FinishedMsg) searchID() SearchID { return m.ID }

// ErrorMsg reports a recovered panic or other worker-side failure.
type ErrorMsg struct {
	ID  SearchID
	Err error
}

func (m ErrorMsg) searchID() SearchID { return m.ID }

// BestMoveSource tags every bestmove the controller ever emits, for the
// termination-reason metadata attached to it.
type BestMoveSource int

const (
	SessionInSearchFinished BestMoveSource = iota
	SessionOnStop
	PartialResultOnFinish
	PartialResultTimeout
	EmergencyFallbackOnFinish
	EmergencyFallbackTimeout
	ResignOnFinish
	ResignTimeout
	Resign
)

func (s BestMoveSource) String() string {
	switch s {
	case SessionInSearchFinished:
		return "SessionInSearchFinished"
	case SessionOnStop:
		return "SessionOnStop"
	case PartialResultOnFinish:
		return "PartialResultOnFinish"
	case PartialResultTimeout:
		return "PartialResultTimeout"
	case EmergencyFallbackOnFinish:
		return "EmergencyFallbackOnFinish"
	case EmergencyFallbackTimeout:
		return "EmergencyFallbackTimeout"
	case ResignOnFinish:
		return "ResignOnFinish"
	case ResignTimeout:
		return "ResignTimeout"
	case Resign:
		return "Resign"
	default:
		return "Unknown"
	}
}

// TerminationReason groups the BestMoveSource values into the coarser
// category recorded for later analysis.
type TerminationReason int

const (
	Completed TerminationReason = iota
	UserStop
	TimeLimit
	ErrorReason
)

func (r TerminationReason) String() string {
	switch r {
	case Completed:
		return "Completed"
	case UserStop:
		return "UserStop"
	case TimeLimit:
		return "TimeLimit"
	case ErrorReason:
		return "Error"
	default:
		return "Unknown"
	}
}

// TerminationReason maps a bestmove's source to its coarse category.
func (s BestMoveSource) TerminationReason() TerminationReason {
	switch s {
	case PartialResultTimeout, EmergencyFallbackTimeout, ResignTimeout:
		return TimeLimit
	case SessionOnStop:
		return UserStop
	case Resign, ResignOnFinish:
		return ErrorReason
	default:
		return Completed
	}
}

// State is the session controller's search lifecycle state.
type State int32

const (
	Idle State = iota
	Searching
	StopRequested
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Searching:
		return "Searching"
	case StopRequested:
		return "StopRequested"
	default:
		return "Unknown"
	}
}
