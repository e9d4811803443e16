package ingestion

import "time"

// Phase names one stage of an ingestion run.
type Phase string

const (
	PhaseNews       Phase = "news"
	PhaseCalendar   Phase = "calendar"
	PhaseIndicators Phase = "indicators"
)

// AllPhases lists the phases in run order.
var AllPhases = []Phase{PhaseNews, PhaseCalendar, PhaseIndicators}

// PhaseState tracks a run: Idle, then Running and Succeeded or Failed for
// each phase, then Done.
type PhaseState int

const (
	StateIdle PhaseState = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateDone
)

func (s PhaseState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Observer is notified on every state transition. Phase is empty for Idle and Done.
type Observer func(phase Phase, state PhaseState)

// PhaseResult reports what one phase did.
type PhaseResult struct {
	Phase    Phase
	State    PhaseState
	Fetched  int // Records produced by the sources
	New      int // Records left after deduplication (news only)
	Enriched int // Articles enriched by the service (news only)
	Fallback int // Articles stored with fallback enrichment (news only)
	Written  int // Records durably committed
	Failed   int // Sources or indicators that failed
	Skipped  int // Source rows that could not be mapped or validated
	Err      error
	Duration time.Duration
}

// Summary reports one ingestion run.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Phases   []PhaseResult
}

// Succeeded reports whether every phase that ran succeeded.
func (s Summary) Succeeded() bool {
	return len(s.FailedPhases()) == 0
}

// FailedPhases returns the phases that failed, in run order.
func (s Summary) FailedPhases() []Phase {
	var failed []Phase
	for _, p := range s.Phases {
		if p.State == StateFailed {
			failed = append(failed, p.Phase)
		}
	}
	return failed
}

// Phase returns the result of one phase.
func (s Summary) Phase(phase Phase) (PhaseResult, bool) {
	for _, p := range s.Phases {
		if p.Phase == phase {
			return p, true
		}
	}
	return PhaseResult{}, false
}

// Written returns the records committed across all phases.
func (s Summary) Written() int {
	n := 0
	for _, p := range s.Phases {
		n += p.Written
	}
	return n
}
