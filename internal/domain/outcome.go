package domain

// Outcome is the result of applying one event
type Outcome int

const (
	// OutcomeApplied means the event changed state
	OutcomeApplied Outcome = iota
	// OutcomeNoOp means the event was already reflected in state, or was skipped
	OutcomeNoOp
	// OutcomeRejected means a required parent was missing; nothing was written
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNoOp:
		return "noop"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}
