package engine

type State int32

const (
	StatePolling State = iota
	StateParsing
	StateValidating
	StateClassifying
	StatePersisting
	StateCommitting
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateParsing:
		return "parsing"
	case StateValidating:
		return "validating"
	case StateClassifying:
		return "classifying"
	case StatePersisting:
		return "persisting"
	case StateCommitting:
		return "committing"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is what happened to one polled message.
type Outcome string

const (
	OutcomeEmpty     Outcome = "empty"
	OutcomeRejected  Outcome = "rejected"
	OutcomeInserted  Outcome = "inserted"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)
