package domain

// IngestState is a step of the ingestion state machine.
type IngestState int

// Ingestion states, in order. Rejected is terminal and reachable from
// Dispatched onwards.
const (
	StateReceived IngestState = iota
	StateDispatched
	StateEscalated
	StateNormalized
	StateSanitized
	StateChunked
	StateCompleted
	StateRejected
)

// String returns the state name.
func (s IngestState) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateDispatched:
		return "dispatched"
	case StateEscalated:
		return "escalated"
	case StateNormalized:
		return "normalized"
	case StateSanitized:
		return "sanitized"
	case StateChunked:
		return "chunked"
	case StateCompleted:
		return "completed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s IngestState) IsTerminal() bool {
	return s == StateCompleted || s == StateRejected
}
