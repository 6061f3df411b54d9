package session

// State tracks the lifecycle of a grading session.
type State uint32

const (
	StateUnauthenticated State = iota
	StateStreaming
	StateAwaitingResponse
	StateFinished
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateStreaming:
		return "streaming"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateFinished || s == StateAborted
}
