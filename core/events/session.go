package events

const (
	// KindSessionStateChanged identifies lifecycle state transitions.
	KindSessionStateChanged Kind = "session.state_changed"
	// KindSessionRunStarted identifies a run entering processing.
	KindSessionRunStarted Kind = "session.run_started"
	// KindSessionRunFinished identifies a run that drained successfully.
	KindSessionRunFinished Kind = "session.run_finished"
	// KindSessionRunFailed identifies a run that terminated on an error.
	KindSessionRunFailed Kind = "session.run_failed"
)

// SessionStateChanged carries a lifecycle transition.
type SessionStateChanged struct {
	Base
	From string
	To   string
}

// NewSessionStateChanged creates a state changed event.
func NewSessionStateChanged(from, to string) SessionStateChanged {
	return SessionStateChanged{Base: NewBase(KindSessionStateChanged), From: from, To: to}
}

// SessionRunStarted carries the identifier of a run entering processing.
type SessionRunStarted struct {
	Base
	RunID string
}

// NewSessionRunStarted creates a run started event.
func NewSessionRunStarted(runID string) SessionRunStarted {
	return SessionRunStarted{Base: NewBase(KindSessionRunStarted), RunID: runID}
}

// SessionRunFinished carries the final status of a drained run.
type SessionRunFinished struct {
	Base
	RunID  string
	Status string
}

// NewSessionRunFinished creates a run finished event.
func NewSessionRunFinished(runID, status string) SessionRunFinished {
	return SessionRunFinished{Base: NewBase(KindSessionRunFinished), RunID: runID, Status: status}
}

// SessionRunFailed carries the terminal error of a failed run.
type SessionRunFailed struct {
	Base
	RunID   string
	Message string
}

// NewSessionRunFailed creates a run failed event.
func NewSessionRunFailed(runID, message string) SessionRunFailed {
	return SessionRunFailed{Base: NewBase(KindSessionRunFailed), RunID: runID, Message: message}
}
