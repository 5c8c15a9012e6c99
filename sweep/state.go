package sweep

import "sync/atomic"

// OpState represents the lifecycle stage of a sweep operation.
type OpState uint32

const (
	// IdleState indicates the operation has been created but not started.
	IdleState OpState = iota
	// UploadingState indicates the session is being opened and the control
	// script uploaded.
	UploadingState
	// RunningState indicates the execute command has been sent.
	RunningState
	// AwaitingCompletionState indicates the timed wait for the estimated
	// sweep duration plus safety margin.
	AwaitingCompletionState
	// ClosedState indicates the operation completed and its session closed.
	ClosedState
	// FailedState indicates the operation failed; the session is closed.
	FailedState
)

// String returns string representation of the operation state.
func (st OpState) String() string {
	switch st {
	case IdleState:
		return "idle"
	case UploadingState:
		return "uploading"
	case RunningState:
		return "running"
	case AwaitingCompletionState:
		return "awaiting-completion"
	case ClosedState:
		return "closed"
	case FailedState:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (st OpState) Terminal() bool {
	return st == ClosedState || st == FailedState
}

// AtomicOpState holds an OpState with atomic access.
type AtomicOpState struct {
	state atomic.Uint32
}

// Get returns the current state.
func (st *AtomicOpState) Get() OpState {
	return OpState(st.state.Load())
}

// Set sets the current state.
func (st *AtomicOpState) Set(state OpState) {
	st.state.Store(uint32(state))
}
