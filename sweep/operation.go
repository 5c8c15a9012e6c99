package sweep

import (
	"context"
	"time"

	"github.com/peregrinescode/keithley2614B/tsp"
)

// progressChanSize bounds the progress stream. Fraction events are dropped
// when the consumer lags; terminal results are authoritative via Done/Err.
const progressChanSize = 64

// Operation is the handle for one asynchronous sweep execution.
//
// Consumers observe advisory progress on Progress, and the authoritative
// outcome via Done and Err. The progress stream is closed after its terminal
// event.
type Operation struct {
	id       uint64
	spec     *tsp.SweepSpec
	address  string
	script   tsp.Script
	estimate time.Duration

	state     AtomicOpState
	startedAt time.Time
	cancel    context.CancelFunc

	progress chan ProgressEvent
	done     chan struct{}
	err      error // written once before done is closed
}

func newOperation(id uint64, spec *tsp.SweepSpec, address string, script tsp.Script) *Operation {
	return &Operation{
		id:       id,
		spec:     spec,
		address:  address,
		script:   script,
		estimate: EstimateDuration(spec),
		progress: make(chan ProgressEvent, progressChanSize),
		done:     make(chan struct{}),
	}
}

// ID returns the engine-assigned operation identifier.
func (op *Operation) ID() uint64 { return op.id }

// Spec returns the sweep spec this operation executes.
func (op *Operation) Spec() *tsp.SweepSpec { return op.spec }

// Script returns the generated control script.
func (op *Operation) Script() tsp.Script { return op.script }

// EstimatedDuration returns the predicted execution time of the sweep.
func (op *Operation) EstimatedDuration() time.Duration { return op.estimate }

// State returns the current lifecycle state.
func (op *Operation) State() OpState { return op.state.Get() }

// Progress returns the event stream. The channel is closed after the
// terminal Completed or Failed event.
func (op *Operation) Progress() <-chan ProgressEvent { return op.progress }

// Done returns a channel closed when the operation reaches a terminal state.
func (op *Operation) Done() <-chan struct{} { return op.done }

// Err returns the operation error, or nil on success. It is only meaningful
// after Done is closed.
func (op *Operation) Err() error {
	select {
	case <-op.done:
		return op.err
	default:
		return nil
	}
}

// Cancel stops progress emission and closes the session. The instrument
// finishes the running script on its own; there is no hardware-level abort.
func (op *Operation) Cancel() {
	if op.cancel != nil {
		op.cancel()
	}
}

// Wait blocks until the operation terminates or ctx is done, returning the
// operation error in the former case.
func (op *Operation) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-op.done:
		return op.err
	}
}

// emit delivers a fraction event without blocking; stale advisory progress is
// dropped when the consumer lags.
func (op *Operation) emit(ev ProgressEvent) {
	select {
	case op.progress <- ev:
	default:
	}
}

// complete finishes the operation successfully: terminal event, stream close,
// then done.
func (op *Operation) complete() {
	op.state.Set(ClosedState)
	op.emit(completedEvent())
	close(op.progress)
	close(op.done)
}

// fail finishes the operation with err.
func (op *Operation) fail(err error) {
	op.state.Set(FailedState)
	op.err = err
	op.emit(failedEvent(err))
	close(op.progress)
	close(op.done)
}
