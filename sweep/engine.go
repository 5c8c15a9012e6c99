package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/multierr"

	"github.com/peregrinescode/keithley2614B/instrument"
	"github.com/peregrinescode/keithley2614B/internal/pool"
	"github.com/peregrinescode/keithley2614B/logger"
	"github.com/peregrinescode/keithley2614B/tsp"
)

// DefaultProgressInterval is the period between advisory progress events.
const DefaultProgressInterval = 500 * time.Millisecond

// ErrBusy indicates that another operation against the instrument is still
// in flight. The instrument is an exclusively-owned resource; wait for the
// active operation to terminate and retry.
var ErrBusy = errors.New("sweep: another instrument operation is in flight")

// Engine executes sweep operations against a single physical instrument.
//
// The engine admits at most one operation at a time, whether a sweep
// execution or a buffer read. Completed and failed operations remain
// available for inspection through Operation until the engine is discarded.
type Engine struct {
	logger           logger.Logger
	sessionOpts      []instrument.Option
	progressInterval time.Duration
	margin           time.Duration // 0 selects the computed completion margin

	active  atomic.Bool
	idGen   atomic.Uint64
	ops     *xsync.MapOf[uint64, *Operation]
	taskMgr *TaskManager
}

// NewEngine creates a sweep engine with the given options applied in order.
func NewEngine(ctx context.Context, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		logger:           logger.GetLogger(),
		progressInterval: DefaultProgressInterval,
		ops:              xsync.NewMapOf[uint64, *Operation](),
	}

	for _, opt := range opts {
		if err := opt.apply(e); err != nil {
			return nil, err
		}
	}

	e.taskMgr = NewTaskManager(ctx, e.logger)

	return e, nil
}

// Execute starts an asynchronous sweep operation and immediately returns its
// handle. It fails with an error wrapping tsp.ErrInvalidSpec if the spec
// violates its invariants, and with ErrBusy if another operation is still in
// flight.
func (e *Engine) Execute(ctx context.Context, spec *tsp.SweepSpec, address string) (*Operation, error) {
	script, err := tsp.Build(spec)
	if err != nil {
		return nil, err
	}

	if !e.active.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	op := newOperation(e.idGen.Add(1), spec, address, script)
	opCtx, cancel := context.WithCancel(ctx)
	op.cancel = cancel
	e.ops.Store(op.id, op)

	e.logger.Info("sweep operation started",
		"op", op.id, "variant", spec.Variant, "address", address,
		"points", spec.Points(), "estimate", op.estimate,
	)

	e.taskMgr.StartOnce(fmt.Sprintf("sweep-op-%d", op.id), func() {
		err := e.run(opCtx, op)
		cancel()

		// Release the gate before publishing the terminal event so a caller
		// woken by Done can immediately start the next operation.
		e.active.Store(false)

		if err != nil {
			op.fail(err)
			e.logger.Error("sweep operation failed", "op", op.id, "error", err)
			return
		}
		op.complete()
		e.logger.Info("sweep operation completed", "op", op.id, "elapsed", time.Since(op.startedAt))
	})

	return op, nil
}

// Operation returns a previously started operation by ID.
func (e *Engine) Operation(id uint64) (*Operation, bool) {
	return e.ops.Load(id)
}

// Active reports whether an operation is currently in flight.
func (e *Engine) Active() bool {
	return e.active.Load()
}

// ReadBuffer opens its own session against the instrument, dumps and decodes
// the measurement buffer, and closes the session. Like Execute it is rejected
// with ErrBusy while another operation is in flight.
func (e *Engine) ReadBuffer(address string) (records []instrument.BufferRecord, err error) {
	if !e.active.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.active.Store(false)

	sess, err := instrument.Open(address, e.sessionOpts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, sess.Close())
	}()

	records, err = instrument.ReadBuffer(sess)
	if err != nil {
		return nil, err
	}

	e.logger.Info("buffer read", "address", address, "records", len(records))

	return records, nil
}

// Close stops the engine's background tasks and waits for them to terminate.
// An in-flight operation is cancelled, not aborted on the hardware.
func (e *Engine) Close() {
	e.taskMgr.Stop()
	e.taskMgr.Wait()
}

// run executes the upload/run/await sequence for one operation. The session
// is always closed before run returns, on failure and on success alike.
func (e *Engine) run(ctx context.Context, op *Operation) error {
	op.state.Set(UploadingState)

	sess, err := instrument.Open(op.address, e.sessionOpts...)
	if err != nil {
		return err
	}

	if err := sess.LoadScript(op.script); err != nil {
		return multierr.Append(fmt.Errorf("upload: %w", err), sess.Close())
	}

	op.state.Set(RunningState)
	if err := sess.RunScript(); err != nil {
		return multierr.Append(fmt.Errorf("run: %w", err), sess.Close())
	}

	op.startedAt = time.Now()
	op.state.Set(AwaitingCompletionState)

	return e.await(ctx, op, sess)
}

// await performs the timed wait for the estimated duration plus safety
// margin, emitting monotone non-decreasing progress fractions. Cancellation
// stops progress emission and closes the session; the device finishes its
// script on its own.
func (e *Engine) await(ctx context.Context, op *Operation, sess *instrument.Session) error {
	margin := e.margin
	if margin == 0 {
		margin = completionMargin(op.estimate)
	}
	deadline := op.estimate + margin

	timer := pool.GetTimer(deadline)
	defer pool.PutTimer(timer)

	ticker := time.NewTicker(e.progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return multierr.Append(fmt.Errorf("sweep: operation cancelled: %w", ctx.Err()), sess.Close())

		case <-ticker.C:
			op.emit(fractionEvent(op.fraction()))

		case <-timer.C:
			return sess.Close()
		}
	}
}

// fraction derives the advisory completion fraction from elapsed time versus
// the estimate, clamped to [0, 1].
func (op *Operation) fraction() float64 {
	if op.estimate <= 0 {
		return 1
	}
	f := float64(time.Since(op.startedAt)) / float64(op.estimate)
	if f > 1 {
		return 1
	}
	return f
}

// EngineOption is a functional option for configuring an Engine.
type EngineOption interface {
	apply(*Engine) error
}

type engineOptFunc func(*Engine) error

func (f engineOptFunc) apply(e *Engine) error { return f(e) }

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) EngineOption {
	return engineOptFunc(func(e *Engine) error {
		if l == nil {
			return errors.New("sweep: logger is nil")
		}
		e.logger = l

		return nil
	})
}

// WithSessionOptions sets the instrument session options used when the
// engine opens sessions.
func WithSessionOptions(opts ...instrument.Option) EngineOption {
	return engineOptFunc(func(e *Engine) error {
		e.sessionOpts = opts

		return nil
	})
}

// WithProgressInterval sets the period between advisory progress events.
func WithProgressInterval(d time.Duration) EngineOption {
	return engineOptFunc(func(e *Engine) error {
		if d <= 0 {
			return errors.New("sweep: progress interval must be positive")
		}
		e.progressInterval = d

		return nil
	})
}

// WithCompletionMargin overrides the computed safety margin added to the
// duration estimate before completion is declared. Useful for calibration
// against real hardware.
func WithCompletionMargin(d time.Duration) EngineOption {
	return engineOptFunc(func(e *Engine) error {
		if d <= 0 {
			return errors.New("sweep: completion margin must be positive")
		}
		e.margin = d

		return nil
	})
}
