// Package sweep implements the sweep execution engine for the Keithley 2614B.
//
// The [Engine] turns a declarative sweep spec into a completed, observable
// asynchronous operation: it opens an instrument session, builds and uploads
// the control script, triggers execution and then waits out an estimated
// duration while reporting time-derived progress. The instrument gives no
// mid-sweep completion signal, so progress is advisory and may under- or
// overshoot if the hardware runs slower or faster than estimated.
//
// The physical instrument is a single exclusively-owned resource. The engine
// enforces that at its API boundary: at most one operation (sweep execution
// or buffer read) is in flight at a time, and a concurrent attempt is
// rejected with [ErrBusy]. No locking is required inside the transport; the
// session acquired for an operation is closed before another can start.
//
// Operation lifecycle: Idle → Uploading → Running → AwaitingCompletion →
// Closed. A transport error in any state moves the operation to Failed and
// guarantees the session is closed before the error is reported. Cancelling
// the operation's context stops progress emission and closes the session;
// the instrument finishes the running script on its own, since the protocol
// has no hardware-level abort.
package sweep
