package instrument

import "errors"

var (
	// ErrConnection indicates that the transport could not be established or
	// has broken. The session is unusable; the caller must reopen.
	ErrConnection = errors.New("instrument: connection error")

	// ErrNotConnected indicates an operation was attempted without a live
	// session.
	ErrNotConnected = errors.New("instrument: not connected")

	// ErrTimeout indicates that no response arrived within the query timeout.
	// The device may merely be slow; the caller may treat this as retryable.
	ErrTimeout = errors.New("instrument: timeout waiting for response")

	// ErrScriptSource indicates that a script body could not be read from its
	// origin before upload.
	ErrScriptSource = errors.New("instrument: script source unavailable")

	// ErrDecode indicates a malformed buffer-dump response (non-numeric token).
	ErrDecode = errors.New("instrument: malformed buffer response")

	// ErrLengthMismatch indicates that the source-value and reading lists
	// returned by the buffer dump differ in length. The device script appends
	// them in lockstep, so the counts must be pairwise equal.
	ErrLengthMismatch = errors.New("instrument: source/reading count mismatch")
)
