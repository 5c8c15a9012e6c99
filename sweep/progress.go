package sweep

// ProgressKind discriminates the events on an operation's progress stream.
type ProgressKind uint8

const (
	// ProgressFraction carries an advisory completion fraction in [0, 1].
	ProgressFraction ProgressKind = iota
	// ProgressCompleted is the terminal success event.
	ProgressCompleted
	// ProgressFailed is the terminal failure event; Err holds the reason.
	ProgressFailed
)

// ProgressEvent is one event on an operation's progress stream. Fraction
// events are advisory and derived from elapsed time versus the duration
// estimate; Completed and Failed are terminal.
type ProgressEvent struct {
	Kind     ProgressKind
	Fraction float64
	Err      error
}

// Terminal reports whether the event ends the stream.
func (e ProgressEvent) Terminal() bool {
	return e.Kind == ProgressCompleted || e.Kind == ProgressFailed
}

func fractionEvent(f float64) ProgressEvent {
	return ProgressEvent{Kind: ProgressFraction, Fraction: f}
}

func completedEvent() ProgressEvent {
	return ProgressEvent{Kind: ProgressCompleted, Fraction: 1}
}

func failedEvent(err error) ProgressEvent {
	return ProgressEvent{Kind: ProgressFailed, Err: err}
}
