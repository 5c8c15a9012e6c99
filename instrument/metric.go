package instrument

import "sync/atomic"

// SessionMetrics contains atomic wire counters for a session.
// Metrics can be used as the value of an external collector's CounterFunc.
type SessionMetrics struct {
	// LineSendCount indicates the number of command lines written.
	LineSendCount atomic.Uint64
	// LineRecvCount indicates the number of response lines read.
	LineRecvCount atomic.Uint64
	// QueryCount indicates the number of write+read query pairs issued.
	QueryCount atomic.Uint64
	// TimeoutCount indicates the number of reads that timed out.
	TimeoutCount atomic.Uint64
}

func (m *SessionMetrics) incLineSendCount() {
	m.LineSendCount.Add(1)
}

func (m *SessionMetrics) incLineRecvCount() {
	m.LineRecvCount.Add(1)
}

func (m *SessionMetrics) incQueryCount() {
	m.QueryCount.Add(1)
}

func (m *SessionMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}
