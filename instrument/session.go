package instrument

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/peregrinescode/keithley2614B/logger"
)

// lineTerminator terminates every command line sent to the instrument and
// every response line read back.
const lineTerminator = '\n'

// Session is a scoped connection to a single physical instrument.
//
// A Session is created per logical operation and closed when the operation
// completes or fails. It must not be shared across concurrent operations: the
// physical instrument serializes commands, and concurrent sessions against
// the same address corrupt the script-edit state.
type Session struct {
	cfg     *Config
	logger  logger.Logger
	metrics SessionMetrics

	mu     sync.Mutex // serializes wire access (write+read pairs must not interleave)
	conn   transport
	reader *bufio.Reader

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Open establishes a session to the instrument at the given resource address.
// It fails with an error wrapping ErrConnection if the transport cannot be
// established.
func Open(address string, opts ...Option) (*Session, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	res, err := parseResource(address)
	if err != nil {
		return nil, err
	}

	conn, err := dial(res, cfg)
	if err != nil {
		return nil, err
	}

	s := newSession(cfg, conn)
	s.logger.Debug("session opened", "address", address, "target", res.target)

	return s, nil
}

// newSession wraps an established transport. Split out from Open so tests can
// inject a fake transport.
func newSession(cfg *Config, conn transport) *Session {
	return &Session{
		cfg:    cfg,
		logger: cfg.GetLogger(),
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// WriteLine sends a single command line, appending the line terminator.
// It fails with ErrNotConnected if the session is closed.
func (s *Session) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeLine(line)
}

// ReadLine reads one response line, respecting the query timeout.
// The terminator and any trailing carriage return are stripped.
func (s *Session) ReadLine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readLine()
}

// Query sends a command line and reads a single response line. The write and
// read happen under one lock acquisition so concurrent queries cannot
// interleave on the wire.
//
// Query satisfies the query.Querier interface from github.com/gotmc/query, so
// the typed helpers (query.Float64 and friends) work against a Session.
func (s *Session) Query(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLine(cmd); err != nil {
		return "", err
	}
	s.metrics.incQueryCount()

	return s.readLine()
}

// identifyQuery asks for the identification string (manufacturer, model,
// serial number, firmware revision).
const identifyQuery = "*IDN?"

// Identify queries the instrument identification string.
func (s *Session) Identify() (string, error) {
	return s.Query(identifyQuery)
}

// Metrics returns the session's wire counters.
func (s *Session) Metrics() *SessionMetrics {
	return &s.metrics
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Close tears down the transport. It is idempotent: closing an already-closed
// session is a no-op returning the first close result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if err := s.conn.Close(); err != nil {
			s.closeErr = fmt.Errorf("instrument: closing transport: %w", err)
		}
		s.logger.Debug("session closed")
	})

	return s.closeErr
}

func (s *Session) writeLine(line string) error {
	if s.closed.Load() {
		return fmt.Errorf("%w: write %q", ErrNotConnected, line)
	}

	if _, err := s.conn.Write(append([]byte(line), lineTerminator)); err != nil {
		return fmt.Errorf("%w: writing %q: %v", ErrConnection, line, err)
	}
	s.metrics.incLineSendCount()

	return nil
}

func (s *Session) readLine() (string, error) {
	if s.closed.Load() {
		return "", fmt.Errorf("%w: read", ErrNotConnected)
	}

	if err := s.conn.setReadTimeout(s.cfg.QueryTimeout()); err != nil {
		return "", fmt.Errorf("%w: setting read timeout: %v", ErrConnection, err)
	}

	raw, err := s.reader.ReadString(lineTerminator)
	if err != nil {
		cerr := classifyReadErr(err)
		if errors.Is(cerr, ErrTimeout) {
			s.metrics.incTimeoutCount()
		}
		return "", cerr
	}
	s.metrics.incLineRecvCount()

	return strings.TrimRight(raw, "\r\n"), nil
}

// classifyReadErr distinguishes a slow device (Timeout, retryable on the
// same session) from a broken transport (Connection, must reopen).
func classifyReadErr(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: reading response: %v", ErrConnection, err)
}
