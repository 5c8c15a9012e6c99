package sweep

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/peregrinescode/keithley2614B/tsp"
)

// fakeDevice is a minimal TSP endpoint on a loopback TCP socket. It records
// every command line it receives and answers lines starting with "print"
// from a queued response list.
type fakeDevice struct {
	t  *testing.T
	ln net.Listener

	mu        sync.Mutex
	lines     []string
	responses []string
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("newFakeDevice: %v", err)
	}

	d := &fakeDevice{t: t, ln: ln}
	t.Cleanup(func() { _ = ln.Close() })

	go d.acceptLoop()

	return d
}

func (d *fakeDevice) addr() string {
	return d.ln.Addr().String()
}

func (d *fakeDevice) acceptLoop() {
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}
		go d.serve(conn)
	}
}

func (d *fakeDevice) serve(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()

		d.mu.Lock()
		d.lines = append(d.lines, line)
		var resp string
		if strings.HasPrefix(line, "print") && len(d.responses) > 0 {
			resp = d.responses[0]
			d.responses = d.responses[1:]
		}
		d.mu.Unlock()

		if resp != "" {
			if _, err := conn.Write([]byte(resp + "\n")); err != nil {
				return
			}
		}
	}
}

// queue appends canned responses for subsequent query lines.
func (d *fakeDevice) queue(responses ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.responses = append(d.responses, responses...)
}

// received returns a snapshot of the command lines seen so far.
func (d *fakeDevice) received() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, len(d.lines))
	copy(out, d.lines)

	return out
}

// waitForLine polls until the device has received the given line or the
// timeout expires.
func (d *fakeDevice) waitForLine(line string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, l := range d.received() {
			if l == line {
				return true
			}
		}
		time.Sleep(5 * time.Millisecond)
	}

	return false
}

// fastListSpec returns a small valid list-driven spec for engine tests.
func fastListSpec() *tsp.SweepSpec {
	return &tsp.SweepSpec{
		Variant:       tsp.ListDriven,
		SettleTime:    time.Millisecond,
		ComplianceExp: -6,
		VoltageList:   []float64{0, 1},
	}
}
