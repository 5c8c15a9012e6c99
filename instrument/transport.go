package instrument

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"go.bug.st/serial"
)

// transport is a byte stream with a per-read timeout. A zero or negative
// timeout disables the deadline.
type transport interface {
	io.ReadWriteCloser
	setReadTimeout(d time.Duration) error
}

// tcpTransport adapts a net.Conn.
type tcpTransport struct {
	net.Conn
}

func (t *tcpTransport) setReadTimeout(d time.Duration) error {
	if d <= 0 {
		return t.SetReadDeadline(time.Time{})
	}
	return t.SetReadDeadline(time.Now().Add(d))
}

// serialTransport adapts a go.bug.st serial port. The port signals a read
// timeout by returning zero bytes with a nil error; normalize that to
// os.ErrDeadlineExceeded so timeout classification matches the TCP path.
type serialTransport struct {
	port serial.Port
}

func (t *serialTransport) Read(p []byte) (int, error) {
	n, err := t.port.Read(p)
	if n == 0 && err == nil {
		return 0, os.ErrDeadlineExceeded
	}
	return n, err
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}

func (t *serialTransport) setReadTimeout(d time.Duration) error {
	if d <= 0 {
		return t.port.SetReadTimeout(serial.NoTimeout)
	}
	return t.port.SetReadTimeout(d)
}

// dial establishes the transport for a parsed resource.
func dial(res resource, cfg *Config) (transport, error) {
	switch res.kind {
	case resourceSerial:
		baud := res.baud
		if baud == 0 {
			baud = cfg.BaudRate()
		}
		port, err := serial.Open(res.target, &serial.Mode{BaudRate: baud})
		if err != nil {
			return nil, fmt.Errorf("%w: opening serial port %s: %v", ErrConnection, res.target, err)
		}
		return &serialTransport{port: port}, nil

	default:
		conn, err := net.DialTimeout("tcp", res.target, cfg.DialTimeout())
		if err != nil {
			return nil, fmt.Errorf("%w: dialing %s: %v", ErrConnection, res.target, err)
		}
		return &tcpTransport{Conn: conn}, nil
	}
}
