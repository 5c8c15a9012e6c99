package instrument

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultSocketPort is the raw-socket SCPI/TSP port of the 2600B series.
const DefaultSocketPort = 5025

// resourceKind selects the transport behind a resource address.
type resourceKind uint8

const (
	resourceTCP resourceKind = iota
	resourceSerial
)

// resource is a parsed VISA-style resource identifier.
type resource struct {
	kind   resourceKind
	target string // host:port for TCP, device path for serial
	baud   int    // serial only; 0 means the session default
}

// parseResource parses a device address into a transport resource.
//
// Accepted forms:
//
//	TCPIP::192.168.0.2::5025::SOCKET
//	TCPIP0::192.168.0.2::SOCKET        (port defaults to 5025)
//	ASRL::/dev/ttyUSB0::9600           (baud optional)
//	192.168.0.2:5025                   (bare host:port)
func parseResource(address string) (resource, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return resource{}, fmt.Errorf("%w: empty resource address", ErrConnection)
	}

	if !strings.Contains(address, "::") {
		// Bare host:port.
		if !strings.Contains(address, ":") {
			return resource{}, fmt.Errorf("%w: address %q has no port", ErrConnection, address)
		}
		return resource{kind: resourceTCP, target: address}, nil
	}

	fields := strings.Split(address, "::")
	head := strings.ToUpper(fields[0])

	switch {
	case strings.HasPrefix(head, "TCPIP"):
		return parseTCPIPResource(address, fields[1:])
	case strings.HasPrefix(head, "ASRL"):
		return parseSerialResource(address, fields[1:])
	default:
		return resource{}, fmt.Errorf("%w: unsupported resource %q", ErrConnection, address)
	}
}

func parseTCPIPResource(address string, fields []string) (resource, error) {
	// Strip a trailing SOCKET/INSTR suffix.
	if n := len(fields); n > 0 {
		tail := strings.ToUpper(fields[n-1])
		if tail == "SOCKET" || tail == "INSTR" {
			fields = fields[:n-1]
		}
	}

	switch len(fields) {
	case 1:
		return resource{
			kind:   resourceTCP,
			target: fmt.Sprintf("%s:%d", fields[0], DefaultSocketPort),
		}, nil
	case 2:
		port, err := strconv.Atoi(fields[1])
		if err != nil || port < 1 || port > 65535 {
			return resource{}, fmt.Errorf("%w: invalid port in resource %q", ErrConnection, address)
		}
		return resource{kind: resourceTCP, target: fields[0] + ":" + fields[1]}, nil
	default:
		return resource{}, fmt.Errorf("%w: malformed TCPIP resource %q", ErrConnection, address)
	}
}

func parseSerialResource(address string, fields []string) (resource, error) {
	switch len(fields) {
	case 1:
		return resource{kind: resourceSerial, target: fields[0]}, nil
	case 2:
		baud, err := strconv.Atoi(fields[1])
		if err != nil || baud <= 0 {
			return resource{}, fmt.Errorf("%w: invalid baud rate in resource %q", ErrConnection, address)
		}
		return resource{kind: resourceSerial, target: fields[0], baud: baud}, nil
	default:
		return resource{}, fmt.Errorf("%w: malformed ASRL resource %q", ErrConnection, address)
	}
}
