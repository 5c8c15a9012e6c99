package instrument

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseResource(t *testing.T) {
	require := require.New(t)

	t.Run("visa tcpip socket", func(t *testing.T) {
		res, err := parseResource("TCPIP::192.168.0.2::5025::SOCKET")
		require.NoError(err)
		require.Equal(resourceTCP, res.kind)
		require.Equal("192.168.0.2:5025", res.target)
	})

	t.Run("tcpip default port", func(t *testing.T) {
		res, err := parseResource("TCPIP0::192.168.0.2::SOCKET")
		require.NoError(err)
		require.Equal("192.168.0.2:5025", res.target)

		res, err = parseResource("TCPIP::192.168.0.2")
		require.NoError(err)
		require.Equal("192.168.0.2:5025", res.target)
	})

	t.Run("bare host port", func(t *testing.T) {
		res, err := parseResource("192.168.0.2:5025")
		require.NoError(err)
		require.Equal(resourceTCP, res.kind)
		require.Equal("192.168.0.2:5025", res.target)
	})

	t.Run("serial with baud", func(t *testing.T) {
		res, err := parseResource("ASRL::/dev/ttyUSB0::115200")
		require.NoError(err)
		require.Equal(resourceSerial, res.kind)
		require.Equal("/dev/ttyUSB0", res.target)
		require.Equal(115200, res.baud)
	})

	t.Run("serial default baud", func(t *testing.T) {
		res, err := parseResource("ASRL::/dev/ttyUSB0")
		require.NoError(err)
		require.Equal(resourceSerial, res.kind)
		require.Zero(res.baud)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, addr := range []string{
			"",
			"192.168.0.2",
			"GPIB0::12::INSTR",
			"TCPIP::host::badport::SOCKET",
			"TCPIP::a::b::c::SOCKET",
			"ASRL::/dev/ttyUSB0::fast",
		} {
			_, err := parseResource(addr)
			require.ErrorIs(err, ErrConnection, "address %q", addr)
		}
	})
}
