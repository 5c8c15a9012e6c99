package instrument

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadBuffer(t *testing.T) {
	require := require.New(t)

	t.Run("zips paired lists in append order", func(t *testing.T) {
		s, ft := newTestSession(t)
		ft.respond("3.00000e+00")
		ft.respond("1.0, 2.0, 3.0")
		ft.respond("1.00000e-03, 2.00000e-03, 3.00000e-03")

		records, err := ReadBuffer(s)
		require.NoError(err)
		require.Equal([]BufferRecord{
			{Source: 1.0, Measured: 0.001},
			{Source: 2.0, Measured: 0.002},
			{Source: 3.0, Measured: 0.003},
		}, records)

		// dump range is bounded by the reported buffer extent
		written := ft.writtenLines()
		require.Equal("print(smua.nvbuffer1.n)", written[0])
		require.Equal("printbuffer(1, 3, smua.nvbuffer1.sourcevalues)", written[1])
		require.Equal("printbuffer(1, 3, smua.nvbuffer1.readings)", written[2])
	})

	t.Run("empty buffer", func(t *testing.T) {
		s, ft := newTestSession(t)
		ft.respond("0.00000e+00")

		records, err := ReadBuffer(s)
		require.NoError(err)
		require.Nil(records)
	})

	t.Run("length mismatch", func(t *testing.T) {
		s, ft := newTestSession(t)
		ft.respond("2.00000e+00")
		ft.respond("1.0, 2.0")
		ft.respond("1.00000e-03")

		_, err := ReadBuffer(s)
		require.ErrorIs(err, ErrLengthMismatch)
	})

	t.Run("malformed token", func(t *testing.T) {
		s, ft := newTestSession(t)
		ft.respond("2.00000e+00")
		ft.respond("1.0, bogus")
		ft.respond("1.00000e-03, 2.00000e-03")

		_, err := ReadBuffer(s)
		require.ErrorIs(err, ErrDecode)
	})

	t.Run("closed session", func(t *testing.T) {
		s, _ := newTestSession(t)
		require.NoError(s.Close())

		_, err := ReadBuffer(s)
		require.ErrorIs(err, ErrNotConnected)
	})
}

func TestZipRecords(t *testing.T) {
	require := require.New(t)

	records, err := zipRecords([]float64{1.0, 2.0}, []float64{0.001, 0.002})
	require.NoError(err)
	require.Equal([]BufferRecord{
		{Source: 1.0, Measured: 0.001},
		{Source: 2.0, Measured: 0.002},
	}, records)

	_, err = zipRecords([]float64{1.0, 2.0}, []float64{0.001})
	require.ErrorIs(err, ErrLengthMismatch)
}

func TestParseFloatList(t *testing.T) {
	require := require.New(t)

	values, err := parseFloatList("1.0, -2.5e-3,3")
	require.NoError(err)
	require.Equal([]float64{1.0, -0.0025, 3}, values)

	_, err = parseFloatList("")
	require.ErrorIs(err, ErrDecode)

	_, err = parseFloatList("1.0,,2.0")
	require.ErrorIs(err, ErrDecode)
}
