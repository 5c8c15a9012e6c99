package instrument

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gotmc/query"
)

// Buffer dump commands. The range is 1..n inclusive; the instrument answers
// with a comma-separated ASCII float list.
const (
	bufferCountQuery  = "print(smua.nvbuffer1.n)"
	sourceValuesQuery = "printbuffer(1, %d, smua.nvbuffer1.sourcevalues)"
	readingsQuery     = "printbuffer(1, %d, smua.nvbuffer1.readings)"
)

// BufferRecord is one paired buffer entry: the voltage applied by the script
// and the current measured at that point.
type BufferRecord struct {
	Source   float64 // applied voltage [V]
	Measured float64 // measured current [A]
}

// ReadBuffer dumps the instrument's measurement buffer and decodes it into
// paired records in chronological append order.
//
// It issues three queries: the buffer extent, the recorded source values and
// the recorded readings. The two lists are appended in lockstep by the device
// script, so a length mismatch indicates a corrupted dump and fails with
// ErrLengthMismatch; a non-numeric token fails with ErrDecode.
func ReadBuffer(s *Session) ([]BufferRecord, error) {
	n, err := query.Float64(s, bufferCountQuery)
	if err != nil {
		return nil, fmt.Errorf("querying buffer extent: %w", err)
	}

	count := int(n)
	if count <= 0 {
		return nil, nil
	}

	srcResp, err := s.Query(fmt.Sprintf(sourceValuesQuery, count))
	if err != nil {
		return nil, fmt.Errorf("dumping source values: %w", err)
	}

	readResp, err := s.Query(fmt.Sprintf(readingsQuery, count))
	if err != nil {
		return nil, fmt.Errorf("dumping readings: %w", err)
	}

	sources, err := parseFloatList(srcResp)
	if err != nil {
		return nil, err
	}

	readings, err := parseFloatList(readResp)
	if err != nil {
		return nil, err
	}

	return zipRecords(sources, readings)
}

// zipRecords pairs source values with readings by position.
func zipRecords(sources, readings []float64) ([]BufferRecord, error) {
	if len(sources) != len(readings) {
		return nil, fmt.Errorf("%w: %d source values, %d readings",
			ErrLengthMismatch, len(sources), len(readings))
	}

	records := make([]BufferRecord, len(sources))
	for i := range sources {
		records[i] = BufferRecord{Source: sources[i], Measured: readings[i]}
	}

	return records, nil
}

// parseFloatList decodes a comma-separated ASCII float list.
func parseFloatList(resp string) ([]float64, error) {
	tokens := strings.Split(resp, ",")
	values := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token %q", ErrDecode, strings.TrimSpace(tok))
		}
		values = append(values, v)
	}

	return values, nil
}
