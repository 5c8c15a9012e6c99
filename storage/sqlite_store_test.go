package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peregrinescode/keithley2614B/instrument"
	"github.com/peregrinescode/keithley2614B/tsp"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	store := NewSqliteStore(filepath.Join(t.TempDir(), "sweeps.db"))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testSpec() *tsp.SweepSpec {
	return &tsp.SweepSpec{
		Variant:       tsp.Linear,
		StartV:        0,
		StopV:         2,
		StepV:         0.1,
		SettleTime:    10 * time.Millisecond,
		ComplianceExp: -6,
	}
}

func TestSqliteStoreRoundTrip(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	spec := testSpec()
	runID, err := store.CreateRun(ctx, "TCPIP::192.168.0.2::5025::SOCKET", spec)
	require.NoError(err)
	require.Positive(runID)

	records := []instrument.BufferRecord{
		{Source: 0, Measured: 1.2e-9},
		{Source: 0.1, Measured: 3.4e-9},
		{Source: 0.2, Measured: 5.6e-9},
	}
	require.NoError(store.StoreRecords(ctx, runID, records))

	got, err := store.Records(ctx, runID)
	require.NoError(err)
	require.Equal(records, got)
}

func TestSqliteStoreRuns(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.CreateRun(ctx, "host-a:5025", testSpec())
	require.NoError(err)
	second, err := store.CreateRun(ctx, "host-b:5025", testSpec())
	require.NoError(err)

	runs, err := store.Runs(ctx)
	require.NoError(err)
	require.Len(runs, 2)

	// Newest first.
	require.Equal(second, runs[0].ID)
	require.Equal(first, runs[1].ID)
	require.Equal("host-b:5025", runs[0].Address)
	require.Equal(tsp.Linear.String(), runs[0].Variant)
	require.False(runs[0].CreatedAt.IsZero())

	var decoded tsp.SweepSpec
	require.NoError(json.Unmarshal([]byte(runs[0].SpecJSON), &decoded))
	require.Equal(*testSpec(), decoded)
}

func TestSqliteStoreEmptyRecords(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	runID, err := store.CreateRun(ctx, "host:5025", testSpec())
	require.NoError(err)

	require.NoError(store.StoreRecords(ctx, runID, nil))

	got, err := store.Records(ctx, runID)
	require.NoError(err)
	require.Empty(got)
}

func TestSqliteStoreCloseIdempotent(t *testing.T) {
	require := require.New(t)
	store := newTestStore(t)

	_, err := store.CreateRun(context.Background(), "host:5025", testSpec())
	require.NoError(err)

	require.NoError(store.Close())
	require.NoError(store.Close())
}
