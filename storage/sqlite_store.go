package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"

	"github.com/peregrinescode/keithley2614B/instrument"
	"github.com/peregrinescode/keithley2614B/tsp"
)

// SqliteStore persists sweep runs in a SQLite database.
//
// Connections are opened lazily: a WAL-mode write connection for inserts and
// a read-only connection for queries.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

var _ Store = (*SqliteStore)(nil)

// NewSqliteStore creates a store backed by the SQLite database at dbPath.
// The schema is initialized on first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if _, err = db.Exec(initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// CreateRun records a new sweep execution and returns its ID.
func (s *SqliteStore) CreateRun(ctx context.Context, address string, spec *tsp.SweepSpec) (runID int64, err error) {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return 0, fmt.Errorf("marshaling spec: %w", err)
	}

	db, err := s.getWriteDB()
	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx, insertRunSQL, address, spec.Variant.String(), string(specJSON))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	return result.LastInsertId()
}

// StoreRecords appends the decoded buffer records for a run inside one
// transaction, preserving chronological order.
func (s *SqliteStore) StoreRecords(ctx context.Context, runID int64, records []instrument.BufferRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	db, err := s.getWriteDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertRecordSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for i, rec := range records {
		if _, err = stmt.ExecContext(ctx, runID, i, rec.Source, rec.Measured); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Runs lists all persisted runs, newest first.
func (s *SqliteStore) Runs(ctx context.Context) (runs []Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var r Run
		if err = rows.Scan(&r.ID, &r.CreatedAt, &r.Address, &r.Variant, &r.SpecJSON); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// Records returns a run's records in chronological order.
func (s *SqliteStore) Records(ctx context.Context, runID int64) (records []instrument.BufferRecord, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectRecordsSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var rec instrument.BufferRecord
		if err = rows.Scan(&rec.Source, &rec.Measured); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Close closes both database connections. It is idempotent.
func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		if s.writeDB != nil {
			s.closeErr = multierr.Append(s.closeErr, s.writeDB.Close())
		}
		if s.readDB != nil {
			s.closeErr = multierr.Append(s.closeErr, s.readDB.Close())
		}
	})

	return s.closeErr
}

// closeWithError closes c and folds its error into *err without masking an
// earlier failure.
func closeWithError(c io.Closer, err *error) {
	*err = multierr.Append(*err, c.Close())
}
