package storage

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sweep_runs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    address    TEXT     NOT NULL,
    variant    TEXT     NOT NULL,
    spec_json  TEXT     NOT NULL
);

CREATE TABLE IF NOT EXISTS sweep_records (
    run_id     INTEGER NOT NULL REFERENCES sweep_runs(id),
    idx        INTEGER NOT NULL,
    source_v   REAL    NOT NULL,
    measured_i REAL    NOT NULL,
    PRIMARY KEY (run_id, idx)
);

CREATE INDEX IF NOT EXISTS idx_sweep_records_run ON sweep_records(run_id);
`

const insertRunSQL = `
INSERT INTO sweep_runs (address, variant, spec_json) VALUES (?, ?, ?)
`

const insertRecordSQL = `
INSERT INTO sweep_records (run_id, idx, source_v, measured_i) VALUES (?, ?, ?, ?)
`

const selectRunsSQL = `
SELECT id, created_at, address, variant, spec_json FROM sweep_runs ORDER BY id DESC
`

const selectRecordsSQL = `
SELECT source_v, measured_i FROM sweep_records WHERE run_id = ? ORDER BY idx
`
