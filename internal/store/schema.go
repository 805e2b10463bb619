package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id               TEXT PRIMARY KEY,
    kind                 TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    loan_a_principal     REAL NOT NULL,
    loan_a_rate          REAL NOT NULL,
    loan_b_principal     REAL,
    loan_b_rate          REAL,
    budget               REAL,
    payment_a            REAL,
    payment_b            REAL,
    months               INTEGER,
    total_interest       REAL,
    feasible             INTEGER NOT NULL DEFAULT 0,
    candidates           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS result_cache (
    cache_key            TEXT PRIMARY KEY,
    value                BLOB NOT NULL,
    expires_at_ns        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_cache_expires ON result_cache(expires_at_ns);
`
