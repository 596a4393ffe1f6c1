package store

// schemaSQL creates the history table. Only metadata and scores are stored.
const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS dqs;

CREATE TABLE IF NOT EXISTS dqs.evaluations (
    id            UUID PRIMARY KEY,
    source        TEXT NOT NULL,
    table_digest  TEXT NOT NULL,
    audit_hash    TEXT NOT NULL,
    weights_hash  TEXT NOT NULL,
    row_count     INTEGER NOT NULL,
    column_count  INTEGER NOT NULL,
    base_score    DOUBLE PRECISION NOT NULL,
    grade         TEXT NOT NULL,
    metadata      JSONB NOT NULL,
    dimensions    JSONB NOT NULL,
    roles         JSONB NOT NULL,
    evaluated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_evaluated_at
    ON dqs.evaluations (evaluated_at DESC);

CREATE INDEX IF NOT EXISTS idx_evaluations_audit_hash
    ON dqs.evaluations (audit_hash, evaluated_at DESC);
`
