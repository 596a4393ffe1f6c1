package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/pkg/database"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// ErrNotFound is returned when no evaluation has the requested id
var ErrNotFound = errors.New("evaluation not found")

// Repository persists evaluation reports in PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{pool: db.Pool}
}

// EnsureSchema creates the schema and table when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save inserts a report. Saving the same id twice is an error.
func (r *Repository) Save(ctx context.Context, report *contracts.EvaluationReport) error {
	metadata, err := json.Marshal(report.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	dims, err := json.Marshal(report.Dimensions)
	if err != nil {
		return fmt.Errorf("marshal dimensions: %w", err)
	}
	roles, err := json.Marshal(report.Roles)
	if err != nil {
		return fmt.Errorf("marshal roles: %w", err)
	}

	query := `
		INSERT INTO dqs.evaluations (
			id, source, table_digest, audit_hash, weights_hash,
			row_count, column_count, base_score, grade,
			metadata, dimensions, roles, evaluated_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.pool.Exec(ctx, query,
		report.ID,
		report.Source,
		report.TableDigest,
		report.Metadata.AuditHash,
		report.WeightsHash,
		report.Metadata.RowCount,
		report.Metadata.ColumnCount(),
		report.BaseScore,
		report.Grade,
		metadata,
		dims,
		roles,
		report.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}

	return nil
}

// Get loads a full report by id
func (r *Repository) Get(ctx context.Context, id string) (*contracts.EvaluationReport, error) {
	query := `
		SELECT id::text, source, table_digest, weights_hash, base_score, grade,
		       metadata, dimensions, roles, evaluated_at
		FROM dqs.evaluations
		WHERE id::text = $1
	`

	var (
		report                   contracts.EvaluationReport
		metadata, dims, roleJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.Source,
		&report.TableDigest,
		&report.WeightsHash,
		&report.BaseScore,
		&report.Grade,
		&metadata,
		&dims,
		&roleJSON,
		&report.EvaluatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query evaluation: %w", err)
	}

	if err := json.Unmarshal(metadata, &report.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	if err := json.Unmarshal(dims, &report.Dimensions); err != nil {
		return nil, fmt.Errorf("unmarshal dimensions: %w", err)
	}
	if err := json.Unmarshal(roleJSON, &report.Roles); err != nil {
		return nil, fmt.Errorf("unmarshal roles: %w", err)
	}
	report.EvaluatedAt = report.EvaluatedAt.UTC()

	return &report, nil
}

// ListRecent returns the newest evaluations first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]contracts.EvaluationSummary, error) {
	query := `
		SELECT id::text, source, audit_hash, row_count, column_count,
		       base_score, grade, evaluated_at
		FROM dqs.evaluations
		ORDER BY evaluated_at DESC
		LIMIT $1
	`
	return r.listSummaries(ctx, query, clampLimit(limit))
}

// ListByAuditHash returns every evaluation of tables with the same structure
func (r *Repository) ListByAuditHash(ctx context.Context, auditHash string) ([]contracts.EvaluationSummary, error) {
	query := `
		SELECT id::text, source, audit_hash, row_count, column_count,
		       base_score, grade, evaluated_at
		FROM dqs.evaluations
		WHERE audit_hash = $1
		ORDER BY evaluated_at DESC
	`
	return r.listSummaries(ctx, query, auditHash)
}

func (r *Repository) listSummaries(ctx context.Context, query string, args ...interface{}) ([]contracts.EvaluationSummary, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	summaries := make([]contracts.EvaluationSummary, 0)
	for rows.Next() {
		var s contracts.EvaluationSummary
		if err := rows.Scan(
			&s.ID,
			&s.Source,
			&s.AuditHash,
			&s.RowCount,
			&s.ColumnCount,
			&s.BaseScore,
			&s.Grade,
			&s.EvaluatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		s.EvaluatedAt = s.EvaluatedAt.UTC()
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return summaries, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
