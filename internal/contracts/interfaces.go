package contracts

import "context"

// EvaluationStore persists evaluation reports
type EvaluationStore interface {
	Save(ctx context.Context, report *EvaluationReport) error
	Get(ctx context.Context, id string) (*EvaluationReport, error)
	ListRecent(ctx context.Context, limit int) ([]EvaluationSummary, error)
	ListByAuditHash(ctx context.Context, auditHash string) ([]EvaluationSummary, error)
}

// EvaluationPublisher fans finished reports out to live subscribers
type EvaluationPublisher interface {
	Publish(report *EvaluationReport)
}
