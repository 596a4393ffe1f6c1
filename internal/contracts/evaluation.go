package contracts

import "time"

// Grade bands for the base score, as shown on dashboards
const (
	GradeGood = "Good"
	GradeFair = "Fair"
	GradePoor = "Poor"
)

// GradeFor buckets a base score: >= 80 Good, >= 50 Fair, otherwise Poor
func GradeFor(base float64) string {
	switch {
	case base >= 80:
		return GradeGood
	case base >= 50:
		return GradeFair
	default:
		return GradePoor
	}
}

// RoleAssessment is one stakeholder's reading of an evaluation
type RoleAssessment struct {
	Role         string  `json:"role"`
	RiskLevel    string  `json:"risk_level"`
	Applicable   bool    `json:"applicable"`
	Score        float64 `json:"score"`
	RiskDetected bool    `json:"risk_detected"`
	Alpha        float64 `json:"alpha"`
	Explanation  string  `json:"explanation"`
}

// EvaluationReport bundles everything computed for one table.
// It holds metadata and scores only; raw cells are never included.
type EvaluationReport struct {
	ID          string           `json:"id"`
	Source      string           `json:"source"`
	TableDigest string           `json:"table_digest"`
	Metadata    DatasetMetadata  `json:"metadata"`
	Dimensions  DimensionScores  `json:"dimensions"`
	BaseScore   float64          `json:"base_score"`
	Grade       string           `json:"grade"`
	WeightsHash string           `json:"weights_hash"`
	Roles       []RoleAssessment `json:"roles"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
}

// Role finds the assessment for a role by exact name
func (r *EvaluationReport) Role(name string) (RoleAssessment, bool) {
	for _, a := range r.Roles {
		if a.Role == name {
			return a, true
		}
	}
	return RoleAssessment{}, false
}

// Summary returns the list view of the report
func (r *EvaluationReport) Summary() EvaluationSummary {
	return EvaluationSummary{
		ID:          r.ID,
		Source:      r.Source,
		AuditHash:   r.Metadata.AuditHash,
		RowCount:    r.Metadata.RowCount,
		ColumnCount: r.Metadata.ColumnCount(),
		BaseScore:   r.BaseScore,
		Grade:       r.Grade,
		EvaluatedAt: r.EvaluatedAt,
	}
}

// EvaluationSummary is the compact form used in listings
type EvaluationSummary struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	AuditHash   string    `json:"audit_hash"`
	RowCount    int       `json:"row_count"`
	ColumnCount int       `json:"column_count"`
	BaseScore   float64   `json:"base_score"`
	Grade       string    `json:"grade"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}
