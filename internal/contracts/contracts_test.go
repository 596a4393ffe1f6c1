package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensions(t *testing.T) {
	dims := Dimensions()
	require.Len(t, dims, DimensionCount)
	assert.Equal(t, Accuracy, dims[0])
	assert.Equal(t, Integrity, dims[6])

	// Callers cannot reorder the shared table
	dims[0] = "mutated"
	assert.Equal(t, Accuracy, Dimensions()[0])
}

func TestDimension_IsValidAndTitle(t *testing.T) {
	assert.True(t, Timeliness.IsValid())
	assert.False(t, Dimension("freshness").IsValid())
	assert.Equal(t, "Uniqueness", Uniqueness.Title())
	assert.Equal(t, "", Dimension("").Title())
}

func TestWeights_Sum(t *testing.T) {
	w := Weights{Accuracy: 0.5, Completeness: 0.25, "extra": 0.25}
	assert.InDelta(t, 1.0, w.Sum(), 1e-12)
	assert.Nil(t, Weights(nil).Clone())
}

func TestDatasetMetadata_Helpers(t *testing.T) {
	meta := DatasetMetadata{
		ColumnNames: []string{"txn_id", "amount", "note"},
		RowCount:    4,
		NullCounts:  map[string]int{"txn_id": 1, "amount": 0, "note": 2},
		SemanticHints: map[string]SemanticHint{
			"txn_id": HintID,
			"amount": HintMoney,
		},
	}

	assert.Equal(t, 3, meta.ColumnCount())
	assert.Equal(t, 12, meta.CellCount())
	assert.Equal(t, 3, meta.TotalNulls())
	assert.Equal(t, HintUnknown, meta.Hint("note"))
	assert.Equal(t, []string{"txn_id"}, meta.ColumnsWithHint(HintID))
	assert.True(t, meta.HasHint(HintMoney))
	assert.False(t, meta.HasHint(HintTimestamp))
}

func TestDatasetMetadata_JSONFieldNames(t *testing.T) {
	meta := DatasetMetadata{
		ColumnNames: []string{"status"},
		Signals:     Signals{SignalKYC: true},
	}

	raw, err := json.Marshal(meta)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "column_names")
	assert.Contains(t, decoded, "audit_hash")
	assert.Equal(t, map[string]interface{}{"has_kyc": true}, decoded["signals"])
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		base float64
		want string
	}{
		{100, GradeGood},
		{80, GradeGood},
		{79.99, GradeFair},
		{50, GradeFair},
		{49.99, GradePoor},
		{0, GradePoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.base), tt.base)
	}
}

func TestEvaluationReport_RoleAndSummary(t *testing.T) {
	report := EvaluationReport{
		ID:        "r1",
		Source:    "payments.csv",
		Metadata:  DatasetMetadata{ColumnNames: []string{"a", "b"}, RowCount: 10, AuditHash: "h"},
		BaseScore: 91.5,
		Grade:     GradeGood,
		Roles:     []RoleAssessment{{Role: "Data Engineer", Applicable: true, Score: 90}},
	}

	a, ok := report.Role("Data Engineer")
	require.True(t, ok)
	assert.Equal(t, 90.0, a.Score)
	_, ok = report.Role("Auditor")
	assert.False(t, ok)

	s := report.Summary()
	assert.Equal(t, 2, s.ColumnCount)
	assert.Equal(t, "h", s.AuditHash)
	assert.Equal(t, 10, s.RowCount)
}
