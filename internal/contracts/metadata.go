package contracts

import "time"

// SemanticHint is the inferred business role of a column
type SemanticHint string

const (
	HintID        SemanticHint = "ID"
	HintMoney     SemanticHint = "MONEY"
	HintTimestamp SemanticHint = "TIMESTAMP"
	HintCategory  SemanticHint = "CATEGORY"
	HintUnknown   SemanticHint = "UNKNOWN"
)

// Signal names a dataset-level boolean used to gate role applicability
type Signal string

const (
	SignalTransactionID Signal = "has_transaction_id"
	SignalAmount        Signal = "has_amount"
	SignalTimestamp     Signal = "has_timestamp"
	SignalKYC           Signal = "has_kyc"
	SignalTextHeavy     Signal = "is_text_heavy"
)

// AllSignals returns every signal the extractor derives, in reporting order
func AllSignals() []Signal {
	return []Signal{SignalTransactionID, SignalAmount, SignalTimestamp, SignalKYC, SignalTextHeavy}
}

// Signals maps signal names to their derived value
type Signals map[Signal]bool

// Has reports whether the signal is present and true
func (s Signals) Has(sig Signal) bool {
	return s[sig]
}

// NumericStats summarizes a numeric column
type NumericStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// TimestampMetrics summarizes a column whose values parsed as instants
type TimestampMetrics struct {
	MinTime      time.Time `json:"min_time"`
	MaxTime      time.Time `json:"max_time"`
	RangeSeconds float64   `json:"range_seconds"`
}

// DatasetMetadata is the aggregate-only description of one table.
// It never carries a raw cell value and is not mutated after extraction.
type DatasetMetadata struct {
	ColumnNames      []string                    `json:"column_names"`
	DataTypes        map[string]string           `json:"data_types"`
	RowCount         int                         `json:"row_count"`
	NullCounts       map[string]int              `json:"null_counts"`
	UniqueCounts     map[string]int              `json:"unique_counts"`
	NumericStats     map[string]NumericStats     `json:"numeric_stats"`
	TimestampMetrics map[string]TimestampMetrics `json:"timestamp_metrics"`
	SemanticHints    map[string]SemanticHint     `json:"semantic_hints"`
	Signals          Signals                     `json:"signals"`
	AuditHash        string                      `json:"audit_hash"`
}

// ColumnCount returns the number of columns
func (m *DatasetMetadata) ColumnCount() int {
	return len(m.ColumnNames)
}

// CellCount returns rows x columns
func (m *DatasetMetadata) CellCount() int {
	return m.RowCount * len(m.ColumnNames)
}

// TotalNulls sums null counts across all columns
func (m *DatasetMetadata) TotalNulls() int {
	total := 0
	for _, col := range m.ColumnNames {
		total += m.NullCounts[col]
	}
	return total
}

// Hint returns the semantic hint of a column, UNKNOWN when absent
func (m *DatasetMetadata) Hint(col string) SemanticHint {
	if h, ok := m.SemanticHints[col]; ok {
		return h
	}
	return HintUnknown
}

// ColumnsWithHint lists columns carrying hint h, in column order
func (m *DatasetMetadata) ColumnsWithHint(h SemanticHint) []string {
	var cols []string
	for _, col := range m.ColumnNames {
		if m.Hint(col) == h {
			cols = append(cols, col)
		}
	}
	return cols
}

// HasHint reports whether any column carries hint h
func (m *DatasetMetadata) HasHint(h SemanticHint) bool {
	for _, col := range m.ColumnNames {
		if m.Hint(col) == h {
			return true
		}
	}
	return false
}
