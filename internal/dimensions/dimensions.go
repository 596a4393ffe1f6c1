// Package dimensions scores the seven quality dimensions of a dataset
// from its metadata alone. Every scorer is a pure function returning a
// value in [0, 100].
package dimensions

import (
	"math"
	"time"

	"github.com/wonny/dqs/internal/contracts"
)

// Scorer maps dataset metadata to a 0-100 score for one dimension
type Scorer func(meta contracts.DatasetMetadata) float64

// Neutral scores used when a dimension has nothing to inspect
const (
	noEvidenceScore      = 100.0
	malformedTimeScore   = 50.0
	halfCredit           = 0.5
	fullCredit           = 1.0
	integrityNullPenalty = 200.0
)

func clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score))
}

// Completeness is the share of non-null cells.
func Completeness(meta contracts.DatasetMetadata) float64 {
	cells := meta.CellCount()
	if cells == 0 {
		return 0.0
	}

	ratio := float64(cells-meta.TotalNulls()) / float64(cells)
	return clamp(ratio * 100)
}

// Uniqueness averages distinct/row ratios across ID columns.
func Uniqueness(meta contracts.DatasetMetadata) float64 {
	idCols := meta.ColumnsWithHint(contracts.HintID)
	if len(idCols) == 0 {
		return noEvidenceScore
	}

	total := 0.0
	for _, col := range idCols {
		if meta.RowCount > 0 {
			total += float64(meta.UniqueCounts[col]) / float64(meta.RowCount)
		}
	}

	return clamp(total / float64(len(idCols)) * 100)
}

// Validity gives each MONEY column full credit when its minimum is
// non-negative and half credit otherwise. A MONEY column without numeric
// stats is not penalized here; Accuracy covers the type mismatch.
func Validity(meta contracts.DatasetMetadata) float64 {
	moneyCols := meta.ColumnsWithHint(contracts.HintMoney)
	if len(moneyCols) == 0 {
		return noEvidenceScore
	}

	points := 0.0
	for _, col := range moneyCols {
		if meta.NumericStats[col].Min >= 0 {
			points += fullCredit
		} else {
			points += halfCredit
		}
	}

	return clamp(points / float64(len(moneyCols)) * 100)
}

// Accuracy is the share of columns whose observed type agrees with their
// semantic hint: MONEY needs a numeric type, TIMESTAMP needs parsed metrics.
func Accuracy(meta contracts.DatasetMetadata) float64 {
	if meta.ColumnCount() == 0 {
		return 0.0
	}

	accurate := 0
	for _, col := range meta.ColumnNames {
		if typeMatchesHint(meta, col) {
			accurate++
		}
	}

	return clamp(float64(accurate) / float64(meta.ColumnCount()) * 100)
}

func typeMatchesHint(meta contracts.DatasetMetadata, col string) bool {
	switch meta.Hint(col) {
	case contracts.HintMoney:
		return isNumericType(meta.DataTypes[col])
	case contracts.HintTimestamp:
		_, parsed := meta.TimestampMetrics[col]
		return parsed
	default:
		return true
	}
}

func isNumericType(dtype string) bool {
	switch dtype {
	case "int64", "int32", "float64", "float32":
		return true
	}
	return false
}

// Consistency rewards CATEGORY columns whose cardinality is a plausible
// grouping: at least one group and fewer groups than rows.
func Consistency(meta contracts.DatasetMetadata) float64 {
	catCols := meta.ColumnsWithHint(contracts.HintCategory)
	if len(catCols) == 0 {
		return noEvidenceScore
	}

	points := 0.0
	for _, col := range catCols {
		distinct := meta.UniqueCounts[col]
		if distinct > 0 && distinct < meta.RowCount {
			points += fullCredit
		} else {
			points += halfCredit
		}
	}

	return clamp(points / float64(len(catCols)) * 100)
}

// Timeliness scores recency of the newest instant per timestamp column,
// measured against the current wall clock.
func Timeliness(meta contracts.DatasetMetadata) float64 {
	return TimelinessAt(meta, time.Now())
}

// TimelinessAt scores recency against a fixed reference instant.
func TimelinessAt(meta contracts.DatasetMetadata, now time.Time) float64 {
	if len(meta.TimestampMetrics) == 0 {
		if meta.HasHint(contracts.HintTimestamp) {
			return malformedTimeScore
		}
		return noEvidenceScore
	}

	total := 0.0
	for _, metrics := range meta.TimestampMetrics {
		total += recencyScore(daysBetween(metrics.MaxTime, now))
	}

	return clamp(total / float64(len(meta.TimestampMetrics)))
}

// daysBetween returns whole days from then to now, floored toward
// negative infinity so any future instant yields a negative count.
func daysBetween(then, now time.Time) int {
	return int(math.Floor(now.Sub(then).Hours() / 24))
}

func recencyScore(days int) float64 {
	switch {
	case days < 0:
		return 0.0 // future timestamp
	case days <= 1:
		return 100.0
	case days <= 30:
		return 90.0
	case days <= 365:
		return 70.0
	default:
		return 40.0
	}
}

// Integrity penalizes nulls in ID columns at twice their ratio.
func Integrity(meta contracts.DatasetMetadata) float64 {
	idCols := meta.ColumnsWithHint(contracts.HintID)
	if len(idCols) == 0 {
		return noEvidenceScore
	}

	total := 0.0
	for _, col := range idCols {
		nulls := meta.NullCounts[col]
		if nulls == 0 || meta.RowCount == 0 {
			total += 100.0
			continue
		}
		ratio := float64(nulls) / float64(meta.RowCount)
		total += math.Max(0, 100-ratio*integrityNullPenalty)
	}

	return clamp(total / float64(len(idCols)))
}

// scorers is the fixed dimension -> scorer table
var scorers = map[contracts.Dimension]Scorer{
	contracts.Accuracy:     Accuracy,
	contracts.Completeness: Completeness,
	contracts.Consistency:  Consistency,
	contracts.Uniqueness:   Uniqueness,
	contracts.Validity:     Validity,
	contracts.Integrity:    Integrity,
}

// CalculateAll runs every scorer. All seven dimensions are always present.
func CalculateAll(meta contracts.DatasetMetadata) contracts.DimensionScores {
	return CalculateAllAt(meta, time.Now())
}

// CalculateAllAt is CalculateAll with a fixed reference instant for timeliness.
func CalculateAllAt(meta contracts.DatasetMetadata, now time.Time) contracts.DimensionScores {
	scores := make(contracts.DimensionScores, contracts.DimensionCount)
	for dim, score := range scorers {
		scores[dim] = score(meta)
	}
	scores[contracts.Timeliness] = TimelinessAt(meta, now)
	return scores
}

// For returns the scorer of a single dimension.
func For(dim contracts.Dimension) (Scorer, bool) {
	if dim == contracts.Timeliness {
		return Timeliness, true
	}
	s, ok := scorers[dim]
	return s, ok
}
