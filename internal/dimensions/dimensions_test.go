package dimensions

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/dqs/internal/contracts"
)

var refNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// paymentsMeta: 100 rows, duplicated IDs, a negative amount, 10-day-old data
func paymentsMeta() contracts.DatasetMetadata {
	return contracts.DatasetMetadata{
		ColumnNames:  []string{"id", "amount", "date"},
		DataTypes:    map[string]string{"id": "object", "amount": "float64", "date": "object"},
		RowCount:     100,
		NullCounts:   map[string]int{"id": 0, "amount": 5, "date": 0},
		UniqueCounts: map[string]int{"id": 98, "amount": 50, "date": 10},
		NumericStats: map[string]contracts.NumericStats{"amount": {Min: -10, Max: 500, Mean: 100}},
		TimestampMetrics: map[string]contracts.TimestampMetrics{
			"date": {MinTime: refNow.AddDate(0, 0, -40), MaxTime: refNow.AddDate(0, 0, -10)},
		},
		SemanticHints: map[string]contracts.SemanticHint{
			"id": contracts.HintID, "amount": contracts.HintMoney, "date": contracts.HintTimestamp,
		},
	}
}

func TestCalculateAll_Payments(t *testing.T) {
	scores := CalculateAllAt(paymentsMeta(), refNow)

	require.Len(t, scores, contracts.DimensionCount)
	assert.InDelta(t, 98.0, scores[contracts.Uniqueness], 1e-9)
	assert.Equal(t, 50.0, scores[contracts.Validity])
	assert.Equal(t, 90.0, scores[contracts.Timeliness])
	assert.Equal(t, 100.0, scores[contracts.Integrity])
	assert.Equal(t, 100.0, scores[contracts.Accuracy])
	assert.Equal(t, 100.0, scores[contracts.Consistency])
	assert.InDelta(t, 98.333, scores[contracts.Completeness], 0.001)
}

func TestCalculateAll_NoHintedColumns(t *testing.T) {
	meta := contracts.DatasetMetadata{
		ColumnNames:   []string{"comment", "region"},
		DataTypes:     map[string]string{"comment": "object", "region": "object"},
		RowCount:      10,
		NullCounts:    map[string]int{"comment": 2, "region": 0},
		UniqueCounts:  map[string]int{"comment": 8, "region": 3},
		SemanticHints: map[string]contracts.SemanticHint{"comment": contracts.HintUnknown, "region": contracts.HintUnknown},
	}

	scores := CalculateAllAt(meta, refNow)
	for _, dim := range []contracts.Dimension{
		contracts.Uniqueness, contracts.Validity, contracts.Consistency,
		contracts.Timeliness, contracts.Integrity, contracts.Accuracy,
	} {
		assert.Equal(t, 100.0, scores[dim], dim)
	}
	assert.Equal(t, 90.0, scores[contracts.Completeness])
}

func TestCompleteness(t *testing.T) {
	assert.Equal(t, 0.0, Completeness(contracts.DatasetMetadata{}))
	assert.Equal(t, 0.0, Completeness(contracts.DatasetMetadata{ColumnNames: []string{"a"}, RowCount: 0}))

	allNull := contracts.DatasetMetadata{ColumnNames: []string{"a"}, RowCount: 4, NullCounts: map[string]int{"a": 4}}
	assert.Equal(t, 0.0, Completeness(allNull))
}

func TestUniqueness_ZeroRows(t *testing.T) {
	meta := contracts.DatasetMetadata{
		ColumnNames:   []string{"user_id"},
		SemanticHints: map[string]contracts.SemanticHint{"user_id": contracts.HintID},
	}
	assert.Equal(t, 0.0, Uniqueness(meta))
}

func TestValidity(t *testing.T) {
	meta := contracts.DatasetMetadata{
		ColumnNames: []string{"price", "fee", "balance"},
		DataTypes:   map[string]string{"price": "float64", "fee": "int64", "balance": "object"},
		NumericStats: map[string]contracts.NumericStats{
			"price": {Min: 0},
			"fee":   {Min: -1},
		},
		SemanticHints: map[string]contracts.SemanticHint{
			"price": contracts.HintMoney, "fee": contracts.HintMoney, "balance": contracts.HintMoney,
		},
	}

	// price full, fee half, balance has no stats so its minimum reads as 0
	assert.InDelta(t, 250.0/3, Validity(meta), 1e-9)
	// balance is a string-typed MONEY column
	assert.InDelta(t, 200.0/3, Accuracy(meta), 1e-9)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, Accuracy(contracts.DatasetMetadata{}))

	meta := contracts.DatasetMetadata{
		ColumnNames:   []string{"created", "amount", "status", "notes"},
		DataTypes:     map[string]string{"created": "object", "amount": "object", "status": "object", "notes": "object"},
		SemanticHints: map[string]contracts.SemanticHint{"created": contracts.HintTimestamp, "amount": contracts.HintMoney, "status": contracts.HintCategory},
	}
	assert.Equal(t, 50.0, Accuracy(meta))
}

func TestConsistency(t *testing.T) {
	tests := []struct {
		name     string
		distinct int
		want     float64
	}{
		{"plausible grouping", 3, 100},
		{"one value per row", 10, 50},
		{"no values", 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := contracts.DatasetMetadata{
				ColumnNames:   []string{"status"},
				RowCount:      10,
				UniqueCounts:  map[string]int{"status": tt.distinct},
				SemanticHints: map[string]contracts.SemanticHint{"status": contracts.HintCategory},
			}
			assert.Equal(t, tt.want, Consistency(meta))
		})
	}
}

func TestTimelinessAt(t *testing.T) {
	tests := []struct {
		name string
		max  time.Time
		want float64
	}{
		{"future", refNow.Add(time.Hour), 0},
		{"just now", refNow, 100},
		{"one day", refNow.Add(-36 * time.Hour), 100},
		{"two days", refNow.AddDate(0, 0, -2), 90},
		{"thirty days", refNow.AddDate(0, 0, -30), 90},
		{"thirty one days", refNow.AddDate(0, 0, -31), 70},
		{"one year", refNow.AddDate(0, 0, -365), 70},
		{"archive", refNow.AddDate(-3, 0, 0), 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := contracts.DatasetMetadata{
				ColumnNames:      []string{"ts"},
				TimestampMetrics: map[string]contracts.TimestampMetrics{"ts": {MinTime: tt.max, MaxTime: tt.max}},
			}
			assert.Equal(t, tt.want, TimelinessAt(meta, refNow))
		})
	}
}

func TestTimelinessAt_Averages(t *testing.T) {
	meta := contracts.DatasetMetadata{
		ColumnNames: []string{"a", "b"},
		TimestampMetrics: map[string]contracts.TimestampMetrics{
			"a": {MaxTime: refNow},
			"b": {MaxTime: refNow.AddDate(-2, 0, 0)},
		},
	}
	assert.Equal(t, 70.0, TimelinessAt(meta, refNow))
}

func TestTimelinessAt_MalformedTimestamp(t *testing.T) {
	meta := contracts.DatasetMetadata{
		ColumnNames:   []string{"created"},
		SemanticHints: map[string]contracts.SemanticHint{"created": contracts.HintTimestamp},
	}
	assert.Equal(t, 50.0, TimelinessAt(meta, refNow))
}

func TestIntegrity(t *testing.T) {
	meta := contracts.DatasetMetadata{
		ColumnNames: []string{"order_id", "customer_id"},
		RowCount:    100,
		NullCounts:  map[string]int{"order_id": 10, "customer_id": 80},
		SemanticHints: map[string]contracts.SemanticHint{
			"order_id": contracts.HintID, "customer_id": contracts.HintID,
		},
	}
	// 100 - 0.1*200 = 80; 100 - 0.8*200 floors at 0
	assert.Equal(t, 40.0, Integrity(meta))
}

func TestFor(t *testing.T) {
	for _, dim := range contracts.Dimensions() {
		s, ok := For(dim)
		require.True(t, ok, dim)
		require.NotNil(t, s)
	}
	_, ok := For("freshness")
	assert.False(t, ok)
}

func TestScoresStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	hints := []contracts.SemanticHint{
		contracts.HintID, contracts.HintMoney, contracts.HintTimestamp, contracts.HintCategory, contracts.HintUnknown,
	}
	types := []string{"int64", "float64", "object", "bool"}

	for i := 0; i < 200; i++ {
		rows := rng.Intn(50)
		meta := contracts.DatasetMetadata{
			RowCount:         rows,
			DataTypes:        map[string]string{},
			NullCounts:       map[string]int{},
			UniqueCounts:     map[string]int{},
			NumericStats:     map[string]contracts.NumericStats{},
			TimestampMetrics: map[string]contracts.TimestampMetrics{},
			SemanticHints:    map[string]contracts.SemanticHint{},
		}
		for c := 0; c < rng.Intn(6); c++ {
			col := fmt.Sprintf("c%d", c)
			meta.ColumnNames = append(meta.ColumnNames, col)
			meta.DataTypes[col] = types[rng.Intn(len(types))]
			meta.SemanticHints[col] = hints[rng.Intn(len(hints))]
			if rows > 0 {
				meta.NullCounts[col] = rng.Intn(rows + 1)
				meta.UniqueCounts[col] = rng.Intn(rows + 1)
			}
			meta.NumericStats[col] = contracts.NumericStats{Min: rng.Float64()*200 - 100}
			if rng.Intn(2) == 0 {
				ts := refNow.Add(time.Duration(rng.Int63n(int64(3*365*24*time.Hour))) - 24*time.Hour)
				meta.TimestampMetrics[col] = contracts.TimestampMetrics{MinTime: ts, MaxTime: ts}
			}
		}

		for dim, score := range CalculateAllAt(meta, refNow) {
			assert.GreaterOrEqual(t, score, 0.0, dim)
			assert.LessOrEqual(t, score, 100.0, dim)
		}
	}
}
