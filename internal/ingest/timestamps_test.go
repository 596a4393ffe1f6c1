package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2024-01-31", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-31 08:30:00", time.Date(2024, 1, 31, 8, 30, 0, 0, time.UTC), true},
		{"2024-01-31T08:30:00Z", time.Date(2024, 1, 31, 8, 30, 0, 0, time.UTC), true},
		{"2024-01-31T08:30:00+09:00", time.Date(2024, 1, 30, 23, 30, 0, 0, time.UTC), true},
		{"2024-01-31 08:30:00.125", time.Date(2024, 1, 31, 8, 30, 0, 125000000, time.UTC), true},
		{"2024/01/31", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"01/31/2024", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"31-Jan-2024", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"Jan 31, 2024", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"20240131", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"1706659200", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"1706659200000", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{" 2024-01-31 ", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), true},
		{"42", time.Time{}, false},
		{"1706659200.5", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"2024-13-45", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
			}
		})
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name     string
		cells    []string
		declared string
		want     string
	}{
		{"integers", []string{"1", "2", "-3"}, "", KindInt},
		{"integers with null", []string{"1", "", "3"}, "", KindFloat},
		{"floats", []string{"1.5", "2"}, "", KindFloat},
		{"all null", []string{"", "NA"}, "", KindFloat},
		{"booleans", []string{"True", "false"}, "", KindBool},
		{"booleans with null", []string{"True", ""}, "", KindObject},
		{"strings", []string{"a", "1"}, "", KindObject},
		{"declared datetime", []string{"2024-01-01", ""}, KindDatetime, KindDatetime},
		{"declared but unparseable", []string{"2024-01-01", "soon"}, KindDatetime, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferKind(tt.cells, tt.declared))
		})
	}
}

func TestProfileColumn_DistinctByValue(t *testing.T) {
	p := profileColumn([]string{"1", "1.0", "2", ""}, KindFloat)
	assert.Equal(t, 1, p.nulls)
	assert.Equal(t, 2, p.distinct)
	assert.Equal(t, 1.0, p.numeric.Min)
	assert.Equal(t, 2.0, p.numeric.Max)
}
