package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/dqs/internal/contracts"
)

// columnProfile holds the aggregates of one column. Cells are consumed
// while building it and never stored.
type columnProfile struct {
	kind     string
	nulls    int
	distinct int
	numeric  *contracts.NumericStats
}

// inferKind decides the column type tag from its non-null cells.
// Integer columns containing nulls become float64; boolean columns
// containing nulls become object.
func inferKind(cells []string, declared string) string {
	nonNull := 0
	allInt, allFloat, allBool, allTime := true, true, true, true

	for _, cell := range cells {
		if isNull(cell) {
			continue
		}
		nonNull++
		v := strings.TrimSpace(cell)

		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(v); !ok {
				allBool = false
			}
		}
		if allTime && declared == KindDatetime {
			if _, ok := parseTimestamp(v); !ok {
				allTime = false
			}
		}
	}

	hasNulls := nonNull < len(cells)
	switch {
	case nonNull == 0:
		return KindFloat
	case declared == KindDatetime && allTime:
		return KindDatetime
	case allInt && !hasNulls:
		return KindInt
	case allInt || allFloat:
		return KindFloat
	case allBool && !hasNulls:
		return KindBool
	default:
		return KindObject
	}
}

func parseBool(v string) (bool, bool) {
	switch v {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}

// isNumericKind reports whether min/max/mean apply to the kind
func isNumericKind(kind string) bool {
	return kind == KindInt || kind == KindFloat
}

// profileColumn computes null/distinct counts and numeric stats.
// Numeric cells are compared by value so "1" and "1.0" count once.
func profileColumn(cells []string, kind string) columnProfile {
	p := columnProfile{kind: kind}
	seen := make(map[string]struct{})

	var (
		sum    float64
		count  int
		lo, hi = math.Inf(1), math.Inf(-1)
	)

	for _, cell := range cells {
		if isNull(cell) {
			p.nulls++
			continue
		}
		v := strings.TrimSpace(cell)

		key := cell
		switch kind {
		case KindInt, KindFloat:
			f, _ := strconv.ParseFloat(v, 64)
			key = strconv.FormatFloat(f, 'g', -1, 64)
			sum += f
			count++
			lo = math.Min(lo, f)
			hi = math.Max(hi, f)
		case KindBool:
			b, _ := parseBool(v)
			key = strconv.FormatBool(b)
		case KindDatetime:
			t, _ := parseTimestamp(v)
			key = strconv.FormatInt(t.UnixNano(), 10)
		}
		seen[key] = struct{}{}
	}
	p.distinct = len(seen)

	if isNumericKind(kind) {
		stats := contracts.NumericStats{}
		if count > 0 {
			stats = contracts.NumericStats{Min: lo, Max: hi, Mean: sum / float64(count)}
		}
		stats.Min = finiteOrZero(stats.Min)
		stats.Max = finiteOrZero(stats.Max)
		stats.Mean = finiteOrZero(stats.Mean)
		p.numeric = &stats
	}

	return p
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.0
	}
	return v
}

// timestampMetrics parses every non-null cell and drops failures.
// ok is false when nothing parsed.
func timestampMetrics(cells []string) (contracts.TimestampMetrics, bool) {
	var minT, maxT time.Time
	parsed := 0

	for _, cell := range cells {
		if isNull(cell) {
			continue
		}
		t, ok := parseTimestamp(cell)
		if !ok {
			continue
		}
		if parsed == 0 || t.Before(minT) {
			minT = t
		}
		if parsed == 0 || t.After(maxT) {
			maxT = t
		}
		parsed++
	}

	if parsed == 0 {
		return contracts.TimestampMetrics{}, false
	}

	return contracts.TimestampMetrics{
		MinTime:      minT,
		MaxTime:      maxT,
		RangeSeconds: spanSeconds(minT, maxT),
	}, true
}

// spanSeconds avoids time.Duration overflow for spans beyond ~292 years
func spanSeconds(from, to time.Time) float64 {
	secs := float64(to.Unix() - from.Unix())
	return secs + float64(to.Nanosecond()-from.Nanosecond())/1e9
}
