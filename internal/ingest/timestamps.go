package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order; the first match wins.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-Jan-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// Epoch bounds: integral values in these ranges read as unix seconds or
// milliseconds. Anything else is not treated as an instant.
const (
	epochSecondsMin = 1e9
	epochSecondsMax = 1e10
	epochMillisMin  = 1e12
	epochMillisMax  = 1e13
)

// parseTimestamp makes a best-effort attempt to read cell as an instant.
// Values without a zone are read as UTC.
func parseTimestamp(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if t, ok := parseEpoch(n); ok {
			return t, true
		}
		// compact dates such as 20240131
		if len(s) == 8 {
			if t, err := time.ParseInLocation("20060102", s, time.UTC); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

func parseEpoch(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return time.Time{}, false
	}

	abs := math.Abs(n)
	switch {
	case abs >= epochSecondsMin && abs < epochSecondsMax:
		return time.Unix(int64(n), 0).UTC(), true
	case abs >= epochMillisMin && abs < epochMillisMax:
		return time.UnixMilli(int64(n)).UTC(), true
	}

	return time.Time{}, false
}
