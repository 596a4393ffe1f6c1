package contracts

import (
	"sort"
	"strings"
)

// Dimension names one of the seven quality dimensions
type Dimension string

const (
	Accuracy     Dimension = "accuracy"
	Completeness Dimension = "completeness"
	Consistency  Dimension = "consistency"
	Timeliness   Dimension = "timeliness"
	Uniqueness   Dimension = "uniqueness"
	Validity     Dimension = "validity"
	Integrity    Dimension = "integrity"
)

var dimensionOrder = [...]Dimension{
	Accuracy, Completeness, Consistency, Timeliness, Uniqueness, Validity, Integrity,
}

// Dimensions returns the seven dimensions in their fixed reporting order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensionOrder))
	copy(out, dimensionOrder[:])
	return out
}

// DimensionCount is the number of quality dimensions
const DimensionCount = len(dimensionOrder)

// IsValid reports whether d is one of the seven known dimensions
func (d Dimension) IsValid() bool {
	for _, known := range dimensionOrder {
		if d == known {
			return true
		}
	}
	return false
}

// Title returns the display form ("completeness" -> "Completeness")
func (d Dimension) Title() string {
	if d == "" {
		return ""
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// DimensionScores maps each dimension to a 0-100 score
type DimensionScores map[Dimension]float64

// Get returns the score for d, 0.0 when absent
func (s DimensionScores) Get(d Dimension) float64 {
	return s[d]
}

// Clone returns an independent copy
func (s DimensionScores) Clone() DimensionScores {
	out := make(DimensionScores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Weights maps dimensions to aggregation weights
type Weights map[Dimension]float64

// Sum returns the total of every entry, including unknown keys
func (w Weights) Sum() float64 {
	total := 0.0
	for _, d := range w.sortedKeys() {
		total += w[d]
	}
	return total
}

// Clone returns an independent copy
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// sortedKeys gives a stable summation order so Sum is deterministic
func (w Weights) sortedKeys() []Dimension {
	keys := make([]Dimension, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
