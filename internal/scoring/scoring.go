// Package scoring aggregates dimension scores into the base DQS.
package scoring

import (
	"fmt"
	"math"

	"github.com/wonny/dqs/internal/contracts"
)

// WeightTolerance is the allowed deviation of a weight total from 1.0
const WeightTolerance = 0.001

// ConfigError reports an unusable weight configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// EqualWeights returns 1/7 for every dimension.
func EqualWeights() contracts.Weights {
	w := make(contracts.Weights, contracts.DimensionCount)
	for _, d := range contracts.Dimensions() {
		w[d] = 1.0 / float64(contracts.DimensionCount)
	}
	return w
}

// ValidateWeights checks every weight is finite and that the total is 1.0
// within WeightTolerance. Negative entries are allowed as long as the total
// holds; BaseScore clamps the result.
func ValidateWeights(w contracts.Weights) error {
	for d, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigError{Field: string(d), Message: "weight must be a finite number"}
		}
	}

	total := w.Sum()
	if math.Abs(total-1.0) > WeightTolerance {
		return &ConfigError{Message: fmt.Sprintf("weights must sum to 1.0 (got %.4f)", total)}
	}

	return nil
}

// BaseScore returns the weighted sum of the seven dimension scores,
// rounded to two decimals.
//
// Missing scores count as 0.0. nil weights mean equal weights; otherwise
// the weights are validated first and a dimension without a weight entry
// contributes nothing.
func BaseScore(scores contracts.DimensionScores, weights contracts.Weights) (float64, error) {
	if weights == nil {
		weights = EqualWeights()
	} else if err := ValidateWeights(weights); err != nil {
		return 0, err
	}

	total := 0.0
	for _, d := range contracts.Dimensions() {
		total += scores.Get(d) * weights[d]
	}

	return Round2(math.Max(0, math.Min(100, total))), nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
