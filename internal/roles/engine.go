package roles

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/scoring"
)

// Alpha floor for blending the base score into a role score. The base
// score always contributes at least MinAlpha.
const (
	MinAlpha     = 0.6
	DefaultAlpha = MinAlpha
)

// Result is a role's reading of one dataset.
// Score is meaningful only when Applicable is true.
type Result struct {
	Role         string  `json:"role"`
	Applicable   bool    `json:"applicable"`
	Score        float64 `json:"score"`
	RiskDetected bool    `json:"risk_detected"`
	Alpha        float64 `json:"alpha"`
}

// ClampAlpha raises alpha to MinAlpha. Values above 1 are kept; NaN and
// infinities fall back to MinAlpha.
func ClampAlpha(alpha float64) float64 {
	if alpha < MinAlpha || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return MinAlpha
	}
	return alpha
}

// MissingSignals lists required signals absent or false in signals, in
// the profile's declared order.
func MissingSignals(p Profile, signals contracts.Signals) []contracts.Signal {
	var missing []contracts.Signal
	for _, sig := range p.requiredSignals {
		if !signals.Has(sig) {
			missing = append(missing, sig)
		}
	}
	return missing
}

// IsApplicable reports whether the dataset carries every signal the
// profile requires. A profile with no requirements always applies.
func IsApplicable(p Profile, signals contracts.Signals) bool {
	return len(MissingSignals(p, signals)) == 0
}

// Applicable returns the catalog profiles that apply to signals, in order.
func Applicable(signals contracts.Signals) []Profile {
	var out []Profile
	for _, p := range catalog {
		if IsApplicable(p, signals) {
			out = append(out, p)
		}
	}
	return out
}

// Component is the profile-weighted sum of the dimension scores.
func Component(p Profile, scores contracts.DimensionScores) float64 {
	total := 0.0
	for _, d := range contracts.Dimensions() {
		total += p.weights[d] * scores.Get(d)
	}
	return total
}

// FailingDimensions lists critical dimensions scoring strictly below the
// profile threshold, in the profile's declared order.
func FailingDimensions(p Profile, scores contracts.DimensionScores) []contracts.Dimension {
	var failing []contracts.Dimension
	for _, d := range p.critical {
		if scores.Get(d) < p.threshold {
			failing = append(failing, d)
		}
	}
	return failing
}

// RiskDetected reports whether any critical dimension is below threshold.
func RiskDetected(p Profile, scores contracts.DimensionScores) bool {
	for _, d := range p.critical {
		if scores.Get(d) < p.threshold {
			return true
		}
	}
	return false
}

// Score blends the immutable base score with the profile's weighted view:
//
//	score = alpha*base + (1-alpha)*component
//
// alpha is raised to at least MinAlpha. The inputs are only read.
func Score(base float64, scores contracts.DimensionScores, p Profile, signals contracts.Signals, alpha float64) Result {
	if !IsApplicable(p, signals) {
		return Result{Role: p.name}
	}

	alpha = ClampAlpha(alpha)
	blended := alpha*base + (1-alpha)*Component(p, scores)

	return Result{
		Role:         p.name,
		Applicable:   true,
		Score:        scoring.Round2(blended),
		RiskDetected: RiskDetected(p, scores),
		Alpha:        alpha,
	}
}

// Explain renders a short markdown explanation of what the scores mean
// for the profile's stakeholder.
func Explain(p Profile, scores contracts.DimensionScores, signals contracts.Signals) string {
	if missing := MissingSignals(p, signals); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, sig := range missing {
			names[i] = string(sig)
		}
		return fmt.Sprintf("⚠️ **Role Not Applicable**\n\n"+
			"This dataset lacks the signals a **%s** review depends on.\n"+
			"Missing signals: `%s`\n"+
			"Pick a role that matches the dataset content, such as %s.",
			p.name, strings.Join(names, "`, `"), DataEngineer)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Perspective: %s**\n%s\n\n", p.name, p.description)

	threshold := formatThreshold(p.threshold)
	failing := FailingDimensions(p, scores)

	switch {
	case len(p.critical) == 0:
		accuracy, ok := scores[contracts.Accuracy]
		if !ok {
			accuracy = 100
		}
		if accuracy < 60 {
			b.WriteString("⚠️ General notice: data accuracy is significantly low.")
		} else {
			b.WriteString("ℹ️ Balanced overview: the base DQS reflects the general state of the dataset.")
		}
	case len(failing) == 0:
		fmt.Fprintf(&b, "✅ **No critical risks detected.**\n"+
			"All critical dimensions (%s) are at or above the risk threshold of %s.\n"+
			"The dataset is suitable for this use case.",
			joinDims(p.critical), threshold)
	default:
		fmt.Fprintf(&b, "⚠️ **Critical data quality risks detected:**\n"+
			"These dimensions fell below the %s risk threshold (%s):\n", p.name, threshold)
		for _, d := range failing {
			fmt.Fprintf(&b, "- **%s**: %.1f (threshold: %s)\n", d.Title(), scores.Get(d), threshold)
		}
		fmt.Fprintf(&b, "\n**Impact:** these gaps directly affect %s objectives. Proceed with caution.", p.riskLevel)
	}

	return b.String()
}

func joinDims(dims []contracts.Dimension) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}

func formatThreshold(v float64) string {
	return fmt.Sprintf("%g", v)
}
