package roles

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/dqs/internal/contracts"
)

func uniformScores(v float64) contracts.DimensionScores {
	s := contracts.DimensionScores{}
	for _, d := range contracts.Dimensions() {
		s[d] = v
	}
	return s
}

func allSignals() contracts.Signals {
	s := contracts.Signals{}
	for _, sig := range contracts.AllSignals() {
		s[sig] = true
	}
	return s
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{
		"Data Engineer",
		"Data Scientist",
		"Fraud Analyst",
		"Compliance Officer",
		"Finance / Settlement",
		"Executive / Leadership",
	}, List())
}

func TestCatalogWeightsSumToOne(t *testing.T) {
	for _, p := range Profiles() {
		t.Run(p.Name(), func(t *testing.T) {
			w := p.Weights()
			require.Len(t, w, contracts.DimensionCount)
			assert.InDelta(t, 1.0, w.Sum(), 1e-12)
			for d, v := range w {
				assert.GreaterOrEqual(t, v, 0.0, d)
			}
		})
	}
}

func TestCatalogWeightDistribution(t *testing.T) {
	eng := Get(DataEngineer)
	assert.Equal(t, 0.25, eng.Weight(contracts.Completeness))
	assert.Equal(t, 0.2, eng.Weight(contracts.Accuracy))
	assert.InDelta(t, 0.075, eng.Weight(contracts.Timeliness), 1e-12)
	assert.InDelta(t, 0.075, eng.Weight(contracts.Validity), 1e-12)

	exec := Get(Executive)
	for _, d := range contracts.Dimensions() {
		assert.InDelta(t, 1.0/7, exec.Weight(d), 1e-12)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Fraud Analyst", FraudAnalyst},
		{"fraud analyst", FraudAnalyst},
		{"  FINANCE / SETTLEMENT ", FinanceSettlement},
		{"Auditor", Executive},
		{"", Executive},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Get(tt.input).Name())
		})
	}

	_, ok := Lookup("Auditor")
	assert.False(t, ok)
	assert.Equal(t, Executive, Default().Name())
}

func TestProfileIsImmutable(t *testing.T) {
	p := Get(ComplianceOfficer)

	w := p.Weights()
	w[contracts.Accuracy] = 0
	crit := p.CriticalDimensions()
	crit[0] = contracts.Timeliness
	req := p.RequiredSignals()
	req[0] = contracts.SignalAmount

	again := Get(ComplianceOfficer)
	assert.Equal(t, 0.25, again.Weight(contracts.Accuracy))
	assert.Equal(t, contracts.Accuracy, again.CriticalDimensions()[0])
	assert.Equal(t, []contracts.Signal{contracts.SignalKYC}, again.RequiredSignals())
}

func TestIsApplicable(t *testing.T) {
	tests := []struct {
		role    string
		signals contracts.Signals
		want    bool
	}{
		{DataEngineer, nil, true},
		{FraudAnalyst, contracts.Signals{contracts.SignalTransactionID: true}, true},
		{FraudAnalyst, contracts.Signals{contracts.SignalTransactionID: false}, false},
		{FraudAnalyst, contracts.Signals{}, false},
		{ComplianceOfficer, contracts.Signals{contracts.SignalKYC: true}, true},
		{FinanceSettlement, contracts.Signals{contracts.SignalKYC: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, IsApplicable(Get(tt.role), tt.signals))
		})
	}
}

func TestApplicable(t *testing.T) {
	var names []string
	for _, p := range Applicable(contracts.Signals{contracts.SignalAmount: true}) {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{DataEngineer, DataScientist, FinanceSettlement, Executive}, names)
}

func TestScore_NotApplicable(t *testing.T) {
	// every score fails the threshold; still no risk because the role does not apply
	res := Score(10, uniformScores(0), Get(FraudAnalyst), contracts.Signals{}, 0.6)

	assert.False(t, res.Applicable)
	assert.False(t, res.RiskDetected)
	assert.Equal(t, FraudAnalyst, res.Role)
}

func TestScore_Blend(t *testing.T) {
	scores := contracts.DimensionScores{
		contracts.Accuracy:     90,
		contracts.Completeness: 70,
		contracts.Consistency:  100,
		contracts.Timeliness:   90,
		contracts.Uniqueness:   98,
		contracts.Validity:     50,
		contracts.Integrity:    100,
	}
	p := Get(DataEngineer)
	component := Component(p, scores)
	// 0.25*70 + 0.25*100 + 0.2*90 + 0.075*(100+90+98+50)
	assert.InDelta(t, 85.85, component, 1e-9)

	res := Score(85.43, scores, p, allSignals(), 0.6)
	require.True(t, res.Applicable)
	assert.Equal(t, 85.6, res.Score)
	assert.Equal(t, 0.6, res.Alpha)
	assert.True(t, res.RiskDetected) // completeness 70 < 80
}

func TestScore_AlphaClamp(t *testing.T) {
	scores := uniformScores(100)
	p := Get(Executive)

	low := Score(50, scores, p, nil, 0.1)
	assert.Equal(t, 0.6, low.Alpha)
	assert.Equal(t, 70.0, low.Score)

	// alpha above 1 is kept, not capped
	high := Score(50, scores, p, nil, 1.7)
	assert.Equal(t, 1.7, high.Alpha)
	assert.Equal(t, 15.0, high.Score)

	assert.Equal(t, 0.6, Score(50, scores, p, nil, math.Inf(1)).Alpha)
	assert.Equal(t, 0.6, Score(50, scores, p, nil, math.NaN()).Alpha)

	// base contribution never drops below 60%
	for _, alpha := range []float64{-1, 0, 0.3, 0.59} {
		res := Score(80, uniformScores(0), p, nil, alpha)
		assert.GreaterOrEqual(t, res.Score, 0.6*80)
	}
}

func TestScore_DoesNotMutateInputs(t *testing.T) {
	scores := uniformScores(42)
	before := scores.Clone()
	Score(42, scores, Get(DataScientist), nil, 0.7)
	assert.Equal(t, before, scores)
}

func TestRiskDetected(t *testing.T) {
	p := Get(FinanceSettlement) // accuracy, validity @ 90

	scores := uniformScores(95)
	assert.False(t, RiskDetected(p, scores))

	scores[contracts.Validity] = 90
	assert.False(t, RiskDetected(p, scores), "equal to threshold is not a failure")

	scores[contracts.Validity] = 89.99
	assert.True(t, RiskDetected(p, scores))
	assert.Equal(t, []contracts.Dimension{contracts.Validity}, FailingDimensions(p, scores))

	// non-critical dimensions never raise risk
	scores = uniformScores(95)
	scores[contracts.Completeness] = 0
	assert.False(t, RiskDetected(p, scores))

	assert.False(t, RiskDetected(Get(Executive), uniformScores(0)))
}

func TestExplain(t *testing.T) {
	t.Run("not applicable names missing signals", func(t *testing.T) {
		text := Explain(Get(ComplianceOfficer), uniformScores(100), contracts.Signals{contracts.SignalAmount: true})
		assert.Contains(t, text, "Role Not Applicable")
		assert.Contains(t, text, "`has_kyc`")
		assert.Contains(t, text, ComplianceOfficer)
	})

	t.Run("failures listed", func(t *testing.T) {
		scores := uniformScores(100)
		scores[contracts.Uniqueness] = 60
		text := Explain(Get(FraudAnalyst), scores, allSignals())
		assert.Contains(t, text, "Perspective: Fraud Analyst")
		assert.Contains(t, text, "- **Uniqueness**: 60.0 (threshold: 75)")
		assert.NotContains(t, text, "Timeliness**")
		assert.Contains(t, text, "High Operational")
	})

	t.Run("no critical risks", func(t *testing.T) {
		text := Explain(Get(DataEngineer), uniformScores(90), nil)
		assert.Contains(t, text, "No critical risks detected")
		assert.Contains(t, text, "completeness, integrity, accuracy")
	})

	t.Run("executive low accuracy", func(t *testing.T) {
		scores := uniformScores(90)
		scores[contracts.Accuracy] = 59
		assert.Contains(t, Explain(Get(Executive), scores, nil), "accuracy is significantly low")
	})

	t.Run("executive balanced", func(t *testing.T) {
		assert.Contains(t, Explain(Get(Executive), uniformScores(90), nil), "Balanced overview")
	})

	t.Run("missing accuracy reads as full marks", func(t *testing.T) {
		text := Explain(Get("unknown role"), contracts.DimensionScores{}, nil)
		assert.Contains(t, text, "Balanced overview")
		assert.NotContains(t, text, "accuracy is significantly low")
	})
}

func TestProfileJSON(t *testing.T) {
	raw, err := json.Marshal(Get(Executive))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Executive / Leadership", decoded["name"])
	assert.Equal(t, "Strategic", decoded["risk_level"])
	assert.Equal(t, []interface{}{}, decoded["critical_dimensions"])
	assert.Equal(t, []interface{}{}, decoded["required_signals"])
	assert.Len(t, decoded["weights"], 7)
}

func TestDistributeWeights_Errors(t *testing.T) {
	_, err := distributeWeights(contracts.Weights{contracts.Accuracy: 0.8, contracts.Validity: 0.3})
	assert.Error(t, err)

	_, err = distributeWeights(contracts.Weights{"freshness": 0.1})
	assert.Error(t, err)

	full := contracts.Weights{}
	for _, d := range contracts.Dimensions() {
		full[d] = 0.1
	}
	_, err = distributeWeights(full)
	assert.Error(t, err)
}
