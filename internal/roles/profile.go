// Package roles reinterprets a base DQS through stakeholder profiles.
//
// The catalog is built once at package initialization and never changes.
// Profiles are immutable values: accessors hand out copies.
package roles

import (
	"encoding/json"

	"github.com/wonny/dqs/internal/contracts"
)

// Profile describes how one stakeholder weighs and gates data quality.
type Profile struct {
	name            string
	description     string
	riskLevel       string
	weights         contracts.Weights
	critical        []contracts.Dimension
	threshold       float64
	requiredSignals []contracts.Signal
}

// Name returns the catalog name
func (p Profile) Name() string { return p.name }

// Description returns the human summary of the stakeholder's concern
func (p Profile) Description() string { return p.description }

// RiskLevel names the kind of objective a failing dataset puts at risk
func (p Profile) RiskLevel() string { return p.riskLevel }

// RiskThreshold is the score below which a critical dimension raises risk
func (p Profile) RiskThreshold() float64 { return p.threshold }

// Weight returns the profile's weight for a dimension
func (p Profile) Weight(d contracts.Dimension) float64 { return p.weights[d] }

// Weights returns a copy of the full weight vector
func (p Profile) Weights() contracts.Weights { return p.weights.Clone() }

// CriticalDimensions returns a copy of the critical dimension list
func (p Profile) CriticalDimensions() []contracts.Dimension {
	return append([]contracts.Dimension(nil), p.critical...)
}

// RequiredSignals returns a copy of the signals the dataset must carry
func (p Profile) RequiredSignals() []contracts.Signal {
	return append([]contracts.Signal(nil), p.requiredSignals...)
}

type profileJSON struct {
	Name               string                `json:"name"`
	Description        string                `json:"description"`
	RiskLevel          string                `json:"risk_level"`
	Weights            contracts.Weights     `json:"weights"`
	CriticalDimensions []contracts.Dimension `json:"critical_dimensions"`
	RiskThreshold      float64               `json:"risk_threshold"`
	RequiredSignals    []contracts.Signal    `json:"required_signals"`
}

// MarshalJSON exposes the profile for display
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(profileJSON{
		Name:               p.name,
		Description:        p.description,
		RiskLevel:          p.riskLevel,
		Weights:            p.weights,
		CriticalDimensions: nonNilDims(p.critical),
		RiskThreshold:      p.threshold,
		RequiredSignals:    nonNilSignals(p.requiredSignals),
	})
}

func nonNilDims(d []contracts.Dimension) []contracts.Dimension {
	if d == nil {
		return []contracts.Dimension{}
	}
	return d
}

func nonNilSignals(s []contracts.Signal) []contracts.Signal {
	if s == nil {
		return []contracts.Signal{}
	}
	return s
}
