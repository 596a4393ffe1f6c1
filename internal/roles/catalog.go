package roles

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/dqs/internal/contracts"
)

// Built-in profile names, in catalog order
const (
	DataEngineer      = "Data Engineer"
	DataScientist     = "Data Scientist"
	FraudAnalyst      = "Fraud Analyst"
	ComplianceOfficer = "Compliance Officer"
	FinanceSettlement = "Finance / Settlement"
	Executive         = "Executive / Leadership"

	// DefaultRole is what unknown names resolve to
	DefaultRole = Executive
)

type profileSpec struct {
	name        string
	description string
	riskLevel   string
	focus       contracts.Weights
	critical    []contracts.Dimension
	threshold   float64
	required    []contracts.Signal
}

var specs = []profileSpec{
	{
		name:        DataEngineer,
		description: "Focuses on pipeline reliability, schema adherence, and completeness.",
		riskLevel:   "Technical",
		focus:       contracts.Weights{contracts.Completeness: 0.25, contracts.Integrity: 0.25, contracts.Accuracy: 0.2},
		critical:    []contracts.Dimension{contracts.Completeness, contracts.Integrity, contracts.Accuracy},
		threshold:   80,
	},
	{
		name:        DataScientist,
		description: "Needs clean distributions, consistent history, and valid values for modeling.",
		riskLevel:   "Model Performance",
		focus:       contracts.Weights{contracts.Consistency: 0.25, contracts.Validity: 0.2, contracts.Completeness: 0.2},
		critical:    []contracts.Dimension{contracts.Consistency, contracts.Validity, contracts.Completeness},
		threshold:   75,
	},
	{
		name:        FraudAnalyst,
		description: "Detects anomalies; relies on unique identities and real-time signals.",
		riskLevel:   "High Operational",
		focus:       contracts.Weights{contracts.Uniqueness: 0.3, contracts.Timeliness: 0.3, contracts.Validity: 0.1},
		critical:    []contracts.Dimension{contracts.Uniqueness, contracts.Timeliness},
		threshold:   75,
		required:    []contracts.Signal{contracts.SignalTransactionID},
	},
	{
		name:        ComplianceOfficer,
		description: "Strict adherence to rules (KYC), accuracy of records, and data integrity.",
		riskLevel:   "Regulatory",
		focus:       contracts.Weights{contracts.Accuracy: 0.25, contracts.Integrity: 0.25, contracts.Completeness: 0.2},
		critical:    []contracts.Dimension{contracts.Accuracy, contracts.Integrity, contracts.Validity},
		threshold:   85,
		required:    []contracts.Signal{contracts.SignalKYC},
	},
	{
		name:        FinanceSettlement,
		description: "Zero tolerance for accuracy errors in amounts and validity of status.",
		riskLevel:   "Financial",
		focus:       contracts.Weights{contracts.Accuracy: 0.3, contracts.Validity: 0.3, contracts.Timeliness: 0.15},
		critical:    []contracts.Dimension{contracts.Accuracy, contracts.Validity},
		threshold:   90,
		required:    []contracts.Signal{contracts.SignalAmount},
	},
	{
		name:        Executive,
		description: "High level overview, balanced concern for overall trust.",
		riskLevel:   "Strategic",
		threshold:   60,
	},
}

// catalog is read-only after init
var (
	catalog     []Profile
	catalogByID map[string]int
)

func init() {
	catalog = make([]Profile, 0, len(specs))
	catalogByID = make(map[string]int, len(specs))

	for _, s := range specs {
		p, err := buildProfile(s)
		if err != nil {
			panic(fmt.Sprintf("roles: invalid built-in profile %q: %v", s.name, err))
		}
		catalogByID[normalize(p.name)] = len(catalog)
		catalog = append(catalog, p)
	}

	if _, ok := catalogByID[normalize(DefaultRole)]; !ok {
		panic("roles: default profile missing from catalog")
	}
}

func buildProfile(s profileSpec) (Profile, error) {
	weights, err := distributeWeights(s.focus)
	if err != nil {
		return Profile{}, err
	}
	if s.threshold < 0 || s.threshold > 100 {
		return Profile{}, fmt.Errorf("risk threshold %v outside [0, 100]", s.threshold)
	}
	for _, d := range s.critical {
		if !d.IsValid() {
			return Profile{}, fmt.Errorf("unknown critical dimension %q", d)
		}
	}

	return Profile{
		name:            s.name,
		description:     s.description,
		riskLevel:       s.riskLevel,
		weights:         weights,
		critical:        append([]contracts.Dimension(nil), s.critical...),
		threshold:       s.threshold,
		requiredSignals: append([]contracts.Signal(nil), s.required...),
	}, nil
}

// distributeWeights keeps the declared focus weights and spreads the
// remaining mass evenly over the undeclared dimensions. The last
// undeclared dimension takes whatever rounding leaves so the vector
// sums to 1.0.
func distributeWeights(focus contracts.Weights) (contracts.Weights, error) {
	declared := 0.0
	for d, v := range focus {
		if !d.IsValid() {
			return nil, fmt.Errorf("unknown dimension %q", d)
		}
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("invalid weight %v for %s", v, d)
		}
		declared += v
	}
	if declared > 1.0 {
		return nil, fmt.Errorf("declared weights sum to %v", declared)
	}

	var undeclared []contracts.Dimension
	for _, d := range contracts.Dimensions() {
		if _, ok := focus[d]; !ok {
			undeclared = append(undeclared, d)
		}
	}

	weights := make(contracts.Weights, contracts.DimensionCount)
	for d, v := range focus {
		weights[d] = v
	}
	if len(undeclared) == 0 {
		if math.Abs(declared-1.0) > 1e-9 {
			return nil, fmt.Errorf("weights sum to %v with no dimension left to absorb the remainder", declared)
		}
		return weights, nil
	}

	share := (1.0 - declared) / float64(len(undeclared))
	assigned := declared
	for i, d := range undeclared {
		if i == len(undeclared)-1 {
			weights[d] = 1.0 - assigned
			break
		}
		weights[d] = share
		assigned += share
	}

	return weights, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// List returns the built-in profile names in catalog order.
func List() []string {
	names := make([]string, len(catalog))
	for i, p := range catalog {
		names[i] = p.name
	}
	return names
}

// Profiles returns every built-in profile in catalog order.
func Profiles() []Profile {
	return append([]Profile(nil), catalog...)
}

// Lookup finds a profile by case-insensitive name.
func Lookup(name string) (Profile, bool) {
	i, ok := catalogByID[normalize(name)]
	if !ok {
		return Profile{}, false
	}
	return catalog[i], true
}

// Get finds a profile by case-insensitive name. Any name that does not
// match resolves to the Executive / Leadership profile.
func Get(name string) Profile {
	if p, ok := Lookup(name); ok {
		return p
	}
	return catalog[catalogByID[normalize(DefaultRole)]]
}

// Default returns the fallback profile
func Default() Profile {
	return Get(DefaultRole)
}
