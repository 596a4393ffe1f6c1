package roles_test

import (
	"fmt"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/roles"
)

func ExampleScore() {
	scores := contracts.DimensionScores{
		contracts.Accuracy:     100,
		contracts.Completeness: 100,
		contracts.Consistency:  100,
		contracts.Timeliness:   40,
		contracts.Uniqueness:   98,
		contracts.Validity:     100,
		contracts.Integrity:    100,
	}
	signals := contracts.Signals{contracts.SignalTransactionID: true}

	res := roles.Score(91.14, scores, roles.Get("fraud analyst"), signals, 0.6)
	fmt.Println(res.Role, res.Applicable, res.RiskDetected)
	// Output: Fraud Analyst true true
}
