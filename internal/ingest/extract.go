package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wonny/dqs/internal/contracts"
)

// hintRules maps column-name substrings to semantic hints.
// Rules are evaluated in order; the first match wins.
var hintRules = []struct {
	hint  contracts.SemanticHint
	terms []string
}{
	{contracts.HintID, []string{"id", "code", "number"}},
	{contracts.HintMoney, []string{"amount", "price", "balance", "fee"}},
	{contracts.HintTimestamp, []string{"date", "time", "created"}},
	{contracts.HintCategory, []string{"status", "state", "type"}},
}

// timestampNameTerms select columns whose values are parsed as instants
var timestampNameTerms = []string{"date", "time"}

// kycTerms flag columns that carry customer identity information
var kycTerms = []string{"user", "customer", "email", "address", "ip", "phone", "kyc", "name"}

// textHeavyRatio is the share of free-text columns above which a table is text heavy
const textHeavyRatio = 0.5

// InferHint returns the name-based semantic hint for a column.
func InferHint(column string) contracts.SemanticHint {
	lower := strings.ToLower(column)
	for _, rule := range hintRules {
		if containsAny(lower, rule.terms) {
			return rule.hint
		}
	}
	return contracts.HintUnknown
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// Extract builds the DatasetMetadata of a table.
// The table must be non-empty and rectangular.
func Extract(t Table) (contracts.DatasetMetadata, error) {
	if err := t.Validate(); err != nil {
		return contracts.DatasetMetadata{}, &IngestError{Op: "extract", Err: err}
	}

	meta := contracts.DatasetMetadata{
		ColumnNames:      append([]string(nil), t.Columns...),
		DataTypes:        make(map[string]string, len(t.Columns)),
		RowCount:         t.NumRows(),
		NullCounts:       make(map[string]int, len(t.Columns)),
		UniqueCounts:     make(map[string]int, len(t.Columns)),
		NumericStats:     make(map[string]contracts.NumericStats),
		TimestampMetrics: make(map[string]contracts.TimestampMetrics),
		SemanticHints:    make(map[string]contracts.SemanticHint, len(t.Columns)),
	}

	for i, col := range t.Columns {
		cells := t.column(i)

		// 1. Shape and per-column counts
		kind := inferKind(cells, t.DeclaredTypes[col])
		profile := profileColumn(cells, kind)
		meta.DataTypes[col] = kind
		meta.NullCounts[col] = profile.nulls
		meta.UniqueCounts[col] = profile.distinct

		// 2. Name-based semantic hint
		meta.SemanticHints[col] = InferHint(col)

		// 3. Numeric stats
		if profile.numeric != nil {
			meta.NumericStats[col] = *profile.numeric
		}

		// 4. Timestamp metrics; a successful parse overrides the name hint
		if containsAny(strings.ToLower(col), timestampNameTerms) || kind == KindDatetime {
			if metrics, ok := timestampMetrics(cells); ok {
				meta.TimestampMetrics[col] = metrics
				meta.SemanticHints[col] = contracts.HintTimestamp
			}
		}
	}

	// 5. Signals
	meta.Signals = deriveSignals(&meta)

	// 6. Audit hash
	hash, err := AuditHash(&meta)
	if err != nil {
		return contracts.DatasetMetadata{}, &IngestError{Op: "extract", Err: err}
	}
	meta.AuditHash = hash

	return meta, nil
}

func deriveSignals(meta *contracts.DatasetMetadata) contracts.Signals {
	hasKYC := false
	plainText := 0
	for _, col := range meta.ColumnNames {
		if containsAny(strings.ToLower(col), kycTerms) {
			hasKYC = true
		}
		if isFreeText(meta.DataTypes[col], meta.Hint(col)) {
			plainText++
		}
	}

	textHeavy := false
	if n := meta.ColumnCount(); n > 0 {
		textHeavy = float64(plainText)/float64(n) > textHeavyRatio
	}

	return contracts.Signals{
		contracts.SignalTransactionID: meta.HasHint(contracts.HintID),
		contracts.SignalAmount:        meta.HasHint(contracts.HintMoney),
		contracts.SignalTimestamp:     meta.HasHint(contracts.HintTimestamp),
		contracts.SignalKYC:           hasKYC,
		contracts.SignalTextHeavy:     textHeavy,
	}
}

// isFreeText: string-typed and not carrying an ID, TIMESTAMP or MONEY hint
func isFreeText(kind string, hint contracts.SemanticHint) bool {
	if kind != KindObject {
		return false
	}
	switch hint {
	case contracts.HintID, contracts.HintTimestamp, contracts.HintMoney:
		return false
	}
	return true
}

// auditPayload is the structural subset covered by the audit hash.
// encoding/json sorts map keys, so equal metadata marshals identically.
type auditPayload struct {
	ColumnNames  []string          `json:"column_names"`
	RowCount     int               `json:"row_count"`
	NullCounts   map[string]int    `json:"null_counts"`
	UniqueCounts map[string]int    `json:"unique_counts"`
	Signals      contracts.Signals `json:"signals"`
}

// AuditHash returns the SHA-256 hex digest of the structural fields of meta.
func AuditHash(meta *contracts.DatasetMetadata) (string, error) {
	payload, err := json.Marshal(auditPayload{
		ColumnNames:  meta.ColumnNames,
		RowCount:     meta.RowCount,
		NullCounts:   meta.NullCounts,
		UniqueCounts: meta.UniqueCounts,
		Signals:      meta.Signals,
	})
	if err != nil {
		return "", fmt.Errorf("marshal audit payload: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
