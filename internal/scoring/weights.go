package scoring

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/dqs/internal/contracts"
)

// weightsFile is the on-disk shape of a custom weight vector.
// Pointers distinguish an omitted dimension from an explicit 0.
type weightsFile struct {
	Accuracy     *float64 `yaml:"accuracy"`
	Completeness *float64 `yaml:"completeness"`
	Consistency  *float64 `yaml:"consistency"`
	Timeliness   *float64 `yaml:"timeliness"`
	Uniqueness   *float64 `yaml:"uniqueness"`
	Validity     *float64 `yaml:"validity"`
	Integrity    *float64 `yaml:"integrity"`
}

func (f weightsFile) toWeights() contracts.Weights {
	w := contracts.Weights{}
	set := func(d contracts.Dimension, v *float64) {
		if v != nil {
			w[d] = *v
		}
	}
	set(contracts.Accuracy, f.Accuracy)
	set(contracts.Completeness, f.Completeness)
	set(contracts.Consistency, f.Consistency)
	set(contracts.Timeliness, f.Timeliness)
	set(contracts.Uniqueness, f.Uniqueness)
	set(contracts.Validity, f.Validity)
	set(contracts.Integrity, f.Integrity)
	return w
}

// ParseWeights decodes a YAML weight vector. Unknown keys are rejected so
// a misspelled dimension fails instead of silently weighing nothing.
func ParseWeights(data []byte) (contracts.Weights, error) {
	var f weightsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, &ConfigError{Field: "weights", Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	w := f.toWeights()
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}
	return w, nil
}

// LoadWeights reads and validates a YAML weight file.
func LoadWeights(path string) (contracts.Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights file: %w", err)
	}
	return ParseWeights(data)
}

// WeightsHash fingerprints a weight vector for caching and audit.
// nil hashes as the equal-weight vector it stands for.
func WeightsHash(w contracts.Weights) string {
	if w == nil {
		w = EqualWeights()
	}

	// encoding/json sorts map keys
	payload, _ := json.Marshal(w)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
