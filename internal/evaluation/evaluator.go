// Package evaluation runs the full pipeline for one table: metadata
// extraction, dimension scoring, the weighted base score and every role
// assessment. Raw cell values never leave the ingest step.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/dimensions"
	"github.com/wonny/dqs/internal/ingest"
	"github.com/wonny/dqs/internal/roles"
	"github.com/wonny/dqs/internal/scoring"
	"github.com/wonny/dqs/pkg/logger"
)

// Request narrows one evaluation
type Request struct {
	// Roles limits the assessed roles; empty means the whole catalog.
	// Unknown names resolve through the catalog's soft fallback.
	Roles []string

	// Alpha overrides the evaluator default when non-zero.
	Alpha float64
}

// Evaluator wires the scoring stages together
type Evaluator struct {
	weights     contracts.Weights
	weightsHash string
	alpha       float64
	cache       Cache
	store       contracts.EvaluationStore
	publisher   contracts.EvaluationPublisher
	metrics     *Metrics
	log         *logger.Logger
	now         func() time.Time
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithWeights sets the base weight vector. nil means equal weights.
func WithWeights(w contracts.Weights) Option {
	return func(e *Evaluator) { e.weights = w.Clone() }
}

// WithAlpha sets the default base-score share for role scores
func WithAlpha(alpha float64) Option {
	return func(e *Evaluator) { e.alpha = alpha }
}

func WithCache(c Cache) Option {
	return func(e *Evaluator) { e.cache = c }
}

func WithStore(s contracts.EvaluationStore) Option {
	return func(e *Evaluator) { e.store = s }
}

func WithPublisher(p contracts.EvaluationPublisher) Option {
	return func(e *Evaluator) { e.publisher = p }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Evaluator) { e.log = l }
}

// WithClock fixes the reference time used for timeliness
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// New builds an Evaluator. Weights are validated up front so a bad vector
// fails at startup instead of on the first request.
func New(opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		alpha: roles.DefaultAlpha,
		log:   logger.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.weights == nil {
		e.weights = scoring.EqualWeights()
	}
	if err := scoring.ValidateWeights(e.weights); err != nil {
		return nil, err
	}
	e.weightsHash = scoring.WeightsHash(e.weights)
	e.log = e.log.WithComponent("evaluation")

	return e, nil
}

// Weights returns a copy of the base weight vector
func (e *Evaluator) Weights() contracts.Weights {
	return e.weights.Clone()
}

// WeightsHash fingerprints the evaluator's weight vector
func (e *Evaluator) WeightsHash() string {
	return e.weightsHash
}

// Evaluate scores a table for every role at the default alpha
func (e *Evaluator) Evaluate(ctx context.Context, source string, table ingest.Table) (*contracts.EvaluationReport, error) {
	return e.EvaluateWith(ctx, source, table, Request{})
}

// EvaluateWith scores a table, persisting and publishing the report when a
// store or publisher is configured. A store failure is returned alongside
// the report so callers can still show the result.
func (e *Evaluator) EvaluateWith(ctx context.Context, source string, table ingest.Table, req Request) (*contracts.EvaluationReport, error) {
	start := time.Now()

	snap, err := e.snapshot(ctx, table)
	if err != nil {
		e.metrics.ObserveEvaluation("error", time.Since(start))
		return nil, err
	}

	alpha := e.alpha
	if req.Alpha != 0 {
		alpha = req.Alpha
	}

	report := &contracts.EvaluationReport{
		ID:          uuid.NewString(),
		Source:      source,
		TableDigest: table.Digest(),
		Metadata:    snap.Metadata,
		Dimensions:  snap.Dimensions,
		BaseScore:   snap.BaseScore,
		Grade:       contracts.GradeFor(snap.BaseScore),
		WeightsHash: e.weightsHash,
		Roles:       assessRoles(snap, selectProfiles(req.Roles), alpha),
		EvaluatedAt: e.now().UTC(),
	}

	e.metrics.ObserveEvaluation("ok", time.Since(start))
	e.metrics.ObserveBaseScore(report.BaseScore)
	e.log.WithFields(map[string]interface{}{
		"id":         report.ID,
		"source":     source,
		"audit_hash": report.Metadata.AuditHash,
		"rows":       report.Metadata.RowCount,
		"base_score": report.BaseScore,
		"grade":      report.Grade,
	}).Info("Evaluation complete")
	e.log.WithField("dimensions", report.Dimensions).Debug("Dimension scores")

	if e.store != nil {
		if err := e.store.Save(ctx, report); err != nil {
			return report, fmt.Errorf("save evaluation: %w", err)
		}
	}
	if e.publisher != nil {
		e.publisher.Publish(report)
	}

	return report, nil
}

// snapshot computes or fetches the role-independent scores
func (e *Evaluator) snapshot(ctx context.Context, table ingest.Table) (*Snapshot, error) {
	var key string
	if e.cache != nil {
		if err := table.Validate(); err != nil {
			return nil, &ingest.IngestError{Op: "extract", Err: err}
		}
		key = cacheKey(table.Digest(), e.weightsHash)
		snap, found, err := e.cache.Get(ctx, key)
		if err != nil {
			e.log.WithError(err).Warn("Snapshot cache read failed")
		}
		e.metrics.IncCacheLookup(found)
		if found {
			return snap, nil
		}
	}

	meta, err := ingest.Extract(table)
	if err != nil {
		return nil, err
	}

	scores := dimensions.CalculateAllAt(meta, e.now())
	base, err := scoring.BaseScore(scores, e.weights)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Metadata: meta, Dimensions: scores, BaseScore: base}
	if e.cache != nil {
		if err := e.cache.Set(ctx, key, snap); err != nil {
			e.log.WithError(err).Warn("Snapshot cache write failed")
		}
	}
	return snap, nil
}

func selectProfiles(names []string) []roles.Profile {
	if len(names) == 0 {
		return roles.Profiles()
	}
	profiles := make([]roles.Profile, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		p := roles.Get(name)
		if seen[p.Name()] {
			continue
		}
		seen[p.Name()] = true
		profiles = append(profiles, p)
	}
	return profiles
}

func assessRoles(snap *Snapshot, profiles []roles.Profile, alpha float64) []contracts.RoleAssessment {
	signals := snap.Metadata.Signals
	out := make([]contracts.RoleAssessment, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, assess(p, snap.BaseScore, snap.Dimensions, signals, alpha))
	}
	return out
}

func assess(p roles.Profile, base float64, scores contracts.DimensionScores, signals contracts.Signals, alpha float64) contracts.RoleAssessment {
	res := roles.Score(base, scores, p, signals, alpha)
	return contracts.RoleAssessment{
		Role:         res.Role,
		RiskLevel:    p.RiskLevel(),
		Applicable:   res.Applicable,
		Score:        res.Score,
		RiskDetected: res.RiskDetected,
		Alpha:        res.Alpha,
		Explanation:  roles.Explain(p, scores, signals),
	}
}

// ErrNoDimensions is returned when a stored report carries no scores
var ErrNoDimensions = errors.New("report has no dimension scores")

// ReassessRole recomputes one role from a report's stored scores. The base
// score is taken as-is and never recomputed.
func ReassessRole(report *contracts.EvaluationReport, roleName string, alpha float64) (contracts.RoleAssessment, error) {
	if report == nil || len(report.Dimensions) == 0 {
		return contracts.RoleAssessment{}, ErrNoDimensions
	}
	p := roles.Get(roleName)
	return assess(p, report.BaseScore, report.Dimensions, report.Metadata.Signals, alpha), nil
}
