package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/evaluation"
	"github.com/wonny/dqs/internal/scoring"
	"github.com/wonny/dqs/internal/source"
	"github.com/wonny/dqs/internal/store"
	"github.com/wonny/dqs/pkg/config"
	"github.com/wonny/dqs/pkg/database"
	"github.com/wonny/dqs/pkg/httputil"
	"github.com/wonny/dqs/pkg/logger"
	"github.com/wonny/dqs/pkg/redis"
)

// runtimeOptions selects what a command needs wired
type runtimeOptions struct {
	weightsFile string
	publisher   contracts.EvaluationPublisher
	metrics     *evaluation.Metrics
}

// runtime holds the shared dependencies of a command
type runtime struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *database.DB // nil when DATABASE_URL is unset
	redis     *redis.Client
	store     *store.Repository // nil when db is nil
	evaluator *evaluation.Evaluator
}

// newRuntime wires config, Redis, Postgres and the evaluator. Redis is
// optional and degrades to in-memory caching; a configured database that
// cannot be reached is an error.
func newRuntime(ctx context.Context, cfg *config.Config, log *logger.Logger, opts runtimeOptions) (*runtime, error) {
	rt := &runtime{cfg: cfg, log: log}

	weights, err := loadWeights(cfg, opts.weightsFile)
	if err != nil {
		return nil, err
	}

	rt.redis = redis.Disabled()
	if cfg.Redis.Enabled {
		rc, err := redis.New(ctx, cfg)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, using in-memory cache")
		} else {
			rt.redis = rc
		}
	}

	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Debug("DATABASE_URL not set, evaluation history disabled")
	case err != nil:
		rt.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		rt.db = db
		rt.store = store.NewRepository(db)
		if err := rt.store.EnsureSchema(ctx); err != nil {
			rt.Close()
			return nil, err
		}
	}

	evalOpts := []evaluation.Option{
		evaluation.WithWeights(weights),
		evaluation.WithAlpha(cfg.Scoring.Alpha),
		evaluation.WithCache(evaluation.NewCache(rt.redis, cfg.Scoring.CacheSize, cfg.Scoring.CacheTTL)),
		evaluation.WithLogger(log),
	}
	if rt.store != nil {
		evalOpts = append(evalOpts, evaluation.WithStore(rt.store))
	}
	if opts.publisher != nil {
		evalOpts = append(evalOpts, evaluation.WithPublisher(opts.publisher))
	}
	if opts.metrics != nil {
		evalOpts = append(evalOpts, evaluation.WithMetrics(opts.metrics))
	}

	rt.evaluator, err = evaluation.New(evalOpts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("create evaluator: %w", err)
	}

	return rt, nil
}

// fetcher builds a remote CSV fetcher. With Redis enabled the request quota
// is shared by every process fetching from the same deployment.
func (rt *runtime) fetcher() *source.Fetcher {
	client := httputil.New(rt.cfg.Fetch, rt.log)
	if rt.redis.Enabled() {
		client = client.WithRateLimiter(redis.NewRateLimiter(rt.redis, "dqs"), "fetch", redis.Limit{
			Limit:  int(rt.cfg.Fetch.RequestsPerSecond * 60),
			Window: time.Minute,
		})
	}
	return source.NewFetcher(client, rt.cfg.Ingest.MaxUploadBytes(), rt.log)
}

// Close releases connections
func (rt *runtime) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.redis != nil {
		rt.redis.Close()
	}
}

func loadWeights(cfg *config.Config, override string) (contracts.Weights, error) {
	path := override
	if path == "" {
		path = cfg.Scoring.WeightsFile
	}
	if path == "" {
		return nil, nil
	}

	weights, err := scoring.LoadWeights(path)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	return weights, nil
}
