package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wonny/dqs/internal/api"
	"github.com/wonny/dqs/internal/api/handlers"
	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/evaluation"
	"github.com/wonny/dqs/pkg/logger"
	"github.com/wonny/dqs/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                                  - Health check
  GET  /api/roles                               - Role catalog
  GET  /api/roles/{name}                        - One role profile
  POST /api/evaluations                         - Score an uploaded CSV
  GET  /api/evaluations                         - Recent evaluations
  GET  /api/evaluations/{id}                    - Stored report
  GET  /api/evaluations/{id}/roles/{role}       - Reassess one role
  GET  /ws/evaluations                          - Live evaluation feed
  GET  /metrics                                 - Prometheus metrics

Example:
  dqs api
  dqs api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Metrics and live feed
	var (
		gatherer    prometheus.Gatherer
		apiMetrics  *api.Metrics
		evalMetrics *evaluation.Metrics
	)
	if cfg.MetricsEnabled {
		gatherer = prometheus.DefaultGatherer
		apiMetrics = api.MustNewMetrics(prometheus.DefaultRegisterer)
		evalMetrics = evaluation.DefaultMetrics()
	}
	hub := handlers.NewHub(log)

	// 4. Redis, database and evaluator
	rt, err := newRuntime(cmd.Context(), cfg, log, runtimeOptions{
		publisher: hub,
		metrics:   evalMetrics,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	var history contracts.EvaluationStore
	if rt.store != nil {
		history = rt.store
	}

	// 5. Router and server
	router := api.NewRouter(api.RouterDeps{
		Evaluations: handlers.NewEvaluationHandler(rt.evaluator, history, cfg.Ingest.MaxUploadBytes(), log),
		Roles:       handlers.NewRoleHandler(),
		Hub:         hub,
		DB:          rt.db,
		Limiter:     redis.NewRateLimiter(rt.redis, "dqs"),
		RateLimit:   redis.Limit{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window},
		Gatherer:    gatherer,
		Metrics:     apiMetrics,
		Logger:      log,
	})
	server := api.New(cfg, log, router)
	server.OnShutdown(hub.Close)

	// 6. Serve until interrupted, then drain
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		select {
		case <-server.Ready():
			log.WithFields(map[string]interface{}{
				"addr":    server.Addr(),
				"history": rt.store != nil,
				"redis":   rt.redis.Enabled(),
			}).Info("API server started")
		case <-ctx.Done():
		}
	}()

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}
