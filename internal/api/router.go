package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/dqs/internal/api/handlers"
	"github.com/wonny/dqs/pkg/database"
	"github.com/wonny/dqs/pkg/logger"
	"github.com/wonny/dqs/pkg/redis"
)

// RouterDeps collects what the router wires together. Optional fields
// may be nil.
type RouterDeps struct {
	Evaluations *handlers.EvaluationHandler
	Roles       *handlers.RoleHandler
	Hub         *handlers.Hub

	DB        *database.DB // health only
	Limiter   *redis.RateLimiter
	RateLimit redis.Limit

	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
	Metrics  *Metrics

	Logger *logger.Logger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(deps.DB)).Methods("GET")

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	if deps.Hub != nil {
		r.HandleFunc("/ws/evaluations", deps.Hub.Serve).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Role catalog
	roles := deps.Roles
	if roles == nil {
		roles = handlers.NewRoleHandler()
	}
	api.HandleFunc("/roles", roles.List).Methods("GET")
	api.HandleFunc("/roles/{name}", roles.Get).Methods("GET")

	// Evaluations
	if deps.Evaluations != nil {
		limit := rateLimitMiddleware(deps.Limiter, deps.RateLimit, log, deps.Metrics)
		api.Handle("/evaluations", limit(http.HandlerFunc(deps.Evaluations.Create))).Methods("POST")

		api.HandleFunc("/evaluations", deps.Evaluations.List).Methods("GET")
		api.HandleFunc("/evaluations/{id}", deps.Evaluations.Get).Methods("GET")
		api.HandleFunc("/evaluations/{id}/roles/{role}", deps.Evaluations.ReassessRole).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log, deps.Metrics))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "dqs-api",
		}
		status := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			health := db.HealthCheck(ctx)
			body["database"] = health
			if !health.Healthy {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
