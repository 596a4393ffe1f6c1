package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/evaluation"
	"github.com/wonny/dqs/internal/ingest"
	"github.com/wonny/dqs/internal/roles"
	"github.com/wonny/dqs/internal/scoring"
	"github.com/wonny/dqs/internal/store"
	"github.com/wonny/dqs/pkg/logger"
)

// uploadField is the multipart form field carrying the CSV
const uploadField = "file"

// EvaluationHandler scores uploaded tables and serves evaluation history
type EvaluationHandler struct {
	evaluator *evaluation.Evaluator
	store     contracts.EvaluationStore // nil when no database is configured
	maxUpload int64
	logger    *logger.Logger
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(
	evaluator *evaluation.Evaluator,
	st contracts.EvaluationStore,
	maxUpload int64,
	log *logger.Logger,
) *EvaluationHandler {
	return &EvaluationHandler{
		evaluator: evaluator,
		store:     st,
		maxUpload: maxUpload,
		logger:    log,
	}
}

// Create scores an uploaded CSV
// POST /api/evaluations?role=&alpha=&parse_dates=
func (h *EvaluationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	source, data, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Upload exceeds size limit")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := ingest.LoadOptions{ParseDates: splitList(r.URL.Query().Get("parse_dates"))}
	table, err := ingest.LoadReader(bytes.NewReader(data), source, opts)
	if err != nil {
		h.respondEvaluationError(w, err)
		return
	}

	report, err := h.evaluator.EvaluateWith(ctx, source, table, req)
	if err != nil {
		if report == nil {
			h.respondEvaluationError(w, err)
			return
		}
		// scored but not persisted
		h.logger.WithError(err).WithField("id", report.ID).Warn("Failed to save evaluation")
	}

	respondJSON(w, http.StatusCreated, report)
}

// List returns recent evaluations
// GET /api/evaluations?limit=
func (h *EvaluationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Evaluation history is disabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' (expected a non-negative integer)")
			return
		}
		limit = n
	}

	var (
		summaries []contracts.EvaluationSummary
		err       error
	)
	if hash := r.URL.Query().Get("audit_hash"); hash != "" {
		summaries, err = h.store.ListByAuditHash(r.Context(), hash)
	} else {
		summaries, err = h.store.ListRecent(r.Context(), limit)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to list evaluations")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve evaluations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(summaries),
		"evaluations": summaries,
	})
}

// Get returns one stored report
// GET /api/evaluations/{id}
func (h *EvaluationHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ReassessRole recomputes one role for a stored report
// GET /api/evaluations/{id}/roles/{role}?alpha=
func (h *EvaluationHandler) ReassessRole(w http.ResponseWriter, r *http.Request) {
	alpha := roles.DefaultAlpha
	if v := r.URL.Query().Get("alpha"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'alpha' (expected a number)")
			return
		}
		alpha = a
	}

	report, ok := h.load(w, r)
	if !ok {
		return
	}

	assessment, err := evaluation.ReassessRole(report, mux.Vars(r)["role"], alpha)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"evaluation_id": report.ID,
		"base_score":    report.BaseScore,
		"assessment":    assessment,
	})
}

func (h *EvaluationHandler) load(w http.ResponseWriter, r *http.Request) (*contracts.EvaluationReport, bool) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Evaluation history is disabled")
		return nil, false
	}

	id := mux.Vars(r)["id"]
	report, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Evaluation not found")
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).WithField("id", id).Error("Failed to get evaluation")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve evaluation")
		return nil, false
	}
	return report, true
}

func (h *EvaluationHandler) respondEvaluationError(w http.ResponseWriter, err error) {
	var ingestErr *ingest.IngestError
	var configErr *scoring.ConfigError
	switch {
	case errors.As(err, &ingestErr):
		respondError(w, http.StatusUnprocessableEntity, ingestErr.Error())
	case errors.As(err, &configErr):
		h.logger.WithError(err).Error("Scoring configuration rejected")
		respondError(w, http.StatusInternalServerError, "Scoring configuration is invalid")
	default:
		h.logger.WithError(err).Error("Evaluation failed")
		respondError(w, http.StatusInternalServerError, "Evaluation failed")
	}
}

func parseRequest(r *http.Request) (evaluation.Request, error) {
	q := r.URL.Query()
	req := evaluation.Request{Roles: splitList(q.Get("role"))}

	if v := q.Get("alpha"); v != "" {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, errors.New("invalid 'alpha' (expected a number)")
		}
		req.Alpha = roles.ClampAlpha(alpha)
	}
	return req, nil
}

// readUpload returns the CSV bytes from a raw body or a multipart "file" field
func readUpload(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		return "upload.csv", data, err
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil, errors.New("missing multipart field 'file'")
		}
		if err != nil {
			return "", nil, err
		}
		if part.FormName() != uploadField {
			part.Close()
			continue
		}

		name := part.FileName()
		if name == "" {
			name = "upload.csv"
		}
		data, err := io.ReadAll(part)
		part.Close()
		return name, data, err
	}
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
