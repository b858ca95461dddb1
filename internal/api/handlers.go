// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cratedigger/internal/config"
	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/eventprocessor"
	"github.com/tomtom215/cratedigger/internal/logging"
	"github.com/tomtom215/cratedigger/internal/models"
	"github.com/tomtom215/cratedigger/internal/store"
	"github.com/tomtom215/cratedigger/internal/validation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Version is reported by the health endpoint. Set at build time.
var Version = "dev"

// Analyzer runs analyses. Satisfied by *engine.Engine.
type Analyzer interface {
	Run(ctx context.Context, req engine.Request) (*engine.Report, error)
	Stats() engine.Stats
}

// RunStore persists completed runs. Satisfied by *store.Store.
type RunStore interface {
	SaveRun(ctx context.Context, report *engine.Report) error
	GetRun(ctx context.Context, runID string) (*engine.Report, error)
	Recommendations(ctx context.Context, runID string) ([]models.Recommendation, error)
	Sellers(ctx context.Context, runID string) ([]models.SellerAnalysis, error)
	CanonicalItem(ctx context.Context, fingerprint string) (*store.CanonicalRecord, error)
	Runs(ctx context.Context, limit int) ([]store.RunInfo, error)
	DeleteRun(ctx context.Context, runID string) error
	Ping() error
}

// SearchPublisher queues a search for asynchronous analysis. Satisfied by
// *eventprocessor.Publisher.
type SearchPublisher interface {
	PublishSearch(ctx context.Context, ev *eventprocessor.SearchCompleted) error
}

// Handler serves the analysis endpoints.
type Handler struct {
	engine    Analyzer
	runs      RunStore
	searches  SearchPublisher
	defaults  config.AnalysisConfig
	logger    zerolog.Logger
	startTime time.Time
}

// NewHandler creates a handler. defaults fills preferences a request omits
// and bounds synchronous runs with RunTimeout.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(eng Analyzer, runs RunStore, defaults config.AnalysisConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:    eng,
		runs:      runs,
		defaults:  defaults,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
}

// SetSearchPublisher enables POST /api/v1/searches.
func (h *Handler) SetSearchPublisher(p SearchPublisher) {
	h.searches = p
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status         string       `json:"status"`
	Version        string       `json:"version"`
	StoreConnected bool         `json:"store_connected"`
	Uptime         float64      `json:"uptime_seconds"`
	Engine         engine.Stats `json:"engine"`
}

// Health reports overall status. It answers 200 even when degraded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	storeOK := h.runs.Ping() == nil
	status := "healthy"
	if !storeOK {
		status = "degraded"
	}

	NewResponseWriter(w, r).Success(HealthStatus{
		Status:         status,
		Version:        Version,
		StoreConnected: storeOK,
		Uptime:         time.Since(h.startTime).Seconds(),
		Engine:         h.engine.Stats(),
	})
}

// HealthLive always succeeds while the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady fails with 503 when the store is unreachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.runs.Ping(); err != nil {
		rw.ServiceUnavailable("store unavailable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// CreateAnalysis runs the engine on the posted listings, stores the report
// and returns it with 201.
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large")
			return
		}
		rw.BadRequest("Invalid JSON body")
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	req.Preferences = h.defaults.ApplyDefaults(req.Preferences)

	ctx := r.Context()
	if h.defaults.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.defaults.RunTimeout)
		defer cancel()
	}

	report, err := h.engine.Run(ctx, req)
	if err != nil {
		h.runError(rw, r, err)
		return
	}

	ctx = logging.ContextWithRunID(r.Context(), report.RunID)
	if err := h.runs.SaveRun(ctx, report); err != nil {
		rw.DatabaseError(err)
		return
	}

	logging.Ctx(ctx).Info().
		Int("recommendations", len(report.Recommendations)).
		Int64("duration_ms", report.Summary.DurationMS).
		Msg("analysis created")
	rw.Created(report)
}

// SearchAccepted is the payload of a queued search.
type SearchAccepted struct {
	SearchID string `json:"search_id"`
	RunID    string `json:"run_id"`
}

// SubmitSearch queues a completed search for asynchronous analysis and
// answers 202 with the run id the report will be stored under.
func (h *Handler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.searches == nil {
		rw.ServiceUnavailable("Event processing is not enabled")
		return
	}

	var ev eventprocessor.SearchCompleted
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large")
			return
		}
		rw.BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(&ev); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	if ev.CompletedAt.IsZero() {
		ev.CompletedAt = time.Now().UTC()
	}

	if err := h.searches.PublishSearch(r.Context(), &ev); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("search_id", ev.SearchID).Msg("publish search failed")
		rw.ServiceUnavailable("Could not queue search")
		return
	}

	rw.writeJSON(http.StatusAccepted, APIResponse{
		Success: true,
		Data:    SearchAccepted{SearchID: ev.SearchID, RunID: ev.RunID()},
		Meta:    rw.meta(nil),
	})
}

func (h *Handler) runError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrEmptyListings):
		rw.BadRequest(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "Analysis run timed out")
	case errors.Is(err, context.Canceled):
		rw.ServiceUnavailable("Analysis run cancelled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("analysis run failed")
		rw.InternalError("Analysis run failed")
	}
}

// ListAnalyses lists stored runs, newest first.
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, ok := parseLimit(rw, r, defaultListLimit)
	if !ok {
		return
	}

	// One extra entry tells whether more runs exist.
	runs, err := h.runs.Runs(r.Context(), limit+1)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	hasMore := len(runs) > limit
	if hasMore {
		runs = runs[:limit]
	}
	if runs == nil {
		runs = []store.RunInfo{}
	}
	rw.SuccessWithPagination(runs, &PaginationMeta{Count: len(runs), Limit: limit, HasMore: hasMore})
}

// GetAnalysis returns a stored report.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	report, err := h.runs.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.lookupError(rw, err, store.ErrRunNotFound, "Analysis not found")
		return
	}
	rw.Success(report)
}

// DeleteAnalysis removes a stored run.
func (h *Handler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.runs.DeleteRun(r.Context(), chi.URLParam(r, "runID")); err != nil {
		h.lookupError(rw, err, store.ErrRunNotFound, "Analysis not found")
		return
	}
	rw.Success(map[string]string{"status": "deleted"})
}

// Recommendations returns a run's recommendations in rank order, optionally
// filtered by ?type= and truncated by ?limit=.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var filter models.RecommendationType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := models.ParseRecommendationType(raw)
		if err != nil {
			rw.BadRequest(err.Error())
			return
		}
		filter = t
	}
	limit, ok := parseLimit(rw, r, 0)
	if !ok {
		return
	}

	recs, err := h.runs.Recommendations(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.lookupError(rw, err, store.ErrRunNotFound, "Analysis not found")
		return
	}

	out := make([]models.Recommendation, 0, len(recs))
	for i := range recs {
		if filter == "" || recs[i].Type == filter {
			out = append(out, recs[i])
		}
	}
	total := len(out)
	if limit > 0 && total > limit {
		out = out[:limit]
	}

	rw.SuccessWithPagination(out, &PaginationMeta{
		Total:   int64(total),
		Count:   len(out),
		Limit:   limit,
		HasMore: len(out) < total,
	})
}

// Sellers returns a run's seller analyses by rank.
func (h *Handler) Sellers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sellers, err := h.runs.Sellers(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.lookupError(rw, err, store.ErrRunNotFound, "Analysis not found")
		return
	}
	if sellers == nil {
		sellers = []models.SellerAnalysis{}
	}
	rw.Success(sellers)
}

// CanonicalItem returns the latest stored view of a fingerprint.
func (h *Handler) CanonicalItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	fingerprint, err := url.PathUnescape(chi.URLParam(r, "fingerprint"))
	if err != nil || fingerprint == "" {
		rw.BadRequest("Invalid fingerprint")
		return
	}

	record, err := h.runs.CanonicalItem(r.Context(), fingerprint)
	if err != nil {
		h.lookupError(rw, err, store.ErrCanonicalNotFound, "Canonical item not found")
		return
	}
	rw.Success(record)
}

func (h *Handler) lookupError(rw *ResponseWriter, err, notFound error, message string) {
	if errors.Is(err, notFound) {
		rw.NotFound(message)
		return
	}
	rw.DatabaseError(err)
}

// parseLimit reads ?limit=. It writes a 400 and returns false when the value
// is not an integer in [1, maxListLimit].
func parseLimit(rw *ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxListLimit {
		rw.BadRequest("limit must be an integer between 1 and " + strconv.Itoa(maxListLimit))
		return 0, false
	}
	return limit, true
}
