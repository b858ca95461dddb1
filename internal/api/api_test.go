// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/cratedigger/internal/config"
	"github.com/tomtom215/cratedigger/internal/engine"
	"github.com/tomtom215/cratedigger/internal/eventprocessor"
	"github.com/tomtom215/cratedigger/internal/models"
	"github.com/tomtom215/cratedigger/internal/store"
)

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func newTestRouter(t *testing.T, eng Analyzer, mwConfig *ChiMiddlewareConfig) http.Handler {
	t.Helper()

	s, err := store.Open(&store.Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if eng == nil {
		e, err := engine.New(nil, zerolog.Nop())
		if err != nil {
			t.Fatalf("engine.New: %v", err)
		}
		eng = e
	}
	if mwConfig == nil {
		mwConfig = DefaultChiMiddlewareConfig()
		mwConfig.RateLimitDisabled = true
	}

	h := NewHandler(eng, s, config.DefaultConfig().Analysis, zerolog.Nop())
	return NewRouter(h, mwConfig, zerolog.Nop()).Setup()
}

func testListing(p models.Platform, id, title, artist, price, seller string, wanted bool) models.Listing {
	return models.Listing{
		Platform:   p,
		ExternalID: id,
		Title:      title,
		Artist:     artist,
		Price:      decimal.RequireFromString(price),
		SellerID:   seller,
		Location:   "United States",
		InWantlist: wanted,
	}
}

func analysisBody(t *testing.T, id string) []byte {
	t.Helper()
	req := engine.Request{
		ID: id,
		Listings: []models.Listing{
			testListing(models.PlatformDiscogs, "1", "Abbey Road", "The Beatles", "25.99", "alpha", true),
			testListing(models.PlatformEbay, "2", "ABBEY ROAD", "Beatles, The", "26.50", "bravo", false),
			testListing(models.PlatformDiscogs, "3", "Kind of Blue", "Miles Davis", "30.00", "alpha", true),
			testListing(models.PlatformDiscogs, "4", "Blue Train", "John Coltrane", "22.00", "charlie", false),
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp testResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func createAnalysis(t *testing.T, h http.Handler, id string) engine.Report {
	t.Helper()
	rec, resp := do(t, h, http.MethodPost, "/api/v1/analyses", analysisBody(t, id))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var report engine.Report
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	return report
}

func TestCreateAnalysis(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)
	report := createAnalysis(t, h, "run-api")

	if report.RunID != "run-api" {
		t.Errorf("RunID = %q, want run-api", report.RunID)
	}
	if report.Summary.Listings != 4 {
		t.Errorf("Summary.Listings = %d, want 4", report.Summary.Listings)
	}
	if report.Summary.CanonicalItems != 3 {
		t.Errorf("Summary.CanonicalItems = %d, want 3", report.Summary.CanonicalItems)
	}
	if report.Preferences.Location != "worldwide" {
		t.Errorf("Preferences.Location = %q, want default worldwide", report.Preferences.Location)
	}
	if report.Preferences.Currency != "USD" {
		t.Errorf("Preferences.Currency = %q, want default USD", report.Preferences.Currency)
	}
}

func TestCreateAnalysis_BadRequests(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{"listings": [`, ErrCodeBadRequest},
		{"no listings", `{"listings": []}`, ErrCodeValidationFailed},
		{"missing listings", `{}`, ErrCodeValidationFailed},
		{"bad platform", `{"listings": [{"platform": "bandcamp", "external_id": "1", "seller_id": "s", "price": "1.00"}]}`, ErrCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, resp := do(t, h, http.MethodPost, "/api/v1/analyses", []byte(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp.Success || resp.Error == nil {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestValidationErrorDetails(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)
	body := `{"listings": [{"platform": "discogs", "external_id": "1", "seller_id": "s", "price": "-1"}]}`
	_, resp := do(t, h, http.MethodPost, "/api/v1/analyses", []byte(body))
	if resp.Error == nil {
		t.Fatal("expected error")
	}

	details, ok := resp.Error.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("details = %T, want object", resp.Error.Details)
	}
	fields, ok := details["fields"].([]interface{})
	if !ok || len(fields) != 1 {
		t.Fatalf("fields = %v, want one entry", details["fields"])
	}
	field, _ := fields[0].(map[string]interface{})
	if field["field"] != "listings[0].price" {
		t.Errorf("field = %v, want listings[0].price", field["field"])
	}
}

func TestGetAnalysisRoutes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)
	report := createAnalysis(t, h, "run-get")

	rec, resp := do(t, h, http.MethodGet, "/api/v1/analyses/run-get", nil)
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("GET report status = %d", rec.Code)
	}
	var got engine.Report
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != report.RunID || len(got.Recommendations) != len(report.Recommendations) {
		t.Errorf("stored report differs: %+v", got.Summary)
	}

	rec, resp = do(t, h, http.MethodGet, "/api/v1/analyses/run-get/sellers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET sellers status = %d", rec.Code)
	}
	var sellers []models.SellerAnalysis
	if err := json.Unmarshal(resp.Data, &sellers); err != nil {
		t.Fatalf("decode sellers: %v", err)
	}
	if len(sellers) != 3 {
		t.Fatalf("sellers = %d, want 3", len(sellers))
	}
	for i := range sellers {
		if sellers[i].Rank != i+1 {
			t.Errorf("sellers[%d].Rank = %d, want %d", i, sellers[i].Rank, i+1)
		}
	}

	fp := report.CanonicalItems[0].Fingerprint
	rec, resp = do(t, h, http.MethodGet, "/api/v1/canonical-items/"+url.PathEscape(fp), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET canonical status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var record store.CanonicalRecord
	if err := json.Unmarshal(resp.Data, &record); err != nil {
		t.Fatalf("decode canonical: %v", err)
	}
	if record.Item.Fingerprint != fp || record.RunID != "run-get" {
		t.Errorf("canonical = %+v, want fingerprint %q from run-get", record, fp)
	}

	rec, resp = do(t, h, http.MethodGet, "/api/v1/analyses", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET list status = %d", rec.Code)
	}
	if resp.Meta == nil || resp.Meta.Pagination == nil || resp.Meta.Pagination.Count != 1 {
		t.Errorf("list pagination = %+v, want count 1", resp.Meta)
	}
}

func TestRecommendationsFilter(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)
	report := createAnalysis(t, h, "run-recs")
	if len(report.Recommendations) < 2 {
		t.Fatalf("need at least 2 recommendations, got %d", len(report.Recommendations))
	}

	rec, resp := do(t, h, http.MethodGet, "/api/v1/analyses/run-recs/recommendations?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var recs []models.Recommendation
	if err := json.Unmarshal(resp.Data, &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != report.Recommendations[0].ID {
		t.Errorf("limit=1 returned %d recs, want the top one", len(recs))
	}
	if p := resp.Meta.Pagination; p == nil || !p.HasMore || p.Total != int64(len(report.Recommendations)) {
		t.Errorf("pagination = %+v", resp.Meta.Pagination)
	}

	want := 0
	for i := range report.Recommendations {
		if report.Recommendations[i].Type == models.RecMultiItem {
			want++
		}
	}
	_, resp = do(t, h, http.MethodGet, "/api/v1/analyses/run-recs/recommendations?type=multi_item", nil)
	recs = nil
	if err := json.Unmarshal(resp.Data, &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != want {
		t.Errorf("type filter returned %d, want %d", len(recs), want)
	}
	for i := range recs {
		if recs[i].Type != models.RecMultiItem {
			t.Errorf("recs[%d].Type = %s", i, recs[i].Type)
		}
	}
}

func TestRecommendations_BadQuery(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)
	createAnalysis(t, h, "run-q")

	for _, q := range []string{"type=cheapest", "limit=0", "limit=abc", "limit=100000"} {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/analyses/run-q/recommendations?"+q, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)

	for _, target := range []string{
		"/api/v1/analyses/missing",
		"/api/v1/analyses/missing/recommendations",
		"/api/v1/analyses/missing/sellers",
		"/api/v1/canonical-items/nothing",
		"/api/v1/nope",
	} {
		rec, resp := do(t, h, http.MethodGet, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
			continue
		}
		if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
			t.Errorf("%s: error = %+v", target, resp.Error)
		}
	}
}

func TestDeleteAnalysis(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)
	createAnalysis(t, h, "run-del")

	if rec, _ := do(t, h, http.MethodDelete, "/api/v1/analyses/run-del", nil); rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/analyses/run-del", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodDelete, "/api/v1/analyses/run-del", nil); rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE = %d, want 404", rec.Code)
	}
}

type stubAnalyzer struct {
	err error
}

func (s stubAnalyzer) Run(context.Context, engine.Request) (*engine.Report, error) {
	return nil, s.err
}

func (s stubAnalyzer) Stats() engine.Stats { return engine.Stats{} }

func TestCreateAnalysis_RunErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeTimeout},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"empty", engine.ErrEmptyListings, http.StatusBadRequest, ErrCodeBadRequest},
		{"other", errTest, http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestRouter(t, stubAnalyzer{err: tt.err}, nil)
			rec, resp := do(t, h, http.MethodPost, "/api/v1/analyses", analysisBody(t, ""))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)

	rec, resp := do(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status HealthStatus
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != "healthy" || !status.StoreConnected {
		t.Errorf("health = %+v", status)
	}

	for _, target := range []string{"/health/live", "/health/ready"} {
		if rec, _ := do(t, h, http.MethodGet, target, nil); rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", target, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)
	createAnalysis(t, h, "run-metrics")

	rec, _ := do(t, h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cratedigger_http_requests_total") {
		t.Error("metrics output missing cratedigger_http_requests_total")
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Errorf("X-Request-Id = %q, want req-123", got)
	}
	var resp testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Meta == nil || resp.Meta.RequestID != "req-123" {
		t.Errorf("meta.request_id = %+v, want req-123", resp.Meta)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 1
	h := newTestRouter(t, nil, cfg)

	if rec, _ := do(t, h, http.MethodGet, "/api/v1/analyses", nil); rec.Code != http.StatusOK {
		t.Fatalf("first request = %d, want 200", rec.Code)
	}
	rec, resp := do(t, h, http.MethodGet, "/api/v1/analyses", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestMiddlewareConfigFromServer(t *testing.T) {
	t.Parallel()

	sc := config.DefaultConfig().Server
	sc.CORSOrigins = []string{"https://example.com"}
	sc.RateLimitRequests = 7

	cfg := MiddlewareConfigFromServer(&sc)
	if cfg.RateLimitRequests != 7 || len(cfg.CORSAllowedOrigins) != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	sc.CORSOrigins[0] = "changed"
	if cfg.CORSAllowedOrigins[0] != "https://example.com" {
		t.Error("CORS origins share backing array with server config")
	}
}

type recordingPublisher struct {
	got []*eventprocessor.SearchCompleted
	err error
}

func (p *recordingPublisher) PublishSearch(_ context.Context, ev *eventprocessor.SearchCompleted) error {
	p.got = append(p.got, ev)
	return p.err
}

func newSearchRouter(t *testing.T, pub SearchPublisher) http.Handler {
	t.Helper()
	s, err := store.Open(&store.Config{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	h := NewHandler(stubAnalyzer{}, s, config.DefaultConfig().Analysis, zerolog.Nop())
	if pub != nil {
		h.SetSearchPublisher(pub)
	}
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitDisabled = true
	return NewRouter(h, mw, zerolog.Nop()).Setup()
}

func TestSubmitSearch(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	h := newSearchRouter(t, pub)

	ev := eventprocessor.SearchCompleted{
		SearchID: "search-9",
		Listings: []models.Listing{
			testListing(models.PlatformDiscogs, "1", "Abbey Road", "The Beatles", "25.99", "alpha", true),
		},
	}
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rec, resp := do(t, h, http.MethodPost, "/api/v1/searches", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body %s)", rec.Code, rec.Body.String())
	}
	var accepted SearchAccepted
	if err := json.Unmarshal(resp.Data, &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted.SearchID != "search-9" || accepted.RunID != ev.RunID() {
		t.Errorf("accepted = %+v, want run id %s", accepted, ev.RunID())
	}
	if len(pub.got) != 1 || pub.got[0].CompletedAt.IsZero() {
		t.Errorf("published = %+v, want one event with a completion time", pub.got)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/searches", []byte(`{"listings": []}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid search status = %d, want 400", rec.Code)
	}
}

func TestSubmitSearch_Unavailable(t *testing.T) {
	t.Parallel()

	body := []byte(`{"search_id": "s", "listings": [{"platform": "discogs", "external_id": "1", "seller_id": "a", "price": "1.00"}]}`)

	rec, _ := do(t, newSearchRouter(t, nil), http.MethodPost, "/api/v1/searches", body)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("without publisher status = %d, want 503", rec.Code)
	}

	failing := &recordingPublisher{err: errTest}
	rec, _ = do(t, newSearchRouter(t, failing), http.MethodPost, "/api/v1/searches", body)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("failing publisher status = %d, want 503", rec.Code)
	}
}
