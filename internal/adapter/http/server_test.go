package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/run-advisory-service/internal/adapter/http"
	"github.com/couchcryptid/run-advisory-service/internal/domain"
)

type mockRunner struct {
	report   domain.Report
	runErr   error
	readyErr error
	runs     int
}

func (m *mockRunner) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockRunner) Run(_ context.Context) (domain.Report, error) {
	m.runs++
	return m.report, m.runErr
}

func newTestServer(runner *mockRunner) *httpadapter.Server {
	return httpadapter.NewServer(":0", runner, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&mockRunner{})
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(&mockRunner{})
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503BeforeFirstSuccessfulRun(t *testing.T) {
	srv := newTestServer(&mockRunner{readyErr: errors.New("no successful run yet")})
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&mockRunner{})
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRunReturns200WithReport(t *testing.T) {
	v := domain.Verdict{Icon: domain.IconModerate, Text: domain.TextCaution}
	runner := &mockRunner{report: domain.Report{
		RunID:   "run-1",
		OK:      true,
		Message: "🟡 Caution | Seoul 06:00 | 30.0°C RH 50% wind 36.0km/h | AQI 40 (Good)",
		Reading: domain.Reading{AQI: domain.Some(40), Category: domain.CategoryGood},
		Verdict: &v,
	}}
	srv := newTestServer(runner)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, 1, runner.runs)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body["run_id"])
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, runner.report.Message, body["message"])
	assert.Equal(t, map[string]any{"icon": "moderate", "text": "Caution"}, body["verdict"])
}

func TestRunReturns502OnFailure(t *testing.T) {
	runner := &mockRunner{
		report: domain.Report{RunID: "run-2", Error: "upstream: weather forecast: status 503"},
		runErr: errors.New("upstream: weather forecast: status 503"),
	}
	srv := newTestServer(runner)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "status 503")
}

func TestRunRejectsGet(t *testing.T) {
	runner := &mockRunner{}
	srv := newTestServer(runner)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/run", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, 0, runner.runs)
}
