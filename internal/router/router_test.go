package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fulfillment-engine/internal/domain"
	"fulfillment-engine/internal/pipeline"
	"fulfillment-engine/internal/reader"
	"fulfillment-engine/internal/repository"
	"fulfillment-engine/internal/util"
)

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, productRef string) (domain.Product, error) {
	return domain.Product{Name: "Sample Product", DeliveredTo: "user@example.com"}, nil
}

type stubMailer struct{}

func (stubMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	return "abc123", nil
}

type stubReporter struct{}

func (stubReporter) Report(ctx context.Context, stage string, err error) {}

func testDeps(store domain.MetricStore) Deps {
	logger := &util.ServiceLogger{}
	return Deps{
		Pipeline:      pipeline.New(stubResolver{}, stubMailer{}, store, stubReporter{}, logger, time.Second),
		Reader:        reader.New(store),
		Logger:        logger,
		ServiceKey:    "svc_key",
		WebhookSecret: "wh_secret",
	}
}

func TestRouter_Status(t *testing.T) {
	r := NewRouter(testDeps(repository.NewMemoryStore()))

	req, _ := http.NewRequest("GET", "/api/status", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	json.Unmarshal(rr.Body.Bytes(), &body)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_ServiceKeyAuth(t *testing.T) {
	store := repository.NewMemoryStore()
	r := NewRouter(testDeps(store))

	// case 1: missing key is rejected.
	req, _ := http.NewRequest("GET", "/api/metrics", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// case 2: wrong key is rejected.
	req, _ = http.NewRequest("GET", "/api/metrics", nil)
	req.Header.Set(ServiceKeyHeader, "wrong")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// case 3: valid key passes through.
	req, _ = http.NewRequest("GET", "/api/metrics", nil)
	req.Header.Set(ServiceKeyHeader, "svc_key")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// case 4: rejected fulfillment calls never reach the log.
	payload, _ := json.Marshal(map[string]string{"recordId": "rec123"})
	req, _ = http.NewRequest("POST", "/fulfillment/run", bytes.NewBuffer(payload))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	snap, _ := store.Snapshot(context.Background())
	assert.Equal(t, 0, snap.Total, "Unauthorized requests must not be recorded")

	// case 5: an authorized fulfillment call runs the pipeline end to end.
	req, _ = http.NewRequest("POST", "/fulfillment/run", bytes.NewBuffer(payload))
	req.Header.Set(ServiceKeyHeader, "svc_key")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	snap, _ = store.Snapshot(context.Background())
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, 1, snap.Successful)
}

func TestRouter_PrometheusEndpoint(t *testing.T) {
	r := NewRouter(testDeps(repository.NewMemoryStore()))

	req, _ := http.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	// Exposition endpoint is public and serves text format.
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
}
