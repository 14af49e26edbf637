package endpoints

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fulfillment-engine/internal/reader"
	"fulfillment-engine/internal/util"
)

type Metrics struct {
	Response APIResponse
	logger   *util.ServiceLogger
	reader   *reader.Reader
}

func (m *Metrics) Init(rd *reader.Reader, webSlogger *util.ServiceLogger) {
	m.reader = rd
	m.logger = webSlogger
}

// GetMetricsHandler serves the accuracy overview for dashboards and health
// checks. Read-only; the service key check happens in router middleware.
func (m *Metrics) GetMetricsHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		m.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only GET requests are supported", http.StatusMethodNotAllowed)
		m.Response.WriteErrorResponseWithStatusCode(w, errors.New("method Not Allowed. Only GET requests are supported"), http.StatusMethodNotAllowed)
		return
	}

	overview, err := m.reader.Current(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.LogEvent(util.LOG_LEVEL_WARN, "Context cancelled")
			m.Response.WriteErrorResponseWithStatusCode(w, ErrRequestCancelled, http.StatusRequestTimeout)
			return
		}
		m.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while reading metrics overview. Err - ", err)
		m.Response.WriteErrorResponseWithStatusCode(w, fmt.Errorf("%w: %v", ErrStoreFailure, err), http.StatusInternalServerError)
		return
	}

	m.Response.WriteResultResponse(w, overview)
}
