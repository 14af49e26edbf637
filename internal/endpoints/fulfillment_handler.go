package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"fulfillment-engine/internal/domain"
	"fulfillment-engine/internal/pipeline"
	"fulfillment-engine/internal/util"
)

const maxRequestBody = 64 * 1024

// FulfillmentPayload is the inbound delivery request body.
type FulfillmentPayload struct {
	RequestID      string `json:"requestId"`
	RecordID       string `json:"recordId"`
	RecipientEmail string `json:"recipientEmail"`
}

// FulfillmentResult is the success value returned to the caller.
type FulfillmentResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

type Fulfillment struct {
	Response APIResponse
	logger   *util.ServiceLogger
	pipe     *pipeline.Pipeline
}

func (f *Fulfillment) Init(pipe *pipeline.Pipeline, webSlogger *util.ServiceLogger) {
	f.pipe = pipe
	f.logger = webSlogger
}

// RunFulfillmentHandler accepts one delivery request, runs it through the
// pipeline and maps the decided outcome onto an HTTP response.
func (f *Fulfillment) RunFulfillmentHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		f.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only POST requests are supported", http.StatusMethodNotAllowed)
		f.Response.WriteErrorResponseWithStatusCode(w, errors.New("method Not Allowed. Only POST requests are supported"), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		f.logger.LogEvent(util.LOG_LEVEL_ERROR, "While reading request body. Err - ", err)
		f.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}

	var payload FulfillmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		f.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while unmarshalling JSON Body. Err -", err)
		f.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if payload.RecordID == "" {
		f.logger.LogEvent(util.LOG_LEVEL_WARN, "Fulfillment request without recordId")
		f.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if payload.RequestID == "" {
		payload.RequestID = uuid.NewString()
	}

	req := domain.FulfillmentRequest{
		RequestID:      payload.RequestID,
		RecipientEmail: payload.RecipientEmail,
		ProductRef:     payload.RecordID,
		RawPayload:     body,
	}

	result := f.pipe.Run(r.Context(), req)
	writeOutcome(f.Response, w, result)
}

// writeOutcome maps a pipeline result to the response envelope:
// Success -> 200, NotFound -> 404, InvalidData -> 400, everything else -> 500.
func writeOutcome(resp APIResponse, w http.ResponseWriter, result pipeline.Result) {
	if result.Outcome.Success {
		resp.WriteResultResponse(w, FulfillmentResult{Success: true, MessageID: result.Outcome.MessageID})
		return
	}

	sentinel, status := outcomeError(result.Outcome.Kind)
	err := sentinel
	if result.Outcome.Detail != "" {
		err = fmt.Errorf("%w: %s", sentinel, result.Outcome.Detail)
	}
	resp.WriteErrorResponseWithStatusCode(w, err, status)
}
