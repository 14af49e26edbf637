package endpoints

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fulfillment-engine/internal/domain"
	"fulfillment-engine/internal/pipeline"
	"fulfillment-engine/internal/util"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body,
// optionally prefixed with "sha256=".
const SignatureHeader = "X-Webhook-Signature"

type Webhook struct {
	Response APIResponse
	logger   *util.ServiceLogger
	pipe     *pipeline.Pipeline
	secret   string
}

func (h *Webhook) Init(pipe *pipeline.Pipeline, secret string, webSlogger *util.ServiceLogger) {
	h.pipe = pipe
	h.secret = secret
	h.logger = webSlogger
}

// WebhookHandler runs signed store webhooks through the same pipeline as
// the direct endpoint. An invalid signature is rejected before the pipeline,
// so it never lands in the fulfillment log.
func (h *Webhook) WebhookHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		h.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.LogEvent(util.LOG_LEVEL_ERROR, "While reading webhook body. Err - ", err)
		h.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if !ValidateSignature(r.Header.Get(SignatureHeader), body, h.secret) {
		h.logger.LogEvent(util.LOG_LEVEL_WARN, "Webhook with missing or invalid signature rejected")
		h.Response.WriteErrorResponseWithStatusCode(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	var payload FulfillmentPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.RecordID == "" {
		h.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while unmarshalling webhook body. Err -", err)
		h.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidRequestBody, http.StatusBadRequest)
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

	result := h.pipe.Run(r.Context(), req)
	writeOutcome(h.Response, w, result)
}

// ValidateSignature checks the hex HMAC-SHA256 of payload against the
// provided header value in constant time.
func ValidateSignature(signature string, payload []byte, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	calc := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(calc))
}
