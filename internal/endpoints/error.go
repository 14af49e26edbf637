package endpoints

import (
	"errors"
	"net/http"

	"fulfillment-engine/internal/domain"
)

const (
	API_SUCCESS      = iota + 501000 // 501000
	API_FAILURE                      // 501001 - Generic API failure
	API_UNAUTHORIZED                 // 501002 - Authentication/Authorization failure
)

const (
	RECORD_NOT_FOUND     = iota + 201 // 201 - Requested product record absent
	INVALID_PRODUCT_DATA              // 202 - Resolved record missing mandatory fields
	DELIVERY_FAILED                   // 203 - Mailer rejected or errored
	STORE_FAILURE                     // 204 - Fulfillment log persistence unavailable
	INVALID_REQUEST_BODY              // 205 - Error parsing request body
	REQUEST_CANCELLED                 // 206 - Request was cancelled by client or server timeout
)

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrInvalidProduct     = errors.New("resolved record is missing mandatory fields")
	ErrDeliveryFailed     = errors.New("delivery failed")
	ErrStoreFailure       = errors.New("fulfillment metrics store unavailable")
	ErrInvalidRequestBody = errors.New("invalid request body format or missing fields")
	ErrUnauthorized       = errors.New("missing or invalid service credentials")
	ErrRequestCancelled   = errors.New("request cancelled by client or server timeout")
)

func GetErrorCode(err error) int {
	if err == nil {
		return API_SUCCESS
	}

	switch {
	case errors.Is(err, ErrRecordNotFound):
		return RECORD_NOT_FOUND
	case errors.Is(err, ErrInvalidProduct):
		return INVALID_PRODUCT_DATA
	case errors.Is(err, ErrDeliveryFailed):
		return DELIVERY_FAILED
	case errors.Is(err, ErrStoreFailure):
		return STORE_FAILURE
	case errors.Is(err, ErrInvalidRequestBody):
		return INVALID_REQUEST_BODY
	case errors.Is(err, ErrRequestCancelled):
		return REQUEST_CANCELLED
	case errors.Is(err, ErrUnauthorized):
		return API_UNAUTHORIZED
	default:
		return API_FAILURE // Default for any unhandled error
	}
}

// outcomeError maps a failed delivery outcome to its sentinel and HTTP status.
func outcomeError(kind domain.ErrorKind) (error, int) {
	switch kind {
	case domain.ErrKindNotFound:
		return ErrRecordNotFound, http.StatusNotFound
	case domain.ErrKindInvalidData:
		return ErrInvalidProduct, http.StatusBadRequest
	case domain.ErrKindStoreFailure:
		return ErrStoreFailure, http.StatusInternalServerError
	default:
		return ErrDeliveryFailed, http.StatusInternalServerError
	}
}
