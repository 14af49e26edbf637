package domain

import (
	"context"
	"errors"
)

// FulfillmentRequest describes one delivery attempt. Immutable once built.
type FulfillmentRequest struct {
	RequestID      string
	RecipientEmail string
	ProductRef     string
	RawPayload     []byte
}

// Product is the resolved catalog record for a purchased digital product.
type Product struct {
	Name             string
	Type             string
	PriceZAR         float64
	Description      string
	ShortDescription string
	DeliveryFormat   string
	DownloadLink     string
	OrderID          string
	DeliveredTo      string
	GrossRevenueZAR  float64
	IsHighValue      bool
	SummaryAI        string
	MarketingAngleAI string
}

type ErrorKind string

const (
	ErrKindNotFound       ErrorKind = "NotFound"
	ErrKindInvalidData    ErrorKind = "InvalidData"
	ErrKindDeliveryFailed ErrorKind = "DeliveryFailed"
	ErrKindStoreFailure   ErrorKind = "StoreFailure"
	ErrKindUnauthorized   ErrorKind = "Unauthorized"
)

// DeliveryOutcome is the decided result of one fulfillment attempt.
// Either MessageID is set (success) or Kind/Detail are (failure).
type DeliveryOutcome struct {
	Success   bool
	MessageID string
	Kind      ErrorKind
	Detail    string
}

// ErrRecordNotFound signals the catalog has no record for the requested ref.
var ErrRecordNotFound = errors.New("product record not found")

type ProductResolver interface {
	Resolve(ctx context.Context, productRef string) (Product, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) (messageID string, err error)
}

type ErrorReporter interface {
	Report(ctx context.Context, stage string, err error)
}
