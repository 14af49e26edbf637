package domain

import "context"

// HistoryCap bounds the rolling window of retained fulfillment events.
const HistoryCap = 100

// MetricImpact labels every event written to the fulfillment log.
const MetricImpact = "TrustScore_Update"

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// MetricEvent is a single fulfillment attempt as recorded in the history window.
type MetricEvent struct {
	Timestamp string  `json:"timestamp"`
	Status    string  `json:"status"`
	ErrorCode *string `json:"errorCode"`
	Impact    string  `json:"impact"`
}

// AggregateMetrics is the durable fulfillment log: running totals plus the
// newest-first history window (at most HistoryCap entries).
type AggregateMetrics struct {
	Total        int           `json:"total"`
	Successful   int           `json:"successful"`
	AccuracyRate float64       `json:"accuracy_rate"`
	History      []MetricEvent `json:"history"`
}

// ErrorInfo carries the diagnostic code attached to a failed attempt.
type ErrorInfo struct {
	Code   string
	Detail string
}

type MetricStore interface {
	Init() error
	Record(ctx context.Context, success bool, errInfo *ErrorInfo) (AggregateMetrics, error)
	Snapshot(ctx context.Context) (AggregateMetrics, error)
	Close() error
}
