package reader

import (
	"context"

	"fulfillment-engine/internal/domain"
)

// Status bands for the accuracy overview.
const (
	StatusNoData = "NO_DATA"
	StatusGreen  = "GREEN"
	StatusAmber  = "AMBER"
	StatusRed    = "RED"
)

// Overview is the operational projection of the fulfillment log.
type Overview struct {
	AccuracyRate float64 `json:"accuracy_rate"`
	Total        int     `json:"total"`
	Status       string  `json:"status"`
}

// Reader is a read-only view over the metric store; it exposes no mutation.
type Reader struct {
	store domain.MetricStore
}

func New(store domain.MetricStore) *Reader {
	return &Reader{store: store}
}

func (r *Reader) Current(ctx context.Context) (Overview, error) {
	agg, err := r.store.Snapshot(ctx)
	if err != nil {
		return Overview{}, err
	}

	return Overview{
		AccuracyRate: agg.AccuracyRate,
		Total:        agg.Total,
		Status:       statusFor(agg),
	}, nil
}

func statusFor(agg domain.AggregateMetrics) string {
	switch {
	case agg.Total == 0:
		return StatusNoData
	case agg.AccuracyRate >= 95:
		return StatusGreen
	case agg.AccuracyRate >= 80:
		return StatusAmber
	default:
		return StatusRed
	}
}
