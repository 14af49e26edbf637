package repository

import (
	"context"
	"sync"
	"time"

	"fulfillment-engine/internal/domain"
)

// MemoryStore keeps the fulfillment log in process memory. It backs tests
// and deployments that can afford to lose the log on restart.
type MemoryStore struct {
	mu  sync.Mutex
	agg domain.AggregateMetrics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{agg: domain.AggregateMetrics{History: []domain.MetricEvent{}}}
}

func (m *MemoryStore) Init() error {
	return nil
}

func (m *MemoryStore) Record(ctx context.Context, success bool, errInfo *domain.ErrorInfo) (domain.AggregateMetrics, error) {
	if err := ctx.Err(); err != nil {
		return domain.AggregateMetrics{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	event := domain.MetricEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    domain.StatusSuccess,
		Impact:    domain.MetricImpact,
	}
	if !success {
		event.Status = domain.StatusFailed
		if errInfo != nil {
			code := errInfo.Code
			event.ErrorCode = &code
		}
	}

	m.agg.Total++
	if success {
		m.agg.Successful++
	}
	m.agg.AccuracyRate = float64(m.agg.Successful) / float64(m.agg.Total) * 100

	m.agg.History = append([]domain.MetricEvent{event}, m.agg.History...)
	if len(m.agg.History) > domain.HistoryCap {
		m.agg.History = m.agg.History[:domain.HistoryCap]
	}

	return m.copyLocked(), nil
}

func (m *MemoryStore) Snapshot(ctx context.Context) (domain.AggregateMetrics, error) {
	if err := ctx.Err(); err != nil {
		return domain.AggregateMetrics{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyLocked(), nil
}

func (m *MemoryStore) copyLocked() domain.AggregateMetrics {
	out := m.agg
	out.History = make([]domain.MetricEvent, len(m.agg.History))
	copy(out.History, m.agg.History)
	return out
}

func (m *MemoryStore) Close() error {
	return nil
}
