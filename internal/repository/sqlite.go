package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"fulfillment-engine/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// metricTag keys the single aggregate row. One row per metric family;
// the fulfillment log is the only family today.
const metricTag = "fulfillment_accuracy"

// SQLiteStore persists the fulfillment log as a single row: running totals
// plus the history window serialized as JSON. Every update replaces the
// whole record, and a mutex serializes the load-mutate-persist cycle so
// two concurrent writers can never lose an increment.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{dbPath: path}
}

func (s *SQLiteStore) Init() error {
	var err error

	s.db, err = sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	if err = s.db.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS fulfillment_metrics (
		tag TEXT PRIMARY KEY,
		total INTEGER NOT NULL,
		successful INTEGER NOT NULL,
		accuracy_rate REAL NOT NULL,
		history TEXT NOT NULL
	);`

	_, err = s.db.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}

	log.Println("SQLiteStore initialized.")
	return nil
}

// load reads the current aggregate. A missing row or an unparsable history
// blob self-heals to the zero state rather than erroring; only the
// persistence layer itself being unavailable is a failure.
func (s *SQLiteStore) load(ctx context.Context) (domain.AggregateMetrics, error) {
	var (
		agg         domain.AggregateMetrics
		historyJSON string
	)

	row := s.db.QueryRowContext(ctx,
		"SELECT total, successful, accuracy_rate, history FROM fulfillment_metrics WHERE tag = ?", metricTag)

	err := row.Scan(&agg.Total, &agg.Successful, &agg.AccuracyRate, &historyJSON)
	if err == sql.ErrNoRows {
		return domain.AggregateMetrics{History: []domain.MetricEvent{}}, nil
	}
	if err != nil {
		// An unreachable store is a real failure; only absent or unparsable
		// state self-heals.
		return domain.AggregateMetrics{}, fmt.Errorf("error loading metrics: %w", err)
	}

	if err := json.Unmarshal([]byte(historyJSON), &agg.History); err != nil {
		log.Printf("Corrupt history blob, starting fresh: %v", err)
		agg.History = []domain.MetricEvent{}
	}
	return agg, nil
}

func (s *SQLiteStore) Record(ctx context.Context, success bool, errInfo *domain.ErrorInfo) (domain.AggregateMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, err := s.load(ctx)
	if err != nil {
		return domain.AggregateMetrics{}, err
	}

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

	agg.Total++
	if success {
		agg.Successful++
	}
	agg.AccuracyRate = float64(agg.Successful) / float64(agg.Total) * 100

	agg.History = append([]domain.MetricEvent{event}, agg.History...)
	if len(agg.History) > domain.HistoryCap {
		agg.History = agg.History[:domain.HistoryCap]
	}

	historyJSON, err := json.Marshal(agg.History)
	if err != nil {
		return domain.AggregateMetrics{}, fmt.Errorf("error encoding history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fulfillment_metrics(tag, total, successful, accuracy_rate, history)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(tag) DO UPDATE SET
			total = excluded.total,
			successful = excluded.successful,
			accuracy_rate = excluded.accuracy_rate,
			history = excluded.history`,
		metricTag, agg.Total, agg.Successful, agg.AccuracyRate, string(historyJSON))
	if err != nil {
		return domain.AggregateMetrics{}, fmt.Errorf("error persisting metrics: %w", err)
	}

	return agg, nil
}

func (s *SQLiteStore) Snapshot(ctx context.Context) (domain.AggregateMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
