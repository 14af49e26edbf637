package report

import (
	"context"

	"fulfillment-engine/internal/domain"
	"fulfillment-engine/internal/metrics"
	"fulfillment-engine/internal/util"
)

// LogReporter surfaces secondary faults (failed log writes, collaborator
// panics) through the service log and a Prometheus counter. It never blocks
// or fails the request that triggered it.
type LogReporter struct {
	logger *util.ServiceLogger
}

func NewLogReporter(logger *util.ServiceLogger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(ctx context.Context, stage string, err error) {
	if err == nil {
		return
	}
	metrics.ReportedErrorsTotal.Inc()
	r.logger.LogEvent(util.LOG_LEVEL_ERROR, "Reported fault at stage", stage, "Err -", err)
}

var _ domain.ErrorReporter = (*LogReporter)(nil)
