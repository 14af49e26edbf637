package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fulfillment-engine/internal/domain"
	"fulfillment-engine/internal/metrics"
	"fulfillment-engine/internal/util"
)

// DefaultCollaboratorTimeout bounds each resolver and mailer call so the
// pipeline can never hang on an external collaborator.
const DefaultCollaboratorTimeout = 10 * time.Second

const detailMaxLines = 5

// Result is what one pipeline run hands back to the transport layer.
// Degraded is set when the fulfillment log write failed after the delivery
// outcome was already decided; the outcome itself is never overridden.
type Result struct {
	Outcome  domain.DeliveryOutcome
	Metrics  domain.AggregateMetrics
	Degraded bool
}

// Pipeline walks one fulfillment request through
// Resolve -> Validate -> Compose -> Deliver -> Record.
type Pipeline struct {
	resolver domain.ProductResolver
	mailer   domain.Mailer
	store    domain.MetricStore
	reporter domain.ErrorReporter
	logger   *util.ServiceLogger
	timeout  time.Duration
}

func New(resolver domain.ProductResolver, mailer domain.Mailer, store domain.MetricStore,
	reporter domain.ErrorReporter, logger *util.ServiceLogger, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultCollaboratorTimeout
	}
	return &Pipeline{
		resolver: resolver,
		mailer:   mailer,
		store:    store,
		reporter: reporter,
		logger:   logger,
		timeout:  timeout,
	}
}

// Run executes the pipeline for one request. Exactly one metric event is
// recorded per call, regardless of where the attempt failed.
func (p *Pipeline) Run(ctx context.Context, req domain.FulfillmentRequest) Result {
	outcome := p.deliver(ctx, req)

	metrics.FulfillmentsTotal.Inc()
	if !outcome.Success {
		metrics.FulfillmentsFailedTotal.WithLabelValues(string(outcome.Kind)).Inc()
	}

	result := Result{Outcome: outcome}
	result.Metrics, result.Degraded = p.record(ctx, req, outcome)
	return result
}

// deliver decides the outcome. Failures here are business outcomes, not
// process faults; a panic in a collaborator is downgraded to a failed
// delivery and reported.
func (p *Pipeline) deliver(ctx context.Context, req domain.FulfillmentRequest) (outcome domain.DeliveryOutcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic during fulfillment: %v", r)
			p.reporter.Report(ctx, "deliver", err)
			outcome = failure(domain.ErrKindDeliveryFailed, err)
		}
	}()

	product, err := p.resolve(ctx, req.ProductRef)
	if err != nil {
		// Missing record, resolver fault or timeout: no email goes out.
		p.logger.LogEvent(util.LOG_LEVEL_WARN, "Resolve failed for", req.ProductRef, "Err -", err)
		return failure(domain.ErrKindNotFound, err)
	}

	recipient := req.RecipientEmail
	if recipient == "" {
		recipient = product.DeliveredTo
	}
	if recipient == "" || product.Name == "" {
		p.logger.LogEvent(util.LOG_LEVEL_WARN, "Resolved record is missing mandatory fields for", req.ProductRef)
		return failure(domain.ErrKindInvalidData,
			fmt.Errorf("record %s is missing recipient or product name", req.ProductRef))
	}

	subject, html, err := ComposeEmail(product)
	if err != nil {
		return failure(domain.ErrKindInvalidData, err)
	}

	messageID, err := p.send(ctx, recipient, subject, html)
	if err != nil {
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Mailer rejected delivery for", req.ProductRef, "Err -", err)
		return failure(domain.ErrKindDeliveryFailed, err)
	}

	p.logger.LogEvent(util.LOG_LEVEL_INFO, "Email sent with message ID", messageID)
	return domain.DeliveryOutcome{Success: true, MessageID: messageID}
}

func (p *Pipeline) resolve(ctx context.Context, productRef string) (domain.Product, error) {
	rctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.resolver.Resolve(rctx, productRef)
}

func (p *Pipeline) send(ctx context.Context, to, subject, html string) (string, error) {
	mctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.mailer.Send(mctx, to, subject, html)
}

// record appends exactly one event to the fulfillment log. The write runs on
// its own deadline so a cancelled request still gets counted, and a failing
// write is reported without changing the decided outcome.
func (p *Pipeline) record(ctx context.Context, req domain.FulfillmentRequest, outcome domain.DeliveryOutcome) (domain.AggregateMetrics, bool) {
	var errInfo *domain.ErrorInfo
	if !outcome.Success {
		errInfo = &domain.ErrorInfo{Code: string(outcome.Kind), Detail: outcome.Detail}
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	agg, err := p.store.Record(sctx, outcome.Success, errInfo)
	if err != nil {
		metrics.MetricRecordFailuresTotal.Inc()
		p.reporter.Report(ctx, "record", err)
		p.logger.LogEvent(util.LOG_LEVEL_ERROR, "Failed to update fulfillment metrics for", req.RequestID, "Err -", err)
		return domain.AggregateMetrics{}, true
	}

	p.logger.LogEvent(util.LOG_LEVEL_INFO, "TrustScore updated,", fmt.Sprintf("%.2f%% accuracy", agg.AccuracyRate))
	return agg, false
}

func failure(kind domain.ErrorKind, err error) domain.DeliveryOutcome {
	return domain.DeliveryOutcome{Kind: kind, Detail: Redact(err)}
}

// Redact keeps only the first few lines of a diagnostic so responses never
// leak full internal state.
func Redact(err error) string {
	if err == nil {
		return ""
	}
	lines := strings.Split(err.Error(), "\n")
	if len(lines) > detailMaxLines {
		lines = lines[:detailMaxLines]
	}
	return strings.Join(lines, "\n")
}
