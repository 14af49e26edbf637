package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fulfillment-engine/internal/domain"
	"fulfillment-engine/internal/repository"
	"fulfillment-engine/internal/util"
)

type MockResolver struct {
	Product domain.Product
	Err     error
	Calls   int
	Delay   time.Duration
	Panic   bool
}

func (m *MockResolver) Resolve(ctx context.Context, productRef string) (domain.Product, error) {
	m.Calls++
	if m.Panic {
		panic("resolver exploded")
	}
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return domain.Product{}, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if m.Err != nil {
		return domain.Product{}, m.Err
	}
	return m.Product, nil
}

type MockMailer struct {
	MessageID   string
	Err         error
	Calls       int
	LastTo      string
	LastSubject string
	LastHTML    string
}

func (m *MockMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	m.Calls++
	m.LastTo = to
	m.LastSubject = subject
	m.LastHTML = html
	if m.Err != nil {
		return "", m.Err
	}
	return m.MessageID, nil
}

type MockReporter struct {
	Stages []string
	Errs   []error
}

func (m *MockReporter) Report(ctx context.Context, stage string, err error) {
	m.Stages = append(m.Stages, stage)
	m.Errs = append(m.Errs, err)
}

type FailingStore struct{}

func (f *FailingStore) Init() error { return nil }
func (f *FailingStore) Record(ctx context.Context, success bool, errInfo *domain.ErrorInfo) (domain.AggregateMetrics, error) {
	return domain.AggregateMetrics{}, errors.New("disk full")
}
func (f *FailingStore) Snapshot(ctx context.Context) (domain.AggregateMetrics, error) {
	return domain.AggregateMetrics{}, errors.New("disk full")
}
func (f *FailingStore) Close() error { return nil }

func sampleProduct() domain.Product {
	return domain.Product{
		Name:           "Sample Product",
		Type:           "Digital",
		PriceZAR:       100,
		Description:    "This is a sample product.",
		DeliveryFormat: "Download",
		DownloadLink:   "https://example.com/download",
		OrderID:        "ORD12345",
		DeliveredTo:    "user@example.com",
	}
}

func sampleRequest() domain.FulfillmentRequest {
	return domain.FulfillmentRequest{
		RequestID:  "req-1",
		ProductRef: "rec123",
	}
}

func newTestPipeline(resolver domain.ProductResolver, mailer domain.Mailer, store domain.MetricStore, reporter domain.ErrorReporter) *Pipeline {
	return New(resolver, mailer, store, reporter, &util.ServiceLogger{}, time.Second)
}

func TestPipeline_UnknownRecord(t *testing.T) {
	resolver := &MockResolver{Err: domain.ErrRecordNotFound}
	mailer := &MockMailer{MessageID: "abc123"}
	store := repository.NewMemoryStore()
	reporter := &MockReporter{}

	pipe := newTestPipeline(resolver, mailer, store, reporter)
	result := pipe.Run(context.Background(), sampleRequest())

	assert.False(t, result.Outcome.Success)
	assert.Equal(t, domain.ErrKindNotFound, result.Outcome.Kind)
	assert.False(t, result.Degraded)

	// No email goes out for a missing record.
	assert.Equal(t, 0, mailer.Calls)

	// Exactly one FAILED event with the NotFound code lands in the log.
	snap, _ := store.Snapshot(context.Background())
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, 0, snap.Successful)
	assert.Len(t, snap.History, 1)
	assert.Equal(t, domain.StatusFailed, snap.History[0].Status)
	assert.Equal(t, "NotFound", *snap.History[0].ErrorCode)
}

func TestPipeline_SuccessfulDelivery(t *testing.T) {
	resolver := &MockResolver{Product: sampleProduct()}
	mailer := &MockMailer{MessageID: "abc123"}
	store := repository.NewMemoryStore()
	reporter := &MockReporter{}

	pipe := newTestPipeline(resolver, mailer, store, reporter)
	result := pipe.Run(context.Background(), sampleRequest())

	assert.True(t, result.Outcome.Success)
	assert.Equal(t, "abc123", result.Outcome.MessageID)
	assert.False(t, result.Degraded)

	// The composed email went to the resolved recipient.
	assert.Equal(t, 1, mailer.Calls)
	assert.Equal(t, "user@example.com", mailer.LastTo)
	assert.Equal(t, "Your Sample Product is ready!", mailer.LastSubject)
	assert.Contains(t, mailer.LastHTML, "https://example.com/download")

	assert.Equal(t, 1, result.Metrics.Total)
	assert.Equal(t, 1, result.Metrics.Successful)
	assert.Equal(t, 100.0, result.Metrics.AccuracyRate)
	assert.Equal(t, domain.StatusSuccess, result.Metrics.History[0].Status)
}

func TestPipeline_RecipientOverride(t *testing.T) {
	resolver := &MockResolver{Product: sampleProduct()}
	mailer := &MockMailer{MessageID: "abc123"}
	store := repository.NewMemoryStore()

	pipe := newTestPipeline(resolver, mailer, store, &MockReporter{})

	req := sampleRequest()
	req.RecipientEmail = "buyer@example.com"
	pipe.Run(context.Background(), req)

	assert.Equal(t, "buyer@example.com", mailer.LastTo)
}

func TestPipeline_InvalidRecord(t *testing.T) {
	product := sampleProduct()
	product.Name = ""
	resolver := &MockResolver{Product: product}
	mailer := &MockMailer{MessageID: "abc123"}
	store := repository.NewMemoryStore()

	pipe := newTestPipeline(resolver, mailer, store, &MockReporter{})
	result := pipe.Run(context.Background(), sampleRequest())

	assert.False(t, result.Outcome.Success)
	assert.Equal(t, domain.ErrKindInvalidData, result.Outcome.Kind)
	assert.Equal(t, 0, mailer.Calls)

	snap, _ := store.Snapshot(context.Background())
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, "InvalidData", *snap.History[0].ErrorCode)
}

func TestPipeline_MailerFailure(t *testing.T) {
	resolver := &MockResolver{Product: sampleProduct()}
	mailer := &MockMailer{Err: errors.New("mailer returned 429: quota exceeded")}
	store := repository.NewMemoryStore()
	reporter := &MockReporter{}

	pipe := newTestPipeline(resolver, mailer, store, reporter)
	result := pipe.Run(context.Background(), sampleRequest())

	assert.False(t, result.Outcome.Success)
	assert.Equal(t, domain.ErrKindDeliveryFailed, result.Outcome.Kind)
	assert.Contains(t, result.Outcome.Detail, "quota exceeded")

	// Total moves, successful does not.
	snap, _ := store.Snapshot(context.Background())
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, 0, snap.Successful)
	assert.Equal(t, "DeliveryFailed", *snap.History[0].ErrorCode)
}

func TestPipeline_ResolverTimeout(t *testing.T) {
	resolver := &MockResolver{Product: sampleProduct(), Delay: 500 * time.Millisecond}
	mailer := &MockMailer{MessageID: "abc123"}
	store := repository.NewMemoryStore()

	pipe := New(resolver, mailer, store, &MockReporter{}, &util.ServiceLogger{}, 20*time.Millisecond)
	result := pipe.Run(context.Background(), sampleRequest())

	// A stalled resolver is classified like a missing record; the pipeline
	// still records and responds instead of hanging.
	assert.False(t, result.Outcome.Success)
	assert.Equal(t, domain.ErrKindNotFound, result.Outcome.Kind)
	assert.Equal(t, 0, mailer.Calls)

	snap, _ := store.Snapshot(context.Background())
	assert.Equal(t, 1, snap.Total)
}

func TestPipeline_StoreFailureDoesNotOverrideOutcome(t *testing.T) {
	resolver := &MockResolver{Product: sampleProduct()}
	mailer := &MockMailer{MessageID: "abc123"}
	reporter := &MockReporter{}

	pipe := newTestPipeline(resolver, mailer, &FailingStore{}, reporter)
	result := pipe.Run(context.Background(), sampleRequest())

	// Delivery succeeded; a failed log write only degrades the result.
	assert.True(t, result.Outcome.Success)
	assert.Equal(t, "abc123", result.Outcome.MessageID)
	assert.True(t, result.Degraded)

	assert.Equal(t, []string{"record"}, reporter.Stages)
}

func TestPipeline_ResolverPanicIsContained(t *testing.T) {
	resolver := &MockResolver{Panic: true}
	mailer := &MockMailer{}
	store := repository.NewMemoryStore()
	reporter := &MockReporter{}

	pipe := newTestPipeline(resolver, mailer, store, reporter)
	result := pipe.Run(context.Background(), sampleRequest())

	assert.False(t, result.Outcome.Success)
	assert.Equal(t, domain.ErrKindDeliveryFailed, result.Outcome.Kind)
	assert.Contains(t, reporter.Stages, "deliver")

	// The attempt is still counted.
	snap, _ := store.Snapshot(context.Background())
	assert.Equal(t, 1, snap.Total)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "", Redact(nil))

	long := errors.New(strings.Repeat("line\n", 20) + "end")
	redacted := Redact(long)
	assert.Len(t, strings.Split(redacted, "\n"), detailMaxLines)

	short := errors.New("one line")
	assert.Equal(t, "one line", Redact(short))
}

func TestComposeEmail(t *testing.T) {
	subject, html, err := ComposeEmail(sampleProduct())
	assert.NoError(t, err)
	assert.Equal(t, "Your Sample Product is ready!", subject)
	assert.Contains(t, html, "<h1>Sample Product</h1>")
	assert.Contains(t, html, `<a href="https://example.com/download">Download your product</a>`)
	assert.Contains(t, html, "ORD12345")
	assert.NotContains(t, html, "AI-Generated Summary", "Empty AI fields should be omitted")

	// Deterministic: same input, same output.
	_, again, err := ComposeEmail(sampleProduct())
	assert.NoError(t, err)
	assert.Equal(t, html, again)
}
