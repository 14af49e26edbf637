package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fulfillment-engine/internal/domain"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// AirtableResolver resolves product records from an Airtable base. It is the
// production ProductResolver; the pipeline only sees the interface.
type AirtableResolver struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	baseID     string
	tableName  string
}

func NewAirtableResolver(apiKey, baseID, tableName string) *AirtableResolver {
	return &AirtableResolver{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		baseID:     baseID,
		tableName:  tableName,
	}
}

type airtableRecord struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

func (a *AirtableResolver) Resolve(ctx context.Context, productRef string) (domain.Product, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/%s",
		a.baseURL, a.baseID, url.PathEscape(a.tableName), url.PathEscape(productRef))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("error building catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return domain.Product{}, fmt.Errorf("error calling product catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Product{}, domain.ErrRecordNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Product{}, fmt.Errorf("product catalog returned %d: %s", resp.StatusCode, body)
	}

	var record airtableRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return domain.Product{}, fmt.Errorf("error decoding catalog record: %w", err)
	}

	return productFromFields(record.Fields), nil
}

func productFromFields(fields map[string]interface{}) domain.Product {
	return domain.Product{
		Name:             stringField(fields, "Product Name"),
		Type:             stringField(fields, "Product Type"),
		PriceZAR:         floatField(fields, "Price (ZAR)"),
		Description:      stringField(fields, "Product Description"),
		ShortDescription: stringField(fields, "Short Description"),
		DeliveryFormat:   stringField(fields, "Delivery Format"),
		DownloadLink:     stringField(fields, "Download Link"),
		OrderID:          stringField(fields, "Order ID"),
		DeliveredTo:      stringField(fields, "Delivered To"),
		GrossRevenueZAR:  floatField(fields, "Gross Revenue (ZAR)"),
		IsHighValue:      boolField(fields, "Is High Value Product?"),
		SummaryAI:        stringField(fields, "Product Summary (AI)"),
		MarketingAngleAI: stringField(fields, "Suggested Marketing Angle (AI)"),
	}
}

func stringField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func floatField(fields map[string]interface{}, key string) float64 {
	if v, ok := fields[key].(float64); ok {
		return v
	}
	return 0
}

func boolField(fields map[string]interface{}, key string) bool {
	if v, ok := fields[key].(bool); ok {
		return v
	}
	return false
}
