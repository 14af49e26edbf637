package pipeline

import (
	"bytes"
	"fmt"
	"html/template"

	"fulfillment-engine/internal/domain"
)

// deliveryTemplate renders the delivery email body. Rendering is a pure
// function of the resolved product; no I/O happens here.
var deliveryTemplate = template.Must(template.New("delivery").Parse(`
<h1>{{.Name}}</h1>
<p><em>{{.ShortDescription}}</em></p>
<p><strong>Type:</strong> {{.Type}}</p>
<p><strong>Price:</strong> ZAR {{.PriceZAR}}</p>
<p><strong>Description:</strong> {{.Description}}</p>
<p><strong>Delivery Format:</strong> {{.DeliveryFormat}}</p>
<p><a href="{{.DownloadLink}}">Download your product</a></p>
<hr/>
<p><strong>Status:</strong> Available</p>
<p><strong>Order ID:</strong> {{.OrderID}}</p>
<p><strong>Delivered To:</strong> {{.DeliveredTo}}</p>
<p><strong>Gross Revenue:</strong> ZAR {{.GrossRevenueZAR}}</p>
<p><strong>High Value Product:</strong> {{.IsHighValue}}</p>
{{if .SummaryAI}}<h2>AI-Generated Summary</h2>
<p>{{.SummaryAI}}</p>{{end}}
{{if .MarketingAngleAI}}<h2>Suggested Marketing Angle</h2>
<p>{{.MarketingAngleAI}}</p>{{end}}
`))

// ComposeEmail renders the subject and HTML body for a resolved product.
func ComposeEmail(product domain.Product) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := deliveryTemplate.Execute(&buf, product); err != nil {
		return "", "", fmt.Errorf("error rendering delivery email: %w", err)
	}
	return fmt.Sprintf("Your %s is ready!", product.Name), buf.String(), nil
}
