// internal/pkg/pdf/invoice.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service renders order invoices as PDF
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GenerateInvoice renders a PDF invoice for a persisted order.
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:   o.CreatedAt.Format("January 2, 2006"),
		GeneratedAt:   time.Now().Format("January 2, 2006"),
		Order:         o,
		StoreName:     s.config.App.Name,
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data InvoiceData) (string, error) {
	tmpl := template.Must(template.New("invoice").Funcs(template.FuncMap{
		"cents": formatCents,
		"mul": func(price int64, qty int) int64 {
			return price * int64(qty)
		},
	}).Parse(invoiceTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func formatCents(amount int64) string {
	return fmt.Sprintf("$%d.%02d", amount/100, amount%100)
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string       `json:"invoice_number"`
	InvoiceDate   string       `json:"invoice_date"`
	GeneratedAt   string       `json:"generated_at"`
	Order         *order.Order `json:"order"`
	StoreName     string       `json:"store_name"`
}

// Invoice HTML template
const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .invoice-details td { padding: 5px 10px 5px 0; vertical-align: top; }
        .invoice-details .label { font-weight: bold; }
        .items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 12px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; font-weight: bold; }
        .items-table .num { text-align: right; width: 90px; }
        .total-row td { font-weight: bold; background-color: #f8f9fa; }
    </style>
</head>
<body>
    <div class="header">
        <div class="invoice-title">{{.StoreName}}</div>
        <div>Invoice {{.InvoiceNumber}}</div>
    </div>

    <table class="invoice-details">
        <tr><td class="label">Order number</td><td>{{.Order.OrderNumber}}</td></tr>
        <tr><td class="label">Order date</td><td>{{.InvoiceDate}}</td></tr>
        <tr><td class="label">Status</td><td>{{.Order.Status}}</td></tr>
        <tr><td class="label">Customer</td><td>{{.Order.CustomerName}} ({{.Order.CustomerEmail}})</td></tr>
    </table>

    <table class="items-table">
        <thead>
            <tr>
                <th>Product</th>
                <th>Variant</th>
                <th class="num">Unit price</th>
                <th class="num">Qty</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Lines}}
            <tr>
                <td>{{.ProductName}}</td>
                <td>{{.AttributeValue}}</td>
                <td class="num">{{cents .UnitPrice}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{cents (mul .UnitPrice .Quantity)}}</td>
            </tr>
            {{end}}
            <tr class="total-row">
                <td colspan="4">Total</td>
                <td class="num">{{cents .Order.TotalAmount}}</td>
            </tr>
        </tbody>
    </table>

    <div>Generated {{.GeneratedAt}}</div>
</body>
</html>
`
