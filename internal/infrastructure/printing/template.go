package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	appinvoice "github.com/billing/backend/internal/application/invoice"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultCurrencySymbol = "₹"

// TemplateEngine renders print documents to HTML
type TemplateEngine struct {
	tmpl    *template.Template
	printer *message.Printer
	symbol  string
}

// TemplateOption configures a TemplateEngine
type TemplateOption func(*TemplateEngine)

// WithLocale sets the locale used for number grouping
func WithLocale(tag language.Tag) TemplateOption {
	return func(e *TemplateEngine) {
		e.printer = message.NewPrinter(tag)
	}
}

// WithCurrencySymbol sets the symbol printed before amounts
func WithCurrencySymbol(symbol string) TemplateOption {
	return func(e *TemplateEngine) {
		e.symbol = symbol
	}
}

// NewTemplateEngine parses the embedded invoice template. Amounts are
// grouped the Indian way unless another locale is given.
func NewTemplateEngine(opts ...TemplateOption) (*TemplateEngine, error) {
	e := &TemplateEngine{
		printer: message.NewPrinter(language.MustParse("en-IN")),
		symbol:  defaultCurrencySymbol,
	}
	for _, opt := range opts {
		opt(e)
	}

	tmpl, err := template.New("invoice.html").Funcs(e.funcs()).ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	e.tmpl = tmpl
	return e, nil
}

// Render lays out doc as a complete HTML page
func (e *TemplateEngine) Render(doc *appinvoice.PrintDocument) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) funcs() template.FuncMap {
	return template.FuncMap{
		"money":   e.money,
		"amount":  e.amount,
		"percent": e.percent,
		"date":    formatDate,
		"inc":     func(i int) int { return i + 1 },
		"title":   statusTitle,
	}
}

// amount formats d with two decimals and locale grouping
func (e *TemplateEngine) amount(d decimal.Decimal) string {
	return e.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

func (e *TemplateEngine) money(d decimal.Decimal) string {
	return e.symbol + " " + e.amount(d)
}

func (e *TemplateEngine) percent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

// formatDate turns a wire date (2006-01-02) into 02 Jan 2006. Unparseable
// values are printed as given.
func formatDate(value any) string {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return ""
		}
		s = *v
	default:
		return fmt.Sprint(v)
	}
	t, err := time.Parse(appinvoice.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02 Jan 2006")
}

func statusTitle(status string) string {
	switch status {
	case "draft":
		return "Draft"
	case "sent":
		return "Sent"
	case "paid":
		return "Paid"
	case "cancelled":
		return "Cancelled"
	}
	return status
}
