package printing

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	appinvoice "github.com/billing/backend/internal/application/invoice"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func testDocument() *appinvoice.PrintDocument {
	due := "2026-04-14"
	return &appinvoice.PrintDocument{
		Invoice: appinvoice.InvoiceResponse{
			InvoiceNumber: "INV-500000",
			CustomerName:  "Ravi <Traders>",
			CustomerPhone: "+919876543210",
			InvoiceDate:   "2026-03-15",
			DueDate:       &due,
			Status:        "sent",
			Subtotal:      decimal.RequireFromString("123456.5"),
			TaxRate:       decimal.RequireFromString("18"),
			TaxAmount:     decimal.RequireFromString("22222.17"),
			GrandTotal:    decimal.RequireFromString("145678.67"),
			Items: []appinvoice.ItemResponse{
				{ItemName: "Steel rod", UnitLabel: "Piece", Quantity: decimal.RequireFromString("2"), Rate: decimal.RequireFromString("100"), Total: decimal.RequireFromString("200")},
			},
			TermsAndConditions: "Payment within 30 days",
		},
		Company: appinvoice.CompanyHeader{
			Name:     "Standard Steels & Hardware",
			TaxLabel: "GST",
			GSTIN:    "27AAAAA0000A1Z5",
			BankName: "State Bank",
		},
	}
}

func TestTemplateEngine_Render(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	html, err := engine.Render(testDocument())
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Invoice INV-500000</title>")
	assert.Contains(t, html, "Ravi &lt;Traders&gt;")
	assert.NotContains(t, html, "Ravi <Traders>")
	assert.Contains(t, html, "Standard Steels &amp; Hardware")
	assert.Contains(t, html, "15 Mar 2026")
	assert.Contains(t, html, "Due: 14 Apr 2026")
	assert.Contains(t, html, "GST (18%)")
	assert.Contains(t, html, "₹ 1,23,456.50", "amounts use Indian digit grouping")
	assert.Contains(t, html, "State Bank")
	assert.NotContains(t, html, "Discount")
}

func TestTemplateEngine_Options(t *testing.T) {
	engine, err := NewTemplateEngine(WithLocale(language.AmericanEnglish), WithCurrencySymbol("$"))
	require.NoError(t, err)

	assert.Equal(t, "$ 123,456.50", engine.money(decimal.RequireFromString("123456.5")))
	assert.Equal(t, "0.00", engine.amount(decimal.Zero))
}

func TestFormatDate(t *testing.T) {
	s := "2026-01-05"
	assert.Equal(t, "05 Jan 2026", formatDate(s))
	assert.Equal(t, "05 Jan 2026", formatDate(&s))
	assert.Equal(t, "", formatDate((*string)(nil)))
	assert.Equal(t, "soon", formatDate("soon"))
}

func TestPaper(t *testing.T) {
	assert.Equal(t, PaperA5, ParsePaperSize("a5"))
	assert.Equal(t, PaperA4, ParsePaperSize("tabloid"))
	assert.Equal(t, OrientationLandscape, ParseOrientation("landscape"))
	assert.Equal(t, OrientationPortrait, ParseOrientation(""))

	w, h := PaperA4.Inches()
	assert.InDelta(t, 8.27, w, 0.01)
	assert.InDelta(t, 11.69, h, 0.01)
}

func TestNewChromedpRenderer(t *testing.T) {
	_, err := NewChromedpRenderer(config.PrintingConfig{}, nil, zap.NewNop())
	assert.Error(t, err)

	engine, err := NewTemplateEngine()
	require.NoError(t, err)
	r, err := NewChromedpRenderer(config.PrintingConfig{PaperSize: "letter", Orientation: "LANDSCAPE"}, engine, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, defaultRenderTimeout, r.timeout)
	params := r.printParams()
	assert.True(t, params.Landscape)
	assert.InDelta(t, 8.5, params.PaperWidth, 0.01)
}

// Needs a local Chrome; set BILLING_TEST_CHROME=1 to run
func TestChromedpRenderer_RenderInvoice(t *testing.T) {
	if os.Getenv("BILLING_TEST_CHROME") == "" {
		t.Skip("BILLING_TEST_CHROME not set")
	}

	engine, err := NewTemplateEngine()
	require.NoError(t, err)
	r, err := NewChromedpRenderer(config.PrintingConfig{Timeout: time.Minute}, engine, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	pdf, err := r.RenderInvoice(context.Background(), testDocument())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}
