package settings

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultSettings(t *testing.T) {
	s := NewDefaultSettings()

	assert.Equal(t, "Standard Steels & Hardware", s.CompanyName)
	assert.Equal(t, "INV-", s.InvoicePrefix)
	assert.Equal(t, int64(500000), s.InvoiceStartNumber)
	assert.Equal(t, 30, s.PaymentDueDays)
	assert.Equal(t, "GST", s.TaxLabel)
	assert.True(t, s.DefaultTaxRate.Equal(decimal.NewFromInt(18)))
}

func TestCompanySettings_Update(t *testing.T) {
	t.Run("applies valid changes", func(t *testing.T) {
		s := NewDefaultSettings()
		next := *s
		next.CompanyName = "Acme Hardware"
		next.InvoicePrefix = "AH-"
		next.DefaultTaxRate = decimal.RequireFromString("12.5")
		next.Website = "https://acme.example"
		next.GSTIN = "27aapfu0939f1zv"

		require.NoError(t, s.Update(next))
		assert.Equal(t, "Acme Hardware", s.CompanyName)
		assert.Equal(t, "AH-", s.InvoicePrefix)
		assert.Equal(t, "27AAPFU0939F1ZV", s.GSTIN)
	})

	t.Run("keeps logo", func(t *testing.T) {
		s := NewDefaultSettings()
		s.SetLogo("company/logo.png")
		next := *s
		next.LogoKey = ""

		require.NoError(t, s.Update(next))
		assert.Equal(t, "company/logo.png", s.LogoKey)
	})

	tests := []struct {
		name   string
		mutate func(*CompanySettings)
		msg    string
	}{
		{"tax rate above 100", func(s *CompanySettings) { s.DefaultTaxRate = decimal.NewFromInt(101) }, "between 0 and 100"},
		{"negative tax rate", func(s *CompanySettings) { s.DefaultTaxRate = decimal.NewFromInt(-1) }, "between 0 and 100"},
		{"long prefix", func(s *CompanySettings) { s.InvoicePrefix = "INVOICE-NO-" }, "1-10 characters"},
		{"prefix with digits", func(s *CompanySettings) { s.InvoicePrefix = "INV2-" }, "cannot contain digits"},
		{"negative due days", func(s *CompanySettings) { s.PaymentDueDays = -1 }, "Payment due days"},
		{"negative start number", func(s *CompanySettings) { s.InvoiceStartNumber = -5 }, "start number"},
		{"bad email", func(s *CompanySettings) { s.Email = "nope" }, "Invalid email"},
		{"bad website", func(s *CompanySettings) { s.Website = "ftp://x" }, "http or https"},
		{"empty name", func(s *CompanySettings) { s.CompanyName = " " }, "cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDefaultSettings()
			next := *s
			tt.mutate(&next)

			err := s.Update(next)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, DefaultInvoicePrefix, s.InvoicePrefix)
		})
	}
}

func TestCompanySettings_DueDateFrom(t *testing.T) {
	s := NewDefaultSettings()
	d := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), s.DueDateFrom(d))
}
