// Package settings holds the company settings singleton used for invoice
// defaults and the printed invoice header.
package settings

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Default values applied when the singleton row is first created
const (
	DefaultCompanyName    = "Standard Steels & Hardware"
	DefaultCompanyAddress = "123 Industrial Area, Steel City"
	DefaultPhoneNumber    = "+91 12345 67890"
	DefaultEmail          = "info@standardsteels.com"
	DefaultTaxLabel       = "GST"
	DefaultInvoicePrefix  = "INV-"
	DefaultStartNumber    = 500000
	DefaultInvoiceTerms   = "Terms & Conditions Apply | This is a computer generated invoice"
	DefaultPaymentDueDays = 30

	maxPrefixLength = 10
)

// DefaultTaxRate is the tax percentage applied to new invoices
var DefaultTaxRate = decimal.RequireFromString("18.00")

// CompanySettings is the single settings record
type CompanySettings struct {
	CompanyName        string
	CompanyAddress     string
	PhoneNumber        string
	Email              string
	Website            string
	GSTIN              string
	LogoKey            string
	DefaultTaxRate     decimal.Decimal
	TaxLabel           string
	InvoicePrefix      string
	InvoiceStartNumber int64
	InvoiceTerms       string
	InvoiceFooter      string
	PaymentDueDays     int
	BankName           string
	AccountNumber      string
	IFSCCode           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewDefaultSettings returns the settings used before anyone edits them
func NewDefaultSettings() *CompanySettings {
	now := time.Now()
	return &CompanySettings{
		CompanyName:        DefaultCompanyName,
		CompanyAddress:     DefaultCompanyAddress,
		PhoneNumber:        DefaultPhoneNumber,
		Email:              DefaultEmail,
		DefaultTaxRate:     DefaultTaxRate,
		TaxLabel:           DefaultTaxLabel,
		InvoicePrefix:      DefaultInvoicePrefix,
		InvoiceStartNumber: DefaultStartNumber,
		InvoiceTerms:       DefaultInvoiceTerms,
		PaymentDueDays:     DefaultPaymentDueDays,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Update validates and applies a full replacement of the editable fields.
// LogoKey is managed separately through SetLogo.
func (s *CompanySettings) Update(next CompanySettings) error {
	next.CompanyName = strings.TrimSpace(next.CompanyName)
	next.Email = strings.ToLower(strings.TrimSpace(next.Email))
	next.InvoicePrefix = strings.TrimSpace(next.InvoicePrefix)
	next.GSTIN = strings.ToUpper(strings.TrimSpace(next.GSTIN))
	next.IFSCCode = strings.ToUpper(strings.TrimSpace(next.IFSCCode))

	if err := next.validate(); err != nil {
		return err
	}

	s.CompanyName = next.CompanyName
	s.CompanyAddress = next.CompanyAddress
	s.PhoneNumber = next.PhoneNumber
	s.Email = next.Email
	s.Website = next.Website
	s.GSTIN = next.GSTIN
	s.DefaultTaxRate = next.DefaultTaxRate
	s.TaxLabel = next.TaxLabel
	s.InvoicePrefix = next.InvoicePrefix
	s.InvoiceStartNumber = next.InvoiceStartNumber
	s.InvoiceTerms = next.InvoiceTerms
	s.InvoiceFooter = next.InvoiceFooter
	s.PaymentDueDays = next.PaymentDueDays
	s.BankName = next.BankName
	s.AccountNumber = next.AccountNumber
	s.IFSCCode = next.IFSCCode
	s.UpdatedAt = time.Now()
	return nil
}

// SetLogo records the object storage key of the uploaded logo
func (s *CompanySettings) SetLogo(key string) {
	s.LogoKey = key
	s.UpdatedAt = time.Now()
}

// DueDateFrom returns invoiceDate plus the configured payment due days
func (s *CompanySettings) DueDateFrom(invoiceDate time.Time) time.Time {
	return invoiceDate.AddDate(0, 0, s.PaymentDueDays)
}

func (s CompanySettings) validate() error {
	if s.CompanyName == "" {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if len(s.CompanyName) > 255 {
		return shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot exceed 255 characters")
	}
	if len(s.PhoneNumber) > 15 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 15 characters")
	}
	if s.Email != "" {
		if _, err := mail.ParseAddress(s.Email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	if s.Website != "" {
		u, err := url.ParseRequestURI(s.Website)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return shared.NewDomainError("INVALID_WEBSITE", "Website must be a valid http or https URL")
		}
	}
	if len(s.GSTIN) > 15 {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN cannot exceed 15 characters")
	}
	if s.DefaultTaxRate.IsNegative() || s.DefaultTaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	if !shared.HasAtMostPlaces(s.DefaultTaxRate, shared.MoneyPlaces) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot have more than 2 decimal places")
	}
	if strings.TrimSpace(s.TaxLabel) == "" || len(s.TaxLabel) > 50 {
		return shared.NewDomainError("INVALID_TAX_LABEL", "Tax label must be 1-50 characters")
	}
	if s.InvoicePrefix == "" || len(s.InvoicePrefix) > maxPrefixLength {
		return shared.NewDomainError("INVALID_INVOICE_PREFIX", "Invoice prefix must be 1-10 characters")
	}
	if strings.ContainsAny(s.InvoicePrefix, "0123456789") {
		return shared.NewDomainError("INVALID_INVOICE_PREFIX", "Invoice prefix cannot contain digits")
	}
	if s.InvoiceStartNumber < 0 {
		return shared.NewDomainError("INVALID_START_NUMBER", "Invoice start number must be positive")
	}
	if s.PaymentDueDays < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_DUE_DAYS", "Payment due days must be positive")
	}
	if len(s.AccountNumber) > 50 || len(s.IFSCCode) > 20 {
		return shared.NewDomainError("INVALID_BANK_DETAILS", "Bank account number or IFSC code is too long")
	}
	return nil
}
