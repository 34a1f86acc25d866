package settings

import (
	"time"

	"github.com/billing/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
)

// UpdateSettingsRequest replaces every editable setting
type UpdateSettingsRequest struct {
	CompanyName        string          `json:"company_name" binding:"required,min=1,max=255"`
	CompanyAddress     string          `json:"company_address"`
	PhoneNumber        string          `json:"phone_number" binding:"max=15"`
	Email              string          `json:"email" binding:"omitempty,email"`
	Website            string          `json:"website" binding:"omitempty,url"`
	GSTIN              string          `json:"gstin" binding:"max=15"`
	DefaultTaxRate     decimal.Decimal `json:"default_tax_rate"`
	TaxLabel           string          `json:"tax_label" binding:"required,max=50"`
	InvoicePrefix      string          `json:"invoice_prefix" binding:"required,max=10"`
	InvoiceStartNumber int64           `json:"invoice_start_number" binding:"min=0"`
	InvoiceTerms       string          `json:"invoice_terms"`
	InvoiceFooter      string          `json:"invoice_footer"`
	PaymentDueDays     int             `json:"payment_due_days" binding:"min=0"`
	BankName           string          `json:"bank_name" binding:"max=255"`
	AccountNumber      string          `json:"account_number" binding:"max=50"`
	IFSCCode           string          `json:"ifsc_code" binding:"max=20"`
}

// PatchSettingsRequest changes only the fields that are present
type PatchSettingsRequest struct {
	CompanyName        *string          `json:"company_name" binding:"omitempty,min=1,max=255"`
	CompanyAddress     *string          `json:"company_address"`
	PhoneNumber        *string          `json:"phone_number" binding:"omitempty,max=15"`
	Email              *string          `json:"email"`
	Website            *string          `json:"website"`
	GSTIN              *string          `json:"gstin" binding:"omitempty,max=15"`
	DefaultTaxRate     *decimal.Decimal `json:"default_tax_rate"`
	TaxLabel           *string          `json:"tax_label" binding:"omitempty,max=50"`
	InvoicePrefix      *string          `json:"invoice_prefix" binding:"omitempty,max=10"`
	InvoiceStartNumber *int64           `json:"invoice_start_number" binding:"omitempty,min=0"`
	InvoiceTerms       *string          `json:"invoice_terms"`
	InvoiceFooter      *string          `json:"invoice_footer"`
	PaymentDueDays     *int             `json:"payment_due_days" binding:"omitempty,min=0"`
	BankName           *string          `json:"bank_name" binding:"omitempty,max=255"`
	AccountNumber      *string          `json:"account_number" binding:"omitempty,max=50"`
	IFSCCode           *string          `json:"ifsc_code" binding:"omitempty,max=20"`
}

// LogoUpload is an uploaded logo file
type LogoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SettingsResponse is the full settings view
type SettingsResponse struct {
	CompanyName        string          `json:"company_name"`
	CompanyAddress     string          `json:"company_address"`
	PhoneNumber        string          `json:"phone_number"`
	Email              string          `json:"email"`
	Website            string          `json:"website"`
	GSTIN              string          `json:"gstin"`
	LogoURL            string          `json:"logo_url,omitempty"`
	DefaultTaxRate     decimal.Decimal `json:"default_tax_rate"`
	TaxLabel           string          `json:"tax_label"`
	InvoicePrefix      string          `json:"invoice_prefix"`
	InvoiceStartNumber int64           `json:"invoice_start_number"`
	InvoiceTerms       string          `json:"invoice_terms"`
	InvoiceFooter      string          `json:"invoice_footer"`
	PaymentDueDays     int             `json:"payment_due_days"`
	BankName           string          `json:"bank_name"`
	AccountNumber      string          `json:"account_number"`
	IFSCCode           string          `json:"ifsc_code"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// PublicSettingsResponse is the subset shown without authentication
type PublicSettingsResponse struct {
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
	PhoneNumber    string `json:"phone_number"`
	Email          string `json:"email"`
	Website        string `json:"website"`
	GSTIN          string `json:"gstin"`
	TaxLabel       string `json:"tax_label"`
	LogoURL        string `json:"logo_url,omitempty"`
}

// ToSettingsResponse converts the domain settings. logoURL may be empty.
func ToSettingsResponse(s *settings.CompanySettings, logoURL string) SettingsResponse {
	return SettingsResponse{
		CompanyName:        s.CompanyName,
		CompanyAddress:     s.CompanyAddress,
		PhoneNumber:        s.PhoneNumber,
		Email:              s.Email,
		Website:            s.Website,
		GSTIN:              s.GSTIN,
		LogoURL:            logoURL,
		DefaultTaxRate:     s.DefaultTaxRate,
		TaxLabel:           s.TaxLabel,
		InvoicePrefix:      s.InvoicePrefix,
		InvoiceStartNumber: s.InvoiceStartNumber,
		InvoiceTerms:       s.InvoiceTerms,
		InvoiceFooter:      s.InvoiceFooter,
		PaymentDueDays:     s.PaymentDueDays,
		BankName:           s.BankName,
		AccountNumber:      s.AccountNumber,
		IFSCCode:           s.IFSCCode,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (r UpdateSettingsRequest) toDomain() settings.CompanySettings {
	return settings.CompanySettings{
		CompanyName:        r.CompanyName,
		CompanyAddress:     r.CompanyAddress,
		PhoneNumber:        r.PhoneNumber,
		Email:              r.Email,
		Website:            r.Website,
		GSTIN:              r.GSTIN,
		DefaultTaxRate:     r.DefaultTaxRate,
		TaxLabel:           r.TaxLabel,
		InvoicePrefix:      r.InvoicePrefix,
		InvoiceStartNumber: r.InvoiceStartNumber,
		InvoiceTerms:       r.InvoiceTerms,
		InvoiceFooter:      r.InvoiceFooter,
		PaymentDueDays:     r.PaymentDueDays,
		BankName:           r.BankName,
		AccountNumber:      r.AccountNumber,
		IFSCCode:           r.IFSCCode,
	}
}

func (r PatchSettingsRequest) applyTo(next *settings.CompanySettings) {
	setString(&next.CompanyName, r.CompanyName)
	setString(&next.CompanyAddress, r.CompanyAddress)
	setString(&next.PhoneNumber, r.PhoneNumber)
	setString(&next.Email, r.Email)
	setString(&next.Website, r.Website)
	setString(&next.GSTIN, r.GSTIN)
	setString(&next.TaxLabel, r.TaxLabel)
	setString(&next.InvoicePrefix, r.InvoicePrefix)
	setString(&next.InvoiceTerms, r.InvoiceTerms)
	setString(&next.InvoiceFooter, r.InvoiceFooter)
	setString(&next.BankName, r.BankName)
	setString(&next.AccountNumber, r.AccountNumber)
	setString(&next.IFSCCode, r.IFSCCode)
	if r.DefaultTaxRate != nil {
		next.DefaultTaxRate = *r.DefaultTaxRate
	}
	if r.InvoiceStartNumber != nil {
		next.InvoiceStartNumber = *r.InvoiceStartNumber
	}
	if r.PaymentDueDays != nil {
		next.PaymentDueDays = *r.PaymentDueDays
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
