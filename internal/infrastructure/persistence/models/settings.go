package models

import (
	"time"

	"github.com/billing/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
)

// SettingsSingletonID is the primary key of the only settings row
const SettingsSingletonID = 1

// CompanySettingsModel is the persistence model for the settings singleton.
type CompanySettingsModel struct {
	ID                 int             `gorm:"primaryKey;autoIncrement:false"`
	CompanyName        string          `gorm:"type:varchar(255);not null"`
	CompanyAddress     string          `gorm:"type:text"`
	PhoneNumber        string          `gorm:"type:varchar(15)"`
	Email              string          `gorm:"type:varchar(255)"`
	Website            string          `gorm:"type:varchar(255)"`
	GSTIN              string          `gorm:"column:gstin;type:varchar(15)"`
	LogoKey            string          `gorm:"type:varchar(500)"`
	DefaultTaxRate     decimal.Decimal `gorm:"type:numeric(5,2);not null;default:18"`
	TaxLabel           string          `gorm:"type:varchar(50);not null;default:'GST'"`
	InvoicePrefix      string          `gorm:"type:varchar(10);not null;default:'INV-'"`
	InvoiceStartNumber int64           `gorm:"not null;default:500000"`
	InvoiceTerms       string          `gorm:"type:text"`
	InvoiceFooter      string          `gorm:"type:text"`
	PaymentDueDays     int             `gorm:"not null;default:30"`
	BankName           string          `gorm:"type:varchar(255)"`
	AccountNumber      string          `gorm:"type:varchar(50)"`
	IFSCCode           string          `gorm:"column:ifsc_code;type:varchar(20)"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CompanySettingsModel) TableName() string {
	return "company_settings"
}

// ToDomain converts the persistence model to domain settings.
func (m *CompanySettingsModel) ToDomain() *settings.CompanySettings {
	return &settings.CompanySettings{
		CompanyName:        m.CompanyName,
		CompanyAddress:     m.CompanyAddress,
		PhoneNumber:        m.PhoneNumber,
		Email:              m.Email,
		Website:            m.Website,
		GSTIN:              m.GSTIN,
		LogoKey:            m.LogoKey,
		DefaultTaxRate:     m.DefaultTaxRate,
		TaxLabel:           m.TaxLabel,
		InvoicePrefix:      m.InvoicePrefix,
		InvoiceStartNumber: m.InvoiceStartNumber,
		InvoiceTerms:       m.InvoiceTerms,
		InvoiceFooter:      m.InvoiceFooter,
		PaymentDueDays:     m.PaymentDueDays,
		BankName:           m.BankName,
		AccountNumber:      m.AccountNumber,
		IFSCCode:           m.IFSCCode,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// CompanySettingsModelFromDomain creates the singleton row from domain settings.
func CompanySettingsModelFromDomain(s *settings.CompanySettings) *CompanySettingsModel {
	return &CompanySettingsModel{
		ID:                 SettingsSingletonID,
		CompanyName:        s.CompanyName,
		CompanyAddress:     s.CompanyAddress,
		PhoneNumber:        s.PhoneNumber,
		Email:              s.Email,
		Website:            s.Website,
		GSTIN:              s.GSTIN,
		LogoKey:            s.LogoKey,
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

// AllModels lists every persistence model, in dependency order
func AllModels() []any {
	return []any{
		&UserModel{},
		&CustomerModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&CompanySettingsModel{},
	}
}
