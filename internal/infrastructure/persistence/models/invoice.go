package models

import (
	"time"

	"github.com/billing/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber      string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	CustomerName       string             `gorm:"type:varchar(255);not null"`
	CustomerPhone      string             `gorm:"type:varchar(15);not null"`
	InvoiceDate        time.Time          `gorm:"type:date;not null;index"`
	DueDate            *time.Time         `gorm:"type:date"`
	Status             invoice.Status     `gorm:"type:varchar(20);not null;default:'draft';index"`
	Subtotal           decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0"`
	TaxRate            decimal.Decimal    `gorm:"type:numeric(5,2);not null;default:18"`
	TaxAmount          decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0"`
	DiscountAmount     decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0"`
	GrandTotal         decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0"`
	Notes              string             `gorm:"type:text"`
	TermsAndConditions string             `gorm:"type:text"`
	CreatedBy          *uuid.UUID         `gorm:"type:uuid"`
	Items              []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice, items included
// when they were loaded.
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		InvoiceNumber:      m.InvoiceNumber,
		CustomerID:         m.CustomerID,
		InvoiceDate:        m.InvoiceDate,
		DueDate:            m.DueDate,
		Status:             m.Status,
		Subtotal:           m.Subtotal,
		TaxRate:            m.TaxRate,
		TaxAmount:          m.TaxAmount,
		DiscountAmount:     m.DiscountAmount,
		GrandTotal:         m.GrandTotal,
		Notes:              m.Notes,
		TermsAndConditions: m.TermsAndConditions,
		CreatedBy:          m.CreatedBy,
		Items:              make([]invoice.Item, len(m.Items)),
	}
	inv.RestoreSnapshot(m.CustomerName, m.CustomerPhone)
	for i := range m.Items {
		inv.Items[i] = *m.Items[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *invoice.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName()
	m.CustomerPhone = inv.CustomerPhone()
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.Subtotal = inv.Subtotal
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.DiscountAmount = inv.DiscountAmount
	m.GrandTotal = inv.GrandTotal
	m.Notes = inv.Notes
	m.TermsAndConditions = inv.TermsAndConditions
	m.CreatedBy = inv.CreatedBy
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(&inv.Items[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// HeaderColumns returns the columns written by an optimistic-lock save.
// Items, the number, the customer reference and its snapshot never change
// after creation.
func (m *InvoiceModel) HeaderColumns() map[string]any {
	return map[string]any{
		"invoice_date":         m.InvoiceDate,
		"due_date":             m.DueDate,
		"status":               m.Status,
		"subtotal":             m.Subtotal,
		"tax_rate":             m.TaxRate,
		"tax_amount":           m.TaxAmount,
		"discount_amount":      m.DiscountAmount,
		"grand_total":          m.GrandTotal,
		"notes":                m.Notes,
		"terms_and_conditions": m.TermsAndConditions,
		"updated_at":           m.UpdatedAt,
	}
}

// InvoiceItemModel is the persistence model for an invoice line.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName    string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text"`
	Unit        invoice.Unit    `gorm:"type:varchar(20);not null;default:'piece'"`
	Quantity    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Rate        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SortOrder   int             `gorm:"column:sort_order;not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *InvoiceItemModel) ToDomain() *invoice.Item {
	return &invoice.Item{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		ItemName:    m.ItemName,
		Description: m.Description,
		Unit:        m.Unit,
		Quantity:    m.Quantity,
		Rate:        m.Rate,
		Total:       m.Total,
		SortOrder:   m.SortOrder,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain Item.
func InvoiceItemModelFromDomain(item *invoice.Item) *InvoiceItemModel {
	return &InvoiceItemModel{
		BaseModel: BaseModel{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		},
		InvoiceID:   item.InvoiceID,
		ItemName:    item.ItemName,
		Description: item.Description,
		Unit:        item.Unit,
		Quantity:    item.Quantity,
		Rate:        item.Rate,
		Total:       item.Total,
		SortOrder:   item.SortOrder,
	}
}
