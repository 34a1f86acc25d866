package models

import (
	"github.com/billing/backend/internal/domain/customer"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate.
type CustomerModel struct {
	AggregateModel
	CustomerName  string          `gorm:"column:customer_name;type:varchar(255);not null;index"`
	PhoneNumber   string          `gorm:"type:varchar(15);not null;index"`
	Email         *string         `gorm:"type:varchar(255);uniqueIndex"`
	Address       string          `gorm:"type:text"`
	City          string          `gorm:"type:varchar(100);index"`
	State         string          `gorm:"type:varchar(100)"`
	Pincode       string          `gorm:"type:varchar(10)"`
	GSTIN         string          `gorm:"column:gstin;type:varchar(15)"`
	IsActive      bool            `gorm:"not null;default:true;index"`
	TotalInvoices int             `gorm:"not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() *customer.Customer {
	c := &customer.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.CustomerName,
		PhoneNumber:       m.PhoneNumber,
		Address:           m.Address,
		City:              m.City,
		State:             m.State,
		Pincode:           m.Pincode,
		GSTIN:             m.GSTIN,
		Notes:             m.Notes,
		IsActive:          m.IsActive,
		TotalInvoices:     m.TotalInvoices,
		TotalAmount:       m.TotalAmount,
	}
	if m.Email != nil {
		c.Email = *m.Email
	}
	return c
}

// FromDomain populates the persistence model from a domain Customer.
// An empty email is stored as NULL so the unique index ignores it.
func (m *CustomerModel) FromDomain(c *customer.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerName = c.Name
	m.PhoneNumber = c.PhoneNumber
	m.Email = nil
	if c.Email != "" {
		email := c.Email
		m.Email = &email
	}
	m.Address = c.Address
	m.City = c.City
	m.State = c.State
	m.Pincode = c.Pincode
	m.GSTIN = c.GSTIN
	m.IsActive = c.IsActive
	m.TotalInvoices = c.TotalInvoices
	m.TotalAmount = c.TotalAmount
	m.Notes = c.Notes
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer.
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
