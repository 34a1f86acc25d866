package invoice

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter narrows invoice listings. Search matches invoice number,
// customer name and customer phone.
type ListFilter struct {
	shared.Filter
	Status      *Status
	CustomerID  *uuid.UUID
	InvoiceDate *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
}

// Summary is a count and grand-total sum over a set of invoices
type Summary struct {
	TotalInvoices int64
	TotalAmount   decimal.Decimal
}

// StatusCount is the number of invoices in one status
type StatusCount struct {
	Status Status
	Count  int64
}

// Repository defines the interface for invoice persistence
type Repository interface {
	NumberSource

	// FindByID finds an invoice with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForUpdate finds an invoice with its items and locks the row
	// for the rest of the transaction where the database supports it
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindAll finds invoices matching the filter, items included
	FindAll(ctx context.Context, filter ListFilter) ([]Invoice, error)

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter ListFilter) (int64, error)

	// Summarize returns count and grand-total sum over the filter
	Summarize(ctx context.Context, filter ListFilter) (Summary, error)

	// CountByStatus returns the number of invoices per status
	CountByStatus(ctx context.Context) ([]StatusCount, error)

	// FindRecent returns the most recently created invoices
	FindRecent(ctx context.Context, limit int) ([]Invoice, error)

	// FindRecentByCustomer returns a customer's most recently created invoices
	FindRecentByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]Invoice, error)

	// CountByCustomer counts all invoices referencing the customer
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)

	// PaidGrandTotals returns the grand totals of a customer's paid invoices
	PaidGrandTotals(ctx context.Context, customerID uuid.UUID) ([]decimal.Decimal, error)

	// Create inserts the invoice and all of its items
	Create(ctx context.Context, invoice *Invoice) error

	// SaveWithLock updates the invoice row if its stored version still equals
	// invoice.Version, then bumps the version
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Delete removes the invoice; its items go with it
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemRepository defines the interface for invoice item persistence
type ItemRepository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByInvoice returns the items of an invoice ordered by sort order
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Item, error)

	// Create inserts an item
	Create(ctx context.Context, item *Item) error

	// Save updates an item
	Save(ctx context.Context, item *Item) error

	// Delete removes an item
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByInvoice removes every item of an invoice
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}
