// Package invoice holds the Invoice aggregate, its line items, the lifecycle
// guard, the totals calculator and the invoice number generator.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerRef is what an invoice needs to know about its customer at creation
type CustomerRef struct {
	ID       uuid.UUID
	Name     string
	Phone    string
	IsActive bool
}

// Header holds the editable non-item fields of an invoice
type Header struct {
	InvoiceDate        time.Time
	DueDate            *time.Time
	TaxRate            decimal.Decimal
	DiscountAmount     decimal.Decimal
	Notes              string
	TermsAndConditions string
}

// Invoice is the invoice aggregate root. customerName and customerPhone are a
// snapshot taken at creation and never change afterwards.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber      string
	CustomerID         uuid.UUID
	customerName       string
	customerPhone      string
	InvoiceDate        time.Time
	DueDate            *time.Time
	Status             Status
	Subtotal           decimal.Decimal
	TaxRate            decimal.Decimal
	TaxAmount          decimal.Decimal
	DiscountAmount     decimal.Decimal
	GrandTotal         decimal.Decimal
	Notes              string
	TermsAndConditions string
	CreatedBy          *uuid.UUID
	Items              []Item
}

// NewInvoice creates a draft invoice with its items and computed totals
func NewInvoice(number string, customer CustomerRef, header Header, items []ItemInput, createdBy *uuid.UUID) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if customer.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !customer.IsActive {
		return nil, shared.NewDomainError("CUSTOMER_INACTIVE", "Cannot create invoice for inactive customer")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}
	if err := header.validate(); err != nil {
		return nil, err
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     number,
		CustomerID:        customer.ID,
		customerName:      customer.Name,
		customerPhone:     customer.Phone,
		Status:            StatusDraft,
		CreatedBy:         createdBy,
	}
	inv.applyHeader(header)

	for idx, in := range items {
		item, err := NewItem(inv.ID, in, idx)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, *item)
	}
	inv.Recalculate()

	return inv, nil
}

// RestoreSnapshot sets the customer snapshot of an invoice loaded from storage.
// It only has an effect while the snapshot is still unset.
func (inv *Invoice) RestoreSnapshot(customerName, customerPhone string) {
	if inv.customerName != "" || inv.customerPhone != "" {
		return
	}
	inv.customerName = customerName
	inv.customerPhone = customerPhone
}

// CustomerName returns the customer name captured at creation
func (inv *Invoice) CustomerName() string {
	return inv.customerName
}

// CustomerPhone returns the customer phone captured at creation
func (inv *Invoice) CustomerPhone() string {
	return inv.customerPhone
}

// EnsureEditable rejects content changes on paid or cancelled invoices
func (inv *Invoice) EnsureEditable() error {
	if !inv.Status.AllowsContentChanges() {
		return shared.NewDomainError("INVOICE_NOT_EDITABLE",
			fmt.Sprintf("Cannot modify invoice in %s status", inv.Status)).
			WithDetail("status", inv.Status.String())
	}
	return nil
}

// EnsureDeletable rejects deletion of anything but drafts
func (inv *Invoice) EnsureDeletable() error {
	if !inv.Status.AllowsDeletion() {
		return shared.NewDomainError("INVOICE_NOT_DELETABLE",
			fmt.Sprintf("Cannot delete invoice in %s status, only drafts can be deleted", inv.Status)).
			WithDetail("status", inv.Status.String())
	}
	return nil
}

// Header returns the current editable non-item fields
func (inv *Invoice) Header() Header {
	return Header{
		InvoiceDate:        inv.InvoiceDate,
		DueDate:            inv.DueDate,
		TaxRate:            inv.TaxRate,
		DiscountAmount:     inv.DiscountAmount,
		Notes:              inv.Notes,
		TermsAndConditions: inv.TermsAndConditions,
	}
}

// UpdateHeader replaces dates, tax rate, discount, notes and terms
func (inv *Invoice) UpdateHeader(header Header) error {
	if err := inv.EnsureEditable(); err != nil {
		return err
	}
	if err := header.validate(); err != nil {
		return err
	}

	inv.applyHeader(header)
	inv.Recalculate()
	inv.markChanged()
	return nil
}

// AddItem appends a new line
func (inv *Invoice) AddItem(input ItemInput) (*Item, error) {
	if err := inv.EnsureEditable(); err != nil {
		return nil, err
	}

	item, err := NewItem(inv.ID, input, inv.nextSortOrder())
	if err != nil {
		return nil, err
	}

	inv.Items = append(inv.Items, *item)
	inv.Recalculate()
	inv.markChanged()
	return item, nil
}

// UpdateItem replaces the fields of an existing line
func (inv *Invoice) UpdateItem(itemID uuid.UUID, input ItemInput) (*Item, error) {
	if err := inv.EnsureEditable(); err != nil {
		return nil, err
	}

	for idx := range inv.Items {
		if inv.Items[idx].ID == itemID {
			if err := inv.Items[idx].Apply(input); err != nil {
				return nil, err
			}
			inv.Recalculate()
			inv.markChanged()
			item := inv.Items[idx]
			return &item, nil
		}
	}

	return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// RemoveItem removes a line. The last remaining line cannot be removed.
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if err := inv.EnsureEditable(); err != nil {
		return err
	}

	for idx, item := range inv.Items {
		if item.ID == itemID {
			if len(inv.Items) == 1 {
				return shared.NewDomainError("INVOICE_LAST_ITEM", "Invoice must keep at least one item")
			}
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			inv.Recalculate()
			inv.markChanged()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// ReplaceItems swaps every line for a new set
func (inv *Invoice) ReplaceItems(inputs []ItemInput) error {
	if err := inv.EnsureEditable(); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}

	items := make([]Item, 0, len(inputs))
	for idx, in := range inputs {
		item, err := NewItem(inv.ID, in, idx)
		if err != nil {
			return err
		}
		items = append(items, *item)
	}

	inv.Items = items
	inv.Recalculate()
	inv.markChanged()
	return nil
}

// TransitionTo moves the invoice to the target status
func (inv *Invoice) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid status: %s", target))
	}
	if !inv.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot change invoice status from %s to %s", inv.Status, target)).
			WithDetail("from", inv.Status.String()).
			WithDetail("to", target.String())
	}

	inv.Status = target
	inv.markChanged()
	return nil
}

// Recalculate refreshes every line total and the invoice totals from Items
func (inv *Invoice) Recalculate() {
	for idx := range inv.Items {
		inv.Items[idx].Total = LineTotal(inv.Items[idx].Quantity, inv.Items[idx].Rate)
	}
	inv.ApplyTotals(CalculateTotals(LinesOf(inv.Items), inv.TaxRate, inv.DiscountAmount))
}

// ApplyTotals stores computed totals
func (inv *Invoice) ApplyTotals(t Totals) {
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.GrandTotal = t.GrandTotal
}

// ItemCount returns the number of lines
func (inv *Invoice) ItemCount() int {
	return len(inv.Items)
}

// GetItem returns the line with the given ID, or nil
func (inv *Invoice) GetItem(itemID uuid.UUID) *Item {
	for idx := range inv.Items {
		if inv.Items[idx].ID == itemID {
			return &inv.Items[idx]
		}
	}
	return nil
}

// IsPaid reports whether the invoice counts towards the customer aggregate
func (inv *Invoice) IsPaid() bool {
	return inv.Status == StatusPaid
}

func (inv *Invoice) applyHeader(h Header) {
	inv.InvoiceDate = h.InvoiceDate
	inv.DueDate = h.DueDate
	inv.TaxRate = h.TaxRate
	inv.DiscountAmount = h.DiscountAmount
	inv.Notes = strings.TrimSpace(h.Notes)
	inv.TermsAndConditions = strings.TrimSpace(h.TermsAndConditions)
}

func (inv *Invoice) nextSortOrder() int {
	next := 0
	for _, item := range inv.Items {
		if item.SortOrder >= next {
			next = item.SortOrder + 1
		}
	}
	return next
}

func (inv *Invoice) markChanged() {
	inv.Touch()
}

func (h Header) validate() error {
	if h.InvoiceDate.IsZero() {
		return shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date is required")
	}
	if h.DueDate != nil && h.DueDate.Before(h.InvoiceDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}
	if h.TaxRate.IsNegative() || h.TaxRate.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	if !shared.HasAtMostPlaces(h.TaxRate, shared.MoneyPlaces) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot have more than 2 decimal places")
	}
	if h.DiscountAmount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if !shared.HasAtMostPlaces(h.DiscountAmount, shared.MoneyPlaces) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot have more than 2 decimal places")
	}
	return nil
}
