package invoice

import (
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var minQuantity = decimal.RequireFromString("0.01")

// ItemInput carries the caller-provided fields of an invoice line
type ItemInput struct {
	ItemName    string
	Description string
	Unit        Unit
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// Item represents a line item in an invoice
type Item struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	ItemName    string
	Description string
	Unit        Unit
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Total       decimal.Decimal // Quantity * Rate, rounded
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem creates a new invoice line
func NewItem(invoiceID uuid.UUID, input ItemInput, sortOrder int) (*Item, error) {
	input, err := input.normalized()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Item{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		ItemName:    input.ItemName,
		Description: input.Description,
		Unit:        input.Unit,
		Quantity:    input.Quantity,
		Rate:        input.Rate,
		Total:       LineTotal(input.Quantity, input.Rate),
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply replaces the editable fields and refreshes the line total
func (i *Item) Apply(input ItemInput) error {
	input, err := input.normalized()
	if err != nil {
		return err
	}

	i.ItemName = input.ItemName
	i.Description = input.Description
	i.Unit = input.Unit
	i.Quantity = input.Quantity
	i.Rate = input.Rate
	i.Total = LineTotal(input.Quantity, input.Rate)
	i.UpdatedAt = time.Now()
	return nil
}

// Input returns the editable fields of the item
func (i *Item) Input() ItemInput {
	return ItemInput{
		ItemName:    i.ItemName,
		Description: i.Description,
		Unit:        i.Unit,
		Quantity:    i.Quantity,
		Rate:        i.Rate,
	}
}

func (in ItemInput) normalized() (ItemInput, error) {
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.Description = strings.TrimSpace(in.Description)
	if in.Unit == "" {
		in.Unit = UnitPiece
	}

	if in.ItemName == "" {
		return in, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if len(in.ItemName) > 255 {
		return in, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot exceed 255 characters")
	}
	if !in.Unit.IsValid() {
		return in, shared.NewDomainError("INVALID_UNIT", "Unsupported unit: "+string(in.Unit))
	}
	if in.Quantity.LessThan(minQuantity) {
		return in, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 0.01")
	}
	if !shared.HasAtMostPlaces(in.Quantity, shared.MoneyPlaces) {
		return in, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot have more than 2 decimal places")
	}
	if in.Rate.IsNegative() {
		return in, shared.NewDomainError("INVALID_RATE", "Rate cannot be negative")
	}
	if !shared.HasAtMostPlaces(in.Rate, shared.MoneyPlaces) {
		return in, shared.NewDomainError("INVALID_RATE", "Rate cannot have more than 2 decimal places")
	}
	return in, nil
}
