// Package customer holds the Customer aggregate: billing contact details plus
// the derived paid-invoice aggregate.
package customer

import (
	"regexp"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	phoneRegex      = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	phoneStripRegex = regexp.MustCompile(`[^\d+]`)
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Details are the caller-editable fields of a customer
type Details struct {
	Name        string
	PhoneNumber string
	Email       string
	Address     string
	City        string
	State       string
	Pincode     string
	GSTIN       string
	Notes       string
}

// Customer is a billing party. TotalInvoices and TotalAmount are derived from
// the customer's paid invoices and are only written through ApplyAggregate.
type Customer struct {
	shared.BaseAggregateRoot
	Name          string
	PhoneNumber   string
	Email         string
	Address       string
	City          string
	State         string
	Pincode       string
	GSTIN         string
	Notes         string
	IsActive      bool
	TotalInvoices int
	TotalAmount   decimal.Decimal
}

// NewCustomer creates an active customer with an empty aggregate
func NewCustomer(details Details) (*Customer, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		IsActive:          true,
		TotalAmount:       decimal.Zero,
	}
	c.apply(details)
	return c, nil
}

// Update replaces the editable fields
func (c *Customer) Update(details Details) error {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	c.apply(details)
	c.Touch()
	return nil
}

// Details returns the current editable fields
func (c *Customer) Details() Details {
	return Details{
		Name:        c.Name,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		Pincode:     c.Pincode,
		GSTIN:       c.GSTIN,
		Notes:       c.Notes,
	}
}

// SetActive toggles whether new invoices may be raised for the customer
func (c *Customer) SetActive(active bool) {
	if c.IsActive == active {
		return
	}
	c.IsActive = active
	c.Touch()
}

// Deactivate marks the customer inactive, keeping the row for history
func (c *Customer) Deactivate() {
	c.SetActive(false)
}

// ApplyAggregate stores the recomputed paid-invoice aggregate
func (c *Customer) ApplyAggregate(agg Aggregate) {
	c.TotalInvoices = agg.Count
	c.TotalAmount = shared.RoundMoney(agg.Amount)
	c.UpdatedAt = time.Now()
}

// AverageInvoiceAmount returns TotalAmount / TotalInvoices, or zero
func (c *Customer) AverageInvoiceAmount() decimal.Decimal {
	if c.TotalInvoices == 0 {
		return decimal.Zero
	}
	return c.TotalAmount.Div(decimal.NewFromInt(int64(c.TotalInvoices))).Round(shared.MoneyPlaces)
}

// FullAddress returns the formatted postal address
func (c *Customer) FullAddress() string {
	parts := make([]string, 0, 4)
	if c.Address != "" {
		parts = append(parts, c.Address)
	}
	if c.City != "" {
		parts = append(parts, c.City)
	}
	if c.State != "" {
		parts = append(parts, c.State)
	}
	if c.Pincode != "" {
		parts = append(parts, "PIN: "+c.Pincode)
	}
	if len(parts) == 0 {
		return "No address provided"
	}
	return strings.Join(parts, ", ")
}

func (c *Customer) apply(d Details) {
	c.Name = d.Name
	c.PhoneNumber = d.PhoneNumber
	c.Email = d.Email
	c.Address = d.Address
	c.City = d.City
	c.State = d.State
	c.Pincode = d.Pincode
	c.GSTIN = d.GSTIN
	c.Notes = d.Notes
}

func (d Details) normalized() Details {
	d.Name = strings.TrimSpace(d.Name)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Address = strings.TrimSpace(d.Address)
	d.City = strings.TrimSpace(d.City)
	d.State = strings.TrimSpace(d.State)
	d.Pincode = strings.TrimSpace(d.Pincode)
	d.GSTIN = strings.ToUpper(strings.TrimSpace(d.GSTIN))
	return d
}

func (d Details) validate() error {
	if d.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(d.Name) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 255 characters")
	}
	if err := ValidatePhone(d.PhoneNumber); err != nil {
		return err
	}
	if d.Email != "" && (len(d.Email) > 255 || !emailRegex.MatchString(d.Email)) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(d.City) > 100 || len(d.State) > 100 {
		return shared.NewDomainError("INVALID_ADDRESS", "City and state cannot exceed 100 characters")
	}
	if len(d.Pincode) > 10 {
		return shared.NewDomainError("INVALID_PINCODE", "PIN code cannot exceed 10 characters")
	}
	if len(d.GSTIN) > 15 {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN cannot exceed 15 characters")
	}
	return nil
}

// ValidatePhone checks a phone number once spaces and punctuation are removed
func ValidatePhone(phone string) error {
	if phone == "" {
		return shared.NewDomainError("INVALID_PHONE", "Phone number is required")
	}
	clean := phoneStripRegex.ReplaceAllString(phone, "")
	if len(phone) > 15 || !phoneRegex.MatchString(clean) {
		return shared.NewDomainError("INVALID_PHONE", "Phone number must be 9-15 digits. Format: +999999999")
	}
	return nil
}
