package invoice

import (
	"time"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of invoice and due dates
const DateLayout = "2006-01-02"

// =============================================================================
// Requests
// =============================================================================

// ItemRequest is one invoice line in a create, replace or add request
type ItemRequest struct {
	ItemName    string          `json:"item_name" binding:"required,min=1,max=255"`
	Description string          `json:"description"`
	Unit        string          `json:"unit" binding:"omitempty,oneof=piece 'sq meter' meter kg ton box set"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// UpdateItemRequest is a partial item update. Nil fields are left unchanged.
type UpdateItemRequest struct {
	ItemName    *string          `json:"item_name" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit" binding:"omitempty,oneof=piece 'sq meter' meter kg ton box set"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Rate        *decimal.Decimal `json:"rate"`
}

// CreateInvoiceRequest represents a request to create an invoice. Omitted
// dates, tax rate and terms fall back to the company settings.
type CreateInvoiceRequest struct {
	CustomerID         uuid.UUID        `json:"customer_id" binding:"required"`
	InvoiceDate        string           `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate            string           `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	TaxRate            *decimal.Decimal `json:"tax_rate"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount"`
	Notes              string           `json:"notes"`
	TermsAndConditions *string          `json:"terms_and_conditions"`
	Items              []ItemRequest    `json:"items" binding:"required,min=1,dive"`
	CreatedBy          *uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// UpdateInvoiceRequest is a partial invoice update. Items, when present,
// replace every existing line.
type UpdateInvoiceRequest struct {
	InvoiceDate        *string          `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate            *string          `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	TaxRate            *decimal.Decimal `json:"tax_rate"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount"`
	Notes              *string          `json:"notes"`
	TermsAndConditions *string          `json:"terms_and_conditions"`
	Items              *[]ItemRequest   `json:"items" binding:"omitempty,dive"`
}

// ChangeStatusRequest moves an invoice through its lifecycle
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=sent paid cancelled"`
}

// ListFilter carries the invoice list query
type ListFilter struct {
	Search      string     `form:"search"`
	Status      string     `form:"status" binding:"omitempty,oneof=draft sent paid cancelled"`
	CustomerID  *uuid.UUID `form:"customer_id"`
	InvoiceDate string     `form:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	StartDate   string     `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string     `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by" binding:"omitempty,oneof=invoice_date created_at grand_total"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Responses
// =============================================================================

// ItemResponse represents an invoice line in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	ItemName    string          `json:"item_name"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	UnitLabel   string          `json:"unit_label"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Total       decimal.Decimal `json:"total"`
	SortOrder   int             `json:"order"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CustomerDetails is the live customer record shown next to an invoice
type CustomerDetails struct {
	ID            uuid.UUID       `json:"id"`
	CustomerName  string          `json:"customer_name"`
	PhoneNumber   string          `json:"phone_number"`
	Email         string          `json:"email"`
	FullAddress   string          `json:"full_address"`
	GSTIN         string          `json:"gstin"`
	IsActive      bool            `json:"is_active"`
	TotalInvoices int             `json:"total_invoices"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// InvoiceResponse is the full invoice view
type InvoiceResponse struct {
	ID                 uuid.UUID        `json:"id"`
	InvoiceNumber      string           `json:"invoice_number"`
	CustomerID         uuid.UUID        `json:"customer"`
	CustomerDetails    *CustomerDetails `json:"customer_details,omitempty"`
	CustomerName       string           `json:"customer_name"`
	CustomerPhone      string           `json:"customer_phone"`
	InvoiceDate        string           `json:"invoice_date"`
	DueDate            *string          `json:"due_date"`
	Status             string           `json:"status"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	TaxRate            decimal.Decimal  `json:"tax_rate"`
	TaxAmount          decimal.Decimal  `json:"tax_amount"`
	DiscountAmount     decimal.Decimal  `json:"discount_amount"`
	GrandTotal         decimal.Decimal  `json:"grand_total"`
	Notes              string           `json:"notes"`
	TermsAndConditions string           `json:"terms_and_conditions"`
	Items              []ItemResponse   `json:"items"`
	ItemCount          int              `json:"item_count"`
	CreatedBy          *uuid.UUID       `json:"created_by"`
	Version            int              `json:"version"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// InvoiceListResponse is the condensed view used in lists
type InvoiceListResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer"`
	CustomerName  string          `json:"customer_name"`
	InvoiceDate   string          `json:"invoice_date"`
	Status        string          `json:"status"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SummaryResponse is a count and amount over a set of invoices
type SummaryResponse struct {
	TotalInvoices int64           `json:"total_invoices"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// ListResult is one page of invoices plus the summary over the whole filter
type ListResult struct {
	Items   []InvoiceListResponse
	Total   int64
	Page    int
	Size    int
	Summary SummaryResponse
}

// TopCustomer is a row of the dashboard's best customers
type TopCustomer struct {
	ID            uuid.UUID       `json:"id"`
	CustomerName  string          `json:"customer_name"`
	PhoneNumber   string          `json:"phone_number"`
	TotalInvoices int             `json:"total_invoices"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// DashboardResponse holds the invoice dashboard figures
type DashboardResponse struct {
	Overall         SummaryResponse       `json:"overall"`
	ThisMonth       SummaryResponse       `json:"this_month"`
	LastMonth       SummaryResponse       `json:"last_month"`
	StatusBreakdown map[string]int64      `json:"status_breakdown"`
	RecentInvoices  []InvoiceListResponse `json:"recent_invoices"`
	TopCustomers    []TopCustomer         `json:"top_customers"`
}

// DeleteItemResult is returned after removing a line, with the new totals
type DeleteItemResult struct {
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	ItemCount  int             `json:"item_count"`
}

// =============================================================================
// Converters
// =============================================================================

// ToItemResponse converts a domain item
func ToItemResponse(item *invoice.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		ItemName:    item.ItemName,
		Description: item.Description,
		Unit:        string(item.Unit),
		UnitLabel:   item.Unit.Label(),
		Quantity:    item.Quantity,
		Rate:        item.Rate,
		Total:       item.Total,
		SortOrder:   item.SortOrder,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToInvoiceResponse converts a domain invoice. c may be nil.
func ToInvoiceResponse(inv *invoice.Invoice, c *customer.Customer) InvoiceResponse {
	items := make([]ItemResponse, len(inv.Items))
	for i := range inv.Items {
		items[i] = ToItemResponse(&inv.Items[i])
	}

	resp := InvoiceResponse{
		ID:                 inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		CustomerID:         inv.CustomerID,
		CustomerName:       inv.CustomerName(),
		CustomerPhone:      inv.CustomerPhone(),
		InvoiceDate:        formatDate(inv.InvoiceDate),
		DueDate:            formatOptionalDate(inv.DueDate),
		Status:             inv.Status.String(),
		Subtotal:           inv.Subtotal,
		TaxRate:            inv.TaxRate,
		TaxAmount:          inv.TaxAmount,
		DiscountAmount:     inv.DiscountAmount,
		GrandTotal:         inv.GrandTotal,
		Notes:              inv.Notes,
		TermsAndConditions: inv.TermsAndConditions,
		Items:              items,
		ItemCount:          inv.ItemCount(),
		CreatedBy:          inv.CreatedBy,
		Version:            inv.Version,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}
	if c != nil {
		resp.CustomerDetails = toCustomerDetails(c)
	}
	return resp
}

// ToInvoiceListResponse converts a domain invoice to its list view
func ToInvoiceListResponse(inv *invoice.Invoice) InvoiceListResponse {
	return InvoiceListResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName(),
		InvoiceDate:   formatDate(inv.InvoiceDate),
		Status:        inv.Status.String(),
		GrandTotal:    inv.GrandTotal,
		ItemCount:     inv.ItemCount(),
		CreatedAt:     inv.CreatedAt,
	}
}

// ToInvoiceListResponses converts a slice of invoices
func ToInvoiceListResponses(invoices []invoice.Invoice) []InvoiceListResponse {
	out := make([]InvoiceListResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceListResponse(&invoices[i])
	}
	return out
}

func toCustomerDetails(c *customer.Customer) *CustomerDetails {
	return &CustomerDetails{
		ID:            c.ID,
		CustomerName:  c.Name,
		PhoneNumber:   c.PhoneNumber,
		Email:         c.Email,
		FullAddress:   c.FullAddress(),
		GSTIN:         c.GSTIN,
		IsActive:      c.IsActive,
		TotalInvoices: c.TotalInvoices,
		TotalAmount:   c.TotalAmount,
	}
}

func toSummaryResponse(s invoice.Summary) SummaryResponse {
	return SummaryResponse{TotalInvoices: s.TotalInvoices, TotalAmount: s.TotalAmount}
}

func (r ItemRequest) toInput() invoice.ItemInput {
	return invoice.ItemInput{
		ItemName:    r.ItemName,
		Description: r.Description,
		Unit:        invoice.Unit(r.Unit),
		Quantity:    r.Quantity,
		Rate:        r.Rate,
	}
}

func toItemInputs(reqs []ItemRequest) []invoice.ItemInput {
	inputs := make([]invoice.ItemInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = r.toInput()
	}
	return inputs
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}
