package customer

import (
	"time"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	CustomerName string `json:"customer_name" binding:"required,min=1,max=255"`
	PhoneNumber  string `json:"phone_number" binding:"required,max=17"`
	Email        string `json:"email" binding:"omitempty,email,max=254"`
	Address      string `json:"address" binding:"max=2000"`
	City         string `json:"city" binding:"max=100"`
	State        string `json:"state" binding:"max=100"`
	Pincode      string `json:"pincode" binding:"max=10"`
	GSTIN        string `json:"gstin" binding:"max=15"`
	Notes        string `json:"notes"`
}

// UpdateCustomerRequest represents a partial customer update. Nil fields are
// left unchanged.
type UpdateCustomerRequest struct {
	CustomerName *string `json:"customer_name" binding:"omitempty,min=1,max=255"`
	PhoneNumber  *string `json:"phone_number" binding:"omitempty,max=17"`
	Email        *string `json:"email" binding:"omitempty,max=254"`
	Address      *string `json:"address" binding:"omitempty,max=2000"`
	City         *string `json:"city" binding:"omitempty,max=100"`
	State        *string `json:"state" binding:"omitempty,max=100"`
	Pincode      *string `json:"pincode" binding:"omitempty,max=10"`
	GSTIN        *string `json:"gstin" binding:"omitempty,max=15"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"is_active"`
}

// ListFilter carries the customer list query
type ListFilter struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	City     string `form:"city"`
	State    string `form:"state"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=customer_name created_at total_amount"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CustomerResponse is the full customer view
type CustomerResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerName  string          `json:"customer_name"`
	PhoneNumber   string          `json:"phone_number"`
	Email         string          `json:"email"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	Pincode       string          `json:"pincode"`
	GSTIN         string          `json:"gstin"`
	FullAddress   string          `json:"full_address"`
	IsActive      bool            `json:"is_active"`
	TotalInvoices int             `json:"total_invoices"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Notes         string          `json:"notes"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CustomerListResponse is the condensed view used in lists and search
type CustomerListResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerName  string          `json:"customer_name"`
	PhoneNumber   string          `json:"phone_number"`
	Email         string          `json:"email"`
	City          string          `json:"city"`
	IsActive      bool            `json:"is_active"`
	TotalInvoices int             `json:"total_invoices"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecentInvoice is an invoice row shown on the customer stats page
type RecentInvoice struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	Status        string          `json:"status"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// StatsSummary is the customer's paid-invoice aggregate
type StatsSummary struct {
	TotalInvoices        int             `json:"total_invoices"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	AverageInvoiceAmount decimal.Decimal `json:"average_invoice_amount"`
}

// StatsResponse combines a customer with its recent invoices
type StatsResponse struct {
	Customer       CustomerResponse `json:"customer"`
	RecentInvoices []RecentInvoice  `json:"recent_invoices"`
	Stats          StatsSummary     `json:"stats"`
}

// DeleteResult reports what a delete actually did
type DeleteResult struct {
	ID     uuid.UUID             `json:"id"`
	Action customer.DeletionMode `json:"action"`
}

// ToCustomerResponse converts a domain customer to its full view
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID,
		CustomerName:  c.Name,
		PhoneNumber:   c.PhoneNumber,
		Email:         c.Email,
		Address:       c.Address,
		City:          c.City,
		State:         c.State,
		Pincode:       c.Pincode,
		GSTIN:         c.GSTIN,
		FullAddress:   c.FullAddress(),
		IsActive:      c.IsActive,
		TotalInvoices: c.TotalInvoices,
		TotalAmount:   c.TotalAmount,
		Notes:         c.Notes,
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ToCustomerListResponse converts a domain customer to its list view
func ToCustomerListResponse(c *customer.Customer) CustomerListResponse {
	return CustomerListResponse{
		ID:            c.ID,
		CustomerName:  c.Name,
		PhoneNumber:   c.PhoneNumber,
		Email:         c.Email,
		City:          c.City,
		IsActive:      c.IsActive,
		TotalInvoices: c.TotalInvoices,
		TotalAmount:   c.TotalAmount,
		CreatedAt:     c.CreatedAt,
	}
}

// ToCustomerListResponses converts a slice of customers
func ToCustomerListResponses(customers []customer.Customer) []CustomerListResponse {
	out := make([]CustomerListResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerListResponse(&customers[i])
	}
	return out
}

func toRecentInvoices(invoices []invoice.Invoice) []RecentInvoice {
	out := make([]RecentInvoice, len(invoices))
	for i, inv := range invoices {
		out[i] = RecentInvoice{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   inv.InvoiceDate,
			Status:        inv.Status.String(),
			GrandTotal:    inv.GrandTotal,
		}
	}
	return out
}
