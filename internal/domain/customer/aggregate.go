package customer

import (
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate is the count and grand-total sum of a customer's paid invoices
type Aggregate struct {
	Count  int
	Amount decimal.Decimal
}

// CalculateAggregate sums the grand totals of paid invoices exactly
func CalculateAggregate(paidGrandTotals []decimal.Decimal) Aggregate {
	sum := decimal.Zero
	for _, total := range paidGrandTotals {
		sum = sum.Add(total)
	}
	return Aggregate{Count: len(paidGrandTotals), Amount: sum}
}

// DeletionMode says what deleting a customer actually does
type DeletionMode string

const (
	// DeletionModeRemove hard-deletes the row
	DeletionModeRemove DeletionMode = "deleted"
	// DeletionModeDeactivate keeps the row and clears IsActive
	DeletionModeDeactivate DeletionMode = "deactivated"
)

// ErrStillReferenced is returned by Repository.Delete when invoices still
// point at the customer
var ErrStillReferenced = shared.NewDomainError("CUSTOMER_REFERENCED", "Customer is referenced by invoices")

// ResolveDeletion picks the deletion mode. Any customer that has invoices,
// paid or not, is only deactivated; invoices reference it with a restricting
// foreign key and keep snapshots of its name and phone.
func (c *Customer) ResolveDeletion(invoiceCount int64) DeletionMode {
	if c.TotalInvoices > 0 || invoiceCount > 0 {
		return DeletionModeDeactivate
	}
	return DeletionModeRemove
}
