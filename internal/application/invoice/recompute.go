package invoice

import (
	"context"
	"fmt"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/invoice"
	"github.com/google/uuid"
)

// recalculateInvoiceTotals re-reads the invoice's items inside the current
// transaction, recomputes subtotal, tax and grand total from them and writes
// the invoice with a version check.
func recalculateInvoiceTotals(ctx context.Context, repos TransactionalRepositories, inv *invoice.Invoice) error {
	items, err := repos.ItemRepo().FindByInvoice(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to load invoice items: %w", err)
	}

	inv.Items = items
	inv.ApplyTotals(invoice.CalculateTotals(invoice.LinesOf(items), inv.TaxRate, inv.DiscountAmount))

	return repos.InvoiceRepo().SaveWithLock(ctx, inv)
}

// recalculateCustomerAggregate recounts the customer's paid invoices and
// stores the count and grand-total sum on the customer.
func recalculateCustomerAggregate(ctx context.Context, repos TransactionalRepositories, customerID uuid.UUID) error {
	totals, err := repos.InvoiceRepo().PaidGrandTotals(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to load paid invoice totals: %w", err)
	}

	return repos.CustomerRepo().UpdateAggregate(ctx, customerID, customer.CalculateAggregate(totals))
}
