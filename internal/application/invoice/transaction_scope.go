package invoice

import (
	"context"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/invoice"
)

// TransactionScope provides transactional access to the billing repositories.
// Every invoice write and the recomputes that follow it run inside one
// Execute call, so they commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories that share the
// current transaction.
//
// Aggregate boundary notes:
//   - InvoiceRepo: the Invoice aggregate root. Header fields, status and totals
//     are written through SaveWithLock.
//   - ItemRepo: line items are children of Invoice but are stored and changed
//     one row at a time, so totals are recomputed from this repository.
//   - CustomerRepo: only used to read the customer and to write its derived
//     paid-invoice aggregate.
type TransactionalRepositories interface {
	InvoiceRepo() invoice.Repository
	ItemRepo() invoice.ItemRepository
	CustomerRepo() customer.Repository
}

// NoOpTransactionScope runs the function against plain repositories without a
// transaction. Used in unit tests.
type NoOpTransactionScope struct {
	invoiceRepo  invoice.Repository
	itemRepo     invoice.ItemRepository
	customerRepo customer.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo invoice.Repository,
	itemRepo invoice.ItemRepository,
	customerRepo customer.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:  invoiceRepo,
		itemRepo:     itemRepo,
		customerRepo: customerRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() invoice.Repository {
	return s.invoiceRepo
}

// ItemRepo returns the invoice item repository.
func (s *NoOpTransactionScope) ItemRepo() invoice.ItemRepository {
	return s.itemRepo
}

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() customer.Repository {
	return s.customerRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
