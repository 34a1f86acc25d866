package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/invoice"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() (*CustomerService, *MockCustomerRepository, *MockInvoiceRepository) {
	customerRepo := new(MockCustomerRepository)
	invoiceRepo := new(MockInvoiceRepository)
	return NewCustomerService(customerRepo, invoiceRepo, zap.NewNop()), customerRepo, invoiceRepo
}

func newTestCustomer(t *testing.T) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(customer.Details{
		Name:        "Acme Builders",
		PhoneNumber: "+919876543210",
		Email:       "accounts@acme.test",
		City:        "Pune",
	})
	require.NoError(t, err)
	return c
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer", func(t *testing.T) {
		svc, customerRepo, _ := newTestService()
		customerRepo.On("ExistsByEmail", ctx, "accounts@acme.test", (*uuid.UUID)(nil)).Return(false, nil)
		customerRepo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil)

		resp, err := svc.Create(ctx, CreateCustomerRequest{
			CustomerName: "Acme Builders",
			PhoneNumber:  "+91 98765-43210",
			Email:        "Accounts@Acme.test",
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme Builders", resp.CustomerName)
		assert.True(t, resp.IsActive)
		assert.Equal(t, 0, resp.TotalInvoices)
		assert.True(t, resp.TotalAmount.IsZero())
		customerRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, customerRepo, _ := newTestService()
		customerRepo.On("ExistsByEmail", ctx, "accounts@acme.test", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, CreateCustomerRequest{
			CustomerName: "Acme Builders",
			PhoneNumber:  "+919876543210",
			Email:        "accounts@acme.test",
		})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		customerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("skips email check without email", func(t *testing.T) {
		svc, customerRepo, _ := newTestService()
		customerRepo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil)

		_, err := svc.Create(ctx, CreateCustomerRequest{
			CustomerName: "Walk-in",
			PhoneNumber:  "9876543210",
		})

		require.NoError(t, err)
		customerRepo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects invalid phone", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Create(ctx, CreateCustomerRequest{CustomerName: "Acme", PhoneNumber: "12345"})

		de, ok := shared.IsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_PHONE", de.Code)
	})
}

func TestCustomerService_Update(t *testing.T) {
	ctx := context.Background()
	svc, customerRepo, _ := newTestService()
	c := newTestCustomer(t)

	customerRepo.On("FindByID", ctx, c.ID).Return(c, nil)
	customerRepo.On("ExistsByEmail", ctx, "billing@acme.test", &c.ID).Return(false, nil)
	customerRepo.On("SaveWithLock", ctx, c).Return(nil)

	email := "billing@acme.test"
	city := "Mumbai"
	resp, err := svc.Update(ctx, c.ID, UpdateCustomerRequest{Email: &email, City: &city})

	require.NoError(t, err)
	assert.Equal(t, "billing@acme.test", resp.Email)
	assert.Equal(t, "Mumbai", resp.City)
	assert.Equal(t, "Acme Builders", resp.CustomerName)
	customerRepo.AssertExpectations(t)
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("customer without invoices is removed", func(t *testing.T) {
		svc, customerRepo, invoiceRepo := newTestService()
		c := newTestCustomer(t)
		customerRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		invoiceRepo.On("CountByCustomer", ctx, c.ID).Return(int64(0), nil)
		customerRepo.On("Delete", ctx, c.ID).Return(nil)

		result, err := svc.Delete(ctx, c.ID)

		require.NoError(t, err)
		assert.Equal(t, customer.DeletionModeRemove, result.Action)
		customerRepo.AssertExpectations(t)
	})

	t.Run("customer with draft invoices is deactivated", func(t *testing.T) {
		svc, customerRepo, invoiceRepo := newTestService()
		c := newTestCustomer(t)
		customerRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		invoiceRepo.On("CountByCustomer", ctx, c.ID).Return(int64(2), nil)
		customerRepo.On("SaveWithLock", ctx, c).Return(nil)

		result, err := svc.Delete(ctx, c.ID)

		require.NoError(t, err)
		assert.Equal(t, customer.DeletionModeDeactivate, result.Action)
		assert.False(t, c.IsActive)
		customerRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("customer with paid aggregate is deactivated", func(t *testing.T) {
		svc, customerRepo, invoiceRepo := newTestService()
		c := newTestCustomer(t)
		c.ApplyAggregate(customer.Aggregate{Count: 1, Amount: decimal.NewFromInt(100)})
		customerRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		invoiceRepo.On("CountByCustomer", ctx, c.ID).Return(int64(0), nil)
		customerRepo.On("SaveWithLock", ctx, c).Return(nil)

		result, err := svc.Delete(ctx, c.ID)

		require.NoError(t, err)
		assert.Equal(t, customer.DeletionModeDeactivate, result.Action)
	})

	t.Run("invoice created after the count falls back to deactivation", func(t *testing.T) {
		svc, customerRepo, invoiceRepo := newTestService()
		c := newTestCustomer(t)
		customerRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		invoiceRepo.On("CountByCustomer", ctx, c.ID).Return(int64(0), nil)
		customerRepo.On("Delete", ctx, c.ID).Return(customer.ErrStillReferenced)
		customerRepo.On("SaveWithLock", ctx, c).Return(nil)

		result, err := svc.Delete(ctx, c.ID)

		require.NoError(t, err)
		assert.Equal(t, customer.DeletionModeDeactivate, result.Action)
		assert.False(t, c.IsActive)
		customerRepo.AssertExpectations(t)
	})

	t.Run("other delete failures are returned", func(t *testing.T) {
		svc, customerRepo, invoiceRepo := newTestService()
		c := newTestCustomer(t)
		customerRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		invoiceRepo.On("CountByCustomer", ctx, c.ID).Return(int64(0), nil)
		customerRepo.On("Delete", ctx, c.ID).Return(errors.New("connection reset"))

		_, err := svc.Delete(ctx, c.ID)

		assert.EqualError(t, err, "connection reset")
		customerRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("missing customer", func(t *testing.T) {
		svc, customerRepo, _ := newTestService()
		id := uuid.New()
		customerRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Delete(ctx, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCustomerService_Stats(t *testing.T) {
	ctx := context.Background()
	svc, customerRepo, invoiceRepo := newTestService()
	c := newTestCustomer(t)
	c.ApplyAggregate(customer.Aggregate{Count: 2, Amount: decimal.RequireFromString("301.00")})

	recent := []invoice.Invoice{{InvoiceNumber: "INV-500001", Status: invoice.StatusPaid, GrandTotal: decimal.RequireFromString("150.50")}}
	customerRepo.On("FindByID", ctx, c.ID).Return(c, nil)
	invoiceRepo.On("FindRecentByCustomer", ctx, c.ID, 5).Return(recent, nil)

	stats, err := svc.Stats(ctx, c.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Stats.TotalInvoices)
	assert.Equal(t, "150.5", stats.Stats.AverageInvoiceAmount.String())
	require.Len(t, stats.RecentInvoices, 1)
	assert.Equal(t, "paid", stats.RecentInvoices[0].Status)
}

func TestCustomerService_ListAndSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("list passes filters", func(t *testing.T) {
		svc, customerRepo, _ := newTestService()
		active := true
		matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["is_active"] == true && f.Filters["city"] == "Pune" &&
				f.OrderBy == "customer_name" && f.OrderDir == "asc" && f.Page == 1 && f.PageSize == 20
		})
		customerRepo.On("FindAll", ctx, matchFilter).Return([]customer.Customer{*newTestCustomer(t)}, nil)
		customerRepo.On("Count", ctx, matchFilter).Return(int64(1), nil)

		items, total, err := svc.List(ctx, ListFilter{IsActive: &active, City: "Pune"})

		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, int64(1), total)
	})

	t.Run("blank search returns nothing", func(t *testing.T) {
		svc, customerRepo, _ := newTestService()

		items, err := svc.Search(ctx, "   ")

		require.NoError(t, err)
		assert.Empty(t, items)
		customerRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("search is capped", func(t *testing.T) {
		svc, customerRepo, _ := newTestService()
		customerRepo.On("Search", ctx, "acme", 50).Return([]customer.Customer{}, nil)

		_, err := svc.Search(ctx, " acme ")

		require.NoError(t, err)
		customerRepo.AssertExpectations(t)
	})
}
