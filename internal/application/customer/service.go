package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/invoice"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	recentInvoiceLimit = 5
	maxSearchResults   = 50
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo customer.Repository
	invoiceRepo  invoice.Repository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo customer.Repository, invoiceRepo invoice.Repository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	c, err := customer.NewCustomer(customer.Details{
		Name:        req.CustomerName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Pincode:     req.Pincode,
		GSTIN:       req.GSTIN,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailAvailable(ctx, c.Email, nil); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Customer created", zap.String("customer_id", c.ID.String()))
	response := ToCustomerResponse(c)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(c)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter ListFilter) ([]CustomerListResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "customer_name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
		Filters:  make(map[string]any),
	}.Normalize()

	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}
	if filter.City != "" {
		domainFilter.Filters["city"] = filter.City
	}
	if filter.State != "" {
		domainFilter.Filters["state"] = filter.State
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerListResponses(customers), total, nil
}

// Search finds active customers by name, phone or email for pickers
func (s *CustomerService) Search(ctx context.Context, query string) ([]CustomerListResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []CustomerListResponse{}, nil
	}

	customers, err := s.customerRepo.Search(ctx, query, maxSearchResults)
	if err != nil {
		return nil, err
	}
	return ToCustomerListResponses(customers), nil
}

// Update applies a partial update to a customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := c.Details()
	if req.CustomerName != nil {
		details.Name = *req.CustomerName
	}
	if req.PhoneNumber != nil {
		details.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		details.Email = *req.Email
	}
	if req.Address != nil {
		details.Address = *req.Address
	}
	if req.City != nil {
		details.City = *req.City
	}
	if req.State != nil {
		details.State = *req.State
	}
	if req.Pincode != nil {
		details.Pincode = *req.Pincode
	}
	if req.GSTIN != nil {
		details.GSTIN = *req.GSTIN
	}
	if req.Notes != nil {
		details.Notes = *req.Notes
	}

	if err := c.Update(details); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		c.SetActive(*req.IsActive)
	}

	if err := s.ensureEmailAvailable(ctx, c.Email, &c.ID); err != nil {
		return nil, err
	}

	if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(c)
	return &response, nil
}

// Delete removes a customer that never had invoices and deactivates one that
// did. The result says which of the two happened.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	invoiceCount, err := s.invoiceRepo.CountByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	mode := c.ResolveDeletion(invoiceCount)
	if mode == customer.DeletionModeRemove {
		err := s.customerRepo.Delete(ctx, id)
		switch {
		case err == nil:
			s.logger.Info("Customer deleted", zap.String("customer_id", id.String()))
			return &DeleteResult{ID: id, Action: mode}, nil
		case errors.Is(err, customer.ErrStillReferenced):
			// An invoice was created after the count
			mode = customer.DeletionModeDeactivate
		default:
			return nil, err
		}
	}

	c.Deactivate()
	if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Customer deactivated instead of deleted",
		zap.String("customer_id", id.String()),
		zap.Int64("invoice_count", invoiceCount))

	return &DeleteResult{ID: id, Action: mode}, nil
}

// Stats returns the customer with its most recent invoices and aggregate
func (s *CustomerService) Stats(ctx context.Context, id uuid.UUID) (*StatsResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	recent, err := s.invoiceRepo.FindRecentByCustomer(ctx, id, recentInvoiceLimit)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		Customer:       ToCustomerResponse(c),
		RecentInvoices: toRecentInvoices(recent),
		Stats: StatsSummary{
			TotalInvoices:        c.TotalInvoices,
			TotalAmount:          c.TotalAmount,
			AverageInvoiceAmount: c.AverageInvoiceAmount(),
		},
	}, nil
}

func (s *CustomerService) ensureEmailAvailable(ctx context.Context, email string, excludeID *uuid.UUID) error {
	if email == "" {
		return nil
	}
	exists, err := s.customerRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Customer with this email already exists").
			WithDetail("email", "Customer with this email already exists")
	}
	return nil
}
