package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/billing/backend/internal/domain/customer"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	var customerModels []models.CustomerModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)

	if err := query.Find(&customerModels).Error; err != nil {
		return nil, err
	}
	return toCustomers(customerModels), nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Search finds active customers by name, phone or email
func (r *GormCustomerRepository) Search(ctx context.Context, query string, limit int) ([]customer.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []customer.Customer{}, nil
	}

	pattern := containsPattern(query)
	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("LOWER(customer_name) LIKE ? OR phone_number LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern).
		Order("customer_name ASC").
		Limit(limit).
		Find(&customerModels).Error; err != nil {
		return nil, err
	}
	return toCustomers(customerModels), nil
}

// FindTopByTotalAmount returns active customers ordered by total_amount desc
func (r *GormCustomerRepository) FindTopByTotalAmount(ctx context.Context, limit int) ([]customer.Customer, error) {
	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("total_amount DESC, customer_name ASC").
		Limit(limit).
		Find(&customerModels).Error; err != nil {
		return nil, err
	}
	return toCustomers(customerModels), nil
}

// ExistsByEmail checks whether another customer already uses the email
func (r *GormCustomerRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}

	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("email = ?", email)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	model := models.CustomerModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock writes the editable columns if the stored version still equals
// c.Version, then bumps the version. The paid-invoice aggregate is left alone;
// it is only written through UpdateAggregate.
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, c *customer.Customer) error {
	model := models.CustomerModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]any{
			"customer_name": model.CustomerName,
			"phone_number":  model.PhoneNumber,
			"email":         model.Email,
			"address":       model.Address,
			"city":          model.City,
			"state":         model.State,
			"pincode":       model.Pincode,
			"gstin":         model.GSTIN,
			"is_active":     model.IsActive,
			"notes":         model.Notes,
			"updated_at":    model.UpdatedAt,
			"version":       c.Version + 1,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	c.Version++
	return nil
}

// UpdateAggregate writes total_invoices and total_amount only
func (r *GormCustomerRepository) UpdateAggregate(ctx context.Context, id uuid.UUID, agg customer.Aggregate) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_invoices": agg.Count,
			"total_amount":   shared.RoundMoney(agg.Amount),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return customer.ErrStillReferenced
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, CustomerSortFields, "customer_name")
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCustomerRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("LOWER(customer_name) LIKE ? OR phone_number LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "city":
			query = query.Where("LOWER(city) = LOWER(?)", value)
		case "state":
			query = query.Where("LOWER(state) = LOWER(?)", value)
		}
	}

	return query
}

func toCustomers(customerModels []models.CustomerModel) []customer.Customer {
	customers := make([]customer.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers
}

// Ensure GormCustomerRepository implements customer.Repository
var _ customer.Repository = (*GormCustomerRepository)(nil)
