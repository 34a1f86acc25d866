package customer

import (
	"context"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for customer persistence
type Repository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindAll finds customers matching the filter. Supported filter keys:
	// is_active (bool), city (string), state (string)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Search finds active customers by name, phone or email
	Search(ctx context.Context, query string, limit int) ([]Customer, error)

	// FindTopByTotalAmount returns active customers ordered by total_amount desc
	FindTopByTotalAmount(ctx context.Context, limit int) ([]Customer, error)

	// ExistsByEmail checks whether another customer already uses the email
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// SaveWithLock saves a customer with optimistic locking (version check)
	SaveWithLock(ctx context.Context, customer *Customer) error

	// UpdateAggregate writes total_invoices and total_amount only
	UpdateAggregate(ctx context.Context, id uuid.UUID, agg Aggregate) error

	// Delete hard-deletes a customer. It returns ErrStillReferenced when an
	// invoice references the customer.
	Delete(ctx context.Context, id uuid.UUID) error
}
