package persistence

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/invoice"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceItemRepository implements invoice.ItemRepository using GORM
type GormInvoiceItemRepository struct {
	db *gorm.DB
}

// NewGormInvoiceItemRepository creates a new GormInvoiceItemRepository
func NewGormInvoiceItemRepository(db *gorm.DB) *GormInvoiceItemRepository {
	return &GormInvoiceItemRepository{db: db}
}

// FindByID finds an item by ID
func (r *GormInvoiceItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Item, error) {
	var model models.InvoiceItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice returns the items of an invoice ordered by sort order
func (r *GormInvoiceItemRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]invoice.Item, error) {
	var itemModels []models.InvoiceItemModel
	if err := itemOrder(r.db.WithContext(ctx)).
		Where("invoice_id = ?", invoiceID).
		Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]invoice.Item, len(itemModels))
	for i := range itemModels {
		items[i] = *itemModels[i].ToDomain()
	}
	return items, nil
}

// Create inserts an item
func (r *GormInvoiceItemRepository) Create(ctx context.Context, item *invoice.Item) error {
	return r.db.WithContext(ctx).Create(models.InvoiceItemModelFromDomain(item)).Error
}

// Save updates an item
func (r *GormInvoiceItemRepository) Save(ctx context.Context, item *invoice.Item) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"item_name":   item.ItemName,
			"description": item.Description,
			"unit":        item.Unit,
			"quantity":    item.Quantity,
			"rate":        item.Rate,
			"total":       item.Total,
			"sort_order":  item.SortOrder,
			"updated_at":  item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an item
func (r *GormInvoiceItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByInvoice removes every item of an invoice
func (r *GormInvoiceItemRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Delete(&models.InvoiceItemModel{}).Error
}

// Ensure GormInvoiceItemRepository implements invoice.ItemRepository
var _ invoice.ItemRepository = (*GormInvoiceItemRepository)(nil)
