package persistence

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/invoice"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an invoice with its items and takes a row lock on
// PostgreSQL. SQLite serializes writers on its own and has no FOR UPDATE.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findOne(query, id)
}

func (r *GormInvoiceRepository) findOne(query *gorm.DB, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := query.
		Preload("Items", itemOrder).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices matching the filter, items included
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoice.ListFilter) ([]invoice.Invoice, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)

	sortField := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir)).Order("invoice_number DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	// Preload Items to calculate item_count
	var invoiceModels []models.InvoiceModel
	if err := query.Preload("Items", itemOrder).Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter invoice.ListFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Summarize returns count and grand-total sum over the filter
func (r *GormInvoiceRepository) Summarize(ctx context.Context, filter invoice.ListFilter) (invoice.Summary, error) {
	var row struct {
		TotalInvoices int64
		TotalAmount   decimal.NullDecimal
	}
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Select("COUNT(*) AS total_invoices, SUM(grand_total) AS total_amount").
		Scan(&row).Error; err != nil {
		return invoice.Summary{}, err
	}

	summary := invoice.Summary{TotalInvoices: row.TotalInvoices, TotalAmount: decimal.Zero}
	if row.TotalAmount.Valid {
		summary.TotalAmount = shared.RoundMoney(row.TotalAmount.Decimal)
	}
	return summary, nil
}

// CountByStatus returns the number of invoices per status
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context) ([]invoice.StatusCount, error) {
	var counts []invoice.StatusCount
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// FindRecent returns the most recently created invoices
func (r *GormInvoiceRepository) FindRecent(ctx context.Context, limit int) ([]invoice.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Order("created_at DESC, invoice_number DESC").
		Limit(limit).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// FindRecentByCustomer returns a customer's most recently created invoices
func (r *GormInvoiceRepository) FindRecentByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]invoice.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, invoice_number DESC").
		Limit(limit).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// CountByCustomer counts all invoices referencing the customer
func (r *GormInvoiceRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PaidGrandTotals returns the grand totals of a customer's paid invoices
func (r *GormInvoiceRepository) PaidGrandTotals(ctx context.Context, customerID uuid.UUID) ([]decimal.Decimal, error) {
	var totals []decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("customer_id = ? AND status = ?", customerID, invoice.StatusPaid).
		Pluck("grand_total", &totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}

// LastNumberWithPrefix returns the number of the most recently created invoice
// issued under prefix, or "" when there is none. Numbers that merely share the
// prefix text, such as INV-500000 under INV, belong to another sequence and
// are skipped.
func (r *GormInvoiceRepository) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where(`invoice_number LIKE ? ESCAPE '\'`, prefixPattern(prefix)).
		Order("created_at DESC, invoice_number DESC").
		Select("invoice_number").
		Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()

	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return "", err
		}
		if invoice.IssuedUnder(number, prefix) {
			return number, nil
		}
	}
	return "", rows.Err()
}

// ExistsByNumber checks if an invoice number is already taken
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("invoice_number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the invoice and all of its items
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists.WithDetail("invoice_number", inv.InvoiceNumber)
		}
		return err
	}
	return nil
}

// SaveWithLock updates the invoice row if its stored version still equals
// inv.Version, then bumps the version
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	columns := models.InvoiceModelFromDomain(inv).HeaderColumns()
	columns["version"] = inv.Version + 1

	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	inv.Version++
	return nil
}

// Delete removes the invoice; its items go with it
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies the list filter without ordering or pagination
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoice.ListFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?",
			pattern, pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.InvoiceDate != nil {
		query = query.Where("invoice_date = ?", *filter.InvoiceDate)
	}
	if filter.StartDate != nil {
		query = query.Where("invoice_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("invoice_date <= ?", *filter.EndDate)
	}
	return query
}

func itemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

func toInvoices(invoiceModels []models.InvoiceModel) []invoice.Invoice {
	invoices := make([]invoice.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices
}

// Ensure GormInvoiceRepository implements invoice.Repository
var _ invoice.Repository = (*GormInvoiceRepository)(nil)
