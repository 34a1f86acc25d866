package persistence

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/settings"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// GetOrCreate returns the settings row, inserting the defaults on first use.
// Concurrent first readers race on the insert; the loser's insert is a no-op.
func (r *GormSettingsRepository) GetOrCreate(ctx context.Context) (*settings.CompanySettings, error) {
	var model models.CompanySettingsModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", models.SettingsSingletonID).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaults := models.CompanySettingsModelFromDomain(settings.NewDefaultSettings())
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(defaults).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).First(&model, "id = ?", models.SettingsSingletonID).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save writes the settings row
func (r *GormSettingsRepository) Save(ctx context.Context, s *settings.CompanySettings) error {
	return r.db.WithContext(ctx).Save(models.CompanySettingsModelFromDomain(s)).Error
}

// Ensure GormSettingsRepository implements settings.Repository
var _ settings.Repository = (*GormSettingsRepository)(nil)
