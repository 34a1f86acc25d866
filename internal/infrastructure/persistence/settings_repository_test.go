package persistence

import (
	"context"
	"testing"

	"github.com/billing/backend/internal/domain/settings"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSettingsRepository(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDatabase(t)
	repo := NewGormSettingsRepository(db.DB)

	first, err := repo.GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultInvoicePrefix, first.InvoicePrefix)
	assert.True(t, first.DefaultTaxRate.Equal(settings.DefaultTaxRate))

	next := *first
	next.InvoicePrefix = "ACM-"
	next.PaymentDueDays = 15
	require.NoError(t, first.Update(next))
	first.SetLogo("logos/company.png")
	require.NoError(t, repo.Save(ctx, first))

	again, err := repo.GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ACM-", again.InvoicePrefix)
	assert.Equal(t, 15, again.PaymentDueDays)
	assert.Equal(t, "logos/company.png", again.LogoKey)

	var count int64
	require.NoError(t, db.DB.Model(&models.CompanySettingsModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
