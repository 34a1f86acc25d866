package settings

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/settings"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetOrCreate(ctx context.Context) (*settings.CompanySettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.CompanySettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, cs *settings.CompanySettings) error {
	args := m.Called(ctx, cs)
	return args.Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), time.Time{}, args.Error(1)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	de, ok := shared.IsDomainError(err)
	require.True(t, ok, "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func validUpdate() UpdateSettingsRequest {
	return UpdateSettingsRequest{
		CompanyName:        "Acme Metals",
		CompanyAddress:     "7 Forge Road",
		PhoneNumber:        "+919876543210",
		Email:              "Billing@Acme.test",
		Website:            "https://acme.test",
		GSTIN:              "29abcde1234f1z5",
		DefaultTaxRate:     decimal.RequireFromString("12.50"),
		TaxLabel:           "VAT",
		InvoicePrefix:      "ACM-",
		InvoiceStartNumber: 1000,
		PaymentDueDays:     15,
	}
}

func TestSettingsService_Get(t *testing.T) {
	t.Run("returns defaults without logo", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		repo.On("GetOrCreate", mock.Anything).Return(settings.NewDefaultSettings(), nil)
		svc := NewSettingsService(repo, nil, 0, zap.NewNop())

		resp, err := svc.Get(context.Background())

		require.NoError(t, err)
		assert.Equal(t, settings.DefaultCompanyName, resp.CompanyName)
		assert.Equal(t, "INV-", resp.InvoicePrefix)
		assert.True(t, resp.DefaultTaxRate.Equal(decimal.NewFromInt(18)))
		assert.Empty(t, resp.LogoURL)
	})

	t.Run("resolves logo URL", func(t *testing.T) {
		cs := settings.NewDefaultSettings()
		cs.SetLogo("logos/company.png")
		repo := new(MockSettingsRepository)
		repo.On("GetOrCreate", mock.Anything).Return(cs, nil)
		storage := new(MockObjectStorage)
		storage.On("GenerateDownloadURL", mock.Anything, "logos/company.png", time.Duration(0)).
			Return("https://cdn.test/logos/company.png", nil)
		svc := NewSettingsService(repo, storage, 0, zap.NewNop())

		resp, err := svc.Public(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/logos/company.png", resp.LogoURL)
		assert.Equal(t, "GST", resp.TaxLabel)
	})

	t.Run("ignores logo URL failures", func(t *testing.T) {
		cs := settings.NewDefaultSettings()
		cs.SetLogo("logos/company.png")
		repo := new(MockSettingsRepository)
		repo.On("GetOrCreate", mock.Anything).Return(cs, nil)
		storage := new(MockObjectStorage)
		storage.On("GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("s3 down"))
		svc := NewSettingsService(repo, storage, 0, zap.NewNop())

		resp, err := svc.Get(context.Background())

		require.NoError(t, err)
		assert.Empty(t, resp.LogoURL)
	})
}

func TestSettingsService_Update(t *testing.T) {
	t.Run("replaces fields and normalizes", func(t *testing.T) {
		cs := settings.NewDefaultSettings()
		repo := new(MockSettingsRepository)
		repo.On("GetOrCreate", mock.Anything).Return(cs, nil)
		repo.On("Save", mock.Anything, cs).Return(nil)
		svc := NewSettingsService(repo, nil, 0, zap.NewNop())

		resp, err := svc.Update(context.Background(), validUpdate())

		require.NoError(t, err)
		assert.Equal(t, "Acme Metals", resp.CompanyName)
		assert.Equal(t, "billing@acme.test", resp.Email)
		assert.Equal(t, "29ABCDE1234F1Z5", resp.GSTIN)
		assert.Equal(t, "ACM-", cs.InvoicePrefix)
		assert.Equal(t, int64(1000), cs.InvoiceStartNumber)
		repo.AssertExpectations(t)
	})

	t.Run("rejects prefix with digits", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		repo.On("GetOrCreate", mock.Anything).Return(settings.NewDefaultSettings(), nil)
		svc := NewSettingsService(repo, nil, 0, zap.NewNop())

		req := validUpdate()
		req.InvoicePrefix = "INV2-"
		_, err := svc.Update(context.Background(), req)

		requireCode(t, err, "INVALID_INVOICE_PREFIX")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects tax rate above 100", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		repo.On("GetOrCreate", mock.Anything).Return(settings.NewDefaultSettings(), nil)
		svc := NewSettingsService(repo, nil, 0, zap.NewNop())

		req := validUpdate()
		req.DefaultTaxRate = decimal.NewFromInt(101)
		_, err := svc.Update(context.Background(), req)

		requireCode(t, err, "INVALID_TAX_RATE")
	})
}

func TestSettingsService_Patch(t *testing.T) {
	cs := settings.NewDefaultSettings()
	repo := new(MockSettingsRepository)
	repo.On("GetOrCreate", mock.Anything).Return(cs, nil)
	repo.On("Save", mock.Anything, cs).Return(nil)
	svc := NewSettingsService(repo, nil, 0, zap.NewNop())

	days := 45
	label := "IGST"
	resp, err := svc.Patch(context.Background(), PatchSettingsRequest{
		PaymentDueDays: &days,
		TaxLabel:       &label,
	})

	require.NoError(t, err)
	assert.Equal(t, 45, resp.PaymentDueDays)
	assert.Equal(t, "IGST", resp.TaxLabel)
	assert.Equal(t, settings.DefaultCompanyName, resp.CompanyName)
	assert.Equal(t, "INV-", resp.InvoicePrefix)
}

func TestSettingsService_UploadLogo(t *testing.T) {
	t.Run("uploads and replaces previous logo", func(t *testing.T) {
		cs := settings.NewDefaultSettings()
		cs.SetLogo("logos/old.png")
		repo := new(MockSettingsRepository)
		repo.On("GetOrCreate", mock.Anything).Return(cs, nil)
		repo.On("Save", mock.Anything, cs).Return(nil)
		storage := new(MockObjectStorage)
		storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "logos/company-") && strings.HasSuffix(key, ".png")
		}), pngHeader, "image/png").Return(nil)
		storage.On("DeleteObject", mock.Anything, "logos/old.png").Return(nil)
		storage.On("GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything).
			Return("https://cdn.test/logo.png", nil)
		svc := NewSettingsService(repo, storage, 0, zap.NewNop())

		resp, err := svc.UploadLogo(context.Background(), LogoUpload{Filename: "logo.png", Data: pngHeader})

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/logo.png", resp.LogoURL)
		assert.NotEqual(t, "logos/old.png", cs.LogoKey)
		storage.AssertExpectations(t)
	})

	t.Run("accepts svg", func(t *testing.T) {
		svg := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`)
		cs := settings.NewDefaultSettings()
		repo := new(MockSettingsRepository)
		repo.On("GetOrCreate", mock.Anything).Return(cs, nil)
		repo.On("Save", mock.Anything, cs).Return(nil)
		storage := new(MockObjectStorage)
		storage.On("Upload", mock.Anything, mock.Anything, svg, "image/svg+xml").Return(nil)
		storage.On("GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything).Return("u", nil)
		svc := NewSettingsService(repo, storage, 0, zap.NewNop())

		_, err := svc.UploadLogo(context.Background(), LogoUpload{Filename: "logo.svg", Data: svg})

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(cs.LogoKey, ".svg"))
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		storage := new(MockObjectStorage)
		svc := NewSettingsService(new(MockSettingsRepository), storage, 8, zap.NewNop())

		_, err := svc.UploadLogo(context.Background(), LogoUpload{Data: pngHeader})

		requireCode(t, err, "INVALID_LOGO")
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		svc := NewSettingsService(new(MockSettingsRepository), new(MockObjectStorage), 0, zap.NewNop())

		_, err := svc.UploadLogo(context.Background(), LogoUpload{Data: []byte("plain text file")})

		requireCode(t, err, "INVALID_LOGO")
	})

	t.Run("fails without storage", func(t *testing.T) {
		svc := NewSettingsService(new(MockSettingsRepository), nil, 0, zap.NewNop())

		_, err := svc.UploadLogo(context.Background(), LogoUpload{Data: pngHeader})

		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})
}
