package settings

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/settings"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxLogoSize caps logo uploads when no limit is configured
const DefaultMaxLogoSize = 2 << 20

var (
	// ErrStorageUnavailable is returned for logo uploads when object storage is disabled
	ErrStorageUnavailable = shared.NewDomainError("STORAGE_UNAVAILABLE", "Object storage is not enabled")

	allowedLogoTypes = map[string]string{
		"image/png":     ".png",
		"image/jpeg":    ".jpg",
		"image/svg+xml": ".svg",
	}
)

// ObjectStorage stores uploaded files
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// SettingsService reads and edits the company settings singleton
type SettingsService struct {
	repo        settings.Repository
	storage     ObjectStorage
	maxLogoSize int64
	logger      *zap.Logger
}

// NewSettingsService creates a SettingsService. storage may be nil, in which
// case logo uploads are rejected.
func NewSettingsService(repo settings.Repository, storage ObjectStorage, maxLogoSize int64, logger *zap.Logger) *SettingsService {
	if maxLogoSize <= 0 {
		maxLogoSize = DefaultMaxLogoSize
	}
	return &SettingsService{
		repo:        repo,
		storage:     storage,
		maxLogoSize: maxLogoSize,
		logger:      logger,
	}
}

// Get returns the full settings, creating the defaults on first access
func (s *SettingsService) Get(ctx context.Context) (*SettingsResponse, error) {
	cs, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	resp := ToSettingsResponse(cs, s.logoURL(ctx, cs.LogoKey))
	return &resp, nil
}

// Public returns the subset of settings shown on unauthenticated pages
func (s *SettingsService) Public(ctx context.Context) (*PublicSettingsResponse, error) {
	cs, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	return &PublicSettingsResponse{
		CompanyName:    cs.CompanyName,
		CompanyAddress: cs.CompanyAddress,
		PhoneNumber:    cs.PhoneNumber,
		Email:          cs.Email,
		Website:        cs.Website,
		GSTIN:          cs.GSTIN,
		TaxLabel:       cs.TaxLabel,
		LogoURL:        s.logoURL(ctx, cs.LogoKey),
	}, nil
}

// Update replaces every editable setting
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*SettingsResponse, error) {
	return s.save(ctx, func(*settings.CompanySettings) settings.CompanySettings {
		return req.toDomain()
	})
}

// Patch changes only the fields present in the request
func (s *SettingsService) Patch(ctx context.Context, req PatchSettingsRequest) (*SettingsResponse, error) {
	return s.save(ctx, func(current *settings.CompanySettings) settings.CompanySettings {
		next := *current
		req.applyTo(&next)
		return next
	})
}

// UploadLogo stores a new company logo and replaces the previous one
func (s *SettingsService) UploadLogo(ctx context.Context, upload LogoUpload) (*SettingsResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if len(upload.Data) == 0 {
		return nil, shared.NewDomainError("INVALID_LOGO", "Logo file is empty")
	}
	if int64(len(upload.Data)) > s.maxLogoSize {
		return nil, shared.NewDomainError("INVALID_LOGO",
			fmt.Sprintf("Logo cannot exceed %d bytes", s.maxLogoSize)).
			WithDetail("size", len(upload.Data))
	}

	contentType := detectLogoType(upload)
	ext, ok := allowedLogoTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_LOGO", "Logo must be a PNG, JPEG or SVG image").
			WithDetail("content_type", contentType)
	}

	cs, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	key := path.Join("logos", "company-"+uuid.NewString()+ext)
	if err := s.storage.Upload(ctx, key, upload.Data, contentType); err != nil {
		s.logger.Error("Failed to upload company logo", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	previous := cs.LogoKey
	cs.SetLogo(key)
	if err := s.repo.Save(ctx, cs); err != nil {
		return nil, err
	}

	if previous != "" {
		if err := s.storage.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete previous logo", zap.String("key", previous), zap.Error(err))
		}
	}

	s.logger.Info("Company logo updated", zap.String("key", key))
	resp := ToSettingsResponse(cs, s.logoURL(ctx, key))
	return &resp, nil
}

func (s *SettingsService) save(ctx context.Context, build func(current *settings.CompanySettings) settings.CompanySettings) (*SettingsResponse, error) {
	cs, err := s.repo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	if err := cs.Update(build(cs)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cs); err != nil {
		return nil, err
	}

	s.logger.Info("Company settings updated",
		zap.String("invoice_prefix", cs.InvoicePrefix),
		zap.String("default_tax_rate", cs.DefaultTaxRate.String()))

	resp := ToSettingsResponse(cs, s.logoURL(ctx, cs.LogoKey))
	return &resp, nil
}

func (s *SettingsService) logoURL(ctx context.Context, key string) string {
	if key == "" || s.storage == nil {
		return ""
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		s.logger.Warn("Failed to resolve logo URL", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

// detectLogoType sniffs raster images and recognizes SVG by its root element
func detectLogoType(upload LogoUpload) string {
	sniffed := http.DetectContentType(upload.Data)
	if sniffed == "image/png" || sniffed == "image/jpeg" {
		return sniffed
	}

	head := upload.Data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.Contains(bytes.ToLower(head), []byte("<svg")) {
		return "image/svg+xml"
	}
	return strings.TrimSpace(strings.Split(sniffed, ";")[0])
}
