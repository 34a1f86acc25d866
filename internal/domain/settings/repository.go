package settings

import "context"

// Repository persists the settings singleton. There is no delete.
type Repository interface {
	// GetOrCreate returns the settings row, inserting the defaults on first use
	GetOrCreate(ctx context.Context) (*CompanySettings, error)

	// Save writes the settings row
	Save(ctx context.Context, settings *CompanySettings) error
}
