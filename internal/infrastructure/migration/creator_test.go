package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/billing/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoice footer", "add_invoice_footer"},
		{"Add-Invoice-Footer", "add_invoice_footer"},
		{"ADD__INVOICE__FOOTER", "add_invoice_footer"},
		{"index 2 customers", "index_2_customers"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add invoice footer", "Footer text printed on invoices")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_invoice_footer.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_invoice_footer.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Up: add_invoice_footer")
	assert.Contains(t, string(up), "Footer text printed on invoices")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "-- Down: add_invoice_footer")

	second, err := CreateMigration(dir, "index customer city", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010_later.up.sql",
		"000010_later.down.sql",
		"000002_earlier.up.sql",
		"README.md",
		"notaversion_x.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	entries, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Version: 2, Name: "earlier"}, {Version: 10, Name: "later"}}, entries)

	missing, err := ListMigrations(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrations.FS, "*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
	assert.Contains(t, ups, "000001_init.up.sql")
}
