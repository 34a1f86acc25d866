package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("loading invoice: %w", ErrNotFound.WithDetail("id", "abc"))

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrAlreadyExists))

	de, ok := IsDomainError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, "abc", de.Details["id"])
	assert.Nil(t, ErrNotFound.Details, "sentinel must not be mutated")
}

func TestIsDomainError_PlainError(t *testing.T) {
	_, ok := IsDomainError(errors.New("boom"))
	assert.False(t, ok)
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 500, OrderDir: "ASC"}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, "asc", f.OrderDir)
	assert.NotNil(t, f.Filters)

	f = Filter{Page: 3, PageSize: 10, OrderDir: "sideways"}.Normalize()
	assert.Equal(t, "desc", f.OrderDir)
	assert.Equal(t, 20, f.Offset())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPaginated([]int{}, 0, 1, 0).TotalPages)
}

func TestMoneyHelpers(t *testing.T) {
	assert.True(t, RoundMoney(decimal.RequireFromString("45.905")).Equal(decimal.RequireFromString("45.91")))
	assert.True(t, HasAtMostPlaces(decimal.RequireFromString("1.50"), 2))
	assert.True(t, HasAtMostPlaces(decimal.RequireFromString("1.500"), 2))
	assert.False(t, HasAtMostPlaces(decimal.RequireFromString("1.505"), 2))
}
