package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:     {StatusSent, StatusPaid, StatusCancelled},
		StatusSent:      {StatusPaid, StatusCancelled},
		StatusPaid:      {},
		StatusCancelled: {},
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			expected := false
			for _, a := range allowed[from] {
				if a == to {
					expected = true
				}
			}
			assert.Equalf(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_Guards(t *testing.T) {
	assert.True(t, StatusDraft.AllowsContentChanges())
	assert.True(t, StatusSent.AllowsContentChanges())
	assert.False(t, StatusPaid.AllowsContentChanges())
	assert.False(t, StatusCancelled.AllowsContentChanges())

	assert.True(t, StatusDraft.AllowsDeletion())
	assert.False(t, StatusSent.AllowsDeletion())
	assert.False(t, StatusPaid.AllowsDeletion())

	assert.True(t, StatusPaid.IsTerminal())
	assert.False(t, Status("archived").IsValid())
}

func TestUnit(t *testing.T) {
	assert.True(t, UnitSquareMeter.IsValid())
	assert.Equal(t, "Square Meter", UnitSquareMeter.Label())
	assert.False(t, Unit("litre").IsValid())
}
