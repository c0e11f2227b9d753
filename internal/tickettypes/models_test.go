package tickettypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func window(start, end *time.Time) TicketType {
	return TicketType{SaleStartsAt: start, SaleEndsAt: end}
}

func TestSaleWindowUnboundedWhenNil(t *testing.T) {
	tt := window(nil, nil)

	assert.True(t, tt.OnSaleAt(time.Now()))
	assert.True(t, tt.OnSaleAt(time.Now().Add(100*365*24*time.Hour)))
	assert.False(t, tt.SaleNotStartedAt(time.Now()))
	assert.False(t, tt.SaleEndedAt(time.Now()))
}

func TestSaleStartIsInclusive(t *testing.T) {
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	tt := window(&start, nil)

	assert.False(t, tt.OnSaleAt(start.Add(-time.Second)))
	assert.True(t, tt.SaleNotStartedAt(start.Add(-time.Second)))

	// Exactly at open the window counts as on sale.
	assert.True(t, tt.OnSaleAt(start))
	assert.False(t, tt.SaleNotStartedAt(start))
}

func TestSaleEndIsExclusive(t *testing.T) {
	end := time.Date(2026, 6, 1, 22, 0, 0, 0, time.UTC)
	tt := window(nil, &end)

	assert.True(t, tt.OnSaleAt(end.Add(-time.Second)))
	assert.False(t, tt.SaleEndedAt(end.Add(-time.Second)))

	// Exactly at close the sale is over.
	assert.False(t, tt.OnSaleAt(end))
	assert.True(t, tt.SaleEndedAt(end))
}

func TestBoundedWindow(t *testing.T) {
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(12 * time.Hour)
	tt := window(&start, &end)

	assert.False(t, tt.OnSaleAt(start.Add(-time.Minute)))
	assert.True(t, tt.OnSaleAt(start.Add(time.Minute)))
	assert.False(t, tt.OnSaleAt(end.Add(time.Minute)))
}

func TestRemainingClampsAtZero(t *testing.T) {
	assert.Equal(t, 3, remaining(10, 7))
	assert.Equal(t, 0, remaining(10, 10))
	// A refund race can briefly show sold > total; never report negative.
	assert.Equal(t, 0, remaining(10, 12))
}
