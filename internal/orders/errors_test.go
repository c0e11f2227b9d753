package orders

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientInventoryMessageCarriesRemaining(t *testing.T) {
	err := NewInsufficientInventory("not enough \"VIP\" tickets available", 3)
	assert.Contains(t, err.Error(), "remaining: 3")
	assert.Equal(t, 3, err.Remaining)
}

func TestStoreFailureUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreFailure(fmt.Errorf("tx failed: %w", cause))
	assert.ErrorIs(t, err, cause)
}

func TestRetryableKinds(t *testing.T) {
	assert.True(t, NewConcurrencyConflict("conflict").Retryable())
	assert.False(t, NewStoreFailure(errors.New("boom")).Retryable())
	assert.False(t, NewInsufficientInventory("sold out", 0).Retryable())
}

func TestAsPurchaseErrorWrapsForeignErrors(t *testing.T) {
	perr := AsPurchaseError(errors.New("disk full"))
	require.NotNil(t, perr)
	assert.Equal(t, KindStoreFailure, perr.Kind)

	original := NewSaleEnded("window closed")
	assert.Same(t, original, AsPurchaseError(fmt.Errorf("wrapped: %w", original)))

	assert.Nil(t, AsPurchaseError(nil))
}
