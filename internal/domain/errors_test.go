package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsUnwrapToKinds(t *testing.T) {
	t.Parallel()

	var ceiling error = &QuantityCeilingError{Quantity: 30, Ceiling: MaxSelfServiceQuantity}
	assert.ErrorIs(t, ceiling, ErrBusinessRule)
	assert.NotErrorIs(t, ceiling, ErrValidation)

	var stock error = fmt.Errorf("create order: %w", &InsufficientStockError{Requested: 11, Available: 10})
	assert.ErrorIs(t, stock, ErrInsufficientStock)

	var se *InsufficientStockError
	assert.True(t, errors.As(stock, &se))
	assert.Equal(t, 10, se.Available)
	assert.Contains(t, stock.Error(), "available: 10")
}

func TestHelpersWrapSentinels(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, Validationf("quantity %d", 0), ErrValidation)
	assert.ErrorIs(t, NotFoundf("product %d", 1), ErrNotFound)
	assert.ErrorIs(t, Conflictf("slug %q", "kaos"), ErrConflict)
	assert.Equal(t, "validation: quantity 0", Validationf("quantity %d", 0).Error())
}
