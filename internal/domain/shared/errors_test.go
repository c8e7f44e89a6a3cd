package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	detailed := NewDomainErrorf(CodeInsufficientStock, "Insufficient non-expired stock for product %s at location %s", "SKU-1", "MAIN")

	assert.ErrorIs(t, detailed, ErrInsufficientStock)
	assert.NotErrorIs(t, detailed, ErrNotFound)
	assert.Equal(t, "Insufficient non-expired stock for product SKU-1 at location MAIN", detailed.Error())

	wrapped := fmt.Errorf("allocate line 2: %w", detailed)
	assert.ErrorIs(t, wrapped, ErrInsufficientStock)

	var de *DomainError
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, CodeInsufficientStock, de.Code)
}

func TestConstructors(t *testing.T) {
	assert.ErrorIs(t, NewValidationError("quantity must be positive"), ErrValidation)

	nf := NewNotFoundError("Batch", 42)
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.Equal(t, "Batch 42 not found", nf.Error())
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{}.Offset())
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}
