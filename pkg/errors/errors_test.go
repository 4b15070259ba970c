package errors_test

import (
	"net/http"
	"testing"

	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientStock(t *testing.T) {
	err := errors.InsufficientStock("9", "20")

	assert.Equal(t, "INSUFFICIENT_STOCK", err.Code)
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Equal(t, "9", err.Details["available"])
	assert.Equal(t, "20", err.Details["requested"])
	assert.True(t, errors.Is(err, errors.ErrInsufficientStock))
}

func TestLocationOccupied(t *testing.T) {
	err := errors.LocationOccupied("LR-01-01", "M2")

	assert.Equal(t, "LOCATION_OCCUPIED", err.Code)
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Contains(t, err.Message, "LR-01-01")
	assert.Contains(t, err.Message, "M2")
	assert.True(t, errors.Is(err, errors.ErrLocationOccupied))
}

func TestLocationInvalid(t *testing.T) {
	err := errors.LocationInvalid("XX-99")

	assert.Equal(t, "LOCATION_INVALID", err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.True(t, errors.Is(err, errors.ErrLocationInvalid))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.NotFound("material")
	wrapped := errors.Wrap(cause, "LEDGER_FAILED", "ingress failed", http.StatusInternalServerError)

	var appErr *errors.AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "LEDGER_FAILED", appErr.Code)
	assert.True(t, errors.Is(wrapped, errors.ErrNotFound))
}

func TestValidationCarriesDetails(t *testing.T) {
	err := errors.Validation(map[string]string{"quantity": "must be greater than 0"})

	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "must be greater than 0", err.Details["quantity"])
}
