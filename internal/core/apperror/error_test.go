package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetail_Chains(t *testing.T) {
	err := NewValidation("quantity must be positive").
		WithDetail("field", "quantity").
		WithDetail("value", "-3")

	assert.Equal(t, "quantity", err.Details["field"])
	assert.Equal(t, "-3", err.Details["value"])
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

func TestWithCause_Unwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: connection reset")
}

func TestHasCode_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("confirm delivery note: %w", NewInvalidState("note already delivered"))

	assert.True(t, IsInvalidState(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}

func TestNotFound_CarriesEntityDetails(t *testing.T) {
	err := NewNotFound("product", int64(42))

	assert.True(t, IsNotFound(err))
	assert.Equal(t, "product", err.Details["entity"])
	assert.Equal(t, int64(42), err.Details["id"])
}

func TestConversionCodes(t *testing.T) {
	missing := NewNoConversionFound(1, 2, 3)
	assert.True(t, IsNoConversionFound(missing))
	assert.Equal(t, int64(3), missing.Details["dest_unit_id"])

	dup := NewDuplicateConversion(1, 2, 3)
	assert.True(t, IsDuplicateConversion(dup))
	assert.Equal(t, http.StatusConflict, dup.HTTPStatus)
}
