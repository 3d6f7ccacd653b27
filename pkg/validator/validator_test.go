package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Email    string `validate:"required,email"`
	Quantity int    `validate:"gt=0"`
	Name     string `validate:"omitempty,max=10"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(testRequest{Email: "a@example.com", Quantity: 2})
	assert.NoError(t, err)
}

func TestValidate_FieldErrors(t *testing.T) {
	err := Validate(testRequest{Email: "not-an-email", Quantity: 0})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Quantity")
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "must be greater than 0", fields["Quantity"])
}

func TestValidationError_Message(t *testing.T) {
	err := Validate(testRequest{Email: "", Quantity: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email")
	assert.Contains(t, err.Error(), "is required")
}
