package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/vgb/internal/apperror"
)

func TestValidateInput_MessagesByJSONField(t *testing.T) {
	type input struct {
		Name string `json:"display_name" validate:"required"`
		Code string `json:"code"         validate:"required,len=3"`
	}
	messages := map[string]string{"code.len": "code must be 3 letters"}

	err := validateInput(input{Name: "x", Code: "ab"}, messages, "bad input")
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "code", appErr.Field)
	assert.Equal(t, "code must be 3 letters", appErr.Message)

	err = validateInput(input{Code: "abc"}, messages, "bad input")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "display_name", appErr.Field)
	assert.Equal(t, "bad input", appErr.Message)

	assert.NoError(t, validateInput(input{Name: "x", Code: "abc"}, messages, "bad input"))
}
