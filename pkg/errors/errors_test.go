package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Message, appErr.Message)
}

func TestCloneKeepsOriginal(t *testing.T) {
	clone := Clone(ErrNotFound, "room not found")
	assert.Equal(t, "room not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestValidationCollectsFields(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
		Day  int    `validate:"min=1,max=7"`
	}
	err := validator.New().Struct(payload{Day: 9})
	require.Error(t, err)

	appErr := Validation(err, "invalid payload")
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	fields, ok := appErr.Details["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "required", fields["Name"])
	assert.Equal(t, "max", fields["Day"])
}

func TestFieldError(t *testing.T) {
	appErr := FieldError("end_min", "must be greater than start_min")
	assert.Equal(t, ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "end_min")
}
