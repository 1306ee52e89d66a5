package appstate_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstate "github.com/esperanza-dev/go-appstate"
)

func TestErrNotAuthenticatedShape(t *testing.T) {
	var rich *goerrors.Error
	require.True(t, goerrors.As(appstate.ErrNotAuthenticated, &rich))

	assert.Equal(t, goerrors.CategoryAuth, rich.Category)
	assert.Equal(t, appstate.TextCodeNotAuthenticated, rich.TextCode)
	assert.Equal(t, goerrors.CodeUnauthorized, rich.Code)
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, appstate.IsNotAuthenticated(appstate.ErrNotAuthenticated))
	assert.False(t, appstate.IsNotAuthenticated(errors.New("nope")))
	assert.False(t, appstate.IsNotAuthenticated(nil))

	validation := goerrors.New("bad payload", goerrors.CategoryValidation).
		WithTextCode(appstate.TextCodeInvalidPayload)
	assert.True(t, appstate.IsValidationError(validation))
	assert.False(t, appstate.IsBackendError(validation))

	backend := goerrors.New("upstream down", goerrors.CategoryExternal).
		WithTextCode(appstate.TextCodeBackendFailure)
	assert.True(t, appstate.IsBackendError(backend))
	assert.False(t, appstate.IsValidationError(backend))
	assert.False(t, appstate.IsNotAuthenticated(backend))
}
