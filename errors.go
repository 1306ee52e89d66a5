package appstate

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeNotAuthenticated flags operations that need a cached user
	TextCodeNotAuthenticated = "NOT_AUTHENTICATED"
	// TextCodeInvalidPayload flags payloads rejected before the backend is contacted
	TextCodeInvalidPayload = "INVALID_PAYLOAD"
	// TextCodeBackendFailure flags errors surfaced by the backend client
	TextCodeBackendFailure = "BACKEND_FAILURE"
)

// ErrNotAuthenticated is returned by operations that require a cached user
// when none is present. No backend call is made.
var ErrNotAuthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotAuthenticated).
	WithCode(goerrors.CodeUnauthorized)

// IsNotAuthenticated reports whether err was raised locally because no
// user is cached.
func IsNotAuthenticated(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == TextCodeNotAuthenticated
}

// IsValidationError reports whether err was a payload rejection.
func IsValidationError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryValidation
}

// IsBackendError reports whether err came back from the backend client.
func IsBackendError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryExternal
}

// backendError passes rich errors through verbatim and tags everything
// else as an external failure so callers never see a bare error value.
func backendError(err error) error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return err
	}

	return goerrors.Wrap(err, goerrors.CategoryExternal, "backend request failed").
		WithTextCode(TextCodeBackendFailure)
}

func validationError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return err
	}

	return goerrors.Wrap(err, goerrors.CategoryValidation, msg).
		WithTextCode(TextCodeInvalidPayload)
}
