package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "course-station/internal/shared/errors"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorChaining(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := apperrors.NewInfrastructureError("mongodb unreachable").
		WithCode("STORE_DOWN").
		WithComponent("enrollment_repository").
		WithCause(cause).
		WithDetail("host", "localhost:27017")

	assert.Equal(t, apperrors.ErrorTypeInfrastructure, err.Type)
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPCode)
	assert.Equal(t, "STORE_DOWN", err.Code)
	assert.Equal(t, "enrollment_repository", err.Component)
	assert.Equal(t, "localhost:27017", err.Details["host"])
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestWrapErrorPassesThroughAppError(t *testing.T) {
	original := apperrors.NewValidationError("bad input")
	wrapped := apperrors.WrapError(original, "ignored")
	assert.Same(t, original, wrapped)
}

func TestWrapErrorWrapsPlainError(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := apperrors.WrapError(cause, "something failed")
	assert.Equal(t, apperrors.ErrorTypeInternal, wrapped.Type)
	assert.ErrorIs(t, wrapped, cause)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, apperrors.IsNotFound(apperrors.ErrCourseNotFound))
	assert.True(t, apperrors.IsNotFound(apperrors.ErrEnrollmentNotFound))
	assert.True(t, apperrors.IsNotFound(fmt.Errorf("lookup: %w", apperrors.ErrCourseNotFound)))
	assert.True(t, apperrors.IsNotFound(apperrors.NewNotFoundError("course")))
	assert.False(t, apperrors.IsNotFound(apperrors.ErrCapacityExceeded))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, apperrors.IsValidation(apperrors.ErrInvalidRequest))
	assert.True(t, apperrors.IsValidation(apperrors.ErrInvalidIdentifier))
	assert.True(t, apperrors.IsValidation(apperrors.NewValidationError("bad")))
	assert.False(t, apperrors.IsValidation(apperrors.ErrStoreUnavailable))
}

func TestIsRejection(t *testing.T) {
	assert.True(t, apperrors.IsRejection(apperrors.ErrCapacityExceeded))
	assert.True(t, apperrors.IsRejection(apperrors.ErrQuotaExceeded))
	assert.True(t, apperrors.IsRejection(apperrors.ErrAlreadyEnrolled))
	assert.True(t, apperrors.IsRejection(fmt.Errorf("admit: %w", apperrors.ErrQuotaExceeded)))
	// Faults and missing resources are not rejections.
	assert.False(t, apperrors.IsRejection(apperrors.ErrStoreUnavailable))
	assert.False(t, apperrors.IsRejection(apperrors.ErrCourseNotFound))
}

func TestIsAuthentication(t *testing.T) {
	assert.True(t, apperrors.IsAuthentication(apperrors.ErrUnauthorized))
	assert.True(t, apperrors.IsAuthentication(apperrors.ErrTokenExpired))
	assert.True(t, apperrors.IsAuthentication(apperrors.NewAuthenticationError("no token")))
	assert.False(t, apperrors.IsAuthentication(apperrors.ErrForbidden))
}

func TestStoreFaultStyleWrapping(t *testing.T) {
	cause := stderrors.New("server selection timeout")
	err := fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, cause)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "server selection timeout")
}
