package handler

import (
	"errors"

	"github.com/forgo/inkwell/internal/model"
	"github.com/forgo/inkwell/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(err.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenExpired),
		errors.Is(err, service.ErrRefreshTokenRevoked):
		return model.NewUnauthorizedError("invalid or expired refresh token")

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrAccountDisabled):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrPostNotFound):
		return model.NewNotFoundError("post")
	case errors.Is(err, service.ErrCategoryNotFound):
		return model.NewNotFoundError("category")
	case errors.Is(err, service.ErrGroupNotFound):
		return model.NewNotFoundError("group")
	case errors.Is(err, service.ErrGrantNotFound):
		return model.NewNotFoundError("grant")
	case errors.Is(err, service.ErrRecoveryTokenInvalid):
		return model.NewNotFoundError("recovery token")

	// ===== Gone Errors → 410 =====
	// A consumed recovery token is distinct from an unknown one so
	// clients can tell the user the link was already used.
	case errors.Is(err, service.ErrRecoveryTokenUsed),
		errors.Is(err, service.ErrRecoveryTokenExpired):
		return model.NewGoneError(err.Error())

	// ===== Validation Errors → 422 =====
	// Uniqueness violations surface as field errors, like the
	// duplicate-category case, so clients can attach them to the form
	// field that caused them.
	case errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrUsernameRequired):
		return model.NewValidationError([]model.FieldError{{Field: "username", Message: err.Error()}})
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: err.Error()}})
	case errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong),
		errors.Is(err, service.ErrPasswordTooSimple):
		return model.NewValidationError([]model.FieldError{{Field: "password", Message: err.Error()}})
	case errors.Is(err, service.ErrPasswordMismatch):
		return model.NewValidationError([]model.FieldError{{Field: "confirm_password", Message: err.Error()}})
	case errors.Is(err, service.ErrOldPasswordWrong):
		return model.NewValidationError([]model.FieldError{{Field: "old_password", Message: err.Error()}})
	case errors.Is(err, service.ErrTitleRequired):
		return model.NewValidationError([]model.FieldError{{Field: "title", Message: err.Error()}})
	case errors.Is(err, service.ErrBodyRequired):
		return model.NewValidationError([]model.FieldError{{Field: "body", Message: err.Error()}})
	case errors.Is(err, service.ErrNameRequired):
		return model.NewValidationError([]model.FieldError{{Field: "name", Message: err.Error()}})
	case errors.Is(err, service.ErrCategoryNameTaken):
		return model.NewValidationError([]model.FieldError{{Field: "name", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidCode):
		return model.NewValidationError([]model.FieldError{{Field: "code", Message: err.Error()}})

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
