package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameRequired   = errors.New("username is required")
	ErrUsernameExists     = errors.New("username already taken")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrPasswordTooSimple  = errors.New("password must contain an uppercase letter, a lowercase letter, and a digit")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	// ErrOldPasswordWrong is the self-service variant of a failed
	// password check: the caller is already authenticated, so it maps
	// to a field error rather than a credentials rejection.
	ErrOldPasswordWrong = errors.New("old password is incorrect")
)

// ===== Token Errors =====
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
)

// ===== Recovery Errors =====
var (
	ErrRecoveryTokenInvalid = errors.New("invalid recovery token")
	ErrRecoveryTokenExpired = errors.New("recovery token expired")
	ErrRecoveryTokenUsed    = errors.New("recovery token already used")
)

// ===== Permission Errors =====
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidCode      = errors.New("invalid permission code")
	ErrGroupNotFound    = errors.New("group not found")
	ErrGrantNotFound    = errors.New("grant not found")
)

// ===== Content Errors =====
var (
	ErrPostNotFound      = errors.New("post not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrBodyRequired      = errors.New("body is required")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("a category with this name already exists")
	ErrNameRequired      = errors.New("name is required")
)
