package handler

import (
	"context"
	"net/http"

	"github.com/forgo/inkwell/internal/middleware"
	"github.com/forgo/inkwell/internal/model"
	"github.com/forgo/inkwell/internal/service"
)

// AuthService defines the authentication operations the handler depends on
type AuthService interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.LoginResult, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	Logout(ctx context.Context, userID string) error
}

// RecoveryService defines the password recovery operations the handler depends on
type RecoveryService interface {
	RequestRecovery(ctx context.Context, email string) error
	Recover(ctx context.Context, tokenValue, newPassword, confirmPassword string) error
}

// AuthHandler handles authentication and password recovery endpoints
type AuthHandler struct {
	authService     AuthService
	recoveryService RecoveryService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, recoveryService RecoveryService) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		recoveryService: recoveryService,
	}
}

// LoginRequest represents the login endpoint request body. Identifier
// accepts a username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// RefreshRequest represents the refresh endpoint request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotRequest represents the forgot-password endpoint request body
type ForgotRequest struct {
	Email string `json:"email"`
}

// RecoverRequest represents the recover endpoint request body
type RecoverRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginRequest{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "login"))
		return
	}

	response := struct {
		User  UserResponse  `json:"user"`
		Token TokenResponse `json:"token"`
	}{
		User:  toUserResponse(result.User),
		Token: toTokenResponse(result.TokenPair),
	}

	WriteData(w, http.StatusOK, response, map[string]string{
		"self": "/v1/auth/me",
	})
}

// Refresh handles POST /v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if req.RefreshToken == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "refresh_token", Message: "refresh_token is required"},
		}))
		return
	}

	tokenPair, err := h.authService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "refresh"))
		return
	}

	WriteData(w, http.StatusOK, toTokenResponse(tokenPair), nil)
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		WriteError(w, model.NewInternalError("logout failed"))
		return
	}

	WriteNoContent(w)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get current user"))
		return
	}

	WriteData(w, http.StatusOK, toUserResponse(user), map[string]string{
		"self": "/v1/auth/me",
	})
}

// Forgot handles POST /v1/auth/forgot. The response is identical
// whether or not the address has an account.
func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req ForgotRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if req.Email == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "email", Message: "email is required"},
		}))
		return
	}

	if err := h.recoveryService.RequestRecovery(r.Context(), req.Email); err != nil {
		WriteError(w, model.NewInternalError("recovery request failed"))
		return
	}

	WriteData(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{
		Message: "If that address has an account, a recovery link has been sent.",
	}, nil)
}

// Recover handles POST /v1/auth/recover/{token}
func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		WriteError(w, model.NewBadRequestError("missing recovery token"))
		return
	}

	var req RecoverRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.recoveryService.Recover(r.Context(), token, req.NewPassword, req.ConfirmPassword); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "recover"))
		return
	}

	WriteData(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{
		Message: "Your password has been updated. You can now log in.",
	}, nil)
}
