package handler

import (
	"context"
	"net/http"

	"github.com/forgo/inkwell/internal/middleware"
	"github.com/forgo/inkwell/internal/model"
	"github.com/forgo/inkwell/internal/service"
)

// ProfileService defines the self-service account operations the handler depends on
type ProfileService interface {
	UpdateProfile(ctx context.Context, userID string, req service.UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID string, req service.ChangePasswordRequest) error
}

// ProfileHandler handles self-service account endpoints
type ProfileHandler struct {
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateProfileRequest represents the profile update request body.
// Changing email requires the current password.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	NewEmail  *string `json:"new_email,omitempty"`
	Password  string  `json:"password,omitempty"`
}

// ChangePasswordRequest represents the password change request body
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Update handles PATCH /v1/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req UpdateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	user, err := h.profileService.UpdateProfile(r.Context(), userID, service.UpdateProfileRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		NewEmail:  req.NewEmail,
		Password:  req.Password,
	})
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "update profile"))
		return
	}

	WriteData(w, http.StatusOK, toUserResponse(user), map[string]string{
		"self": "/v1/profile",
	})
}

// ChangePassword handles POST /v1/profile/password
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	err := h.profileService.ChangePassword(r.Context(), userID, service.ChangePasswordRequest{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "change password"))
		return
	}

	WriteData(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{
		Message: "Your password has been updated. Other sessions have been signed out.",
	}, nil)
}
