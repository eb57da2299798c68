package handler

import (
	"context"
	"net/http"

	"github.com/forgo/inkwell/internal/model"
	"github.com/forgo/inkwell/internal/service"
)

// UserService defines the administrative user operations the handler depends on
type UserService interface {
	CreateUser(ctx context.Context, req service.CreateUserRequest) (*model.User, error)
	UpdateUser(ctx context.Context, userID string, req service.UpdateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeactivateUser(ctx context.Context, userID string) error
}

// UserHandler handles administrative user management endpoints.
// Routes using it are gated by the admin middleware.
type UserHandler struct {
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents the create user endpoint request body
type CreateUserRequest struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Role      string   `json:"role,omitempty"`
	Groups    []string `json:"groups,omitempty"`
}

// UpdateUserRequest represents the update user endpoint request body.
// Omitted fields are left unchanged.
type UpdateUserRequest struct {
	Email     *string  `json:"email,omitempty"`
	Password  *string  `json:"password,omitempty"`
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Role      *string  `json:"role,omitempty"`
	Groups    []string `json:"groups,omitempty"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

// List handles GET /v1/users. Supports ?format=export.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list users"))
		return
	}

	if r.URL.Query().Get("format") == "export" {
		WriteJSON(w, http.StatusOK, toUserExport(users))
		return
	}

	WriteCollection(w, http.StatusOK, toUsersResponse(users), map[string]string{
		"self": "/v1/users",
	})
}

// Create handles POST /v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	user, err := h.userService.CreateUser(r.Context(), service.CreateUserRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.UserRole(req.Role),
		Groups:    req.Groups,
	})
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "create user"))
		return
	}

	WriteDataMessage(w, http.StatusCreated, toUserResponse(user), "Your new user has been created.", map[string]string{
		"self": "/v1/users/" + user.ID,
	})
}

// Get handles GET /v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get user"))
		return
	}

	WriteData(w, http.StatusOK, toUserResponse(user), map[string]string{
		"self": "/v1/users/" + user.ID,
	})
}

// Update handles PATCH /v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	update := service.UpdateUserRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Groups:    req.Groups,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role := model.UserRole(*req.Role)
		update.Role = &role
	}

	user, err := h.userService.UpdateUser(r.Context(), r.PathValue("id"), update)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "update user"))
		return
	}

	WriteDataMessage(w, http.StatusOK, toUserResponse(user), "Your user has been updated.", map[string]string{
		"self": "/v1/users/" + user.ID,
	})
}

// Delete handles DELETE /v1/users/{id}. Accounts are disabled, not
// removed.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeactivateUser(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "deactivate user"))
		return
	}
	WriteNoContent(w)
}
