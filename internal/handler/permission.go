package handler

import (
	"context"
	"net/http"

	"github.com/forgo/inkwell/internal/model"
)

// PermissionService defines the group and grant operations the handler depends on
type PermissionService interface {
	SyncGroupPermissions(ctx context.Context, groupName string, codes []string) (*model.Group, error)
	Grant(ctx context.Context, userID, code, recordID string) (*model.ObjectGrant, error)
	ListGrants(ctx context.Context, userID string) ([]*model.ObjectGrant, error)
	ListGroups(ctx context.Context) ([]*model.Group, error)
	GetGroup(ctx context.Context, name string) (*model.Group, error)
}

// PermissionHandler handles group and grant administration endpoints.
// Routes using it are gated by the admin middleware.
type PermissionHandler struct {
	permissionService PermissionService
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(permissionService PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// SyncGroupRequest represents a group permission assignment. Wildcard
// codes expand to every declared action for the resource.
type SyncGroupRequest struct {
	Permissions []string `json:"permissions"`
}

// GrantRequest represents a per-record grant request
type GrantRequest struct {
	UserID   string `json:"user_id"`
	Code     string `json:"code"`
	RecordID string `json:"record"`
}

// ListGroups handles GET /v1/groups
func (h *PermissionHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.permissionService.ListGroups(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list groups"))
		return
	}

	WriteCollection(w, http.StatusOK, toGroupsResponse(groups), map[string]string{
		"self": "/v1/groups",
	})
}

// GetGroup handles GET /v1/groups/{name}
func (h *PermissionHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.permissionService.GetGroup(r.Context(), r.PathValue("name"))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get group"))
		return
	}

	WriteData(w, http.StatusOK, toGroupResponse(group), map[string]string{
		"self": "/v1/groups/" + group.Name,
	})
}

// SyncGroup handles PUT /v1/groups/{name}/permissions. The group is
// created if it does not exist; its permission set is replaced with
// the expanded codes.
func (h *PermissionHandler) SyncGroup(w http.ResponseWriter, r *http.Request) {
	var req SyncGroupRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	group, err := h.permissionService.SyncGroupPermissions(r.Context(), r.PathValue("name"), req.Permissions)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "sync group permissions"))
		return
	}

	WriteDataMessage(w, http.StatusOK, toGroupResponse(group), "Group permissions have been updated.", map[string]string{
		"self": "/v1/groups/" + group.Name,
	})
}

// CreateGrant handles POST /v1/grants
func (h *PermissionHandler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	grant, err := h.permissionService.Grant(r.Context(), req.UserID, req.Code, req.RecordID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "create grant"))
		return
	}

	WriteDataMessage(w, http.StatusCreated, toGrantResponse(grant), "The grant has been created.", nil)
}

// ListUserGrants handles GET /v1/users/{id}/grants
func (h *PermissionHandler) ListUserGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.permissionService.ListGrants(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list grants"))
		return
	}

	WriteCollection(w, http.StatusOK, toGrantsResponse(grants), nil)
}
