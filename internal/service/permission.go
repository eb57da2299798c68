package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/forgo/inkwell/internal/model"
)

// GroupRepository defines the interface for permission group storage
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByName(ctx context.Context, name string) (*model.Group, error)
	GetByNames(ctx context.Context, names []string) ([]*model.Group, error)
	List(ctx context.Context) ([]*model.Group, error)
	SetPermissions(ctx context.Context, groupID string, permissions []string) error
}

// GrantRepository defines the interface for per-record grant storage
type GrantRepository interface {
	Create(ctx context.Context, grant *model.ObjectGrant) error
	Exists(ctx context.Context, userID, code, recordID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.ObjectGrant, error)
	DeleteForRecord(ctx context.Context, recordID string) error
}

// PermissionService enforces access control. Permission codes take the
// form app.resource.action; a registry of known codes is built from the
// resource declarations passed at construction, and group assignments
// are reconciled against it.
type PermissionService struct {
	groupRepo GroupRepository
	grantRepo GrantRepository

	// registered maps "app.resource" to its declared actions
	registered map[string][]string
	// anonymous holds codes granted without authentication
	anonymous map[string]bool
}

// ResourceDecl declares a resource and the actions it supports
type ResourceDecl struct {
	App      string
	Resource string
	Actions  []string
}

// PermissionServiceConfig holds configuration for the permission service
type PermissionServiceConfig struct {
	GroupRepo GroupRepository
	GrantRepo GrantRepository
	Resources []ResourceDecl
	// Anonymous lists permission codes open to unauthenticated callers
	Anonymous []string
}

// NewPermissionService creates a new permission service
func NewPermissionService(cfg PermissionServiceConfig) *PermissionService {
	registered := make(map[string][]string, len(cfg.Resources))
	for _, decl := range cfg.Resources {
		registered[decl.App+"."+decl.Resource] = decl.Actions
	}

	anonymous := make(map[string]bool, len(cfg.Anonymous))
	for _, code := range cfg.Anonymous {
		anonymous[code] = true
	}

	return &PermissionService{
		groupRepo:  cfg.GroupRepo,
		grantRepo:  cfg.GrantRepo,
		registered: registered,
		anonymous:  anonymous,
	}
}

// Check verifies that the caller may perform the operation named by
// code, optionally against a specific record. Resolution order: admin
// role, anonymous allowance, group permissions, then per-record grants.
// Returns ErrPermissionDenied when no rule allows the operation; the
// caller distinguishes 401 from 403 by whether claims were present.
func (s *PermissionService) Check(ctx context.Context, claims *model.TokenClaims, code, recordID string) error {
	if claims != nil && claims.IsAdmin() {
		return nil
	}

	if s.anonymous[code] {
		return nil
	}

	if claims == nil {
		return ErrPermissionDenied
	}

	if len(claims.Groups) > 0 {
		groups, err := s.groupRepo.GetByNames(ctx, claims.Groups)
		if err != nil {
			return err
		}
		for _, group := range groups {
			if group.HasPermission(code) {
				return nil
			}
		}
	}

	if recordID != "" {
		ok, err := s.grantRepo.Exists(ctx, claims.UserID, code, recordID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	return ErrPermissionDenied
}

// Allowed reports whether the caller may perform the operation.
// Storage failures surface as errors; a denial is (false, nil).
func (s *PermissionService) Allowed(ctx context.Context, claims *model.TokenClaims, code, recordID string) (bool, error) {
	err := s.Check(ctx, claims, code, recordID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrPermissionDenied) {
		return false, nil
	}
	return false, err
}

// SyncGroupPermissions reconciles a group's permission set against the
// declared codes. Wildcard codes (app.resource.*) expand to every
// declared action for that resource. Malformed or unknown codes are
// skipped with a warning rather than failing the sync, so one bad
// declaration cannot strand a deploy.
func (s *PermissionService) SyncGroupPermissions(ctx context.Context, groupName string, codes []string) (*model.Group, error) {
	group, err := s.groupRepo.GetByName(ctx, groupName)
	if err != nil {
		return nil, err
	}
	if group == nil {
		group = &model.Group{Name: groupName}
		if err := s.groupRepo.Create(ctx, group); err != nil {
			return nil, err
		}
	}

	expanded := s.expandCodes(codes)
	if err := s.groupRepo.SetPermissions(ctx, group.ID, expanded); err != nil {
		return nil, err
	}
	group.Permissions = expanded
	return group, nil
}

// expandCodes validates codes against the registry and expands
// wildcards, preserving declaration order and dropping duplicates
func (s *PermissionService) expandCodes(codes []string) []string {
	seen := make(map[string]bool)
	expanded := make([]string, 0, len(codes))

	add := func(code string) {
		if !seen[code] {
			seen[code] = true
			expanded = append(expanded, code)
		}
	}

	for _, raw := range codes {
		code, err := model.ParsePermissionCode(raw)
		if err != nil {
			slog.Warn("skipping malformed permission code", slog.String("code", raw))
			continue
		}

		key := code.App + "." + code.Resource
		actions, ok := s.registered[key]
		if !ok {
			slog.Warn("skipping permission code for unknown resource", slog.String("code", raw))
			continue
		}

		if code.IsWildcard() {
			for _, action := range actions {
				add(key + "." + action)
			}
			continue
		}
		add(code.String())
	}
	return expanded
}

// IsRegistered reports whether a concrete permission code was declared
func (s *PermissionService) IsRegistered(code string) bool {
	parsed, err := model.ParsePermissionCode(code)
	if err != nil || parsed.IsWildcard() {
		return false
	}
	for _, action := range s.registered[parsed.App+"."+parsed.Resource] {
		if action == parsed.Action {
			return true
		}
	}
	return false
}

// Grant gives a user a permission code scoped to a single record
func (s *PermissionService) Grant(ctx context.Context, userID, code, recordID string) (*model.ObjectGrant, error) {
	if !s.IsRegistered(code) {
		return nil, ErrInvalidCode
	}
	if strings.TrimSpace(recordID) == "" {
		return nil, ErrInvalidCode
	}

	exists, err := s.grantRepo.Exists(ctx, userID, code, recordID)
	if err != nil {
		return nil, err
	}

	grant := &model.ObjectGrant{
		UserID:   userID,
		Code:     code,
		RecordID: recordID,
	}
	if exists {
		return grant, nil
	}

	if err := s.grantRepo.Create(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

// ListGrants returns all per-record grants held by a user
func (s *PermissionService) ListGrants(ctx context.Context, userID string) ([]*model.ObjectGrant, error) {
	return s.grantRepo.ListByUser(ctx, userID)
}

// RevokeForRecord removes every grant referencing a record
func (s *PermissionService) RevokeForRecord(ctx context.Context, recordID string) error {
	return s.grantRepo.DeleteForRecord(ctx, recordID)
}

// ListGroups returns all permission groups
func (s *PermissionService) ListGroups(ctx context.Context) ([]*model.Group, error) {
	return s.groupRepo.List(ctx)
}

// GetGroup returns a group by name
func (s *PermissionService) GetGroup(ctx context.Context, name string) (*model.Group, error) {
	group, err := s.groupRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}
