package service

import (
	"context"
	"testing"
	"time"

	"github.com/forgo/inkwell/internal/model"
)

type mockGroupRepo struct {
	groups map[string]*model.Group
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]*model.Group)}
}

func (m *mockGroupRepo) Create(ctx context.Context, group *model.Group) error {
	group.ID = "user_group:" + group.Name
	group.CreatedOn = time.Now()
	group.ModifiedOn = time.Now()
	m.groups[group.Name] = group
	return nil
}

func (m *mockGroupRepo) GetByName(ctx context.Context, name string) (*model.Group, error) {
	return m.groups[name], nil
}

func (m *mockGroupRepo) GetByNames(ctx context.Context, names []string) ([]*model.Group, error) {
	var result []*model.Group
	for _, name := range names {
		if g, ok := m.groups[name]; ok {
			result = append(result, g)
		}
	}
	return result, nil
}

func (m *mockGroupRepo) List(ctx context.Context) ([]*model.Group, error) {
	var result []*model.Group
	for _, g := range m.groups {
		result = append(result, g)
	}
	return result, nil
}

func (m *mockGroupRepo) SetPermissions(ctx context.Context, groupID string, permissions []string) error {
	for _, g := range m.groups {
		if g.ID == groupID {
			g.Permissions = permissions
		}
	}
	return nil
}

type mockGrantRepo struct {
	grants []*model.ObjectGrant
}

func (m *mockGrantRepo) Create(ctx context.Context, grant *model.ObjectGrant) error {
	grant.ID = "grant:" + grant.UserID + ":" + grant.RecordID
	grant.CreatedOn = time.Now()
	m.grants = append(m.grants, grant)
	return nil
}

func (m *mockGrantRepo) Exists(ctx context.Context, userID, code, recordID string) (bool, error) {
	for _, g := range m.grants {
		if g.UserID == userID && g.Code == code && g.RecordID == recordID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockGrantRepo) ListByUser(ctx context.Context, userID string) ([]*model.ObjectGrant, error) {
	var result []*model.ObjectGrant
	for _, g := range m.grants {
		if g.UserID == userID {
			result = append(result, g)
		}
	}
	return result, nil
}

func (m *mockGrantRepo) DeleteForRecord(ctx context.Context, recordID string) error {
	kept := m.grants[:0]
	for _, g := range m.grants {
		if g.RecordID != recordID {
			kept = append(kept, g)
		}
	}
	m.grants = kept
	return nil
}

func setupPermissionService(t *testing.T) (*PermissionService, *mockGroupRepo, *mockGrantRepo) {
	t.Helper()

	groupRepo := newMockGroupRepo()
	grantRepo := &mockGrantRepo{}

	svc := NewPermissionService(PermissionServiceConfig{
		GroupRepo: groupRepo,
		GrantRepo: grantRepo,
		Resources: []ResourceDecl{
			{App: "blog", Resource: "post", Actions: []string{"create", "read", "update", "delete", "list"}},
			{App: "blog", Resource: "category", Actions: []string{"create", "read", "update", "delete", "list"}},
		},
		Anonymous: []string{"blog.post.read", "blog.post.list"},
	})
	return svc, groupRepo, grantRepo
}

func userClaims(groups ...string) *model.TokenClaims {
	return &model.TokenClaims{
		UserID:   "user:jdoe",
		Username: "jdoe",
		Role:     model.UserRoleUser,
		Groups:   groups,
	}
}

func TestPermissionService_Check_AdminBypasses(t *testing.T) {
	svc, _, _ := setupPermissionService(t)
	ctx := context.Background()

	claims := &model.TokenClaims{UserID: "user:root", Role: model.UserRoleAdmin}

	if err := svc.Check(ctx, claims, "blog.post.delete", ""); err != nil {
		t.Errorf("expected admin to pass every check, got %v", err)
	}
}

func TestPermissionService_Check_AnonymousAllowance(t *testing.T) {
	svc, _, _ := setupPermissionService(t)
	ctx := context.Background()

	if err := svc.Check(ctx, nil, "blog.post.list", ""); err != nil {
		t.Errorf("expected anonymous list to be allowed, got %v", err)
	}
	if err := svc.Check(ctx, nil, "blog.post.create", ""); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied for anonymous create, got %v", err)
	}
}

func TestPermissionService_Check_GroupPermission(t *testing.T) {
	svc, groupRepo, _ := setupPermissionService(t)
	ctx := context.Background()

	groupRepo.groups["Authors"] = &model.Group{
		ID:          "user_group:Authors",
		Name:        "Authors",
		Permissions: []string{"blog.post.create", "blog.post.update"},
	}

	if err := svc.Check(ctx, userClaims("Authors"), "blog.post.create", ""); err != nil {
		t.Errorf("expected group member to pass, got %v", err)
	}
	if err := svc.Check(ctx, userClaims("Authors"), "blog.post.delete", ""); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied outside group permissions, got %v", err)
	}
	if err := svc.Check(ctx, userClaims(), "blog.post.create", ""); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied for user without groups, got %v", err)
	}
}

func TestPermissionService_Check_ObjectGrant(t *testing.T) {
	svc, _, grantRepo := setupPermissionService(t)
	ctx := context.Background()

	grantRepo.grants = append(grantRepo.grants, &model.ObjectGrant{
		UserID:   "user:jdoe",
		Code:     "blog.post.update",
		RecordID: "post:abc",
	})

	if err := svc.Check(ctx, userClaims(), "blog.post.update", "post:abc"); err != nil {
		t.Errorf("expected grant holder to pass on the granted record, got %v", err)
	}
	if err := svc.Check(ctx, userClaims(), "blog.post.update", "post:xyz"); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied on a different record, got %v", err)
	}
	if err := svc.Check(ctx, userClaims(), "blog.post.update", ""); err != ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied without a record, got %v", err)
	}
}

func TestPermissionService_SyncGroupPermissions_WildcardExpansion(t *testing.T) {
	svc, _, _ := setupPermissionService(t)
	ctx := context.Background()

	group, err := svc.SyncGroupPermissions(ctx, "Editors", []string{"blog.post.*"})
	if err != nil {
		t.Fatalf("SyncGroupPermissions failed: %v", err)
	}

	want := []string{"blog.post.create", "blog.post.read", "blog.post.update", "blog.post.delete", "blog.post.list"}
	if len(group.Permissions) != len(want) {
		t.Fatalf("expected %d permissions, got %d: %v", len(want), len(group.Permissions), group.Permissions)
	}
	for i, code := range want {
		if group.Permissions[i] != code {
			t.Errorf("permission %d: expected %s, got %s", i, code, group.Permissions[i])
		}
	}
}

func TestPermissionService_SyncGroupPermissions_SkipsMalformed(t *testing.T) {
	svc, _, _ := setupPermissionService(t)
	ctx := context.Background()

	group, err := svc.SyncGroupPermissions(ctx, "Authors", []string{
		"blog.post.create",
		"not-a-code",
		"blog..read",
		"blog.widget.create",
		"blog.post.read",
	})
	if err != nil {
		t.Fatalf("SyncGroupPermissions failed: %v", err)
	}

	want := []string{"blog.post.create", "blog.post.read"}
	if len(group.Permissions) != len(want) {
		t.Fatalf("expected %v, got %v", want, group.Permissions)
	}
	for i, code := range want {
		if group.Permissions[i] != code {
			t.Errorf("permission %d: expected %s, got %s", i, code, group.Permissions[i])
		}
	}
}

func TestPermissionService_SyncGroupPermissions_DropsDuplicates(t *testing.T) {
	svc, _, _ := setupPermissionService(t)
	ctx := context.Background()

	group, err := svc.SyncGroupPermissions(ctx, "Authors", []string{
		"blog.post.create",
		"blog.post.*",
	})
	if err != nil {
		t.Fatalf("SyncGroupPermissions failed: %v", err)
	}

	seen := make(map[string]int)
	for _, code := range group.Permissions {
		seen[code]++
	}
	if seen["blog.post.create"] != 1 {
		t.Errorf("expected blog.post.create exactly once, got %d", seen["blog.post.create"])
	}
}

func TestPermissionService_SyncGroupPermissions_CreatesMissingGroup(t *testing.T) {
	svc, groupRepo, _ := setupPermissionService(t)
	ctx := context.Background()

	if _, err := svc.SyncGroupPermissions(ctx, "Editors", []string{"blog.category.*"}); err != nil {
		t.Fatalf("SyncGroupPermissions failed: %v", err)
	}
	if groupRepo.groups["Editors"] == nil {
		t.Error("expected the group to be created")
	}
}

func TestPermissionService_IsRegistered(t *testing.T) {
	svc, _, _ := setupPermissionService(t)

	tests := []struct {
		code string
		want bool
	}{
		{"blog.post.create", true},
		{"blog.category.list", true},
		{"blog.post.*", false},
		{"blog.widget.create", false},
		{"blog.post.publish", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := svc.IsRegistered(tt.code); got != tt.want {
			t.Errorf("IsRegistered(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestPermissionService_Grant(t *testing.T) {
	svc, _, grantRepo := setupPermissionService(t)
	ctx := context.Background()

	grant, err := svc.Grant(ctx, "user:jdoe", "blog.post.update", "post:abc")
	if err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if grant.Code != "blog.post.update" {
		t.Errorf("expected code blog.post.update, got %s", grant.Code)
	}

	// Idempotent: granting again does not duplicate
	if _, err := svc.Grant(ctx, "user:jdoe", "blog.post.update", "post:abc"); err != nil {
		t.Fatalf("repeat Grant failed: %v", err)
	}
	if len(grantRepo.grants) != 1 {
		t.Errorf("expected 1 stored grant, got %d", len(grantRepo.grants))
	}

	if _, err := svc.Grant(ctx, "user:jdoe", "blog.post.*", "post:abc"); err != ErrInvalidCode {
		t.Errorf("expected ErrInvalidCode for wildcard grant, got %v", err)
	}
	if _, err := svc.Grant(ctx, "user:jdoe", "blog.widget.create", "post:abc"); err != ErrInvalidCode {
		t.Errorf("expected ErrInvalidCode for unregistered code, got %v", err)
	}
	if _, err := svc.Grant(ctx, "user:jdoe", "blog.post.update", "  "); err != ErrInvalidCode {
		t.Errorf("expected ErrInvalidCode for blank record, got %v", err)
	}
}

func TestPermissionService_RevokeForRecord(t *testing.T) {
	svc, _, grantRepo := setupPermissionService(t)
	ctx := context.Background()

	if _, err := svc.Grant(ctx, "user:jdoe", "blog.post.update", "post:abc"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := svc.Grant(ctx, "user:asmith", "blog.post.read", "post:abc"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if _, err := svc.Grant(ctx, "user:jdoe", "blog.post.update", "post:xyz"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}

	if err := svc.RevokeForRecord(ctx, "post:abc"); err != nil {
		t.Fatalf("RevokeForRecord failed: %v", err)
	}
	if len(grantRepo.grants) != 1 {
		t.Fatalf("expected 1 remaining grant, got %d", len(grantRepo.grants))
	}
	if grantRepo.grants[0].RecordID != "post:xyz" {
		t.Errorf("expected surviving grant on post:xyz, got %s", grantRepo.grants[0].RecordID)
	}
}
