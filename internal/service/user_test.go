package service

import (
	"context"
	"testing"

	"github.com/forgo/inkwell/internal/model"
)

func setupUserService(t *testing.T) (*UserService, *mockUserRepo, *mockGroupRepo, *mockTokenRepo) {
	t.Helper()

	userRepo := newMockUserRepo()
	groupRepo := newMockGroupRepo()
	tokenRepo := newMockTokenRepo()

	groupRepo.groups["Authors"] = &model.Group{ID: "user_group:Authors", Name: "Authors"}
	groupRepo.groups["Editors"] = &model.Group{ID: "user_group:Editors", Name: "Editors"}

	svc := NewUserService(UserServiceConfig{
		UserRepo:     userRepo,
		GroupRepo:    groupRepo,
		TokenService: newTestTokenService(t, tokenRepo),
	})
	return svc, userRepo, groupRepo, tokenRepo
}

func TestUserService_CreateUser_Success(t *testing.T) {
	svc, userRepo, _, _ := setupUserService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserRequest{
		Username:  "jdoe",
		Email:     "JDoe@Example.com",
		Password:  "Password1",
		FirstName: "Jane",
		LastName:  "Doe",
		Groups:    []string{"Authors"},
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Email != "jdoe@example.com" {
		t.Errorf("expected lowercased email, got %s", user.Email)
	}
	if user.Role != model.UserRoleUser {
		t.Errorf("expected default role user, got %s", user.Role)
	}
	if !user.IsActive {
		t.Error("expected new account to be active")
	}
	if len(user.Groups) != 1 || user.Groups[0] != "Authors" {
		t.Errorf("expected groups [Authors], got %v", user.Groups)
	}
	if stored, _ := userRepo.GetByUsername(ctx, "jdoe"); stored == nil {
		t.Error("user was not stored")
	}
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	svc, userRepo, _, _ := setupUserService(t)
	ctx := context.Background()

	seedUser(t, userRepo, "taken", "taken@example.com", "Password1")

	tests := []struct {
		name    string
		req     CreateUserRequest
		wantErr error
	}{
		{"missing username", CreateUserRequest{Email: "a@b.com", Password: "Password1"}, ErrUsernameRequired},
		{"bad email", CreateUserRequest{Username: "x", Email: "nope", Password: "Password1"}, ErrInvalidEmail},
		{"weak password", CreateUserRequest{Username: "x", Email: "a@b.com", Password: "password"}, ErrPasswordTooSimple},
		{"duplicate username", CreateUserRequest{Username: "taken", Email: "new@b.com", Password: "Password1"}, ErrUsernameExists},
		{"duplicate email", CreateUserRequest{Username: "fresh", Email: "taken@example.com", Password: "Password1"}, ErrEmailExists},
		{"unknown group", CreateUserRequest{Username: "fresh", Email: "a@b.com", Password: "Password1", Groups: []string{"Ghosts"}}, ErrGroupNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateUser(ctx, tt.req); err != tt.wantErr {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserService_UpdateUser_Groups(t *testing.T) {
	svc, userRepo, _, _ := setupUserService(t)
	ctx := context.Background()

	user := seedUser(t, userRepo, "jdoe", "jdoe@example.com", "Password1")

	updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserRequest{
		Groups: []string{"Editors", "Authors"},
	})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if len(updated.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %v", updated.Groups)
	}

	if _, err := svc.UpdateUser(ctx, user.ID, UpdateUserRequest{Groups: []string{"Ghosts"}}); err != ErrGroupNotFound {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestUserService_UpdateUser_PasswordRevokesSessions(t *testing.T) {
	svc, userRepo, _, tokenRepo := setupUserService(t)
	ctx := context.Background()

	user := seedUser(t, userRepo, "jdoe", "jdoe@example.com", "Password1")
	tokenRepo.tokens["h1"] = &RefreshToken{UserID: user.ID, TokenHash: "h1"}

	newPassword := "Another1"
	if _, err := svc.UpdateUser(ctx, user.ID, UpdateUserRequest{Password: &newPassword}); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	if !tokenRepo.tokens["h1"].Revoked {
		t.Error("expected sessions to be revoked after admin password change")
	}
	if !checkPassword("Another1", *userRepo.users[user.ID].Hash) {
		t.Error("expected the new password to verify")
	}
}

func TestUserService_UpdateUser_DeactivateRevokesSessions(t *testing.T) {
	svc, userRepo, _, tokenRepo := setupUserService(t)
	ctx := context.Background()

	user := seedUser(t, userRepo, "jdoe", "jdoe@example.com", "Password1")
	tokenRepo.tokens["h1"] = &RefreshToken{UserID: user.ID, TokenHash: "h1"}

	inactive := false
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.IsActive {
		t.Error("expected account to be disabled")
	}
	if !tokenRepo.tokens["h1"].Revoked {
		t.Error("expected sessions to be revoked on deactivation")
	}
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	svc, _, _, _ := setupUserService(t)
	ctx := context.Background()

	if _, err := svc.UpdateUser(ctx, "user:ghost", UpdateUserRequest{}); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_DeactivateUser(t *testing.T) {
	svc, userRepo, _, tokenRepo := setupUserService(t)
	ctx := context.Background()

	user := seedUser(t, userRepo, "jdoe", "jdoe@example.com", "Password1")
	tokenRepo.tokens["h1"] = &RefreshToken{UserID: user.ID, TokenHash: "h1"}

	if err := svc.DeactivateUser(ctx, user.ID); err != nil {
		t.Fatalf("DeactivateUser failed: %v", err)
	}
	if userRepo.users[user.ID].IsActive {
		t.Error("expected account to be disabled, not deleted")
	}
	if _, ok := userRepo.users[user.ID]; !ok {
		t.Error("expected the record to survive deactivation")
	}
	if !tokenRepo.tokens["h1"].Revoked {
		t.Error("expected sessions to be revoked")
	}

	if err := svc.DeactivateUser(ctx, "user:ghost"); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
