package service

import (
	"context"
	"strings"

	"github.com/forgo/inkwell/internal/model"
)

// UserService handles administrative user management
type UserService struct {
	userRepo     UserRepository
	groupRepo    GroupRepository
	tokenService *TokenService
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	UserRepo     UserRepository
	GroupRepo    GroupRepository
	TokenService *TokenService
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		userRepo:     cfg.UserRepo,
		groupRepo:    cfg.GroupRepo,
		tokenService: cfg.TokenService,
	}
}

// CreateUserRequest represents an administrative user creation request
type CreateUserRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      model.UserRole
	Groups    []string
}

// CreateUser creates a new account. Username and email must be unique;
// the password must satisfy the account password policy.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}

	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	groups, err := s.resolveGroups(ctx, req.Groups)
	if err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.UserRoleUser
	}

	user := &model.User{
		Username:  username,
		Email:     email,
		Hash:      &hash,
		FirstName: stringPtr(strings.TrimSpace(req.FirstName)),
		LastName:  stringPtr(strings.TrimSpace(req.LastName)),
		Role:      role,
		Groups:    groups,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserRequest represents an administrative user update. Nil
// fields are left unchanged; Password, when set, replaces the current
// one and revokes every session.
type UpdateUserRequest struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Role      *model.UserRole
	Groups    []string
	IsActive  *bool
}

// UpdateUser applies an administrative update to an account
func (s *UserService) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if !isValidEmail(email) {
			return nil, ErrInvalidEmail
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, ErrEmailExists
			}
			user.Email = email
		}
	}

	if req.FirstName != nil {
		user.FirstName = stringPtr(strings.TrimSpace(*req.FirstName))
	}
	if req.LastName != nil {
		user.LastName = stringPtr(strings.TrimSpace(*req.LastName))
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Groups != nil {
		groups, err := s.resolveGroups(ctx, req.Groups)
		if err != nil {
			return nil, err
		}
		user.Groups = groups
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	// Validate the replacement password before any write so a rejected
	// update leaves the account untouched
	var newHash string
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		newHash, err = hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if req.Password != nil {
		if err := s.userRepo.UpdatePassword(ctx, userID, newHash); err != nil {
			return nil, err
		}
		if err := s.tokenService.RevokeAllUserTokens(ctx, userID); err != nil {
			return nil, err
		}
	}

	if req.IsActive != nil && !*req.IsActive {
		if err := s.tokenService.RevokeAllUserTokens(ctx, userID); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns all accounts, active and disabled, ordered by username
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.List(ctx)
}

// DeactivateUser disables an account. The record is kept so authored
// content stays attributed; all sessions are revoked.
func (s *UserService) DeactivateUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.SetActive(ctx, userID, false); err != nil {
		return err
	}
	return s.tokenService.RevokeAllUserTokens(ctx, userID)
}

// resolveGroups verifies that every named group exists and returns the
// names in their stored form
func (s *UserService) resolveGroups(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{}, nil
	}

	groups, err := s.groupRepo.GetByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(groups))
	for _, g := range groups {
		found[g.Name] = true
	}
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		if !found[name] {
			return nil, ErrGroupNotFound
		}
		resolved = append(resolved, name)
	}
	return resolved, nil
}
