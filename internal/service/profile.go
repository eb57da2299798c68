package service

import (
	"context"
	"strings"

	"github.com/forgo/inkwell/internal/model"
)

// ProfileService handles self-service account operations. Unlike the
// administrative UserService, every operation here acts on the caller's
// own account and sensitive changes require the current password.
type ProfileService struct {
	userRepo     UserRepository
	tokenService *TokenService
}

// ProfileServiceConfig holds configuration for the profile service
type ProfileServiceConfig struct {
	UserRepo     UserRepository
	TokenService *TokenService
}

// NewProfileService creates a new profile service
func NewProfileService(cfg ProfileServiceConfig) *ProfileService {
	return &ProfileService{
		userRepo:     cfg.UserRepo,
		tokenService: cfg.TokenService,
	}
}

// UpdateProfileRequest represents a self-service profile update. Nil
// fields are left unchanged. NewEmail requires Password to match the
// account's current password.
type UpdateProfileRequest struct {
	FirstName *string
	LastName  *string
	NewEmail  *string
	Password  string
}

// UpdateProfile applies a profile update to the caller's own account
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserNotFound
	}

	if req.FirstName != nil {
		user.FirstName = stringPtr(strings.TrimSpace(*req.FirstName))
	}
	if req.LastName != nil {
		user.LastName = stringPtr(strings.TrimSpace(*req.LastName))
	}

	if req.NewEmail != nil {
		email := strings.TrimSpace(strings.ToLower(*req.NewEmail))
		if email != user.Email {
			if user.Hash == nil || !checkPassword(req.Password, *user.Hash) {
				return nil, ErrOldPasswordWrong
			}
			if !isValidEmail(email) {
				return nil, ErrInvalidEmail
			}
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

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePasswordRequest represents a self-service password change
type ChangePasswordRequest struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword replaces the caller's password. The old password must
// verify and the confirmation must match; all sessions are revoked so
// other devices must log in again.
func (s *ProfileService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return ErrUserNotFound
	}

	if user.Hash == nil || !checkPassword(req.OldPassword, *user.Hash) {
		return ErrOldPasswordWrong
	}

	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.tokenService.RevokeAllUserTokens(ctx, userID)
}
