package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/forgo/inkwell/internal/model"
	"github.com/google/uuid"
)

// RecoveryTokenRepository defines the interface for recovery token storage
type RecoveryTokenRepository interface {
	Create(ctx context.Context, token *model.RecoveryToken) error
	GetByToken(ctx context.Context, value string) (*model.RecoveryToken, error)
	MarkUsed(ctx context.Context, id string) error
	InvalidateForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}

// RecoveryService handles the forgot-password flow
type RecoveryService struct {
	userRepo     UserRepository
	recoveryRepo RecoveryTokenRepository
	tokenService *TokenService
	mailer       Mailer
	tokenTTL     time.Duration
	baseURL      string
}

// RecoveryServiceConfig holds configuration for the recovery service
type RecoveryServiceConfig struct {
	UserRepo     UserRepository
	RecoveryRepo RecoveryTokenRepository
	TokenService *TokenService
	Mailer       Mailer
	TokenTTL     time.Duration // Default: 48 hours
	BaseURL      string        // Prefix for the recovery link sent by mail
}

// NewRecoveryService creates a new recovery service
func NewRecoveryService(cfg RecoveryServiceConfig) *RecoveryService {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 48 * time.Hour
	}

	return &RecoveryService{
		userRepo:     cfg.UserRepo,
		recoveryRepo: cfg.RecoveryRepo,
		tokenService: cfg.TokenService,
		mailer:       cfg.Mailer,
		tokenTTL:     cfg.TokenTTL,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// RequestRecovery starts the forgot-password flow for an email address.
// It always succeeds from the caller's perspective so the endpoint
// cannot be used to probe which addresses have accounts. Issuing a new
// token invalidates any outstanding ones.
func (s *RecoveryService) RequestRecovery(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		slog.Info("recovery requested for unknown or disabled account", slog.String("email", email))
		return nil
	}

	if err := s.recoveryRepo.InvalidateForUser(ctx, user.ID); err != nil {
		return err
	}

	token := &model.RecoveryToken{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresOn: time.Now().Add(s.tokenTTL),
	}
	if err := s.recoveryRepo.Create(ctx, token); err != nil {
		return err
	}

	mail := Mail{
		To:      user.Email,
		Subject: "Password recovery",
		Body: fmt.Sprintf("A password reset was requested for your account.\n\n"+
			"Reset your password here: %s/recover/%s\n\n"+
			"The link expires in %d hours. If you did not request this, ignore this message.",
			s.baseURL, token.Token, int(s.tokenTTL.Hours())),
	}
	return s.mailer.Send(ctx, mail)
}

// Recover completes the flow: validates the token, sets the new
// password, and consumes the token. Tokens are single use.
func (s *RecoveryService) Recover(ctx context.Context, tokenValue, newPassword, confirmPassword string) error {
	token, err := s.recoveryRepo.GetByToken(ctx, tokenValue)
	if err != nil {
		return err
	}
	if token == nil {
		return ErrRecoveryTokenInvalid
	}
	if token.Used {
		return ErrRecoveryTokenUsed
	}
	if !token.IsLive(time.Now()) {
		return ErrRecoveryTokenExpired
	}

	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return ErrRecoveryTokenInvalid
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.recoveryRepo.MarkUsed(ctx, token.ID); err != nil {
		return err
	}
	return s.tokenService.RevokeAllUserTokens(ctx, user.ID)
}

// DeleteExpiredTokens removes expired recovery tokens
func (s *RecoveryService) DeleteExpiredTokens(ctx context.Context) error {
	return s.recoveryRepo.DeleteExpired(ctx)
}
