package repository

import (
	"context"
	"errors"
	"time"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/service"
)

// TokenRepository handles refresh token data access
type TokenRepository struct {
	db database.Database
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db database.Database) *TokenRepository {
	return &TokenRepository{db: db}
}

// CreateRefreshToken stores a new refresh token
func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token *service.RefreshToken) error {
	query := `
		CREATE refresh_token CONTENT {
			user: $user,
			token_hash: $token_hash,
			expires_at: <datetime>$expires_at,
			created_at: time::now(),
			revoked: false
		}
	`

	vars := map[string]interface{}{
		"user":       token.UserID,
		"token_hash": token.TokenHash,
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreated(result)
	if err != nil {
		return err
	}

	token.ID = created.ID
	return nil
}

// GetRefreshTokenByHash retrieves a refresh token by its hash.
// Returns (nil, nil) when absent.
func (r *TokenRepository) GetRefreshTokenByHash(ctx context.Context, hash string) (*service.RefreshToken, error) {
	query := `SELECT * FROM refresh_token WHERE token_hash = $hash LIMIT 1`
	vars := map[string]interface{}{"hash": hash}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, err := recordData(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	token := &service.RefreshToken{
		ID:        convertSurrealID(data["id"]),
		UserID:    convertSurrealID(data["user"]),
		TokenHash: getString(data, "token_hash"),
		ExpiresAt: parseTime(data["expires_at"]),
		CreatedAt: parseTime(data["created_at"]),
	}
	if revoked, ok := data["revoked"].(bool); ok {
		token.Revoked = revoked
	}
	return token, nil
}

// RevokeRefreshToken marks a refresh token as revoked
func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, hash string) error {
	query := `UPDATE refresh_token SET revoked = true WHERE token_hash = $hash`
	vars := map[string]interface{}{"hash": hash}

	return r.db.Execute(ctx, query, vars)
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, userID string) error {
	query := `UPDATE refresh_token SET revoked = true WHERE user = $user`
	vars := map[string]interface{}{"user": userID}

	return r.db.Execute(ctx, query, vars)
}

// DeleteExpiredTokens removes all expired refresh tokens
func (r *TokenRepository) DeleteExpiredTokens(ctx context.Context) error {
	query := `DELETE refresh_token WHERE expires_at < time::now()`

	return r.db.Execute(ctx, query, nil)
}

// getString extracts a string value from a record map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
