package repository

import (
	"context"
	"errors"
	"time"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"
)

// RecoveryTokenRepository handles password recovery token data access
type RecoveryTokenRepository struct {
	db database.Database
}

// NewRecoveryTokenRepository creates a new recovery token repository
func NewRecoveryTokenRepository(db database.Database) *RecoveryTokenRepository {
	return &RecoveryTokenRepository{db: db}
}

// Create stores a new recovery token
func (r *RecoveryTokenRepository) Create(ctx context.Context, token *model.RecoveryToken) error {
	query := `
		CREATE recovery_token CONTENT {
			user: $user,
			token: $token,
			expires_on: <datetime>$expires_on,
			used: false,
			created_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"user":       token.UserID,
		"token":      token.Token,
		"expires_on": token.ExpiresOn.Format(time.RFC3339),
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
	token.CreatedOn = created.CreatedOn
	return nil
}

// GetByToken retrieves a recovery token by its value.
// Returns (nil, nil) when no such token exists.
func (r *RecoveryTokenRepository) GetByToken(ctx context.Context, value string) (*model.RecoveryToken, error) {
	query := `SELECT * FROM recovery_token WHERE token = $token LIMIT 1`
	vars := map[string]interface{}{"token": value}

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

	return recoveryTokenFromData(data), nil
}

// MarkUsed flags a recovery token as consumed
func (r *RecoveryTokenRepository) MarkUsed(ctx context.Context, id string) error {
	query := `UPDATE type::record($id) SET used = true`
	vars := map[string]interface{}{"id": id}

	return r.db.Execute(ctx, query, vars)
}

// InvalidateForUser marks all outstanding tokens for a user as used.
// Issuing a new token supersedes any earlier ones.
func (r *RecoveryTokenRepository) InvalidateForUser(ctx context.Context, userID string) error {
	query := `UPDATE recovery_token SET used = true WHERE user = $user AND used = false`
	vars := map[string]interface{}{"user": userID}

	return r.db.Execute(ctx, query, vars)
}

// DeleteExpired removes all expired recovery tokens
func (r *RecoveryTokenRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE recovery_token WHERE expires_on < time::now()`

	return r.db.Execute(ctx, query, nil)
}

func recoveryTokenFromData(data map[string]interface{}) *model.RecoveryToken {
	token := &model.RecoveryToken{
		ID:        convertSurrealID(data["id"]),
		UserID:    convertSurrealID(data["user"]),
		Token:     getString(data, "token"),
		ExpiresOn: parseTime(data["expires_on"]),
		CreatedOn: parseTime(data["created_on"]),
	}
	if used, ok := data["used"].(bool); ok {
		token.Used = used
	}
	return token
}
