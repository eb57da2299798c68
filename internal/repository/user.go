package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	role := user.Role
	if role == "" {
		role = model.UserRoleUser
	}
	groups := user.Groups
	if groups == nil {
		groups = []string{}
	}

	query := `
		CREATE user CONTENT {
			username: $username,
			email: $email,
			hash: IF $hash IS NOT NULL THEN $hash ELSE NONE END,
			first_name: IF $first_name IS NOT NULL THEN $first_name ELSE NONE END,
			last_name: IF $last_name IS NOT NULL THEN $last_name ELSE NONE END,
			role: $role,
			groups: $groups,
			is_active: $is_active,
			created_on: time::now(),
			modified_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"username":   user.Username,
		"email":      user.Email,
		"hash":       ptrValue(user.Hash),
		"first_name": ptrValue(user.FirstName),
		"last_name":  ptrValue(user.LastName),
		"role":       role,
		"groups":     groups,
		"is_active":  user.IsActive,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: username or email already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreated(result)
	if err != nil {
		return err
	}

	user.ID = created.ID
	user.Role = role
	user.CreatedOn = created.CreatedOn
	user.ModifiedOn = created.ModifiedOn
	return nil
}

// GetByID retrieves a user by ID. Returns (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseUser(result)
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM user WHERE email = $value LIMIT 1`, email)
}

// GetByUsername retrieves a user by username. Returns (nil, nil) when absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT * FROM user WHERE username = $value LIMIT 1`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query, value string) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"value": value})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := parseUser(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// List returns all users ordered by username, including inactive accounts.
// The administrative user list shows deactivated users so they can be
// re-enabled.
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT * FROM user ORDER BY username ASC`

	results, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	records, err := listData(results)
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(records))
	for _, data := range records {
		user, err := userFromData(data)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Update updates a user's profile fields, role, groups, and active flag
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE type::record($id) SET
			username = $username,
			email = $email,
			first_name = $first_name,
			last_name = $last_name,
			role = $role,
			groups = $groups,
			is_active = $is_active,
			modified_on = time::now()
	`

	vars := map[string]interface{}{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"role":       user.Role,
		"groups":     user.Groups,
		"is_active":  user.IsActive,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: username or email already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// UpdatePassword updates a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	query := `UPDATE type::record($id) SET hash = $hash, modified_on = time::now()`
	vars := map[string]interface{}{
		"id":   userID,
		"hash": hash,
	}

	return r.db.Execute(ctx, query, vars)
}

// SetLastLogin stamps the user's last login time
func (r *UserRepository) SetLastLogin(ctx context.Context, userID string) error {
	query := `UPDATE type::record($id) SET login_on = time::now()`
	vars := map[string]interface{}{"id": userID}

	return r.db.Execute(ctx, query, vars)
}

// SetActive toggles the soft-delete flag on a user
func (r *UserRepository) SetActive(ctx context.Context, userID string, active bool) error {
	query := `UPDATE type::record($id) SET is_active = $active, modified_on = time::now()`
	vars := map[string]interface{}{
		"id":     userID,
		"active": active,
	}

	return r.db.Execute(ctx, query, vars)
}

func parseUser(result interface{}) (*model.User, error) {
	data, err := recordData(result)
	if err != nil {
		return nil, err
	}
	return userFromData(data)
}

func userFromData(data map[string]interface{}) (*model.User, error) {
	// Extract hash before the JSON round trip (User.Hash has json:"-")
	var hash *string
	if h, ok := data["hash"].(string); ok {
		hash = &h
	}

	user, err := decodeData[model.User](data)
	if err != nil {
		return nil, err
	}
	user.Hash = hash
	return user, nil
}

// ptrValue converts an optional string to its value or nil, letting queries
// branch with IS NOT NULL.
func ptrValue(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
