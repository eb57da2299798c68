package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"
)

// GroupRepository handles permission group data access
type GroupRepository struct {
	db database.Database
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db database.Database) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *model.Group) error {
	perms := group.Permissions
	if perms == nil {
		perms = []string{}
	}

	query := `
		CREATE user_group CONTENT {
			name: $name,
			permissions: $permissions,
			created_on: time::now(),
			modified_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"name":        group.Name,
		"permissions": perms,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: group name already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreated(result)
	if err != nil {
		return err
	}

	group.ID = created.ID
	group.CreatedOn = created.CreatedOn
	group.ModifiedOn = created.ModifiedOn
	return nil
}

// GetByName retrieves a group by its unique name. Returns (nil, nil) when absent.
func (r *GroupRepository) GetByName(ctx context.Context, name string) (*model.Group, error) {
	query := `SELECT * FROM user_group WHERE name = $name LIMIT 1`
	vars := map[string]interface{}{"name": name}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	group, err := decodeRecord[model.Group](result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return group, nil
}

// GetByNames retrieves all groups matching the given names
func (r *GroupRepository) GetByNames(ctx context.Context, names []string) ([]*model.Group, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := `SELECT * FROM user_group WHERE name IN $names`
	vars := map[string]interface{}{"names": names}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return decodeList[model.Group](results)
}

// List returns all groups ordered by name
func (r *GroupRepository) List(ctx context.Context) ([]*model.Group, error) {
	query := `SELECT * FROM user_group ORDER BY name ASC`

	results, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return decodeList[model.Group](results)
}

// SetPermissions replaces a group's permission codes
func (r *GroupRepository) SetPermissions(ctx context.Context, groupID string, permissions []string) error {
	if permissions == nil {
		permissions = []string{}
	}

	query := `UPDATE type::record($id) SET permissions = $permissions, modified_on = time::now()`
	vars := map[string]interface{}{
		"id":          groupID,
		"permissions": permissions,
	}

	return r.db.Execute(ctx, query, vars)
}
