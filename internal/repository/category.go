package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"
)

// CategoryRepository handles category data access
type CategoryRepository struct {
	db database.Database
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db database.Database) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create creates a new category. Category names are unique; a duplicate
// surfaces as database.ErrDuplicate for the service to map onto the name
// field.
func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	query := `
		CREATE category CONTENT {
			name: $name,
			is_active: true,
			created_by: $created_by,
			modified_by: $modified_by,
			created_on: time::now(),
			modified_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"name":        category.Name,
		"created_by":  category.CreatedBy,
		"modified_by": category.ModifiedBy,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: category name already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreated(result)
	if err != nil {
		return err
	}

	category.ID = created.ID
	category.IsActive = true
	category.CreatedOn = created.CreatedOn
	category.ModifiedOn = created.ModifiedOn
	return nil
}

// GetByID retrieves a category by ID. Returns (nil, nil) when absent.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*model.Category, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return decodeRecord[model.Category](result)
}

// List returns active categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	query := `SELECT * FROM category WHERE is_active = true ORDER BY name ASC`

	results, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return decodeList[model.Category](results)
}

// Update updates a category's name and audit trail
func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			is_active = $is_active,
			modified_by = $modified_by,
			modified_on = time::now()
	`

	vars := map[string]interface{}{
		"id":          category.ID,
		"name":        category.Name,
		"is_active":   category.IsActive,
		"modified_by": category.ModifiedBy,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: category name already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// Deactivate soft-deletes a category
func (r *CategoryRepository) Deactivate(ctx context.Context, id, actorID string) error {
	query := `UPDATE type::record($id) SET is_active = false, modified_by = $actor, modified_on = time::now()`
	vars := map[string]interface{}{
		"id":    id,
		"actor": actorID,
	}

	return r.db.Execute(ctx, query, vars)
}
