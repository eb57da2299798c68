package service

import (
	"context"
	"errors"
	"strings"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"
)

// CategoryRepository defines the interface for category storage
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Deactivate(ctx context.Context, id, actorID string) error
}

// CategoryService handles blog category operations
type CategoryService struct {
	categoryRepo CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategory creates a new category. Names are unique; a duplicate
// surfaces as ErrCategoryNameTaken so handlers can report it against
// the name field.
func (s *CategoryService) CreateCategory(ctx context.Context, actorID, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	category := &model.Category{
		Name:       name,
		IsActive:   true,
		CreatedBy:  actorID,
		ModifiedBy: actorID,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}
	return category, nil
}

// GetCategory retrieves an active category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil || !category.IsActive {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// ListCategories returns active categories ordered by name
func (s *CategoryService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.categoryRepo.List(ctx)
}

// RenameCategory changes a category's name, keeping names unique
func (s *CategoryService) RenameCategory(ctx context.Context, id, actorID, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil || !category.IsActive {
		return nil, ErrCategoryNotFound
	}

	category.Name = name
	category.ModifiedBy = actorID

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}
	return category, nil
}

// DeleteCategory deactivates a category
func (s *CategoryService) DeleteCategory(ctx context.Context, id, actorID string) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil || !category.IsActive {
		return ErrCategoryNotFound
	}
	return s.categoryRepo.Deactivate(ctx, id, actorID)
}
