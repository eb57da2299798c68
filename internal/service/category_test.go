package service

import (
	"context"
	"testing"
	"time"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"
)

type mockCategoryRepo struct {
	categories map[string]*model.Category
	nextID     int
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[string]*model.Category)}
}

func (m *mockCategoryRepo) nameTaken(name, excludeID string) bool {
	for _, c := range m.categories {
		if c.Name == name && c.ID != excludeID {
			return true
		}
	}
	return false
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	if m.nameTaken(category.Name, "") {
		return database.ErrDuplicate
	}
	m.nextID++
	category.ID = "category:" + string(rune('a'+m.nextID-1))
	category.CreatedOn = time.Now()
	category.ModifiedOn = time.Now()
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	return m.categories[id], nil
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*model.Category, error) {
	var result []*model.Category
	for _, c := range m.categories {
		if c.IsActive {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	if m.nameTaken(category.Name, category.ID) {
		return database.ErrDuplicate
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) Deactivate(ctx context.Context, id, actorID string) error {
	if c, ok := m.categories[id]; ok {
		c.IsActive = false
		c.ModifiedBy = actorID
	}
	return nil
}

func TestCategoryService_CreateCategory(t *testing.T) {
	svc := NewCategoryService(newMockCategoryRepo())
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "user:jdoe", " Politics ")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if category.Name != "Politics" {
		t.Errorf("expected trimmed name, got %q", category.Name)
	}
	if category.CreatedBy != "user:jdoe" {
		t.Errorf("expected author attribution, got %s", category.CreatedBy)
	}

	if _, err := svc.CreateCategory(ctx, "user:jdoe", "Politics"); err != ErrCategoryNameTaken {
		t.Errorf("expected ErrCategoryNameTaken, got %v", err)
	}
	if _, err := svc.CreateCategory(ctx, "user:jdoe", "   "); err != ErrNameRequired {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}
}

func TestCategoryService_RenameCategory(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	politics, err := svc.CreateCategory(ctx, "user:jdoe", "Politics")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, "user:jdoe", "Sports"); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	renamed, err := svc.RenameCategory(ctx, politics.ID, "user:asmith", "World Politics")
	if err != nil {
		t.Fatalf("RenameCategory failed: %v", err)
	}
	if renamed.Name != "World Politics" {
		t.Errorf("expected renamed category, got %q", renamed.Name)
	}
	if renamed.ModifiedBy != "user:asmith" {
		t.Errorf("expected modifier attribution, got %s", renamed.ModifiedBy)
	}

	if _, err := svc.RenameCategory(ctx, politics.ID, "user:asmith", "Sports"); err != ErrCategoryNameTaken {
		t.Errorf("expected ErrCategoryNameTaken, got %v", err)
	}
	if _, err := svc.RenameCategory(ctx, "category:ghost", "user:asmith", "X"); err != ErrCategoryNotFound {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "user:jdoe", "Politics")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	if err := svc.DeleteCategory(ctx, category.ID, "user:root"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	if repo.categories[category.ID].IsActive {
		t.Error("expected the category to be deactivated, not deleted")
	}
	if _, err := svc.GetCategory(ctx, category.ID); err != ErrCategoryNotFound {
		t.Errorf("expected deactivated category to read as not found, got %v", err)
	}
	if err := svc.DeleteCategory(ctx, category.ID, "user:root"); err != ErrCategoryNotFound {
		t.Errorf("expected ErrCategoryNotFound on double delete, got %v", err)
	}
}
