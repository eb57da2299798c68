package handler

import (
	"context"
	"net/http"

	"github.com/forgo/inkwell/internal/middleware"
	"github.com/forgo/inkwell/internal/model"
)

// CategoryService defines the category operations the handler depends on
type CategoryService interface {
	CreateCategory(ctx context.Context, actorID, name string) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	RenameCategory(ctx context.Context, id, actorID, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id, actorID string) error
}

// CategoryHandler handles blog category endpoints
type CategoryHandler struct {
	categoryService CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest represents the create and rename request body
type CategoryRequest struct {
	Name string `json:"name"`
}

// List handles GET /v1/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list categories"))
		return
	}

	WriteCollection(w, http.StatusOK, toCategoriesResponse(categories), map[string]string{
		"self": "/v1/categories",
	})
}

// Create handles POST /v1/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "create category"))
		return
	}

	WriteDataMessage(w, http.StatusCreated, toCategoryResponse(category), "Your new category has been created.", map[string]string{
		"self": "/v1/categories/" + category.ID,
	})
}

// Get handles GET /v1/categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categoryService.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get category"))
		return
	}

	WriteData(w, http.StatusOK, toCategoryResponse(category), map[string]string{
		"self": "/v1/categories/" + category.ID,
	})
}

// Update handles PATCH /v1/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	category, err := h.categoryService.RenameCategory(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "rename category"))
		return
	}

	WriteDataMessage(w, http.StatusOK, toCategoryResponse(category), "Your category has been updated.", map[string]string{
		"self": "/v1/categories/" + category.ID,
	})
}

// Delete handles DELETE /v1/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categoryService.DeleteCategory(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context())); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "delete category"))
		return
	}
	WriteNoContent(w)
}
