package handler

import (
	"context"
	"net/http"

	"github.com/forgo/inkwell/internal/middleware"
	"github.com/forgo/inkwell/internal/model"
	"github.com/forgo/inkwell/internal/service"
)

// PostService defines the post operations the handler depends on
type PostService interface {
	CreatePost(ctx context.Context, actorID string, req service.CreatePostRequest) (*model.Post, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context) ([]*model.Post, error)
	ListPostsByRecency(ctx context.Context) ([]*model.Post, error)
	ListAllPosts(ctx context.Context) ([]*model.Post, error)
	UpdatePost(ctx context.Context, id, actorID string, req service.UpdatePostRequest) (*model.Post, error)
	DeletePost(ctx context.Context, id, actorID string) error
}

// PostHandler handles blog post endpoints
type PostHandler struct {
	postService PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents the create post endpoint request body
type CreatePostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tags  string `json:"tags,omitempty"`
	Order int    `json:"order,omitempty"`
}

// UpdatePostRequest represents the update post endpoint request body.
// Omitted fields are left unchanged.
type UpdatePostRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
	Tags  *string `json:"tags,omitempty"`
	Order *int    `json:"order,omitempty"`
}

// List handles GET /v1/posts. Active posts in display order, earliest
// created first within the same position. ?sort=recency ignores position
// and returns oldest first, and ?format=export renders a bare array for
// download.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		posts []*model.Post
		err   error
	)
	if r.URL.Query().Get("sort") == "recency" {
		posts, err = h.postService.ListPostsByRecency(r.Context())
	} else {
		posts, err = h.postService.ListPosts(r.Context())
	}
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list posts"))
		return
	}

	if r.URL.Query().Get("format") == "export" {
		WriteJSON(w, http.StatusOK, toPostExport(posts))
		return
	}

	WriteCollection(w, http.StatusOK, toPostsResponse(posts), map[string]string{
		"self": "/v1/posts",
	})
}

// ListAll handles GET /v1/posts/all, including deactivated posts.
// Admin only.
func (h *PostHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListAllPosts(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list all posts"))
		return
	}

	WriteCollection(w, http.StatusOK, toPostsResponse(posts), map[string]string{
		"self": "/v1/posts/all",
	})
}

// Create handles POST /v1/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	post, err := h.postService.CreatePost(r.Context(), middleware.GetUserID(r.Context()), service.CreatePostRequest{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
		Order: req.Order,
	})
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "create post"))
		return
	}

	WriteDataMessage(w, http.StatusCreated, toPostResponse(post), "Your new post has been created.", map[string]string{
		"self": "/v1/posts/" + post.ID,
	})
}

// Get handles GET /v1/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get post"))
		return
	}

	WriteData(w, http.StatusOK, toPostResponse(post), map[string]string{
		"self": "/v1/posts/" + post.ID,
	})
}

// Update handles PATCH /v1/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	post, err := h.postService.UpdatePost(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context()), service.UpdatePostRequest{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
		Order: req.Order,
	})
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "update post"))
		return
	}

	WriteDataMessage(w, http.StatusOK, toPostResponse(post), "Your post has been updated.", map[string]string{
		"self": "/v1/posts/" + post.ID,
	})
}

// Delete handles DELETE /v1/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.postService.DeletePost(r.Context(), r.PathValue("id"), middleware.GetUserID(r.Context())); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "delete post"))
		return
	}
	WriteNoContent(w)
}
