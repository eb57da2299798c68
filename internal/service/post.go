package service

import (
	"context"
	"strings"

	"github.com/forgo/inkwell/internal/model"
)

// PostRepository defines the interface for post storage
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
	ListByRecency(ctx context.Context) ([]*model.Post, error)
	ListAll(ctx context.Context) ([]*model.Post, error)
	Update(ctx context.Context, post *model.Post) error

	// Deactivate soft-deletes a post and revokes its per-record
	// grants atomically.
	Deactivate(ctx context.Context, id, actorID string) error
}

// PostService handles blog post operations
type PostService struct {
	postRepo PostRepository
}

// PostServiceConfig holds configuration for the post service
type PostServiceConfig struct {
	PostRepo PostRepository
}

// NewPostService creates a new post service
func NewPostService(cfg PostServiceConfig) *PostService {
	return &PostService{
		postRepo: cfg.PostRepo,
	}
}

// CreatePostRequest represents a post creation request
type CreatePostRequest struct {
	Title string
	Body  string
	Tags  string
	Order int
}

// CreatePost creates a new post attributed to the actor
func (s *PostService) CreatePost(ctx context.Context, actorID string, req CreatePostRequest) (*model.Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, ErrBodyRequired
	}

	post := &model.Post{
		Title:      title,
		Body:       req.Body,
		Tags:       strings.TrimSpace(req.Tags),
		Order:      req.Order,
		IsActive:   true,
		CreatedBy:  actorID,
		ModifiedBy: actorID,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost retrieves an active post by ID. Deactivated posts read as
// not found.
func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsActive {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// ListPosts returns active posts in display order, then earliest
// created first within the same position
func (s *PostService) ListPosts(ctx context.Context) ([]*model.Post, error) {
	return s.postRepo.List(ctx)
}

// ListPostsByRecency returns active posts oldest first
func (s *PostService) ListPostsByRecency(ctx context.Context) ([]*model.Post, error) {
	return s.postRepo.ListByRecency(ctx)
}

// ListAllPosts returns every post including deactivated ones
func (s *PostService) ListAllPosts(ctx context.Context) ([]*model.Post, error) {
	return s.postRepo.ListAll(ctx)
}

// UpdatePostRequest represents a post update. Nil fields are left
// unchanged.
type UpdatePostRequest struct {
	Title *string
	Body  *string
	Tags  *string
	Order *int
}

// UpdatePost applies an update to an active post
func (s *PostService) UpdatePost(ctx context.Context, id, actorID string, req UpdatePostRequest) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsActive {
		return nil, ErrPostNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		post.Title = title
	}
	if req.Body != nil {
		if strings.TrimSpace(*req.Body) == "" {
			return nil, ErrBodyRequired
		}
		post.Body = *req.Body
	}
	if req.Tags != nil {
		post.Tags = strings.TrimSpace(*req.Tags)
	}
	if req.Order != nil {
		post.Order = *req.Order
	}
	post.ModifiedBy = actorID

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost deactivates a post. The record survives for audit but
// drops out of lists and reads; per-record grants on it are revoked
// in the same transaction.
func (s *PostService) DeletePost(ctx context.Context, id, actorID string) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil || !post.IsActive {
		return ErrPostNotFound
	}

	return s.postRepo.Deactivate(ctx, id, actorID)
}
