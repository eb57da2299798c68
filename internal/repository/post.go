package repository

import (
	"context"
	"errors"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"
)

// PostRepository handles post data access
type PostRepository struct {
	db database.Database
}

// NewPostRepository creates a new post repository
func NewPostRepository(db database.Database) *PostRepository {
	return &PostRepository{db: db}
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		CREATE post CONTENT {
			title: $title,
			body: $body,
			tags: $tags,
			display_order: $display_order,
			is_active: true,
			created_by: $created_by,
			modified_by: $modified_by,
			created_on: time::now(),
			modified_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"title":         post.Title,
		"body":          post.Body,
		"tags":          post.Tags,
		"display_order": post.Order,
		"created_by":    post.CreatedBy,
		"modified_by":   post.ModifiedBy,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreated(result)
	if err != nil {
		return err
	}

	post.ID = created.ID
	post.IsActive = true
	post.CreatedOn = created.CreatedOn
	post.ModifiedOn = created.ModifiedOn
	return nil
}

// GetByID retrieves a post by ID. Returns (nil, nil) when absent.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parsePost(result)
}

// List returns active posts in display order: display_order ascending,
// earliest created first within the same position.
func (r *PostRepository) List(ctx context.Context) ([]*model.Post, error) {
	query := `SELECT * FROM post WHERE is_active = true ORDER BY display_order ASC, created_on ASC`
	return r.list(ctx, query)
}

// ListByRecency returns active posts oldest first
func (r *PostRepository) ListByRecency(ctx context.Context) ([]*model.Post, error) {
	query := `SELECT * FROM post WHERE is_active = true ORDER BY created_on ASC`
	return r.list(ctx, query)
}

// ListAll returns every post including soft-deleted ones, for
// administrative views.
func (r *PostRepository) ListAll(ctx context.Context) ([]*model.Post, error) {
	query := `SELECT * FROM post ORDER BY display_order ASC, created_on ASC`
	return r.list(ctx, query)
}

func (r *PostRepository) list(ctx context.Context, query string) ([]*model.Post, error) {
	results, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	records, err := listData(results)
	if err != nil {
		return nil, err
	}

	posts := make([]*model.Post, 0, len(records))
	for _, data := range records {
		post, err := postFromData(data)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Update updates a post's content fields and audit trail
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE type::record($id) SET
			title = $title,
			body = $body,
			tags = $tags,
			display_order = $display_order,
			is_active = $is_active,
			modified_by = $modified_by,
			modified_on = time::now()
	`

	vars := map[string]interface{}{
		"id":            post.ID,
		"title":         post.Title,
		"body":          post.Body,
		"tags":          post.Tags,
		"display_order": post.Order,
		"is_active":     post.IsActive,
		"modified_by":   post.ModifiedBy,
	}

	return r.db.Execute(ctx, query, vars)
}

// Deactivate soft-deletes a post and drops its per-record grants in a
// single transaction. Either both land or neither does, so a hidden
// post can never keep live grants behind.
func (r *PostRepository) Deactivate(ctx context.Context, id, actorID string) error {
	batch := database.NewAtomicBatch().
		Add(`UPDATE type::record($id) SET is_active = false, modified_by = $actor, modified_on = time::now()`, map[string]interface{}{
			"id":    id,
			"actor": actorID,
		}).
		Add(`DELETE grant WHERE record_id = $record_id`, map[string]interface{}{
			"record_id": id,
		})
	return batch.Execute(ctx, r.db)
}

func parsePost(result interface{}) (*model.Post, error) {
	data, err := recordData(result)
	if err != nil {
		return nil, err
	}
	return postFromData(data)
}

// postFromData renames the stored display_order column to the model's
// order field before decoding.
func postFromData(data map[string]interface{}) (*model.Post, error) {
	if v, ok := data["display_order"]; ok {
		data["order"] = v
		delete(data, "display_order")
	}
	return decodeData[model.Post](data)
}
