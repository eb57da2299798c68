package repository

import (
	"context"
	"errors"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"
)

// GrantRepository handles per-record permission grant data access
type GrantRepository struct {
	db database.Database
}

// NewGrantRepository creates a new grant repository
func NewGrantRepository(db database.Database) *GrantRepository {
	return &GrantRepository{db: db}
}

// Create stores a new object grant
func (r *GrantRepository) Create(ctx context.Context, grant *model.ObjectGrant) error {
	query := `
		CREATE grant CONTENT {
			user: $user,
			code: $code,
			record_id: $record_id,
			created_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"user":      grant.UserID,
		"code":      grant.Code,
		"record_id": grant.RecordID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreated(result)
	if err != nil {
		return err
	}

	grant.ID = created.ID
	grant.CreatedOn = created.CreatedOn
	return nil
}

// Exists reports whether a grant exists for the given user, permission
// code, and record
func (r *GrantRepository) Exists(ctx context.Context, userID, code, recordID string) (bool, error) {
	query := `SELECT id FROM grant WHERE user = $user AND code = $code AND record_id = $record_id LIMIT 1`
	vars := map[string]interface{}{
		"user":      userID,
		"code":      code,
		"record_id": recordID,
	}

	_, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByUser returns all grants held by a user
func (r *GrantRepository) ListByUser(ctx context.Context, userID string) ([]*model.ObjectGrant, error) {
	query := `SELECT * FROM grant WHERE user = $user ORDER BY created_on ASC`
	vars := map[string]interface{}{"user": userID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, err := listData(result)
	if err != nil {
		return nil, err
	}

	grants := make([]*model.ObjectGrant, 0, len(records))
	for _, data := range records {
		grants = append(grants, grantFromData(data))
	}
	return grants, nil
}

// DeleteForRecord removes all grants referencing a record. Called when
// the record itself is deactivated so stale grants do not linger.
func (r *GrantRepository) DeleteForRecord(ctx context.Context, recordID string) error {
	query := `DELETE grant WHERE record_id = $record_id`
	vars := map[string]interface{}{"record_id": recordID}

	return r.db.Execute(ctx, query, vars)
}

func grantFromData(data map[string]interface{}) *model.ObjectGrant {
	return &model.ObjectGrant{
		ID:        convertSurrealID(data["id"]),
		UserID:    convertSurrealID(data["user"]),
		Code:      getString(data, "code"),
		RecordID:  getString(data, "record_id"),
		CreatedOn: parseTime(data["created_on"]),
	}
}
