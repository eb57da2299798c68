// Package fixtures provides test data factories for e2e testing.
//
// Each factory method creates entities with sensible defaults while allowing
// customization via option functions. Factories handle database insertion
// and return fully populated models.
//
// Usage:
//
//	f := fixtures.New(tdb.DB)
//	author := f.CreateUser(t)
//	post := f.CreatePost(t, author)
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// Factory creates test entities in the database
type Factory struct {
	db database.Database
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{db: db}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx() context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	_ = cancel
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Username string
	Email    string
	Password string
	Role     model.UserRole
	Groups   []string
	IsActive bool
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		Username: fmt.Sprintf("user_%s", randomID()),
		Email:    fmt.Sprintf("user_%s@test.local", randomID()),
		Password: "Testpass123",
		Role:     model.UserRoleUser,
		Groups:   []string{},
		IsActive: true,
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	query := `
		CREATE user CONTENT {
			username: $username,
			email: $email,
			hash: $hash,
			role: $role,
			groups: $groups,
			is_active: $is_active,
			created_on: time::now(),
			modified_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"username":  o.Username,
		"email":     o.Email,
		"hash":      string(hash),
		"role":      string(o.Role),
		"groups":    o.Groups,
		"is_active": o.IsActive,
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}

	user := parseUserResult(t, results)
	user.Hash = nil // Don't expose hash in fixture
	return user
}

// CreateAdmin creates an admin user
func (f *Factory) CreateAdmin(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.UserRoleAdmin
	})
}

// CreateAuthor creates a user in the Authors group
func (f *Factory) CreateAuthor(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Groups = []string{"Authors"}
	})
}

// CreateEditor creates a user in the Editors group
func (f *Factory) CreateEditor(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Groups = []string{"Editors"}
	})
}

// CreateDisabledUser creates a deactivated user
func (f *Factory) CreateDisabledUser(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.IsActive = false
	})
}

// ============================================================================
// Group Fixtures
// ============================================================================

// CreateGroup creates a permission group with the given codes
func (f *Factory) CreateGroup(t *testing.T, name string, permissions ...string) *model.Group {
	t.Helper()

	if permissions == nil {
		permissions = []string{}
	}

	query := `
		CREATE user_group CONTENT {
			name: $name,
			permissions: $permissions,
			created_on: time::now(),
			modified_on: time::now()
		}
	`
	results, err := f.db.Query(ctx(), query, map[string]interface{}{
		"name":        name,
		"permissions": permissions,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create group: %v", err)
	}

	data := extractFirstResult(t, results)
	return &model.Group{
		ID:          getString(data, "id"),
		Name:        getString(data, "name"),
		Permissions: getStringSlice(data, "permissions"),
		CreatedOn:   getTime(data, "created_on"),
		ModifiedOn:  getTime(data, "modified_on"),
	}
}

// ============================================================================
// Post Fixtures
// ============================================================================

// PostOpts customizes post creation
type PostOpts struct {
	Title    string
	Body     string
	Tags     string
	Order    int
	IsActive bool
}

// CreatePost creates a post attributed to the given author
func (f *Factory) CreatePost(t *testing.T, author *model.User, opts ...func(*PostOpts)) *model.Post {
	t.Helper()

	o := &PostOpts{
		Title:    fmt.Sprintf("Post %s", randomID()),
		Body:     "Test post body.",
		Tags:     "test",
		Order:    0,
		IsActive: true,
	}
	for _, fn := range opts {
		fn(o)
	}

	query := `
		CREATE post CONTENT {
			title: $title,
			body: $body,
			tags: $tags,
			display_order: $display_order,
			is_active: $is_active,
			created_by: $created_by,
			modified_by: $created_by,
			created_on: time::now(),
			modified_on: time::now()
		}
	`
	results, err := f.db.Query(ctx(), query, map[string]interface{}{
		"title":         o.Title,
		"body":          o.Body,
		"tags":          o.Tags,
		"display_order": o.Order,
		"is_active":     o.IsActive,
		"created_by":    author.ID,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create post: %v", err)
	}

	data := extractFirstResult(t, results)
	return &model.Post{
		ID:         getString(data, "id"),
		Title:      getString(data, "title"),
		Body:       getString(data, "body"),
		Tags:       getString(data, "tags"),
		Order:      getInt(data, "display_order"),
		IsActive:   getBool(data, "is_active"),
		CreatedBy:  getString(data, "created_by"),
		ModifiedBy: getString(data, "modified_by"),
		CreatedOn:  getTime(data, "created_on"),
		ModifiedOn: getTime(data, "modified_on"),
	}
}

// CreateInactivePost creates a soft-deleted post
func (f *Factory) CreateInactivePost(t *testing.T, author *model.User) *model.Post {
	return f.CreatePost(t, author, func(o *PostOpts) {
		o.IsActive = false
	})
}

// ============================================================================
// Category Fixtures
// ============================================================================

// CreateCategory creates a category
func (f *Factory) CreateCategory(t *testing.T, creator *model.User, name string) *model.Category {
	t.Helper()

	query := `
		CREATE category CONTENT {
			name: $name,
			is_active: true,
			created_by: $created_by,
			modified_by: $created_by,
			created_on: time::now(),
			modified_on: time::now()
		}
	`
	results, err := f.db.Query(ctx(), query, map[string]interface{}{
		"name":       name,
		"created_by": creator.ID,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create category: %v", err)
	}

	data := extractFirstResult(t, results)
	return &model.Category{
		ID:         getString(data, "id"),
		Name:       getString(data, "name"),
		IsActive:   getBool(data, "is_active"),
		CreatedBy:  getString(data, "created_by"),
		ModifiedBy: getString(data, "modified_by"),
		CreatedOn:  getTime(data, "created_on"),
		ModifiedOn: getTime(data, "modified_on"),
	}
}

// ============================================================================
// Token Fixtures
// ============================================================================

// RecoveryTokenOpts customizes recovery token creation
type RecoveryTokenOpts struct {
	Token     string
	ExpiresOn time.Time
	Used      bool
}

// CreateRecoveryToken creates a recovery token for a user
func (f *Factory) CreateRecoveryToken(t *testing.T, user *model.User, opts ...func(*RecoveryTokenOpts)) *model.RecoveryToken {
	t.Helper()

	o := &RecoveryTokenOpts{
		Token:     randomID(),
		ExpiresOn: time.Now().Add(48 * time.Hour),
		Used:      false,
	}
	for _, fn := range opts {
		fn(o)
	}

	query := `
		CREATE recovery_token CONTENT {
			user: $user,
			token: $token,
			expires_on: <datetime>$expires_on,
			used: $used,
			created_on: time::now()
		}
	`
	results, err := f.db.Query(ctx(), query, map[string]interface{}{
		"user":       user.ID,
		"token":      o.Token,
		"expires_on": o.ExpiresOn.UTC().Format(time.RFC3339),
		"used":       o.Used,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create recovery token: %v", err)
	}

	data := extractFirstResult(t, results)
	return &model.RecoveryToken{
		ID:        getString(data, "id"),
		UserID:    getString(data, "user"),
		Token:     getString(data, "token"),
		ExpiresOn: getTime(data, "expires_on"),
		Used:      getBool(data, "used"),
		CreatedOn: getTime(data, "created_on"),
	}
}

// ExpiredRecoveryToken returns an option that backdates the token
func ExpiredRecoveryToken() func(*RecoveryTokenOpts) {
	return func(o *RecoveryTokenOpts) {
		o.ExpiresOn = time.Now().Add(-1 * time.Hour)
	}
}

// ============================================================================
// Grant Fixtures
// ============================================================================

// CreateGrant creates a per-record permission grant
func (f *Factory) CreateGrant(t *testing.T, user *model.User, code, recordID string) *model.ObjectGrant {
	t.Helper()

	query := `
		CREATE grant CONTENT {
			user: $user,
			code: $code,
			record_id: $record_id,
			created_on: time::now()
		}
	`
	results, err := f.db.Query(ctx(), query, map[string]interface{}{
		"user":      user.ID,
		"code":      code,
		"record_id": recordID,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create grant: %v", err)
	}

	data := extractFirstResult(t, results)
	return &model.ObjectGrant{
		ID:        getString(data, "id"),
		UserID:    getString(data, "user"),
		Code:      getString(data, "code"),
		RecordID:  getString(data, "record_id"),
		CreatedOn: getTime(data, "created_on"),
	}
}

// ============================================================================
// Parsing Helpers
// ============================================================================

func parseUserResult(t *testing.T, results []interface{}) *model.User {
	t.Helper()
	data := extractFirstResult(t, results)
	return &model.User{
		ID:         getString(data, "id"),
		Username:   getString(data, "username"),
		Email:      getString(data, "email"),
		Role:       model.UserRole(getString(data, "role")),
		Groups:     getStringSlice(data, "groups"),
		IsActive:   getBool(data, "is_active"),
		CreatedOn:  getTime(data, "created_on"),
		ModifiedOn: getTime(data, "modified_on"),
	}
}

func extractFirstResult(t *testing.T, results []interface{}) map[string]interface{} {
	t.Helper()
	if len(results) == 0 {
		t.Fatal("fixtures: no results returned")
	}

	// Handle SurrealDB response wrapper
	resp, ok := results[0].(map[string]interface{})
	if !ok {
		t.Fatalf("fixtures: unexpected result type: %T", results[0])
	}

	result, ok := resp["result"]
	if !ok {
		t.Fatal("fixtures: no result in response")
	}

	// Handle array result
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			t.Fatal("fixtures: empty result array")
		}
		data, ok := arr[0].(map[string]interface{})
		if !ok {
			t.Fatalf("fixtures: unexpected array item type: %T", arr[0])
		}
		return data
	}

	// Handle single result
	data, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("fixtures: unexpected result type: %T", result)
	}
	return data
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	// Handle SurrealDB record ID type - could be a struct or map
	if v := data[key]; v != nil {
		if m, ok := v.(map[string]interface{}); ok {
			if tb, ok := m["tb"].(string); ok {
				if id := m["id"]; id != nil {
					return fmt.Sprintf("%s:%v", tb, id)
				}
			}
		}
		// Fallback: use string conversion but fix the format if needed
		s := fmt.Sprintf("%v", v)
		if len(s) > 2 && s[0] == '{' && s[len(s)-1] == '}' {
			inner := s[1 : len(s)-1]
			for i, c := range inner {
				if c == ' ' {
					return inner[:i] + ":" + inner[i+1:]
				}
			}
		}
		return s
	}
	return ""
}

func getStringSlice(data map[string]interface{}, key string) []string {
	arr, ok := data[key].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getBool(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

func getInt(data map[string]interface{}, key string) int {
	if v, ok := data[key].(float64); ok {
		return int(v)
	}
	return 0
}

func getTime(data map[string]interface{}, key string) time.Time {
	if v, ok := data[key].(string); ok {
		t, _ := time.Parse(time.RFC3339Nano, v)
		return t
	}
	return time.Time{}
}
