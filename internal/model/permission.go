package model

import (
	"fmt"
	"strings"
	"time"
)

// WildcardAction is the action segment that expands to every registered
// action for a resource, e.g. "blog.post.*".
const WildcardAction = "*"

// PermissionCode is a parsed "<app>.<resource>.<action>" permission code
type PermissionCode struct {
	App      string
	Resource string
	Action   string
}

// String returns the dotted form of the code
func (c PermissionCode) String() string {
	return c.App + "." + c.Resource + "." + c.Action
}

// IsWildcard returns true if the code's action segment is the wildcard
func (c PermissionCode) IsWildcard() bool {
	return c.Action == WildcardAction
}

// ParsePermissionCode parses a dotted permission code. Codes must have
// exactly three non-empty segments; anything else is malformed.
func ParsePermissionCode(code string) (PermissionCode, error) {
	parts := strings.Split(code, ".")
	if len(parts) != 3 {
		return PermissionCode{}, fmt.Errorf("malformed permission code %q: expected <app>.<resource>.<action>", code)
	}
	for _, p := range parts {
		if p == "" {
			return PermissionCode{}, fmt.Errorf("malformed permission code %q: empty segment", code)
		}
	}
	return PermissionCode{App: parts[0], Resource: parts[1], Action: parts[2]}, nil
}

// ObjectGrant gives one user one action on one specific record, checked
// after the user's group permissions.
type ObjectGrant struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Code      string    `json:"code"`   // Full permission code, e.g. "blog.post.update"
	RecordID  string    `json:"record"` // Target record ID, e.g. "post:abc"
	CreatedOn time.Time `json:"created_on"`
}
