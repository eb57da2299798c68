package model

import "time"

// UserRole represents the system-level role of a user account
type UserRole string

const (
	UserRoleUser  UserRole = "user"  // Default role, access governed by group permissions
	UserRoleAdmin UserRole = "admin" // Bypasses all permission checks
)

// User represents a user account
type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Hash       *string    `json:"-"` // Never expose password hash
	FirstName  *string    `json:"first_name,omitempty"`
	LastName   *string    `json:"last_name,omitempty"`
	Role       UserRole   `json:"role"`
	Groups     []string   `json:"groups"` // Group names the user belongs to
	IsActive   bool       `json:"is_active"`
	CreatedOn  time.Time  `json:"created_on"`
	ModifiedOn time.Time  `json:"modified_on"`
	LoginOn    *time.Time `json:"login_on,omitempty"`
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// InGroup returns true if the user belongs to the named group
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// TokenClaims represents the authenticated identity extracted from an
// access token
type TokenClaims struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	Groups   []string `json:"groups,omitempty"`
}

// IsAdmin returns true if the claims carry the admin role
func (c *TokenClaims) IsAdmin() bool {
	return c.Role == UserRoleAdmin
}

// Group represents a named role holding a set of permission codes.
// Group names are unique.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedOn   time.Time `json:"created_on"`
	ModifiedOn  time.Time `json:"modified_on"`
}

// HasPermission returns true if the group holds the given permission code
func (g *Group) HasPermission(code string) bool {
	for _, p := range g.Permissions {
		if p == code {
			return true
		}
	}
	return false
}
