package handler

import (
	"time"

	"github.com/forgo/inkwell/internal/model"
	"github.com/forgo/inkwell/internal/service"
)

// displayTimeFormat is the human-readable timestamp format used in list
// and export rows
const displayTimeFormat = "Jan 02, 2006 15:04"

func displayTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayTimeFormat)
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	FirstName  *string  `json:"first_name,omitempty"`
	LastName   *string  `json:"last_name,omitempty"`
	Role       string   `json:"role"`
	Groups     []string `json:"groups"`
	IsActive   bool     `json:"is_active"`
	CreatedOn  string   `json:"created_on"`
	ModifiedOn string   `json:"modified_on"`
	LoginOn    *string  `json:"login_on,omitempty"`
}

func toUserResponse(user *model.User) UserResponse {
	resp := UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       string(user.Role),
		Groups:     user.Groups,
		IsActive:   user.IsActive,
		CreatedOn:  displayTime(user.CreatedOn),
		ModifiedOn: displayTime(user.ModifiedOn),
	}
	if resp.Groups == nil {
		resp.Groups = []string{}
	}
	if user.LoginOn != nil {
		formatted := displayTime(*user.LoginOn)
		resp.LoginOn = &formatted
	}
	return resp
}

func toUsersResponse(users []*model.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, toUserResponse(user))
	}
	return result
}

// PostResponse represents a post in API responses
type PostResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Tags       string `json:"tags,omitempty"`
	Order      int    `json:"order"`
	IsActive   bool   `json:"is_active"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by"`
	CreatedOn  string `json:"created_on"`
	ModifiedOn string `json:"modified_on"`
}

func toPostResponse(post *model.Post) PostResponse {
	return PostResponse{
		ID:         post.ID,
		Title:      post.Title,
		Body:       post.Body,
		Tags:       post.Tags,
		Order:      post.Order,
		IsActive:   post.IsActive,
		CreatedBy:  post.CreatedBy,
		ModifiedBy: post.ModifiedBy,
		CreatedOn:  displayTime(post.CreatedOn),
		ModifiedOn: displayTime(post.ModifiedOn),
	}
}

func toPostsResponse(posts []*model.Post) []PostResponse {
	result := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		result = append(result, toPostResponse(post))
	}
	return result
}

// postExportRow is the flat shape of one post in an export download.
// Field order and names are stable so downstream spreadsheets keep
// working.
type postExportRow struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Tags      string `json:"tags"`
	Order     int    `json:"order"`
	CreatedBy string `json:"created_by"`
	CreatedOn string `json:"created_on"`
}

func toPostExport(posts []*model.Post) []postExportRow {
	rows := make([]postExportRow, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, postExportRow{
			ID:        post.ID,
			Title:     post.Title,
			Tags:      post.Tags,
			Order:     post.Order,
			CreatedBy: post.CreatedBy,
			CreatedOn: displayTime(post.CreatedOn),
		})
	}
	return rows
}

// userExportRow is the flat shape of one user in an export download
type userExportRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	LoginOn  string `json:"login_on"`
}

func toUserExport(users []*model.User) []userExportRow {
	rows := make([]userExportRow, 0, len(users))
	for _, user := range users {
		row := userExportRow{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     string(user.Role),
			IsActive: user.IsActive,
		}
		if user.LoginOn != nil {
			row.LoginOn = displayTime(*user.LoginOn)
		}
		rows = append(rows, row)
	}
	return rows
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsActive   bool   `json:"is_active"`
	CreatedBy  string `json:"created_by"`
	CreatedOn  string `json:"created_on"`
	ModifiedOn string `json:"modified_on"`
}

func toCategoryResponse(category *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:         category.ID,
		Name:       category.Name,
		IsActive:   category.IsActive,
		CreatedBy:  category.CreatedBy,
		CreatedOn:  displayTime(category.CreatedOn),
		ModifiedOn: displayTime(category.ModifiedOn),
	}
}

func toCategoriesResponse(categories []*model.Category) []CategoryResponse {
	result := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		result = append(result, toCategoryResponse(category))
	}
	return result
}

// GroupResponse represents a permission group in API responses
type GroupResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func toGroupResponse(group *model.Group) GroupResponse {
	resp := GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Permissions: group.Permissions,
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}
	return resp
}

func toGroupsResponse(groups []*model.Group) []GroupResponse {
	result := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		result = append(result, toGroupResponse(group))
	}
	return result
}

// GrantResponse represents a per-record grant in API responses
type GrantResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Code      string `json:"code"`
	RecordID  string `json:"record"`
	CreatedOn string `json:"created_on"`
}

func toGrantResponse(grant *model.ObjectGrant) GrantResponse {
	return GrantResponse{
		ID:        grant.ID,
		UserID:    grant.UserID,
		Code:      grant.Code,
		RecordID:  grant.RecordID,
		CreatedOn: displayTime(grant.CreatedOn),
	}
}

func toGrantsResponse(grants []*model.ObjectGrant) []GrantResponse {
	result := make([]GrantResponse, 0, len(grants))
	for _, grant := range grants {
		result = append(result, toGrantResponse(grant))
	}
	return result
}

// TokenResponse represents a token response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func toTokenResponse(tokenPair *service.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
	}
}
