package model

import "time"

// Post represents a blog post
type Post struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Tags  string `json:"tags"`

	// Order controls display position in listings. Lower values sort first;
	// ties break on CreatedOn, earliest first.
	Order int `json:"order"`

	IsActive   bool      `json:"is_active"`
	CreatedBy  string    `json:"created_by"`
	ModifiedBy string    `json:"modified_by"`
	CreatedOn  time.Time `json:"created_on"`
	ModifiedOn time.Time `json:"modified_on"`
}

// Category represents a post category. Category names are unique.
type Category struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IsActive   bool      `json:"is_active"`
	CreatedBy  string    `json:"created_by"`
	ModifiedBy string    `json:"modified_by"`
	CreatedOn  time.Time `json:"created_on"`
	ModifiedOn time.Time `json:"modified_on"`
}
