// Package post provides the post domain model and data access.
// Posts are the parent resource that comments belong to.
package post

import "time"

// Post is a published article that readers can comment on.
type Post struct {
	ID            int64     `json:"id" groups:"api_read"`
	Title         string    `json:"title" groups:"api_read"`
	Slug          string    `json:"slug" groups:"api_read"`
	Abstract      string    `json:"abstract" groups:"api_read"`
	Content       string    `json:"content" groups:"api_detail"`
	Author        string    `json:"author,omitempty" groups:"api_read"`
	Enabled       bool      `json:"enabled" groups:"api_read"`
	CommentsCount int64     `json:"comments_count" groups:"api_read"`
	CreatedAt     time.Time `json:"created_at" groups:"api_read"`
}
