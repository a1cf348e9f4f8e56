// Package comment provides the comment domain model, its storage manager
// and the form binder used to apply client updates.
package comment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evcraddock/newsroom/internal/post"
)

// Status is the moderation state of a comment.
type Status int

const (
	StatusInvalid  Status = 0
	StatusValid    Status = 1
	StatusModerate Status = 2
)

// String returns the status label.
func (s Status) String() string {
	switch s {
	case StatusInvalid:
		return "invalid"
	case StatusValid:
		return "valid"
	case StatusModerate:
		return "moderate"
	default:
		return "unknown"
	}
}

// ParseStatus accepts a status label or its numeric value.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "invalid":
		return StatusInvalid, nil
	case "valid":
		return StatusValid, nil
	case "moderate":
		return StatusModerate, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(StatusInvalid) || n > int(StatusModerate) {
		return 0, fmt.Errorf("invalid status %q (use invalid, valid or moderate)", s)
	}
	return Status(n), nil
}

// Comment is a reader's note on a post.
type Comment struct {
	ID        int64      `json:"id" groups:"api_read"`
	PostID    int64      `json:"post_id" groups:"api_read"`
	Name      string     `json:"name" groups:"api_read,api_write"`
	Email     string     `json:"email" groups:"api_read,api_write"`
	URL       string     `json:"url,omitempty" groups:"api_read,api_write"`
	Message   string     `json:"message" groups:"api_read,api_write"`
	Status    Status     `json:"status" groups:"api_read,api_write"`
	CreatedAt time.Time  `json:"created_at" groups:"api_read"`
	UpdatedAt time.Time  `json:"updated_at" groups:"api_read"`
	Post      *post.Post `json:"post,omitempty" groups:"api_read" maxdepth:"1"`
}
