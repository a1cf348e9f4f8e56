package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/evcraddock/newsroom/internal/comment"
	"github.com/evcraddock/newsroom/internal/serializer"
)

// ReadGroup is the visibility group rendered for comment responses.
const ReadGroup = "api_read"

// Manager looks up and persists comments.
type Manager interface {
	// Find returns (nil, nil) when no comment has the given ID.
	Find(ctx context.Context, id int64) (*comment.Comment, error)
	Save(ctx context.Context, c *comment.Comment) error
	Delete(ctx context.Context, c *comment.Comment) error
}

// Binder applies a client payload onto an existing comment.
type Binder interface {
	Bind(payload []byte, existing *comment.Comment) comment.BindResult
}

// View is an endpoint result: the status to send, the body, and how to
// serialize it. A nil Context renders Body as plain JSON.
type View struct {
	Status  int
	Body    interface{}
	Context *serializer.Context
}

// NotFoundError reports that an identifier matched no resource.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s (%d) not found", e.Resource, e.ID)
}

// CommentEndpoint implements read, update and delete for comments.
type CommentEndpoint struct {
	manager Manager
	binder  Binder
}

// NewCommentEndpoint creates a comment endpoint.
func NewCommentEndpoint(manager Manager, binder Binder) *CommentEndpoint {
	return &CommentEndpoint{manager: manager, binder: binder}
}

// Get returns the comment with the given ID.
func (e *CommentEndpoint) Get(ctx context.Context, id int64) (View, error) {
	c, err := e.resolve(ctx, id)
	if err != nil {
		return View{}, err
	}
	return readView(c), nil
}

// Update binds payload onto the comment and saves it if valid.
// An invalid payload yields a 400 view carrying the validation failure.
func (e *CommentEndpoint) Update(ctx context.Context, id int64, payload []byte) (View, error) {
	c, err := e.resolve(ctx, id)
	if err != nil {
		return View{}, err
	}

	res := e.binder.Bind(payload, c)
	if !res.Valid() {
		return View{Status: http.StatusBadRequest, Body: res.Failure}, nil
	}

	if err := e.manager.Save(ctx, res.Comment); err != nil {
		return View{}, fmt.Errorf("saving comment %d: %w", id, err)
	}

	return readView(res.Comment), nil
}

// Delete removes the comment. A failure from the manager is reported to
// the client as a 400 error envelope.
func (e *CommentEndpoint) Delete(ctx context.Context, id int64) (View, error) {
	c, err := e.resolve(ctx, id)
	if err != nil {
		return View{}, err
	}

	if err := e.manager.Delete(ctx, c); err != nil {
		slog.WarnContext(ctx, "comment delete failed", "id", id, "error", err)
		return View{Status: http.StatusBadRequest, Body: map[string]string{"error": err.Error()}}, nil
	}

	return View{Status: http.StatusOK, Body: map[string]bool{"deleted": true}}, nil
}

// resolve loads a comment or fails with *NotFoundError.
func (e *CommentEndpoint) resolve(ctx context.Context, id int64) (*comment.Comment, error) {
	c, err := e.manager.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding comment %d: %w", id, err)
	}
	if c == nil {
		return nil, &NotFoundError{Resource: "Comment", ID: id}
	}
	return c, nil
}

func readView(c *comment.Comment) View {
	return View{
		Status:  http.StatusOK,
		Body:    c,
		Context: serializer.NewContext(ReadGroup),
	}
}
