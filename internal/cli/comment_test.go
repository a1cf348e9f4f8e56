package cli

import (
	"context"
	"database/sql"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evcraddock/newsroom/internal/api"
	"github.com/evcraddock/newsroom/internal/comment"
	"github.com/evcraddock/newsroom/internal/db"
	"github.com/evcraddock/newsroom/internal/post"
)

// setupAPI starts the comment API over a fresh database holding one post
// and one valid comment, and points the CLI at it.
func setupAPI(t *testing.T) (*sql.DB, *comment.Comment) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NR_API_KEY", "")

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := database.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	ctx := context.Background()
	p, err := post.NewRepository(database).Insert(ctx, &post.Post{Title: "Launch Day", Enabled: true})
	if err != nil {
		t.Fatalf("insert post: %v", err)
	}
	c := &comment.Comment{
		PostID:  p.ID,
		Name:    "Alice",
		Email:   "alice@example.com",
		Message: "Great post",
		Status:  comment.StatusValid,
	}
	if err := comment.NewRepository(database).Save(ctx, c); err != nil {
		t.Fatalf("save comment: %v", err)
	}

	srv := httptest.NewServer(api.NewServer(database, api.Options{}))
	t.Cleanup(srv.Close)
	t.Setenv("NR_SERVER_URL", srv.URL)

	return database, c
}

func findComment(t *testing.T, database *sql.DB, id int64) *comment.Comment {
	t.Helper()
	c, err := comment.NewRepository(database).Find(context.Background(), id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	return c
}

func TestCommentShow(t *testing.T) {
	setupAPI(t)

	out, err := executeCommand("comment", "show", "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Comment #1", "Alice <alice@example.com>", "Launch Day (1 comments)", "Great post"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCommentShowJSON(t *testing.T) {
	setupAPI(t)

	out, err := executeCommand("comment", "show", "1", "--format", "json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, `"email": "alice@example.com"`) {
		t.Errorf("output = %s", out)
	}
}

func TestCommentShowNotFound(t *testing.T) {
	setupAPI(t)

	_, err := executeCommand("comment", "show", "99")
	if err == nil || err.Error() != "Comment (99) not found" {
		t.Errorf("error = %v, want Comment (99) not found", err)
	}
}

func TestCommentShowZeroReachesServer(t *testing.T) {
	setupAPI(t)

	_, err := executeCommand("comment", "show", "0")
	if err == nil || err.Error() != "Comment (0) not found" {
		t.Errorf("error = %v, want Comment (0) not found", err)
	}
}

func TestCommentEdit(t *testing.T) {
	database, c := setupAPI(t)

	out, err := executeCommand("comment", "edit", "1", "--message", "Edited", "--status", "moderate")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "Comment #1 updated.") {
		t.Errorf("output = %q", out)
	}

	got := findComment(t, database, c.ID)
	if got.Message != "Edited" || got.Status != comment.StatusModerate {
		t.Errorf("stored = %+v", got)
	}
	if got.Name != "Alice" || got.Email != "alice@example.com" {
		t.Errorf("unchanged fields lost: %+v", got)
	}
	if got.Post.CommentsCount != 0 {
		t.Errorf("comments_count = %d, want 0", got.Post.CommentsCount)
	}
}

func TestCommentEditValidationFailure(t *testing.T) {
	database, c := setupAPI(t)

	out, err := executeCommand("comment", "edit", "1", "--email", "not-an-email")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vf *comment.ValidationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("error = %T %v, want validation failure", err, err)
	}
	if !strings.Contains(out, "email: This value is not a valid email address.") {
		t.Errorf("output = %q", out)
	}
	if got := findComment(t, database, c.ID); got.Email != "alice@example.com" {
		t.Errorf("email changed to %q", got.Email)
	}
}

func TestCommentEditRejectsBadStatus(t *testing.T) {
	setupAPI(t)

	if _, err := executeCommand("comment", "edit", "1", "--status", "spam"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestCommentDelete(t *testing.T) {
	database, c := setupAPI(t)

	out, err := executeCommand("comment", "delete", "1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "Comment #1 deleted.") {
		t.Errorf("output = %q", out)
	}
	if got := findComment(t, database, c.ID); got != nil {
		t.Errorf("comment still stored: %+v", got)
	}

	if _, err := executeCommand("comment", "delete", "1"); err == nil {
		t.Fatal("expected not found on second delete")
	}
}

func TestCommentAddAndList(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dbFile := filepath.Join(t.TempDir(), "news.db")

	if _, err := executeCommand("post", "add", "Launch", "Day", "--db", dbFile); err != nil {
		t.Fatalf("post add: %v", err)
	}

	out, err := executeCommand("comment", "add", "1", "First!", "--name", "Bob", "--email", "bob@example.com", "--status", "valid", "--db", dbFile)
	if err != nil {
		t.Fatalf("comment add: %v", err)
	}
	if !strings.Contains(out, "Comment #1 added to post #1 (valid).") {
		t.Errorf("output = %q", out)
	}

	out, err = executeCommand("comment", "list", "1", "--db", dbFile)
	if err != nil {
		t.Fatalf("comment list: %v", err)
	}
	if !strings.Contains(out, "Bob") || !strings.Contains(out, "First!") {
		t.Errorf("list output = %q", out)
	}

	out, err = executeCommand("post", "list", "--db", dbFile)
	if err != nil {
		t.Fatalf("post list: %v", err)
	}
	if !strings.Contains(out, "launch-day") {
		t.Errorf("post list output = %q", out)
	}
}

func TestCommentAddValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dbFile := filepath.Join(t.TempDir(), "news.db")

	tests := []struct {
		name string
		args []string
	}{
		{"missing email", []string{"comment", "add", "1", "hi", "--name", "Bob"}},
		{"bad status", []string{"comment", "add", "1", "hi", "--name", "Bob", "--email", "bob@example.com", "--status", "9"}},
		{"unknown post", []string{"comment", "add", "7", "hi", "--name", "Bob", "--email", "bob@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(append(tt.args, "--db", dbFile)...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
