package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/newsroom/internal/comment"
	"github.com/evcraddock/newsroom/internal/post"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world!", 8, "hello..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}

func TestPrintCommentDetail(t *testing.T) {
	c := &comment.Comment{
		ID:        3,
		PostID:    1,
		Name:      "Alice",
		Email:     "alice@example.com",
		URL:       "https://alice.dev",
		Message:   "Nice read",
		Status:    comment.StatusValid,
		UpdatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Post:      &post.Post{ID: 1, Title: "Launch Day", CommentsCount: 4},
	}

	var buf bytes.Buffer
	if err := printCommentDetail(&buf, c); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Comment #3",
		"Author:   Alice <alice@example.com>",
		"URL:      https://alice.dev",
		"Status:   valid",
		"Post:     #1 Launch Day (4 comments)",
		"Updated:  2026-03-01 09:30",
		"  Nice read",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCommentDetailWithoutPost(t *testing.T) {
	var buf bytes.Buffer
	if err := printCommentDetail(&buf, &comment.Comment{ID: 1, PostID: 9, Status: comment.StatusModerate}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "Post:     #9\n") {
		t.Errorf("output = %q", buf.String())
	}
	if strings.Contains(buf.String(), "URL:") {
		t.Errorf("empty URL printed: %q", buf.String())
	}
}

func TestPrintCommentTable(t *testing.T) {
	var buf bytes.Buffer
	if err := printCommentTable(&buf, nil); err != nil {
		t.Fatalf("print empty: %v", err)
	}
	if buf.String() != "No comments.\n" {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	comments := []*comment.Comment{
		{ID: 2, Name: "Bob", Message: strings.Repeat("x", 80), Status: comment.StatusModerate, CreatedAt: time.Now().Add(-3 * time.Hour)},
		{ID: 1, Name: "Alice", Message: "first", Status: comment.StatusValid},
	}
	if err := printCommentTable(&buf, comments); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "moderate") || !strings.Contains(out, "valid") {
		t.Errorf("statuses missing:\n%s", out)
	}
	if !strings.Contains(out, strings.Repeat("x", 47)+"...") {
		t.Errorf("long message not truncated:\n%s", out)
	}
	if !strings.Contains(out, "3 hours ago") {
		t.Errorf("relative time missing:\n%s", out)
	}
	if !strings.Contains(out, "Total: 2 comments") {
		t.Errorf("total missing:\n%s", out)
	}
}

func TestPrintPostTable(t *testing.T) {
	var buf bytes.Buffer
	posts := []*post.Post{
		{ID: 1, Title: "Launch Day", Slug: "launch-day", CommentsCount: 2, Enabled: true},
		{ID: 2, Title: "Draft", Slug: "draft"},
	}
	if err := printPostTable(&buf, posts); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"launch-day", "yes", "no", "Total: 2 posts"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintValidationFailure(t *testing.T) {
	vf := &comment.ValidationFailure{
		Message: "Validation Failed",
		Errors: map[string][]string{
			"name":  {"This value should not be blank."},
			"email": {"This value is not a valid email address."},
		},
	}

	var buf bytes.Buffer
	if err := printValidationFailure(&buf, vf); err != nil {
		t.Fatalf("print: %v", err)
	}
	want := "Validation Failed:\n" +
		"  email: This value is not a valid email address.\n" +
		"  name: This value should not be blank.\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]int{"id": 1}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if buf.String() != "{\n  \"id\": 1\n}\n" {
		t.Errorf("output = %q", buf.String())
	}
}
