package client

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evcraddock/newsroom/internal/comment"
)

func TestGetComment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/comments/42" {
			t.Errorf("path = %q, want /comments/42", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer testkey" {
			t.Error("expected Bearer testkey")
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := io.WriteString(w, `{"id":42,"name":"Alice","message":"hi","status":1,"post":{"id":3,"title":"T"}}`); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "testkey")
	comm, err := c.GetComment(42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if comm.ID != 42 || comm.Name != "Alice" || comm.Status != comment.StatusValid {
		t.Errorf("got %+v", comm)
	}
	if comm.Post == nil || comm.Post.Title != "T" {
		t.Errorf("post = %+v", comm.Post)
	}
}

func TestGetCommentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		if _, err := io.WriteString(w, `{"error":"Comment (7) not found"}`); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").GetComment(7)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
	if err.Error() != "Comment (7) not found" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestUpdateComment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("expected JSON content type")
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		want := `{"name":"Bob","email":"bob@example.com","url":"","message":"edited","status":1}`
		if string(body) != want {
			t.Errorf("body = %s, want %s", body, want)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := io.WriteString(w, `{"id":5,"name":"Bob","message":"edited","status":1}`); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	status := comment.StatusValid
	comm, err := New(srv.URL, "").UpdateComment(5, comment.Input{
		Name:    "Bob",
		Email:   "bob@example.com",
		Message: "edited",
		Status:  &status,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if comm.Message != "edited" {
		t.Errorf("message = %q", comm.Message)
	}
}

func TestUpdateCommentValidationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if _, err := io.WriteString(w, `{"code":400,"message":"Validation Failed","errors":{"email":["This value is not a valid email address."]}}`); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").UpdateComment(5, comment.Input{})
	var vf *comment.ValidationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(vf.Errors["email"]) != 1 {
		t.Errorf("errors = %v", vf.Errors)
	}
}

func TestDeleteComment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := io.WriteString(w, `{"deleted":true}`); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	if err := New(srv.URL, "").DeleteComment(9); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestDeleteCommentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if _, err := io.WriteString(w, `{"error":"database is locked"}`); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	err := New(srv.URL, "").DeleteComment(9)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "database is locked" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestServerErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").GetComment(1)
	if err == nil || err.Error() != "server error: Bad Gateway" {
		t.Errorf("error = %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		if _, err := io.WriteString(w, `{"status":"ok"}`); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	status, err := New(srv.URL, "").Health()
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q, want ok", status)
	}
}
