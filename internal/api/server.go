// Package api provides the HTTP server and the comment resource endpoint.
package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/evcraddock/newsroom/internal/comment"
	"github.com/evcraddock/newsroom/internal/logging"
	"github.com/evcraddock/newsroom/internal/serializer"
)

// maxBodyBytes bounds request payloads.
const maxBodyBytes = 1 << 20

// Renderer encodes endpoint views.
type Renderer interface {
	Render(v interface{}, sc *serializer.Context) ([]byte, error)
}

// Options configures a Server.
type Options struct {
	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins []string
}

// Server is the comment API HTTP server.
type Server struct {
	comments *CommentEndpoint
	renderer Renderer
	router   chi.Router
}

// NewServer creates a server backed by the given database.
func NewServer(db *sql.DB, opts Options) *Server {
	endpoint := NewCommentEndpoint(comment.NewRepository(db), comment.NewForm())
	return NewServerWith(endpoint, serializer.New(), opts)
}

// NewServerWith creates a server around an existing endpoint and renderer.
func NewServerWith(endpoint *CommentEndpoint, renderer Renderer, opts Options) *Server {
	s := &Server{
		comments: endpoint,
		renderer: renderer,
	}
	s.router = s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) chi.Router {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.apiError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	r.Route("/comments/{id:[0-9]+}", func(r chi.Router) {
		r.Get("/", s.handleGetComment)
		r.Put("/", s.handleUpdateComment)
		r.Delete("/", s.handleDeleteComment)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting API server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) handleGetComment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.commentID(w, r)
	if !ok {
		return
	}
	view, err := s.comments.Get(r.Context(), id)
	s.respond(w, r, view, err)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.commentID(w, r)
	if !ok {
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.apiError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.apiError(w, "reading request body", http.StatusBadRequest)
		return
	}

	view, err := s.comments.Update(r.Context(), id, payload)
	s.respond(w, r, view, err)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.commentID(w, r)
	if !ok {
		return
	}
	view, err := s.comments.Delete(r.Context(), id)
	s.respond(w, r, view, err)
}

// commentID parses the {id} route parameter. The route constraint only
// admits digits, so the one failure left is int64 overflow.
func (s *Server) commentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.apiError(w, fmt.Sprintf("Comment (%s) not found", raw), http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// respond writes an endpoint view, or maps the endpoint's error to a status.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, view View, err error) {
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			s.apiError(w, nf.Error(), http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		s.apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	body, err := s.renderer.Render(view.Body, view.Context)
	if err != nil {
		slog.ErrorContext(r.Context(), "rendering response", "error", err)
		s.apiError(w, "encode failed", http.StatusInternalServerError)
		return
	}
	writeBody(w, body, view.Status)
}

// apiError writes a JSON error response.
func (s *Server) apiError(w http.ResponseWriter, msg string, code int) {
	s.apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func (s *Server) apiJSON(w http.ResponseWriter, data interface{}, code int) {
	body, err := s.renderer.Render(data, nil)
	if err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
		return
	}
	writeBody(w, body, code)
}

func writeBody(w http.ResponseWriter, body []byte, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Debug("writing response", "error", err)
	}
}
