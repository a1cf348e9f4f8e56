package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Repository provides data access for posts.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a post repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, title, slug, abstract, content, author, enabled, comments_count, created_at`

// Insert adds a new post and returns it with its generated ID.
// An empty slug is derived from the title. A title with nothing to slug
// gets "post-<id>".
func (r *Repository) Insert(ctx context.Context, p *Post) (*Post, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("post title is required")
	}
	slug := p.Slug
	if slug == "" {
		slug = Slugify(p.Title)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Warn("rolling back transaction", "error", rbErr)
		}
	}()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO posts (title, slug, abstract, content, author, enabled) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Title, slug, p.Abstract, p.Content, p.Author, p.Enabled,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	// The empty slug never outlives this transaction.
	if slug == "" {
		if _, err := tx.ExecContext(ctx, "UPDATE posts SET slug = ? WHERE id = ?", fmt.Sprintf("post-%d", id), id); err != nil {
			return nil, fmt.Errorf("setting fallback slug: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns a post by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Post, error) {
	query := fmt.Sprintf("SELECT %s FROM posts WHERE id = ?", selectColumns)
	p, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying post %d: %w", id, err)
	}
	return p, nil
}

// List returns all posts, newest first.
func (r *Repository) List(ctx context.Context) ([]*Post, error) {
	query := fmt.Sprintf("SELECT %s FROM posts ORDER BY id DESC", selectColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("closing rows", "query", "list posts", "error", closeErr)
		}
	}()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return posts, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(s scanner) (*Post, error) {
	var p Post
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Abstract, &p.Content, &p.Author,
		&p.Enabled, &p.CommentsCount, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a lowercase, dash-separated slug.
func Slugify(title string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
