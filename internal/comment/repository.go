package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evcraddock/newsroom/internal/post"
)

// Repository is the SQLite-backed comment manager.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a comment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

const selectWithPost = `SELECT
	c.id, c.post_id, c.name, c.email, c.url, c.message, c.status, c.created_at, c.updated_at,
	p.id, p.title, p.slug, p.abstract, p.content, p.author, p.enabled, p.comments_count, p.created_at
	FROM comments c JOIN posts p ON p.id = c.post_id`

// recountSQL keeps posts.comments_count equal to the number of valid comments.
const recountSQL = `UPDATE posts SET comments_count =
	(SELECT COUNT(*) FROM comments WHERE post_id = posts.id AND status = 1)
	WHERE id = ?`

// Find returns the comment with the given ID and its post.
// A missing comment is reported as (nil, nil).
func (r *Repository) Find(ctx context.Context, id int64) (*Comment, error) {
	row := r.db.QueryRowContext(ctx, selectWithPost+" WHERE c.id = ?", id)

	var c Comment
	var p post.Post
	err := row.Scan(
		&c.ID, &c.PostID, &c.Name, &c.Email, &c.URL, &c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		&p.ID, &p.Title, &p.Slug, &p.Abstract, &p.Content, &p.Author, &p.Enabled, &p.CommentsCount, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying comment %d: %w", id, err)
	}

	c.Post = &p
	return &c, nil
}

// ListByPostID returns all comments for a post, newest first.
func (r *Repository) ListByPostID(ctx context.Context, postID int64) ([]*Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, post_id, name, email, url, message, status, created_at, updated_at
		FROM comments WHERE post_id = ? ORDER BY id DESC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("closing rows", "query", "list comments", "error", closeErr)
		}
	}()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.URL, &c.Message,
			&c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return comments, nil
}

// Save inserts a new comment (ID 0) or updates an existing one, then
// refreshes the parent post's comment count in the same transaction.
// A loaded c.Post picks up the new count.
func (r *Repository) Save(ctx context.Context, c *Comment) error {
	now := r.now().UTC().Truncate(time.Second)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		if c.ID == 0 {
			result, err := tx.ExecContext(ctx,
				`INSERT INTO comments (post_id, name, email, url, message, status, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				c.PostID, c.Name, c.Email, c.URL, c.Message, c.Status, now, now,
			)
			if err != nil {
				return fmt.Errorf("inserting comment: %w", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("getting insert id: %w", err)
			}
			c.ID = id
			c.CreatedAt = now
		} else {
			result, err := tx.ExecContext(ctx,
				`UPDATE comments SET name = ?, email = ?, url = ?, message = ?, status = ?, updated_at = ?
				WHERE id = ?`,
				c.Name, c.Email, c.URL, c.Message, c.Status, now, c.ID,
			)
			if err != nil {
				return fmt.Errorf("updating comment: %w", err)
			}
			if err := expectOneRow(result, c.ID); err != nil {
				return err
			}
		}
		c.UpdatedAt = now

		if _, err := tx.ExecContext(ctx, recountSQL, c.PostID); err != nil {
			return fmt.Errorf("updating comments count: %w", err)
		}
		if c.Post != nil {
			err := tx.QueryRowContext(ctx, "SELECT comments_count FROM posts WHERE id = ?", c.PostID).
				Scan(&c.Post.CommentsCount)
			if err != nil {
				return fmt.Errorf("reading comments count: %w", err)
			}
		}
		return nil
	})
}

// Delete removes a comment and refreshes the parent post's comment count.
func (r *Repository) Delete(ctx context.Context, c *Comment) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", c.ID)
		if err != nil {
			return fmt.Errorf("deleting comment: %w", err)
		}
		if err := expectOneRow(result, c.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, recountSQL, c.PostID); err != nil {
			return fmt.Errorf("updating comments count: %w", err)
		}
		return nil
	})
}

// inTx runs fn in a transaction, committing on success.
func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Warn("rolling back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func expectOneRow(result sql.Result, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("comment %d not found", id)
	}
	return nil
}
