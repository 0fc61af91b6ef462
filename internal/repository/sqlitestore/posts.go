package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
)

// PostRepository stores posts in the posts table.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a PostRepository.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = "id, title, slug, category, date, image, excerpt, content"

func scanPost(row scanner) (models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Category, &p.Date, &p.Image, &p.Excerpt, &p.Content); err != nil {
		return models.Post{}, mapScanErr(err)
	}
	return p, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertPost(ctx context.Context, db execer, p models.Post) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO posts("+postColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Title, p.Slug, p.Category, p.Date.UTC(), p.Image, p.Excerpt, p.Content,
	)
	return mapWriteErr(err)
}

// List returns posts newest first, optionally limited to one category.
func (r *PostRepository) List(ctx context.Context, category string) ([]models.Post, error) {
	query := "SELECT " + postColumns + " FROM posts"
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetBySlug retrieves a single post.
func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (models.Post, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE slug = ?", slug)
	return scanPost(row)
}

// Create adds a new post. A taken id or slug yields repository.ErrDuplicate.
func (r *PostRepository) Create(ctx context.Context, post models.Post) (models.Post, error) {
	if err := insertPost(ctx, r.db, post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Update replaces every field except the id.
func (r *PostRepository) Update(ctx context.Context, id string, post models.Post) (models.Post, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET title = ?, slug = ?, category = ?, date = ?, image = ?, excerpt = ?, content = ? WHERE id = ?",
		post.Title, post.Slug, post.Category, post.Date.UTC(), post.Image, post.Excerpt, post.Content, id,
	)
	if err != nil {
		return models.Post{}, mapWriteErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Post{}, repository.ErrNotFound
	}
	post.ID = id
	return post, nil
}

// Delete removes a post by id.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReplaceAll swaps the whole post table inside one transaction.
func (r *PostRepository) ReplaceAll(ctx context.Context, posts []models.Post) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM posts"); err != nil {
		return 0, err
	}
	for i, p := range posts {
		if err := insertPost(ctx, tx, p); err != nil {
			return 0, fmt.Errorf("insert post %d (%s): %w", i, p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(posts), nil
}

// Count returns the number of posts.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&n)
	return n, err
}
