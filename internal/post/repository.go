package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("post not found")

type Repository interface {
	Create(ctx context.Context, p *Post) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPublished(ctx context.Context) ([]Post, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateComment(ctx context.Context, c *Comment) (uuid.UUID, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]Comment, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const postColumns = `p.id, p.title, p.content, p.author_id,
	u.first_name || ' ' || u.last_name AS author_name,
	p.is_published, p.created_at, p.updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *Post) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate post ID: %w", err)
	}
	p.ID = id

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `INSERT INTO posts (id, title, content, author_id, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query, p.ID, p.Title, p.Content, p.AuthorID, p.IsPublished, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert post: %w", err)
	}

	return p.ID, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1`

	var p Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorName, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select post %s: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) ListPublished(ctx context.Context) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.is_published = TRUE ORDER BY p.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to select posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorName,
			&p.IsPublished, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: post rows iteration error: %w", err)
	}

	return posts, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Post) error {
	p.UpdatedAt = time.Now().UTC()

	query := `UPDATE posts SET title = $2, content = $3, is_published = $4, updated_at = $5 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, p.ID, p.Title, p.Content, p.IsPublished, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to update post %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete post %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) CreateComment(ctx context.Context, c *Comment) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate comment ID: %w", err)
	}
	c.ID = id
	c.CreatedAt = time.Now().UTC()

	query := `INSERT INTO comments (id, post_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.Exec(ctx, query, c.ID, c.PostID, c.AuthorID, c.Content, c.CreatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert comment: %w", err)
	}

	return c.ID, nil
}

func (r *postgresRepository) ListComments(ctx context.Context, postID uuid.UUID) ([]Comment, error) {
	query := `SELECT c.id, c.post_id, c.author_id,
			u.first_name || ' ' || u.last_name AS author_name, c.content, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1 ORDER BY c.created_at ASC`

	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to select comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: comment rows iteration error: %w", err)
	}

	return comments, nil
}
