package post

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
)

var ErrForbidden = errors.New("post does not belong to user")

type CreateInput struct {
	Title       string
	Content     string
	IsPublished bool
}

type Service interface {
	CreatePost(ctx context.Context, authorID uuid.UUID, input CreateInput) (*Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPosts(ctx context.Context) ([]Post, error)
	// UpdatePost and DeletePost are restricted to the author unless isStaff.
	UpdatePost(ctx context.Context, userID uuid.UUID, isStaff bool, id uuid.UUID, input CreateInput) (*Post, error)
	DeletePost(ctx context.Context, userID uuid.UUID, isStaff bool, id uuid.UUID) error
	AddComment(ctx context.Context, authorID, postID uuid.UUID, content string) (*Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]Comment, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreatePost(ctx context.Context, authorID uuid.UUID, input CreateInput) (*Post, error) {
	p := &Post{
		Title:       input.Title,
		Content:     input.Content,
		AuthorID:    authorID,
		IsPublished: input.IsPublished,
	}

	if _, err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return s.repo.GetByID(ctx, p.ID)
}

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post '%s': %w", id, err)
	}

	return p, nil
}

func (s *service) ListPosts(ctx context.Context) ([]Post, error) {
	posts, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []Post{}
	}

	return posts, nil
}

func (s *service) UpdatePost(ctx context.Context, userID uuid.UUID, isStaff bool, id uuid.UUID, input CreateInput) (*Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID && !isStaff {
		return nil, ErrForbidden
	}

	p.Title = input.Title
	p.Content = input.Content
	p.IsPublished = input.IsPublished

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update post '%s': %w", id, err)
	}

	return p, nil
}

func (s *service) DeletePost(ctx context.Context, userID uuid.UUID, isStaff bool, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != userID && !isStaff {
		return ErrForbidden
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) AddComment(ctx context.Context, authorID, postID uuid.UUID, content string) (*Comment, error) {
	// The post must exist and be visible before a comment attaches to it.
	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	c := &Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if _, err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return c, nil
}

func (s *service) ListComments(ctx context.Context, postID uuid.UUID) ([]Comment, error) {
	if _, err := s.repo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for post '%s': %w", postID, err)
	}
	if comments == nil {
		comments = []Comment{}
	}

	return comments, nil
}
