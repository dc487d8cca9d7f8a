package repository

import (
	"context"
	"fmt"

	"novelhub/internal/backend"
	"novelhub/internal/models"
)

type CommentRepository interface {
	ListByChapter(ctx context.Context, chapterID string) ([]models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
}

type commentRepository struct {
	db backend.DataSource
}

func NewCommentRepository(db backend.DataSource) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) ListByChapter(ctx context.Context, chapterID string) ([]models.Comment, error) {
	q := backend.From(models.Comment{}.TableName()).
		Eq("chapter_id", chapterID).
		Order("created_at", false)

	var comments []models.Comment
	if _, err := r.db.Select(ctx, q, &comments); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (r *commentRepository) Create(ctx context.Context, c *models.Comment) error {
	if err := r.db.Insert(ctx, c.TableName(), c, c); err != nil {
		return fmt.Errorf("post comment: %w", err)
	}
	return nil
}
