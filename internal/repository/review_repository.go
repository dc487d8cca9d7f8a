package repository

import (
	"context"
	"fmt"

	"novelhub/internal/backend"
	"novelhub/internal/models"
)

type ReviewRepository interface {
	ListByNovel(ctx context.Context, novelID string) ([]models.Review, error)
	// Upsert replaces the user's earlier review of the novel.
	Upsert(ctx context.Context, r *models.Review) error
	Create(ctx context.Context, r *models.Review) error
}

type reviewRepository struct {
	db backend.DataSource
}

func NewReviewRepository(db backend.DataSource) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) ListByNovel(ctx context.Context, novelID string) ([]models.Review, error) {
	q := backend.From(models.Review{}.TableName()).
		Eq("novel_id", novelID).
		Order("created_at", false)

	var reviews []models.Review
	if _, err := r.db.Select(ctx, q, &reviews); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	if err := r.db.Upsert(ctx, review.TableName(), review, []string{"novel_id", "user_id"}, review); err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.Insert(ctx, review.TableName(), review, review); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}
