package repository

import (
	"context"
	"fmt"
	"time"

	"novelhub/internal/backend"
	"novelhub/internal/models"
)

var progressConflict = []string{"user_id", "novel_id", "chapter_id"}

type ProgressRepository interface {
	Upsert(ctx context.Context, p *models.ReadingProgress) error
	// Latest is the most recently read chapter of the novel, nil if none.
	Latest(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error)
	// Furthest is the highest chapter number read, nil if none.
	Furthest(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error)
	ListByUser(ctx context.Context, userID string) ([]models.ReadingProgress, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]models.ReadingProgress, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type progressRepository struct {
	db backend.DataSource
}

func NewProgressRepository(db backend.DataSource) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, p *models.ReadingProgress) error {
	if err := r.db.Upsert(ctx, p.TableName(), p, progressConflict, nil); err != nil {
		return fmt.Errorf("save reading progress: %w", err)
	}
	return nil
}

func (r *progressRepository) Latest(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	return r.first(ctx, userID, novelID, "lastread_at")
}

func (r *progressRepository) Furthest(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	return r.first(ctx, userID, novelID, "chapter_number")
}

func (r *progressRepository) first(ctx context.Context, userID, novelID, orderBy string) (*models.ReadingProgress, error) {
	q := backend.From(models.ReadingProgress{}.TableName()).
		Eq("user_id", userID).
		Eq("novel_id", novelID).
		Order(orderBy, false).
		WithLimit(1)

	var rows []models.ReadingProgress
	if _, err := r.db.Select(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("get reading progress: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *progressRepository) ListByUser(ctx context.Context, userID string) ([]models.ReadingProgress, error) {
	q := backend.From(models.ReadingProgress{}.TableName()).
		Eq("user_id", userID).
		Order("lastread_at", false)

	var rows []models.ReadingProgress
	if _, err := r.db.Select(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("list reading history: %w", err)
	}
	return rows, nil
}

func (r *progressRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]models.ReadingProgress, error) {
	q := backend.From(models.ReadingProgress{}.TableName()).
		Select("novel_id", "chapter_id", "lastread_at").
		Eq("user_id", userID).
		Gte("lastread_at", since)

	var rows []models.ReadingProgress
	if _, err := r.db.Select(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("list recent reads: %w", err)
	}
	return rows, nil
}

func (r *progressRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.Delete(ctx, models.ReadingProgress{}.TableName(), []backend.Filter{backend.Eq("user_id", userID)}); err != nil {
		return fmt.Errorf("clear reading history: %w", err)
	}
	return nil
}
