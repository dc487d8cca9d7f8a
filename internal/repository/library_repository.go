package repository

import (
	"context"
	"fmt"

	"novelhub/internal/backend"
	"novelhub/internal/models"
)

type LibraryRepository interface {
	Add(ctx context.Context, e *models.LibraryEntry) error
	Remove(ctx context.Context, userID, novelID string) error
	Contains(ctx context.Context, userID, novelID string) (bool, error)
	List(ctx context.Context, userID string) ([]models.LibraryEntry, error)
}

type libraryRepository struct {
	db backend.DataSource
}

func NewLibraryRepository(db backend.DataSource) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) Add(ctx context.Context, e *models.LibraryEntry) error {
	if err := r.db.Insert(ctx, e.TableName(), e, e); err != nil {
		return fmt.Errorf("add to library: %w", err)
	}
	return nil
}

func (r *libraryRepository) Remove(ctx context.Context, userID, novelID string) error {
	filters := []backend.Filter{backend.Eq("user_id", userID), backend.Eq("novel_id", novelID)}
	if err := r.db.Delete(ctx, models.LibraryEntry{}.TableName(), filters); err != nil {
		return fmt.Errorf("remove from library: %w", err)
	}
	return nil
}

func (r *libraryRepository) Contains(ctx context.Context, userID, novelID string) (bool, error) {
	q := backend.From(models.LibraryEntry{}.TableName()).
		Select("library_id").
		Eq("user_id", userID).
		Eq("novel_id", novelID).
		WithLimit(1)

	var rows []models.LibraryEntry
	if _, err := r.db.Select(ctx, q, &rows); err != nil {
		return false, fmt.Errorf("check library: %w", err)
	}
	return len(rows) > 0, nil
}

func (r *libraryRepository) List(ctx context.Context, userID string) ([]models.LibraryEntry, error) {
	q := backend.From(models.LibraryEntry{}.TableName()).
		Eq("user_id", userID).
		Order("created_at", false)

	var entries []models.LibraryEntry
	if _, err := r.db.Select(ctx, q, &entries); err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return entries, nil
}
