package repository

import (
	"context"
	"fmt"

	"novelhub/internal/backend"
	"novelhub/internal/models"
)

const rpcIncrementChapterView = "increment_chapter_views"

type ChapterRepository interface {
	ListByNovel(ctx context.Context, novelID string, ascending bool) ([]models.Chapter, error)
	GetByID(ctx context.Context, id string) (*models.Chapter, error)
	CountByNovel(ctx context.Context, novelID string) (int64, error)
	Create(ctx context.Context, c *models.Chapter) error
	Update(ctx context.Context, id string, patch map[string]any) (*models.Chapter, error)
	Delete(ctx context.Context, id string) error
	DeleteByNovel(ctx context.Context, novelID string) error
	IncrementViews(ctx context.Context, id string) error
}

type chapterRepository struct {
	db backend.DataSource
}

func NewChapterRepository(db backend.DataSource) ChapterRepository {
	return &chapterRepository{db: db}
}

func (r *chapterRepository) ListByNovel(ctx context.Context, novelID string, ascending bool) ([]models.Chapter, error) {
	q := backend.From(models.Chapter{}.TableName()).
		Eq("novel_id", novelID).
		Order("chapter_number", ascending)

	var chapters []models.Chapter
	if _, err := r.db.Select(ctx, q, &chapters); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}

func (r *chapterRepository) GetByID(ctx context.Context, id string) (*models.Chapter, error) {
	var chapter models.Chapter
	q := backend.From(chapter.TableName()).Eq("chapter_id", id).ExpectSingle()
	if _, err := r.db.Select(ctx, q, &chapter); err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return &chapter, nil
}

// CountByNovel only needs the exact count, so a single id column is fetched.
func (r *chapterRepository) CountByNovel(ctx context.Context, novelID string) (int64, error) {
	q := backend.From(models.Chapter{}.TableName()).
		Select("chapter_id").
		Eq("novel_id", novelID).
		WithLimit(1).
		WithCount()

	var ids []struct {
		ChapterID string `json:"chapter_id" gorm:"column:chapter_id"`
	}
	total, err := r.db.Select(ctx, q, &ids)
	if err != nil {
		return 0, fmt.Errorf("count chapters: %w", err)
	}
	return total, nil
}

func (r *chapterRepository) Create(ctx context.Context, c *models.Chapter) error {
	if err := r.db.Insert(ctx, c.TableName(), c, c); err != nil {
		return fmt.Errorf("create chapter: %w", err)
	}
	return nil
}

func (r *chapterRepository) Update(ctx context.Context, id string, patch map[string]any) (*models.Chapter, error) {
	var updated []models.Chapter
	if err := r.db.Update(ctx, models.Chapter{}.TableName(), patch, []backend.Filter{backend.Eq("chapter_id", id)}, &updated); err != nil {
		return nil, fmt.Errorf("update chapter: %w", err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("update chapter: %w", backend.ErrNotFound)
	}
	return &updated[0], nil
}

func (r *chapterRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.Delete(ctx, models.Chapter{}.TableName(), []backend.Filter{backend.Eq("chapter_id", id)}); err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}
	return nil
}

func (r *chapterRepository) DeleteByNovel(ctx context.Context, novelID string) error {
	if err := r.db.Delete(ctx, models.Chapter{}.TableName(), []backend.Filter{backend.Eq("novel_id", novelID)}); err != nil {
		return fmt.Errorf("delete novel chapters: %w", err)
	}
	return nil
}

func (r *chapterRepository) IncrementViews(ctx context.Context, id string) error {
	if err := r.db.RPC(ctx, rpcIncrementChapterView, map[string]any{"chapter_uuid": id}, nil); err != nil {
		return fmt.Errorf("increment chapter views: %w", err)
	}
	return nil
}
