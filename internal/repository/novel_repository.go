package repository

import (
	"context"
	"fmt"
	"time"

	"novelhub/internal/backend"
	"novelhub/internal/models"
)

const (
	rpcSearchNovels       = "search_novels"
	rpcIncrementNovelView = "increment_novel_views"
)

// NovelFilter narrows listings. Genre "" or "All" means every genre.
type NovelFilter struct {
	Genre     string
	OrderBy   string
	Ascending bool
	Since     *time.Time // created_at lower bound
}

func (f NovelFilter) apply(q *backend.Query) *backend.Query {
	if f.Genre != "" && f.Genre != models.AllGenres {
		q.Contains("genre", f.Genre)
	}
	if f.Since != nil {
		q.Gte("created_at", *f.Since)
	}
	if f.OrderBy != "" {
		q.Order(f.OrderBy, f.Ascending)
	}
	return q
}

type NovelRepository interface {
	List(ctx context.Context, f NovelFilter, from, to int) ([]models.Novel, int64, error)
	Top(ctx context.Context, f NovelFilter, limit int) ([]models.Novel, error)
	GetByID(ctx context.Context, id string) (*models.Novel, error)
	ListByUploader(ctx context.Context, userID string) ([]models.Novel, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Novel, error)
	QuickSearch(ctx context.Context, term string, limit int) ([]models.Novel, error)
	Search(ctx context.Context, term string, genres []string, page, pageSize int) ([]models.Novel, error)
	Create(ctx context.Context, n *models.Novel) error
	Update(ctx context.Context, id string, patch map[string]any) (*models.Novel, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

type novelRepository struct {
	db backend.DataSource
}

func NewNovelRepository(db backend.DataSource) NovelRepository {
	return &novelRepository{db: db}
}

func (r *novelRepository) List(ctx context.Context, f NovelFilter, from, to int) ([]models.Novel, int64, error) {
	q := f.apply(backend.From(models.Novel{}.TableName())).Range(from, to).WithCount()

	var novels []models.Novel
	total, err := r.db.Select(ctx, q, &novels)
	if err != nil {
		return nil, 0, fmt.Errorf("list novels: %w", err)
	}
	return novels, total, nil
}

func (r *novelRepository) Top(ctx context.Context, f NovelFilter, limit int) ([]models.Novel, error) {
	q := f.apply(backend.From(models.Novel{}.TableName()))
	if limit > 0 {
		q.WithLimit(limit)
	}

	var novels []models.Novel
	if _, err := r.db.Select(ctx, q, &novels); err != nil {
		return nil, fmt.Errorf("list novels: %w", err)
	}
	return novels, nil
}

func (r *novelRepository) GetByID(ctx context.Context, id string) (*models.Novel, error) {
	var novel models.Novel
	q := backend.From(novel.TableName()).Eq("novel_id", id).ExpectSingle()
	if _, err := r.db.Select(ctx, q, &novel); err != nil {
		return nil, fmt.Errorf("get novel: %w", err)
	}
	return &novel, nil
}

func (r *novelRepository) ListByUploader(ctx context.Context, userID string) ([]models.Novel, error) {
	q := backend.From(models.Novel{}.TableName()).Eq("upload_by", userID).Order("created_at", false)

	var novels []models.Novel
	if _, err := r.db.Select(ctx, q, &novels); err != nil {
		return nil, fmt.Errorf("list author novels: %w", err)
	}
	return novels, nil
}

func (r *novelRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Novel, error) {
	if len(ids) == 0 {
		return []models.Novel{}, nil
	}
	q := backend.From(models.Novel{}.TableName()).In("novel_id", ids)

	var novels []models.Novel
	if _, err := r.db.Select(ctx, q, &novels); err != nil {
		return nil, fmt.Errorf("list novels by id: %w", err)
	}
	return novels, nil
}

// QuickSearch matches term anywhere in the title or author.
func (r *novelRepository) QuickSearch(ctx context.Context, term string, limit int) ([]models.Novel, error) {
	pattern := "%" + term + "%"
	q := backend.From(models.Novel{}.TableName()).
		Or(backend.ILike("title", pattern), backend.ILike("author", pattern)).
		WithLimit(limit)

	var novels []models.Novel
	if _, err := r.db.Select(ctx, q, &novels); err != nil {
		return nil, fmt.Errorf("quick search: %w", err)
	}
	return novels, nil
}

// Search delegates ranking to the search_novels procedure.
func (r *novelRepository) Search(ctx context.Context, term string, genres []string, page, pageSize int) ([]models.Novel, error) {
	params := map[string]any{
		"search_query": term,
		"genre_filter": nil,
		"page_number":  page,
		"page_size":    pageSize,
	}
	if len(genres) > 0 {
		params["genre_filter"] = genres
	}

	var novels []models.Novel
	if err := r.db.RPC(ctx, rpcSearchNovels, params, &novels); err != nil {
		return nil, fmt.Errorf("search novels: %w", err)
	}
	return novels, nil
}

func (r *novelRepository) Create(ctx context.Context, n *models.Novel) error {
	if err := r.db.Insert(ctx, n.TableName(), n, n); err != nil {
		return fmt.Errorf("create novel: %w", err)
	}
	return nil
}

func (r *novelRepository) Update(ctx context.Context, id string, patch map[string]any) (*models.Novel, error) {
	var updated []models.Novel
	if err := r.db.Update(ctx, models.Novel{}.TableName(), patch, []backend.Filter{backend.Eq("novel_id", id)}, &updated); err != nil {
		return nil, fmt.Errorf("update novel: %w", err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("update novel: %w", backend.ErrNotFound)
	}
	return &updated[0], nil
}

func (r *novelRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.Delete(ctx, models.Novel{}.TableName(), []backend.Filter{backend.Eq("novel_id", id)}); err != nil {
		return fmt.Errorf("delete novel: %w", err)
	}
	return nil
}

func (r *novelRepository) IncrementViews(ctx context.Context, id string) error {
	if err := r.db.RPC(ctx, rpcIncrementNovelView, map[string]any{"novel_uuid": id}, nil); err != nil {
		return fmt.Errorf("increment novel views: %w", err)
	}
	return nil
}
