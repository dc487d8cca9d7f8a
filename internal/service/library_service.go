package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"novelhub/internal/models"
	"novelhub/internal/repository"
)

const libraryFanOut = 8

// LibraryItem is a saved novel with the reader's progress through it.
type LibraryItem struct {
	Novel          models.Novel            `json:"novel"`
	AddedAt        *time.Time              `json:"added_at,omitempty"`
	TotalChapters  int                     `json:"total_chapters"`
	ReadChapters   int                     `json:"read_chapters"`
	LastRead       *models.ReadingProgress `json:"last_read,omitempty"`
	HasNewChapters bool                    `json:"has_new_chapters"`
}

type LibraryService interface {
	Add(ctx context.Context, userID, novelID string) error
	Remove(ctx context.Context, userID, novelID string) error
	Contains(ctx context.Context, userID, novelID string) (bool, error)
	List(ctx context.Context, userID string) ([]LibraryItem, error)
}

type libraryService struct {
	library  repository.LibraryRepository
	novels   repository.NovelRepository
	chapters repository.ChapterRepository
	progress repository.ProgressRepository
	now      func() time.Time
	run      runner
}

func NewLibraryService(library repository.LibraryRepository, novels repository.NovelRepository, chapters repository.ChapterRepository, progress repository.ProgressRepository, opts Options) LibraryService {
	return &libraryService{
		library:  library,
		novels:   novels,
		chapters: chapters,
		progress: progress,
		now:      time.Now,
		run:      newRunner(opts),
	}
}

func (s *libraryService) Add(ctx context.Context, userID, novelID string) error {
	if userID == "" {
		return ErrLoginRequired
	}
	entry := &models.LibraryEntry{UserID: userID, NovelID: novelID, CreatedAt: nowPtr(s.now())}
	err := exec(ctx, s.run, "Adding to library", func(ctx context.Context) error {
		return s.library.Add(ctx, entry)
	})
	return s.run.report(ctx, err, "Added to library!")
}

func (s *libraryService) Remove(ctx context.Context, userID, novelID string) error {
	if userID == "" {
		return ErrLoginRequired
	}
	err := exec(ctx, s.run, "Removing from library", func(ctx context.Context) error {
		return s.library.Remove(ctx, userID, novelID)
	})
	return s.run.report(ctx, err, "Removed from library!")
}

func (s *libraryService) Contains(ctx context.Context, userID, novelID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ok, err := fetch(ctx, s.run, "Checking library", func(ctx context.Context) (bool, error) {
		return s.library.Contains(ctx, userID, novelID)
	})
	return ok, s.run.report(ctx, err, "")
}

// List loads every saved novel's progress concurrently. A novel whose
// progress cannot be loaded is left out rather than failing the page.
func (s *libraryService) List(ctx context.Context, userID string) ([]LibraryItem, error) {
	if userID == "" {
		return nil, ErrLoginRequired
	}

	entries, err := fetchList(ctx, s.run, "Loading library", func(ctx context.Context) ([]models.LibraryEntry, error) {
		return s.library.List(ctx, userID)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.NovelID
	}
	novels, err := fetch(ctx, s.run, "Loading library", func(ctx context.Context) ([]models.Novel, error) {
		return s.novels.ListByIDs(ctx, ids)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	byID := make(map[string]models.Novel, len(novels))
	for _, n := range novels {
		byID[n.NovelID] = n
	}

	items := make([]*LibraryItem, len(entries))
	var g errgroup.Group
	g.SetLimit(libraryFanOut)
	for i, e := range entries {
		novel, ok := byID[e.NovelID]
		if !ok {
			continue
		}
		g.Go(func() error {
			item, err := s.item(ctx, userID, novel)
			if err != nil {
				s.run.opts.Logger.WarnContext(ctx, "dropping library novel",
					slog.String("novel_id", novel.NovelID), slog.String("error", err.Error()))
				return nil
			}
			item.AddedAt = e.CreatedAt
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	out := make([]LibraryItem, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *libraryService) item(ctx context.Context, userID string, novel models.Novel) (*LibraryItem, error) {
	total, err := s.chapters.CountByNovel(ctx, novel.NovelID)
	if err != nil {
		return nil, err
	}
	furthest, err := s.progress.Furthest(ctx, userID, novel.NovelID)
	if err != nil {
		return nil, err
	}
	latest, err := s.progress.Latest(ctx, userID, novel.NovelID)
	if err != nil {
		return nil, err
	}

	item := &LibraryItem{Novel: novel, TotalChapters: int(total), LastRead: latest}
	if furthest != nil {
		item.ReadChapters = furthest.ChapterNumber
	}
	item.HasNewChapters = item.TotalChapters > item.ReadChapters
	return item, nil
}
