package service

import (
	"context"
	"time"

	"novelhub/internal/models"
	"novelhub/internal/repository"
)

const statsDays = 7

type HistoryEntry struct {
	models.ReadingProgress
	Novel *models.Novel `json:"novel,omitempty"`
}

// DayStat counts chapters read on one calendar day.
type DayStat struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Reads int    `json:"reads"`
}

type ProgressService interface {
	Update(ctx context.Context, userID, novelID, chapterID string) error
	ContinueReading(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error)
	History(ctx context.Context, userID string) ([]HistoryEntry, error)
	WeeklyStats(ctx context.Context, userID string) ([]DayStat, error)
	ClearHistory(ctx context.Context, userID string) error
}

type progressService struct {
	progress repository.ProgressRepository
	chapters repository.ChapterRepository
	novels   repository.NovelRepository
	now      func() time.Time
	run      runner
}

func NewProgressService(progress repository.ProgressRepository, chapters repository.ChapterRepository, novels repository.NovelRepository, opts Options) ProgressService {
	return &progressService{progress: progress, chapters: chapters, novels: novels, now: time.Now, run: newRunner(opts)}
}

// Update looks up the chapter number and records the read at the current time.
func (s *progressService) Update(ctx context.Context, userID, novelID, chapterID string) error {
	if userID == "" {
		return ErrLoginRequired
	}
	chapter, err := fetch(ctx, s.run, "Loading chapter", func(ctx context.Context) (*models.Chapter, error) {
		return s.chapters.GetByID(ctx, chapterID)
	})
	if err != nil {
		return s.run.report(ctx, err, "")
	}

	p := &models.ReadingProgress{
		UserID:        userID,
		NovelID:       novelID,
		ChapterID:     chapterID,
		ChapterNumber: chapter.ChapterNumber,
		LastreadAt:    s.now().UTC(),
	}
	err = exec(ctx, s.run, "Updating reading progress", func(ctx context.Context) error {
		return s.progress.Upsert(ctx, p)
	})
	return s.run.report(ctx, err, "")
}

func (s *progressService) ContinueReading(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	if userID == "" {
		return nil, nil
	}
	p, err := fetch(ctx, s.run, "Loading reading progress", func(ctx context.Context) (*models.ReadingProgress, error) {
		return s.progress.Latest(ctx, userID, novelID)
	})
	return p, s.run.report(ctx, err, "")
}

// History is the most recent read of each novel, newest first.
func (s *progressService) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	if userID == "" {
		return nil, ErrLoginRequired
	}
	entries, err := fetch(ctx, s.run, "Loading reading history", func(ctx context.Context) ([]HistoryEntry, error) {
		rows, err := s.progress.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		latest := dedupeByNovel(rows)

		ids := make([]string, len(latest))
		for i, p := range latest {
			ids[i] = p.NovelID
		}
		novels, err := s.novels.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]models.Novel, len(novels))
		for _, n := range novels {
			byID[n.NovelID] = n
		}

		out := make([]HistoryEntry, 0, len(latest))
		for _, p := range latest {
			entry := HistoryEntry{ReadingProgress: p}
			if n, ok := byID[p.NovelID]; ok {
				entry.Novel = &n
			}
			out = append(out, entry)
		}
		return out, nil
	})
	return entries, s.run.report(ctx, err, "")
}

// dedupeByNovel keeps the first row per novel of a newest-first list.
func dedupeByNovel(rows []models.ReadingProgress) []models.ReadingProgress {
	seen := make(map[string]bool, len(rows))
	out := make([]models.ReadingProgress, 0, len(rows))
	for _, p := range rows {
		if seen[p.NovelID] {
			continue
		}
		seen[p.NovelID] = true
		out = append(out, p)
	}
	return out
}

// WeeklyStats counts reads per day over the last seven days, oldest first.
func (s *progressService) WeeklyStats(ctx context.Context, userID string) ([]DayStat, error) {
	if userID == "" {
		return nil, ErrLoginRequired
	}
	days := lastDays(s.now(), statsDays)

	rows, err := fetch(ctx, s.run, "Loading reading stats", func(ctx context.Context) ([]models.ReadingProgress, error) {
		return s.progress.ListSince(ctx, userID, days[0])
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return countByDay(days, rows), nil
}

// lastDays returns the starts of the n days ending today, oldest first.
func lastDays(now time.Time, n int) []time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	days := make([]time.Time, n)
	for i := range days {
		days[i] = today.AddDate(0, 0, i-(n-1))
	}
	return days
}

func countByDay(days []time.Time, rows []models.ReadingProgress) []DayStat {
	loc := days[0].Location()
	index := make(map[string]int, len(days))
	stats := make([]DayStat, len(days))
	for i, d := range days {
		key := d.Format(time.DateOnly)
		index[key] = i
		stats[i] = DayStat{Date: key, Label: d.Format("Mon")}
	}
	for _, p := range rows {
		if i, ok := index[p.LastreadAt.In(loc).Format(time.DateOnly)]; ok {
			stats[i].Reads++
		}
	}
	return stats
}

func (s *progressService) ClearHistory(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrLoginRequired
	}
	err := exec(ctx, s.run, "Clearing reading history", func(ctx context.Context) error {
		return s.progress.DeleteByUser(ctx, userID)
	})
	return s.run.report(ctx, err, "Reading history cleared")
}
