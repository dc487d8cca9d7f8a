package service

import (
	"context"
	"strings"
	"time"

	"novelhub/internal/models"
	"novelhub/internal/repository"
)

type ChapterInput struct {
	Title   string
	Content string
	// ChapterNumber 0 means the next free number.
	ChapterNumber int
	Status        string
}

// ChapterRef is a neighbour in the reader's previous/next links.
type ChapterRef struct {
	ChapterID     string `json:"chapter_id"`
	ChapterNumber int    `json:"chapter_number"`
	Title         string `json:"title"`
}

type Navigation struct {
	Previous *ChapterRef `json:"previous,omitempty"`
	Next     *ChapterRef `json:"next,omitempty"`
}

// ReaderPage is a chapter opened for reading.
type ReaderPage struct {
	Chapter    models.Chapter `json:"chapter"`
	Navigation Navigation     `json:"navigation"`
}

type ChapterService interface {
	ListByNovel(ctx context.Context, novelID string, ascending bool) ([]models.Chapter, error)
	Get(ctx context.Context, id string) (*models.Chapter, error)
	// Read loads the chapter with its neighbours, records progress for a
	// signed-in reader and counts the view.
	Read(ctx context.Context, userID, chapterID string) (*ReaderPage, error)
	Navigation(ctx context.Context, chapter *models.Chapter) (Navigation, error)
	Create(ctx context.Context, userID, novelID string, in ChapterInput) (*models.Chapter, error)
	Update(ctx context.Context, id string, in ChapterInput) (*models.Chapter, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

type chapterService struct {
	chapters repository.ChapterRepository
	progress ProgressService
	now      func() time.Time
	run      runner
}

func NewChapterService(chapters repository.ChapterRepository, progress ProgressService, opts Options) ChapterService {
	return &chapterService{chapters: chapters, progress: progress, now: time.Now, run: newRunner(opts)}
}

func (s *chapterService) ListByNovel(ctx context.Context, novelID string, ascending bool) ([]models.Chapter, error) {
	if strings.TrimSpace(novelID) == "" {
		return nil, invalid("novel_id", "Novel ID is missing")
	}
	chapters, err := fetch(ctx, s.run, "Loading chapters", func(ctx context.Context) ([]models.Chapter, error) {
		return s.chapters.ListByNovel(ctx, novelID, ascending)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return chapters, nil
}

func (s *chapterService) Get(ctx context.Context, id string) (*models.Chapter, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("chapter_id", "Chapter ID is missing")
	}
	chapter, err := fetch(ctx, s.run, "Loading chapter", func(ctx context.Context) (*models.Chapter, error) {
		return s.chapters.GetByID(ctx, id)
	})
	return chapter, s.run.report(ctx, err, "")
}

func (s *chapterService) Navigation(ctx context.Context, chapter *models.Chapter) (Navigation, error) {
	chapters, err := s.ListByNovel(ctx, chapter.NovelID, true)
	if err != nil {
		return Navigation{}, err
	}
	return neighbours(chapters, chapter.ChapterNumber), nil
}

// neighbours picks the closest lower and higher numbers from an ascending list.
func neighbours(chapters []models.Chapter, number int) Navigation {
	var nav Navigation
	for _, c := range chapters {
		switch {
		case c.ChapterNumber < number:
			nav.Previous = &ChapterRef{ChapterID: c.ChapterID, ChapterNumber: c.ChapterNumber, Title: c.Title}
		case c.ChapterNumber > number && nav.Next == nil:
			nav.Next = &ChapterRef{ChapterID: c.ChapterID, ChapterNumber: c.ChapterNumber, Title: c.Title}
		}
	}
	return nav
}

func (s *chapterService) Read(ctx context.Context, userID, chapterID string) (*ReaderPage, error) {
	chapter, err := s.Get(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	nav, err := s.Navigation(ctx, chapter)
	if err != nil {
		return nil, err
	}

	// Progress and the view counter never block reading.
	if userID != "" && s.progress != nil {
		if err := s.progress.Update(ctx, userID, chapter.NovelID, chapter.ChapterID); err != nil {
			s.run.opts.Logger.WarnContext(ctx, "reading progress not saved", "chapter_id", chapterID, "error", err)
		}
	}
	_ = s.IncrementViews(ctx, chapter.ChapterID)

	return &ReaderPage{Chapter: *chapter, Navigation: nav}, nil
}

func (s *chapterService) Create(ctx context.Context, userID, novelID string, in ChapterInput) (*models.Chapter, error) {
	switch {
	case strings.TrimSpace(novelID) == "":
		return nil, invalid("novel_id", "Novel ID is missing")
	case userID == "":
		return nil, invalid("user", "You must be logged in to add chapters")
	}
	if err := validateChapter(&in); err != nil {
		return nil, err
	}

	if in.ChapterNumber == 0 {
		count, err := fetch(ctx, s.run, "Counting chapters", func(ctx context.Context) (int64, error) {
			return s.chapters.CountByNovel(ctx, novelID)
		})
		if err != nil {
			return nil, s.run.report(ctx, err, "")
		}
		in.ChapterNumber = int(count) + 1
	}

	chapter := &models.Chapter{
		NovelID:       novelID,
		Title:         in.Title,
		Content:       in.Content,
		ChapterNumber: in.ChapterNumber,
		Status:        in.Status,
		Views:         0,
		CreatedAt:     nowPtr(s.now()),
	}
	err := exec(ctx, s.run, "Creating chapter", func(ctx context.Context) error {
		return s.chapters.Create(ctx, chapter)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return chapter, s.run.report(ctx, nil, "Chapter created successfully!")
}

// validateChapter requires a title; empty content is saved as a draft.
func validateChapter(in *ChapterInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return invalid("title", "Please enter a chapter title")
	}
	if in.ChapterNumber < 0 {
		return invalid("chapter_number", "Chapter number must be positive")
	}
	if in.Status == "" {
		in.Status = models.ChapterPublished
		if strings.TrimSpace(in.Content) == "" {
			in.Status = models.ChapterDraft
		}
	}
	if in.Status != models.ChapterDraft && in.Status != models.ChapterPublished {
		return invalid("status", "Status must be draft or published")
	}
	return nil
}

func (s *chapterService) Update(ctx context.Context, id string, in ChapterInput) (*models.Chapter, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("chapter_id", "Chapter ID is missing")
	}
	if err := validateChapter(&in); err != nil {
		return nil, err
	}

	patch := map[string]any{
		"title":      in.Title,
		"content":    in.Content,
		"status":     in.Status,
		"updated_at": s.now().UTC(),
	}
	if in.ChapterNumber > 0 {
		patch["chapter_number"] = in.ChapterNumber
	}

	chapter, err := once(ctx, s.run, "Updating chapter", func(ctx context.Context) (*models.Chapter, error) {
		return s.chapters.Update(ctx, id, patch)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return chapter, s.run.report(ctx, nil, "Chapter updated successfully!")
}

func (s *chapterService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("chapter_id", "Chapter ID is missing")
	}
	err := exec(ctx, s.run, "Deleting chapter", func(ctx context.Context) error {
		return s.chapters.Delete(ctx, id)
	})
	return s.run.report(ctx, err, "Chapter deleted successfully!")
}

func (s *chapterService) IncrementViews(ctx context.Context, id string) error {
	err := exec(ctx, s.run, "Counting view", func(ctx context.Context) error {
		return s.chapters.IncrementViews(ctx, id)
	})
	if err != nil {
		s.run.opts.Logger.WarnContext(ctx, "increment chapter views failed", "chapter_id", id, "error", err)
	}
	return err
}
