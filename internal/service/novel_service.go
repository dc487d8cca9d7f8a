package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"novelhub/internal/backend"
	"novelhub/internal/models"
	"novelhub/internal/repository"
)

const (
	DefaultPageSize   = 10
	NewArrivalsSize   = 20
	ExploreSize       = 20
	QuickSearchLimit  = 10
	DefaultSearchSize = 20
	defaultNovelOrder = "views"
	dashboardFanOut   = 4
)

var novelOrderColumns = map[string]bool{
	"views":      true,
	"created_at": true,
	"updated_at": true,
	"title":      true,
}

type ListParams struct {
	Page      int
	Limit     int
	Genre     string
	OrderBy   string
	Ascending bool
}

type NovelPage struct {
	Novels     []models.Novel `json:"novels"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	HasMore    bool           `json:"has_more"`
}

// NovelInput is the create/edit form.
type NovelInput struct {
	Title            string
	Author           string
	Genres           []string
	Story            string
	Language         string
	Status           string
	LeadingCharacter string
	// CoverURL keeps an existing cover when no new image is uploaded.
	CoverURL *string
}

// AuthorNovel is one row of the author dashboard.
type AuthorNovel struct {
	models.Novel
	Chapters []models.Chapter `json:"chapters"`
}

type NovelService interface {
	List(ctx context.Context, p ListParams) (*NovelPage, error)
	NewArrivals(ctx context.Context, page int) (*NovelPage, error)
	Explore(ctx context.Context, genre string) ([]models.Novel, error)
	Get(ctx context.Context, id string) (*models.Novel, error)
	ByAuthor(ctx context.Context, userID string) ([]models.Novel, error)
	Dashboard(ctx context.Context, userID string) ([]AuthorNovel, error)
	QuickSearch(ctx context.Context, term string) ([]models.Novel, error)
	Search(ctx context.Context, term string, genres []string, page, pageSize int) ([]models.Novel, error)
	Create(ctx context.Context, userID string, in NovelInput, cover *Upload) (*models.Novel, error)
	Update(ctx context.Context, id string, in NovelInput, cover *Upload) (*models.Novel, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

type novelService struct {
	novels   repository.NovelRepository
	chapters repository.ChapterRepository
	storage  StorageService
	now      func() time.Time
	run      runner
}

func NewNovelService(novels repository.NovelRepository, chapters repository.ChapterRepository, storage StorageService, opts Options) NovelService {
	return &novelService{
		novels:   novels,
		chapters: chapters,
		storage:  storage,
		now:      time.Now,
		run:      newRunner(opts),
	}
}

// List pages through novels; page 1, limit 10, every genre and most viewed
// first unless told otherwise.
func (s *novelService) List(ctx context.Context, p ListParams) (*NovelPage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Genre == "" {
		p.Genre = models.AllGenres
	}
	if p.OrderBy == "" {
		p.OrderBy = defaultNovelOrder
	}
	if !novelOrderColumns[p.OrderBy] {
		return nil, invalid("order_by", "Unknown sort column: "+p.OrderBy)
	}

	from, to := backend.PageRange(p.Page, p.Limit)
	filter := repository.NovelFilter{Genre: p.Genre, OrderBy: p.OrderBy, Ascending: p.Ascending}

	type result struct {
		novels []models.Novel
		total  int64
	}
	res, err := fetchList(ctx, s.run, "Loading novels", func(ctx context.Context) (result, error) {
		novels, total, err := s.novels.List(ctx, filter, from, to)
		return result{novels, total}, err
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}

	return &NovelPage{
		Novels:     res.novels,
		Total:      res.total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: backend.TotalPages(res.total, p.Limit),
		HasMore:    backend.HasMore(res.total, p.Page, p.Limit),
	}, nil
}

func (s *novelService) NewArrivals(ctx context.Context, page int) (*NovelPage, error) {
	return s.List(ctx, ListParams{Page: page, Limit: NewArrivalsSize, OrderBy: "created_at"})
}

func (s *novelService) Explore(ctx context.Context, genre string) ([]models.Novel, error) {
	filter := repository.NovelFilter{Genre: genre, OrderBy: "views"}
	novels, err := fetchList(ctx, s.run, "Loading novels", func(ctx context.Context) ([]models.Novel, error) {
		return s.novels.Top(ctx, filter, ExploreSize)
	})
	return novels, s.run.report(ctx, err, "")
}

func (s *novelService) Get(ctx context.Context, id string) (*models.Novel, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("novel_id", "Novel ID is missing")
	}
	novel, err := fetch(ctx, s.run, "Loading novel", func(ctx context.Context) (*models.Novel, error) {
		return s.novels.GetByID(ctx, id)
	})
	return novel, s.run.report(ctx, err, "")
}

func (s *novelService) ByAuthor(ctx context.Context, userID string) ([]models.Novel, error) {
	if userID == "" {
		return nil, ErrLoginRequired
	}
	novels, err := fetch(ctx, s.run, "Loading your novels", func(ctx context.Context) ([]models.Novel, error) {
		return s.novels.ListByUploader(ctx, userID)
	})
	return novels, s.run.report(ctx, err, "")
}

// Dashboard loads the author's novels, each with its chapters in order.
func (s *novelService) Dashboard(ctx context.Context, userID string) ([]AuthorNovel, error) {
	novels, err := s.ByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]AuthorNovel, len(novels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardFanOut)
	for i, n := range novels {
		out[i].Novel = n
		g.Go(func() error {
			chapters, err := fetch(gctx, s.run, "Loading chapters", func(ctx context.Context) ([]models.Chapter, error) {
				return s.chapters.ListByNovel(ctx, n.NovelID, true)
			})
			if err != nil {
				return err
			}
			out[i].Chapters = chapters
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return out, nil
}

// QuickSearch backs the navbar typeahead; blank input never hits the backend.
func (s *novelService) QuickSearch(ctx context.Context, term string) ([]models.Novel, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Novel{}, nil
	}
	novels, err := fetch(ctx, s.run, "Searching", func(ctx context.Context) ([]models.Novel, error) {
		return s.novels.QuickSearch(ctx, term, QuickSearchLimit)
	})
	return novels, s.run.report(ctx, err, "")
}

func (s *novelService) Search(ctx context.Context, term string, genres []string, page, pageSize int) ([]models.Novel, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultSearchSize
	}
	for _, g := range genres {
		if !models.IsGenre(g) {
			return nil, invalid("genre", "Unknown genre: "+g)
		}
	}
	term = strings.TrimSpace(term)
	novels, err := fetch(ctx, s.run, "Searching", func(ctx context.Context) ([]models.Novel, error) {
		return s.novels.Search(ctx, term, genres, page, pageSize)
	})
	return novels, s.run.report(ctx, err, "")
}

func validateNovel(in *NovelInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Story = strings.TrimSpace(in.Story)

	switch {
	case in.Title == "":
		return invalid("title", "Title is required")
	case in.Author == "":
		return invalid("author", "Author is required")
	case len(in.Genres) == 0:
		return invalid("genre", "Please select at least one genre")
	case len(in.Genres) > models.MaxGenres:
		return invalid("genre", "You can select up to 3 genres")
	case in.Story == "":
		return invalid("story", "Synopsis is required")
	}
	for _, g := range in.Genres {
		if !models.IsGenre(g) {
			return invalid("genre", "Unknown genre: "+g)
		}
	}

	if in.Language == "" {
		in.Language = models.DefaultLanguage
	}
	if !models.IsLanguage(in.Language) {
		return invalid("language", "Unknown language: "+in.Language)
	}
	if in.Status == "" {
		in.Status = models.StatusOngoing
	}
	if in.Status != models.StatusOngoing && in.Status != models.StatusCompleted {
		return invalid("status", "Status must be ongoing or completed")
	}
	if in.LeadingCharacter == "" {
		in.LeadingCharacter = models.LeadMale
	}
	if in.LeadingCharacter != models.LeadMale && in.LeadingCharacter != models.LeadFemale {
		return invalid("leading_character", "Leading character must be male or female")
	}
	return nil
}

// Create uploads the cover first, then inserts the novel with zero views.
func (s *novelService) Create(ctx context.Context, userID string, in NovelInput, cover *Upload) (*models.Novel, error) {
	if err := validateNovel(&in); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, invalid("user", "Please log in to create a novel")
	}
	if cover != nil {
		if err := s.storage.Validate(cover); err != nil {
			return nil, &stepError{step: "Failed to upload cover image", err: err}
		}
	}

	coverURL := in.CoverURL
	if cover != nil {
		url, err := s.storage.UploadNovelCover(ctx, cover)
		if err != nil {
			return nil, s.run.report(ctx, err, "")
		}
		coverURL = &url
	}

	novel := &models.Novel{
		Title:            in.Title,
		Author:           in.Author,
		Genre:            in.Genres,
		LeadingCharacter: in.LeadingCharacter,
		Story:            in.Story,
		NovelCoverpage:   coverURL,
		Language:         in.Language,
		Status:           in.Status,
		Views:            0,
		UploadBy:         userID,
		CreatedAt:        nowPtr(s.now()),
	}
	err := exec(ctx, s.run, "Creating novel", func(ctx context.Context) error {
		return s.novels.Create(ctx, novel)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return novel, s.run.report(ctx, nil, "Novel created successfully!")
}

func (s *novelService) Update(ctx context.Context, id string, in NovelInput, cover *Upload) (*models.Novel, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("novel_id", "Novel ID is missing")
	}
	if err := validateNovel(&in); err != nil {
		return nil, err
	}
	if cover != nil {
		if err := s.storage.Validate(cover); err != nil {
			return nil, &stepError{step: "Failed to upload cover image", err: err}
		}
	}

	coverURL := in.CoverURL
	if cover != nil {
		url, err := s.storage.UploadNovelCover(ctx, cover)
		if err != nil {
			return nil, s.run.report(ctx, err, "")
		}
		coverURL = &url
	}

	patch := map[string]any{
		"title":             in.Title,
		"author":            in.Author,
		"genre":             in.Genres,
		"leading_character": in.LeadingCharacter,
		"story":             in.Story,
		"language":          in.Language,
		"status":            in.Status,
		"updated_at":        s.now().UTC(),
	}
	if coverURL != nil {
		patch["novel_coverpage"] = *coverURL
	}

	novel, err := once(ctx, s.run, "Updating novel", func(ctx context.Context) (*models.Novel, error) {
		return s.novels.Update(ctx, id, patch)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return novel, s.run.report(ctx, nil, "Novel updated successfully!")
}

// Delete removes the chapters before the novel itself.
func (s *novelService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("novel_id", "Novel ID is missing")
	}
	err := exec(ctx, s.run, "Deleting chapters", func(ctx context.Context) error {
		return s.chapters.DeleteByNovel(ctx, id)
	})
	if err == nil {
		err = exec(ctx, s.run, "Deleting novel", func(ctx context.Context) error {
			return s.novels.Delete(ctx, id)
		})
	}
	return s.run.report(ctx, err, "Novel deleted successfully!")
}

// IncrementViews is fire and forget from the reader's point of view: a
// failure is logged, never shown.
func (s *novelService) IncrementViews(ctx context.Context, id string) error {
	err := exec(ctx, s.run, "Counting view", func(ctx context.Context) error {
		return s.novels.IncrementViews(ctx, id)
	})
	if err != nil {
		s.run.opts.Logger.WarnContext(ctx, "increment novel views failed", "novel_id", id, "error", err)
	}
	return err
}
