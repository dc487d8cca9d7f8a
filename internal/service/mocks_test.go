package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"novelhub/internal/backend"
	"novelhub/internal/backend/realtime"
	"novelhub/internal/models"
	"novelhub/internal/notify"
	"novelhub/internal/repository"
)

func testOptions(n notify.Notifier) Options {
	return Options{
		Timeout:      time.Second,
		RetryMax:     3,
		RetryDelay:   time.Millisecond,
		BackoffDelay: time.Millisecond,
		Notifier:     n,
	}
}

// MockNovelRepository mocks repository.NovelRepository
type MockNovelRepository struct {
	mock.Mock
}

func (m *MockNovelRepository) List(ctx context.Context, f repository.NovelFilter, from, to int) ([]models.Novel, int64, error) {
	args := m.Called(ctx, f, from, to)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Novel), args.Get(1).(int64), args.Error(2)
}

func (m *MockNovelRepository) Top(ctx context.Context, f repository.NovelFilter, limit int) ([]models.Novel, error) {
	args := m.Called(ctx, f, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Novel), args.Error(1)
}

func (m *MockNovelRepository) GetByID(ctx context.Context, id string) (*models.Novel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Novel), args.Error(1)
}

func (m *MockNovelRepository) ListByUploader(ctx context.Context, userID string) ([]models.Novel, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Novel), args.Error(1)
}

func (m *MockNovelRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Novel, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Novel), args.Error(1)
}

func (m *MockNovelRepository) QuickSearch(ctx context.Context, term string, limit int) ([]models.Novel, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Novel), args.Error(1)
}

func (m *MockNovelRepository) Search(ctx context.Context, term string, genres []string, page, pageSize int) ([]models.Novel, error) {
	args := m.Called(ctx, term, genres, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Novel), args.Error(1)
}

func (m *MockNovelRepository) Create(ctx context.Context, n *models.Novel) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNovelRepository) Update(ctx context.Context, id string, patch map[string]any) (*models.Novel, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Novel), args.Error(1)
}

func (m *MockNovelRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNovelRepository) IncrementViews(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockChapterRepository mocks repository.ChapterRepository
type MockChapterRepository struct {
	mock.Mock
}

func (m *MockChapterRepository) ListByNovel(ctx context.Context, novelID string, ascending bool) ([]models.Chapter, error) {
	args := m.Called(ctx, novelID, ascending)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) GetByID(ctx context.Context, id string) (*models.Chapter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) CountByNovel(ctx context.Context, novelID string) (int64, error) {
	args := m.Called(ctx, novelID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChapterRepository) Create(ctx context.Context, c *models.Chapter) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockChapterRepository) Update(ctx context.Context, id string, patch map[string]any) (*models.Chapter, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *MockChapterRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockChapterRepository) DeleteByNovel(ctx context.Context, novelID string) error {
	return m.Called(ctx, novelID).Error(0)
}

func (m *MockChapterRepository) IncrementViews(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockVoteRepository mocks repository.VoteRepository
type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) Counts(ctx context.Context, novelID string) (models.VoteCount, error) {
	args := m.Called(ctx, novelID)
	return args.Get(0).(models.VoteCount), args.Error(1)
}

func (m *MockVoteRepository) Get(ctx context.Context, userID, novelID string) (*models.Vote, error) {
	args := m.Called(ctx, userID, novelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vote), args.Error(1)
}

func (m *MockVoteRepository) Upsert(ctx context.Context, v *models.Vote) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVoteRepository) Delete(ctx context.Context, userID, novelID string) error {
	return m.Called(ctx, userID, novelID).Error(0)
}

func (m *MockVoteRepository) ListByNovels(ctx context.Context, novelIDs []string) ([]models.Vote, error) {
	args := m.Called(ctx, novelIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vote), args.Error(1)
}

// MockReviewRepository mocks repository.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) ListByNovel(ctx context.Context, novelID string) ([]models.Review, error) {
	args := m.Called(ctx, novelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewRepository) Upsert(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReviewRepository) Create(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}

// MockCommentRepository mocks repository.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) ListByChapter(ctx context.Context, chapterID string) ([]models.Comment, error) {
	args := m.Called(ctx, chapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Create(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}

// MockLibraryRepository mocks repository.LibraryRepository
type MockLibraryRepository struct {
	mock.Mock
}

func (m *MockLibraryRepository) Add(ctx context.Context, e *models.LibraryEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockLibraryRepository) Remove(ctx context.Context, userID, novelID string) error {
	return m.Called(ctx, userID, novelID).Error(0)
}

func (m *MockLibraryRepository) Contains(ctx context.Context, userID, novelID string) (bool, error) {
	args := m.Called(ctx, userID, novelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLibraryRepository) List(ctx context.Context, userID string) ([]models.LibraryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LibraryEntry), args.Error(1)
}

// MockProgressRepository mocks repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Upsert(ctx context.Context, p *models.ReadingProgress) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProgressRepository) Latest(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	args := m.Called(ctx, userID, novelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReadingProgress), args.Error(1)
}

func (m *MockProgressRepository) Furthest(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	args := m.Called(ctx, userID, novelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReadingProgress), args.Error(1)
}

func (m *MockProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.ReadingProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReadingProgress), args.Error(1)
}

func (m *MockProgressRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]models.ReadingProgress, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReadingProgress), args.Error(1)
}

func (m *MockProgressRepository) DeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// MockUserRepository mocks repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) ListByIDs(ctx context.Context, userIDs []string) ([]models.UserProfile, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, p *models.UserProfile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, userID string, patch map[string]any) (*models.UserProfile, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

// MockStorage mocks backend.StorageAPI
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, bucket, name string, body io.Reader, opts backend.UploadOptions) error {
	return m.Called(ctx, bucket, name, body, opts).Error(0)
}

func (m *MockStorage) PublicURL(bucket, name string) string {
	return m.Called(bucket, name).String(0)
}

func (m *MockStorage) Remove(ctx context.Context, bucket string, names ...string) error {
	return m.Called(ctx, bucket, names).Error(0)
}

// fakeSubscriber hands out a channel the test feeds.
type fakeSubscriber struct {
	changes chan realtime.Change
	got     realtime.Subscription
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, sub realtime.Subscription) (<-chan realtime.Change, error) {
	f.got = sub
	return f.changes, nil
}
