package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"novelhub/internal/models"
	"novelhub/internal/notify"
)

// MockProgressService mocks ProgressService
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) Update(ctx context.Context, userID, novelID, chapterID string) error {
	return m.Called(ctx, userID, novelID, chapterID).Error(0)
}

func (m *MockProgressService) ContinueReading(ctx context.Context, userID, novelID string) (*models.ReadingProgress, error) {
	args := m.Called(ctx, userID, novelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReadingProgress), args.Error(1)
}

func (m *MockProgressService) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]HistoryEntry), args.Error(1)
}

func (m *MockProgressService) WeeklyStats(ctx context.Context, userID string) ([]DayStat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DayStat), args.Error(1)
}

func (m *MockProgressService) ClearHistory(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func TestChapterService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("NumberDefaultsToCountPlusOne", func(t *testing.T) {
		rec := &notify.Recorder{}
		chapters := new(MockChapterRepository)
		svc := NewChapterService(chapters, nil, testOptions(rec))

		chapters.On("CountByNovel", mock.Anything, "n1").Return(int64(4), nil)
		chapters.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Chapter) bool {
			return c.ChapterNumber == 5 && c.NovelID == "n1" && c.Status == models.ChapterPublished && c.Views == 0
		})).Return(nil).Once()

		chapter, err := svc.Create(ctx, "u1", "n1", ChapterInput{Title: "Five", Content: "text"})
		require.NoError(t, err)
		assert.Equal(t, 5, chapter.ChapterNumber)
		assert.Equal(t, []string{"Chapter created successfully!"}, rec.Successes)
	})

	t.Run("EmptyContentIsDraft", func(t *testing.T) {
		chapters := new(MockChapterRepository)
		svc := NewChapterService(chapters, nil, testOptions(&notify.Recorder{}))
		chapters.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Chapter) bool {
			return c.Status == models.ChapterDraft && c.ChapterNumber == 2
		})).Return(nil).Once()

		_, err := svc.Create(ctx, "u1", "n1", ChapterInput{Title: "Two", ChapterNumber: 2})
		require.NoError(t, err)
		chapters.AssertNotCalled(t, "CountByNovel", mock.Anything, mock.Anything)
	})

	t.Run("Validation", func(t *testing.T) {
		chapters := new(MockChapterRepository)
		svc := NewChapterService(chapters, nil, testOptions(&notify.Recorder{}))

		_, err := svc.Create(ctx, "u1", "", ChapterInput{Title: "x"})
		assert.EqualError(t, err, "Novel ID is missing")
		_, err = svc.Create(ctx, "", "n1", ChapterInput{Title: "x"})
		assert.EqualError(t, err, "You must be logged in to add chapters")
		_, err = svc.Create(ctx, "u1", "n1", ChapterInput{Title: " "})
		assert.EqualError(t, err, "Please enter a chapter title")
		chapters.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestNeighbours(t *testing.T) {
	chapters := []models.Chapter{
		{ChapterID: "c1", ChapterNumber: 1},
		{ChapterID: "c2", ChapterNumber: 2},
		{ChapterID: "c4", ChapterNumber: 4},
	}

	nav := neighbours(chapters, 2)
	require.NotNil(t, nav.Previous)
	require.NotNil(t, nav.Next)
	assert.Equal(t, "c1", nav.Previous.ChapterID)
	assert.Equal(t, "c4", nav.Next.ChapterID)

	first := neighbours(chapters, 1)
	assert.Nil(t, first.Previous)
	assert.Equal(t, "c2", first.Next.ChapterID)

	last := neighbours(chapters, 4)
	assert.Equal(t, "c2", last.Previous.ChapterID)
	assert.Nil(t, last.Next)
}

func TestChapterService_Read(t *testing.T) {
	ctx := context.Background()
	chapter := &models.Chapter{ChapterID: "c2", NovelID: "n1", ChapterNumber: 2}

	t.Run("SignedInRecordsProgress", func(t *testing.T) {
		chapters := new(MockChapterRepository)
		progress := new(MockProgressService)
		svc := NewChapterService(chapters, progress, testOptions(&notify.Recorder{}))

		chapters.On("GetByID", mock.Anything, "c2").Return(chapter, nil)
		chapters.On("ListByNovel", mock.Anything, "n1", true).Return([]models.Chapter{
			{ChapterID: "c1", ChapterNumber: 1}, *chapter, {ChapterID: "c3", ChapterNumber: 3},
		}, nil)
		progress.On("Update", mock.Anything, "u1", "n1", "c2").Return(nil).Once()
		chapters.On("IncrementViews", mock.Anything, "c2").Return(nil).Once()

		page, err := svc.Read(ctx, "u1", "c2")
		require.NoError(t, err)
		assert.Equal(t, "c1", page.Navigation.Previous.ChapterID)
		assert.Equal(t, "c3", page.Navigation.Next.ChapterID)
		progress.AssertExpectations(t)
		chapters.AssertExpectations(t)
	})

	t.Run("AnonymousAndFailedCounterStillRead", func(t *testing.T) {
		chapters := new(MockChapterRepository)
		progress := new(MockProgressService)
		svc := NewChapterService(chapters, progress, testOptions(&notify.Recorder{}))

		chapters.On("GetByID", mock.Anything, "c2").Return(chapter, nil)
		chapters.On("ListByNovel", mock.Anything, "n1", true).Return([]models.Chapter{*chapter}, nil)
		chapters.On("IncrementViews", mock.Anything, "c2").Return(errors.New("rpc failed"))

		page, err := svc.Read(ctx, "", "c2")
		require.NoError(t, err)
		assert.Equal(t, "c2", page.Chapter.ChapterID)
		progress.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestChapterService_UpdateSetsTimestamp(t *testing.T) {
	chapters := new(MockChapterRepository)
	rec := &notify.Recorder{}
	svc := NewChapterService(chapters, nil, testOptions(rec))
	chapters.On("Update", mock.Anything, "c1", mock.MatchedBy(func(patch map[string]any) bool {
		_, ok := patch["updated_at"]
		_, numbered := patch["chapter_number"]
		return ok && !numbered && patch["title"] == "New"
	})).Return(&models.Chapter{ChapterID: "c1", Title: "New"}, nil)

	_, err := svc.Update(context.Background(), "c1", ChapterInput{Title: "New", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Chapter updated successfully!"}, rec.Successes)
}
