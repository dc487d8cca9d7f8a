package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"novelhub/internal/models"
	"novelhub/internal/notify"
)

func TestReviewService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Upserts", func(t *testing.T) {
		rec := &notify.Recorder{}
		reviews := new(MockReviewRepository)
		svc := NewReviewService(reviews, new(MockUserRepository), testOptions(rec))
		reviews.On("Upsert", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
			return r.Rating == 4 && r.Content == "Great" && r.UserID == "u1"
		})).Return(nil)

		_, err := svc.Submit(ctx, "u1", "n1", ReviewInput{Rating: 4, Content: " Great "})
		require.NoError(t, err)
		assert.Equal(t, []string{"Review posted successfully!"}, rec.Successes)
	})

	t.Run("Validation", func(t *testing.T) {
		reviews := new(MockReviewRepository)
		svc := NewReviewService(reviews, new(MockUserRepository), testOptions(&notify.Recorder{}))

		_, err := svc.Submit(ctx, "", "n1", ReviewInput{Rating: 4, Content: "x"})
		assert.EqualError(t, err, "Please login to review")
		_, err = svc.Submit(ctx, "u1", "n1", ReviewInput{Rating: 6, Content: "x"})
		assert.EqualError(t, err, "Rating must be between 1 and 5")
		_, err = svc.Submit(ctx, "u1", "n1", ReviewInput{Rating: 0, Content: "x"})
		assert.True(t, IsValidation(err))
		_, err = svc.Submit(ctx, "u1", "n1", ReviewInput{Rating: 3, Content: "  "})
		assert.EqualError(t, err, "Review cannot be empty")
		reviews.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestReviewService_ListAndAverage(t *testing.T) {
	ctx := context.Background()
	reviews := new(MockReviewRepository)
	users := new(MockUserRepository)
	svc := NewReviewService(reviews, users, testOptions(&notify.Recorder{}))

	reviews.On("ListByNovel", mock.Anything, "n1").Return([]models.Review{
		{UserID: "u1", Rating: 5}, {UserID: "u2", Rating: 2}, {UserID: "u1", Rating: 5},
	}, nil)
	users.On("ListByIDs", mock.Anything, []string{"u1", "u2"}).Return([]models.UserProfile{
		{UserID: "u1", Username: "alice"},
	}, nil)

	list, err := svc.ListByNovel(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alice", list[0].Username)
	assert.Empty(t, list[1].Username)

	avg, n, err := svc.Average(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.InDelta(t, 4.0, avg, 0.001)
}
