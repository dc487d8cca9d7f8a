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

func TestVoteService_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("NewVoteUpserts", func(t *testing.T) {
		votes := new(MockVoteRepository)
		svc := NewVoteService(votes, testOptions(&notify.Recorder{}))

		votes.On("Get", mock.Anything, "u1", "n1").Return(nil, nil).Once()
		votes.On("Upsert", mock.Anything, mock.MatchedBy(func(v *models.Vote) bool {
			return v.UserID == "u1" && v.NovelID == "n1" && v.VoteType == models.VoteUp && v.UpdatedAt != nil
		})).Return(nil).Once()
		votes.On("Counts", mock.Anything, "n1").Return(models.VoteCount{Upvotes: 1}, nil)
		votes.On("Get", mock.Anything, "u1", "n1").Return(&models.Vote{VoteType: models.VoteUp}, nil).Once()

		state, err := svc.Toggle(ctx, "u1", "n1", models.VoteUp)
		require.NoError(t, err)
		assert.Equal(t, models.VoteUp, state.UserVote)
		assert.Equal(t, int64(1), state.Upvotes)
		votes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SameVoteWithdraws", func(t *testing.T) {
		votes := new(MockVoteRepository)
		svc := NewVoteService(votes, testOptions(&notify.Recorder{}))

		votes.On("Get", mock.Anything, "u1", "n1").Return(&models.Vote{VoteType: models.VoteDown}, nil).Once()
		votes.On("Delete", mock.Anything, "u1", "n1").Return(nil).Once()
		votes.On("Counts", mock.Anything, "n1").Return(models.VoteCount{}, nil)
		votes.On("Get", mock.Anything, "u1", "n1").Return(nil, nil).Once()

		state, err := svc.Toggle(ctx, "u1", "n1", models.VoteDown)
		require.NoError(t, err)
		assert.Empty(t, state.UserVote)
		votes.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("SwitchingVoteUpserts", func(t *testing.T) {
		votes := new(MockVoteRepository)
		svc := NewVoteService(votes, testOptions(&notify.Recorder{}))

		votes.On("Get", mock.Anything, "u1", "n1").Return(&models.Vote{VoteType: models.VoteDown}, nil).Once()
		votes.On("Upsert", mock.Anything, mock.MatchedBy(func(v *models.Vote) bool { return v.VoteType == models.VoteUp })).Return(nil).Once()
		votes.On("Counts", mock.Anything, "n1").Return(models.VoteCount{Upvotes: 1}, nil)
		votes.On("Get", mock.Anything, "u1", "n1").Return(&models.Vote{VoteType: models.VoteUp}, nil).Once()

		_, err := svc.Toggle(ctx, "u1", "n1", models.VoteUp)
		require.NoError(t, err)
		votes.AssertExpectations(t)
	})

	t.Run("RequiresLogin", func(t *testing.T) {
		votes := new(MockVoteRepository)
		svc := NewVoteService(votes, testOptions(&notify.Recorder{}))

		_, err := svc.Toggle(ctx, "", "n1", models.VoteUp)
		assert.ErrorIs(t, err, ErrLoginRequired)
		votes.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RejectsUnknownType", func(t *testing.T) {
		svc := NewVoteService(new(MockVoteRepository), testOptions(&notify.Recorder{}))
		_, err := svc.Toggle(ctx, "u1", "n1", "sideways")
		assert.True(t, IsValidation(err))
	})
}

func TestVoteService_UserVoteAnonymous(t *testing.T) {
	votes := new(MockVoteRepository)
	svc := NewVoteService(votes, testOptions(&notify.Recorder{}))

	vote, err := svc.UserVote(context.Background(), "", "n1")
	require.NoError(t, err)
	assert.Empty(t, vote)
	votes.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}
