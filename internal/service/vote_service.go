package service

import (
	"context"
	"time"

	"novelhub/internal/models"
	"novelhub/internal/repository"
)

// VoteState is what the vote buttons show.
type VoteState struct {
	models.VoteCount
	UserVote string `json:"user_vote,omitempty"`
}

type VoteService interface {
	Counts(ctx context.Context, novelID string) (models.VoteCount, error)
	UserVote(ctx context.Context, userID, novelID string) (string, error)
	State(ctx context.Context, userID, novelID string) (*VoteState, error)
	// Toggle casts voteType, or withdraws it when it is already the user's vote.
	Toggle(ctx context.Context, userID, novelID, voteType string) (*VoteState, error)
}

type voteService struct {
	votes repository.VoteRepository
	now   func() time.Time
	run   runner
}

func NewVoteService(votes repository.VoteRepository, opts Options) VoteService {
	return &voteService{votes: votes, now: time.Now, run: newRunner(opts)}
}

func (s *voteService) Counts(ctx context.Context, novelID string) (models.VoteCount, error) {
	counts, err := fetch(ctx, s.run, "Loading votes", func(ctx context.Context) (models.VoteCount, error) {
		return s.votes.Counts(ctx, novelID)
	})
	return counts, s.run.report(ctx, err, "")
}

func (s *voteService) UserVote(ctx context.Context, userID, novelID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	vote, err := fetch(ctx, s.run, "Loading votes", func(ctx context.Context) (*models.Vote, error) {
		return s.votes.Get(ctx, userID, novelID)
	})
	if err != nil {
		return "", s.run.report(ctx, err, "")
	}
	if vote == nil {
		return "", nil
	}
	return vote.VoteType, nil
}

func (s *voteService) State(ctx context.Context, userID, novelID string) (*VoteState, error) {
	counts, err := s.Counts(ctx, novelID)
	if err != nil {
		return nil, err
	}
	mine, err := s.UserVote(ctx, userID, novelID)
	if err != nil {
		return nil, err
	}
	return &VoteState{VoteCount: counts, UserVote: mine}, nil
}

func (s *voteService) Toggle(ctx context.Context, userID, novelID, voteType string) (*VoteState, error) {
	if userID == "" {
		return nil, ErrLoginRequired
	}
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return nil, invalid("vote_type", "Vote must be up or down")
	}

	current, err := s.UserVote(ctx, userID, novelID)
	if err != nil {
		return nil, err
	}

	if current == voteType {
		err = exec(ctx, s.run, "Voting", func(ctx context.Context) error {
			return s.votes.Delete(ctx, userID, novelID)
		})
	} else {
		vote := &models.Vote{
			NovelID:   novelID,
			UserID:    userID,
			VoteType:  voteType,
			UpdatedAt: nowPtr(s.now()),
		}
		err = exec(ctx, s.run, "Voting", func(ctx context.Context) error {
			return s.votes.Upsert(ctx, vote)
		})
	}
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return s.State(ctx, userID, novelID)
}
