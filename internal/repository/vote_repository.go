package repository

import (
	"context"
	"fmt"

	"novelhub/internal/backend"
	"novelhub/internal/models"
)

const rpcNovelVoteCount = "get_novel_vote_count"

var voteConflict = []string{"novel_id", "user_id"}

type VoteRepository interface {
	Counts(ctx context.Context, novelID string) (models.VoteCount, error)
	// Get returns nil when the user has not voted on the novel.
	Get(ctx context.Context, userID, novelID string) (*models.Vote, error)
	Upsert(ctx context.Context, v *models.Vote) error
	Delete(ctx context.Context, userID, novelID string) error
	ListByNovels(ctx context.Context, novelIDs []string) ([]models.Vote, error)
}

type voteRepository struct {
	db backend.DataSource
}

func NewVoteRepository(db backend.DataSource) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Counts(ctx context.Context, novelID string) (models.VoteCount, error) {
	var rows []models.VoteCount
	if err := r.db.RPC(ctx, rpcNovelVoteCount, map[string]any{"novel_uuid": novelID}, &rows); err != nil {
		return models.VoteCount{}, fmt.Errorf("vote counts: %w", err)
	}
	if len(rows) == 0 {
		return models.VoteCount{}, nil
	}
	return rows[0], nil
}

func (r *voteRepository) Get(ctx context.Context, userID, novelID string) (*models.Vote, error) {
	q := backend.From(models.Vote{}.TableName()).
		Eq("novel_id", novelID).
		Eq("user_id", userID).
		WithLimit(1)

	var votes []models.Vote
	if _, err := r.db.Select(ctx, q, &votes); err != nil {
		return nil, fmt.Errorf("get vote: %w", err)
	}
	if len(votes) == 0 {
		return nil, nil
	}
	return &votes[0], nil
}

func (r *voteRepository) Upsert(ctx context.Context, v *models.Vote) error {
	if err := r.db.Upsert(ctx, v.TableName(), v, voteConflict, nil); err != nil {
		return fmt.Errorf("save vote: %w", err)
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, userID, novelID string) error {
	filters := []backend.Filter{backend.Eq("novel_id", novelID), backend.Eq("user_id", userID)}
	if err := r.db.Delete(ctx, models.Vote{}.TableName(), filters); err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	return nil
}

func (r *voteRepository) ListByNovels(ctx context.Context, novelIDs []string) ([]models.Vote, error) {
	if len(novelIDs) == 0 {
		return []models.Vote{}, nil
	}
	q := backend.From(models.Vote{}.TableName()).
		Select("novel_id", "vote_type").
		In("novel_id", novelIDs)

	var votes []models.Vote
	if _, err := r.db.Select(ctx, q, &votes); err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}
