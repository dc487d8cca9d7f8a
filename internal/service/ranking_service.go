package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"novelhub/internal/models"
	"novelhub/internal/repository"
)

const (
	RankByVotes = "votes"
	RankByViews = "views"

	RangeAll     = "all"
	RangeYearly  = "yearly"
	RangeMonthly = "monthly"
	RangeWeekly  = "weekly"
	RangeDaily   = "daily"
)

type RankedNovel struct {
	models.Novel
	VoteScore int64 `json:"vote_score"`
}

type RankingService interface {
	Ranking(ctx context.Context, genre, sortBy, timeRange string) ([]RankedNovel, error)
}

type rankingService struct {
	novels repository.NovelRepository
	votes  repository.VoteRepository
	now    func() time.Time
	run    runner
}

func NewRankingService(novels repository.NovelRepository, votes repository.VoteRepository, opts Options) RankingService {
	return &rankingService{novels: novels, votes: votes, now: time.Now, run: newRunner(opts)}
}

// since is the created_at lower bound of a ranking window; nil for all time.
func since(timeRange string, now time.Time) (*time.Time, error) {
	var t time.Time
	switch timeRange {
	case "", RangeAll:
		return nil, nil
	case RangeYearly:
		t = now.AddDate(-1, 0, 0)
	case RangeMonthly:
		t = now.AddDate(0, -1, 0)
	case RangeWeekly:
		t = now.AddDate(0, 0, -7)
	case RangeDaily:
		y, m, d := now.Date()
		t = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	default:
		return nil, invalid("time_range", "Time range must be all, yearly, monthly, weekly or daily")
	}
	return &t, nil
}

// Ranking scores every matching novel by upvotes minus downvotes and sorts by
// that score or by views, highest first.
func (s *rankingService) Ranking(ctx context.Context, genre, sortBy, timeRange string) ([]RankedNovel, error) {
	if sortBy == "" {
		sortBy = RankByVotes
	}
	if sortBy != RankByVotes && sortBy != RankByViews {
		return nil, invalid("sort_by", "Sort must be votes or views")
	}
	if genre != "" && genre != models.AllGenres && !models.IsGenre(genre) {
		return nil, invalid("genre", "Unknown genre: "+genre)
	}
	from, err := since(timeRange, s.now())
	if err != nil {
		return nil, err
	}

	filter := repository.NovelFilter{Genre: genre, Since: from}
	ranked, err := fetchList(ctx, s.run, "Loading rankings", func(ctx context.Context) ([]RankedNovel, error) {
		novels, err := s.novels.Top(ctx, filter, 0)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(novels))
		for i, n := range novels {
			ids[i] = n.NovelID
		}
		votes, err := s.votes.ListByNovels(ctx, ids)
		if err != nil {
			return nil, err
		}
		return score(novels, votes), nil
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}

	// Equal scores fall back to views, equal views to score.
	slices.SortStableFunc(ranked, func(a, b RankedNovel) int {
		if sortBy == RankByViews {
			return cmp.Or(compareDesc(a.Views, b.Views), compareDesc(a.VoteScore, b.VoteScore))
		}
		return cmp.Or(compareDesc(a.VoteScore, b.VoteScore), compareDesc(a.Views, b.Views))
	})
	return ranked, nil
}

func score(novels []models.Novel, votes []models.Vote) []RankedNovel {
	scores := make(map[string]int64, len(novels))
	for _, v := range votes {
		if v.VoteType == models.VoteUp {
			scores[v.NovelID]++
		} else {
			scores[v.NovelID]--
		}
	}
	out := make([]RankedNovel, len(novels))
	for i, n := range novels {
		out[i] = RankedNovel{Novel: n, VoteScore: scores[n.NovelID]}
	}
	return out
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
