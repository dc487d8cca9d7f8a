package service

import (
	"context"
	"strings"
	"time"

	"novelhub/internal/models"
	"novelhub/internal/repository"
)

type ReviewView struct {
	models.Review
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

type ReviewInput struct {
	Rating  int
	Content string
}

type ReviewService interface {
	ListByNovel(ctx context.Context, novelID string) ([]ReviewView, error)
	// Submit writes the user's review, replacing an earlier one.
	Submit(ctx context.Context, userID, novelID string, in ReviewInput) (*models.Review, error)
	// Create always inserts; a second review by the same user conflicts.
	Create(ctx context.Context, userID, novelID string, in ReviewInput) (*models.Review, error)
	Average(ctx context.Context, novelID string) (float64, int, error)
}

type reviewService struct {
	reviews repository.ReviewRepository
	users   repository.UserRepository
	now     func() time.Time
	run     runner
}

func NewReviewService(reviews repository.ReviewRepository, users repository.UserRepository, opts Options) ReviewService {
	return &reviewService{reviews: reviews, users: users, now: time.Now, run: newRunner(opts)}
}

func (s *reviewService) ListByNovel(ctx context.Context, novelID string) ([]ReviewView, error) {
	views, err := fetch(ctx, s.run, "Loading reviews", func(ctx context.Context) ([]ReviewView, error) {
		reviews, err := s.reviews.ListByNovel(ctx, novelID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(reviews))
		for i, r := range reviews {
			ids[i] = r.UserID
		}
		authors, err := profilesByID(ctx, s.users, ids)
		if err != nil {
			return nil, err
		}
		out := make([]ReviewView, len(reviews))
		for i, r := range reviews {
			out[i] = ReviewView{Review: r}
			if p, ok := authors[r.UserID]; ok {
				out[i].Username = p.Username
				out[i].ProfilePicture = p.ProfilePicture
			}
		}
		return out, nil
	})
	return views, s.run.report(ctx, err, "")
}

func validateReview(userID string, in *ReviewInput) error {
	if userID == "" {
		return invalid("user", "Please login to review")
	}
	in.Content = strings.TrimSpace(in.Content)
	if in.Rating < 1 || in.Rating > 5 {
		return invalid("rating", "Rating must be between 1 and 5")
	}
	if in.Content == "" {
		return invalid("content", "Review cannot be empty")
	}
	return nil
}

func (s *reviewService) Submit(ctx context.Context, userID, novelID string, in ReviewInput) (*models.Review, error) {
	if err := validateReview(userID, &in); err != nil {
		return nil, err
	}
	review := &models.Review{
		NovelID:   novelID,
		UserID:    userID,
		Rating:    in.Rating,
		Content:   in.Content,
		CreatedAt: nowPtr(s.now()),
	}
	err := exec(ctx, s.run, "Posting review", func(ctx context.Context) error {
		return s.reviews.Upsert(ctx, review)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return review, s.run.report(ctx, nil, "Review posted successfully!")
}

func (s *reviewService) Create(ctx context.Context, userID, novelID string, in ReviewInput) (*models.Review, error) {
	if err := validateReview(userID, &in); err != nil {
		return nil, err
	}
	review := &models.Review{
		NovelID:   novelID,
		UserID:    userID,
		Rating:    in.Rating,
		Content:   in.Content,
		CreatedAt: nowPtr(s.now()),
	}
	err := exec(ctx, s.run, "Creating review", func(ctx context.Context) error {
		return s.reviews.Create(ctx, review)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return review, s.run.report(ctx, nil, "Review posted successfully!")
}

// Average returns the mean rating and the number of reviews.
func (s *reviewService) Average(ctx context.Context, novelID string) (float64, int, error) {
	reviews, err := fetch(ctx, s.run, "Loading reviews", func(ctx context.Context) ([]models.Review, error) {
		return s.reviews.ListByNovel(ctx, novelID)
	})
	if err != nil {
		return 0, 0, s.run.report(ctx, err, "")
	}
	if len(reviews) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews), nil
}

// profilesByID loads the distinct authors of a list of rows.
func profilesByID(ctx context.Context, users repository.UserRepository, ids []string) (map[string]models.UserProfile, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	profiles, err := users.ListByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.UserProfile, len(profiles))
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}
