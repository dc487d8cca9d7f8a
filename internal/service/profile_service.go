package service

import (
	"context"
	"strings"
	"time"

	"novelhub/internal/backend"
	"novelhub/internal/models"
	"novelhub/internal/repository"
)

type ProfileInput struct {
	Username       string
	Age            *int
	InterestGenres []string
	Bio            *string
	// ProfilePicture keeps an existing picture URL when no upload is given.
	ProfilePicture *string
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// CompleteProfile fills in the profile created at sign-up.
	CompleteProfile(ctx context.Context, userID, email string, in ProfileInput, picture *Upload) (*models.UserProfile, error)
	Update(ctx context.Context, userID string, in ProfileInput, picture *Upload) (*models.UserProfile, error)
	NeedsCompletion(ctx context.Context, userID string) (bool, error)
}

type profileService struct {
	users   repository.UserRepository
	storage StorageService
	now     func() time.Time
	run     runner
}

func NewProfileService(users repository.UserRepository, storage StorageService, opts Options) ProfileService {
	return &profileService{users: users, storage: storage, now: time.Now, run: newRunner(opts)}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, ErrLoginRequired
	}
	profile, err := fetch(ctx, s.run, "Loading profile", func(ctx context.Context) (*models.UserProfile, error) {
		return s.users.GetByID(ctx, userID)
	})
	return profile, s.run.report(ctx, err, "")
}

// NeedsCompletion is true while the profile row is missing or has no username.
func (s *profileService) NeedsCompletion(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	profile, err := fetch(ctx, s.run, "Loading profile", func(ctx context.Context) (*models.UserProfile, error) {
		return s.users.GetByID(ctx, userID)
	})
	if backend.IsNotFound(err) {
		return true, nil
	}
	if err != nil {
		return false, s.run.report(ctx, err, "")
	}
	return !profile.IsComplete(), nil
}

func validateProfile(in *ProfileInput) error {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return invalid("username", "Username is required")
	}
	if len(in.InterestGenres) > models.MaxGenres {
		return invalid("interest_genre", "You can select up to 3 genres")
	}
	for _, g := range in.InterestGenres {
		if !models.IsGenre(g) {
			return invalid("interest_genre", "Unknown genre: "+g)
		}
	}
	if in.Age != nil && (*in.Age < 1 || *in.Age > 150) {
		return invalid("age", "Please enter a valid age")
	}
	return nil
}

func (s *profileService) CompleteProfile(ctx context.Context, userID, email string, in ProfileInput, picture *Upload) (*models.UserProfile, error) {
	if userID == "" {
		return nil, invalid("user", "No user found")
	}
	profile, err := s.save(ctx, userID, email, in, picture)
	if err != nil {
		return nil, err
	}
	return profile, s.run.report(ctx, nil, "Profile updated successfully!")
}

func (s *profileService) Update(ctx context.Context, userID string, in ProfileInput, picture *Upload) (*models.UserProfile, error) {
	if userID == "" {
		return nil, ErrLoginRequired
	}
	profile, err := s.save(ctx, userID, "", in, picture)
	if err != nil {
		return nil, err
	}
	return profile, s.run.report(ctx, nil, "Profile updated successfully")
}

// save patches the profile row, inserting it when sign-up did not create one.
func (s *profileService) save(ctx context.Context, userID, email string, in ProfileInput, picture *Upload) (*models.UserProfile, error) {
	if err := validateProfile(&in); err != nil {
		return nil, err
	}
	if picture != nil {
		if err := s.storage.Validate(picture); err != nil {
			return nil, &stepError{step: "Failed to upload profile picture", err: err}
		}
		url, err := s.storage.UploadProfilePicture(ctx, picture)
		if err != nil {
			return nil, s.run.report(ctx, err, "")
		}
		in.ProfilePicture = &url
	}

	now := s.now().UTC()
	genres := in.InterestGenres
	if genres == nil {
		genres = []string{}
	}
	patch := map[string]any{
		"username":       in.Username,
		"age":            in.Age,
		"interest_genre": genres,
		"bio":            in.Bio,
		"updated_at":     now,
	}
	if in.ProfilePicture != nil {
		patch["profile_picture"] = *in.ProfilePicture
	}

	profile, err := once(ctx, s.run, "Profile update", func(ctx context.Context) (*models.UserProfile, error) {
		return s.users.Update(ctx, userID, patch)
	})
	if backend.IsNotFound(err) {
		profile = &models.UserProfile{
			UserID:         userID,
			Username:       in.Username,
			Email:          email,
			ProfilePicture: in.ProfilePicture,
			Bio:            in.Bio,
			Age:            in.Age,
			InterestGenre:  genres,
			UpdatedAt:      &now,
		}
		err = exec(ctx, s.run, "Profile update", func(ctx context.Context) error {
			return s.users.Upsert(ctx, profile)
		})
	}
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return profile, nil
}
