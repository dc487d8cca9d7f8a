package repository

import (
	"context"
	"fmt"

	"novelhub/internal/backend"
	"novelhub/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)
	ListByIDs(ctx context.Context, userIDs []string) ([]models.UserProfile, error)
	Upsert(ctx context.Context, p *models.UserProfile) error
	Update(ctx context.Context, userID string, patch map[string]any) (*models.UserProfile, error)
}

type userRepository struct {
	db backend.DataSource
}

func NewUserRepository(db backend.DataSource) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	q := backend.From(profile.TableName()).Eq("user_id", userID).ExpectSingle()
	if _, err := r.db.Select(ctx, q, &profile); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// ListByIDs fetches the public columns used to label reviews and comments.
func (r *userRepository) ListByIDs(ctx context.Context, userIDs []string) ([]models.UserProfile, error) {
	if len(userIDs) == 0 {
		return []models.UserProfile{}, nil
	}
	q := backend.From(models.UserProfile{}.TableName()).
		Select("user_id", "username", "profile_picture").
		In("user_id", userIDs)

	var profiles []models.UserProfile
	if _, err := r.db.Select(ctx, q, &profiles); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (r *userRepository) Upsert(ctx context.Context, p *models.UserProfile) error {
	if err := r.db.Upsert(ctx, p.TableName(), p, []string{"user_id"}, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, userID string, patch map[string]any) (*models.UserProfile, error) {
	var updated []models.UserProfile
	if err := r.db.Update(ctx, models.UserProfile{}.TableName(), patch, []backend.Filter{backend.Eq("user_id", userID)}, &updated); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("update profile: %w", backend.ErrNotFound)
	}
	return &updated[0], nil
}
