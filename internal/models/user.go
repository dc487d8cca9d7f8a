package models

import (
	"time"

	"github.com/lib/pq"
)

// UserProfile is the public profile row, keyed by the auth user id.
type UserProfile struct {
	UserID         string         `json:"user_id" gorm:"column:user_id;primaryKey"`
	Username       string         `json:"username" gorm:"column:username"`
	Email          string         `json:"email" gorm:"column:email"`
	ProfilePicture *string        `json:"profile_picture" gorm:"column:profile_picture"`
	Bio            *string        `json:"bio" gorm:"column:bio"`
	Age            *int           `json:"age" gorm:"column:age"`
	InterestGenre  pq.StringArray `json:"interest_genre" gorm:"column:interest_genre;type:text[]"`
	CreatedAt      *time.Time     `json:"created_at,omitempty" gorm:"column:created_at;default:now()"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty" gorm:"column:updated_at"`
}

func (UserProfile) TableName() string {
	return "Users"
}

// IsComplete reports whether the profile has been filled in after sign-up.
func (p *UserProfile) IsComplete() bool {
	return p != nil && p.Username != ""
}
