package models

import "time"

// Vote is unique per (novel_id, user_id).
type Vote struct {
	NovelID   string     `json:"novel_id" gorm:"column:novel_id;primaryKey"`
	UserID    string     `json:"user_id" gorm:"column:user_id;primaryKey"`
	VoteType  string     `json:"vote_type" gorm:"column:vote_type"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" gorm:"column:updated_at"`
}

func (Vote) TableName() string {
	return "Votes"
}

// VoteCount is what get_novel_vote_count returns.
type VoteCount struct {
	Upvotes   int64 `json:"upvotes" gorm:"column:upvotes"`
	Downvotes int64 `json:"downvotes" gorm:"column:downvotes"`
}

func (c VoteCount) Score() int64 { return c.Upvotes - c.Downvotes }

// Review is unique per (novel_id, user_id).
type Review struct {
	NovelID   string     `json:"novel_id" gorm:"column:novel_id;primaryKey"`
	UserID    string     `json:"user_id" gorm:"column:user_id;primaryKey"`
	Content   string     `json:"content" gorm:"column:content"`
	Rating    int        `json:"rating" gorm:"column:rating"`
	CreatedAt *time.Time `json:"created_at,omitempty" gorm:"column:created_at;default:now()"`
}

func (Review) TableName() string {
	return "Reviews"
}

type Comment struct {
	CommentID string     `json:"comment_id,omitempty" gorm:"column:comment_id;primaryKey;default:gen_random_uuid()"`
	ChapterID string     `json:"chapter_id" gorm:"column:chapter_id"`
	UserID    string     `json:"user_id" gorm:"column:user_id"`
	Content   string     `json:"content" gorm:"column:content"`
	CreatedAt *time.Time `json:"created_at,omitempty" gorm:"column:created_at;default:now()"`
}

func (Comment) TableName() string {
	return "Comments"
}
