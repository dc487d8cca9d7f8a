package models

import "time"

// ReadingProgress has one row per (user_id, novel_id, chapter_id); the
// latest lastread_at per novel is where the reader continues.
type ReadingProgress struct {
	UserID        string    `json:"user_id" gorm:"column:user_id;primaryKey"`
	NovelID       string    `json:"novel_id" gorm:"column:novel_id;primaryKey"`
	ChapterID     string    `json:"chapter_id" gorm:"column:chapter_id;primaryKey"`
	ChapterNumber int       `json:"chapter_number" gorm:"column:chapter_number"`
	LastreadAt    time.Time `json:"lastread_at" gorm:"column:lastread_at"`
}

func (ReadingProgress) TableName() string {
	return "Reading_Progress"
}

type LibraryEntry struct {
	LibraryID string     `json:"library_id,omitempty" gorm:"column:library_id;primaryKey;default:gen_random_uuid()"`
	UserID    string     `json:"user_id" gorm:"column:user_id"`
	NovelID   string     `json:"novel_id" gorm:"column:novel_id"`
	CreatedAt *time.Time `json:"created_at,omitempty" gorm:"column:created_at;default:now()"`
}

func (LibraryEntry) TableName() string {
	return "Library"
}
