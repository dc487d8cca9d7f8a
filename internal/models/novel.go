package models

import (
	"time"

	"github.com/lib/pq"
)

type Novel struct {
	NovelID          string         `json:"novel_id,omitempty" gorm:"column:novel_id;primaryKey;default:gen_random_uuid()"`
	Title            string         `json:"title" gorm:"column:title;not null"`
	Author           string         `json:"author" gorm:"column:author;not null"`
	Genre            pq.StringArray `json:"genre" gorm:"column:genre;type:text[]"`
	LeadingCharacter string         `json:"leading_character,omitempty" gorm:"column:leading_character"`
	Story            string         `json:"story" gorm:"column:story"`
	NovelCoverpage   *string        `json:"novel_coverpage" gorm:"column:novel_coverpage"`
	Language         string         `json:"language,omitempty" gorm:"column:language"`
	Status           string         `json:"status,omitempty" gorm:"column:status"`
	Views            int64          `json:"views" gorm:"column:views;default:0"`
	UploadBy         string         `json:"upload_by,omitempty" gorm:"column:upload_by"`
	CreatedAt        *time.Time     `json:"created_at,omitempty" gorm:"column:created_at;default:now()"`
	UpdatedAt        *time.Time     `json:"updated_at,omitempty" gorm:"column:updated_at"`
}

func (Novel) TableName() string {
	return "Novels"
}

type Chapter struct {
	ChapterID     string     `json:"chapter_id,omitempty" gorm:"column:chapter_id;primaryKey;default:gen_random_uuid()"`
	NovelID       string     `json:"novel_id" gorm:"column:novel_id;not null"`
	Title         string     `json:"title" gorm:"column:title"`
	Content       string     `json:"content" gorm:"column:content"`
	ChapterNumber int        `json:"chapter_number" gorm:"column:chapter_number"`
	Views         int64      `json:"views" gorm:"column:views;default:0"`
	Status        string     `json:"status,omitempty" gorm:"column:status"`
	CreatedAt     *time.Time `json:"created_at,omitempty" gorm:"column:created_at;default:now()"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty" gorm:"column:updated_at"`
}

func (Chapter) TableName() string {
	return "Chapters"
}
