package dto

import "novelhub/internal/service"

type ChapterRequest struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	ChapterNumber int    `json:"chapter_number"`
	Status        string `json:"status"`
}

func (r ChapterRequest) ToInput() service.ChapterInput {
	return service.ChapterInput{
		Title:         r.Title,
		Content:       r.Content,
		ChapterNumber: r.ChapterNumber,
		Status:        r.Status,
	}
}
