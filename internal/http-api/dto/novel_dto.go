package dto

import (
	"novelhub/internal/models"
	"novelhub/internal/service"
)

// NovelRequest binds from JSON or a multipart form carrying a "cover" file.
type NovelRequest struct {
	Title            string   `json:"title" form:"title"`
	Author           string   `json:"author" form:"author"`
	Genres           []string `json:"genre" form:"genre"`
	Story            string   `json:"story" form:"story"`
	Language         string   `json:"language" form:"language"`
	Status           string   `json:"status" form:"status"`
	LeadingCharacter string   `json:"leading_character" form:"leading_character"`
	CoverURL         *string  `json:"novel_coverpage" form:"novel_coverpage"`
}

func (r NovelRequest) ToInput() service.NovelInput {
	return service.NovelInput{
		Title:            r.Title,
		Author:           r.Author,
		Genres:           r.Genres,
		Story:            r.Story,
		Language:         r.Language,
		Status:           r.Status,
		LeadingCharacter: r.LeadingCharacter,
		CoverURL:         r.CoverURL,
	}
}

type ListQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Genre     string `form:"genre"`
	OrderBy   string `form:"order_by"`
	Ascending bool   `form:"ascending"`
}

func (q ListQuery) ToParams() service.ListParams {
	return service.ListParams{
		Page:      q.Page,
		Limit:     q.Limit,
		Genre:     q.Genre,
		OrderBy:   q.OrderBy,
		Ascending: q.Ascending,
	}
}

type SearchQuery struct {
	Query    string   `form:"q"`
	Genres   []string `form:"genre"`
	Page     int      `form:"page"`
	PageSize int      `form:"page_size"`
}

type RankingQuery struct {
	Genre  string `form:"genre"`
	SortBy string `form:"sort_by"`
	Range  string `form:"range"`
}

type NovelDetailResponse struct {
	models.Novel
	Votes     *service.VoteState `json:"votes,omitempty"`
	InLibrary bool               `json:"in_library"`
}
