package dto

import "novelhub/internal/service"

type VoteRequest struct {
	VoteType string `json:"vote_type" binding:"required,oneof=up down"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

func (r ReviewRequest) ToInput() service.ReviewInput {
	return service.ReviewInput{Rating: r.Rating, Content: r.Content}
}

type ReviewListResponse struct {
	Reviews []service.ReviewView `json:"reviews"`
	Average float64              `json:"average"`
	Count   int                  `json:"count"`
}

type CommentRequest struct {
	Content string `json:"content"`
}
