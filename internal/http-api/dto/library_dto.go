package dto

type AddToLibraryRequest struct {
	NovelID string `json:"novel_id" binding:"required"`
}

type LibraryStatusResponse struct {
	NovelID   string `json:"novel_id"`
	InLibrary bool   `json:"in_library"`
}
