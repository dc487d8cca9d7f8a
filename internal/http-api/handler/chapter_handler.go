package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/http-api/dto"
	"novelhub/internal/http-api/middleware"
	"novelhub/internal/models"
	"novelhub/internal/service"
)

type ChapterHandler struct {
	chapters service.ChapterService
	novels   service.NovelService
}

func NewChapterHandler(chapters service.ChapterService, novels service.NovelService) *ChapterHandler {
	return &ChapterHandler{chapters: chapters, novels: novels}
}

func (h *ChapterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/novels/:id/chapters", h.List)
	rg.POST("/novels/:id/chapters", middleware.RequireUser(), h.Create)
	rg.GET("/chapters/:id", h.Read)
	rg.PUT("/chapters/:id", middleware.RequireUser(), h.Update)
	rg.DELETE("/chapters/:id", middleware.RequireUser(), h.Delete)
}

// List orders by chapter number, ascending unless order=desc.
func (h *ChapterHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	chapters, err := h.chapters.ListByNovel(ctx, c.Param("id"), c.Query("order") != "desc")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapters": chapters})
}

// Read opens the chapter for the reader, saving progress when signed in.
func (h *ChapterHandler) Read(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.chapters.Read(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ChapterHandler) Create(c *gin.Context) {
	var req dto.ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	novelID := c.Param("id")
	if _, ok := ownedNovel(ctx, c, h.novels, novelID); !ok {
		return
	}
	chapter, err := h.chapters.Create(ctx, middleware.UserID(c), novelID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chapter)
}

func (h *ChapterHandler) Update(c *gin.Context) {
	var req dto.ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	chapter, ok := h.ownedChapter(ctx, c)
	if !ok {
		return
	}
	updated, err := h.chapters.Update(ctx, chapter.ChapterID, req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ChapterHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	chapter, ok := h.ownedChapter(ctx, c)
	if !ok {
		return
	}
	if err := h.chapters.Delete(ctx, chapter.ChapterID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chapter deleted successfully!"})
}

func (h *ChapterHandler) ownedChapter(ctx context.Context, c *gin.Context) (*models.Chapter, bool) {
	chapter, err := h.chapters.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if _, ok := ownedNovel(ctx, c, h.novels, chapter.NovelID); !ok {
		return nil, false
	}
	return chapter, true
}
