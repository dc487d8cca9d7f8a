package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/http-api/dto"
	"novelhub/internal/http-api/middleware"
	"novelhub/internal/service"
)

type LibraryHandler struct {
	library service.LibraryService
}

func NewLibraryHandler(library service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lib := rg.Group("/library", middleware.RequireUser())
	lib.GET("", h.List)
	lib.POST("", h.Add)
	lib.GET("/:novel_id", h.Contains)
	lib.DELETE("/:novel_id", h.Remove)
}

func (h *LibraryHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.library.List(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *LibraryHandler) Add(c *gin.Context) {
	var req dto.AddToLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.library.Add(ctx, middleware.UserID(c), req.NovelID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Added to library!"})
}

func (h *LibraryHandler) Contains(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	novelID := c.Param("novel_id")
	ok, err := h.library.Contains(ctx, middleware.UserID(c), novelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LibraryStatusResponse{NovelID: novelID, InLibrary: ok})
}

func (h *LibraryHandler) Remove(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.library.Remove(ctx, middleware.UserID(c), c.Param("novel_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from library!"})
}
