package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/http-api/middleware"
	"novelhub/internal/service"
)

type ProgressHandler struct {
	progress service.ProgressService
}

func NewProgressHandler(progress service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func (h *ProgressHandler) RegisterRoutes(rg *gin.RouterGroup) {
	p := rg.Group("/progress", middleware.RequireUser())
	p.GET("", h.History)
	p.DELETE("", h.Clear)
	p.GET("/stats", h.Stats)
	p.GET("/:novel_id", h.Continue)
}

func (h *ProgressHandler) History(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	entries, err := h.progress.History(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *ProgressHandler) Stats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	days, err := h.progress.WeeklyStats(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// Continue returns where the reader left off in a novel, or 204.
func (h *ProgressHandler) Continue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.progress.ContinueReading(ctx, middleware.UserID(c), c.Param("novel_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProgressHandler) Clear(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.progress.ClearHistory(ctx, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reading history cleared"})
}
