package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	started time.Time
	mode    string
}

func NewHealthHandler(mode string) *HealthHandler {
	return &HealthHandler{started: time.Now(), mode: mode}
}

func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": h.mode,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
