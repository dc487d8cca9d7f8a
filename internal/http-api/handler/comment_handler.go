package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/http-api/dto"
	"novelhub/internal/http-api/middleware"
	"novelhub/internal/service"
)

type CommentHandler struct {
	comments service.CommentService
}

func NewCommentHandler(comments service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/chapters/:id/comments", h.List)
	rg.POST("/chapters/:id/comments", middleware.RequireUser(), h.Post)
	rg.GET("/chapters/:id/comments/stream", h.Stream)
}

func (h *CommentHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.comments.ListByChapter(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *CommentHandler) Post(c *gin.Context) {
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.comments.Post(ctx, middleware.UserID(c), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Stream sends newly posted comments as server-sent events until the client
// goes away. It is not bound by the request timeout.
func (h *CommentHandler) Stream(c *gin.Context) {
	comments, err := h.comments.Watch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Stream(func(w io.Writer) bool {
		comment, ok := <-comments
		if !ok {
			return false
		}
		c.SSEvent("comment", comment)
		return true
	})
}
