package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/http-api/dto"
	"novelhub/internal/http-api/middleware"
	"novelhub/internal/service"
)

type ReviewHandler struct {
	reviews service.ReviewService
}

func NewReviewHandler(reviews service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/novels/:id/reviews", h.List)
	rg.POST("/novels/:id/reviews", middleware.RequireUser(), h.Submit)
}

func (h *ReviewHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	reviews, err := h.reviews.ListByNovel(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.ReviewListResponse{Reviews: reviews, Count: len(reviews)}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		resp.Average = float64(sum) / float64(len(reviews))
	}
	c.JSON(http.StatusOK, resp)
}

// Submit replaces the caller's earlier review of the novel.
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviews.Submit(ctx, middleware.UserID(c), c.Param("id"), req.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
