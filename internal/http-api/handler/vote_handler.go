package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/http-api/dto"
	"novelhub/internal/http-api/middleware"
	"novelhub/internal/service"
)

type VoteHandler struct {
	votes service.VoteService
}

func NewVoteHandler(votes service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

func (h *VoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/novels/:id/votes", h.Get)
	rg.POST("/novels/:id/votes", middleware.RequireUser(), h.Vote)
}

func (h *VoteHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	state, err := h.votes.State(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Vote casts the vote, or withdraws it when repeated.
func (h *VoteHandler) Vote(c *gin.Context) {
	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	state, err := h.votes.Toggle(ctx, middleware.UserID(c), c.Param("id"), req.VoteType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
