package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/http-api/dto"
	"novelhub/internal/http-api/middleware"
	"novelhub/internal/models"
	"novelhub/internal/service"
)

type ProfileHandler struct {
	profiles service.ProfileService
}

func NewProfileHandler(profiles service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", middleware.RequireUser(), h.Get)
	rg.PUT("/profile", middleware.RequireUser(), h.Update)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.profiles.Get(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update completes a fresh profile or edits an existing one.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	picture, f, err := formUpload(c, "picture")
	if err != nil {
		badRequest(c, err)
		return
	}
	if f != nil {
		defer f.Close()
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	userID := middleware.UserID(c)
	needs, err := h.profiles.NeedsCompletion(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var profile *models.UserProfile
	if needs {
		profile, err = h.profiles.CompleteProfile(ctx, userID, c.GetString(middleware.KeyEmail), req.ToInput(), picture)
	} else {
		profile, err = h.profiles.Update(ctx, userID, req.ToInput(), picture)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
