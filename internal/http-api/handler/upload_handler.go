package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/http-api/middleware"
	"novelhub/internal/service"
)

type UploadHandler struct {
	storage service.StorageService
}

func NewUploadHandler(storage service.StorageService) *UploadHandler {
	return &UploadHandler{storage: storage}
}

func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	up := rg.Group("/uploads", middleware.RequireUser())
	up.POST("/cover", h.Cover)
	up.POST("/avatar", h.Avatar)
}

// Cover takes a multipart "file" and returns its public URL.
func (h *UploadHandler) Cover(c *gin.Context) {
	h.upload(c, h.storage.UploadNovelCover)
}

func (h *UploadHandler) Avatar(c *gin.Context) {
	h.upload(c, h.storage.UploadProfilePicture)
}

func (h *UploadHandler) upload(c *gin.Context, store func(context.Context, *service.Upload) (string, error)) {
	file, f, err := formUpload(c, "file")
	if err != nil {
		badRequest(c, err)
		return
	}
	if file == nil {
		badRequest(c, errors.New("a multipart \"file\" field is required"))
		return
	}
	defer f.Close()

	ctx, cancel := requestContext(c)
	defer cancel()

	url, err := store(ctx, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
