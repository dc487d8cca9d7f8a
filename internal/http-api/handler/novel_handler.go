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

type NovelHandler struct {
	novels  service.NovelService
	ranking service.RankingService
	votes   service.VoteService
	library service.LibraryService
}

func NewNovelHandler(novels service.NovelService, ranking service.RankingService, votes service.VoteService, library service.LibraryService) *NovelHandler {
	return &NovelHandler{novels: novels, ranking: ranking, votes: votes, library: library}
}

func (h *NovelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/novels", h.List)
	rg.GET("/novels/new", h.NewArrivals)
	rg.GET("/novels/explore", h.Explore)
	rg.GET("/novels/ranking", h.Ranking)
	rg.GET("/novels/search", h.Search)
	rg.GET("/novels/quick-search", h.QuickSearch)
	rg.GET("/novels/:id", h.Get)

	rg.POST("/novels", middleware.RequireUser(), h.Create)
	rg.PUT("/novels/:id", middleware.RequireUser(), h.Update)
	rg.DELETE("/novels/:id", middleware.RequireUser(), h.Delete)

	rg.GET("/dashboard", middleware.RequireUser(), h.Dashboard)
}

func (h *NovelHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.novels.List(ctx, q.ToParams())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *NovelHandler) NewArrivals(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.novels.NewArrivals(ctx, q.Page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *NovelHandler) Explore(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	novels, err := h.novels.Explore(ctx, c.Query("genre"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"novels": novels})
}

func (h *NovelHandler) Ranking(c *gin.Context) {
	var q dto.RankingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ranked, err := h.ranking.Ranking(ctx, q.Genre, q.SortBy, q.Range)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"novels": ranked})
}

func (h *NovelHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	novels, err := h.novels.Search(ctx, q.Query, q.Genres, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"novels": novels})
}

func (h *NovelHandler) QuickSearch(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	novels, err := h.novels.QuickSearch(ctx, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"novels": novels})
}

// Get returns the novel with its vote tally and counts the view.
func (h *NovelHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	novel, err := h.novels.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	_ = h.novels.IncrementViews(ctx, id)

	resp := dto.NovelDetailResponse{Novel: *novel}
	userID := middleware.UserID(c)
	if state, err := h.votes.State(ctx, userID, id); err == nil {
		resp.Votes = state
	}
	if userID != "" {
		resp.InLibrary, _ = h.library.Contains(ctx, userID, id)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NovelHandler) Create(c *gin.Context) {
	var req dto.NovelRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	cover, f, err := formUpload(c, "cover")
	if err != nil {
		badRequest(c, err)
		return
	}
	if f != nil {
		defer f.Close()
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	novel, err := h.novels.Create(ctx, middleware.UserID(c), req.ToInput(), cover)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, novel)
}

func (h *NovelHandler) Update(c *gin.Context) {
	var req dto.NovelRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	cover, f, err := formUpload(c, "cover")
	if err != nil {
		badRequest(c, err)
		return
	}
	if f != nil {
		defer f.Close()
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	if _, ok := ownedNovel(ctx, c, h.novels, id); !ok {
		return
	}
	novel, err := h.novels.Update(ctx, id, req.ToInput(), cover)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, novel)
}

func (h *NovelHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	if _, ok := ownedNovel(ctx, c, h.novels, id); !ok {
		return
	}
	if err := h.novels.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Novel deleted successfully!"})
}

func (h *NovelHandler) Dashboard(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	novels, err := h.novels.Dashboard(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"novels": novels})
}

// ownedNovel loads the novel and writes 403 unless the caller uploaded it.
func ownedNovel(ctx context.Context, c *gin.Context, novels service.NovelService, id string) (*models.Novel, bool) {
	novel, err := novels.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if novel.UploadBy != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only change your own novels"})
		return nil, false
	}
	return novel, true
}
