package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"novelhub/internal/backend"
	"novelhub/internal/http-api/middleware"
	"novelhub/internal/metrics"
	"novelhub/internal/service"
)

type Services struct {
	Auth     backend.AuthAPI
	Sessions Sessions
	Novels   service.NovelService
	Ranking  service.RankingService
	Chapters service.ChapterService
	Votes    service.VoteService
	Reviews  service.ReviewService
	Comments service.CommentService
	Library  service.LibraryService
	Progress service.ProgressService
	Profiles service.ProfileService
	Storage  service.StorageService
}

type RouterOptions struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	CORSOrigins   []string
	SecureCookies bool
	// BackendMode is reported by /api/health.
	BackendMode string
}

// NewRouter mounts every handler under /api. /metrics is served when
// metrics are enabled.
func NewRouter(s Services, opts RouterOptions) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(opts.Logger))
	r.Use(middleware.CORS(opts.CORSOrigins))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := r.Group("/api")
	NewHealthHandler(opts.BackendMode).RegisterRoutes(api)

	api.Use(middleware.Authenticate(s.Sessions))
	NewAuthHandler(s.Auth, s.Sessions, s.Profiles, opts.SecureCookies).RegisterRoutes(api)
	NewNovelHandler(s.Novels, s.Ranking, s.Votes, s.Library).RegisterRoutes(api)
	NewChapterHandler(s.Chapters, s.Novels).RegisterRoutes(api)
	NewVoteHandler(s.Votes).RegisterRoutes(api)
	NewReviewHandler(s.Reviews).RegisterRoutes(api)
	NewCommentHandler(s.Comments).RegisterRoutes(api)
	NewLibraryHandler(s.Library).RegisterRoutes(api)
	NewProgressHandler(s.Progress).RegisterRoutes(api)
	NewProfileHandler(s.Profiles).RegisterRoutes(api)
	NewUploadHandler(s.Storage).RegisterRoutes(api)
	return r
}
