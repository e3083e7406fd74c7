package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/metrics"
	"github.com/nexahq/nexa-server/internal/ratelimit"
	"github.com/nexahq/nexa-server/internal/service"
)

type Deps struct {
	Search    service.SearchService
	Summarize service.SummarizeService
	Videos    service.VideoService
	Page      service.PageService
	Voice     service.VoiceService

	Limiter *ratelimit.Limiter
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(deps.Logger))

	h := &handlers{
		search:    deps.Search,
		summarize: deps.Summarize,
		videos:    deps.Videos,
		page:      deps.Page,
		voice:     deps.Voice,
		logger:    deps.Logger,
	}

	r.GET("/api/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	if deps.Limiter != nil {
		api.Use(RateLimit(deps.Limiter, deps.Metrics))
	}

	api.GET("/search", h.Search)
	api.POST("/search/summarize", h.Summarize)
	api.GET("/videos/search", h.Videos)
	api.GET("/news/search", h.News)
	api.GET("/reddit/search", h.Reddit)
	api.GET("/social/search", h.Social)
	api.GET("/preview", h.Preview)
	api.POST("/fetch", h.Fetch)
	api.POST("/insights/outline", h.Outline)
	api.POST("/insights/fact-check", h.FactCheck)
	api.POST("/cohost/respond", h.Respond)
	api.POST("/voice/speak", h.Speak)

	return r
}
