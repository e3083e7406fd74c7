package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/domain"
	"github.com/nexahq/nexa-server/internal/service"
)

type handlers struct {
	search    service.SearchService
	summarize service.SummarizeService
	videos    service.VideoService
	page      service.PageService
	voice     service.VoiceService
	logger    *zap.Logger
}

func (h *handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) Search(c *gin.Context) {
	h.runSearch(c, h.search.Search)
}

func (h *handlers) News(c *gin.Context) {
	h.runSearch(c, h.search.News)
}

func (h *handlers) Reddit(c *gin.Context) {
	h.runSearch(c, h.search.Reddit)
}

func (h *handlers) Social(c *gin.Context) {
	h.runSearch(c, h.search.Social)
}

func (h *handlers) Videos(c *gin.Context) {
	h.runSearch(c, h.videos.Videos)
}

func (h *handlers) runSearch(c *gin.Context, fn func(context.Context, domain.SearchQuery) (*domain.SearchResponse, error)) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}

	resp, err := fn(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type summarizeRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (h *handlers) Summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	resp, err := h.summarize.Summarize(c.Request.Context(), domain.SearchQuery{
		Text:  req.Query,
		Limit: req.Limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type outlineRequest struct {
	Topic string   `json:"topic"`
	Facts []string `json:"facts"`
	Style string   `json:"style"`
}

func (h *handlers) Outline(c *gin.Context) {
	var req outlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	outline, err := h.summarize.Outline(c.Request.Context(), req.Topic, req.Facts, req.Style)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outline": outline})
}

type factCheckRequest struct {
	Claim   string        `json:"claim"`
	Query   string        `json:"query"`
	Context []domain.Item `json:"context"`
}

func (h *handlers) FactCheck(c *gin.Context) {
	var req factCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	resp, err := h.summarize.FactCheck(c.Request.Context(), domain.FactCheckQuery{
		Claim:   req.Claim,
		Query:   req.Query,
		Context: req.Context,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type respondRequest struct {
	Question string `json:"question"`
	Max      int    `json:"max"`
}

func (h *handlers) Respond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	resp, err := h.summarize.Respond(c.Request.Context(), req.Question, req.Max)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handlers) Preview(c *gin.Context) {
	link := c.Query("url")
	if link == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url parameter is required"})
		return
	}

	item, err := h.page.Preview(c.Request.Context(), link)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

type fetchRequest struct {
	URL string `json:"url"`
}

func (h *handlers) Fetch(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	page, err := h.page.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

type speakRequest struct {
	Text string `json:"text"`
}

func (h *handlers) Speak(c *gin.Context) {
	var req speakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	audio, mime, err := h.voice.Speak(c.Request.Context(), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, mime, audio)
}

func parseQuery(c *gin.Context) (domain.SearchQuery, bool) {
	text := c.Query("q")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter is required"})
		return domain.SearchQuery{}, false
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return domain.SearchQuery{}, false
		}
		limit = parsed
	}

	return domain.SearchQuery{Text: text, Limit: limit}, true
}

// respondError: ошибки валидации - 400, неготовые поверхности - 501,
// все остальное - проблема апстрима
func (h *handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrQueryTooLong),
		errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrInvalidURL),
		errors.Is(err, domain.ErrMissingLink),
		errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrNoSources):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoSpeaker), errors.Is(err, domain.ErrNoSummarizer):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream request failed"})
	}
}
