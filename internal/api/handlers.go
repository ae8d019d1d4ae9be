package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saycheese-hq/taaza-varthalu/internal/channels"
)

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleTrending serves the aggregate trending content. Aggregation
// degrades internally (fallback content, partial providers), so an error
// here means something unrecoverable happened.
func (s *Server) handleTrending(c *gin.Context) {
	result, err := s.trending.Trending(c.Request.Context())
	if err != nil {
		s.log.ErrorObj("trending aggregation failed", "http_error", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate trending content"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleAlternative serves the general aggregate. The region and
// categories query parameters narrow the response.
func (s *Server) handleAlternative(c *gin.Context) {
	var categories []string
	if raw := c.Query("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	result, err := s.trending.Alternative(c.Request.Context(), c.Query("region"), categories)
	if err != nil {
		s.log.ErrorObj("alternative aggregation failed", "http_error", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate alternative content"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// statusResponse is the shape of the status endpoint payload.
type statusResponse struct {
	Status             string         `json:"status"`
	Timestamp          time.Time      `json:"timestamp"`
	UptimeSeconds      int64          `json:"uptime_seconds"`
	Providers          any            `json:"providers"`
	TemporalRejections map[string]int `json:"temporal_rejections,omitempty"`
	URLCache           any            `json:"url_cache,omitempty"`
	ChannelsRefreshed  *time.Time     `json:"channels_refreshed,omitempty"`
}

func (s *Server) handleStatus(c *gin.Context) {
	resp := statusResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Providers:     s.trending.Health(),
	}

	if s.rejections != nil {
		resp.TemporalRejections = s.rejections.RejectionCounts()
	}
	if s.urlStats != nil {
		resp.URLCache = s.urlStats.CacheStats()
	}
	if s.channels != nil {
		if t := s.channels.LastRefreshed(); !t.IsZero() {
			resp.ChannelsRefreshed = &t
		}
	}

	c.JSON(http.StatusOK, resp)
}

// sourceInfo is one roster entry as exposed on the sources endpoint.
// Credentials and headers stay private.
type sourceInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Category string `json:"category,omitempty"`
	Enabled  bool   `json:"enabled"`
}

func (s *Server) handleSources(c *gin.Context) {
	cfgs := s.trending.Providers()
	out := make([]sourceInfo, 0, len(cfgs))
	for _, cfg := range cfgs {
		out = append(out, sourceInfo{
			ID:       cfg.ID,
			Name:     cfg.SourceName(),
			Type:     cfg.Type,
			Priority: string(cfg.Priority),
			Category: cfg.Category,
			Enabled:  cfg.EnabledValue(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sources": out, "count": len(out)})
}

func (s *Server) handleChannelList(c *gin.Context) {
	chans, err := s.channels.List(c.Request.Context())
	if err != nil {
		s.log.ErrorObj("channel list failed", "http_error", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": chans, "count": len(chans)})
}

func (s *Server) handleChannelGet(c *gin.Context) {
	ch, err := s.channels.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, channels.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
			return
		}
		s.log.ErrorObj("channel lookup failed", "http_error", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load channel"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (s *Server) handleChannelRefresh(c *gin.Context) {
	chans, err := s.channels.Refresh(c.Request.Context())
	if err != nil {
		s.log.ErrorObj("channel refresh failed", "http_error", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh channels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": chans, "count": len(chans)})
}
