package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saycheese-hq/taaza-varthalu/internal/aggregator"
	"github.com/saycheese-hq/taaza-varthalu/internal/channels"
	"github.com/saycheese-hq/taaza-varthalu/internal/logger"
	"github.com/saycheese-hq/taaza-varthalu/internal/urlcheck"
	"github.com/saycheese-hq/taaza-varthalu/pkg/providers"
)

// TrendingService is the aggregation surface the API serves.
type TrendingService interface {
	Trending(ctx context.Context) (aggregator.Result, error)
	Alternative(ctx context.Context, region string, categories []string) (aggregator.Result, error)
	Health() []aggregator.ProviderHealth
	Providers() []providers.Provider
}

// ChannelService is the channel directory surface the API serves.
type ChannelService interface {
	List(ctx context.Context) ([]channels.Channel, error)
	Get(ctx context.Context, id string) (channels.Channel, error)
	Refresh(ctx context.Context) ([]channels.Channel, error)
	LastRefreshed() time.Time
}

// RejectionCounter reports cumulative per-source temporal rejections.
type RejectionCounter interface {
	RejectionCounts() map[string]int
}

// URLCacheStats reports link verdict cache statistics.
type URLCacheStats interface {
	CacheStats() urlcheck.CacheStats
}

// Server exposes the aggregation service over HTTP.
type Server struct {
	trending   TrendingService
	channels   ChannelService
	rejections RejectionCounter
	urlStats   URLCacheStats
	log        logger.Logger
	startedAt  time.Time
	engine     *gin.Engine
}

// NewServer builds the HTTP server. The channel service, rejection counter
// and URL cache stats are optional; their endpoints and status sections
// degrade gracefully when absent.
func NewServer(
	trending TrendingService,
	channelSvc ChannelService,
	rejections RejectionCounter,
	urlStats URLCacheStats,
	debug bool,
	log logger.Logger,
) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		trending:   trending,
		channels:   channelSvc,
		rejections: rejections,
		urlStats:   urlStats,
		log:        logger.Ensure(log),
		startedAt:  time.Now(),
		engine:     gin.New(),
	}

	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealthz)

	api := s.engine.Group("/api")
	{
		api.GET("/trending/telugu", s.handleTrending)
		api.GET("/trending/alternative", s.handleAlternative)
		api.GET("/status", s.handleStatus)
		api.GET("/sources", s.handleSources)

		if s.channels != nil {
			api.GET("/channels", s.handleChannelList)
			api.GET("/channels/:id", s.handleChannelGet)
			api.POST("/channels/refresh", s.handleChannelRefresh)
		}
	}
}

// Handler returns the underlying HTTP handler, used by tests and by the
// server runner.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves HTTP on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.InfoObj("http server listening", "http_start", map[string]any{"addr": addr})
	return s.engine.Run(addr)
}
