package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/saycheese-hq/taaza-varthalu/internal/aggregator"
	"github.com/saycheese-hq/taaza-varthalu/internal/api"
	"github.com/saycheese-hq/taaza-varthalu/internal/cache"
	"github.com/saycheese-hq/taaza-varthalu/internal/channels"
	"github.com/saycheese-hq/taaza-varthalu/internal/classify"
	"github.com/saycheese-hq/taaza-varthalu/internal/config"
	"github.com/saycheese-hq/taaza-varthalu/internal/filter"
	"github.com/saycheese-hq/taaza-varthalu/internal/logger"
	"github.com/saycheese-hq/taaza-varthalu/internal/trending"
	"github.com/saycheese-hq/taaza-varthalu/internal/urlcheck"
	"github.com/saycheese-hq/taaza-varthalu/pkg/providers"
	"github.com/saycheese-hq/taaza-varthalu/pkg/publishers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taazad: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx := context.Background()
	client := providers.DefaultHTTPClient()

	roster, err := providers.LoadRoster(cfg.ProvidersFile)
	if err != nil {
		return fmt.Errorf("load provider roster: %w", err)
	}

	// Link verdict cache: persistent when a path is configured.
	var urlCache urlcheck.Cache
	if cfg.URLCachePath != "" {
		boltCache, err := urlcheck.OpenBoltCache(cfg.URLCachePath, cfg.URLCacheTTL)
		if err != nil {
			return fmt.Errorf("open url cache at %s: %w", cfg.URLCachePath, err)
		}
		defer boltCache.Close()
		urlCache = boltCache
	} else {
		urlCache = urlcheck.NewMemoryCache(cfg.URLCacheTTL)
	}
	validator := urlcheck.NewValidator(client, urlCache, log)

	// Aggregate cache: shared via redis when configured.
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("connect aggregate cache: %w", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.InfoObj("aggregate cache backed by redis", "startup", map[string]any{"addr": cfg.RedisAddr})
	} else {
		store = cache.NewMemory()
	}

	tax := classify.Default()
	if cfg.TaxonomyFile != "" {
		tax, err = classify.LoadFile(cfg.TaxonomyFile)
		if err != nil {
			return fmt.Errorf("load taxonomy: %w", err)
		}
	}
	classifier := classify.New(tax)

	temporal := filter.NewTemporal(cfg.RecencyWindowDays, log)
	quality := filter.NewQuality(log)
	scorer := trending.NewScorer(temporal)

	directory, err := buildChannelDirectory(ctx, cfg, roster, client, log)
	if err != nil {
		return err
	}

	fetchers := buildFetcherRegistry(client, directory)

	var pubs []publishers.Publisher
	if cfg.PublishersFile != "" {
		reg, err := publishers.LoadRegistry(cfg.PublishersFile)
		if err != nil {
			return fmt.Errorf("load publishers: %w", err)
		}
		pubs, err = publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), log)
		if err != nil {
			return fmt.Errorf("build publishers: %w", err)
		}
	}

	agg := aggregator.New(
		roster, fetchers,
		temporal, quality, validator, classifier, scorer,
		store, pubs,
		aggregator.Options{
			PerCategoryLimit: cfg.PerCategoryLimit,
			MaxPerSource:     cfg.MaxPerSource,
			ProviderTimeout:  cfg.ProviderTimeout,
			FetchConcurrency: cfg.FetchConcurrency,
			CacheTTL:         cfg.AggregateCacheTTL,
		},
		log,
	)

	var channelSvc api.ChannelService
	if directory != nil {
		channelSvc = directory

		// Seed channel statistics without delaying startup.
		go func() {
			refreshCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if _, err := directory.Refresh(refreshCtx); err != nil {
				log.WarnObj("initial channel refresh failed", "channel_refresh", map[string]any{
					"error": err.Error(),
				})
			}
		}()
	}

	server := api.NewServer(agg, channelSvc, temporal, validator, cfg.Debug, log)

	log.InfoObj("service starting", "startup", map[string]any{
		"listen_addr": cfg.ListenAddr,
		"providers":   len(roster.Enabled()),
		"publishers":  len(pubs),
	})
	return server.Run(cfg.ListenAddr)
}

// buildChannelDirectory wires the channel directory when the roster tracks
// YouTube channels. It returns nil when the subsystem is not in play.
func buildChannelDirectory(
	ctx context.Context,
	cfg *config.Config,
	roster *providers.Roster,
	client providers.HTTPClient,
	log logger.Logger,
) (*channels.Directory, error) {
	var seeds []channels.Channel
	for _, p := range roster.Enabled() {
		if !strings.EqualFold(p.Type, providers.ProviderTypeYouTube) {
			continue
		}
		for _, ref := range p.Channels {
			if seed, ok := channels.SeedFromRef(ref, p.Category); ok {
				seeds = append(seeds, seed)
			}
		}
	}
	if len(seeds) == 0 && cfg.PostgresDSN == "" {
		return nil, nil
	}

	var store channels.Store
	if cfg.PostgresDSN != "" {
		sqlStore, err := channels.NewSQLStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open channel store: %w", err)
		}
		store = sqlStore
		log.InfoObj("channel store backed by postgres", "startup", nil)
	} else {
		store = channels.NewMemoryStore()
	}

	scraper := channels.NewScraper(client, log)
	return channels.NewDirectory(store, scraper, seeds, cfg.ChannelCacheTTL, log), nil
}

// buildFetcherRegistry assembles the stock fetchers plus the YouTube
// fetcher when a channel directory exists.
func buildFetcherRegistry(client providers.HTTPClient, directory *channels.Directory) providers.FetcherRegistry {
	fetchers := []providers.Fetcher{
		providers.NewRSSFetcher(client),
		providers.NewRedditFetcher(client),
		providers.NewGoogleNewsFetcher(client),
	}
	if directory != nil {
		fetchers = append(fetchers, providers.NewYouTubeFetcher(client, directory))
	}
	return providers.NewFetcherRegistry(fetchers...)
}
