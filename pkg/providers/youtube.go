package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/saycheese-hq/taaza-varthalu/internal/channels"
	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
)

const youtubeVideosPerChannel = 5

// ChannelDirectory lists the tracked YouTube channels and their statistics.
type ChannelDirectory interface {
	List(ctx context.Context) ([]channels.Channel, error)
}

// youtubeFetcher implements Fetcher over the channel directory. It reads
// each tracked channel's uploads feed and carries the channel's subscriber
// count as a volume signal on every video.
type youtubeFetcher struct {
	client    HTTPClient
	directory ChannelDirectory
	parser    *gofeed.Parser
}

// NewYouTubeFetcher builds a Fetcher for the tracked YouTube channels.
func NewYouTubeFetcher(client HTTPClient, directory ChannelDirectory) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &youtubeFetcher{client: client, directory: directory, parser: gofeed.NewParser()}
}

// ID returns the provider type for the YouTube fetcher.
func (f *youtubeFetcher) ID() string {
	return ProviderTypeYouTube
}

// Fetch retrieves recent uploads across the tracked channels.
func (f *youtubeFetcher) Fetch(ctx context.Context, cfg Provider) ([]domain.ContentItem, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeYouTube) {
		return nil, fmt.Errorf("youtube fetcher received incompatible provider type %q", cfg.Type)
	}
	if f.directory == nil {
		return nil, fmt.Errorf("provider %q has no channel directory", cfg.ID)
	}

	chans, err := f.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	headers := Headers(cfg)

	var items []domain.ContentItem
	var lastErr error
	for _, ch := range chans {
		feedURL := ch.FeedURL()
		if feedURL == "" {
			// Handle-only seeds get a canonical id on the next scrape.
			continue
		}

		videos, err := f.fetchUploads(ctx, cfg, ch, feedURL, headers)
		if err != nil {
			lastErr = err
			continue
		}
		items = append(items, videos...)
	}

	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("provider %q fetched no uploads: %w", cfg.ID, lastErr)
	}
	return items, nil
}

func (f *youtubeFetcher) fetchUploads(ctx context.Context, cfg Provider, ch channels.Channel, feedURL string, headers map[string]string) ([]domain.ContentItem, error) {
	resp, err := f.client.Get(ctx, feedURL, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch uploads for %s: %w", ch.ID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("uploads feed for %s returned status %d body: %s", ch.ID, resp.StatusCode(), responseSnippet(body))
	}

	feed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse uploads feed for %s: %w", ch.ID, err)
	}

	source := ch.Name
	if source == "" {
		source = ch.Handle
	}

	now := time.Now().UTC()
	items := make([]domain.ContentItem, 0, youtubeVideosPerChannel)
	for _, entry := range feed.Items {
		if len(items) >= youtubeVideosPerChannel {
			break
		}
		if entry == nil {
			continue
		}

		link := strings.TrimSpace(entry.Link)
		title := strings.TrimSpace(entry.Title)
		if link == "" || title == "" {
			continue
		}

		publishedAt := now
		if entry.PublishedParsed != nil {
			publishedAt = entry.PublishedParsed.UTC()
		}

		items = append(items, domain.ContentItem{
			ID:          hashURL(link),
			Title:       title,
			Description: strings.TrimSpace(entry.Description),
			Link:        link,
			PublishedAt: publishedAt,
			Source:      source,
			Platform:    domain.PlatformYouTube,
			Priority:    cfg.Priority,
			Engagement: domain.Engagement{
				ViewCount: videoViews(entry),
				Volume:    ch.Subscribers,
			},
		})
	}
	return items, nil
}

// videoViews digs the view counter out of the media extension when the feed
// carries one.
func videoViews(entry *gofeed.Item) int64 {
	groups, ok := entry.Extensions["media"]["group"]
	if !ok {
		return 0
	}
	for _, group := range groups {
		for _, community := range group.Children["community"] {
			for _, stats := range community.Children["statistics"] {
				if raw, ok := stats.Attrs["views"]; ok {
					if views, err := strconv.ParseInt(raw, 10, 64); err == nil {
						return views
					}
				}
			}
		}
	}
	return 0
}
