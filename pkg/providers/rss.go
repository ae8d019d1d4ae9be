package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
)

// rssFetcher implements Fetcher for RSS and Atom feed providers. A provider
// may declare backup_urls; they are tried in order when the primary feed
// fails or comes back empty.
type rssFetcher struct {
	client HTTPClient
	parser *gofeed.Parser
}

// NewRSSFetcher builds a Fetcher for RSS feed providers.
func NewRSSFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &rssFetcher{client: client, parser: gofeed.NewParser()}
}

// ID returns the provider type for the RSS fetcher.
func (f *rssFetcher) ID() string {
	return ProviderTypeRSS
}

// Fetch retrieves content items from an RSS feed provider, falling back to
// its backup URLs in declared order.
func (f *rssFetcher) Fetch(ctx context.Context, cfg Provider) ([]domain.ContentItem, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeRSS) {
		return nil, fmt.Errorf("rss fetcher received incompatible provider type %q", cfg.Type)
	}

	urls := make([]string, 0, 1+len(cfg.BackupURLs))
	if cfg.SourceURL != "" {
		urls = append(urls, cfg.SourceURL)
	}
	urls = append(urls, cfg.BackupURLs...)
	if len(urls) == 0 {
		return nil, fmt.Errorf("provider %q has no feed urls", cfg.ID)
	}

	headers := Headers(cfg)

	var errs []error
	for _, url := range urls {
		items, err := f.fetchFeed(ctx, cfg, url, headers)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
		errs = append(errs, fmt.Errorf("%s: feed contains no entries", url))
	}

	return nil, fmt.Errorf("provider %q exhausted all feed urls: %w", cfg.ID, errors.Join(errs...))
}

func (f *rssFetcher) fetchFeed(ctx context.Context, cfg Provider, url string, headers map[string]string) ([]domain.ContentItem, error) {
	resp, err := f.client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d body: %s", resp.StatusCode(), responseSnippet(body))
	}

	feed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return buildItemsFromFeed(cfg, feed), nil
}

// buildItemsFromFeed maps feed entries to content items. Entries without a
// usable timestamp are stamped with the fetch time rather than dropped; the
// recency filter has final say.
func buildItemsFromFeed(cfg Provider, feed *gofeed.Feed) []domain.ContentItem {
	if feed == nil {
		return nil
	}

	now := time.Now().UTC()
	items := make([]domain.ContentItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}

		link := strings.TrimSpace(entry.Link)
		title := strings.TrimSpace(entry.Title)
		if link == "" || title == "" {
			continue
		}

		publishedAt := now
		switch {
		case entry.PublishedParsed != nil:
			publishedAt = entry.PublishedParsed.UTC()
		case entry.UpdatedParsed != nil:
			publishedAt = entry.UpdatedParsed.UTC()
		}

		items = append(items, domain.ContentItem{
			ID:          hashURL(link),
			Title:       title,
			Description: strings.TrimSpace(entry.Description),
			Link:        link,
			PublishedAt: publishedAt,
			Source:      cfg.SourceName(),
			Platform:    domain.PlatformRSS,
			Priority:    cfg.Priority,
		})
	}
	return items
}
