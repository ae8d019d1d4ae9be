package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
)

const redditPostLimit = 25

// redditListing mirrors the slice of the listing payload we consume.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Stickied    bool    `json:"stickied"`
}

// redditFetcher implements Fetcher for subreddit providers. It reads both
// the hot and the daily top listing and dedupes by post id, so a post that
// is momentarily hot and also in the day's top set appears once.
type redditFetcher struct {
	client HTTPClient
}

// NewRedditFetcher builds a Fetcher for subreddit providers.
func NewRedditFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &redditFetcher{client: client}
}

// ID returns the provider type for the reddit fetcher.
func (f *redditFetcher) ID() string {
	return ProviderTypeReddit
}

// Fetch retrieves posts from the provider's subreddit.
func (f *redditFetcher) Fetch(ctx context.Context, cfg Provider) ([]domain.ContentItem, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeReddit) {
		return nil, fmt.Errorf("reddit fetcher received incompatible provider type %q", cfg.Type)
	}
	sub := strings.TrimPrefix(strings.TrimSpace(cfg.Subreddit), "r/")
	if sub == "" {
		return nil, fmt.Errorf("provider %q subreddit is empty", cfg.ID)
	}

	headers := Headers(cfg)
	listings := []string{
		fmt.Sprintf("https://www.reddit.com/r/%s/hot.json?limit=%d", sub, redditPostLimit),
		fmt.Sprintf("https://www.reddit.com/r/%s/top.json?t=day&limit=%d", sub, redditPostLimit),
	}

	seen := make(map[string]struct{})
	var items []domain.ContentItem
	var lastErr error

	for _, url := range listings {
		posts, err := f.fetchListing(ctx, url, headers)
		if err != nil {
			// One listing failing should not sink the other.
			lastErr = err
			continue
		}
		for _, post := range posts {
			if post.Stickied || post.ID == "" {
				continue
			}
			if _, dup := seen[post.ID]; dup {
				continue
			}
			seen[post.ID] = struct{}{}
			items = append(items, buildRedditItem(cfg, sub, post))
		}
	}

	if len(items) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("fetch r/%s: %w", sub, lastErr)
		}
		return nil, fmt.Errorf("r/%s returned no posts", sub)
	}
	return items, nil
}

func (f *redditFetcher) fetchListing(ctx context.Context, url string, headers map[string]string) ([]redditPost, error) {
	resp, err := f.client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d body: %s", resp.StatusCode(), responseSnippet(body))
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// buildRedditItem converts a raw post into a content item. The listing
// carries epoch seconds; conversion to time.Time happens here so nothing
// downstream sees raw timestamps.
func buildRedditItem(cfg Provider, sub string, post redditPost) domain.ContentItem {
	link := strings.TrimSpace(post.URL)
	if p := strings.TrimSpace(post.Permalink); p != "" {
		link = "https://www.reddit.com" + p
	}

	publishedAt := time.Now().UTC()
	if post.CreatedUTC > 0 {
		publishedAt = time.Unix(int64(post.CreatedUTC), 0).UTC()
	}

	return domain.ContentItem{
		ID:          "reddit-" + post.ID,
		Title:       strings.TrimSpace(post.Title),
		Description: strings.TrimSpace(post.SelfText),
		Link:        link,
		PublishedAt: publishedAt,
		Source:      "r/" + sub,
		Platform:    domain.PlatformReddit,
		Priority:    cfg.Priority,
		Engagement: domain.Engagement{
			Score:       post.Score,
			Comments:    post.NumComments,
			UpvoteRatio: post.UpvoteRatio,
		},
	}
}
