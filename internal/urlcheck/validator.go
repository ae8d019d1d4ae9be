package urlcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/saycheese-hq/taaza-varthalu/internal/logger"
	"github.com/saycheese-hq/taaza-varthalu/pkg/httpclient"
)

// Domains assumed reachable without a network probe.
var trustedDomains = []string{"reddit.com", "redd.it"}

var youtubeVideoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
}

const probeTimeout = 5 * time.Second

// Validator confirms that an item's link is reachable before it may be
// surfaced. Verdicts are cached per URL; the validator itself never
// returns an error, an unreachable link simply counts as invalid.
type Validator struct {
	client httpclient.Client
	cache  Cache
	log    logger.Logger
}

// Result pairs a URL with its validation verdict.
type Result struct {
	URL     string `json:"url"`
	IsValid bool   `json:"isValid"`
}

// NewValidator builds a validator over the given HTTP client and verdict
// cache. Nil arguments get working defaults.
func NewValidator(client httpclient.Client, cache Cache, log logger.Logger) *Validator {
	if client == nil {
		client = httpclient.NewRestyClient(probeTimeout)
	}
	if cache == nil {
		cache = NewMemoryCache(30 * time.Minute)
	}
	return &Validator{
		client: client,
		cache:  cache,
		log:    logger.Ensure(log),
	}
}

// Validate reports whether the URL is reachable. Trusted domains pass
// without a probe; YouTube links go through the oEmbed endpoint; everything
// else gets a HEAD with a ranged-GET fallback. Any failure means invalid.
func (v *Validator) Validate(ctx context.Context, rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false
	}

	if verdict, ok := v.cache.Get(rawURL); ok {
		return verdict
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		v.cache.Put(rawURL, false)
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	for _, domain := range trustedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			v.cache.Put(rawURL, true)
			return true
		}
	}

	var valid bool
	if strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be") {
		valid = v.probeYouTube(ctx, rawURL)
	} else {
		valid = v.probeGeneric(ctx, rawURL)
	}

	v.cache.Put(rawURL, valid)
	return valid
}

// probeGeneric issues a HEAD request; if that fails or is unsupported it
// falls back to a GET for the first kilobyte. Status < 400 means valid.
func (v *Validator) probeGeneric(ctx context.Context, rawURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if resp, err := v.client.Head(ctx, rawURL, nil); err == nil && resp.StatusCode() < http.StatusBadRequest {
		return true
	}

	resp, err := v.client.Get(ctx, rawURL, map[string]string{"Range": "bytes=0-1023"})
	if err != nil {
		v.log.DebugObj("url probe failed", "url_probe_failure", map[string]any{
			"url":   rawURL,
			"error": err.Error(),
		})
		return false
	}
	return resp.StatusCode() < http.StatusBadRequest
}

// probeYouTube checks video availability through the oEmbed endpoint
// instead of fetching the full page. A response without a title means the
// video is gone or private.
func (v *Validator) probeYouTube(ctx context.Context, rawURL string) bool {
	videoID := extractYouTubeVideoID(rawURL)
	if videoID == "" {
		// Channel and playlist pages have no video id; probe them directly.
		return v.probeGeneric(ctx, rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	oembedURL := "https://www.youtube.com/oembed?url=https://www.youtube.com/watch?v=" + url.QueryEscape(videoID) + "&format=json"
	resp, err := v.client.Get(ctx, oembedURL, nil)
	if err != nil || resp.StatusCode() != http.StatusOK {
		return false
	}

	var meta struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(resp.Body(), &meta); err != nil {
		return false
	}
	return meta.Title != ""
}

func extractYouTubeVideoID(rawURL string) string {
	for _, re := range youtubeVideoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// ValidateBatch validates URLs in fixed-size concurrent windows. The
// result order is not guaranteed to follow the input, but there is exactly
// one result per input URL.
func (v *Validator) ValidateBatch(ctx context.Context, urls []string, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = 5
	}

	results := make([]Result, 0, len(urls))
	var mu sync.Mutex

	for start := 0; start < len(urls); start += concurrency {
		end := min(start+concurrency, len(urls))

		var wg sync.WaitGroup
		for _, u := range urls[start:end] {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				verdict := v.Validate(ctx, u)

				mu.Lock()
				results = append(results, Result{URL: u, IsValid: verdict})
				mu.Unlock()
			}(u)
		}
		wg.Wait()
	}

	return results
}

// CacheStats exposes the verdict-cache counters.
func (v *Validator) CacheStats() CacheStats { return v.cache.Stats() }
