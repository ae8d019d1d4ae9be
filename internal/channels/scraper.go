package channels

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/saycheese-hq/taaza-varthalu/internal/logger"
	"github.com/saycheese-hq/taaza-varthalu/pkg/httpclient"
)

const (
	maxHTMLBodyBytes  = 1 << 20 // 1 MiB
	maxScrapeWorkers  = 5
	scrapeRequestGap  = 500 * time.Millisecond
	scrapeUserAgent   = "Mozilla/5.0 (compatible; SayCheese-TrendAggregator/1.0)"
	canonicalChanPath = "https://www.youtube.com/channel/"
)

var (
	subscriberRe = regexp.MustCompile(`([\d.,]+\s?[KMB]?)\s*subscribers`)
	videoCountRe = regexp.MustCompile(`([\d.,]+\s?[KMB]?)\s*videos`)
)

// Scraper refreshes channel statistics by scraping public channel pages.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
}

// NewScraper creates a Scraper with the given HTTP client and logger.
func NewScraper(client httpclient.Client, log logger.Logger) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	return &Scraper{client: client, log: logger.Ensure(log)}
}

// ScrapeAll refreshes statistics for the given channels with a bounded
// worker pool. Channels whose pages cannot be scraped keep their previous
// statistics so a transient failure never zeroes the directory.
func (s *Scraper) ScrapeAll(ctx context.Context, chans []Channel) []Channel {
	out := make([]Channel, len(chans))
	copy(out, chans)

	if len(chans) == 0 {
		return out
	}

	workerCount := min(len(chans), maxScrapeWorkers)

	ticker := time.NewTicker(scrapeRequestGap)
	defer ticker.Stop()

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go s.scrapeWorker(ctx, chans, ticker.C, jobCh, out, &wg, workerID)
	}

	for idx := range chans {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()

	return out
}

// scrapeWorker processes channels from the job channel, respecting the rate limiter.
func (s *Scraper) scrapeWorker(
	ctx context.Context,
	chans []Channel,
	limiter <-chan time.Time,
	jobCh <-chan int,
	out []Channel,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-limiter:
		}

		ch := chans[idx]
		if scraped, err := s.Scrape(ctx, ch); err != nil {
			s.log.WarnObj("channel scrape failed", "channel_scrape_error", map[string]any{
				"worker_id": workerID,
				"channel":   ch.Handle,
				"url":       ch.PageURL(),
				"error":     err.Error(),
			})
			out[idx] = ch
		} else {
			out[idx] = scraped
		}
	}
}

// Scrape fetches one channel page and extracts its current statistics.
func (s *Scraper) Scrape(ctx context.Context, ch Channel) (Channel, error) {
	headers := map[string]string{
		"User-Agent":      scrapeUserAgent,
		"Accept-Language": "en-US,en;q=0.9",
	}

	resp, err := s.client.Get(ctx, ch.PageURL(), headers)
	if err != nil {
		return ch, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return ch, fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	updated := ch
	meta, err := parseChannelPage(body)
	if err != nil {
		return ch, err
	}

	if meta.name != "" {
		updated.Name = meta.name
	}
	if meta.canonicalID != "" {
		updated.ID = meta.canonicalID
	}
	if meta.subscribers > 0 {
		updated.Subscribers = meta.subscribers
	}
	if meta.videos > 0 {
		updated.Videos = meta.videos
	}
	updated.ScrapedAt = time.Now().UTC()

	return updated, nil
}

// channelMeta holds values extracted from a channel page.
type channelMeta struct {
	name        string
	canonicalID string
	subscribers int64
	videos      int64
}

// parseChannelPage extracts channel metadata from the HTML body. Counts come
// from the page text since YouTube renders them as compact strings.
func parseChannelPage(body []byte) (channelMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return channelMeta{}, fmt.Errorf("parse html: %w", err)
	}

	meta := channelMeta{}

	if node := doc.Find(`meta[property="og:title"]`).First(); node.Length() > 0 {
		if val, ok := node.Attr("content"); ok {
			meta.name = strings.TrimSpace(val)
		}
	}
	if node := doc.Find(`link[rel="canonical"]`).First(); node.Length() > 0 {
		if href, ok := node.Attr("href"); ok {
			if rest, found := strings.CutPrefix(strings.TrimSpace(href), canonicalChanPath); found {
				meta.canonicalID = strings.SplitN(rest, "/", 2)[0]
			}
		}
	}

	text := string(body)
	if m := subscriberRe.FindStringSubmatch(text); len(m) == 2 {
		meta.subscribers = parseCompactCount(m[1])
	}
	if m := videoCountRe.FindStringSubmatch(text); len(m) == 2 {
		meta.videos = parseCompactCount(m[1])
	}

	return meta, nil
}

// parseCompactCount converts strings like "1.2M" or "3,456" to an integer.
func parseCompactCount(raw string) int64 {
	raw = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	if raw == "" {
		return 0
	}

	multiplier := float64(1)
	switch {
	case strings.HasSuffix(raw, "K"):
		multiplier = 1_000
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "K"))
	case strings.HasSuffix(raw, "M"):
		multiplier = 1_000_000
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "M"))
	case strings.HasSuffix(raw, "B"):
		multiplier = 1_000_000_000
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "B"))
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return int64(value * multiplier)
}
