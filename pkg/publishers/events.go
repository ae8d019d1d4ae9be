package publishers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
	"github.com/saycheese-hq/taaza-varthalu/internal/logger"
)

// Logger matches the structured logger used across the service.
type Logger = logger.Logger

// ensureLogger returns a usable logger, substituting a no-op one when nil.
func ensureLogger(log Logger) Logger { return logger.Ensure(log) }

// Publisher delivers trending digest events to a downstream sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Event is the digest announced to sinks after a fresh aggregation.
type Event struct {
	ID          string         `json:"id"`
	Region      string         `json:"region"`
	GeneratedAt time.Time      `json:"generated_at"`
	Categories  map[string]int `json:"categories"`
	TopStories  []EventStory   `json:"top_stories"`
}

// EventStory is one ranked item carried in the digest.
type EventStory struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

const maxDigestStories = 5

// NewDigestEvent builds a digest event from categorized trending content.
func NewDigestEvent(region string, content domain.CategorizedContent) Event {
	evt := Event{
		ID:          uuid.NewString(),
		Region:      region,
		GeneratedAt: time.Now().UTC(),
		Categories: map[string]int{
			string(domain.CategoryPolitics): len(content.Politics),
			string(domain.CategoryCinema):   len(content.Cinema),
			string(domain.CategoryAll):      len(content.All),
		},
	}

	for _, bucket := range []struct {
		category domain.Category
		items    []domain.ContentItem
	}{
		{domain.CategoryPolitics, content.Politics},
		{domain.CategoryCinema, content.Cinema},
		{domain.CategoryAll, content.All},
	} {
		for _, item := range bucket.items {
			if len(evt.TopStories) >= maxDigestStories {
				return evt
			}
			evt.TopStories = append(evt.TopStories, EventStory{
				Title:    item.Title,
				URL:      item.Link,
				Category: string(bucket.category),
				Score:    item.TrendingScore,
			})
		}
	}
	return evt
}

// PublishAll fans the event out to every publisher. A failing sink is
// logged and skipped so one bad downstream never blocks the rest.
func PublishAll(ctx context.Context, pubs []Publisher, evt Event, log Logger) {
	log = ensureLogger(log)
	for _, pub := range pubs {
		if pub == nil {
			continue
		}
		if err := pub.Publish(ctx, evt); err != nil {
			log.WarnObj("digest publish failed", "publisher_error", map[string]any{
				"publisher_id": pub.ID(),
				"type":         pub.Type(),
				"error":        err.Error(),
			})
			continue
		}
		log.DebugObj("digest published", "publisher_delivery", map[string]any{
			"publisher_id": pub.ID(),
			"event_id":     evt.ID,
		})
	}
}
