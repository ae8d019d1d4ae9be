package channels

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/saycheese-hq/taaza-varthalu/internal/logger"
)

// Directory serves the tracked channel roster with cached reads. Scrapes
// are expensive, so List answers from the store and Refresh is the only
// path that touches the network.
type Directory struct {
	store   Store
	scraper *Scraper
	log     logger.Logger
	seeds   []Channel
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	cached    []Channel
	cachedAt  time.Time
	refreshed time.Time
}

// NewDirectory builds a Directory over the given store and scraper. Seeds
// are the channels tracked from configuration; they are merged into the
// store on the first refresh.
func NewDirectory(store Store, scraper *Scraper, seeds []Channel, ttl time.Duration, log logger.Logger) *Directory {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Directory{
		store:   store,
		scraper: scraper,
		log:     logger.Ensure(log),
		seeds:   seeds,
		ttl:     ttl,
		now:     time.Now,
	}
}

// SeedFromRef builds a seed channel from a roster reference, which is
// either a canonical UC id or an @handle.
func SeedFromRef(ref, category string) (Channel, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Channel{}, false
	}

	ch := Channel{Category: strings.ToLower(strings.TrimSpace(category))}
	if strings.HasPrefix(ref, "UC") && !strings.Contains(ref, "@") {
		ch.ID = ref
	} else {
		ch.Handle = normalizeHandle(ref)
		ch.ID = ch.Handle
	}
	return ch, true
}

// List returns the tracked channels, served from the read cache when fresh.
func (d *Directory) List(ctx context.Context) ([]Channel, error) {
	d.mu.Lock()
	if d.cached != nil && d.now().Sub(d.cachedAt) < d.ttl {
		out := make([]Channel, len(d.cached))
		copy(out, d.cached)
		d.mu.Unlock()
		return out, nil
	}
	d.mu.Unlock()

	chans, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channel directory: %w", err)
	}

	d.mu.Lock()
	d.cached = chans
	d.cachedAt = d.now()
	d.mu.Unlock()

	out := make([]Channel, len(chans))
	copy(out, chans)
	return out, nil
}

// Get returns one tracked channel by id.
func (d *Directory) Get(ctx context.Context, id string) (Channel, error) {
	return d.store.Get(ctx, strings.TrimSpace(id))
}

// Refresh re-scrapes statistics for the stored channels plus any seeds not
// yet stored, persists the results, and invalidates the read cache.
func (d *Directory) Refresh(ctx context.Context) ([]Channel, error) {
	stored, err := d.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load channels for refresh: %w", err)
	}

	merged := mergeSeeds(stored, d.seeds)
	if len(merged) == 0 {
		return nil, nil
	}

	scraped := merged
	if d.scraper != nil {
		scraped = d.scraper.ScrapeAll(ctx, merged)
	}

	if err := d.store.UpsertAll(ctx, scraped); err != nil {
		return nil, fmt.Errorf("persist refreshed channels: %w", err)
	}

	d.mu.Lock()
	d.cached = nil
	d.refreshed = d.now()
	d.mu.Unlock()

	d.log.InfoObj("channel directory refreshed", "channel_refresh", map[string]any{
		"channels": len(scraped),
	})
	return scraped, nil
}

// LastRefreshed reports when Refresh last completed.
func (d *Directory) LastRefreshed() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshed
}

// mergeSeeds appends seeds whose ids are not already stored.
func mergeSeeds(stored, seeds []Channel) []Channel {
	known := make(map[string]struct{}, len(stored))
	for _, ch := range stored {
		known[ch.ID] = struct{}{}
	}

	out := make([]Channel, 0, len(stored)+len(seeds))
	out = append(out, stored...)
	for _, seed := range seeds {
		if seed.ID == "" {
			continue
		}
		if _, ok := known[seed.ID]; ok {
			continue
		}
		known[seed.ID] = struct{}{}
		out = append(out, seed)
	}
	return out
}
