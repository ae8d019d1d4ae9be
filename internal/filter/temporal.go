package filter

import (
	"sync"
	"time"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
	"github.com/saycheese-hq/taaza-varthalu/internal/logger"
)

// Timestamps before this floor are treated as corrupted upstream data,
// typically an epoch seconds/milliseconds mixup.
var timestampFloor = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// futureSlack tolerates clock skew; anything further ahead is rejected.
const futureSlack = 24 * time.Hour

// Temporal rejects content whose publication time is missing, corrupted,
// future-dated, or outside the recency window. Providers normalize
// platform-specific epoch formats before items reach this filter, so it
// stays platform-agnostic.
type Temporal struct {
	windowDays int
	now        func() time.Time
	log        logger.Logger

	mu       sync.Mutex
	rejected map[string]int
}

// NewTemporal builds a temporal filter with the given recency window.
func NewTemporal(windowDays int, log logger.Logger) *Temporal {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Temporal{
		windowDays: windowDays,
		now:        time.Now,
		log:        logger.Ensure(log),
		rejected:   make(map[string]int),
	}
}

// IsValidTime reports whether t is a sane absolute timestamp: present,
// after the 2020 floor, and not more than a day in the future.
func (f *Temporal) IsValidTime(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	if t.Before(timestampFloor) {
		return false
	}
	if t.After(f.now().Add(futureSlack)) {
		return false
	}
	return true
}

// IsRecent reports whether the item's timestamp falls inside the recency
// window. Items without a timestamp are rejected here; the caller decides
// whether unknown-age content gets a synthetic time upstream.
func (f *Temporal) IsRecent(item domain.ContentItem) bool {
	if !f.IsValidTime(item.PublishedAt) {
		return false
	}
	age := f.now().Sub(item.PublishedAt)
	return age <= time.Duration(f.windowDays)*24*time.Hour
}

// FilterRecent returns the items inside the recency window and records a
// per-source rejection count for observability.
func (f *Temporal) FilterRecent(items []domain.ContentItem) []domain.ContentItem {
	out := make([]domain.ContentItem, 0, len(items))
	dropped := make(map[string]int)

	for _, item := range items {
		if f.IsRecent(item) {
			out = append(out, item)
			continue
		}
		dropped[item.Source]++
	}

	if len(dropped) > 0 {
		f.mu.Lock()
		for src, n := range dropped {
			f.rejected[src] += n
		}
		f.mu.Unlock()

		f.log.InfoObj("temporal filter dropped stale items", "temporal_filter", map[string]any{
			"kept":       len(out),
			"rejected":   len(items) - len(out),
			"per_source": dropped,
		})
	}

	return out
}

// Window returns the recency window as a duration.
func (f *Temporal) Window() time.Duration {
	return time.Duration(f.windowDays) * 24 * time.Hour
}

// RejectionCounts returns a copy of the cumulative per-source rejection
// counters.
func (f *Temporal) RejectionCounts() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]int, len(f.rejected))
	for src, n := range f.rejected {
		out[src] = n
	}
	return out
}
