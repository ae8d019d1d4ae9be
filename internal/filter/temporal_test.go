package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
)

func newTestTemporal(t *testing.T, windowDays int, now time.Time) *Temporal {
	t.Helper()
	f := NewTemporal(windowDays, nil)
	f.now = func() time.Time { return now }
	return f
}

func TestIsValidTime(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	f := newTestTemporal(t, 7, now)

	tests := []struct {
		name string
		in   time.Time
		want bool
	}{
		{"zero time", time.Time{}, false},
		{"before 2020 floor", time.Date(2019, 12, 31, 23, 59, 59, 0, time.UTC), false},
		{"epoch mixup", time.Unix(1722249600/1000, 0), false},
		{"slightly future", now.Add(6 * time.Hour), true},
		{"beyond future slack", now.Add(25 * time.Hour), false},
		{"normal recent", now.Add(-2 * time.Hour), true},
		{"old but sane", time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.IsValidTime(tc.in))
		})
	}
}

func TestIsRecentWindow(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	f := newTestTemporal(t, 7, now)

	inside := domain.ContentItem{PublishedAt: now.Add(-6 * 24 * time.Hour)}
	outside := domain.ContentItem{PublishedAt: now.Add(-8 * 24 * time.Hour)}
	missing := domain.ContentItem{}

	assert.True(t, f.IsRecent(inside))
	assert.False(t, f.IsRecent(outside))
	assert.False(t, f.IsRecent(missing))
}

func TestFilterRecentRecordsRejections(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	f := newTestTemporal(t, 7, now)

	items := []domain.ContentItem{
		{ID: "keep", Source: "Eenadu", PublishedAt: now.Add(-time.Hour)},
		{ID: "stale", Source: "Eenadu", PublishedAt: now.Add(-30 * 24 * time.Hour)},
		{ID: "no-time", Source: "r/Ni_Bondha"},
	}

	out := f.FilterRecent(items)

	require.Len(t, out, 1)
	assert.Equal(t, "keep", out[0].ID)

	counts := f.RejectionCounts()
	assert.Equal(t, 1, counts["Eenadu"])
	assert.Equal(t, 1, counts["r/Ni_Bondha"])
}

func TestFilterRecentKeepsOrder(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	f := newTestTemporal(t, 7, now)

	items := []domain.ContentItem{
		{ID: "a", PublishedAt: now.Add(-3 * time.Hour)},
		{ID: "b", PublishedAt: now.Add(-1 * time.Hour)},
		{ID: "c", PublishedAt: now.Add(-2 * time.Hour)},
	}

	out := f.FilterRecent(items)

	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
}
