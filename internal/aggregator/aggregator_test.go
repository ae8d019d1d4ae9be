package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saycheese-hq/taaza-varthalu/internal/cache"
	"github.com/saycheese-hq/taaza-varthalu/internal/classify"
	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
	"github.com/saycheese-hq/taaza-varthalu/internal/filter"
	"github.com/saycheese-hq/taaza-varthalu/internal/trending"
	"github.com/saycheese-hq/taaza-varthalu/internal/urlcheck"
	"github.com/saycheese-hq/taaza-varthalu/pkg/httpclient"
	"github.com/saycheese-hq/taaza-varthalu/pkg/providers"
)

// stubFetcher serves canned items per provider id and counts invocations.
type stubFetcher struct {
	typ   string
	items map[string][]domain.ContentItem
	errs  map[string]error
	calls int32
}

func (f *stubFetcher) ID() string { return f.typ }

func (f *stubFetcher) Fetch(_ context.Context, cfg providers.Provider) ([]domain.ContentItem, error) {
	atomic.AddInt32(&f.calls, 1)
	if err, ok := f.errs[cfg.ID]; ok {
		return nil, err
	}
	return f.items[cfg.ID], nil
}

func testRoster(t *testing.T, ids ...string) *providers.Roster {
	t.Helper()

	content := "providers:\n"
	for _, id := range ids {
		content += fmt.Sprintf("  - id: %s\n    type: rss\n    source_url: https://example.com/%s\n", id, id)
	}

	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	roster, err := providers.LoadRoster(path)
	require.NoError(t, err)
	return roster
}

func newTestAggregator(roster *providers.Roster, fetcher *stubFetcher, store cache.Store, opts Options) *Aggregator {
	temporal := filter.NewTemporal(7, nil)
	return New(
		roster,
		providers.NewFetcherRegistry(fetcher),
		temporal,
		filter.NewQuality(nil),
		nil,
		classify.New(classify.Default()),
		trending.NewScorer(temporal),
		store,
		nil,
		opts,
		nil,
	)
}

func politicsItem(id, source string, age time.Duration) domain.ContentItem {
	return domain.ContentItem{
		ID:          id,
		Title:       "KCR launches new metro project in Hyderabad",
		Link:        "https://example.com/" + id,
		Source:      source,
		Platform:    domain.PlatformRSS,
		Priority:    domain.PriorityMedium,
		PublishedAt: time.Now().UTC().Add(-age),
	}
}

func cinemaItem(id, source string, age time.Duration) domain.ContentItem {
	return domain.ContentItem{
		ID:          id,
		Title:       "Prabhas Kalki 2898 AD sequel announced for Telugu audiences",
		Link:        "https://example.com/" + id,
		Source:      source,
		Platform:    domain.PlatformRSS,
		Priority:    domain.PriorityMedium,
		PublishedAt: time.Now().UTC().Add(-age),
	}
}

func TestTrendingPipeline(t *testing.T) {
	roster := testRoster(t, "eenadu", "sakshi", "broken")
	fetcher := &stubFetcher{
		typ: providers.ProviderTypeRSS,
		items: map[string][]domain.ContentItem{
			"eenadu": {
				politicsItem("p1", "Eenadu", 2*time.Hour),
				{
					ID:          "noise",
					Title:       "Global markets rally on central bank statement",
					Link:        "https://example.com/noise",
					Source:      "Eenadu",
					Platform:    domain.PlatformRSS,
					PublishedAt: time.Now().UTC().Add(-time.Hour),
				},
			},
			"sakshi": {cinemaItem("c1", "Sakshi", 3 * time.Hour)},
		},
		errs: map[string]error{"broken": errors.New("connection refused")},
	}

	agg := newTestAggregator(roster, fetcher, nil, Options{})

	result, err := agg.Trending(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Note)
	assert.Equal(t, "telugu", result.Region)
	assert.Equal(t, []string{"politics", "cinema", "all"}, result.Categories)

	require.Len(t, result.Data.Politics, 1)
	assert.Equal(t, "p1", result.Data.Politics[0].ID)
	assert.True(t, result.Data.Politics[0].Confidence.IsMatch)
	assert.Greater(t, result.Data.Politics[0].TrendingScore, 0.0)

	require.Len(t, result.Data.Cinema, 1)
	assert.Equal(t, "c1", result.Data.Cinema[0].ID)

	// The off-topic item never reaches a bucket.
	assert.Empty(t, result.Data.All)

	assert.Equal(t, []string{"Eenadu", "Sakshi"}, result.Sources)

	health := agg.Health()
	require.Len(t, health, 3)
	byID := make(map[string]ProviderHealth, len(health))
	for _, h := range health {
		byID[h.ID] = h
	}
	assert.True(t, byID["eenadu"].Healthy)
	assert.False(t, byID["broken"].Healthy)
	assert.Contains(t, byID["broken"].LastError, "connection refused")
}

func TestTrendingDeduplicatesAcrossProviders(t *testing.T) {
	shared := politicsItem("p1", "Eenadu", 2*time.Hour)
	mirrored := shared
	mirrored.ID = "p1-mirror"
	mirrored.Source = "Sakshi"

	roster := testRoster(t, "eenadu", "sakshi")
	fetcher := &stubFetcher{
		typ: providers.ProviderTypeRSS,
		items: map[string][]domain.ContentItem{
			"eenadu": {shared},
			"sakshi": {mirrored},
		},
	}

	agg := newTestAggregator(roster, fetcher, nil, Options{})

	result, err := agg.Trending(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Data.Politics, 1)
}

func TestTrendingSourceDiversity(t *testing.T) {
	items := []domain.ContentItem{
		politicsItem("p1", "Eenadu", time.Hour),
		politicsItem("p2", "Eenadu", 2*time.Hour),
		politicsItem("p3", "Eenadu", 3*time.Hour),
		politicsItem("p4", "Sakshi", 4*time.Hour),
	}
	for i := range items {
		items[i].Link = fmt.Sprintf("https://example.com/story-%d", i)
	}

	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{
		typ:   providers.ProviderTypeRSS,
		items: map[string][]domain.ContentItem{"eenadu": items},
	}

	agg := newTestAggregator(roster, fetcher, nil, Options{MaxPerSource: 2})

	result, err := agg.Trending(context.Background())
	require.NoError(t, err)

	perSource := make(map[string]int)
	for _, item := range result.Data.Politics {
		perSource[item.Source]++
	}
	assert.Equal(t, 2, perSource["Eenadu"])
	assert.Equal(t, 1, perSource["Sakshi"])
}

func TestTrendingFallbackWhenEveryProviderFails(t *testing.T) {
	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{
		typ:  providers.ProviderTypeRSS,
		errs: map[string]error{"eenadu": errors.New("timeout")},
	}
	store := cache.NewMemory()

	agg := newTestAggregator(roster, fetcher, store, Options{})

	result, err := agg.Trending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fallback", result.Note)
	assert.Greater(t, result.Data.Total(), 0)
	assert.NotEmpty(t, result.Data.Politics)
	assert.NotEmpty(t, result.Data.Cinema)

	// Fallback results are never cached.
	assert.Equal(t, 0, store.Len())
}

func TestTrendingStaleContentFallsBack(t *testing.T) {
	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{
		typ: providers.ProviderTypeRSS,
		items: map[string][]domain.ContentItem{
			"eenadu": {politicsItem("old", "Eenadu", 30*24*time.Hour)},
		},
	}

	agg := newTestAggregator(roster, fetcher, nil, Options{})

	result, err := agg.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Note)
}

func TestTrendingServesCachedResult(t *testing.T) {
	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{typ: providers.ProviderTypeRSS}
	store := cache.NewMemory()

	agg := newTestAggregator(roster, fetcher, store, Options{})

	cached := Result{
		Timestamp: time.Now().UTC(),
		Region:    "telugu",
		Data: domain.CategorizedContent{
			Politics: []domain.ContentItem{{ID: "cached", Title: "Cached story"}},
		},
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), agg.cacheKey(), raw, time.Minute))

	result, err := agg.Trending(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Data.Politics, 1)
	assert.Equal(t, "cached", result.Data.Politics[0].ID)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fetcher.calls))
}

func TestTrendingWritesCache(t *testing.T) {
	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{
		typ: providers.ProviderTypeRSS,
		items: map[string][]domain.ContentItem{
			"eenadu": {politicsItem("p1", "Eenadu", time.Hour)},
		},
	}
	store := cache.NewMemory()

	agg := newTestAggregator(roster, fetcher, store, Options{})

	_, err := agg.Trending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	// The second call is answered from the cache.
	_, err = agg.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
}

// unreachableClient fails every probe, so only trusted domains validate.
type unreachableClient struct{}

func (unreachableClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, errors.New("unreachable")
}

func (unreachableClient) Head(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, errors.New("unreachable")
}

func TestTrendingDropsItemsWithDeadLinks(t *testing.T) {
	alive := politicsItem("alive", "r/Ni_Bondha", time.Hour)
	alive.Link = "https://www.reddit.com/r/Ni_Bondha/comments/alive/"
	alive.Platform = domain.PlatformReddit

	dead := politicsItem("dead", "Eenadu", 2*time.Hour)
	dead.Link = "https://example.com/dead"

	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{
		typ:   providers.ProviderTypeRSS,
		items: map[string][]domain.ContentItem{"eenadu": {alive, dead}},
	}

	temporal := filter.NewTemporal(7, nil)
	validator := urlcheck.NewValidator(unreachableClient{}, urlcheck.NewMemoryCache(time.Minute), nil)
	agg := New(
		roster,
		providers.NewFetcherRegistry(fetcher),
		temporal,
		filter.NewQuality(nil),
		validator,
		classify.New(classify.Default()),
		trending.NewScorer(temporal),
		nil,
		nil,
		Options{},
		nil,
	)

	result, err := agg.Trending(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Data.Politics, 1)
	assert.Equal(t, "alive", result.Data.Politics[0].ID)
	assert.True(t, result.Data.Politics[0].LinkValid)
}

func TestAlternativeRunsGeneralPipeline(t *testing.T) {
	noise := domain.ContentItem{
		ID:          "noise",
		Title:       "Global markets rally on central bank statement",
		Link:        "https://example.com/noise",
		Source:      "Eenadu",
		Platform:    domain.PlatformRSS,
		PublishedAt: time.Now().UTC().Add(-time.Hour),
	}

	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{
		typ: providers.ProviderTypeRSS,
		items: map[string][]domain.ContentItem{
			"eenadu": {politicsItem("p1", "Eenadu", 2*time.Hour), noise},
		},
	}

	agg := newTestAggregator(roster, fetcher, nil, Options{})

	result, err := agg.Alternative(context.Background(), "", nil)
	require.NoError(t, err)

	assert.Empty(t, result.Note)
	assert.Equal(t, "telugu", result.Region)
	assert.Equal(t, []string{"politics", "cinema", "all"}, result.Categories)

	require.Len(t, result.Data.Politics, 1)
	assert.Equal(t, "p1", result.Data.Politics[0].ID)

	// The general pipeline keeps the item the relevance gate drops.
	require.Len(t, result.Data.All, 1)
	assert.Equal(t, "noise", result.Data.All[0].ID)
	assert.Greater(t, result.Data.All[0].TrendingScore, 0.0)
}

func TestAlternativeHonorsRegionAndCategories(t *testing.T) {
	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{
		typ: providers.ProviderTypeRSS,
		items: map[string][]domain.ContentItem{
			"eenadu": {
				politicsItem("p1", "Eenadu", 2*time.Hour),
				cinemaItem("c1", "Sakshi", 3*time.Hour),
			},
		},
	}

	agg := newTestAggregator(roster, fetcher, nil, Options{})

	result, err := agg.Alternative(context.Background(), "global", []string{"cinema"})
	require.NoError(t, err)

	assert.Equal(t, "global", result.Region)
	assert.Equal(t, []string{"cinema"}, result.Categories)

	assert.Empty(t, result.Data.Politics)
	assert.Empty(t, result.Data.All)
	require.Len(t, result.Data.Cinema, 1)
	assert.Equal(t, "c1", result.Data.Cinema[0].ID)
	assert.Equal(t, []string{"Sakshi"}, result.Sources)
}

func TestAlternativeFallbackWhenEveryProviderFails(t *testing.T) {
	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{
		typ:  providers.ProviderTypeRSS,
		errs: map[string]error{"eenadu": errors.New("timeout")},
	}
	store := cache.NewMemory()

	agg := newTestAggregator(roster, fetcher, store, Options{})

	result, err := agg.Alternative(context.Background(), "", []string{"politics"})
	require.NoError(t, err)

	assert.Equal(t, "fallback", result.Note)
	assert.NotEmpty(t, result.Data.Politics)
	assert.Empty(t, result.Data.Cinema)
	assert.Empty(t, result.Data.All)

	// Fallback results are never cached.
	assert.Equal(t, 0, store.Len())
}

func TestAlternativeCachesPerVariant(t *testing.T) {
	roster := testRoster(t, "eenadu")
	fetcher := &stubFetcher{
		typ: providers.ProviderTypeRSS,
		items: map[string][]domain.ContentItem{
			"eenadu": {politicsItem("p1", "Eenadu", time.Hour)},
		},
	}
	store := cache.NewMemory()

	agg := newTestAggregator(roster, fetcher, store, Options{})

	_, err := agg.Alternative(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	// Same variant is answered from the cache.
	_, err = agg.Alternative(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))

	// A different category set is its own cache entry.
	_, err = agg.Alternative(context.Background(), "", []string{"politics"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetcher.calls))
	assert.Equal(t, 2, store.Len())
}

func TestNormalizeCategories(t *testing.T) {
	assert.Equal(t, allCategories, normalizeCategories(nil))
	assert.Equal(t, allCategories, normalizeCategories([]string{"weather", ""}))
	assert.Equal(t,
		[]domain.Category{domain.CategoryPolitics, domain.CategoryCinema},
		normalizeCategories([]string{"cinema", " Politics "}))

	// The roster alias for the politics bucket.
	assert.Equal(t, []domain.Category{domain.CategoryPolitics}, normalizeCategories([]string{"news"}))
}

func TestDedupeByLink(t *testing.T) {
	items := []domain.ContentItem{
		{ID: "a", Link: "https://example.com/one"},
		{ID: "b", Link: "HTTPS://EXAMPLE.COM/ONE"},
		{ID: "c", Link: ""},
		{ID: "c", Link: ""},
		{ID: "d", Link: "https://example.com/two"},
	}

	out := dedupeByLink(items)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
	assert.Equal(t, "d", out[2].ID)
}

func TestDedupeByLinkKeepsItemsWithoutIdentity(t *testing.T) {
	items := []domain.ContentItem{
		{Title: "First untagged story"},
		{Title: "Second untagged story"},
		{ID: "a", Link: "https://example.com/one"},
	}

	out := dedupeByLink(items)
	require.Len(t, out, 3)
	assert.Equal(t, "First untagged story", out[0].Title)
	assert.Equal(t, "Second untagged story", out[1].Title)
}

func TestFallbackContentPassesOwnPipeline(t *testing.T) {
	temporal := filter.NewTemporal(7, nil)
	quality := filter.NewQuality(nil)

	content := FallbackContent(time.Now().UTC())
	for _, bucket := range [][]domain.ContentItem{content.Politics, content.Cinema, content.All} {
		for _, item := range bucket {
			assert.True(t, temporal.IsRecent(item), item.Title)
			assert.True(t, quality.IsHighQuality(item), item.Title)
		}
	}
}
