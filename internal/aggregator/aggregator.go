package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/saycheese-hq/taaza-varthalu/internal/cache"
	"github.com/saycheese-hq/taaza-varthalu/internal/classify"
	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
	"github.com/saycheese-hq/taaza-varthalu/internal/filter"
	"github.com/saycheese-hq/taaza-varthalu/internal/logger"
	"github.com/saycheese-hq/taaza-varthalu/internal/trending"
	"github.com/saycheese-hq/taaza-varthalu/internal/urlcheck"
	"github.com/saycheese-hq/taaza-varthalu/pkg/providers"
	"github.com/saycheese-hq/taaza-varthalu/pkg/publishers"
)

const (
	defaultRegion      = "telugu"
	urlCheckBatchSize  = 5
	publishTimeout     = 10 * time.Second
	fallbackResultNote = "fallback"
)

// Options are the pipeline tunables the aggregator runs with.
type Options struct {
	Region           string
	PerCategoryLimit int
	MaxPerSource     int
	ProviderTimeout  time.Duration
	FetchConcurrency int
	CacheTTL         time.Duration
}

func (o Options) withDefaults() Options {
	if o.Region == "" {
		o.Region = defaultRegion
	}
	if o.PerCategoryLimit <= 0 {
		o.PerCategoryLimit = 10
	}
	if o.MaxPerSource <= 0 {
		o.MaxPerSource = 2
	}
	if o.ProviderTimeout <= 0 {
		o.ProviderTimeout = 15 * time.Second
	}
	if o.FetchConcurrency <= 0 {
		o.FetchConcurrency = 8
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 10 * time.Minute
	}
	return o
}

// Result is the aggregate trending response served to clients and cached
// between refreshes.
type Result struct {
	Timestamp  time.Time                 `json:"timestamp"`
	Region     string                    `json:"region"`
	Data       domain.CategorizedContent `json:"data"`
	Categories []string                  `json:"categories"`
	Sources    []string                  `json:"sources"`
	Note       string                    `json:"note,omitempty"`
}

// ProviderHealth is the per-provider fetch outcome surfaced on the status
// endpoint.
type ProviderHealth struct {
	ID          string    `json:"id"`
	Healthy     bool      `json:"healthy"`
	Items       int       `json:"items"`
	LastError   string    `json:"last_error,omitempty"`
	LastFetched time.Time `json:"last_fetched"`
}

// Aggregator orchestrates the full pipeline: provider fan-out, temporal and
// quality filtering, link validation, classification, trending scoring and
// per-bucket diversity selection.
type Aggregator struct {
	roster     *providers.Roster
	fetchers   providers.FetcherRegistry
	temporal   *filter.Temporal
	quality    *filter.Quality
	validator  *urlcheck.Validator
	classifier *classify.Classifier
	scorer     *trending.Scorer
	store      cache.Store
	pubs       []publishers.Publisher
	log        logger.Logger
	opts       Options
	now        func() time.Time

	mu     sync.RWMutex
	health map[string]ProviderHealth
}

// New wires an Aggregator from its pipeline stages. The cache store and
// publisher list may be nil.
func New(
	roster *providers.Roster,
	fetchers providers.FetcherRegistry,
	temporal *filter.Temporal,
	quality *filter.Quality,
	validator *urlcheck.Validator,
	classifier *classify.Classifier,
	scorer *trending.Scorer,
	store cache.Store,
	pubs []publishers.Publisher,
	opts Options,
	log logger.Logger,
) *Aggregator {
	return &Aggregator{
		roster:     roster,
		fetchers:   fetchers,
		temporal:   temporal,
		quality:    quality,
		validator:  validator,
		classifier: classifier,
		scorer:     scorer,
		store:      store,
		pubs:       pubs,
		log:        logger.Ensure(log),
		opts:       opts.withDefaults(),
		now:        time.Now,
		health:     make(map[string]ProviderHealth),
	}
}

// Trending returns the aggregate trending content, serving a cached result
// when one is fresh. When every provider fails the curated fallback set is
// returned instead of an error so the endpoint never goes dark.
func (a *Aggregator) Trending(ctx context.Context) (Result, error) {
	key := a.cacheKey()

	if a.store != nil {
		raw, ok, err := a.store.Get(ctx, key)
		if err != nil {
			a.log.WarnObj("aggregate cache read failed", "cache_error", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
		if ok {
			var cached Result
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			a.log.WarnObj("aggregate cache entry corrupt", "cache_error", map[string]any{"key": key})
		}
	}

	items := a.collect(ctx)
	content := a.pipeline(ctx, items, true)

	result := Result{
		Timestamp:  a.now().UTC(),
		Region:     a.opts.Region,
		Data:       content,
		Categories: categoryNames(allCategories),
		Sources:    sourcesOf(content),
	}

	if content.Total() == 0 {
		result.Data = FallbackContent(a.now().UTC())
		result.Sources = sourcesOf(result.Data)
		result.Note = fallbackResultNote
		a.log.WarnObj("serving fallback content", "fallback", map[string]any{
			"fetched_items": len(items),
		})
		return result, nil
	}

	if a.store != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := a.store.Set(ctx, key, raw, a.opts.CacheTTL); err != nil {
				a.log.WarnObj("aggregate cache write failed", "cache_error", map[string]any{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
	}

	a.publishDigest(result)

	return result, nil
}

// Alternative runs the general aggregation pipeline: the same providers,
// filters, ranking and fallback as Trending, but without the Telugu
// relevance gate. A non-empty categories list narrows the response to the
// named buckets.
func (a *Aggregator) Alternative(ctx context.Context, region string, categories []string) (Result, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		region = a.opts.Region
	}
	wanted := normalizeCategories(categories)
	key := a.alternativeCacheKey(region, wanted)

	if a.store != nil {
		raw, ok, err := a.store.Get(ctx, key)
		if err != nil {
			a.log.WarnObj("aggregate cache read failed", "cache_error", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
		if ok {
			var cached Result
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			a.log.WarnObj("aggregate cache entry corrupt", "cache_error", map[string]any{"key": key})
		}
	}

	items := a.collect(ctx)
	content := filterCategories(a.pipeline(ctx, items, false), wanted)

	result := Result{
		Timestamp:  a.now().UTC(),
		Region:     region,
		Data:       content,
		Categories: categoryNames(wanted),
		Sources:    sourcesOf(content),
	}

	if content.Total() == 0 {
		result.Data = filterCategories(FallbackContent(a.now().UTC()), wanted)
		result.Sources = sourcesOf(result.Data)
		result.Note = fallbackResultNote
		a.log.WarnObj("serving fallback content", "fallback", map[string]any{
			"fetched_items": len(items),
		})
		return result, nil
	}

	if a.store != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := a.store.Set(ctx, key, raw, a.opts.CacheTTL); err != nil {
				a.log.WarnObj("aggregate cache write failed", "cache_error", map[string]any{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
	}

	return result, nil
}

// cacheKey identifies one aggregate variant by region, bucket set and
// recency window.
func (a *Aggregator) cacheKey() string {
	return fmt.Sprintf("trending:%s:politics-cinema-all:w%s", a.opts.Region, a.temporal.Window())
}

// alternativeCacheKey identifies one general-aggregate variant.
func (a *Aggregator) alternativeCacheKey(region string, wanted []domain.Category) string {
	names := strings.Join(categoryNames(wanted), "-")
	return fmt.Sprintf("alternative:%s:%s:w%s", region, names, a.temporal.Window())
}

// collect fans out to every enabled provider with bounded concurrency.
// Each fetch runs under its own timeout; one slow or broken provider never
// sinks the aggregation.
func (a *Aggregator) collect(ctx context.Context) []domain.ContentItem {
	cfgs := a.roster.Enabled()
	if len(cfgs) == 0 {
		return nil
	}

	sem := make(chan struct{}, a.opts.FetchConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var merged []domain.ContentItem

	for _, cfg := range cfgs {
		wg.Add(1)
		go func(cfg providers.Provider) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := a.fetchOne(ctx, cfg)
			a.recordHealth(cfg.ID, len(items), err)
			if err != nil {
				a.log.WarnObj("provider fetch failed", "provider_error", map[string]any{
					"provider_id": cfg.ID,
					"error":       err.Error(),
				})
				return
			}

			mu.Lock()
			merged = append(merged, items...)
			mu.Unlock()
		}(cfg)
	}
	wg.Wait()

	return dedupeByLink(merged)
}

// fetchOne runs a single provider fetch under the per-provider timeout.
func (a *Aggregator) fetchOne(ctx context.Context, cfg providers.Provider) ([]domain.ContentItem, error) {
	fetcher, err := a.fetchers.FetcherFor(cfg)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.opts.ProviderTimeout)
	defer cancel()

	items, err := fetcher.Fetch(fetchCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("fetch provider %q: %w", cfg.ID, err)
	}
	return items, nil
}

func (a *Aggregator) recordHealth(id string, items int, err error) {
	h := ProviderHealth{
		ID:          id,
		Healthy:     err == nil,
		Items:       items,
		LastFetched: a.now().UTC(),
	}
	if err != nil {
		h.LastError = err.Error()
	}

	a.mu.Lock()
	a.health[id] = h
	a.mu.Unlock()
}

// Health returns the latest per-provider fetch outcomes.
func (a *Aggregator) Health() []ProviderHealth {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]ProviderHealth, 0, len(a.health))
	for _, h := range a.health {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Providers returns the roster entries the aggregator runs with.
func (a *Aggregator) Providers() []providers.Provider {
	return a.roster.All()
}

// pipeline runs the filtering, validation, classification and ranking
// stages over the merged provider output. With requireMatch set, items
// without a Telugu relevance match are dropped; without it every filtered
// item is categorized and kept.
func (a *Aggregator) pipeline(ctx context.Context, items []domain.ContentItem, requireMatch bool) domain.CategorizedContent {
	fetched := len(items)

	items = a.temporal.FilterRecent(items)
	items = a.quality.FilterHighQuality(items)
	items = a.validateLinks(ctx, items)

	var content domain.CategorizedContent
	classified := 0
	for _, item := range items {
		conf := a.classifier.Classify(item.Title, item.Description)
		if requireMatch && !conf.IsMatch {
			continue
		}
		conf.Category = a.classifier.CategorizeItem(item)
		item.Confidence = conf

		bucket := content.Bucket(conf.Category)
		*bucket = append(*bucket, item)
		classified++
	}

	for _, cat := range allCategories {
		bucket := content.Bucket(cat)
		scored := a.scorer.ScoreAll(*bucket)
		*bucket = trending.SelectTop(scored, a.opts.PerCategoryLimit, a.opts.MaxPerSource)
	}

	a.log.InfoObj("aggregation pipeline complete", "pipeline", map[string]any{
		"fetched":    fetched,
		"classified": classified,
		"politics":   len(content.Politics),
		"cinema":     len(content.Cinema),
		"all":        len(content.All),
	})
	return content
}

// validateLinks drops items whose links fail validation. Items without a
// link are kept; the quality filter already judged their text.
func (a *Aggregator) validateLinks(ctx context.Context, items []domain.ContentItem) []domain.ContentItem {
	if a.validator == nil || len(items) == 0 {
		return items
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		if item.Link != "" {
			urls = append(urls, item.Link)
		}
	}

	verdicts := make(map[string]bool, len(urls))
	for _, res := range a.validator.ValidateBatch(ctx, urls, urlCheckBatchSize) {
		verdicts[res.URL] = res.IsValid
	}

	out := items[:0]
	for _, item := range items {
		if item.Link != "" && !verdicts[item.Link] {
			continue
		}
		item.LinkValid = item.Link != ""
		out = append(out, item)
	}
	return out
}

// publishDigest announces a freshly built aggregate to the configured
// sinks. Delivery runs detached from the request so a slow sink never
// delays the response.
func (a *Aggregator) publishDigest(result Result) {
	if len(a.pubs) == 0 {
		return
	}

	evt := publishers.NewDigestEvent(result.Region, result.Data)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		publishers.PublishAll(ctx, a.pubs, evt, a.log)
	}()
}

// dedupeByLink removes cross-provider duplicates, keeping first occurrence.
// Items with neither a link nor an ID carry no identity to dedupe on and
// are all kept.
func dedupeByLink(items []domain.ContentItem) []domain.ContentItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.ContentItem, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Link))
		if key == "" {
			key = item.ID
		}
		if key == "" {
			out = append(out, item)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// allCategories is the full bucket set in serving order.
var allCategories = []domain.Category{domain.CategoryPolitics, domain.CategoryCinema, domain.CategoryAll}

// normalizeCategories maps requested category names onto the known bucket
// set, preserving serving order. Unknown names are ignored; an empty or
// all-unknown request means every bucket.
func normalizeCategories(names []string) []domain.Category {
	want := make(map[domain.Category]bool, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case string(domain.CategoryPolitics), "news":
			want[domain.CategoryPolitics] = true
		case string(domain.CategoryCinema):
			want[domain.CategoryCinema] = true
		case string(domain.CategoryAll):
			want[domain.CategoryAll] = true
		}
	}
	if len(want) == 0 {
		return allCategories
	}

	out := make([]domain.Category, 0, len(want))
	for _, cat := range allCategories {
		if want[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// categoryNames renders the bucket set for the response payload.
func categoryNames(cats []domain.Category) []string {
	out := make([]string, len(cats))
	for i, cat := range cats {
		out[i] = string(cat)
	}
	return out
}

// filterCategories empties the buckets not present in wanted.
func filterCategories(content domain.CategorizedContent, wanted []domain.Category) domain.CategorizedContent {
	keep := make(map[domain.Category]bool, len(wanted))
	for _, cat := range wanted {
		keep[cat] = true
	}

	if !keep[domain.CategoryPolitics] {
		content.Politics = nil
	}
	if !keep[domain.CategoryCinema] {
		content.Cinema = nil
	}
	if !keep[domain.CategoryAll] {
		content.All = nil
	}
	return content
}

// sourcesOf lists the distinct sources present across all buckets.
func sourcesOf(content domain.CategorizedContent) []string {
	seen := make(map[string]struct{})
	for _, bucket := range [][]domain.ContentItem{content.Politics, content.Cinema, content.All} {
		for _, item := range bucket {
			if item.Source != "" {
				seen[item.Source] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for src := range seen {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}
