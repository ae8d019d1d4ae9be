package domain

import "time"

// Domain contains the content item model shared by every pipeline stage.

// Platform identifies the upstream system a content item came from.
type Platform string

const (
	PlatformReddit   Platform = "reddit"
	PlatformRSS      Platform = "rss"
	PlatformNews     Platform = "news"
	PlatformYouTube  Platform = "youtube"
	PlatformTwitter  Platform = "twitter"
	PlatformInternal Platform = "internal"
)

// Priority is the source-declared trust tier for a provider.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Category is the output bucket a classified item lands in.
type Category string

const (
	CategoryPolitics Category = "politics"
	CategoryCinema   Category = "cinema"
	CategoryAll      Category = "all"
	CategoryNews     Category = "news"
)

// ConfidenceLevel is the coarse bucket derived from strong-indicator count.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Engagement carries the platform-specific signals a provider captured.
// Zero values mean the platform did not report that signal.
type Engagement struct {
	Score       int     `json:"score,omitempty"`
	Comments    int     `json:"comments,omitempty"`
	UpvoteRatio float64 `json:"upvoteRatio,omitempty"`
	ViewCount   int64   `json:"viewCount,omitempty"`
	Volume      int64   `json:"volume,omitempty"`
}

// Confidence is the classifier verdict attached to an item.
type Confidence struct {
	IsMatch  bool            `json:"isMatch"`
	Level    ConfidenceLevel `json:"level"`
	Category Category        `json:"category"`
	Score    float64         `json:"score"`
}

// ContentItem is the universal currency passed between pipeline stages.
// Providers construct it, filters and the classifier enrich it in place,
// and it is discarded once the aggregate response is produced or cached.
type ContentItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Link        string     `json:"url,omitempty"`
	PublishedAt time.Time  `json:"publishedAt,omitempty"`
	Source      string     `json:"source"`
	Platform    Platform   `json:"platform"`
	Priority    Priority   `json:"priority"`
	Engagement  Engagement `json:"engagement,omitempty"`

	// Derived fields added by pipeline stages.
	QualityScore  float64    `json:"-"`
	LinkValid     bool       `json:"-"`
	Confidence    Confidence `json:"teluguConfidence"`
	TrendingScore float64    `json:"trending_score"`
}

// HasTimestamp reports whether the provider supplied a publication time.
func (c ContentItem) HasTimestamp() bool {
	return !c.PublishedAt.IsZero()
}

// PriorityOrDefault returns the declared priority, defaulting to medium.
func (c ContentItem) PriorityOrDefault() Priority {
	switch c.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return c.Priority
	default:
		return PriorityMedium
	}
}

// CategorizedContent is the final per-bucket aggregation result.
type CategorizedContent struct {
	Politics []ContentItem `json:"politics"`
	Cinema   []ContentItem `json:"cinema"`
	All      []ContentItem `json:"all"`
}

// Total returns the number of items across all buckets.
func (c CategorizedContent) Total() int {
	return len(c.Politics) + len(c.Cinema) + len(c.All)
}

// Bucket returns a pointer to the slice backing the given category.
// CategoryNews maps to the politics bucket, matching how news-channel
// content is surfaced on the dashboard.
func (c *CategorizedContent) Bucket(cat Category) *[]ContentItem {
	switch cat {
	case CategoryPolitics, CategoryNews:
		return &c.Politics
	case CategoryCinema:
		return &c.Cinema
	default:
		return &c.All
	}
}
