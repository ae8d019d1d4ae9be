package trending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
)

// recentAlways satisfies Recency for tests.
type recentAlways struct{ recent bool }

func (r recentAlways) IsRecent(domain.ContentItem) bool { return r.recent }

func TestScoreStartsFromConfidence(t *testing.T) {
	s := NewScorer(recentAlways{recent: false})

	item := domain.ContentItem{
		Confidence: domain.Confidence{Score: 0.5},
	}

	assert.InDelta(t, 0.5, s.Score(item), 1e-9)
}

func TestScoreRecencyAndPriority(t *testing.T) {
	s := NewScorer(recentAlways{recent: true})

	high := domain.ContentItem{
		Confidence: domain.Confidence{Score: 0.5},
		Priority:   domain.PriorityHigh,
	}
	// 0.5 + 0.3 recency + 0.2 high priority
	assert.InDelta(t, 1.0, s.Score(high), 1e-9)

	low := domain.ContentItem{
		Confidence: domain.Confidence{Score: 0.5},
		Priority:   domain.PriorityLow,
	}
	// 0.5 + 0.3 recency - 0.1 low priority
	assert.InDelta(t, 0.7, s.Score(low), 1e-9)
}

func TestScoreRedditEngagement(t *testing.T) {
	s := NewScorer(recentAlways{recent: false})

	item := domain.ContentItem{
		Platform: domain.PlatformReddit,
		Source:   "r/Ni_Bondha",
		Confidence: domain.Confidence{
			Score: 0.4,
		},
		Engagement: domain.Engagement{
			Score:       150,
			Comments:    25,
			UpvoteRatio: 0.95,
		},
	}

	// 0.4 + 0.25 upvotes + 0.2 comments + 0.15 ratio + 0.25 flagship community
	assert.InDelta(t, 1.25, s.Score(item), 1e-9)
}

func TestScoreThresholdsAreFlat(t *testing.T) {
	s := NewScorer(recentAlways{recent: false})

	modest := domain.ContentItem{
		Platform:   domain.PlatformReddit,
		Engagement: domain.Engagement{Score: 101},
	}
	viral := domain.ContentItem{
		Platform:   domain.PlatformReddit,
		Engagement: domain.Engagement{Score: 1_000_000},
	}

	// A million upvotes earns the same flat bonus as 101.
	assert.InDelta(t, s.Score(modest), s.Score(viral), 1e-9)
}

func TestScoreCategoryBonuses(t *testing.T) {
	s := NewScorer(recentAlways{recent: false})

	cinema := domain.ContentItem{Confidence: domain.Confidence{Category: domain.CategoryCinema}}
	catchAll := domain.ContentItem{Confidence: domain.Confidence{Category: domain.CategoryAll}}
	politics := domain.ContentItem{Confidence: domain.Confidence{Category: domain.CategoryPolitics}}

	assert.InDelta(t, 0.1, s.Score(cinema), 1e-9)
	assert.InDelta(t, 0.15, s.Score(catchAll), 1e-9)
	assert.InDelta(t, 0.0, s.Score(politics), 1e-9)
}

func TestScoreViewCountAndVolume(t *testing.T) {
	s := NewScorer(recentAlways{recent: false})

	views := domain.ContentItem{Engagement: domain.Engagement{ViewCount: 150_000}}
	volume := domain.ContentItem{Engagement: domain.Engagement{Volume: 20_000}}
	both := domain.ContentItem{Engagement: domain.Engagement{ViewCount: 150_000, Volume: 20_000}}

	assert.InDelta(t, 0.2, s.Score(views), 1e-9)
	assert.InDelta(t, 0.2, s.Score(volume), 1e-9)
	// The engagement bonus applies once, not per signal.
	assert.InDelta(t, 0.2, s.Score(both), 1e-9)
}

func TestScoreAllOrdersByScoreThenRecency(t *testing.T) {
	s := NewScorer(recentAlways{recent: false})
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	items := []domain.ContentItem{
		{ID: "older-tied", Confidence: domain.Confidence{Score: 0.5}, PublishedAt: now.Add(-3 * time.Hour)},
		{ID: "top", Confidence: domain.Confidence{Score: 0.9}, PublishedAt: now.Add(-5 * time.Hour)},
		{ID: "newer-tied", Confidence: domain.Confidence{Score: 0.5}, PublishedAt: now.Add(-1 * time.Hour)},
	}

	out := s.ScoreAll(items)

	require.Len(t, out, 3)
	assert.Equal(t, "top", out[0].ID)
	assert.Equal(t, "newer-tied", out[1].ID)
	assert.Equal(t, "older-tied", out[2].ID)
	for _, item := range out {
		assert.NotZero(t, item.TrendingScore)
	}
}

func TestSelectTopDiversity(t *testing.T) {
	items := []domain.ContentItem{
		{ID: "a1", Source: "r/Ni_Bondha", TrendingScore: 0.9},
		{ID: "a2", Source: "r/Ni_Bondha", TrendingScore: 0.8},
		{ID: "a3", Source: "r/Ni_Bondha", TrendingScore: 0.7},
		{ID: "a4", Source: "r/Ni_Bondha", TrendingScore: 0.6},
		{ID: "a5", Source: "r/Ni_Bondha", TrendingScore: 0.5},
		{ID: "b1", Source: "Eenadu", TrendingScore: 0.4},
	}

	out := SelectTop(items, 10, 2)

	require.Len(t, out, 3)
	assert.Equal(t, "a1", out[0].ID)
	assert.Equal(t, "a2", out[1].ID)
	assert.Equal(t, "b1", out[2].ID)
}

func TestSelectTopRespectsLimit(t *testing.T) {
	items := make([]domain.ContentItem, 0, 30)
	for i := range 30 {
		items = append(items, domain.ContentItem{
			ID:     string(rune('a' + i)),
			Source: string(rune('A' + i)), // all distinct sources
		})
	}

	out := SelectTop(items, 10, 2)
	assert.Len(t, out, 10)
}

func TestSelectTopEmptySourceBucketsAsUnknown(t *testing.T) {
	items := []domain.ContentItem{
		{ID: "u1"},
		{ID: "u2"},
		{ID: "u3"},
	}

	out := SelectTop(items, 10, 2)

	require.Len(t, out, 2)
	assert.Equal(t, "u1", out[0].ID)
	assert.Equal(t, "u2", out[1].ID)
}
