package trending

import (
	"sort"
	"strings"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
)

// Scoring is additive with flat bonuses tied to fixed thresholds. Flat
// bumps keep scores stable and stop one viral post from dominating a
// bucket; a post with a million upvotes scores the same as one with 101 on
// that sub-term.
const (
	recencyBonus       = 0.3
	highPriorityBonus  = 0.2
	lowPriorityPenalty = 0.1

	redditUpvoteThreshold  = 100
	redditUpvoteBonus      = 0.25
	redditCommentThreshold = 20
	redditCommentBonus     = 0.2
	redditRatioThreshold   = 0.9
	redditRatioBonus       = 0.15

	// The flagship Telugu community gets its own bump.
	flagshipCommunity      = "r/ni_bondha"
	flagshipCommunityBonus = 0.25

	cinemaBonus   = 0.1
	catchAllBonus = 0.15

	viewCountThreshold = 100_000
	volumeThreshold    = 10_000
	engagementBonus    = 0.2
)

// Recency reports whether an item falls inside the recency window. The
// temporal filter satisfies this.
type Recency interface {
	IsRecent(item domain.ContentItem) bool
}

// Scorer composes classification confidence, recency, source priority and
// platform engagement signals into one trending score.
type Scorer struct {
	recency Recency
}

// NewScorer builds a scorer over the given recency check.
func NewScorer(recency Recency) *Scorer {
	return &Scorer{recency: recency}
}

// Score computes the trending score for a classified item.
func (s *Scorer) Score(item domain.ContentItem) float64 {
	score := item.Confidence.Score

	if s.recency != nil && s.recency.IsRecent(item) {
		score += recencyBonus
	}

	switch item.PriorityOrDefault() {
	case domain.PriorityHigh:
		score += highPriorityBonus
	case domain.PriorityLow:
		score -= lowPriorityPenalty
	}

	if item.Platform == domain.PlatformReddit {
		if item.Engagement.Score > redditUpvoteThreshold {
			score += redditUpvoteBonus
		}
		if item.Engagement.Comments > redditCommentThreshold {
			score += redditCommentBonus
		}
		if item.Engagement.UpvoteRatio > redditRatioThreshold {
			score += redditRatioBonus
		}
		if strings.EqualFold(item.Source, flagshipCommunity) {
			score += flagshipCommunityBonus
		}
	}

	switch item.Confidence.Category {
	case domain.CategoryCinema:
		// Entertainment has shorter shelf-life; weight it to surface.
		score += cinemaBonus
	case domain.CategoryAll:
		// Counteract the structural advantage of the topical buckets.
		score += catchAllBonus
	}

	if item.Engagement.ViewCount > viewCountThreshold || item.Engagement.Volume > volumeThreshold {
		score += engagementBonus
	}

	return score
}

// ScoreAll attaches trending scores and returns the items ordered by
// descending score, newest first on ties.
func (s *Scorer) ScoreAll(items []domain.ContentItem) []domain.ContentItem {
	out := make([]domain.ContentItem, len(items))
	copy(out, items)

	for i := range out {
		out[i].TrendingScore = s.Score(out[i])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TrendingScore != out[j].TrendingScore {
			return out[i].TrendingScore > out[j].TrendingScore
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}
