package filter

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
	"github.com/saycheese-hq/taaza-varthalu/internal/logger"
)

const (
	minTitleLength      = 15
	maxPunctuationRatio = 0.1
	maxCapsRatio        = 0.3
)

// Source communities excluded from trending output: personal advice,
// memes, Q&A threads and similar low-signal forums.
var excludedCommunities = []string{
	"tragedeigh", "amitheasshole", "relationshipadvice", "unpopularopinion",
	"nostupidquestions", "explainlikeimfive", "confessions", "tifu",
	"petpeeves", "rant", "offmychest", "casualconversation", "advice",
	"askreddit", "showerthoughts", "mildlyinteresting", "mildlyinfuriating",
	"polls", "survey", "free", "circlejerk", "wholesomememes", "memes",
	"dankmemes", "me_irl", "teenagers", "college", "jobs", "resume",
	"personalfinance", "legaladvice", "relationships", "dating", "marriage",
	"parenting", "babies", "pregnant", "namenerds",
}

// Title phrases that signal personal or low-effort content.
var excludedPhrases = []string{
	"am i the only one", "does anyone else", "unpopular opinion",
	"change my mind", "am i wrong", "what do you think", "help me decide",
	"should i", "is it just me", "rate my", "judge my", "roast me",
	"advice needed", "what would you do", "personal story", "confession",
	"rant", "shower thought", "random thought", "eli5", "explain like",
	"stupid question", "probably dumb", "might be stupid", "baby name",
	"name suggestion", "what to name", "naming my",
}

// High-signal communities that earn a scoring bonus.
var priorityCommunities = []string{
	"worldnews", "news", "technology", "science", "business", "economics",
	"politics", "finance", "investing", "startups", "entrepreneur",
	"programming", "machinelearning", "space", "environment", "climate",
	"energy", "healthcare", "medicine", "research", "academia",
	"datascience", "cybersecurity", "privacy", "linux", "android", "apple",
	"google", "microsoft", "tesla", "electricvehicles", "renewableenergy",
	"cryptocurrency", "blockchain", "stocks", "wallstreetbets",
	"personalfinanceindia", "indiainvestments", "indianstartups",
	"developersindia", "india", "indiaspeaks", "cricket", "bollywood",
	"indianfood", "travel", "photography", "art", "music", "movies",
	"books", "gaming", "sports",
}

// Title keywords that signal professional/announcement content.
var professionalKeywords = []string{
	"announces", "launches", "releases", "reports", "study", "research",
	"breakthrough", "innovation", "technology", "develops", "discovers",
	"investment", "funding", "economy", "market", "industry", "company",
}

// Quality removes low-value items via hard rejection rules and exposes an
// additive score used for ranking survivors.
type Quality struct {
	excluded map[string]struct{}
	priority map[string]struct{}
	now      func() time.Time
	log      logger.Logger
}

// NewQuality builds the quality filter with the built-in community lists.
func NewQuality(log logger.Logger) *Quality {
	q := &Quality{
		excluded: make(map[string]struct{}, len(excludedCommunities)),
		priority: make(map[string]struct{}, len(priorityCommunities)),
		now:      time.Now,
		log:      logger.Ensure(log),
	}
	for _, name := range excludedCommunities {
		q.excluded[name] = struct{}{}
	}
	for _, name := range priorityCommunities {
		q.priority[name] = struct{}{}
	}
	return q
}

// communityName normalizes a source label ("r/memes", "Memes") for list
// lookups.
func communityName(source string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(source), "r/"))
}

// IsHighQuality applies the hard rejection rules in order, short-circuiting
// on the first match: denylisted community, denylisted title phrase, short
// title, then the clickbait punctuation/caps heuristic.
func (q *Quality) IsHighQuality(item domain.ContentItem) bool {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return false
	}

	if _, bad := q.excluded[communityName(item.Source)]; bad {
		return false
	}

	lower := strings.ToLower(title)
	for _, phrase := range excludedPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	// Length rules count characters, not bytes, so non-Latin scripts are
	// measured the same as ASCII.
	runeCount := len([]rune(title))
	if runeCount < minTitleLength {
		return false
	}

	punct := 0
	caps := 0
	for _, r := range title {
		switch {
		case r == '!' || r == '?':
			punct++
		case unicode.IsUpper(r):
			caps++
		}
	}
	length := float64(runeCount)
	if float64(punct)/length > maxPunctuationRatio || float64(caps)/length > maxCapsRatio {
		return false
	}

	return true
}

// FilterHighQuality returns the survivors of the hard rejection rules.
// Applying it twice yields the same result as applying it once.
func (q *Quality) FilterHighQuality(items []domain.ContentItem) []domain.ContentItem {
	out := make([]domain.ContentItem, 0, len(items))
	for _, item := range items {
		if q.IsHighQuality(item) {
			out = append(out, item)
		}
	}

	if len(out) < len(items) {
		q.log.InfoObj("quality filter rejected items", "quality_filter", map[string]any{
			"kept":     len(out),
			"rejected": len(items) - len(out),
		})
	}
	return out
}

// Score computes the additive quality score used for ranking. It never
// rejects; low scores just sort later.
func (q *Quality) Score(item domain.ContentItem) float64 {
	score := 0.0
	title := strings.ToLower(item.Title)

	if _, ok := q.priority[communityName(item.Source)]; ok {
		score += 5
	}

	if item.Engagement.Score > 0 {
		bonus := float64(item.Engagement.Score) / 1000
		if bonus > 3 {
			bonus = 3
		}
		score += bonus
	}

	if item.HasTimestamp() {
		age := q.now().Sub(item.PublishedAt)
		switch {
		case age < 6*time.Hour:
			score += 2
		case age < 24*time.Hour:
			score += 1
		}
	}

	if n := len([]rune(title)); n > 30 && n < 200 {
		score += 1
	}

	for _, kw := range professionalKeywords {
		if strings.Contains(title, kw) {
			score += 2
			break
		}
	}

	return score
}

// SortByQuality orders items by descending quality score. The transient
// score is not part of the returned items.
func (q *Quality) SortByQuality(items []domain.ContentItem) []domain.ContentItem {
	out := make([]domain.ContentItem, len(items))
	copy(out, items)

	for i := range out {
		out[i].QualityScore = q.Score(out[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QualityScore > out[j].QualityScore })

	// The transient score is stripped before the items move on.
	for i := range out {
		out[i].QualityScore = 0
	}
	return out
}
