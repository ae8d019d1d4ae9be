package trending

import "github.com/saycheese-hq/taaza-varthalu/internal/domain"

// SelectTop walks score-sorted items and admits at most maxPerSource items
// per source until k items are selected. Greedy single pass: an item
// skipped for source balance is never promoted later.
func SelectTop(items []domain.ContentItem, k, maxPerSource int) []domain.ContentItem {
	if k <= 0 {
		k = 10
	}
	if maxPerSource <= 0 {
		maxPerSource = 2
	}

	perSource := make(map[string]int)
	out := make([]domain.ContentItem, 0, k)

	for _, item := range items {
		if len(out) >= k {
			break
		}

		source := item.Source
		if source == "" {
			source = "unknown"
		}
		if perSource[source] >= maxPerSource {
			continue
		}

		out = append(out, item)
		perSource[source]++
	}

	return out
}
