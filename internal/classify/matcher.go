package classify

import (
	"regexp"
	"strings"
)

// matcher checks lowered text against one keyword group. Phrases match as
// substrings; short tokens (<=3 runes, e.g. "kcr", "brs", "srh") require
// word boundaries so "centrs" does not match "trs"; everything else is a
// plain substring check.
type matcher struct {
	phrases []string
	words   []string
	short   []*regexp.Regexp
}

func newMatcher(keywords []string) matcher {
	var m matcher
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		switch {
		case strings.Contains(k, " "):
			m.phrases = append(m.phrases, k)
		case len(k) <= 3:
			m.short = append(m.short, regexp.MustCompile(`\b`+regexp.QuoteMeta(k)+`\b`))
		default:
			m.words = append(m.words, k)
		}
	}
	return m
}

// match reports whether any keyword of the group occurs in text.
// text must already be lowercased.
func (m matcher) match(text string) bool {
	for _, p := range m.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	for _, w := range m.words {
		if strings.Contains(text, w) {
			return true
		}
	}
	for _, re := range m.short {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// count returns how many distinct keywords of the group occur in text.
func (m matcher) count(text string) int {
	n := 0
	for _, p := range m.phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	for _, w := range m.words {
		if strings.Contains(text, w) {
			n++
		}
	}
	for _, re := range m.short {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}
