package classify

import (
	"regexp"
	"strings"

	"github.com/saycheese-hq/taaza-varthalu/internal/domain"
)

// Classifier decides whether a piece of content is Telugu/Telangana/
// Tollywood-relevant, which bucket it belongs to, and how confident the
// decision is. It is a pure function of its inputs: no hidden state, the
// same text always produces the same verdict.
type Classifier struct {
	actors      matcher
	actresses   matcher
	directors   matcher
	movies      matcher
	anticipated matcher
	politicians matcher
	places      matcher
	parties     matcher
	media       matcher
	sports      matcher
	business    matcher
	culture     matcher
}

// Regex groups shared by match detection and category assignment. Category
// assignment deliberately uses broader term lists than match detection, so
// regionally relevant sports/business/culture content still lands in the
// catch-all bucket instead of being discarded.
var (
	languageRe   = regexp.MustCompile(`\btelugu\b|\btollywood\b|\btelangana\b|\bandhra pradesh\b`)
	teluguOnlyRe = regexp.MustCompile(`\btelugu\b|\btollywood\b`)
	regionRe     = regexp.MustCompile(`\btelangana\b|\bandhra pradesh\b|\bhyderabad\b`)
	cinemaRe     = regexp.MustCompile(`\bmovie\b|\bfilm\b|\bactor\b|\bactress\b|\btrailer\b|\breview\b|\bbox office\b|\btollywood\b|\bcinema\b|\bdirector\b|\bproducer\b|\brelease\b|\bteaser\b|\bfirst look\b`)
	politicsRe   = regexp.MustCompile(`\bpolitics\b|\belection\b|\bcm\b|\bminister\b|\bparty\b|\bgovernment\b|\bassembly\b|\bparliament\b|\bpolicy\b|\bcabinet\b|\bcongress\b|\bbrs\b|\btdp\b|\bysrcp\b`)
)

// New builds a classifier over the given taxonomy. Keyword matchers are
// compiled once here; Classify allocates nothing beyond the flag set.
func New(tax Taxonomy) *Classifier {
	return &Classifier{
		actors:      newMatcher(tax.Actors),
		actresses:   newMatcher(tax.Actresses),
		directors:   newMatcher(tax.Directors),
		movies:      newMatcher(tax.Movies),
		anticipated: newMatcher(tax.Anticipated),
		politicians: newMatcher(tax.Politicians),
		places:      newMatcher(tax.Places),
		parties:     newMatcher(tax.Parties),
		media:       newMatcher(append(append([]string{}, tax.MediaChannels...), tax.ProductionHouses...)),
		sports:      newMatcher(tax.Sports),
		business:    newMatcher(tax.Business),
		culture:     newMatcher(tax.Culture),
	}
}

// signals holds the per-group keyword hits for one piece of text.
type signals struct {
	actor, actress, director, movie  bool
	politician, place, party         bool
	media, sports, business, culture bool
	language                         bool
	tollywood, hyderabad             bool
}

func (c *Classifier) scan(text string) signals {
	return signals{
		actor:      c.actors.match(text),
		actress:    c.actresses.match(text),
		director:   c.directors.match(text),
		movie:      c.movies.match(text),
		politician: c.politicians.match(text),
		place:      c.places.match(text),
		party:      c.parties.match(text),
		media:      c.media.match(text),
		sports:     c.sports.match(text),
		business:   c.business.match(text),
		culture:    c.culture.match(text),
		language:   languageRe.MatchString(text),
		tollywood:  strings.Contains(text, "tollywood"),
		hyderabad:  strings.Contains(text, "hyderabad"),
	}
}

// strongIndicators counts the combination signals that gate the match
// decision. A single generic keyword is not enough evidence; each
// indicator pairs two weak signals, or is one sufficiently specific match
// on its own.
func strongIndicators(s signals) int {
	checks := []bool{
		s.actor && s.language,
		s.movie && (s.actor || s.director),
		s.politician && s.place,
		s.media && s.language,
		s.sports && s.place,
		s.business && s.place,
		s.culture && s.place,
		s.tollywood,
		s.hyderabad && (s.actor || s.politician || s.sports || s.business),
	}

	count := 0
	for _, ok := range checks {
		if ok {
			count++
		}
	}
	return count
}

// Classify runs the full verdict for a title/description pair. It never
// fails: empty text yields no match with the catch-all category.
func (c *Classifier) Classify(title, description string) domain.Confidence {
	text := strings.ToLower(strings.TrimSpace(title + " " + description))
	if text == "" {
		return domain.Confidence{IsMatch: false, Level: domain.ConfidenceLow, Category: domain.CategoryAll}
	}

	s := c.scan(text)
	strong := strongIndicators(s)

	level := domain.ConfidenceLow
	switch {
	case strong >= 2:
		level = domain.ConfidenceHigh
	case strong == 1:
		level = domain.ConfidenceMedium
	}

	return domain.Confidence{
		IsMatch:  strong >= 1,
		Level:    level,
		Category: c.categorize(text, s),
		Score:    c.confidenceScore(text, s),
	}
}

// categorize assigns the output bucket. Priority order, first match wins:
// Politics, then Cinema, then the catch-all. An item naming both a
// politician and a movie always lands in Politics.
func (c *Classifier) categorize(text string, s signals) domain.Category {
	switch {
	case s.politician || s.party || politicsRe.MatchString(text):
		return domain.CategoryPolitics
	case s.actor || s.actress || s.movie || s.director || cinemaRe.MatchString(text):
		return domain.CategoryCinema
	default:
		return domain.CategoryAll
	}
}

// CategorizeItem assigns a bucket with platform context. Reddit community
// content defaults to the catch-all bucket unless it carries clear cinema
// or politics signals, keeping memes and general discussion out of the
// topical buckets.
func (c *Classifier) CategorizeItem(item domain.ContentItem) domain.Category {
	text := strings.ToLower(strings.TrimSpace(item.Title + " " + item.Description))
	if text == "" {
		return domain.CategoryAll
	}
	s := c.scan(text)

	if item.Platform == domain.PlatformReddit {
		src := strings.ToLower(item.Source)
		if (src == "r/ni_bondha" || src == "r/tollywood") &&
			(s.actor || s.movie || s.director || cinemaRe.MatchString(text)) {
			return domain.CategoryCinema
		}
		if s.politician || s.party || politicsRe.MatchString(text) {
			return domain.CategoryPolitics
		}
		return domain.CategoryAll
	}

	return c.categorize(text, s)
}

// Confidence score weights. Additive with per-group caps, clamped to 1.0.
const (
	actorWeight      = 0.3
	actorCap         = 0.6
	movieWeight      = 0.4
	movieCap         = 0.8
	anticipatedBonus = 0.3
	placeWeight      = 0.2
	placeCap         = 0.4
	languageBonus    = 0.5
	regionBonus      = 0.3
	diverseWeight    = 0.2
	diverseCap       = 0.4
)

// confidenceScore computes the numeric 0.0–1.0 confidence carried into
// trending-score composition.
func (c *Classifier) confidenceScore(text string, s signals) float64 {
	score := 0.0

	score += capAt(float64(c.actors.count(text))*actorWeight, actorCap)
	score += capAt(float64(c.movies.count(text))*movieWeight, movieCap)

	if c.anticipated.match(text) {
		score += anticipatedBonus
	}

	score += capAt(float64(c.places.count(text))*placeWeight, placeCap)

	if teluguOnlyRe.MatchString(text) {
		score += languageBonus
	}
	if regionRe.MatchString(text) {
		score += regionBonus
	}

	diverse := c.sports.count(text) + c.business.count(text) + c.culture.count(text)
	if diverse > 0 {
		score += capAt(float64(diverse)*diverseWeight, diverseCap)
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func capAt(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}
