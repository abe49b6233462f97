package chat

import (
	"regexp"
	"strings"
)

// Intent represents the classified analytic shape of a question.
type Intent string

const (
	IntentDatasetOverride Intent = "dataset_override"
	IntentCityComparison  Intent = "city_comparison"
	IntentGenderTotal     Intent = "gender_total"
	IntentHighest         Intent = "highest"
	IntentLowest          Intent = "lowest"
	IntentTrend           Intent = "trend"
	IntentGenderRatio     Intent = "gender_ratio"
	IntentPopulation      Intent = "population"
	IntentCityProfile     Intent = "city_profile"
	IntentUnknown         Intent = "unknown"
)

// classifiable lists the intents the classifier can produce for the
// arrests table, in priority order.
var classifiable = []Intent{
	IntentCityComparison,
	IntentGenderTotal,
	IntentHighest,
	IntentLowest,
	IntentTrend,
	IntentGenderRatio,
	IntentPopulation,
	IntentCityProfile,
}

// ParseIntent maps an intent name to a classifiable intent.
func ParseIntent(s string) (Intent, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, in := range classifiable {
		if string(in) == s {
			return in, true
		}
	}
	return IntentUnknown, false
}

// needsSingleYear reports whether an intent answers for one year, so a
// remembered year may stand in for a missing one.
func (i Intent) needsSingleYear() bool {
	switch i {
	case IntentCityComparison, IntentHighest, IntentLowest, IntentGenderRatio,
		IntentPopulation, IntentCityProfile:
		return true
	default:
		return false
	}
}

// keywordSet matches any of its keywords as whole words or phrases.
type keywordSet struct {
	re *regexp.Regexp
}

func newKeywordSet(keywords ...string) keywordSet {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	return keywordSet{re: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)}
}

func (k keywordSet) match(message string) bool {
	return k.re.MatchString(message)
}

// Classifier maps a message and its slots to one Intent using keyword rules
// checked in a fixed priority order.
type Classifier struct {
	comparisonPatterns keywordSet
	highestPatterns    keywordSet
	lowestPatterns     keywordSet
	trendPatterns      keywordSet
	ratioPatterns      keywordSet
	populationPatterns keywordSet
}

// NewClassifier creates a new intent classifier.
func NewClassifier() *Classifier {
	return &Classifier{
		comparisonPatterns: newKeywordSet("compare", "comparison", "vs", "versus"),
		highestPatterns:    newKeywordSet("highest", "maximum", "most", "top"),
		lowestPatterns:     newKeywordSet("lowest", "minimum", "least"),
		trendPatterns: newKeywordSet(
			"trend", "trends", "growth", "increase", "increased", "increasing",
			"over time", "rise", "rising", "decline", "declined", "declining",
		),
		ratioPatterns:      newKeywordSet("ratio"),
		populationPatterns: newKeywordSet("population", "residents", "people"),
	}
}

// Classify returns the first matching intent. Comparison and superlative
// words win over the generic city profile, and a gender word without a city
// wins over everything after comparison. The slot hint is used only when no
// rule fires.
func (c *Classifier) Classify(message string, slots Slots) Intent {
	switch {
	case c.comparisonPatterns.match(message) || len(slots.Cities) >= 2:
		return IntentCityComparison
	case slots.Gender != "" && len(slots.Cities) == 0:
		return IntentGenderTotal
	case c.highestPatterns.match(message):
		return IntentHighest
	case c.lowestPatterns.match(message):
		return IntentLowest
	case c.trendPatterns.match(message):
		return IntentTrend
	case c.ratioPatterns.match(message):
		return IntentGenderRatio
	case c.populationPatterns.match(message):
		return IntentPopulation
	case len(slots.Cities) > 0:
		return IntentCityProfile
	}

	if slots.Hint != "" && slots.Hint != IntentUnknown {
		return slots.Hint
	}
	return IntentUnknown
}
