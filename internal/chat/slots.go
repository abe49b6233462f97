package chat

import (
	"regexp"
	"strings"

	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/dataset"
	"github.com/crimelens/crime-analytics/internal/llm"
)

// KnownCrimes are the crime heads recognised in free text, in match order.
var KnownCrimes = []string{
	"murder",
	"rape",
	"kidnapping",
	"theft",
	"robbery",
	"burglary",
	"assault",
	"dowry death",
	"cyber crime",
}

// Slots are the parameters extracted from one message.
type Slots struct {
	Years []string
	// YearsExplicit is false when Years holds only the defaulted latest year.
	YearsExplicit bool
	Cities        []string
	Gender        analytics.Gender
	Crime         string
	Hint          Intent
}

// Vocabulary is what the active table family can answer about.
type Vocabulary struct {
	Years  []string // ascending
	Cities []string // labels as they appear in the table
}

// Extractor pulls slots out of a lower-cased message. It never fails; a
// missing match leaves the slot empty.
type Extractor struct {
	yearPattern   *regexp.Regexp
	femalePattern *regexp.Regexp
	malePattern   *regexp.Regexp
	crimes        []crimePattern
}

type crimePattern struct {
	name string
	re   *regexp.Regexp
}

// NewExtractor creates a new slot extractor.
func NewExtractor() *Extractor {
	e := &Extractor{
		yearPattern:   regexp.MustCompile(`\b20\d{2}\b`),
		femalePattern: regexp.MustCompile(`\bfemales?\b`),
		malePattern:   regexp.MustCompile(`\bmales?\b`),
	}
	for _, c := range KnownCrimes {
		e.crimes = append(e.crimes, crimePattern{
			name: c,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(c) + `(?:s|es)?\b`),
		})
	}
	return e
}

// Extract fills every slot from message against vocab.
func (e *Extractor) Extract(message string, vocab Vocabulary) Slots {
	years, explicit := e.Years(message, vocab.Years)
	return Slots{
		Years:         years,
		YearsExplicit: explicit,
		Cities:        e.Cities(message, vocab.Cities),
		Gender:        e.Gender(message),
		Crime:         e.Crime(message),
	}
}

// Years returns the available years mentioned in message, in message order.
// With none, it returns the latest available year and explicit=false.
func (e *Extractor) Years(message string, available []string) (years []string, explicit bool) {
	valid := make(map[string]bool, len(available))
	for _, y := range available {
		valid[y] = true
	}

	seen := make(map[string]bool)
	for _, y := range e.yearPattern.FindAllString(message, -1) {
		if valid[y] && !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	if len(years) > 0 {
		return years, true
	}
	if len(available) == 0 {
		return nil, false
	}
	return []string{available[len(available)-1]}, false
}

// Cities returns the vocabulary cities whose cleaned name occurs in message,
// in vocabulary order and without duplicates. Matching is by substring, so a
// city name inside a longer word still matches.
func (e *Extractor) Cities(message string, vocabulary []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, label := range vocabulary {
		if dataset.IsTotalLabel(label) {
			continue
		}
		clean := dataset.CleanCity(label)
		if clean == "" || seen[clean] || !strings.Contains(message, clean) {
			continue
		}
		seen[clean] = true
		out = append(out, DisplayCity(label))
	}
	return out
}

// Gender returns the gender named in message. "female" is checked first so
// it is never read as "male".
func (e *Extractor) Gender(message string) analytics.Gender {
	switch {
	case e.femalePattern.MatchString(message):
		return analytics.GenderFemale
	case e.malePattern.MatchString(message):
		return analytics.GenderMale
	default:
		return analytics.GenderAll
	}
}

// Crime returns the first known crime head mentioned in message.
func (e *Extractor) Crime(message string) string {
	for _, c := range e.crimes {
		if c.re.MatchString(message) {
			return c.name
		}
	}
	return ""
}

// ApplyHint fills slots the keyword pass left empty from an upstream
// extraction. Every value is checked against the vocabulary first.
func (e *Extractor) ApplyHint(slots Slots, hint llm.Extraction, vocab Vocabulary) Slots {
	if !slots.YearsExplicit {
		valid := make(map[string]bool, len(vocab.Years))
		for _, y := range vocab.Years {
			valid[y] = true
		}
		var years []string
		for _, y := range hint.Years {
			if valid[y] {
				years = append(years, y)
			}
		}
		if len(years) > 0 {
			slots.Years = years
			slots.YearsExplicit = true
		}
	}

	if len(slots.Cities) == 0 && len(hint.Cities) > 0 {
		byClean := make(map[string]string, len(vocab.Cities))
		for _, label := range vocab.Cities {
			if !dataset.IsTotalLabel(label) {
				byClean[dataset.CleanCity(label)] = DisplayCity(label)
			}
		}
		seen := make(map[string]bool)
		for _, c := range hint.Cities {
			name, ok := byClean[dataset.CleanCity(c)]
			if ok && !seen[name] {
				seen[name] = true
				slots.Cities = append(slots.Cities, name)
			}
		}
	}

	if slots.Gender == analytics.GenderAll {
		if g, err := analytics.ParseGender(hint.Gender); err == nil {
			slots.Gender = g
		}
	}

	if slots.Crime == "" {
		slots.Crime = e.Crime(strings.ToLower(hint.Crime))
	}

	if in, ok := ParseIntent(hint.Intent); ok {
		slots.Hint = in
	}

	return slots
}

// DisplayCity strips a parenthetical suffix from a city label.
func DisplayCity(label string) string {
	if i := strings.Index(label, "("); i >= 0 {
		label = label[:i]
	}
	return strings.TrimSpace(label)
}

// normalizeMessage lower-cases and trims a message.
func normalizeMessage(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}
