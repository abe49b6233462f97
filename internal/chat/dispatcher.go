package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crimelens/crime-analytics/internal/analytics"
	"github.com/crimelens/crime-analytics/internal/dataset"
)

// Aggregator is the query menu the dispatcher draws on.
type Aggregator interface {
	Cities(year string) ([]string, error)
	CityTotals(year string, gender analytics.Gender) (analytics.Ranking, error)
	CityYearTotal(year, city string, gender analytics.Gender) (int64, error)
	CityTrend(city string, years []string, gender analytics.Gender) (analytics.Ranking, error)
	CityProfile(year, city string) (map[string]int64, error)
	GenderTotal(year string, gender analytics.Gender) (int64, error)
	GenderTrend(gender analytics.Gender) (map[string]int64, error)
	GenderRatio(year string) (analytics.GenderRatio, error)
	YearTrend() (map[string]int64, error)
	Population(year, city string) (analytics.Population, error)
	CrimeRecord(name dataset.Name, year, crime string) (map[string]any, string, error)
	NumericTotal(name dataset.Name, year string) (int64, string, error)
}

var _ Aggregator = (*analytics.Service)(nil)

// maxCompared caps how many cities a comparison fans out to.
const maxCompared = 2

// Query is a resolved question ready for dispatch.
type Query struct {
	Dataset dataset.Name
	Intent  Intent
	Slots   Slots
}

// Dispatcher maps a Query onto exactly one aggregation.
type Dispatcher struct {
	agg    Aggregator
	source string
}

// NewDispatcher creates a dispatcher citing source on every result.
func NewDispatcher(agg Aggregator, source string) *Dispatcher {
	return &Dispatcher{agg: agg, source: source}
}

// Dispatch runs the query. Errors become error envelopes.
func (d *Dispatcher) Dispatch(q Query) Envelope {
	switch q.Dataset {
	case dataset.Government:
		return d.government(q.Slots)
	case dataset.Foreign:
		return d.foreign(q.Slots)
	}

	if q.Intent == IntentTrend {
		return d.trend(q.Slots)
	}
	if q.Intent == IntentUnknown {
		return errorEnvelope(MsgUnknown)
	}
	if len(q.Slots.Years) == 0 {
		return errorEnvelope(MsgSpecifyYear)
	}

	switch q.Intent {
	case IntentCityComparison:
		return d.comparison(q.Slots)
	case IntentGenderTotal:
		return d.genderTotal(q.Slots)
	case IntentHighest, IntentLowest:
		return d.extremum(q.Intent, q.Slots)
	case IntentGenderRatio:
		return d.genderRatio(q.Slots)
	case IntentPopulation:
		return d.population(q.Slots)
	case IntentCityProfile:
		return d.profile(q.Slots)
	default:
		return errorEnvelope(MsgUnknown)
	}
}

func (d *Dispatcher) result(intent Intent, title string, data any, summary string) Envelope {
	return Envelope{
		Type:    string(intent),
		Title:   title,
		Data:    data,
		Summary: summary,
		Source:  d.source,
	}
}

func (d *Dispatcher) failure(err error) Envelope {
	switch {
	case errors.Is(err, analytics.ErrCityNotFound):
		return errorEnvelope(MsgCityNotFound)
	case errors.Is(err, analytics.ErrCrimeNotFound):
		return errorEnvelope(MsgCrimeNotFound)
	default:
		return errorEnvelope(MsgNoData)
	}
}

// multiYear reports whether the message asked about several years.
func multiYear(s Slots) bool {
	return s.YearsExplicit && len(s.Years) > 1
}

func (d *Dispatcher) comparison(s Slots) Envelope {
	if len(s.Cities) < 2 {
		return errorEnvelope(MsgNeedTwoCities)
	}
	cities := s.Cities
	if len(cities) > maxCompared {
		cities = cities[:maxCompared]
	}

	if multiYear(s) {
		matrix := make(map[string]analytics.Ranking, len(cities))
		for _, city := range cities {
			trend, err := d.agg.CityTrend(city, s.Years, s.Gender)
			if err != nil {
				continue
			}
			matrix[city] = trend
		}
		if len(matrix) == 0 {
			return errorEnvelope(MsgCityNotFound)
		}
		title := fmt.Sprintf("%s Arrest Comparison - %s to %s",
			s.Gender.Title(), s.Years[0], s.Years[len(s.Years)-1])
		return d.result(IntentCityComparison, title, matrix, "")
	}

	year := s.Years[0]
	var results analytics.Ranking
	for _, city := range cities {
		v, err := d.agg.CityYearTotal(year, city, s.Gender)
		if err != nil {
			continue
		}
		results = append(results, analytics.Entry{Label: city, Value: v})
	}
	if len(results) == 0 {
		return errorEnvelope(MsgCityNotFound)
	}

	title := fmt.Sprintf("%s Arrest Comparison - %s", s.Gender.Title(), year)
	return d.result(IntentCityComparison, title, results, "")
}

func (d *Dispatcher) genderTotal(s Slots) Envelope {
	if s.Gender == analytics.GenderAll {
		return errorEnvelope(MsgNeedGender)
	}

	if !s.YearsExplicit {
		trend, err := d.agg.GenderTrend(s.Gender)
		if err != nil {
			return d.failure(err)
		}
		return d.result(IntentGenderTotal, fmt.Sprintf("%s Arrest Trend", s.Gender.Title()), trend, "")
	}

	year := s.Years[0]
	total, err := d.agg.GenderTotal(year, s.Gender)
	if err != nil {
		return d.failure(err)
	}
	return d.result(IntentGenderTotal,
		fmt.Sprintf("%s Arrest Total - %s", s.Gender.Title(), year),
		map[string]int64{"Total": total}, "")
}

func (d *Dispatcher) extremum(intent Intent, s Slots) Envelope {
	year := s.Years[0]
	totals, err := d.agg.CityTotals(year, s.Gender)
	if err != nil {
		return d.failure(err)
	}
	if len(totals) == 0 {
		return errorEnvelope(MsgNoData)
	}

	sorted := totals.Descending()
	word := "Highest"
	if intent == IntentLowest {
		sorted = totals.Ascending()
		word = "Lowest"
	}
	top := analytics.Entry{Label: DisplayCity(sorted[0].Label), Value: sorted[0].Value}

	gender := ""
	if s.Gender != analytics.GenderAll {
		gender = s.Gender.Title() + " "
	}
	title := fmt.Sprintf("%s %sArrest City - %s", word, gender, year)
	summary := fmt.Sprintf("%s recorded the %s %sarrests in %s with %d.",
		top.Label, strings.ToLower(word), strings.ToLower(gender), year, top.Value)

	return d.result(intent, title, analytics.Ranking{top}, summary)
}

func (d *Dispatcher) trend(s Slots) Envelope {
	if len(s.Cities) > 0 {
		city := s.Cities[0]
		var years []string
		if multiYear(s) {
			years = s.Years
		}
		trend, err := d.agg.CityTrend(city, years, s.Gender)
		if err != nil {
			return d.failure(err)
		}
		return d.result(IntentTrend, fmt.Sprintf("%s Arrest Trend - %s", s.Gender.Title(), city), trend, "")
	}

	if s.Gender != analytics.GenderAll {
		trend, err := d.agg.GenderTrend(s.Gender)
		if err != nil {
			return d.failure(err)
		}
		return d.result(IntentTrend, fmt.Sprintf("%s Arrest Trend", s.Gender.Title()), trend, "")
	}

	trend, err := d.agg.YearTrend()
	if err != nil {
		return d.failure(err)
	}
	return d.result(IntentTrend, "Arrest Trend", trend, "")
}

func (d *Dispatcher) genderRatio(s Slots) Envelope {
	year := s.Years[0]
	ratio, err := d.agg.GenderRatio(year)
	if err != nil {
		return d.failure(err)
	}
	summary := fmt.Sprintf("%.2f male arrests for every female arrest in %s.", ratio.Ratio, year)
	return d.result(IntentGenderRatio, fmt.Sprintf("Gender Ratio - %s", year), ratio, summary)
}

func (d *Dispatcher) population(s Slots) Envelope {
	year := s.Years[0]
	city := analytics.All
	title := fmt.Sprintf("Population - %s", year)
	if len(s.Cities) > 0 {
		city = s.Cities[0]
		title = fmt.Sprintf("Population - %s (%s)", city, year)
	}

	pop, err := d.agg.Population(year, city)
	if err != nil {
		return d.failure(err)
	}
	return d.result(IntentPopulation, title, pop, "")
}

func (d *Dispatcher) profile(s Slots) Envelope {
	if len(s.Cities) == 0 {
		return errorEnvelope(MsgUnknown)
	}
	city := s.Cities[0]

	if multiYear(s) {
		trend, err := d.agg.CityTrend(city, s.Years, s.Gender)
		if err != nil {
			return d.failure(err)
		}
		return d.result(IntentCityProfile,
			fmt.Sprintf("%s Arrest Trend - %s", s.Gender.Title(), city), trend, "")
	}

	year := s.Years[0]
	total, err := d.agg.CityYearTotal(year, city, s.Gender)
	if err != nil {
		return d.failure(err)
	}
	breakdown, err := d.agg.CityProfile(year, city)
	if err != nil {
		return d.failure(err)
	}

	gender := ""
	if s.Gender != analytics.GenderAll {
		gender = strings.ToLower(s.Gender.Title()) + " "
	}
	return d.result(IntentCityProfile,
		fmt.Sprintf("%s Arrests - %s (%s)", s.Gender.Title(), city, year),
		map[string]any{"Arrests": total, "Breakdown": breakdown},
		fmt.Sprintf("%s recorded %d %sarrests in %s.", city, total, gender, year))
}

func (d *Dispatcher) government(s Slots) Envelope {
	if s.Crime == "" {
		return errorEnvelope(MsgNeedCrime)
	}
	year := ""
	if len(s.Years) > 0 {
		year = s.Years[0]
	}

	rec, resolved, err := d.agg.CrimeRecord(dataset.Government, year, s.Crime)
	if err != nil {
		return d.failure(err)
	}
	return d.result("government", fmt.Sprintf("%s - %s", titleCase(s.Crime), resolved), rec, "")
}

func (d *Dispatcher) foreign(s Slots) Envelope {
	year := ""
	if len(s.Years) > 0 {
		year = s.Years[0]
	}

	if s.Crime != "" {
		rec, resolved, err := d.agg.CrimeRecord(dataset.Foreign, year, s.Crime)
		if err != nil {
			return d.failure(err)
		}
		return d.result("foreign", fmt.Sprintf("Foreign %s - %s", titleCase(s.Crime), resolved), rec, "")
	}

	total, resolved, err := d.agg.NumericTotal(dataset.Foreign, year)
	if err != nil {
		return d.failure(err)
	}
	return d.result("foreign",
		fmt.Sprintf("Foreign Crime Summary - %s", resolved),
		map[string]int64{"Total Foreign Arrests": total}, "")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
