// Package analytics implements the fixed menu of aggregate queries served by
// the dashboard API and the chat dispatcher. Every query is a pure reduction
// over the loaded tables.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/crimelens/crime-analytics/internal/dataset"
	"github.com/crimelens/crime-analytics/internal/observability"
)

// Sentinel errors.
var (
	ErrNoData         = errors.New("no data loaded")
	ErrCityNotFound   = errors.New("city not found")
	ErrCrimeNotFound  = errors.New("crime not found")
	ErrColumnNotFound = errors.New("column not found")
	ErrInvalidFilter  = errors.New("invalid filter")
)

// All selects every year or every city, depending on the parameter.
const All = "all"

// Gender selects a gender column. The zero value means both.
type Gender string

const (
	GenderAll    Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender accepts male, female, and all/total/empty for both.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", All, "total":
		return GenderAll, nil
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	default:
		return GenderAll, fmt.Errorf("%w: gender %q", ErrInvalidFilter, s)
	}
}

// Title is the capitalised label used in column names and titles.
func (g Gender) Title() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	default:
		return "Total"
	}
}

// Column returns the persons-arrested column for the gender.
func (g Gender) Column() string {
	switch g {
	case GenderMale:
		return dataset.ColTotalMale
	case GenderFemale:
		return dataset.ColTotalFemale
	default:
		return dataset.ColTotalArrested
	}
}

// ageBands maps the dashboard age filter values to column prefixes.
var ageBands = map[string]string{
	"18-30":              "18 and above and below 30 years",
	"30-45":              "30 and above and below 45 years",
	"45-60":              "45 and above and below 60 years",
	"60 years and above": "60 years and above",
}

// AgeBands lists the accepted age filter values, youngest first.
var AgeBands = []string{"18-30", "30-45", "45-60", "60 years and above"}

// filterColumn picks the column for an age/gender filter pair. Empty or
// "all" age means every age.
func filterColumn(age string, gender Gender) (string, error) {
	age = strings.TrimSpace(age)
	if age == "" || age == All {
		return gender.Column(), nil
	}

	prefix, ok := ageBands[age]
	if !ok {
		return "", fmt.Errorf("%w: age %q", ErrInvalidFilter, age)
	}
	return prefix + " - " + gender.Title(), nil
}

// Service answers aggregate queries over a dataset.Provider.
type Service struct {
	provider dataset.Provider
	logger   *observability.Logger
}

// NewService creates a new analytics service.
func NewService(provider dataset.Provider, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{provider: provider, logger: logger}
}

// Years returns the loaded years of a table family, ascending.
func (s *Service) Years(name dataset.Name) []string {
	return s.provider.Years(name)
}

// ResolveYear returns year when it is loaded and the latest loaded year
// otherwise.
func (s *Service) ResolveYear(name dataset.Name, year string) (string, error) {
	year = strings.TrimSpace(year)
	if year != "" && dataset.HasYear(s.provider, name, year) {
		return year, nil
	}

	latest := dataset.LatestYear(s.provider, name)
	if latest == "" {
		return "", fmt.Errorf("%s: %w", name, ErrNoData)
	}
	if year != "" && year != All {
		s.logger.Debug().
			Str("dataset", string(name)).
			Str("requested", year).
			Str("resolved", latest).
			Msg("Unknown year, using latest")
	}
	return latest, nil
}

type yearTable struct {
	year  string
	table *dataset.Table
}

// table resolves a single year and returns its table.
func (s *Service) table(name dataset.Name, year string) (yearTable, error) {
	y, err := s.ResolveYear(name, year)
	if err != nil {
		return yearTable{}, err
	}
	t, err := s.provider.Table(name, y)
	if err != nil {
		return yearTable{}, err
	}
	return yearTable{year: y, table: t}, nil
}

// tables returns every loaded year for "all", otherwise the resolved year.
func (s *Service) tables(name dataset.Name, year string) ([]yearTable, error) {
	if strings.TrimSpace(year) != All {
		yt, err := s.table(name, year)
		if err != nil {
			return nil, err
		}
		return []yearTable{yt}, nil
	}

	years := s.provider.Years(name)
	if len(years) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoData)
	}

	out := make([]yearTable, 0, len(years))
	for _, y := range years {
		t, err := s.provider.Table(name, y)
		if err != nil {
			return nil, err
		}
		out = append(out, yearTable{year: y, table: t})
	}
	return out, nil
}

// aggregateRows returns the rows standing for "all cities": the total row
// when the table has one, every city row otherwise.
func aggregateRows(t *dataset.Table) []int {
	if idx, ok := t.TotalRow(); ok {
		return []int{idx}
	}
	return t.CityRows()
}

// cityRows returns the rows for a city, or aggregateRows for "all".
// Unknown cities fall back to the aggregate when lenient is set.
func cityRows(t *dataset.Table, city string, lenient bool) ([]int, error) {
	city = strings.TrimSpace(city)
	if city == "" || strings.EqualFold(city, All) {
		return aggregateRows(t), nil
	}
	if rows := t.FindCity(city); len(rows) > 0 {
		return rows, nil
	}
	if lenient {
		return aggregateRows(t), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
}

// ratio divides male by female, rounded to two decimals; zero when there
// are no female arrests.
func ratio(male, female int64) float64 {
	if female == 0 {
		return 0
	}
	return round(float64(male)/float64(female), 2)
}

// percent returns part/whole*100 rounded; zero for an empty whole.
func percent(part, whole int64, places int) float64 {
	if whole == 0 {
		return 0
	}
	return round(float64(part)/float64(whole)*100, places)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
