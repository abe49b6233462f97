package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crimelens/crime-analytics/internal/dataset"
)

// ProfileColumns are the demographic columns reported by a city profile.
var ProfileColumns = []string{
	dataset.ColJuvenileBoys,
	dataset.ColJuvenileGirls,
	dataset.ColJuvenileTotal,
	"18 and above and below 30 years - Male",
	"18 and above and below 30 years - Female",
	"18 and above and below 30 years - Total",
	"30 and above and below 45 years - Male",
	"30 and above and below 45 years - Female",
	"30 and above and below 45 years - Total",
	"45 and above and below 60 years - Male",
	"45 and above and below 60 years - Female",
	"45 and above and below 60 years - Total",
	"60 years and above - Male",
	"60 years and above - Female",
	"60 years and above - Total",
	dataset.ColTotalMale,
	dataset.ColTotalFemale,
	dataset.ColTotalArrested,
}

// CityTotal is one row of the city-wise listing.
type CityTotal struct {
	City  string `json:"City"`
	Total int64  `json:"Total"`
}

// FilterResult is the outcome of an age/gender/city filter.
type FilterResult struct {
	GrandTotal    int64 `json:"grand_total"`
	FilteredTotal int64 `json:"filtered_total"`
}

// GenderRatio reports male and female arrests and their ratio.
type GenderRatio struct {
	Male   int64   `json:"male"`
	Female int64   `json:"female"`
	Ratio  float64 `json:"ratio"`
}

// Population is the census population attached to a row.
type Population struct {
	Total  int64 `json:"total_population"`
	Male   int64 `json:"male_population"`
	Female int64 `json:"female_population"`
}

// HomeKPIs are the headline numbers of the landing page.
type HomeKPIs struct {
	Population
	Year               string  `json:"year"`
	TotalArrests       int64   `json:"total_arrests"`
	CrimeConcentration float64 `json:"crime_concentration"`
}

// AllKPIs summarise arrests across every loaded year.
type AllKPIs struct {
	Totals      map[string]int64 `json:"totals"`
	TotalAll    int64            `json:"total_all"`
	HighestYear string           `json:"highest_year"`
	LowestYear  string           `json:"lowest_year"`
	Average     int64            `json:"average"`
}

// ReportsSummary backs the reports page.
type ReportsSummary struct {
	TotalArrests       int64   `json:"total_arrests"`
	Top10Concentration float64 `json:"top10_concentration"`
	JuvenilePct        float64 `json:"juvenile_pct"`
	GenderRatio        float64 `json:"gender_ratio"`
}

// Cities returns the sorted, distinct city labels for a year, or for every
// year when year is "all". The aggregate row is never listed.
func (s *Service) Cities(year string) ([]string, error) {
	tables, err := s.tables(dataset.City, year)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	cities := []string{}
	for _, yt := range tables {
		for _, r := range yt.table.CityRows() {
			label := yt.table.City(r)
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			cities = append(cities, label)
		}
	}
	sort.Strings(cities)
	return cities, nil
}

// CityTotals returns per-city arrests for a year in table order, excluding
// the aggregate row.
func (s *Service) CityTotals(year string, gender Gender) (Ranking, error) {
	yt, err := s.table(dataset.City, year)
	if err != nil {
		return nil, err
	}
	return cityColumnTotals(yt.table, gender.Column()), nil
}

func cityColumnTotals(t *dataset.Table, column string) Ranking {
	acc := newAccumulator()
	for _, r := range t.CityRows() {
		acc.add(t.City(r), t.Int(r, column))
	}
	return acc.ranking()
}

// CityComparison returns per-city totals for a year, largest first.
func (s *Service) CityComparison(year string) (Ranking, error) {
	totals, err := s.CityTotals(year, GenderAll)
	if err != nil {
		return nil, err
	}
	return totals.Descending(), nil
}

// CityWise lists per-city totals for a year in table order.
func (s *Service) CityWise(year string) ([]CityTotal, error) {
	totals, err := s.CityTotals(year, GenderAll)
	if err != nil {
		return nil, err
	}
	out := make([]CityTotal, 0, len(totals))
	for _, e := range totals {
		out = append(out, CityTotal{City: e.Label, Total: e.Value})
	}
	return out, nil
}

// YearTrend returns total arrests per loaded year. It sums city rows, so each
// value equals the sum of CityComparison for that year.
func (s *Service) YearTrend() (map[string]int64, error) {
	return s.columnTrend(dataset.ColTotalArrested)
}

func (s *Service) columnTrend(column string) (map[string]int64, error) {
	tables, err := s.tables(dataset.City, All)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(tables))
	for _, yt := range tables {
		out[yt.year] = yt.table.Sum(column, yt.table.CityRows())
	}
	return out, nil
}

// Filter totals arrests for a year ("all" allowed), city ("all" allowed),
// age band and gender.
func (s *Service) Filter(year, city, age string, gender Gender) (FilterResult, error) {
	column, err := filterColumn(age, gender)
	if err != nil {
		return FilterResult{}, err
	}

	tables, err := s.tables(dataset.City, year)
	if err != nil {
		return FilterResult{}, err
	}

	var res FilterResult
	for _, yt := range tables {
		rows := yt.table.CityRows()
		if city != "" && !strings.EqualFold(city, All) {
			rows = yt.table.FindCity(city)
		}
		if !yt.table.HasColumn(column) {
			continue
		}
		res.GrandTotal += yt.table.Sum(dataset.ColTotalArrested, rows)
		res.FilteredTotal += yt.table.Sum(column, rows)
	}
	return res, nil
}

// Profile sums the demographic columns for a city ("all" for the aggregate
// row) over a year ("all" allowed). Unknown cities fall back to the
// aggregate row.
func (s *Service) Profile(year, city string) (map[string]int64, error) {
	return s.profile(year, city, true)
}

// CityProfile is Profile for a named city that must exist in the year.
func (s *Service) CityProfile(year, city string) (map[string]int64, error) {
	return s.profile(year, city, false)
}

func (s *Service) profile(year, city string, lenient bool) (map[string]int64, error) {
	tables, err := s.tables(dataset.City, year)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(ProfileColumns))
	for _, col := range ProfileColumns {
		out[col] = 0
	}

	for _, yt := range tables {
		rows, err := cityRows(yt.table, city, lenient)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", yt.year, err)
		}
		for _, col := range ProfileColumns {
			out[col] += yt.table.Sum(col, rows)
		}
	}
	return out, nil
}

// CityYearTotal returns one city's arrests for a year.
func (s *Service) CityYearTotal(year, city string, gender Gender) (int64, error) {
	yt, err := s.table(dataset.City, year)
	if err != nil {
		return 0, err
	}
	rows, err := cityRows(yt.table, city, false)
	if err != nil {
		return 0, err
	}
	return yt.table.Sum(gender.Column(), rows), nil
}

// CityTrend returns one city's arrests for each requested year in which the
// city appears. With no years, every loaded year is used.
func (s *Service) CityTrend(city string, years []string, gender Gender) (Ranking, error) {
	if len(years) == 0 {
		years = s.provider.Years(dataset.City)
	}

	var out Ranking
	for _, y := range years {
		t, err := s.provider.Table(dataset.City, y)
		if err != nil {
			continue
		}
		rows := t.FindCity(city)
		if len(rows) == 0 {
			continue
		}
		out = append(out, Entry{Label: y, Value: t.Sum(gender.Column(), rows)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	return out, nil
}

// GenderRatio returns male/female arrests for a year ("all" allowed).
func (s *Service) GenderRatio(year string) (GenderRatio, error) {
	tables, err := s.tables(dataset.City, year)
	if err != nil {
		return GenderRatio{}, err
	}

	var res GenderRatio
	for _, yt := range tables {
		rows := yt.table.CityRows()
		res.Male += yt.table.Sum(dataset.ColTotalMale, rows)
		res.Female += yt.table.Sum(dataset.ColTotalFemale, rows)
	}
	res.Ratio = ratio(res.Male, res.Female)
	return res, nil
}

// GenderRatioTrend returns the male/female ratio per loaded year.
func (s *Service) GenderRatioTrend() (map[string]float64, error) {
	tables, err := s.tables(dataset.City, All)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(tables))
	for _, yt := range tables {
		rows := yt.table.CityRows()
		out[yt.year] = ratio(
			yt.table.Sum(dataset.ColTotalMale, rows),
			yt.table.Sum(dataset.ColTotalFemale, rows),
		)
	}
	return out, nil
}

// GenderTotal sums one gender's arrests across every city for a year.
func (s *Service) GenderTotal(year string, gender Gender) (int64, error) {
	yt, err := s.table(dataset.City, year)
	if err != nil {
		return 0, err
	}
	return yt.table.Sum(gender.Column(), yt.table.CityRows()), nil
}

// GenderTrend returns one gender's arrests per loaded year.
func (s *Service) GenderTrend(gender Gender) (map[string]int64, error) {
	return s.columnTrend(gender.Column())
}

// AgeGenderTrend returns arrests for an age band and gender per loaded year.
// Years whose table lacks the column report zero.
func (s *Service) AgeGenderTrend(age string, gender Gender) (map[string]int64, error) {
	if age == "" || age == All {
		return nil, fmt.Errorf("%w: age is required", ErrInvalidFilter)
	}
	column, err := filterColumn(age, gender)
	if err != nil {
		return nil, err
	}
	return s.columnTrend(column)
}

// AgeTrend returns arrests for an age band, both genders, per loaded year.
func (s *Service) AgeTrend(age string) (map[string]int64, error) {
	return s.AgeGenderTrend(age, GenderAll)
}

// GenderCityComparison sums one gender's arrests per city over every loaded
// year, largest first. Cities are keyed by a compacted label (lower case, no
// spaces or brackets) so spelling drift between years merges.
func (s *Service) GenderCityComparison(gender Gender) (Ranking, error) {
	tables, err := s.tables(dataset.City, All)
	if err != nil {
		return nil, err
	}

	acc := newAccumulator()
	for _, yt := range tables {
		for _, r := range yt.table.CityRows() {
			acc.add(compactCity(yt.table.City(r)), yt.table.Int(r, gender.Column()))
		}
	}
	return acc.ranking().Descending(), nil
}

func compactCity(label string) string {
	return strings.NewReplacer(" ", "", "(", "", ")", "").Replace(strings.ToLower(label))
}

// YearGenderCity returns one gender's per-city arrests for a year, largest first.
func (s *Service) YearGenderCity(year string, gender Gender) (Ranking, error) {
	totals, err := s.CityTotals(year, gender)
	if err != nil {
		return nil, err
	}
	return totals.Descending(), nil
}

// YearCityFilter returns per-city arrests for an age/gender filter, largest first.
func (s *Service) YearCityFilter(year, age string, gender Gender) (Ranking, error) {
	column, err := filterColumn(age, gender)
	if err != nil {
		return nil, err
	}
	yt, err := s.table(dataset.City, year)
	if err != nil {
		return nil, err
	}
	if !yt.table.HasColumn(column) {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	return cityColumnTotals(yt.table, column).Descending(), nil
}

// Population returns the population of a city for a year. An empty, "all"
// or unknown city reports the aggregate row.
func (s *Service) Population(year, city string) (Population, error) {
	yt, err := s.table(dataset.City, year)
	if err != nil {
		return Population{}, err
	}
	rows, err := cityRows(yt.table, city, true)
	if err != nil {
		return Population{}, err
	}
	return Population{
		Total:  yt.table.Sum(dataset.ColPopulationTotal, rows),
		Male:   yt.table.Sum(dataset.ColPopulationMale, rows),
		Female: yt.table.Sum(dataset.ColPopulationFemale, rows),
	}, nil
}

// HomeKPIs reports population and arrest concentration for the latest year.
func (s *Service) HomeKPIs() (HomeKPIs, error) {
	yt, err := s.table(dataset.City, "")
	if err != nil {
		return HomeKPIs{}, err
	}

	pop, err := s.Population(yt.year, All)
	if err != nil {
		return HomeKPIs{}, err
	}

	totals := cityColumnTotals(yt.table, dataset.ColTotalArrested)
	total := totals.Sum()

	return HomeKPIs{
		Population:         pop,
		Year:               yt.year,
		TotalArrests:       total,
		CrimeConcentration: percent(totals.Descending().Head(10).Sum(), total, 1),
	}, nil
}

// AllKPIs summarises arrest totals across every loaded year. Ties for the
// highest or lowest year go to the earlier year.
func (s *Service) AllKPIs() (AllKPIs, error) {
	totals, err := s.YearTrend()
	if err != nil {
		return AllKPIs{}, err
	}

	years := s.provider.Years(dataset.City)
	res := AllKPIs{Totals: totals}
	for _, y := range years {
		v := totals[y]
		res.TotalAll += v
		if res.HighestYear == "" || v > totals[res.HighestYear] {
			res.HighestYear = y
		}
		if res.LowestYear == "" || v < totals[res.LowestYear] {
			res.LowestYear = y
		}
	}
	res.Average = res.TotalAll / int64(len(years))
	return res, nil
}

// ReportsSummary computes the reports page figures over every loaded year.
func (s *Service) ReportsSummary() (ReportsSummary, error) {
	tables, err := s.tables(dataset.City, All)
	if err != nil {
		return ReportsSummary{}, err
	}

	acc := newAccumulator()
	var juveniles, male, female int64
	for _, yt := range tables {
		rows := yt.table.CityRows()
		for _, r := range rows {
			acc.add(yt.table.City(r), yt.table.Int(r, dataset.ColTotalArrested))
		}
		juveniles += yt.table.Sum(dataset.ColJuvenileTotal, rows)
		male += yt.table.Sum(dataset.ColTotalMale, rows)
		female += yt.table.Sum(dataset.ColTotalFemale, rows)
	}

	cities := acc.ranking()
	total := cities.Sum()

	return ReportsSummary{
		TotalArrests:       total,
		Top10Concentration: percent(cities.Descending().Head(10).Sum(), total, 2),
		JuvenilePct:        percent(juveniles, total, 2),
		GenderRatio:        ratio(male, female),
	}, nil
}
