package analytics

import (
	"strings"

	"github.com/crimelens/crime-analytics/internal/dataset"
)

// JuvenileCounts are juveniles apprehended, split by sex.
type JuvenileCounts struct {
	Boys  int64 `json:"boys"`
	Girls int64 `json:"girls"`
	Total int64 `json:"total"`
}

// Series is a chart-ready pair of parallel label and value lists.
type Series struct {
	Labels []string `json:"labels"`
	Values []int64  `json:"values"`
}

// JuvenileKPIs returns juvenile counts from the aggregate row of a year, or
// summed over every year for "all".
func (s *Service) JuvenileKPIs(year string) (JuvenileCounts, error) {
	tables, err := s.tables(dataset.City, year)
	if err != nil {
		return JuvenileCounts{}, err
	}

	var res JuvenileCounts
	for _, yt := range tables {
		rows := aggregateRows(yt.table)
		res.Boys += yt.table.Sum(dataset.ColJuvenileBoys, rows)
		res.Girls += yt.table.Sum(dataset.ColJuvenileGirls, rows)
		res.Total += yt.table.Sum(dataset.ColJuvenileTotal, rows)
	}
	return res, nil
}

// JuvenileFilter returns boys and/or girls for a city. An "all" or unknown
// city reports the aggregate row.
func (s *Service) JuvenileFilter(year, gender, city string) (Series, error) {
	yt, err := s.table(dataset.City, year)
	if err != nil {
		return Series{}, err
	}

	rows, err := cityRows(yt.table, city, true)
	if err != nil {
		return Series{}, err
	}
	if len(rows) > 1 {
		rows = rows[:1]
	}

	boys := yt.table.Sum(dataset.ColJuvenileBoys, rows)
	girls := yt.table.Sum(dataset.ColJuvenileGirls, rows)

	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "boys":
		return Series{Labels: []string{"Boys"}, Values: []int64{boys}}, nil
	case "girls":
		return Series{Labels: []string{"Girls"}, Values: []int64{girls}}, nil
	default:
		return Series{Labels: []string{"Boys", "Girls"}, Values: []int64{boys, girls}}, nil
	}
}

// JuvenileCities lists juveniles apprehended per city in table order.
func (s *Service) JuvenileCities(year string) (Series, error) {
	yt, err := s.table(dataset.City, year)
	if err != nil {
		return Series{}, err
	}

	rows := yt.table.CityRows()
	res := Series{Labels: make([]string, 0, len(rows)), Values: make([]int64, 0, len(rows))}
	for _, r := range rows {
		res.Labels = append(res.Labels, yt.table.City(r))
		res.Values = append(res.Values, yt.table.Int(r, dataset.ColJuvenileTotal))
	}
	return res, nil
}

// JuvenileTrend returns the aggregate juvenile total per loaded year.
func (s *Service) JuvenileTrend() (map[string]int64, error) {
	tables, err := s.tables(dataset.City, All)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(tables))
	for _, yt := range tables {
		out[yt.year] = yt.table.Sum(dataset.ColJuvenileTotal, aggregateRows(yt.table))
	}
	return out, nil
}
