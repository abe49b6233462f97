package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/crimelens/crime-analytics/internal/dataset"
)

// Pagination bounds for record listings.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// RecordPage is a page of raw table rows.
type RecordPage struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	TotalRows int              `json:"total_rows"`
	Page      int              `json:"page,omitempty"`
	PerPage   int              `json:"per_page,omitempty"`
}

// ColumnMax names the numeric column with the largest sum.
type ColumnMax struct {
	Crime string `json:"crime"`
	Value int64  `json:"value"`
}

// Crimes returns the sorted, distinct crime heads of a family for a year.
func (s *Service) Crimes(name dataset.Name, year string) ([]string, error) {
	yt, err := s.table(name, year)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	crimes := []string{}
	for r := range yt.table.Rows {
		crime := yt.table.Value(r, dataset.ColCrimeHead)
		if crime == "" {
			continue
		}
		if _, ok := seen[crime]; ok {
			continue
		}
		seen[crime] = struct{}{}
		crimes = append(crimes, crime)
	}
	sort.Strings(crimes)
	return crimes, nil
}

// Records lists rows of a family for a year ("all" allowed), optionally
// restricted to one crime head. page <= 0 disables pagination.
func (s *Service) Records(name dataset.Name, year, crime string, page, perPage int) (RecordPage, error) {
	tables, err := s.tables(name, year)
	if err != nil {
		return RecordPage{}, err
	}

	res := RecordPage{Columns: []string{}, Rows: []map[string]any{}}
	seenCol := make(map[string]struct{})
	want := strings.ToLower(strings.TrimSpace(crime))
	filter := want != "" && want != All

	for _, yt := range tables {
		for _, c := range yt.table.Columns {
			if _, ok := seenCol[c]; !ok {
				seenCol[c] = struct{}{}
				res.Columns = append(res.Columns, c)
			}
		}
		for r := range yt.table.Rows {
			if filter && strings.ToLower(yt.table.Value(r, dataset.ColCrimeHead)) != want {
				continue
			}
			res.Rows = append(res.Rows, yt.table.Record(r))
		}
	}
	res.TotalRows = len(res.Rows)

	if page <= 0 {
		return res, nil
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(res.Rows) {
		start = len(res.Rows)
	}
	if end > len(res.Rows) {
		end = len(res.Rows)
	}
	res.Rows = res.Rows[start:end]
	res.Page = page
	res.PerPage = perPage
	return res, nil
}

// CrimeRecord returns the row for one crime head in a year.
func (s *Service) CrimeRecord(name dataset.Name, year, crime string) (map[string]any, string, error) {
	yt, err := s.table(name, year)
	if err != nil {
		return nil, "", err
	}
	r, ok := yt.table.FindCrime(crime)
	if !ok {
		return nil, yt.year, fmt.Errorf("%w: %s", ErrCrimeNotFound, crime)
	}
	return yt.table.Record(r), yt.year, nil
}

// NumericTotal adds every numeric cell of a family's table for a year.
func (s *Service) NumericTotal(name dataset.Name, year string) (int64, string, error) {
	yt, err := s.table(name, year)
	if err != nil {
		return 0, "", err
	}

	var total int64
	for _, col := range yt.table.NumericColumns() {
		total += yt.table.Sum(col, yt.table.AllRows())
	}
	return total, yt.year, nil
}

// HighestColumnTrend reports, per loaded year, the numeric column with the
// largest sum. Ties go to the leftmost column; tables without numeric
// columns report "-".
func (s *Service) HighestColumnTrend(name dataset.Name) (map[string]ColumnMax, error) {
	tables, err := s.tables(name, All)
	if err != nil {
		return nil, err
	}

	out := make(map[string]ColumnMax, len(tables))
	for _, yt := range tables {
		best := ColumnMax{Crime: "-"}
		var bestValue int64 = math.MinInt64
		for _, col := range yt.table.NumericColumns() {
			v := yt.table.Sum(col, yt.table.AllRows())
			if v > bestValue {
				best = ColumnMax{Crime: col, Value: v}
				bestValue = v
			}
		}
		out[yt.year] = best
	}
	return out, nil
}
