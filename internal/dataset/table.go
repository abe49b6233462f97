// Package dataset holds the year-partitioned crime tables and the schema
// normalisation applied to them once at load time.
package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Name identifies one of the table families.
type Name string

const (
	City       Name = "city"
	Government Name = "government"
	Foreign    Name = "foreign"
)

// Names lists every table family in load order.
var Names = []Name{City, Government, Foreign}

// Well-known column names. Lookups go through Table.Column, so spacing and
// case differences in the source files do not matter.
const (
	ColCity      = "City"
	ColCrimeHead = "Crime Head"

	ColTotalArrested = "Total - Total Persons Arrested by age and Sex"
	ColTotalMale     = "Total - Male"
	ColTotalFemale   = "Total - Female"

	ColJuvenileBoys  = "Juveniles Apprehended - Boys"
	ColJuvenileGirls = "Juveniles Apprehended - Girls"
	ColJuvenileTotal = "Juveniles Apprehended - Total"

	ColPopulationTotal  = "Total Population"
	ColPopulationMale   = "Male Population"
	ColPopulationFemale = "Female Population"
)

// Table is an immutable, rectangular view of one CSV file.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable normalises the header and pads or truncates every row to the
// header width.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{
		Columns: make([]string, len(header)),
		Rows:    make([][]string, 0, len(rows)),
		index:   make(map[string]int, len(header)),
	}

	for i, h := range header {
		name := NormalizeColumn(h)
		t.Columns[i] = name
		key := CanonicalKey(name)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}

	for _, r := range rows {
		if isBlank(r) {
			continue
		}
		row := make([]string, len(header))
		for i := range row {
			if i < len(r) {
				row[i] = strings.TrimSpace(r[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}

// EmptyTable returns a table with no columns and no rows.
func EmptyTable() *Table {
	return NewTable(nil, nil)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column resolves a column by canonical name.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[CanonicalKey(name)]
	return i, ok
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Value returns the raw cell, or "" when the column is absent.
func (t *Table) Value(row int, column string) string {
	i, ok := t.Column(column)
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}

// Number returns the cell parsed as a number. Unparseable or missing cells
// count as zero.
func (t *Table) Number(row int, column string) float64 {
	v, _ := ParseNumber(t.Value(row, column))
	return v
}

// Int is Number rounded to the nearest integer.
func (t *Table) Int(row int, column string) int64 {
	return int64(math.Round(t.Number(row, column)))
}

// Sum adds the named column over the given rows.
func (t *Table) Sum(column string, rows []int) int64 {
	i, ok := t.Column(column)
	if !ok {
		return 0
	}
	var total float64
	for _, r := range rows {
		v, _ := ParseNumber(t.Rows[r][i])
		total += v
	}
	return int64(math.Round(total))
}

// City returns the trimmed city label of a row.
func (t *Table) City(row int) string {
	return t.Value(row, ColCity)
}

// CityRows returns the indexes of rows that name a real city, skipping blank
// labels and the aggregate total row.
func (t *Table) CityRows() []int {
	if !t.HasColumn(ColCity) {
		return nil
	}
	var out []int
	for r := range t.Rows {
		label := t.City(r)
		if label == "" || IsTotalLabel(label) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AllRows returns the indexes of every row.
func (t *Table) AllRows() []int {
	out := make([]int, len(t.Rows))
	for i := range out {
		out[i] = i
	}
	return out
}

// TotalRow returns the index of the aggregate row, if the table has one.
func (t *Table) TotalRow() (int, bool) {
	if !t.HasColumn(ColCity) {
		return 0, false
	}
	for r := range t.Rows {
		if IsTotalLabel(t.City(r)) {
			return r, true
		}
	}
	return 0, false
}

// FindCity returns the rows whose label matches city ignoring case and any
// parenthetical suffix. The aggregate row never matches.
func (t *Table) FindCity(city string) []int {
	want := CleanCity(city)
	if want == "" {
		return nil
	}
	var out []int
	for _, r := range t.CityRows() {
		if CleanCity(t.City(r)) == want {
			out = append(out, r)
		}
	}
	return out
}

// FindCrime returns the first row whose crime head equals crime, ignoring case.
func (t *Table) FindCrime(crime string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(crime))
	if want == "" || !t.HasColumn(ColCrimeHead) {
		return 0, false
	}
	for r := range t.Rows {
		if strings.ToLower(t.Value(r, ColCrimeHead)) == want {
			return r, true
		}
	}
	return 0, false
}

// NumericColumns lists columns whose non-empty cells all parse as numbers.
// Columns with no values at all are skipped.
func (t *Table) NumericColumns() []string {
	var out []string
	for i, name := range t.Columns {
		seen := false
		numeric := true
		for _, row := range t.Rows {
			cell := row[i]
			if cell == "" {
				continue
			}
			seen = true
			if _, ok := ParseNumber(cell); !ok {
				numeric = false
				break
			}
		}
		if seen && numeric {
			out = append(out, name)
		}
	}
	return out
}

// Record returns a row keyed by column name. Numeric cells become int64 or
// float64 so they encode as JSON numbers.
func (t *Table) Record(row int) map[string]any {
	rec := make(map[string]any, len(t.Columns))
	for i, name := range t.Columns {
		rec[name] = cellValue(t.Rows[row][i])
	}
	return rec
}

func cellValue(cell string) any {
	v, ok := ParseNumber(cell)
	if !ok {
		return cell
	}
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v)
	}
	return v
}

var (
	parenSuffix = regexp.MustCompile(`\([^)]*\)`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeColumn trims a header cell and collapses inner whitespace.
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return whitespace.ReplaceAllString(strings.TrimSpace(name), " ")
}

// CanonicalKey is the lookup key for a column: lower-case with all
// whitespace removed.
func CanonicalKey(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(NormalizeColumn(name)), "")
}

// CleanCity lower-cases a city label and strips any parenthetical suffix.
func CleanCity(label string) string {
	label = parenSuffix.ReplaceAllString(label, "")
	return strings.ToLower(strings.TrimSpace(whitespace.ReplaceAllString(label, " ")))
}

// IsTotalLabel reports whether a city label marks the aggregate row.
func IsTotalLabel(label string) bool {
	return strings.Contains(strings.ToLower(label), "total")
}

// ParseNumber parses a cell that may contain thousands separators.
func ParseNumber(cell string) (float64, bool) {
	cell = strings.TrimSpace(strings.ReplaceAll(cell, ",", ""))
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
