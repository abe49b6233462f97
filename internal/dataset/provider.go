package dataset

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrTableNotFound is returned when no table is loaded for a name and year.
var ErrTableNotFound = errors.New("table not found")

// Provider serves the loaded tables. Implementations must be safe for
// concurrent readers.
type Provider interface {
	Table(name Name, year string) (*Table, error)
	// Years returns the loaded years for a table family in ascending order.
	Years(name Name) []string
}

// LatestYear returns the most recent loaded year, or "" when none is loaded.
func LatestYear(p Provider, name Name) string {
	years := p.Years(name)
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}

// HasYear reports whether year is loaded for the family.
func HasYear(p Provider, name Name, year string) bool {
	for _, y := range p.Years(name) {
		if y == year {
			return true
		}
	}
	return false
}

// StaticProvider is an in-memory Provider. Tables are added during start-up
// and only read afterwards.
type StaticProvider struct {
	mu     sync.RWMutex
	tables map[Name]map[string]*Table
}

// NewStaticProvider creates an empty provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{tables: make(map[Name]map[string]*Table)}
}

// Add registers a table, replacing any previous one for the same key.
func (p *StaticProvider) Add(name Name, year string, t *Table) {
	p.mu.Lock()
	defer p.mu.Unlock()

	byYear, ok := p.tables[name]
	if !ok {
		byYear = make(map[string]*Table)
		p.tables[name] = byYear
	}
	byYear[year] = t
}

// Table returns the table for name and year.
func (p *StaticProvider) Table(name Name, year string) (*Table, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	t, ok := p.tables[name][year]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", name, year, ErrTableNotFound)
	}
	return t, nil
}

// Years returns the loaded years for name in ascending order.
func (p *StaticProvider) Years(name Name) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	years := make([]string, 0, len(p.tables[name]))
	for y := range p.tables[name] {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// Loaded reports whether at least one table of any family is present.
func (p *StaticProvider) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, byYear := range p.tables {
		if len(byYear) > 0 {
			return true
		}
	}
	return false
}

var _ Provider = (*StaticProvider)(nil)
