package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crimelens/crime-analytics/internal/observability"
)

// LoaderConfig describes where the CSV files live. Each pattern carries one
// %s verb that is replaced by the year.
type LoaderConfig struct {
	Dir      string
	Years    []string
	Patterns map[Name]string
	// OnFile, when set, is called once per attempted file, loaded or not.
	// It may be called from several goroutines.
	OnFile func()
}

// Files returns how many (family, year) files Load will attempt.
func (c LoaderConfig) Files() int {
	n := 0
	for _, name := range Names {
		if c.Patterns[name] != "" {
			n += len(c.Years)
		}
	}
	return n
}

// ReadCSV parses a CSV stream into a normalised Table.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return EmptyTable(), nil
	}

	return NewTable(records[0], records[1:]), nil
}

// ReadCSVFile opens and parses one CSV file.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load reads every configured (family, year) file in parallel. Missing files
// are logged and skipped so the year is simply not offered; malformed files
// fail the load.
func Load(ctx context.Context, cfg LoaderConfig, logger *observability.Logger) (*StaticProvider, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	start := time.Now()
	provider := NewStaticProvider()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, name := range Names {
		pattern, ok := cfg.Patterns[name]
		if !ok || pattern == "" {
			continue
		}
		for _, year := range cfg.Years {
			name, year := name, year
			path := filepath.Join(cfg.Dir, fmt.Sprintf(pattern, year))

			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				t, err := ReadCSVFile(path)
				if cfg.OnFile != nil {
					cfg.OnFile()
				}
				if errors.Is(err, fs.ErrNotExist) {
					logger.Warn().
						Str("dataset", string(name)).
						Str("year", year).
						Str("path", path).
						Msg("Dataset file missing, year skipped")
					return nil
				}
				if err != nil {
					return fmt.Errorf("load %s %s: %w", name, year, err)
				}

				provider.Add(name, year, t)
				logger.Debug().
					Str("dataset", string(name)).
					Str("year", year).
					Int("rows", t.Len()).
					Int("columns", len(t.Columns)).
					Msg("Dataset loaded")
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, name := range Names {
		logger.Info().
			Str("dataset", string(name)).
			Strs("years", provider.Years(name)).
			Msg("Dataset ready")
	}
	logger.Info().Dur("duration", time.Since(start)).Msg("Datasets loaded")

	return provider, nil
}
