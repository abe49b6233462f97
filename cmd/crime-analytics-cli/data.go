package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// newCitiesCmd creates the cities subcommand.
func newCitiesCmd() *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "cities",
		Short: "List the cities of a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			b, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			cities, err := b.Cities(ctx, year)
			if err != nil {
				return fmt.Errorf("list cities: %w", err)
			}

			if ui.jsonMode {
				return ui.JSON(map[string][]string{"cities": cities})
			}
			for _, c := range cities {
				fmt.Fprintln(ui.out, c)
			}
			ui.Success("%d cities", len(cities))
			return nil
		},
	}

	cmd.Flags().StringVar(&year, "year", "", `year to list, or "all" (default: latest)`)
	return cmd
}

// newTrendCmd creates the trend subcommand.
func newTrendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Show total arrests per year",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			b, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			trend, err := b.YearTrend(ctx)
			if err != nil {
				return fmt.Errorf("year trend: %w", err)
			}

			if ui.jsonMode {
				return ui.JSON(trend)
			}
			ui.Table([]string{"Year", "Arrests"}, trendRows(trend))
			return nil
		},
	}
}

// trendRows orders a year map chronologically.
func trendRows(trend map[string]int64) [][]string {
	years := make([]string, 0, len(trend))
	for y := range trend {
		years = append(years, y)
	}
	sort.Strings(years)

	rows := make([][]string, 0, len(years))
	for _, y := range years {
		rows = append(rows, []string{y, strconv.FormatInt(trend[y], 10)})
	}
	return rows
}
