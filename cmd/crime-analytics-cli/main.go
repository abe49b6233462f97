// Package main provides the crime analytics CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crimelens/crime-analytics/internal/config"
	"github.com/crimelens/crime-analytics/internal/observability"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool
	noColor    bool
	serverURL  string

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
	ui     *UI
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "crime-analytics-cli",
	Short: "Ask questions about the NCRB city arrest tables",
	Long: `crime-analytics-cli answers plain-English questions about the city
arrest, government crime-head and foreigner tables.

By default the CSV files are loaded locally from the configured data
directory. With --server the questions are sent to a running API instead,
and the server keeps the conversation memory.

All commands support --json for automation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      "console",
			Output:      os.Stderr,
			ServiceName: "crime-analytics-cli",
		})

		if noColor {
			color.NoColor = true
		}
		ui = NewUI(outputJSON)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "query a running API at this URL instead of loading files")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newReplCmd())
	rootCmd.AddCommand(newCitiesCmd())
	rootCmd.AddCommand(newTrendCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
