package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// newAskCmd creates the ask subcommand.
func newAskCmd() *cobra.Command {
	var insight bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question",
		Long: `Ask resolves a plain-English question such as
"highest female arrests in 2019" or "compare delhi and mumbai 2020"
into a single aggregate over the arrest tables.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			b, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			return askOnce(ctx, b, strings.Join(args, " "), "", insight)
		},
	}

	cmd.Flags().BoolVar(&insight, "insight", false, "request a generated explanation for comparisons and profiles")
	return cmd
}

// newReplCmd creates the interactive chat subcommand.
func newReplCmd() *cobra.Command {
	var insight bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive chat with conversational memory",
		Long: `Repl reads one question per line. Follow-ups such as "and mumbai" or
"tell me more" reuse the city, year and question type of earlier turns.
An empty line or "exit" ends the session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			b, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			return repl(ctx, b, os.Stdin, uuid.NewString(), insight)
		},
	}

	cmd.Flags().BoolVar(&insight, "insight", false, "request a generated explanation for comparisons and profiles")
	return cmd
}

func askOnce(ctx context.Context, b backend, question, sessionID string, insight bool) error {
	stop := ui.Spinner("Thinking")
	env, err := b.Ask(ctx, question, sessionID, insight)
	stop()
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	return ui.Envelope(env)
}

func repl(ctx context.Context, b backend, in io.Reader, sessionID string, insight bool) error {
	ui.Info("Ask about arrests by city, year or gender. Empty line to quit.")

	scanner := bufio.NewScanner(in)
	for {
		if !ui.jsonMode {
			fmt.Fprint(ui.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		if err := askOnce(ctx, b, line, sessionID, insight); err != nil {
			ui.Error("%v", err)
		}
		if !ui.jsonMode {
			fmt.Fprintln(ui.out)
		}
	}
}
