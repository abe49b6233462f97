package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/crimelens/crime-analytics/pkg/client"
)

// UI provides user-friendly output utilities.
type UI struct {
	out      io.Writer
	errOut   io.Writer
	jsonMode bool
}

// NewUI creates a UI writing to stdout and stderr.
func NewUI(jsonMode bool) *UI {
	return &UI{out: os.Stdout, errOut: os.Stderr, jsonMode: jsonMode}
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	color.New(color.FgGreen).Fprintf(ui.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	color.New(color.FgRed).Fprintf(ui.errOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info message.
func (ui *UI) Info(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	color.New(color.FgCyan).Fprintf(ui.out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// JSON writes v as indented JSON.
func (ui *UI) JSON(v any) error {
	enc := json.NewEncoder(ui.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ProgressBar creates a progress bar on stderr, or nil in JSON mode or when
// stderr is not a terminal.
func (ui *UI) ProgressBar(total int, description string) *progressbar.ProgressBar {
	if ui.jsonMode || !IsTerminal() || total <= 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ui.errOut),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
	)
}

// Spinner starts a spinner for indeterminate waits. The returned stop
// function is always safe to call.
func (ui *UI) Spinner(message string) (stop func()) {
	if ui.jsonMode || !IsTerminal() {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = ui.errOut
	s.Start()
	return s.Stop
}

// Table prints rows under a header with aligned columns.
func (ui *UI) Table(headers []string, rows [][]string) {
	if ui.jsonMode || len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	head := color.New(color.FgCyan, color.Bold)
	for i, h := range headers {
		head.Fprintf(ui.out, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(ui.out)
	for i := range headers {
		fmt.Fprint(ui.out, strings.Repeat("─", widths[i]), "  ")
	}
	fmt.Fprintln(ui.out)
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(ui.out, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(ui.out)
	}
}

// Envelope prints a chat answer.
func (ui *UI) Envelope(env *client.Envelope) error {
	if ui.jsonMode {
		return ui.JSON(env)
	}

	if env.IsError() {
		ui.Error("%s", env.Summary)
		return nil
	}

	if env.Title != "" {
		color.New(color.FgCyan, color.Bold).Fprintln(ui.out, env.Title)
	}
	if len(env.Data) > 0 {
		if pairs, ok := flatPairs(env.Data); ok {
			ui.Table([]string{"", "Value"}, pairs)
		} else {
			var buf bytes.Buffer
			if err := json.Indent(&buf, env.Data, "", "  "); err != nil {
				return fmt.Errorf("format data: %w", err)
			}
			fmt.Fprintln(ui.out, buf.String())
		}
	}
	if env.Summary != "" {
		fmt.Fprintln(ui.out, env.Summary)
	}
	if env.Insight != "" {
		color.New(color.FgYellow).Fprintf(ui.out, "\n%s\n", env.Insight)
	}
	if env.Source != "" {
		color.New(color.Faint).Fprintf(ui.out, "Source: %s\n", env.Source)
	}
	return nil
}

// flatPairs reads a JSON object whose values are all scalars, keeping key
// order. It reports false for anything else.
func flatPairs(raw json.RawMessage) ([][]string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, false
	}

	var pairs [][]string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, _ := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		var val string
		switch v := valTok.(type) {
		case json.Number:
			val = formatNumber(v)
		case string:
			val = v
		case bool:
			val = strconv.FormatBool(v)
		case nil:
			val = "-"
		default:
			return nil, false
		}
		pairs = append(pairs, []string{key, val})
	}
	return pairs, true
}

// formatNumber groups the thousands of integers.
func formatNumber(n json.Number) string {
	i, err := n.Int64()
	if err != nil {
		return n.String()
	}
	s := strconv.FormatInt(i, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for idx, r := range s {
		if idx > 0 && (len(s)-idx)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// IsTerminal reports whether stderr is a terminal.
func IsTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
