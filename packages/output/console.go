// Package output renders responses, bench summaries, and history
// entries for the terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/mrleepee/ml-console/packages/bench"
	"github.com/mrleepee/ml-console/packages/history"
	"github.com/mrleepee/ml-console/packages/http"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatResponse prints the status line, headers in verbose mode, and
// the body.
func (f *ConsoleFormatter) FormatResponse(req *http.Request, resp *http.Response, durationMs int64) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n", bold(fmt.Sprintf("%s %s", req.Method, req.URL)))

	status := green(fmt.Sprintf("%d", resp.Status))
	if !resp.Success {
		status = red(fmt.Sprintf("%d", resp.Status))
	}
	fmt.Fprintf(f.writer, "%s %s\n", status, cyan(fmt.Sprintf("(%dms)", durationMs)))

	if f.verbose {
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "  %s: %s\n", k, resp.Headers[k])
		}
	}

	if resp.Body != "" {
		fmt.Fprintf(f.writer, "\n%s\n", resp.Body)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("error:"), err)
}

// FormatBenchSummary prints the aggregate of a bench run.
func (f *ConsoleFormatter) FormatBenchSummary(s *bench.Summary) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Summary"))
	fmt.Fprintf(f.writer, "  Requests: %d (%d ok, %d errors)\n", s.Total, s.Success, s.Errors)
	fmt.Fprintf(f.writer, "  Duration: %s  (%.1f req/s)\n", s.Duration.Round(time.Millisecond), s.RPS)
	fmt.Fprintf(f.writer, "  Latency:  p50=%s p95=%s p99=%s\n",
		cyan(s.P50.String()), cyan(s.P95.String()), cyan(s.P99.String()))
	fmt.Fprintf(f.writer, "            min=%s mean=%s max=%s\n",
		s.Min.Round(time.Microsecond), s.Mean.Round(time.Microsecond), s.Max.Round(time.Microsecond))
}

// FormatHistory prints recorded entries, newest first.
func (f *ConsoleFormatter) FormatHistory(entries []*history.Entry) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	if len(entries) == 0 {
		fmt.Fprintf(f.writer, "no recorded requests\n")
		return
	}

	for _, e := range entries {
		status := green(fmt.Sprintf("%d", e.Status))
		if !e.Success {
			status = red(fmt.Sprintf("%d", e.Status))
		}
		fmt.Fprintf(f.writer, "%s  %s  %-6s %s (%dms)\n",
			e.Time.Format("2006-01-02 15:04:05"), status, e.Method, e.URL, e.Duration.Milliseconds())
	}
}
