package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/request/packages/bench"
	"github.com/abdul-hamid-achik/request/packages/history"
	"github.com/abdul-hamid-achik/request/packages/request"
	"github.com/fatih/color"
)

// maxBodyLen bounds how much of a body is printed before truncation
const maxBodyLen = 64 * 1024

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

// statusColor picks a colour by status class
func statusColor(status int) *color.Color {
	switch {
	case status == 200:
		return color.New(color.FgGreen, color.Bold)
	case status >= 200 && status < 300:
		return color.New(color.FgGreen)
	case status >= 300 && status < 400:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func (f *ConsoleFormatter) FormatResponse(method, url string, res *request.Response) {
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	if f.verbose {
		fmt.Fprintf(f.writer, "%s %s %s\n", faint(">"), method, url)
	}

	if res.Status <= 0 {
		reason := "request not sent"
		if res.Status == 0 {
			reason = "no response"
		}
		fmt.Fprintf(f.writer, "%s %s", red("✗"), reason)
		if res.Err != nil {
			fmt.Fprintf(f.writer, " %s", red(fmt.Sprintf("(%v)", res.Err)))
		}
		fmt.Fprintf(f.writer, "\n")
		return
	}

	symbol := color.New(color.FgGreen).Sprint("✓")
	if !res.OK {
		symbol = red("✗")
	}
	fmt.Fprintf(f.writer, "%s %s %s\n", symbol, statusColor(res.Status).Sprint(res.Status), cyan(fmt.Sprintf("(%dms)", res.Duration.Milliseconds())))

	if f.verbose {
		keys := make([]string, 0, len(res.Headers))
		for k := range res.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "%s %s: %s\n", faint("<"), cyan(k), res.Headers[k])
		}
	}

	if res.Err != nil {
		fmt.Fprintf(f.writer, "%s\n", red(fmt.Sprintf("(%v)", res.Err)))
	}

	if len(res.Body) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", formatBody(res.Body, maxBodyLen))
	}
}

// formatBody truncates large bodies
func formatBody(body []byte, maxLen int) string {
	s := strings.TrimRight(string(body), "\n")
	if len(s) > maxLen {
		return s[:maxLen] + fmt.Sprintf("... (%d more bytes)", len(s)-maxLen)
	}
	return s
}

func (f *ConsoleFormatter) FormatValue(value string) {
	fmt.Fprintln(f.writer, value)
}

func (f *ConsoleFormatter) FormatHistory(entries []history.Entry) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if len(entries) == 0 {
		fmt.Fprintf(f.writer, "No requests recorded\n")
		return
	}

	for _, e := range entries {
		symbol := green("✓")
		if !e.OK {
			symbol = red("✗")
		}
		fmt.Fprintf(f.writer, "%s %4d %-6s %s %s\n",
			symbol, e.Status, e.Method, e.URL,
			faint(fmt.Sprintf("%s %dms", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Duration.Milliseconds())))
		if f.verbose && e.Error != "" {
			fmt.Fprintf(f.writer, "    %s\n", red(e.Error))
		}
	}
}

func (f *ConsoleFormatter) FormatBench(method, url string, s *bench.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s %s\n\n", bold(method), url, faint(fmt.Sprintf("(%s)", s.Duration.Round(time.Millisecond))))

	okCount := green(s.OK)
	failed := fmt.Sprint(s.Failed)
	if s.Failed > 0 {
		failed = red(s.Failed)
	}
	fmt.Fprintf(f.writer, "  Requests:  %d (%s ok, %s failed, %.1f/s)\n", s.Total, okCount, failed, s.RPS)
	if s.NoResponse > 0 {
		fmt.Fprintf(f.writer, "  No reply:  %s\n", red(s.NoResponse))
	}

	codes := make([]int, 0, len(s.Statuses))
	for code := range s.Statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(f.writer, "  Status %s: %d\n", statusColor(code).Sprint(code), s.Statuses[code])
	}

	fmt.Fprintf(f.writer, "\n  Latency:   min %s  mean %s  max %s\n",
		formatLatency(s.Min), formatLatency(s.Mean), formatLatency(s.Max))
	fmt.Fprintf(f.writer, "             p50 %s  p95 %s  p99 %s\n",
		formatLatency(s.P50), formatLatency(s.P95), formatLatency(s.P99))
}

// formatLatency prints sub-second latencies in milliseconds
func formatLatency(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return d.Round(time.Millisecond).String()
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
