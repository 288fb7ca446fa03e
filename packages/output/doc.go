// Package output provides formatters for displaying responses.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//
// Both implement Formatter.
package output

import (
	"github.com/abdul-hamid-achik/request/packages/bench"
	"github.com/abdul-hamid-achik/request/packages/history"
	"github.com/abdul-hamid-achik/request/packages/request"
)

// Formatter renders the result of a command
type Formatter interface {
	FormatResponse(method, url string, res *request.Response)
	FormatValue(value string)
	FormatHistory(entries []history.Entry)
	FormatBench(method, url string, summary *bench.Summary)
	FormatError(err error)
}

var (
	_ Formatter = (*ConsoleFormatter)(nil)
	_ Formatter = (*JSONFormatter)(nil)
)
