package output

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/request/packages/bench"
	"github.com/abdul-hamid-achik/request/packages/history"
	"github.com/abdul-hamid-achik/request/packages/request"
)

// JSONResponse is the JSON rendering of a response
type JSONResponse struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	OK       bool              `json:"ok"`
	Status   int               `json:"status"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     any               `json:"body,omitempty"`
	Duration float64           `json:"duration"`
	Error    string            `json:"error,omitempty"`
}

// JSONHistoryEntry is the JSON rendering of a history entry
type JSONHistoryEntry struct {
	ID       int64   `json:"id"`
	Method   string  `json:"method"`
	URL      string  `json:"url"`
	Status   int     `json:"status"`
	OK       bool    `json:"ok"`
	Duration float64 `json:"duration"`
	Error    string  `json:"error,omitempty"`
	Time     string  `json:"time"`
}

// JSONBench is the JSON rendering of a bench summary. Times are in
// milliseconds.
type JSONBench struct {
	Method      string           `json:"method"`
	URL         string           `json:"url"`
	Duration    float64          `json:"duration"`
	Total       int64            `json:"total"`
	OK          int64            `json:"ok"`
	Failed      int64            `json:"failed"`
	NoResponse  int64            `json:"noResponse"`
	Statuses    map[string]int64 `json:"statuses"`
	RPS         float64          `json:"rps"`
	SuccessRate float64          `json:"successRate"`
	Latency     JSONLatency      `json:"latency"`
}

type JSONLatency struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// JSONFormatter writes one JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func (f *JSONFormatter) FormatResponse(method, url string, res *request.Response) {
	out := JSONResponse{
		Method:   method,
		URL:      url,
		OK:       res.OK,
		Status:   res.Status,
		Headers:  res.Headers,
		Duration: float64(res.Duration.Milliseconds()),
	}

	// JSON bodies are embedded as-is, anything else as a string
	if len(res.Body) > 0 {
		if json.Valid(res.Body) {
			out.Body = json.RawMessage(res.Body)
		} else {
			out.Body = string(res.Body)
		}
	}

	if res.Err != nil {
		out.Error = res.Err.Error()
	}

	f.encode(out)
}

func (f *JSONFormatter) FormatValue(value string) {
	if json.Valid([]byte(value)) {
		f.encode(json.RawMessage(value))
		return
	}
	f.encode(value)
}

func (f *JSONFormatter) FormatHistory(entries []history.Entry) {
	out := make([]JSONHistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = JSONHistoryEntry{
			ID:       e.ID,
			Method:   e.Method,
			URL:      e.URL,
			Status:   e.Status,
			OK:       e.OK,
			Duration: float64(e.Duration.Milliseconds()),
			Error:    e.Error,
			Time:     e.CreatedAt.Format(time.RFC3339),
		}
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatBench(method, url string, s *bench.Summary) {
	statuses := make(map[string]int64, len(s.Statuses))
	for code, n := range s.Statuses {
		statuses[strconv.Itoa(code)] = n
	}

	f.encode(JSONBench{
		Method:      method,
		URL:         url,
		Duration:    ms(s.Duration),
		Total:       s.Total,
		OK:          s.OK,
		Failed:      s.Failed,
		NoResponse:  s.NoResponse,
		Statuses:    statuses,
		RPS:         s.RPS,
		SuccessRate: s.SuccessRate,
		Latency: JSONLatency{
			Min:  ms(s.Min),
			Mean: ms(s.Mean),
			Max:  ms(s.Max),
			P50:  ms(s.P50),
			P95:  ms(s.P95),
			P99:  ms(s.P99),
		},
	})
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(map[string]string{"error": err.Error()})
}
