package bench

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/request/packages/request"
)

// Latencies are recorded in microseconds between these bounds
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Metrics aggregates responses. It is safe for concurrent use.
type Metrics struct {
	mu sync.Mutex

	total      int64
	ok         int64
	noResponse int64
	statuses   map[int]int64
	histogram  *hdrhistogram.Histogram

	startTime time.Time
	endTime   time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		// 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		statuses:  make(map[int]int64),
	}
}

// Start marks the beginning of the run
func (m *Metrics) Start() {
	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}

// Stop marks the end of the run
func (m *Metrics) Stop() {
	m.mu.Lock()
	m.endTime = time.Now()
	m.mu.Unlock()
}

// Record adds one response. Only completed exchanges contribute latency.
func (m *Metrics) Record(res *request.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	if res.OK {
		m.ok++
	}
	if res.Status <= 0 {
		m.noResponse++
		return
	}
	m.statuses[res.Status]++

	latencyUs := max(minLatencyUs, min(res.Duration.Microseconds(), maxLatencyUs))
	_ = m.histogram.RecordValue(latencyUs)
}

// Summary is the outcome of a run
type Summary struct {
	Duration   time.Duration
	Total      int64
	OK         int64
	Failed     int64
	NoResponse int64
	Statuses   map[int]int64

	RPS         float64
	SuccessRate float64

	P50  time.Duration
	P95  time.Duration
	P99  time.Duration
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

func (m *Metrics) Summary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	s := &Summary{
		Duration:   duration,
		Total:      m.total,
		OK:         m.ok,
		Failed:     m.total - m.ok,
		NoResponse: m.noResponse,
		Statuses:   make(map[int]int64, len(m.statuses)),
	}
	for code, n := range m.statuses {
		s.Statuses[code] = n
	}

	if duration.Seconds() > 0 {
		s.RPS = float64(m.total) / duration.Seconds()
	}
	if m.total > 0 {
		s.SuccessRate = float64(m.ok) / float64(m.total)
	}

	if m.histogram.TotalCount() > 0 {
		s.P50 = us(m.histogram.ValueAtQuantile(50))
		s.P95 = us(m.histogram.ValueAtQuantile(95))
		s.P99 = us(m.histogram.ValueAtQuantile(99))
		s.Min = us(m.histogram.Min())
		s.Max = us(m.histogram.Max())
		s.Mean = time.Duration(m.histogram.Mean()) * time.Microsecond
	}

	return s
}

func us(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
