package bench

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/request/packages/request"
	"golang.org/x/time/rate"
)

// Factory returns a new builder for each repetition.
type Factory func() *request.Request

// Config controls a run. At least one of Requests and Duration must be set;
// with both, the run stops at whichever comes first.
type Config struct {
	Requests    int
	Duration    time.Duration
	Rate        float64 // requests per second, 0 for unlimited
	Concurrency int
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Requests < 0 {
		return errors.New("requests must not be negative")
	}
	if c.Duration < 0 {
		return errors.New("duration must not be negative")
	}
	if c.Requests == 0 && c.Duration == 0 {
		return errors.New("either requests or duration must be set")
	}
	if c.Rate < 0 {
		return errors.New("rate must not be negative")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	return nil
}

// Run issues requests built by factory until the configured count or
// duration is reached, or ctx is done.
func Run(ctx context.Context, cfg Config, factory Factory) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := max(cfg.Concurrency, 1)

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	// The duration bounds scheduling only; requests in flight finish.
	schedCtx := ctx
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		schedCtx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	metrics := NewMetrics()
	metrics.Start()

	jobs := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				metrics.Record(factory().EndContext(ctx))
			}
		}()
	}

	schedule(schedCtx, cfg.Requests, limiter, jobs)
	close(jobs)
	wg.Wait()

	metrics.Stop()
	return metrics.Summary(), nil
}

func schedule(ctx context.Context, n int, limiter *rate.Limiter, jobs chan<- struct{}) {
	for i := 0; n == 0 || i < n; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}
		select {
		case jobs <- struct{}{}:
		case <-ctx.Done():
			return
		}
	}
}
