// Package bench repeats a single request under bounded concurrency and
// reports latency percentiles. Each iteration goes through the full
// executor, authentication negotiation included.
package bench

import (
	"context"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/time/rate"

	"github.com/mrleepee/ml-console/packages/http"
)

// Config controls a bench run.
type Config struct {
	Requests    int
	Concurrency int
	Rate        float64 // requests per second, 0 means unpaced
}

// Summary is the aggregated result of a bench run.
type Summary struct {
	Total    int64
	Success  int64 // 2xx responses
	Errors   int64 // transport-level failures
	Duration time.Duration
	RPS      float64

	P50  time.Duration
	P95  time.Duration
	P99  time.Duration
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// Run executes the request cfg.Requests times and aggregates latencies.
// It returns early with the context error when cancelled.
func Run(ctx context.Context, client *http.Client, req *http.Request, cfg Config) (*Summary, error) {
	if cfg.Requests <= 0 {
		cfg.Requests = 1
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	// Histogram: 1us to 60s range, 3 significant digits
	hist := hdrhistogram.New(1, 60_000_000, 3)

	var (
		mu              sync.Mutex
		success, errors int64
		total           int64
	)

	jobs := make(chan struct{})
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}

				reqStart := time.Now()
				resp, err := client.DoContext(ctx, req)
				latencyUs := time.Since(reqStart).Microseconds()
				if latencyUs < 1 {
					latencyUs = 1
				}
				if latencyUs > 60_000_000 {
					latencyUs = 60_000_000
				}

				mu.Lock()
				total++
				_ = hist.RecordValue(latencyUs)
				switch {
				case err != nil:
					errors++
				case resp.Success:
					success++
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for i := 0; i < cfg.Requests; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- struct{}{}:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	rps := float64(0)
	if duration.Seconds() > 0 {
		rps = float64(total) / duration.Seconds()
	}

	return &Summary{
		Total:    total,
		Success:  success,
		Errors:   errors,
		Duration: duration,
		RPS:      rps,
		P50:      time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond,
		P95:      time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:      time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond,
		Min:      time.Duration(hist.Min()) * time.Microsecond,
		Max:      time.Duration(hist.Max()) * time.Microsecond,
		Mean:     time.Duration(hist.Mean()) * time.Microsecond,
	}, nil
}
