// Package retry provides a bounded exponential backoff policy for transient
// store and object-store failures.
package retry

import (
	"context"
	"log"
	"math/rand"
	"time"
)

const (
	defaultMaxAttempts = 4
	defaultMinInterval = 250 * time.Millisecond
	defaultMaxInterval = 5 * time.Second
)

// Task is one attempt of a retryable operation. It reports whether the
// returned error is worth retrying (transient IO) or terminal.
type Task func(ctx context.Context) (retryable bool, err error)

// Policy retries a task with exponential backoff and jitter up to a bounded
// attempt count. The zero value uses defaults.
type Policy struct {
	MaxAttempts int
	MinInterval time.Duration
	MaxInterval time.Duration
	Logger      *log.Logger
}

// Do runs the task until it succeeds, returns a terminal error, exhausts the
// attempt budget, or the context ends. The last error is returned.
func (p Policy) Do(ctx context.Context, name string, task Task) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	minInterval := p.MinInterval
	if minInterval <= 0 {
		minInterval = defaultMinInterval
	}
	maxInterval := p.MaxInterval
	if maxInterval <= 0 {
		maxInterval = defaultMaxInterval
	}

	for attempt := 1; ; attempt++ {
		retryable, err := task(ctx)
		if err == nil {
			return nil
		}
		if !retryable || attempt >= maxAttempts {
			return err
		}

		interval := minInterval << (attempt - 1)
		if interval > maxInterval || interval <= 0 {
			interval = maxInterval
		}
		// Half-width jitter keeps concurrent runs from retrying in lockstep.
		interval = interval/2 + time.Duration(rand.Int63n(int64(interval/2)+1))

		if p.Logger != nil {
			p.Logger.Printf("%s: attempt %d failed, retrying in %s: %v", name, attempt, interval, err)
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
