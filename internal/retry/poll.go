// Package retry provides a bounded polling loop with injectable sleep.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when every attempt ran without a terminal result.
var ErrExhausted = errors.New("retry: attempts exhausted")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config configures Poll.
type Config struct {
	Interval      time.Duration
	MaxAttempts   int
	BackoffFactor float64
	MaxInterval   time.Duration
	Sleep         SleepFunc
}

// AttemptFunc runs one attempt. Returning done=true stops with success;
// a non-nil error stops and is returned as is.
type AttemptFunc func(ctx context.Context, attempt int) (done bool, err error)

// Poll waits Interval before every attempt, including the first.
func Poll(ctx context.Context, cfg Config, fn AttemptFunc) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 1
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	delay := cfg.Interval
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 && cfg.BackoffFactor > 1 {
			delay = time.Duration(float64(delay) * cfg.BackoffFactor)
			if cfg.MaxInterval > 0 && delay > cfg.MaxInterval {
				delay = cfg.MaxInterval
			}
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}

		done, err := fn(ctx, attempt)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}

	return ErrExhausted
}

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
