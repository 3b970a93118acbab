package aggregates

import (
	"context"
	"time"

	"github.com/avast/retry-go"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
)

// RetryPolicy re-runs a whole write unit on transient failures.
// Attempts <= 1 disables retrying.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultRetryPolicy retries lock contention and write races three times.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 50 * time.Millisecond, MaxDelay: time.Second}
}

// IsTransient reports whether err is worth retrying in-process.
func IsTransient(err error) bool {
	return domainagg.CodeOf(err).Transient()
}

func withRetry(ctx context.Context, p RetryPolicy, onRetry func(uint, error), fn func() error) error {
	if p.Attempts <= 1 {
		return fn()
	}
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.Delay(p.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsTransient),
		retry.LastErrorOnly(true),
	}
	if p.MaxDelay > 0 {
		opts = append(opts, retry.MaxDelay(p.MaxDelay))
	}
	if onRetry != nil {
		opts = append(opts, retry.OnRetry(onRetry))
	}
	return retry.Do(fn, opts...)
}
