package aggregates

import (
	"time"

	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

// Hooks receives one signal per aggregate write plus its conflicts and retries.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type chainHooks []Hooks

// Chain fans every signal out to each non-nil hook in order.
func Chain(hooks ...Hooks) Hooks {
	out := make(chainHooks, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return noopHooks{}
	}
	return out
}

func (c chainHooks) ObserveOperation(name, status string, dur time.Duration) {
	for _, h := range c {
		h.ObserveOperation(name, status, dur)
	}
}

func (c chainHooks) IncConflict(name string) {
	for _, h := range c {
		h.IncConflict(name)
	}
}

func (c chainHooks) IncRetry(name string) {
	for _, h := range c {
		h.IncRetry(name)
	}
}

type slowOpHooks struct {
	noopHooks
	log       *logger.Logger
	threshold time.Duration
}

// NewSlowOpHooks logs aggregate writes that take longer than threshold,
// usually a sign of contention on a student's progress rows.
func NewSlowOpHooks(log *logger.Logger, threshold time.Duration) Hooks {
	if log == nil || threshold <= 0 {
		return noopHooks{}
	}
	return slowOpHooks{log: log.With("component", "AggregateHooks"), threshold: threshold}
}

func (h slowOpHooks) ObserveOperation(name, status string, dur time.Duration) {
	if dur < h.threshold {
		return
	}
	h.log.Warn("Slow aggregate write", "op", name, "status", status, "duration_ms", dur.Milliseconds())
}
