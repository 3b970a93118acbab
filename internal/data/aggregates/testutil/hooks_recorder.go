package testutil

import (
	"strings"
	"sync"
	"time"

	"github.com/yungbote/neurobridge-milestones/internal/data/aggregates"
)

// HooksRecorder keeps every aggregate signal so tests can assert how a
// ledger write ended and how often it was retried.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
	h.mu.Unlock()
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	h.Conflicts = append(h.Conflicts, name)
	h.mu.Unlock()
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	h.Retries = append(h.Retries, name)
	h.mu.Unlock()
}

// Statuses returns the recorded operation statuses in order.
func (h *HooksRecorder) Statuses() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.Operations))
	for _, op := range h.Operations {
		out = append(out, op.Status)
	}
	return out
}

// OperationsFor returns events whose name starts with prefix, so
// "Milestones.Progress" matches every progress ledger method.
func (h *HooksRecorder) OperationsFor(prefix string) []OperationEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []OperationEvent
	for _, op := range h.Operations {
		if strings.HasPrefix(op.Name, prefix) {
			out = append(out, op)
		}
	}
	return out
}

// RetriesFor counts retry signals recorded for op.
func (h *HooksRecorder) RetriesFor(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.Retries {
		if r == op {
			n++
		}
	}
	return n
}

func (h *HooksRecorder) Reset() {
	h.mu.Lock()
	h.Operations, h.Conflicts, h.Retries = nil, nil, nil
	h.mu.Unlock()
}
