package runtime

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Handler executes one job type. Returning an error hands the job to the
// retry policy; handlers that finish call ctx.Succeed themselves.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

// Registry maps job_run.job_type to its handler. Both the database worker
// and the Temporal activity look handlers up here.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register adds every handler it can and reports the ones it could not.
func (r *Registry) Register(handlers ...Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, h := range handlers {
		switch {
		case h == nil:
			errs = append(errs, errors.New("nil handler"))
		case strings.TrimSpace(h.Type()) == "":
			errs = append(errs, fmt.Errorf("handler %T has an empty job type", h))
		case r.handlers[h.Type()] != nil:
			errs = append(errs, fmt.Errorf("job type %s already has a handler", h.Type()))
		default:
			r.handlers[h.Type()] = h
		}
	}
	return errors.Join(errs...)
}

// Require fails when any of jobTypes has no handler.
func (r *Registry) Require(jobTypes ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var missing []string
	for _, t := range jobTypes {
		if r.handlers[t] == nil {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no handler for job types: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

// Types lists the registered job types in lexical order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
