package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

// BaseDeps is shared by the progress ledger and the course-passed aggregate.
type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	Retry    RetryPolicy
	Now      func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// executeWrite runs fn as one transaction and reruns the whole unit while the
// failure is transient and deps.Retry allows. Every call ends with exactly one
// ObserveOperation.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	if op = strings.TrimSpace(op); op == "" {
		op = "aggregate.write"
	}

	attempts := 0
	err := MapError(op, withRetry(ctx, deps.Retry, func(attempt uint, err error) {
		deps.Hooks.IncRetry(op)
		deps.Log.Warn("Aggregate write retry", "op", op, "attempt", attempt+1, "error", err)
	}, func() error {
		attempts++
		return MapError(op, deps.Runner.InTx(ctx, fn))
	}))

	status := aggregateErrorStatus(err)
	switch domainagg.CodeOf(err) {
	case domainagg.CodeConflict:
		deps.Hooks.IncConflict(op)
	case domainagg.CodeRetryable:
		deps.Hooks.IncRetry(op)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	if err != nil && attempts > 1 {
		deps.Log.Warn("Aggregate write gave up", "op", op, "attempts", attempts, "status", status)
	}
	return err
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	if code := domainagg.CodeOf(MapError("aggregate.status", err)); code != "" {
		return string(code)
	}
	return "failure"
}
