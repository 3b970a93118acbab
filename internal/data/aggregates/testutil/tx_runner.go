package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/data/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

type Stage int

const (
	// AtBegin fails before the body runs; nothing is opened or rolled back.
	AtBegin Stage = iota
	// AtCommit runs the body and then fails, rolling its writes back.
	AtCommit
)

// Fault is one scripted transaction failure.
type Fault struct {
	Stage Stage
	Err   error
}

// TxStats counts transaction outcomes seen by a FaultyTxRunner.
type TxStats struct {
	Begins    int
	Commits   int
	Rollbacks int
}

// FaultyTxRunner plays Script one entry per InTx call, then runs cleanly once
// the script is exhausted. A zero Fault in the script is a clean attempt. With
// DB set the body runs inside a real GORM transaction (a savepoint when DB is
// already a transaction).
type FaultyTxRunner struct {
	DB     *gorm.DB
	Script []Fault

	mu    sync.Mutex
	calls int
	stats TxStats
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

// FailCommits scripts n commit failures with err followed by clean runs.
func FailCommits(db *gorm.DB, err error, n int) *FaultyTxRunner {
	r := &FaultyTxRunner{DB: db}
	for i := 0; i < n; i++ {
		r.Script = append(r.Script, Fault{Stage: AtCommit, Err: err})
	}
	return r
}

func (r *FaultyTxRunner) Stats() TxStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *FaultyTxRunner) next() Fault {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Begins++
	var f Fault
	if r.calls < len(r.Script) {
		f = r.Script[r.calls]
	}
	r.calls++
	return f
}

func (r *FaultyTxRunner) record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.stats.Rollbacks++
	} else {
		r.stats.Commits++
	}
}

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	fault := r.next()
	if fault.Err != nil && fault.Stage == AtBegin {
		return fault.Err
	}

	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		if fault.Stage == AtCommit {
			return fault.Err
		}
		return nil
	}

	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return body(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	r.record(err)
	return err
}
