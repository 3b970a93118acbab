package aggregates

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

// TxRunner opens the transaction one aggregate write runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

// TxOptions tune the transactions opened by a gorm runner. Zero values keep
// the driver defaults.
type TxOptions struct {
	Isolation sql.IsolationLevel
	// Timeout bounds a single attempt, including lock waits on progress rows.
	Timeout time.Duration
}

type gormTxRunner struct {
	db   *gorm.DB
	opts TxOptions
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return NewGormTxRunnerWithOptions(db, TxOptions{})
}

func NewGormTxRunnerWithOptions(db *gorm.DB, opts TxOptions) TxRunner {
	return &gormTxRunner{db: db, opts: opts}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	var txOpts *sql.TxOptions
	if r.opts.Isolation != sql.LevelDefault {
		txOpts = &sql.TxOptions{Isolation: r.opts.Isolation}
	}
	body := func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}
	if txOpts == nil {
		return r.db.WithContext(ctx).Transaction(body)
	}
	return r.db.WithContext(ctx).Transaction(body, txOpts)
}
