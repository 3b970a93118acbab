package aggregates

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormTxRunnerCommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	var sawTx bool
	err := NewGormTxRunner(db).InTx(context.Background(), func(dbc dbctx.Context) error {
		sawTx = dbc.Tx != nil
		return nil
	})
	require.NoError(t, err)
	require.True(t, sawTx)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTxRunnerRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewGormTxRunner(db).InTx(context.Background(), func(dbctx.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTxRunnerAppliesIsolation(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	runner := NewGormTxRunnerWithOptions(db, TxOptions{Isolation: sql.LevelSerializable, Timeout: time.Second})
	var deadline bool
	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		_, deadline = dbc.Ctx.Deadline()
		return nil
	})
	require.NoError(t, err)
	require.True(t, deadline)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTxRunnerNilDB(t *testing.T) {
	err := NewGormTxRunner(nil).InTx(context.Background(), func(dbctx.Context) error { return nil })
	require.True(t, domainagg.IsCode(err, domainagg.CodeInternal))
}
