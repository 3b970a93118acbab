package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/config"
	"github.com/yungbote/neurobridge-milestones/internal/data/db"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

const postgresDSNEnv = "TEST_POSTGRES_DSN"

var shared struct {
	once sync.Once
	db   *gorm.DB
	err  error
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.NewNop()
}

// DatabaseConfig picks Postgres when TEST_POSTGRES_DSN is set and a
// throwaway SQLite file under dir otherwise.
func DatabaseConfig(dir string) (config.DatabaseConfig, error) {
	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		return config.DatabaseConfig{
			Driver:     "sqlite",
			Name:       "milestones_test",
			SQLitePath: filepath.Join(dir, "test.db"),
		}, nil
	}
	pc, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("%s: %w", postgresDSNEnv, err)
	}
	sslmode := "require"
	if pc.TLSConfig == nil {
		sslmode = "disable"
	}
	return config.DatabaseConfig{
		Driver:       "postgres",
		Host:         pc.Host,
		Port:         int(pc.Port),
		Name:         pc.Database,
		User:         pc.User,
		Password:     pc.Password,
		SSLMode:      sslmode,
		MaxOpenConns: 4,
	}, nil
}

// DB opens and migrates the database once per test binary, through the same
// path the server uses.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	shared.once.Do(func() {
		dir, err := os.MkdirTemp("", "milestones-test-*")
		if err != nil {
			shared.err = err
			return
		}
		cfg, err := DatabaseConfig(dir)
		if err != nil {
			shared.err = err
			return
		}
		svc, err := db.Open(logger.NewNop(), cfg)
		if err != nil {
			shared.err = err
			return
		}
		if err := svc.Migrate(); err != nil {
			shared.err = err
			return
		}
		shared.db = svc.DB()
	})
	if shared.err != nil {
		tb.Fatalf("test database: %v", shared.err)
	}
	return shared.db
}

// Tx begins a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return tx
}

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }

func PtrTime(t time.Time) *time.Time { return &t }
