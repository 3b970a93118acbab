package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// EnsureIndexes adds the Postgres partial indexes GORM tags cannot express.
func EnsureIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	stmts := []struct {
		name string
		sql  string
	}{
		{
			"idx_job_run_claim",
			`CREATE INDEX IF NOT EXISTS idx_job_run_claim
			ON job_run(next_run_at, created_at)
			WHERE status IN ('queued','failed');`,
		},
		{
			"idx_job_run_dedupe_runnable",
			`CREATE INDEX IF NOT EXISTS idx_job_run_dedupe_runnable
			ON job_run(job_type, dedupe_key)
			WHERE dedupe_key <> '' AND status IN ('queued','running','failed');`,
		},
		{
			"idx_milestone_required",
			`CREATE INDEX IF NOT EXISTS idx_milestone_required
			ON milestone(course_id)
			WHERE required_to_pass;`,
		},
		{
			"idx_progress_achieved",
			`CREATE INDEX IF NOT EXISTS idx_progress_achieved
			ON milestone_progress(course_id, student_id)
			WHERE achieved;`,
		},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}

// Migrate runs AutoMigrateAll then EnsureIndexes.
func (s *Service) Migrate() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return err
	}
	if err := EnsureIndexes(s.db); err != nil {
		return err
	}
	s.log.Info("Database migrated")
	return nil
}
