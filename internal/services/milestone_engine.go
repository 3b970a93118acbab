package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/data/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/platform/badges"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/platform/sendgrid"
	"github.com/yungbote/neurobridge-milestones/internal/realtime/bus"
)

type EngineDeps struct {
	DB    *gorm.DB
	Log   *logger.Logger
	Repos repos.Set
	Bus   bus.Bus
	// Retry bounds in-process retries of transient aggregate failures.
	Retry aggregates.RetryPolicy
	Hooks aggregates.Hooks
	// WriteTimeout bounds each aggregate transaction attempt. Zero disables it.
	WriteTimeout time.Duration
	// Awarder replaces the default certificate/badge/email awarder when set.
	Awarder Awarder
	Badges  badges.Client
	Mailer  sendgrid.Client
}

// Engine is the milestone engine wired against one database handle.
type Engine struct {
	Ledger      domainagg.MilestoneProgressAggregate
	Passing     domainagg.CoursePassedAggregate
	Notifier    MilestoneNotifier
	Awarder     Awarder
	Evaluator   CoursePassedEvaluator
	Monitor     MilestoneMonitor
	Maintenance MilestoneMaintenance
	Progress    ProgressService
}

func NewEngine(deps EngineDeps) *Engine {
	set := deps.Repos
	base := aggregates.BaseDeps{
		DB:     deps.DB,
		Log:    deps.Log,
		Runner: aggregates.NewGormTxRunnerWithOptions(deps.DB, aggregates.TxOptions{Timeout: deps.WriteTimeout}),
		Retry:  deps.Retry,
		Hooks:  deps.Hooks,
	}

	e := &Engine{}
	e.Ledger = aggregates.NewMilestoneProgressAggregate(aggregates.MilestoneProgressAggregateDeps{
		Base:        base,
		Courses:     set.Course,
		Milestones:  set.Milestone,
		Progress:    set.MilestoneProgress,
		Blocks:      set.MilestoneProgressBlock,
		Assessments: set.Assessment,
		Answers:     set.SubmittedAnswer,
	})
	e.Passing = aggregates.NewCoursePassedAggregate(aggregates.CoursePassedAggregateDeps{
		Base:         base,
		Courses:      set.Course,
		Milestones:   set.Milestone,
		Progress:     set.MilestoneProgress,
		CoursePassed: set.CoursePassed,
	})
	e.Notifier = NewMilestoneNotifier(deps.Log, set.TrackingEvent, deps.Bus)
	e.Awarder = deps.Awarder
	if e.Awarder == nil {
		e.Awarder = NewAwarder(AwarderDeps{
			Log:          deps.Log,
			Certificates: set.Certificate,
			Notifier:     e.Notifier,
			Badges:       deps.Badges,
			Mailer:       deps.Mailer,
		})
	}
	e.Evaluator = NewCoursePassedEvaluator(deps.Log, e.Passing, set.Course, set.User, e.Awarder)
	e.Monitor = NewMilestoneMonitor(MilestoneMonitorDeps{
		Log:        deps.Log,
		Courses:    set.Course,
		Users:      set.User,
		Blocks:     set.Block,
		Milestones: set.Milestone,
		Answers:    set.SubmittedAnswer,
		Tools:      set.SimpleInteractiveTool,
		Progress:   e.Ledger,
		Passed:     e.Evaluator,
		Notifier:   e.Notifier,
	})
	e.Maintenance = NewMilestoneMaintenance(MilestoneMaintenanceDeps{
		Log:         deps.Log,
		Courses:     set.Course,
		Users:       set.User,
		Blocks:      set.Block,
		Assessments: set.Assessment,
		Milestones:  set.Milestone,
		Progress:    set.MilestoneProgress,
		Ledger:      e.Ledger,
		Passed:      e.Evaluator,
		Notifier:    e.Notifier,
	})
	e.Progress = NewProgressService(ProgressServiceDeps{
		Log:          deps.Log,
		Courses:      set.Course,
		Users:        set.User,
		Assessments:  set.Assessment,
		Milestones:   set.Milestone,
		Progress:     set.MilestoneProgress,
		CoursePassed: set.CoursePassed,
	})
	return e
}
