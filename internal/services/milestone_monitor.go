package services

//go:generate mockgen -source=milestone_monitor.go -destination=../mocks/services/milestone_monitor.go -package=mock_services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-milestones/internal/data/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type TrackOutcome string

const (
	OutcomeRecorded       TrackOutcome = "recorded"
	OutcomeNoChange       TrackOutcome = "no_change"
	OutcomeNotQualifying  TrackOutcome = "not_qualifying"
	OutcomeNoMilestones   TrackOutcome = "no_milestones"
	OutcomeNotFound       TrackOutcome = "not_found"
	OutcomeCourseFinished TrackOutcome = "course_finished"
	OutcomeFailed         TrackOutcome = "failed"
)

// TrackResult reports what one tracked interaction did. Achieved is true when
// at least one milestone became achieved during the call. Err is set only for
// unexpected failures; callers decide whether to log or retry.
type TrackResult struct {
	Achieved     bool
	Outcome      TrackOutcome
	Credited     int
	CoursePassed bool
	Err          error
}

// MilestoneMonitor records student interactions against the course's milestones.
type MilestoneMonitor interface {
	TrackInteraction(ctx context.Context, course *types.Course, student *types.User, block *types.Block, opts TrackOptions) (TrackResult, error)
	TrackInteractionByID(ctx context.Context, courseID, studentID, blockID uuid.UUID, opts TrackOptions) TrackResult
}

type MilestoneMonitorDeps struct {
	Log        *logger.Logger
	Courses    repos.CourseRepo
	Users      repos.UserRepo
	Blocks     repos.BlockRepo
	Milestones repos.MilestoneRepo
	Answers    repos.SubmittedAnswerRepo
	Tools      repos.SimpleInteractiveToolRepo
	Progress   domainagg.MilestoneProgressAggregate
	Passed     CoursePassedEvaluator
	Notifier   MilestoneNotifier
	Now        func() time.Time
}

type milestoneMonitor struct {
	log      *logger.Logger
	deps     MilestoneMonitorDeps
	resolver interactionResolver
}

func NewMilestoneMonitor(deps MilestoneMonitorDeps) MilestoneMonitor {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &milestoneMonitor{
		log:      deps.Log.With("service", "MilestoneMonitor"),
		deps:     deps,
		resolver: interactionResolver{answers: deps.Answers, tools: deps.Tools},
	}
}

func (s *milestoneMonitor) TrackInteraction(ctx context.Context, course *types.Course, student *types.User, block *types.Block, opts TrackOptions) (TrackResult, error) {
	const op = "Milestones.TrackInteraction"
	res := TrackResult{Outcome: OutcomeNoChange}
	if course == nil || student == nil || block == nil {
		return TrackResult{Outcome: OutcomeFailed}, domainagg.NewError(domainagg.CodeValidation, op, "course, student and block are required", nil)
	}
	if course.HasFinished(s.deps.Now()) {
		return TrackResult{Outcome: OutcomeCourseFinished}, aggregates.MapError(op, aggregates.CourseFinishedError(fmt.Sprintf("course %s has finished", course.Slug)))
	}

	ctx, span := observability.StartSpan(ctx, "milestones.track_interaction",
		observability.CourseAttr(course.ID),
		observability.AttrBlockType.String(string(block.Type)),
	)
	defer span.End()
	dbc := dbctx.Context{Ctx: ctx}

	interaction, ok, err := s.resolver.resolve(dbc, student.ID, block, opts)
	if err != nil {
		observability.FailSpan(span, err)
		return TrackResult{Outcome: OutcomeFailed}, err
	}
	if !ok {
		observability.Current().IncInteraction(string(block.Type), string(OutcomeNotQualifying))
		return TrackResult{Outcome: OutcomeNotQualifying}, nil
	}
	facts, err := FactsOf(interaction)
	if err != nil {
		return TrackResult{Outcome: OutcomeFailed}, err
	}

	candidates, err := s.deps.Milestones.ListByCourseAndType(dbc, course.ID, facts.MilestoneType)
	if err != nil {
		return TrackResult{Outcome: OutcomeFailed}, err
	}
	if len(candidates) == 0 {
		observability.Current().IncInteraction(facts.Kind, string(OutcomeNoMilestones))
		return TrackResult{Outcome: OutcomeNoMilestones}, nil
	}

	needsPassCheck := false
	for _, m := range candidates {
		if m.CountGradedOnly && !facts.Graded {
			continue
		}
		rec, err := s.deps.Progress.RecordBlock(ctx, domainagg.RecordBlockInput{
			CourseID:    course.ID,
			MilestoneID: m.ID,
			StudentID:   student.ID,
			BlockID:     block.ID,
			Score:       facts.Score,
		})
		if err != nil {
			observability.FailSpan(span, err)
			observability.Current().IncInteraction(facts.Kind, string(OutcomeFailed))
			res.Outcome = OutcomeFailed
			if domainagg.IsCode(err, domainagg.CodeCourseFinished) {
				res.Outcome = OutcomeCourseFinished
			}
			return res, err
		}
		// An achieved required milestone always re-checks the course, so a
		// retry after a failed pass check still creates the course_passed row.
		if m.RequiredToPass && (rec.JustAchieved || rec.AlreadyAchieved) {
			needsPassCheck = true
		}
		if rec.AlreadyAchieved || !rec.Credited {
			continue
		}
		res.Credited++
		res.Outcome = OutcomeRecorded
		if rec.JustAchieved {
			res.Achieved = true
			observability.Current().IncMilestoneAchieved(string(m.Type))
			if s.deps.Notifier != nil {
				s.deps.Notifier.MilestoneCompleted(ctx, student.ID, m, rec.Count, rec.TotalScore)
			}
		} else if s.deps.Notifier != nil {
			s.deps.Notifier.MilestoneProgressed(ctx, student.ID, m, rec.Count, rec.TotalScore)
		}
	}
	observability.Current().IncInteraction(facts.Kind, string(res.Outcome))

	if needsPassCheck && s.deps.Passed != nil {
		passed, err := s.deps.Passed.Evaluate(ctx, course.ID, student.ID)
		if err != nil {
			s.log.Warn("course passed evaluation failed", "course_id", course.ID, "student_id", student.ID, "error", err)
			return res, err
		}
		res.CoursePassed = passed
	}
	return res, nil
}

func (s *milestoneMonitor) TrackInteractionByID(ctx context.Context, courseID, studentID, blockID uuid.UUID, opts TrackOptions) TrackResult {
	log := s.log.With("course_id", courseID, "student_id", studentID, "block_id", blockID)
	dbc := dbctx.Context{Ctx: ctx}

	course, err := s.deps.Courses.GetByID(dbc, courseID)
	if err != nil {
		return TrackResult{Outcome: OutcomeFailed, Err: err}
	}
	student, err := s.deps.Users.GetByID(dbc, studentID)
	if err != nil {
		return TrackResult{Outcome: OutcomeFailed, Err: err}
	}
	block, err := s.deps.Blocks.GetByID(dbc, blockID)
	if err != nil {
		return TrackResult{Outcome: OutcomeFailed, Err: err}
	}
	if course == nil || student == nil || block == nil || block.CourseID != courseID {
		log.Info("track interaction skipped: entity not found",
			"course_found", course != nil, "student_found", student != nil, "block_found", block != nil)
		return TrackResult{Outcome: OutcomeNotFound}
	}

	res, err := s.TrackInteraction(ctx, course, student, block, opts)
	switch {
	case err == nil:
		return res
	case domainagg.IsCode(err, domainagg.CodeCourseFinished):
		log.Info("track interaction skipped: course has finished")
		return TrackResult{Outcome: OutcomeCourseFinished}
	case domainagg.IsCode(err, domainagg.CodeNotFound):
		log.Info("track interaction skipped: entity disappeared", "error", err)
		return TrackResult{Outcome: OutcomeNotFound}
	default:
		res.Err = err
		return res
	}
}
