package services

//go:generate mockgen -source=milestone_maintenance.go -destination=../mocks/services/milestone_maintenance.go -package=mock_services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-milestones/internal/data/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/domain/milestones"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

// MilestoneMaintenance repairs CORRECT_ANSWERS progress after answers or
// assessments change. Student and assessment are optional filters.
type MilestoneMaintenance interface {
	RemoveAssessmentFromProgress(ctx context.Context, course *types.Course, student *types.User, assessment *types.Assessment) (int, error)
	RescoreAssessmentProgress(ctx context.Context, course *types.Course, student *types.User, assessment *types.Assessment) (int, error)

	RemoveAssessmentFromProgressByID(ctx context.Context, courseID uuid.UUID, studentID, assessmentID *uuid.UUID) (int, error)
	RescoreAssessmentProgressByID(ctx context.Context, courseID uuid.UUID, studentID, assessmentID *uuid.UUID) (int, error)
}

type MilestoneMaintenanceDeps struct {
	Log         *logger.Logger
	Courses     repos.CourseRepo
	Users       repos.UserRepo
	Blocks      repos.BlockRepo
	Assessments repos.AssessmentRepo
	Milestones  repos.MilestoneRepo
	Progress    repos.MilestoneProgressRepo
	Ledger      domainagg.MilestoneProgressAggregate
	Passed      CoursePassedEvaluator
	Notifier    MilestoneNotifier
	Now         func() time.Time
}

type milestoneMaintenance struct {
	log  *logger.Logger
	deps MilestoneMaintenanceDeps
}

func NewMilestoneMaintenance(deps MilestoneMaintenanceDeps) MilestoneMaintenance {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &milestoneMaintenance{
		log:  deps.Log.With("service", "MilestoneMaintenance"),
		deps: deps,
	}
}

func (s *milestoneMaintenance) guard(op string, course *types.Course) error {
	if course == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "course is required", nil)
	}
	if course.HasFinished(s.deps.Now()) {
		return aggregates.MapError(op, aggregates.CourseFinishedError(fmt.Sprintf("course %s has finished", course.Slug)))
	}
	return nil
}

func scopeOf(course *types.Course, student *types.User) domainagg.ProgressScope {
	scope := domainagg.ProgressScope{CourseID: course.ID, MilestoneType: string(milestones.TypeCorrectAnswers)}
	if student != nil {
		id := student.ID
		scope.StudentID = &id
	}
	return scope
}

func (s *milestoneMaintenance) RemoveAssessmentFromProgress(ctx context.Context, course *types.Course, student *types.User, assessment *types.Assessment) (int, error) {
	const op = "Milestones.RemoveAssessmentFromProgress"
	if err := s.guard(op, course); err != nil {
		return 0, err
	}
	ctx, span := observability.StartSpan(ctx, "milestones.remove_assessment",
		observability.CourseAttr(course.ID),
		observability.AttrFiltered.Bool(assessment != nil),
	)
	defer span.End()

	scope := scopeOf(course, student)
	if assessment == nil {
		res, err := s.deps.Ledger.DeleteProgress(ctx, domainagg.DeleteProgressInput{Scope: scope})
		if err != nil {
			observability.FailSpan(span, err)
			return 0, err
		}
		s.log.Info("milestone progress deleted", "course_id", course.ID, "rows", res.RowsDeleted)
		return res.RowsDeleted, nil
	}

	res, err := s.deps.Ledger.RemoveBlock(ctx, domainagg.RemoveBlockInput{Scope: scope, BlockID: assessment.BlockID})
	if err != nil {
		observability.FailSpan(span, err)
		return 0, err
	}
	observability.Current().AddBlockRemoved(res.RowsUpdated)
	s.log.Info("assessment removed from milestone progress",
		"course_id", course.ID, "assessment_id", assessment.ID, "rows", res.RowsUpdated)
	return res.RowsUpdated, nil
}

func (s *milestoneMaintenance) RescoreAssessmentProgress(ctx context.Context, course *types.Course, student *types.User, assessment *types.Assessment) (int, error) {
	const op = "Milestones.RescoreAssessmentProgress"
	if err := s.guard(op, course); err != nil {
		return 0, err
	}
	ctx, span := observability.StartSpan(ctx, "milestones.rescore_assessment",
		observability.CourseAttr(course.ID),
		observability.AttrFiltered.Bool(assessment != nil),
	)
	defer span.End()

	filter := repos.ProgressFilter{CourseID: course.ID, MilestoneType: milestones.TypeCorrectAnswers}
	if student != nil {
		id := student.ID
		filter.StudentID = &id
	}
	var blockID *uuid.UUID
	if assessment != nil {
		id := assessment.BlockID
		blockID = &id
		filter.CreditsBlockID = &id
	}
	ids, err := s.deps.Progress.ListIDs(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		observability.FailSpan(span, err)
		return 0, aggregates.MapError(op, err)
	}

	processed := 0
	passCheck := map[uuid.UUID]bool{}
	for _, id := range ids {
		res, err := s.deps.Ledger.Rescore(ctx, domainagg.RescoreInput{ProgressID: id, BlockID: blockID})
		if err != nil {
			// Rows deleted concurrently are skipped.
			if domainagg.IsCode(err, domainagg.CodeNotFound) {
				continue
			}
			observability.FailSpan(span, err)
			observability.Current().AddRescored(processed)
			return processed, err
		}
		processed++
		// Rows achieved by an earlier, interrupted run still need the pass check.
		if res.RequiredToPass && res.Achieved {
			passCheck[res.StudentID] = true
		}
		if !res.JustAchieved {
			continue
		}
		observability.Current().IncMilestoneAchieved(string(milestones.TypeCorrectAnswers))
		if s.deps.Notifier != nil {
			if m, err := s.deps.Milestones.GetByID(dbctx.Context{Ctx: ctx}, res.MilestoneID); err == nil && m != nil {
				s.deps.Notifier.MilestoneCompleted(ctx, res.StudentID, m, res.Count, res.TotalScore)
			}
		}
	}
	observability.Current().AddRescored(processed)

	if s.deps.Passed != nil {
		for studentID := range passCheck {
			if _, err := s.deps.Passed.Evaluate(ctx, course.ID, studentID); err != nil {
				s.log.Warn("course passed evaluation failed after rescore",
					"course_id", course.ID, "student_id", studentID, "error", err)
				return processed, err
			}
		}
	}
	s.log.Info("milestone progress rescored", "course_id", course.ID, "rows", processed)
	return processed, nil
}

// resolve loads the entities behind a by-id call. ok is false when any of
// them is unknown.
func (s *milestoneMaintenance) resolve(ctx context.Context, courseID uuid.UUID, studentID, assessmentID *uuid.UUID) (*types.Course, *types.User, *types.Assessment, bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	course, err := s.deps.Courses.GetByID(dbc, courseID)
	if err != nil || course == nil {
		return nil, nil, nil, false, err
	}
	var student *types.User
	if studentID != nil {
		student, err = s.deps.Users.GetByID(dbc, *studentID)
		if err != nil || student == nil {
			return nil, nil, nil, false, err
		}
	}
	var assessment *types.Assessment
	if assessmentID != nil {
		assessment, err = s.deps.Assessments.GetByID(dbc, *assessmentID)
		if err != nil || assessment == nil {
			return nil, nil, nil, false, err
		}
		block, err := s.deps.Blocks.GetByID(dbc, assessment.BlockID)
		if err != nil || block == nil || block.CourseID != courseID {
			return nil, nil, nil, false, err
		}
	}
	return course, student, assessment, true, nil
}

type maintenanceFunc func(ctx context.Context, course *types.Course, student *types.User, assessment *types.Assessment) (int, error)

func (s *milestoneMaintenance) byID(ctx context.Context, name string, courseID uuid.UUID, studentID, assessmentID *uuid.UUID, fn maintenanceFunc) (int, error) {
	log := s.log.With("op", name, "course_id", courseID, "student_id", studentID, "assessment_id", assessmentID)
	course, student, assessment, ok, err := s.resolve(ctx, courseID, studentID, assessmentID)
	if err != nil {
		return 0, err
	}
	if !ok {
		log.Info("maintenance skipped: entity not found")
		return 0, nil
	}
	n, err := fn(ctx, course, student, assessment)
	if domainagg.IsCode(err, domainagg.CodeCourseFinished) {
		log.Info("maintenance skipped: course has finished")
		return 0, nil
	}
	return n, err
}

func (s *milestoneMaintenance) RemoveAssessmentFromProgressByID(ctx context.Context, courseID uuid.UUID, studentID, assessmentID *uuid.UUID) (int, error) {
	return s.byID(ctx, "remove", courseID, studentID, assessmentID, s.RemoveAssessmentFromProgress)
}

func (s *milestoneMaintenance) RescoreAssessmentProgressByID(ctx context.Context, courseID uuid.UUID, studentID, assessmentID *uuid.UUID) (int, error) {
	return s.byID(ctx, "rescore", courseID, studentID, assessmentID, s.RescoreAssessmentProgress)
}
