package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

type CoursePassedAggregateDeps struct {
	Base BaseDeps

	Courses      repos.CourseRepo
	Milestones   repos.MilestoneRepo
	Progress     repos.MilestoneProgressRepo
	CoursePassed repos.CoursePassedRepo
}

type coursePassedAggregate struct {
	deps CoursePassedAggregateDeps
}

func NewCoursePassedAggregate(deps CoursePassedAggregateDeps) domainagg.CoursePassedAggregate {
	deps.Base = deps.Base.withDefaults()
	return &coursePassedAggregate{deps: deps}
}

func (a *coursePassedAggregate) Contract() domainagg.Contract {
	return domainagg.CoursePassedAggregateContract
}

func (a *coursePassedAggregate) AwardIfPassed(ctx context.Context, in domainagg.AwardIfPassedInput) (domainagg.AwardIfPassedResult, error) {
	op := domainagg.CoursePassedAggregateContract.Op("AwardIfPassed")
	var out domainagg.AwardIfPassedResult
	if in.CourseID == uuid.Nil || in.StudentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "course_id and student_id are required", nil)
	}
	d := a.deps
	if d.Courses == nil || d.Milestones == nil || d.Progress == nil || d.CoursePassed == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "course passed repos not configured", nil)
	}
	passedAt := in.PassedAt.UTC()
	if in.PassedAt.IsZero() {
		passedAt = d.Base.Now()
	}
	// Postgres keeps microseconds; the returned timestamp must match the row.
	passedAt = passedAt.Truncate(time.Microsecond)

	err := executeWrite(ctx, d.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.AwardIfPassedResult{}
		if err := requireOpenCourse(dbc, d.Courses, op, in.CourseID, passedAt); err != nil {
			return err
		}
		existing, err := d.CoursePassed.Get(dbc, in.CourseID, in.StudentID)
		if err != nil {
			return err
		}
		if existing != nil {
			out.AlreadyPassed = true
			out.CoursePassedID = existing.ID
			out.PassedAt = existing.PassedAt
			return nil
		}

		required, err := d.Milestones.ListRequiredToPass(dbc, in.CourseID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(required))
		for _, m := range required {
			ids = append(ids, m.ID)
		}
		achieved, err := d.Progress.CountAchieved(dbc, in.CourseID, in.StudentID, ids)
		if err != nil {
			return err
		}
		out.RequiredCount = len(ids)
		out.AchievedCount = int(achieved)
		if out.AchievedCount < out.RequiredCount {
			return nil
		}

		row, created, err := d.CoursePassed.CreateIfAbsent(dbc, in.CourseID, in.StudentID, passedAt)
		if err != nil {
			return err
		}
		if row != nil {
			out.CoursePassedID = row.ID
			out.PassedAt = row.PassedAt
		}
		out.Awarded = created
		out.AlreadyPassed = !created
		return nil
	})
	return out, err
}
