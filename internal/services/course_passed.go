package services

//go:generate mockgen -source=course_passed.go -destination=../mocks/services/course_passed.go -package=mock_services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/badges"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/platform/sendgrid"
)

// AwardInput describes a freshly created course_passed row.
type AwardInput struct {
	Course         *types.Course
	Student        *types.User
	CoursePassedID uuid.UUID
	PassedAt       time.Time
}

// Awarder performs the side effects of passing a course.
type Awarder interface {
	AwardCoursePassed(ctx context.Context, in AwardInput) error
}

// CoursePassedEvaluator checks a student's required milestones and awards the course once.
type CoursePassedEvaluator interface {
	// Evaluate returns true only for the call that created the course_passed row.
	Evaluate(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
}

type coursePassedEvaluator struct {
	log     *logger.Logger
	agg     domainagg.CoursePassedAggregate
	courses repos.CourseRepo
	users   repos.UserRepo
	awarder Awarder
}

func NewCoursePassedEvaluator(
	baseLog *logger.Logger,
	agg domainagg.CoursePassedAggregate,
	courses repos.CourseRepo,
	users repos.UserRepo,
	awarder Awarder,
) CoursePassedEvaluator {
	return &coursePassedEvaluator{
		log:     baseLog.With("service", "CoursePassedEvaluator"),
		agg:     agg,
		courses: courses,
		users:   users,
		awarder: awarder,
	}
}

func (s *coursePassedEvaluator) Evaluate(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	if s == nil || s.agg == nil {
		return false, fmt.Errorf("course passed evaluator not configured")
	}
	ctx, span := observability.StartSpan(ctx, "milestones.course_passed.evaluate", observability.CourseAttr(courseID))
	defer span.End()

	res, err := s.agg.AwardIfPassed(ctx, domainagg.AwardIfPassedInput{CourseID: courseID, StudentID: studentID})
	if err != nil {
		observability.FailSpan(span, err)
		return false, err
	}
	if !res.Awarded {
		return false, nil
	}
	observability.Current().IncCoursePassed()
	s.log.Info("Course passed", "course_id", courseID, "student_id", studentID, "required", res.RequiredCount)

	if s.awarder == nil {
		return true, nil
	}
	dbc := dbctx.Context{Ctx: ctx}
	course, err := s.courses.GetByID(dbc, courseID)
	if err != nil || course == nil {
		s.log.Warn("award skipped: course unavailable", "course_id", courseID, "error", err)
		return true, nil
	}
	student, err := s.users.GetByID(dbc, studentID)
	if err != nil || student == nil {
		s.log.Warn("award skipped: student unavailable", "course_id", courseID, "student_id", studentID, "error", err)
		return true, nil
	}
	if err := s.awarder.AwardCoursePassed(ctx, AwardInput{
		Course:         course,
		Student:        student,
		CoursePassedID: res.CoursePassedID,
		PassedAt:       res.PassedAt,
	}); err != nil {
		s.log.Warn("course passed award incomplete", "course_id", courseID, "student_id", studentID, "error", err)
	}
	return true, nil
}

type AwarderDeps struct {
	Log          *logger.Logger
	Certificates repos.CertificateRepo
	Notifier     MilestoneNotifier
	// Badges and Mailer are optional.
	Badges badges.Client
	Mailer sendgrid.Client
}

type courseAwarder struct {
	log          *logger.Logger
	certificates repos.CertificateRepo
	notify       MilestoneNotifier
	badges       badges.Client
	mailer       sendgrid.Client
}

func NewAwarder(deps AwarderDeps) Awarder {
	return &courseAwarder{
		log:          deps.Log.With("service", "CourseAwarder"),
		certificates: deps.Certificates,
		notify:       deps.Notifier,
		badges:       deps.Badges,
		mailer:       deps.Mailer,
	}
}

// AwardCoursePassed runs every award step even when an earlier one fails and
// returns the joined failures.
func (a *courseAwarder) AwardCoursePassed(ctx context.Context, in AwardInput) error {
	if in.Course == nil || in.Student == nil {
		return fmt.Errorf("award: course and student required")
	}
	var errs []error

	if a.notify != nil {
		a.notify.CoursePassed(ctx, in.Course, in.Student.ID, in.PassedAt)
	}

	if in.Course.EnableCertificates && a.certificates != nil {
		if _, _, err := a.certificates.CreateIfAbsent(dbctx.Context{Ctx: ctx}, in.Course.ID, in.Student.ID, in.PassedAt); err != nil {
			errs = append(errs, fmt.Errorf("certificate: %w", err))
		}
	}

	if in.Course.EnableBadges && a.badges != nil && strings.TrimSpace(in.Course.BadgeClassSlug) != "" {
		assertion, err := a.badges.IssueAssertion(ctx, badges.AssertionRequest{
			BadgeClassSlug: in.Course.BadgeClassSlug,
			RecipientEmail: in.Student.Email,
			RecipientName:  in.Student.Name,
			CourseSlug:     in.Course.Slug,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("badge: %w", err))
		} else if a.notify != nil {
			a.notify.BadgeEarned(ctx, in.Course, in.Student.ID, assertion.ID)
		}
	}

	if a.mailer != nil && strings.TrimSpace(in.Student.Email) != "" {
		_, err := a.mailer.Send(ctx, sendgrid.SendEmailRequest{
			To:         []sendgrid.EmailAddress{{Email: in.Student.Email, Name: in.Student.Name}},
			Subject:    fmt.Sprintf("You passed %s", in.Course.Title),
			Text:       congratulationText(in.Course, in.Student),
			Categories: []string{"course_passed"},
			CustomArgs: map[string]string{"course_id": in.Course.ID.String()},
		})
		if err != nil {
			observability.Current().IncNotification("email", "error")
			errs = append(errs, fmt.Errorf("email: %w", err))
		} else {
			observability.Current().IncNotification("email", "ok")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	a.log.Debug("course passed award complete", "course_id", in.Course.ID, "student_id", in.Student.ID)
	return nil
}

func congratulationText(course *types.Course, student *types.User) string {
	name := strings.TrimSpace(student.Name)
	if name == "" {
		name = "there"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Congratulations! You have completed every requirement of %s.\n", course.Title)
	if course.EnableCertificates {
		b.WriteString("Your certificate is now available from the course page.\n")
	}
	return b.String()
}
