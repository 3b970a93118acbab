package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos/testutil"
	mock_badges "github.com/yungbote/neurobridge-milestones/internal/mocks/badges"
	mock_sendgrid "github.com/yungbote/neurobridge-milestones/internal/mocks/sendgrid"
	mock_services "github.com/yungbote/neurobridge-milestones/internal/mocks/services"
	"github.com/yungbote/neurobridge-milestones/internal/platform/badges"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/sendgrid"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

type awarderMocks struct {
	notifier *mock_services.MockMilestoneNotifier
	badges   *mock_badges.MockClient
	mailer   *mock_sendgrid.MockClient
}

func newAwarder(t *testing.T, set repos.Set) (services.Awarder, awarderMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := awarderMocks{
		notifier: mock_services.NewMockMilestoneNotifier(ctrl),
		badges:   mock_badges.NewMockClient(ctrl),
		mailer:   mock_sendgrid.NewMockClient(ctrl),
	}
	return services.NewAwarder(services.AwarderDeps{
		Log:          testutil.Logger(t),
		Certificates: set.Certificate,
		Notifier:     m.notifier,
		Badges:       m.badges,
		Mailer:       m.mailer,
	}), m
}

func TestAwardCoursePassedRunsEveryStep(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	set := repos.NewSet(tx, testutil.Logger(t))
	awarder, m := newAwarder(t, set)

	course := testutil.SeedCourse(t, ctx, tx, nil)
	course.EnableCertificates = true
	course.EnableBadges = true
	course.BadgeClassSlug = "finisher"
	student := testutil.SeedUser(t, ctx, tx, "ada@example.test")
	passedAt := time.Now().UTC()

	m.notifier.EXPECT().CoursePassed(gomock.Any(), course, student.ID, passedAt)
	m.badges.EXPECT().
		IssueAssertion(gomock.Any(), badges.AssertionRequest{
			BadgeClassSlug: "finisher",
			RecipientEmail: "ada@example.test",
			RecipientName:  student.Name,
			CourseSlug:     course.Slug,
		}).
		Return(&badges.Assertion{ID: "assert-1"}, nil)
	m.notifier.EXPECT().BadgeEarned(gomock.Any(), course, student.ID, "assert-1")
	m.mailer.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
			assert.Equal(t, "You passed Course", req.Subject)
			require.Len(t, req.To, 1)
			assert.Equal(t, "ada@example.test", req.To[0].Email)
			assert.Contains(t, req.Text, "certificate")
			assert.Equal(t, []string{"course_passed"}, req.Categories)
			return &sendgrid.SendEmailResult{StatusCode: 202}, nil
		})

	err := awarder.AwardCoursePassed(ctx, services.AwardInput{Course: course, Student: student, PassedAt: passedAt})
	require.NoError(t, err)

	cert, err := set.Certificate.Get(dbctx.Context{Ctx: ctx, Tx: tx}, course.ID, student.ID)
	require.NoError(t, err)
	require.NotNil(t, cert)
}

func TestAwardCoursePassedJoinsFailures(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	set := repos.NewSet(tx, testutil.Logger(t))
	awarder, m := newAwarder(t, set)

	course := testutil.SeedCourse(t, ctx, tx, nil)
	course.EnableBadges = true
	course.BadgeClassSlug = "finisher"
	student := testutil.SeedUser(t, ctx, tx, "")

	m.notifier.EXPECT().CoursePassed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	m.badges.EXPECT().IssueAssertion(gomock.Any(), gomock.Any()).Return(nil, errors.New("provider down"))
	m.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil, errors.New("smtp refused"))

	err := awarder.AwardCoursePassed(ctx, services.AwardInput{Course: course, Student: student, PassedAt: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "badge: provider down")
	assert.Contains(t, err.Error(), "email: smtp refused")

	cert, err := set.Certificate.Get(dbctx.Context{Ctx: ctx, Tx: tx}, course.ID, student.ID)
	require.NoError(t, err)
	assert.Nil(t, cert, "certificates are disabled for this course")
}

func TestAwardCoursePassedSkipsDisabledSteps(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	set := repos.NewSet(tx, testutil.Logger(t))
	ctrl := gomock.NewController(t)
	notifier := mock_services.NewMockMilestoneNotifier(ctrl)
	awarder := services.NewAwarder(services.AwarderDeps{Log: testutil.Logger(t), Certificates: set.Certificate, Notifier: notifier})

	course := testutil.SeedCourse(t, ctx, tx, nil)
	course.EnableBadges = true
	student := testutil.SeedUser(t, ctx, tx, "")
	notifier.EXPECT().CoursePassed(gomock.Any(), course, student.ID, gomock.Any())

	require.NoError(t, awarder.AwardCoursePassed(ctx, services.AwardInput{Course: course, Student: student, PassedAt: time.Now()}))
	require.Error(t, awarder.AwardCoursePassed(ctx, services.AwardInput{}))
}

func TestEvaluatorLogsAwardFailureButReportsPass(t *testing.T) {
	ctrl := gomock.NewController(t)
	awarder := mock_services.NewMockAwarder(ctrl)
	awarder.EXPECT().AwardCoursePassed(gomock.Any(), gomock.Any()).Return(errors.New("badge: provider down"))
	h := newEngineHarness(t, awarder)

	course := testutil.SeedCourse(t, h.ctx, h.tx, nil)
	student := testutil.SeedUser(t, h.ctx, h.tx, "")

	// With no required milestones every student passes on first evaluation.
	passed, err := h.engine.Evaluator.Evaluate(h.ctx, course.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, passed)

	row, err := h.set.CoursePassed.Get(h.dbc(), course.ID, student.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
}

func TestEvaluatorAwardsWithStoredPassedAt(t *testing.T) {
	ctrl := gomock.NewController(t)
	awarder := mock_services.NewMockAwarder(ctrl)
	var got services.AwardInput
	awarder.EXPECT().AwardCoursePassed(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in services.AwardInput) error {
			got = in
			return nil
		})
	h := newEngineHarness(t, awarder)

	course := testutil.SeedCourse(t, h.ctx, h.tx, nil)
	student := testutil.SeedUser(t, h.ctx, h.tx, "")
	passed, err := h.engine.Evaluator.Evaluate(h.ctx, course.ID, student.ID)
	require.NoError(t, err)
	require.True(t, passed)

	row, err := h.set.CoursePassed.Get(h.dbc(), course.ID, student.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, row.ID, got.CoursePassedID)
	assert.True(t, got.PassedAt.Equal(row.PassedAt), "award %v, stored %v", got.PassedAt, row.PassedAt)
}
