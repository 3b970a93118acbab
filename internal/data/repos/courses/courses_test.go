package courses

import (
	"context"
	"testing"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

func TestSubmittedAnswerRepoList(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	answers := NewSubmittedAnswerRepo(tx, log)
	assessments := NewAssessmentRepo(tx, log)

	course := testutil.SeedCourse(t, ctx, tx, nil)
	student := testutil.SeedUser(t, ctx, tx, "answers@example.com")
	graded := testutil.SeedAssessment(t, ctx, tx, course.ID, 2, true)
	ungraded := testutil.SeedAssessment(t, ctx, tx, course.ID, 3, false)
	a1 := testutil.SeedAnswer(t, ctx, tx, course.ID, student.ID, graded, courses.AnswerStatusComplete, 2)
	testutil.SeedAnswer(t, ctx, tx, course.ID, student.ID, ungraded, courses.AnswerStatusIncomplete, 0)

	all, err := answers.List(dbc, AnswerQuery{CourseID: course.ID, StudentID: student.ID})
	if err != nil || len(all) != 2 {
		t.Fatalf("List all: err=%v rows=%d", err, len(all))
	}
	for _, a := range all {
		if a.Assessment == nil {
			t.Fatalf("assessment not preloaded for %s", a.ID)
		}
	}

	onlyGraded, err := answers.List(dbc, AnswerQuery{CourseID: course.ID, StudentID: student.ID, GradedOnly: true})
	if err != nil || len(onlyGraded) != 1 || onlyGraded[0].ID != a1.ID {
		t.Fatalf("List graded: err=%v rows=%v", err, onlyGraded)
	}

	byAssessment, err := answers.List(dbc, AnswerQuery{CourseID: course.ID, StudentID: student.ID, AssessmentID: testutil.PtrUUID(ungraded.ID)})
	if err != nil || len(byAssessment) != 1 {
		t.Fatalf("List by assessment: err=%v rows=%v", err, byAssessment)
	}

	if err := answers.UpdateGrade(dbc, a1.ID, courses.AnswerStatusCorrect, 5); err != nil {
		t.Fatalf("UpdateGrade: %v", err)
	}
	got, err := answers.GetByID(dbc, a1.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v row=%v", err, got)
	}
	if got.Status != courses.AnswerStatusCorrect || got.Score != 5 || got.Assessment == nil || got.Assessment.ID != graded.ID {
		t.Fatalf("GetByID after UpdateGrade: %+v", got)
	}

	listed, err := assessments.ListByCourse(dbc, course.ID, true)
	if err != nil || len(listed) != 1 || listed[0].ID != graded.ID {
		t.Fatalf("ListByCourse graded: err=%v rows=%v", err, listed)
	}
	byBlock, err := assessments.GetByBlockID(dbc, ungraded.BlockID)
	if err != nil || byBlock == nil || byBlock.ID != ungraded.ID {
		t.Fatalf("GetByBlockID: err=%v row=%v", err, byBlock)
	}
}

func TestCourseRepoMissingReturnsNil(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCourseRepo(tx, testutil.Logger(t))

	c := testutil.SeedCourse(t, ctx, tx, nil)
	got, err := repo.GetByID(dbc, c.ID)
	if err != nil || got == nil || got.Slug != c.Slug {
		t.Fatalf("GetByID: err=%v row=%v", err, got)
	}
	bySlug, err := repo.GetBySlug(dbc, c.Slug)
	if err != nil || bySlug == nil || bySlug.ID != c.ID {
		t.Fatalf("GetBySlug: err=%v row=%v", err, bySlug)
	}
	missing, err := repo.GetByID(dbc, testutil.SeedUser(t, ctx, tx, "nobody@example.com").ID)
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v row=%v", err, missing)
	}
}
