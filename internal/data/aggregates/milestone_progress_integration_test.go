package aggregates_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/data/aggregates"
	aggtestutil "github.com/yungbote/neurobridge-milestones/internal/data/aggregates/testutil"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos/testutil"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
	"github.com/yungbote/neurobridge-milestones/internal/domain/milestones"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

type harness struct {
	ctx      context.Context
	tx       *gorm.DB
	set      repos.Set
	progress domainagg.MilestoneProgressAggregate
	passed   domainagg.CoursePassedAggregate
}

func newHarness(t *testing.T, base aggregates.BaseDeps) *harness {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	set := repos.NewSet(tx, log)
	base.DB = tx
	base.Log = log
	return &harness{
		ctx: context.Background(),
		tx:  tx,
		set: set,
		progress: aggregates.NewMilestoneProgressAggregate(aggregates.MilestoneProgressAggregateDeps{
			Base:        base,
			Courses:     set.Course,
			Milestones:  set.Milestone,
			Progress:    set.MilestoneProgress,
			Blocks:      set.MilestoneProgressBlock,
			Assessments: set.Assessment,
			Answers:     set.SubmittedAnswer,
		}),
		passed: aggregates.NewCoursePassedAggregate(aggregates.CoursePassedAggregateDeps{
			Base:         base,
			Courses:      set.Course,
			Milestones:   set.Milestone,
			Progress:     set.MilestoneProgress,
			CoursePassed: set.CoursePassed,
		}),
	}
}

func (h *harness) dbc() dbctx.Context { return dbctx.Context{Ctx: h.ctx, Tx: h.tx} }

func (h *harness) record(t *testing.T, courseID, milestoneID, studentID, blockID uuid.UUID, score int) domainagg.RecordBlockResult {
	t.Helper()
	res, err := h.progress.RecordBlock(h.ctx, domainagg.RecordBlockInput{
		CourseID:    courseID,
		MilestoneID: milestoneID,
		StudentID:   studentID,
		BlockID:     blockID,
		Score:       score,
	})
	if err != nil {
		t.Fatalf("RecordBlock: %v", err)
	}
	return res
}

func (h *harness) blocks(t *testing.T, progressID uuid.UUID) map[uuid.UUID]int {
	t.Helper()
	rows, err := h.set.MilestoneProgressBlock.ListByProgressID(h.dbc(), progressID)
	if err != nil {
		t.Fatalf("ListByProgressID: %v", err)
	}
	out := map[uuid.UUID]int{}
	for _, r := range rows {
		out[r.BlockID] = r.Score
	}
	return out
}

func TestRecordBlockIsIdempotentAndAchievesAtThreshold(t *testing.T) {
	h := newHarness(t, aggregates.BaseDeps{})
	course := testutil.SeedCourse(t, h.ctx, h.tx, nil)
	student := testutil.SeedUser(t, h.ctx, h.tx, "")
	m := testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Type: milestones.TypeVideoPlays, Count: 2})
	v1 := testutil.SeedBlock(t, h.ctx, h.tx, course.ID, courses.BlockTypeVideo)
	v2 := testutil.SeedBlock(t, h.ctx, h.tx, course.ID, courses.BlockTypeVideo)
	v3 := testutil.SeedBlock(t, h.ctx, h.tx, course.ID, courses.BlockTypeVideo)

	first := h.record(t, course.ID, m.ID, student.ID, v1.ID, 0)
	if !first.Credited || first.Count != 1 || first.JustAchieved {
		t.Fatalf("first record: %+v", first)
	}
	again := h.record(t, course.ID, m.ID, student.ID, v1.ID, 0)
	if again.Credited || again.Count != 1 {
		t.Fatalf("repeat record must be a no-op: %+v", again)
	}
	second := h.record(t, course.ID, m.ID, student.ID, v2.ID, 0)
	if !second.Credited || second.Count != 2 || !second.JustAchieved {
		t.Fatalf("second record: %+v", second)
	}
	third := h.record(t, course.ID, m.ID, student.ID, v3.ID, 0)
	if !third.AlreadyAchieved || third.Credited || third.Count != 2 {
		t.Fatalf("achieved rows are frozen: %+v", third)
	}

	row, err := h.set.MilestoneProgress.GetByKey(h.dbc(), repos.ProgressKey{CourseID: course.ID, MilestoneID: m.ID, StudentID: student.ID})
	if err != nil || row == nil {
		t.Fatalf("GetByKey: row=%v err=%v", row, err)
	}
	if !row.Achieved || row.AchievedAt == nil || row.Count != 2 {
		t.Fatalf("stored row: %+v", row)
	}
	if got := h.blocks(t, row.ID); len(got) != row.Count {
		t.Fatalf("count must equal credited blocks: count=%d blocks=%v", row.Count, got)
	}
}

func TestRecordBlockRequiresCountAndMinScore(t *testing.T) {
	h := newHarness(t, aggregates.BaseDeps{})
	course := testutil.SeedCourse(t, h.ctx, h.tx, nil)
	student := testutil.SeedUser(t, h.ctx, h.tx, "")
	m := testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Count: 1, MinScore: 5})
	a1 := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 3, true)
	a2 := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 4, true)

	res := h.record(t, course.ID, m.ID, student.ID, a1.BlockID, 3)
	if res.JustAchieved || res.TotalScore != 3 {
		t.Fatalf("count met but score short: %+v", res)
	}
	res = h.record(t, course.ID, m.ID, student.ID, a2.BlockID, 4)
	if !res.JustAchieved || res.Count != 2 || res.TotalScore != 7 {
		t.Fatalf("both requirements met: %+v", res)
	}
}

func TestRecordBlockRefusesFinishedCourse(t *testing.T) {
	h := newHarness(t, aggregates.BaseDeps{})
	course := testutil.SeedCourse(t, h.ctx, h.tx, testutil.PtrTime(time.Now().UTC().Add(-time.Hour)))
	student := testutil.SeedUser(t, h.ctx, h.tx, "")
	m := testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Count: 1})
	a := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 1, true)

	_, err := h.progress.RecordBlock(h.ctx, domainagg.RecordBlockInput{
		CourseID: course.ID, MilestoneID: m.ID, StudentID: student.ID, BlockID: a.BlockID, Score: 1,
	})
	if !domainagg.IsCode(err, domainagg.CodeCourseFinished) {
		t.Fatalf("expected course_finished, got %v", err)
	}
	row, err := h.set.MilestoneProgress.GetByKey(h.dbc(), repos.ProgressKey{CourseID: course.ID, MilestoneID: m.ID, StudentID: student.ID})
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if row != nil {
		t.Fatalf("no progress row may be created for a finished course")
	}
}

func TestRecordBlockValidation(t *testing.T) {
	h := newHarness(t, aggregates.BaseDeps{})
	_, err := h.progress.RecordBlock(h.ctx, domainagg.RecordBlockInput{CourseID: uuid.New()})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestRecordBlockRetriesAfterRolledBackAttempt(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	runner := aggtestutil.FailCommits(tx, aggregates.RetryableError("could not serialize access"), 1)
	hooks := &aggtestutil.HooksRecorder{}
	log := testutil.Logger(t)
	set := repos.NewSet(tx, log)
	agg := aggregates.NewMilestoneProgressAggregate(aggregates.MilestoneProgressAggregateDeps{
		Base: aggregates.BaseDeps{
			DB: tx, Log: log, Runner: runner, Hooks: hooks,
			Retry: aggregates.RetryPolicy{Attempts: 3, Delay: time.Millisecond},
		},
		Courses:    set.Course,
		Milestones: set.Milestone,
		Progress:   set.MilestoneProgress,
		Blocks:     set.MilestoneProgressBlock,
	})
	ctx := context.Background()
	course := testutil.SeedCourse(t, ctx, tx, nil)
	student := testutil.SeedUser(t, ctx, tx, "")
	m := testutil.SeedMilestone(t, ctx, tx, course.ID, testutil.MilestoneSpec{Type: milestones.TypeForumPosts, Count: 3})
	topic := testutil.SeedBlock(t, ctx, tx, course.ID, courses.BlockTypeForumTopic)

	res, err := agg.RecordBlock(ctx, domainagg.RecordBlockInput{
		CourseID: course.ID, MilestoneID: m.ID, StudentID: student.ID, BlockID: topic.ID,
	})
	if err != nil {
		t.Fatalf("RecordBlock: %v", err)
	}
	if !res.Credited || res.Count != 1 {
		t.Fatalf("first attempt must roll back fully, got %+v", res)
	}
	if st := runner.Stats(); st.Rollbacks != 1 || st.Commits != 1 {
		t.Fatalf("runner stats: %+v", st)
	}
	if n := hooks.RetriesFor(domainagg.MilestoneProgressAggregateContract.Op("RecordBlock")); n != 1 {
		t.Fatalf("retries: %d (%v)", n, hooks.Retries)
	}
	if got := hooks.Statuses(); len(got) != 1 || got[0] != "success" {
		t.Fatalf("statuses: %v", got)
	}
}

func TestRemoveBlockSubtractsStoredScoreAndKeepsAchieved(t *testing.T) {
	h := newHarness(t, aggregates.BaseDeps{})
	course := testutil.SeedCourse(t, h.ctx, h.tx, nil)
	s1 := testutil.SeedUser(t, h.ctx, h.tx, "")
	s2 := testutil.SeedUser(t, h.ctx, h.tx, "")
	m := testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Count: 2})
	a1 := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 4, true)
	a2 := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 5, true)

	h.record(t, course.ID, m.ID, s1.ID, a1.BlockID, 4)
	achieved := h.record(t, course.ID, m.ID, s1.ID, a2.BlockID, 5)
	if !achieved.JustAchieved {
		t.Fatalf("setup: s1 should achieve, got %+v", achieved)
	}
	h.record(t, course.ID, m.ID, s2.ID, a2.BlockID, 5)

	scope := domainagg.ProgressScope{CourseID: course.ID, MilestoneType: string(milestones.TypeCorrectAnswers)}
	res, err := h.progress.RemoveBlock(h.ctx, domainagg.RemoveBlockInput{Scope: scope, BlockID: a1.BlockID})
	if err != nil {
		t.Fatalf("RemoveBlock: %v", err)
	}
	if res.RowsUpdated != 1 {
		t.Fatalf("only s1 credits a1: %+v", res)
	}
	row, _ := h.set.MilestoneProgress.GetByKey(h.dbc(), repos.ProgressKey{CourseID: course.ID, MilestoneID: m.ID, StudentID: s1.ID})
	if row.Count != 1 || row.TotalScore != 5 || !row.Achieved {
		t.Fatalf("s1 after remove: %+v", row)
	}

	again, err := h.progress.RemoveBlock(h.ctx, domainagg.RemoveBlockInput{Scope: scope, BlockID: a1.BlockID})
	if err != nil || again.RowsUpdated != 0 {
		t.Fatalf("rerun must be a no-op: res=%+v err=%v", again, err)
	}

	del, err := h.progress.DeleteProgress(h.ctx, domainagg.DeleteProgressInput{Scope: domainagg.ProgressScope{
		CourseID: course.ID, StudentID: &s2.ID, MilestoneType: string(milestones.TypeCorrectAnswers),
	}})
	if err != nil || del.RowsDeleted != 1 {
		t.Fatalf("DeleteProgress: res=%+v err=%v", del, err)
	}
	row, _ = h.set.MilestoneProgress.GetByKey(h.dbc(), repos.ProgressKey{CourseID: course.ID, MilestoneID: m.ID, StudentID: s1.ID})
	if row == nil {
		t.Fatalf("deleting s2 must not touch s1")
	}
}

func TestRescoreUpdatesCreditedScoresAndCreditsFinishedAnswers(t *testing.T) {
	h := newHarness(t, aggregates.BaseDeps{})
	course := testutil.SeedCourse(t, h.ctx, h.tx, nil)
	student := testutil.SeedUser(t, h.ctx, h.tx, "")
	m := testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Count: 2, MinScore: 9})
	a1 := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 5, true)
	a2 := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 4, true)
	a3 := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 3, true)

	// a1 credited with a stale score, a2 finished but never credited,
	// a3 credited but its answer no longer counts.
	testutil.SeedAnswer(t, h.ctx, h.tx, course.ID, student.ID, a1, courses.AnswerStatusComplete, 0)
	testutil.SeedAnswer(t, h.ctx, h.tx, course.ID, student.ID, a2, courses.AnswerStatusComplete, 0)
	testutil.SeedAnswer(t, h.ctx, h.tx, course.ID, student.ID, a3, courses.AnswerStatusIncomplete, 0)
	h.record(t, course.ID, m.ID, student.ID, a1.BlockID, 0)
	rec := h.record(t, course.ID, m.ID, student.ID, a3.BlockID, 3)

	res, err := h.progress.Rescore(h.ctx, domainagg.RescoreInput{ProgressID: rec.ProgressID})
	if err != nil {
		t.Fatalf("Rescore: %v", err)
	}
	if !res.Changed || !res.JustAchieved || res.Count != 3 || res.TotalScore != 9 {
		t.Fatalf("rescore result: %+v", res)
	}
	got := h.blocks(t, rec.ProgressID)
	want := map[uuid.UUID]int{a1.BlockID: 5, a2.BlockID: 4, a3.BlockID: 0}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("block scores: want=%v got=%v", want, got)
		}
	}

	again, err := h.progress.Rescore(h.ctx, domainagg.RescoreInput{ProgressID: rec.ProgressID})
	if err != nil || again.Changed || again.JustAchieved {
		t.Fatalf("second rescore must be stable: res=%+v err=%v", again, err)
	}
}

func TestRescoreTargetBlockLeavesOtherBlocks(t *testing.T) {
	h := newHarness(t, aggregates.BaseDeps{})
	course := testutil.SeedCourse(t, h.ctx, h.tx, nil)
	student := testutil.SeedUser(t, h.ctx, h.tx, "")
	m := testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Count: 5})
	a1 := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 5, true)
	a2 := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 4, true)
	testutil.SeedAnswer(t, h.ctx, h.tx, course.ID, student.ID, a1, courses.AnswerStatusComplete, 0)
	testutil.SeedAnswer(t, h.ctx, h.tx, course.ID, student.ID, a2, courses.AnswerStatusComplete, 1)
	h.record(t, course.ID, m.ID, student.ID, a1.BlockID, 0)
	rec := h.record(t, course.ID, m.ID, student.ID, a2.BlockID, 1)

	res, err := h.progress.Rescore(h.ctx, domainagg.RescoreInput{ProgressID: rec.ProgressID, BlockID: &a2.BlockID})
	if err != nil {
		t.Fatalf("Rescore: %v", err)
	}
	if res.Count != 2 || res.TotalScore != 4 {
		t.Fatalf("only a2 is regraded: %+v", res)
	}
	if got := h.blocks(t, rec.ProgressID); got[a1.BlockID] != 0 || got[a2.BlockID] != 4 {
		t.Fatalf("block scores: %v", got)
	}
}

func TestRescoreRejectsOtherMilestoneTypes(t *testing.T) {
	h := newHarness(t, aggregates.BaseDeps{})
	course := testutil.SeedCourse(t, h.ctx, h.tx, nil)
	student := testutil.SeedUser(t, h.ctx, h.tx, "")
	m := testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Type: milestones.TypeVideoPlays, Count: 1})
	v := testutil.SeedBlock(t, h.ctx, h.tx, course.ID, courses.BlockTypeVideo)
	rec := h.record(t, course.ID, m.ID, student.ID, v.ID, 0)

	_, err := h.progress.Rescore(h.ctx, domainagg.RescoreInput{ProgressID: rec.ProgressID})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	_, err = h.progress.Rescore(h.ctx, domainagg.RescoreInput{ProgressID: uuid.New()})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestAwardIfPassed(t *testing.T) {
	h := newHarness(t, aggregates.BaseDeps{})
	course := testutil.SeedCourse(t, h.ctx, h.tx, nil)
	student := testutil.SeedUser(t, h.ctx, h.tx, "")
	videos := testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Type: milestones.TypeVideoPlays, Count: 1, RequiredToPass: true})
	answers := testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Count: 1, RequiredToPass: true})
	testutil.SeedMilestone(t, h.ctx, h.tx, course.ID, testutil.MilestoneSpec{Type: milestones.TypeForumPosts, Count: 9})
	v := testutil.SeedBlock(t, h.ctx, h.tx, course.ID, courses.BlockTypeVideo)
	a := testutil.SeedAssessment(t, h.ctx, h.tx, course.ID, 2, true)

	in := domainagg.AwardIfPassedInput{CourseID: course.ID, StudentID: student.ID}
	res, err := h.passed.AwardIfPassed(h.ctx, in)
	if err != nil || res.Awarded || res.RequiredCount != 2 || res.AchievedCount != 0 {
		t.Fatalf("nothing achieved: res=%+v err=%v", res, err)
	}

	h.record(t, course.ID, videos.ID, student.ID, v.ID, 0)
	res, err = h.passed.AwardIfPassed(h.ctx, in)
	if err != nil || res.Awarded || res.AchievedCount != 1 {
		t.Fatalf("one of two achieved: res=%+v err=%v", res, err)
	}

	h.record(t, course.ID, answers.ID, student.ID, a.BlockID, 2)
	passedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res, err = h.passed.AwardIfPassed(h.ctx, domainagg.AwardIfPassedInput{CourseID: course.ID, StudentID: student.ID, PassedAt: passedAt})
	if err != nil || !res.Awarded || res.CoursePassedID == uuid.Nil {
		t.Fatalf("all required achieved: res=%+v err=%v", res, err)
	}
	if !res.PassedAt.Equal(passedAt) {
		t.Fatalf("passed_at: want %v got %v", passedAt, res.PassedAt)
	}

	res, err = h.passed.AwardIfPassed(h.ctx, in)
	if err != nil || res.Awarded || !res.AlreadyPassed {
		t.Fatalf("second award must be a no-op: res=%+v err=%v", res, err)
	}
	if !res.PassedAt.Equal(passedAt) {
		t.Fatalf("second award must report the stored passed_at: want %v got %v", passedAt, res.PassedAt)
	}
}
