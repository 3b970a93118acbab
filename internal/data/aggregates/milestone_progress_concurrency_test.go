package aggregates_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/data/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos/testutil"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
	"github.com/yungbote/neurobridge-milestones/internal/domain/milestones"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

const concurrentDeliveries = 8

// committedFixture seeds outside any test transaction so concurrent writers
// see each other's commits. Rows are removed when the test ends.
type committedFixture struct {
	db        *gorm.DB
	set       repos.Set
	progress  domainagg.MilestoneProgressAggregate
	course    *courses.Course
	student   *courses.User
	milestone *milestones.Milestone
}

func newCommittedFixture(t *testing.T) *committedFixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)

	f := &committedFixture{db: db, set: set}
	f.course = testutil.SeedCourse(t, ctx, db, nil)
	f.student = testutil.SeedUser(t, ctx, db, "")
	f.milestone = testutil.SeedMilestone(t, ctx, db, f.course.ID, testutil.MilestoneSpec{Type: milestones.TypeVideoPlays, Count: 100})
	f.progress = aggregates.NewMilestoneProgressAggregate(aggregates.MilestoneProgressAggregateDeps{
		Base:        aggregates.BaseDeps{DB: db, Log: log, Retry: aggregates.DefaultRetryPolicy()},
		Courses:     set.Course,
		Milestones:  set.Milestone,
		Progress:    set.MilestoneProgress,
		Blocks:      set.MilestoneProgressBlock,
		Assessments: set.Assessment,
		Answers:     set.SubmittedAnswer,
	})
	t.Cleanup(func() {
		courseID := f.course.ID
		db.Exec("DELETE FROM milestone_progress_block WHERE milestone_progress_id IN (SELECT id FROM milestone_progress WHERE course_id = ?)", courseID)
		db.Exec("DELETE FROM milestone_progress WHERE course_id = ?", courseID)
		db.Exec("DELETE FROM milestone WHERE course_id = ?", courseID)
		db.Exec("DELETE FROM block WHERE course_id = ?", courseID)
		db.Exec("DELETE FROM course WHERE id = ?", courseID)
		db.Exec("DELETE FROM app_user WHERE id = ?", f.student.ID)
	})
	return f
}

// deliver calls RecordBlock once per block from its own goroutine.
func (f *committedFixture) deliver(t *testing.T, blockIDs []uuid.UUID, score int) []domainagg.RecordBlockResult {
	t.Helper()
	results := make([]domainagg.RecordBlockResult, len(blockIDs))
	errs := make([]error, len(blockIDs))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, blockID := range blockIDs {
		wg.Add(1)
		go func(i int, blockID uuid.UUID) {
			defer wg.Done()
			<-start
			results[i], errs[i] = f.progress.RecordBlock(context.Background(), domainagg.RecordBlockInput{
				CourseID:    f.course.ID,
				MilestoneID: f.milestone.ID,
				StudentID:   f.student.ID,
				BlockID:     blockID,
				Score:       score,
			})
		}(i, blockID)
	}
	close(start)
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}
	return results
}

func (f *committedFixture) stored(t *testing.T) (*milestones.MilestoneProgress, int) {
	t.Helper()
	dbc := dbctx.Context{Ctx: context.Background()}
	row, err := f.set.MilestoneProgress.GetByKey(dbc, repos.ProgressKey{CourseID: f.course.ID, MilestoneID: f.milestone.ID, StudentID: f.student.ID})
	if err != nil || row == nil {
		t.Fatalf("GetByKey: row=%v err=%v", row, err)
	}
	blocks, err := f.set.MilestoneProgressBlock.ListByProgressID(dbc, row.ID)
	if err != nil {
		t.Fatalf("ListByProgressID: %v", err)
	}
	return row, len(blocks)
}

func TestRecordBlockConcurrentDuplicateCountsOnce(t *testing.T) {
	f := newCommittedFixture(t)
	video := testutil.SeedBlock(t, context.Background(), f.db, f.course.ID, courses.BlockTypeVideo)

	same := make([]uuid.UUID, concurrentDeliveries)
	for i := range same {
		same[i] = video.ID
	}
	results := f.deliver(t, same, 3)

	credited := 0
	for _, res := range results {
		if res.Credited {
			credited++
		}
	}
	if credited != 1 {
		t.Fatalf("credited deliveries: want 1 got %d", credited)
	}
	row, blocks := f.stored(t)
	if row.Count != 1 || row.TotalScore != 3 || blocks != 1 {
		t.Fatalf("progress after duplicates: count=%d total=%d blocks=%d", row.Count, row.TotalScore, blocks)
	}
}

func TestRecordBlockConcurrentDistinctBlocksAllCount(t *testing.T) {
	f := newCommittedFixture(t)
	ids := make([]uuid.UUID, concurrentDeliveries)
	for i := range ids {
		ids[i] = testutil.SeedBlock(t, context.Background(), f.db, f.course.ID, courses.BlockTypeVideo).ID
	}
	f.deliver(t, ids, 2)

	row, blocks := f.stored(t)
	if row.Count != concurrentDeliveries || row.TotalScore != 2*concurrentDeliveries || blocks != concurrentDeliveries {
		t.Fatalf("progress after distinct blocks: count=%d total=%d blocks=%d", row.Count, row.TotalScore, blocks)
	}
}
