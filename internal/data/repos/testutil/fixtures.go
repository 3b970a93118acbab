package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
	"github.com/yungbote/neurobridge-milestones/internal/domain/milestones"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	if email == "" {
		email = fmt.Sprintf("student-%s@example.test", uuid.NewString()[:8])
	}
	u := &types.User{
		ID:    uuid.New(),
		Email: email,
		Name:  "Student",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedCourse creates an open course. Pass a non-nil endDate to seed a finished one.
func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, endDate *time.Time) *types.Course {
	tb.Helper()
	id := uuid.New()
	c := &types.Course{
		ID:      id,
		Slug:    fmt.Sprintf("course-%s", id.String()[:8]),
		Title:   "Course",
		EndDate: endDate,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedBlock(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, bt types.BlockType) *types.Block {
	tb.Helper()
	b := &types.Block{
		ID:       uuid.New(),
		CourseID: courseID,
		Type:     bt,
		Slug:     fmt.Sprintf("block-%s", uuid.NewString()[:8]),
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed block: %v", err)
	}
	return b
}

// SeedAssessment creates an ASSESSMENT block and a LONG_FORM_TEXT assessment on it.
func SeedAssessment(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, maxScore int, graded bool) *types.Assessment {
	tb.Helper()
	b := SeedBlock(tb, ctx, tx, courseID, courses.BlockTypeAssessment)
	a := &types.Assessment{
		ID:       uuid.New(),
		BlockID:  b.ID,
		Type:     courses.AssessmentTypeLongFormText,
		Graded:   graded,
		MaxScore: maxScore,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assessment: %v", err)
	}
	return a
}

func SeedAnswer(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, studentID uuid.UUID, a *types.Assessment, status types.AnswerStatus, score int) *types.SubmittedAnswer {
	tb.Helper()
	raw := datatypes.JSON([]byte(`"an answer"`))
	if !status.Finished() {
		raw = datatypes.JSON([]byte(`""`))
	}
	ans := &types.SubmittedAnswer{
		ID:           uuid.New(),
		CourseID:     courseID,
		StudentID:    studentID,
		AssessmentID: a.ID,
		Status:       status,
		Score:        score,
		Answer:       raw,
	}
	if err := tx.WithContext(ctx).Omit("Assessment").Create(ans).Error; err != nil {
		tb.Fatalf("seed answer: %v", err)
	}
	return ans
}

func SeedTool(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, maxScore int, graded bool) *types.SimpleInteractiveTool {
	tb.Helper()
	b := SeedBlock(tb, ctx, tx, courseID, courses.BlockTypeSimpleInteractiveTool)
	tool := &types.SimpleInteractiveTool{
		ID:       uuid.New(),
		BlockID:  b.ID,
		Graded:   graded,
		MaxScore: maxScore,
	}
	if err := tx.WithContext(ctx).Create(tool).Error; err != nil {
		tb.Fatalf("seed tool: %v", err)
	}
	return tool
}

func SeedToolSubmission(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, studentID uuid.UUID, tool *types.SimpleInteractiveTool, status types.ToolSubmissionStatus, score int) *types.SimpleInteractiveToolSubmission {
	tb.Helper()
	sub := &types.SimpleInteractiveToolSubmission{
		ID:                      uuid.New(),
		CourseID:                courseID,
		StudentID:               studentID,
		SimpleInteractiveToolID: tool.ID,
		Status:                  status,
		Score:                   score,
	}
	if err := tx.WithContext(ctx).Omit("Tool").Create(sub).Error; err != nil {
		tb.Fatalf("seed tool submission: %v", err)
	}
	return sub
}

type MilestoneSpec struct {
	Type            types.MilestoneType
	Count           int
	MinScore        int
	CountGradedOnly bool
	RequiredToPass  bool
}

func SeedMilestone(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, spec MilestoneSpec) *types.Milestone {
	tb.Helper()
	if spec.Type == "" {
		spec.Type = milestones.TypeCorrectAnswers
	}
	m := &types.Milestone{
		ID:                  uuid.New(),
		CourseID:            courseID,
		Name:                string(spec.Type),
		Type:                spec.Type,
		CountRequirement:    spec.Count,
		MinScoreRequirement: spec.MinScore,
		CountGradedOnly:     spec.CountGradedOnly,
		RequiredToPass:      spec.RequiredToPass,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed milestone: %v", err)
	}
	return m
}
