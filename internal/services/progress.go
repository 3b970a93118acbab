package services

//go:generate mockgen -source=progress.go -destination=../mocks/services/progress.go -package=mock_services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/domain/milestones"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type MilestoneStatus struct {
	MilestoneID         uuid.UUID           `json:"milestone_id"`
	Name                string              `json:"name"`
	Type                types.MilestoneType `json:"type"`
	CountRequirement    int                 `json:"count_requirement"`
	MinScoreRequirement int                 `json:"min_score_requirement"`
	CountGradedOnly     bool                `json:"count_graded_only"`
	RequiredToPass      bool                `json:"required_to_pass"`
	Progress            int                 `json:"progress"`
	ScoreAchieved       int                 `json:"score_achieved"`
	// ScorePossible is only computed for CORRECT_ANSWERS milestones.
	ScorePossible int        `json:"score_possible"`
	Achieved      bool       `json:"achieved"`
	AchievedAt    *time.Time `json:"achieved_at,omitempty"`
}

type CourseProgress struct {
	CourseID   uuid.UUID         `json:"course_id"`
	StudentID  uuid.UUID         `json:"student_id"`
	Passed     bool              `json:"passed"`
	PassedAt   *time.Time        `json:"passed_at,omitempty"`
	Milestones []MilestoneStatus `json:"milestones"`
}

type ProgressService interface {
	// GetCourseProgress returns nil when the course or student is unknown.
	GetCourseProgress(ctx context.Context, courseID, studentID uuid.UUID) (*CourseProgress, error)
}

type ProgressServiceDeps struct {
	Log          *logger.Logger
	Courses      repos.CourseRepo
	Users        repos.UserRepo
	Assessments  repos.AssessmentRepo
	Milestones   repos.MilestoneRepo
	Progress     repos.MilestoneProgressRepo
	CoursePassed repos.CoursePassedRepo
}

type progressService struct {
	log  *logger.Logger
	deps ProgressServiceDeps
}

func NewProgressService(deps ProgressServiceDeps) ProgressService {
	return &progressService{log: deps.Log.With("service", "ProgressService"), deps: deps}
}

func (s *progressService) GetCourseProgress(ctx context.Context, courseID, studentID uuid.UUID) (*CourseProgress, error) {
	dbc := dbctx.Context{Ctx: ctx}
	course, err := s.deps.Courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	student, err := s.deps.Users.GetByID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if course == nil || student == nil {
		return nil, nil
	}

	ms, err := s.deps.Milestones.ListByCourse(dbc, courseID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	rows, err := s.deps.Progress.ListByCourseStudent(dbc, courseID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	byMilestone := make(map[uuid.UUID]*types.MilestoneProgress, len(rows))
	for _, r := range rows {
		byMilestone[r.MilestoneID] = r
	}

	possible := map[bool]int{}
	possibleLoaded := map[bool]bool{}
	scorePossible := func(gradedOnly bool) (int, error) {
		if possibleLoaded[gradedOnly] {
			return possible[gradedOnly], nil
		}
		as, err := s.deps.Assessments.ListByCourse(dbc, courseID, gradedOnly)
		if err != nil {
			return 0, err
		}
		total := 0
		for _, a := range as {
			total += a.MaxScore
		}
		possible[gradedOnly], possibleLoaded[gradedOnly] = total, true
		return total, nil
	}

	out := &CourseProgress{CourseID: courseID, StudentID: studentID, Milestones: make([]MilestoneStatus, 0, len(ms))}
	for _, m := range ms {
		st := MilestoneStatus{
			MilestoneID:         m.ID,
			Name:                m.Name,
			Type:                m.Type,
			CountRequirement:    m.CountRequirement,
			MinScoreRequirement: m.MinScoreRequirement,
			CountGradedOnly:     m.CountGradedOnly,
			RequiredToPass:      m.RequiredToPass,
		}
		if p := byMilestone[m.ID]; p != nil {
			st.Progress = p.Count
			st.ScoreAchieved = p.TotalScore
			st.Achieved = p.Achieved
			st.AchievedAt = p.AchievedAt
		}
		if m.Type == milestones.TypeCorrectAnswers {
			if st.ScorePossible, err = scorePossible(m.CountGradedOnly); err != nil {
				return nil, fmt.Errorf("score possible: %w", err)
			}
		}
		out.Milestones = append(out.Milestones, st)
	}

	passed, err := s.deps.CoursePassed.Get(dbc, courseID, studentID)
	if err != nil {
		return nil, fmt.Errorf("load course passed: %w", err)
	}
	if passed != nil {
		at := passed.PassedAt
		out.Passed, out.PassedAt = true, &at
	}
	return out, nil
}
