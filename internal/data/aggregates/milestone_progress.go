package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/domain/milestones"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

type MilestoneProgressAggregateDeps struct {
	Base BaseDeps

	Courses     repos.CourseRepo
	Milestones  repos.MilestoneRepo
	Progress    repos.MilestoneProgressRepo
	Blocks      repos.MilestoneProgressBlockRepo
	Assessments repos.AssessmentRepo
	Answers     repos.SubmittedAnswerRepo
}

type milestoneProgressAggregate struct {
	deps MilestoneProgressAggregateDeps
}

func NewMilestoneProgressAggregate(deps MilestoneProgressAggregateDeps) domainagg.MilestoneProgressAggregate {
	deps.Base = deps.Base.withDefaults()
	return &milestoneProgressAggregate{deps: deps}
}

func (a *milestoneProgressAggregate) Contract() domainagg.Contract {
	return domainagg.MilestoneProgressAggregateContract
}

func (a *milestoneProgressAggregate) configured() bool {
	d := a.deps
	return d.Courses != nil && d.Milestones != nil && d.Progress != nil && d.Blocks != nil
}

func (a *milestoneProgressAggregate) now(at time.Time) time.Time {
	if at.IsZero() {
		return a.deps.Base.Now()
	}
	return at.UTC()
}

func (a *milestoneProgressAggregate) RecordBlock(ctx context.Context, in domainagg.RecordBlockInput) (domainagg.RecordBlockResult, error) {
	op := domainagg.MilestoneProgressAggregateContract.Op("RecordBlock")
	var out domainagg.RecordBlockResult
	if in.CourseID == uuid.Nil || in.MilestoneID == uuid.Nil || in.StudentID == uuid.Nil || in.BlockID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "course_id, milestone_id, student_id and block_id are required", nil)
	}
	if in.Score < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "score must not be negative", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "milestone progress repos not configured", nil)
	}
	now := a.now(in.RecordedAt)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.RecordBlockResult{}
		if err := requireOpenCourse(dbc, a.deps.Courses, op, in.CourseID, now); err != nil {
			return err
		}
		m, err := a.deps.Milestones.GetByID(dbc, in.MilestoneID)
		if err != nil {
			return err
		}
		if m == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("milestone not found: %s", in.MilestoneID), nil)
		}
		if m.CourseID != in.CourseID {
			return InvariantError("milestone does not belong to course")
		}

		key := repos.ProgressKey{CourseID: in.CourseID, MilestoneID: in.MilestoneID, StudentID: in.StudentID}
		if _, err := a.deps.Progress.EnsureExists(dbc, key); err != nil {
			return err
		}
		row, err := a.deps.Progress.LockByKey(dbc, key)
		if err != nil {
			return err
		}
		out.ProgressID = row.ID
		out.Count = row.Count
		out.TotalScore = row.TotalScore
		if row.Achieved {
			out.AlreadyAchieved = true
			return nil
		}

		inserted, err := a.deps.Blocks.Insert(dbc, row.ID, in.BlockID, in.Score)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		prevCount, prevTotal := row.Count, row.TotalScore
		justAchieved := row.Credit(m, in.Score, now)
		updates := map[string]any{
			"count":       row.Count,
			"total_score": row.TotalScore,
			"updated_at":  now,
		}
		if justAchieved {
			updates["achieved"] = true
			updates["achieved_at"] = *row.AchievedAt
		}
		if err := a.deps.Base.CASGuard.Apply(dbc, Swap{
			Table: "milestone_progress",
			ID:    row.ID,
			Expect: map[string]any{
				"count":       prevCount,
				"total_score": prevTotal,
				"achieved":    false,
			},
			Set:      updates,
			Conflict: "milestone progress changed while recording block",
		}); err != nil {
			return err
		}

		out.Count = row.Count
		out.TotalScore = row.TotalScore
		out.Credited = true
		out.JustAchieved = justAchieved
		return nil
	})
	return out, err
}

func (a *milestoneProgressAggregate) filter(scope domainagg.ProgressScope) repos.ProgressFilter {
	return repos.ProgressFilter{
		CourseID:      scope.CourseID,
		StudentID:     scope.StudentID,
		MilestoneType: types.MilestoneType(scope.MilestoneType),
	}
}

func (a *milestoneProgressAggregate) RemoveBlock(ctx context.Context, in domainagg.RemoveBlockInput) (domainagg.RemoveBlockResult, error) {
	op := domainagg.MilestoneProgressAggregateContract.Op("RemoveBlock")
	var out domainagg.RemoveBlockResult
	if in.Scope.CourseID == uuid.Nil || in.BlockID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "course_id and block_id are required", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "milestone progress repos not configured", nil)
	}
	now := a.deps.Base.Now()

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.RemoveBlockResult{}
		if err := requireOpenCourse(dbc, a.deps.Courses, op, in.Scope.CourseID, now); err != nil {
			return err
		}
		f := a.filter(in.Scope)
		f.CreditsBlockID = &in.BlockID
		n, err := a.deps.Progress.BulkRemoveBlock(dbc, f, in.BlockID)
		if err != nil {
			return err
		}
		out.RowsUpdated = int(n)
		return nil
	})
	return out, err
}

func (a *milestoneProgressAggregate) DeleteProgress(ctx context.Context, in domainagg.DeleteProgressInput) (domainagg.DeleteProgressResult, error) {
	op := domainagg.MilestoneProgressAggregateContract.Op("DeleteProgress")
	var out domainagg.DeleteProgressResult
	if in.Scope.CourseID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "course_id is required", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "milestone progress repos not configured", nil)
	}
	now := a.deps.Base.Now()

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.DeleteProgressResult{}
		if err := requireOpenCourse(dbc, a.deps.Courses, op, in.Scope.CourseID, now); err != nil {
			return err
		}
		n, err := a.deps.Progress.DeleteMatching(dbc, a.filter(in.Scope))
		if err != nil {
			return err
		}
		out.RowsDeleted = int(n)
		return nil
	})
	return out, err
}

func (a *milestoneProgressAggregate) Rescore(ctx context.Context, in domainagg.RescoreInput) (domainagg.RescoreResult, error) {
	op := domainagg.MilestoneProgressAggregateContract.Op("Rescore")
	var out domainagg.RescoreResult
	if in.ProgressID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "progress_id is required", nil)
	}
	if !a.configured() || a.deps.Answers == nil || a.deps.Assessments == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "milestone progress repos not configured", nil)
	}
	now := a.now(in.RescoredAt)
	log := a.deps.Base.Log.With("op", op, "progress_id", in.ProgressID)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		out = domainagg.RescoreResult{ProgressID: in.ProgressID}
		row, err := a.deps.Progress.LockByID(dbc, in.ProgressID)
		if err != nil {
			return err
		}
		if err := requireOpenCourse(dbc, a.deps.Courses, op, row.CourseID, now); err != nil {
			return err
		}
		m, err := a.deps.Milestones.GetByID(dbc, row.MilestoneID)
		if err != nil {
			return err
		}
		if m == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("milestone not found: %s", row.MilestoneID), nil)
		}
		if m.Type != milestones.TypeCorrectAnswers {
			return ValidationError(fmt.Sprintf("rescore applies to %s milestones, got %s", milestones.TypeCorrectAnswers, m.Type))
		}
		out.MilestoneID = m.ID
		out.StudentID = row.StudentID
		out.RequiredToPass = m.RequiredToPass
		out.Count = row.Count
		out.TotalScore = row.TotalScore
		out.Achieved = row.Achieved

		q := repos.AnswerQuery{CourseID: row.CourseID, StudentID: row.StudentID, GradedOnly: m.CountGradedOnly}
		if in.BlockID != nil {
			target, err := a.deps.Assessments.GetByBlockID(dbc, *in.BlockID)
			if err != nil {
				return err
			}
			if target == nil {
				return nil
			}
			q.AssessmentID = &target.ID
		}
		answers, err := a.deps.Answers.List(dbc, q)
		if err != nil {
			return err
		}

		// Live score per block, for finished answers only.
		live := map[uuid.UUID]int{}
		var order []uuid.UUID
		for _, ans := range answers {
			if ans.Assessment == nil {
				continue
			}
			prevStatus, prevScore := ans.Status, ans.Score
			if err := ans.Regrade(ans.Assessment); err != nil {
				log.Warn("skipping answer that cannot be regraded", "answer_id", ans.ID, "error", err)
				continue
			}
			if ans.Status != prevStatus || ans.Score != prevScore {
				if err := a.deps.Answers.UpdateGrade(dbc, ans.ID, ans.Status, ans.Score); err != nil {
					return err
				}
			}
			if ans.Status.Finished() {
				if _, seen := live[ans.Assessment.BlockID]; !seen {
					order = append(order, ans.Assessment.BlockID)
				}
				live[ans.Assessment.BlockID] = ans.Score
			}
		}

		credited, err := a.deps.Blocks.ListByProgressID(dbc, row.ID)
		if err != nil {
			return err
		}
		count, total := 0, 0
		isCredited := make(map[uuid.UUID]bool, len(credited))
		for _, b := range credited {
			isCredited[b.BlockID] = true
			score := b.Score
			if in.BlockID == nil || b.BlockID == *in.BlockID {
				score = live[b.BlockID]
				if score != b.Score {
					if err := a.deps.Blocks.UpdateScore(dbc, b.ID, score); err != nil {
						return err
					}
				}
			}
			count++
			total += score
		}
		for _, blockID := range order {
			if isCredited[blockID] {
				continue
			}
			inserted, err := a.deps.Blocks.Insert(dbc, row.ID, blockID, live[blockID])
			if err != nil {
				return err
			}
			if inserted {
				count++
				total += live[blockID]
			}
		}

		changed := count != row.Count || total != row.TotalScore
		justAchieved := row.Recompute(m, count, total, now)
		out.Count = row.Count
		out.TotalScore = row.TotalScore
		out.Changed = changed
		out.Achieved = row.Achieved
		out.JustAchieved = justAchieved
		if !changed && !justAchieved {
			return nil
		}
		updates := map[string]any{
			"count":       row.Count,
			"total_score": row.TotalScore,
			"updated_at":  now,
		}
		if justAchieved {
			updates["achieved"] = true
			updates["achieved_at"] = *row.AchievedAt
		}
		return a.deps.Progress.UpdateFields(dbc, row.ID, updates)
	})
	return out, err
}
