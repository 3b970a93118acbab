package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"

	"github.com/yungbote/neurobridge-milestones/internal/app"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

func newTrackCommand() *cobra.Command {
	var courseID, studentID, blockID, submissionID, previousStatus string
	var async bool

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Record one student interaction with a block",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := trackPayload(courseID, studentID, blockID, submissionID, previousStatus)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				if async {
					job, err := a.Jobs.EnqueueTrack(dbctx.Context{Ctx: cmd.Context()}, payload)
					if err != nil {
						return fmt.Errorf("enqueue: %w", err)
					}
					okColor.Fprintf(cmd.OutOrStdout(), "queued job %s\n", job.ID)
					return nil
				}
				res := a.Engine.Monitor.TrackInteractionByID(cmd.Context(), payload.CourseID, payload.StudentID, payload.BlockID, services.TrackOptions{
					SubmissionID:   payload.SubmissionID,
					PreviousStatus: payload.PreviousStatus,
				})
				printTrackResult(cmd.OutOrStdout(), res)
				return res.Err
			})
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "course id")
	cmd.Flags().StringVar(&studentID, "student", "", "student id")
	cmd.Flags().StringVar(&blockID, "block", "", "block id")
	cmd.Flags().StringVar(&submissionID, "submission", "", "submitted answer or tool submission id")
	cmd.Flags().StringVar(&previousStatus, "previous-status", "", "submission status before this save")
	cmd.Flags().BoolVar(&async, "async", false, "enqueue a job instead of tracking inline")
	for _, f := range []string{"course", "student", "block"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func trackPayload(courseID, studentID, blockID, submissionID, previousStatus string) (domainjobs.TrackPayload, error) {
	var p domainjobs.TrackPayload
	var err error
	if p.CourseID, err = parseUUIDFlag("course", courseID); err != nil {
		return p, err
	}
	if p.StudentID, err = parseUUIDFlag("student", studentID); err != nil {
		return p, err
	}
	if p.BlockID, err = parseUUIDFlag("block", blockID); err != nil {
		return p, err
	}
	if p.SubmissionID, err = parseOptionalUUIDFlag("submission", submissionID); err != nil {
		return p, err
	}
	p.PreviousStatus = previousStatus
	return p, nil
}

func newAnswerCommand() *cobra.Command {
	var courseID, studentID, blockID, answer string

	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Submit an answer to an assessment block and track it",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := trackPayload(courseID, studentID, blockID, "", "")
			if err != nil {
				return err
			}
			if !json.Valid([]byte(answer)) {
				return fmt.Errorf("--answer must be JSON, e.g. '[\"a\",\"c\"]' or 'true'")
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				saved, previous, err := recordAnswer(cmd.Context(), a.Repos, p.CourseID, p.StudentID, p.BlockID, datatypes.JSON(answer))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "answer %s: %s -> %s (score %d)\n", saved.ID, previous, saved.Status, saved.Score)
				res := a.Engine.Monitor.TrackInteractionByID(cmd.Context(), p.CourseID, p.StudentID, p.BlockID, services.TrackOptions{
					SubmissionID:   &saved.ID,
					PreviousStatus: string(previous),
				})
				printTrackResult(cmd.OutOrStdout(), res)
				return res.Err
			})
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "course id")
	cmd.Flags().StringVar(&studentID, "student", "", "student id")
	cmd.Flags().StringVar(&blockID, "block", "", "assessment block id")
	cmd.Flags().StringVar(&answer, "answer", "", "answer payload as JSON")
	for _, f := range []string{"course", "student", "block", "answer"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// recordAnswer grades raw against the block's assessment and stores it,
// replacing the student's earlier answer. It returns the status the answer
// had before this save.
func recordAnswer(ctx context.Context, set repos.Set, courseID, studentID, blockID uuid.UUID, raw datatypes.JSON) (*types.SubmittedAnswer, courses.AnswerStatus, error) {
	dbc := dbctx.Context{Ctx: ctx}
	assessment, err := set.Assessment.GetByBlockID(dbc, blockID)
	if err != nil {
		return nil, "", err
	}
	if assessment == nil {
		return nil, "", fmt.Errorf("block %s has no assessment", blockID)
	}
	status, err := assessment.Evaluate(raw)
	if err != nil {
		return nil, "", fmt.Errorf("grade answer: %w", err)
	}
	score := 0
	if status.Finished() {
		score = assessment.MaxScore
	}

	existing, err := set.SubmittedAnswer.List(dbc, repos.AnswerQuery{CourseID: courseID, StudentID: studentID, AssessmentID: &assessment.ID})
	if err != nil {
		return nil, "", err
	}
	if len(existing) > 0 {
		prev := existing[0]
		previous := prev.Status
		if err := set.SubmittedAnswer.UpdateGrade(dbc, prev.ID, status, score); err != nil {
			return nil, "", err
		}
		prev.Status, prev.Score = status, score
		return prev, previous, nil
	}

	created, err := set.SubmittedAnswer.Create(dbc, []*types.SubmittedAnswer{{
		CourseID:     courseID,
		StudentID:    studentID,
		AssessmentID: assessment.ID,
		Status:       status,
		Score:        score,
		Answer:       raw,
	}})
	if err != nil {
		return nil, "", err
	}
	return created[0], courses.AnswerStatusUnanswered, nil
}
