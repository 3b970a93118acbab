package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-milestones/internal/app"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

type maintenanceFlags struct {
	course     string
	student    string
	assessment string
	async      bool
}

func (f *maintenanceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.course, "course", "", "course id")
	cmd.Flags().StringVar(&f.student, "student", "", "limit to one student")
	cmd.Flags().StringVar(&f.assessment, "assessment", "", "limit to one assessment")
	cmd.Flags().BoolVar(&f.async, "async", false, "enqueue a job instead of running inline")
	_ = cmd.MarkFlagRequired("course")
}

func (f *maintenanceFlags) payload() (domainjobs.MaintenancePayload, error) {
	var p domainjobs.MaintenancePayload
	var err error
	if p.CourseID, err = parseUUIDFlag("course", f.course); err != nil {
		return p, err
	}
	if p.StudentID, err = parseOptionalUUIDFlag("student", f.student); err != nil {
		return p, err
	}
	if p.AssessmentID, err = parseOptionalUUIDFlag("assessment", f.assessment); err != nil {
		return p, err
	}
	return p, nil
}

type (
	enqueueFunc func(a *app.App, dbc dbctx.Context, p domainjobs.MaintenancePayload) (bool, uuid.UUID, error)
	inlineFunc  func(a *app.App, ctx context.Context, p domainjobs.MaintenancePayload) (int, error)
)

func newMaintenanceCommand(use, short, verb string, enqueue enqueueFunc, inline inlineFunc) *cobra.Command {
	var flags maintenanceFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.payload()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			return withApp(cmd.Context(), func(a *app.App) error {
				if flags.async {
					created, jobID, err := enqueue(a, dbctx.Context{Ctx: cmd.Context()}, p)
					if err != nil {
						return err
					}
					if created {
						okColor.Fprintf(w, "queued job %s\n", jobID)
					} else {
						warnColor.Fprintf(w, "job %s already pending for %s\n", jobID, p.DedupeKey())
					}
					return nil
				}
				n, err := inline(a, cmd.Context(), p)
				if domainagg.IsCode(err, domainagg.CodeCourseFinished) {
					warnColor.Fprintln(w, "course has finished; progress is frozen")
					return nil
				}
				if err != nil {
					return err
				}
				okColor.Fprintf(w, "%s %d progress row(s)\n", verb, n)
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newRemoveCommand() *cobra.Command {
	return newMaintenanceCommand(
		"remove",
		"Remove an assessment's credit from milestone progress",
		"updated",
		func(a *app.App, dbc dbctx.Context, p domainjobs.MaintenancePayload) (bool, uuid.UUID, error) {
			job, created, err := a.Jobs.EnqueueRemove(dbc, p)
			if err != nil {
				return false, uuid.Nil, fmt.Errorf("enqueue: %w", err)
			}
			return created, job.ID, nil
		},
		func(a *app.App, ctx context.Context, p domainjobs.MaintenancePayload) (int, error) {
			return a.Engine.Maintenance.RemoveAssessmentFromProgressByID(ctx, p.CourseID, p.StudentID, p.AssessmentID)
		},
	)
}

func newRescoreCommand() *cobra.Command {
	return newMaintenanceCommand(
		"rescore",
		"Regrade answers and rebuild CORRECT_ANSWERS milestone progress",
		"rescored",
		func(a *app.App, dbc dbctx.Context, p domainjobs.MaintenancePayload) (bool, uuid.UUID, error) {
			job, created, err := a.Jobs.EnqueueRescore(dbc, p)
			if err != nil {
				return false, uuid.Nil, fmt.Errorf("enqueue: %w", err)
			}
			return created, job.ID, nil
		},
		func(a *app.App, ctx context.Context, p domainjobs.MaintenancePayload) (int, error) {
			return a.Engine.Maintenance.RescoreAssessmentProgressByID(ctx, p.CourseID, p.StudentID, p.AssessmentID)
		},
	)
}

func newEvaluateCommand() *cobra.Command {
	var courseID, studentID string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Re-check whether a student has passed a course and award it once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := parseUUIDFlag("course", courseID)
			if err != nil {
				return err
			}
			sid, err := parseUUIDFlag("student", studentID)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				awarded, err := a.Engine.Evaluator.Evaluate(cmd.Context(), cid, sid)
				if err != nil {
					return fmt.Errorf("evaluate: %w", err)
				}
				if awarded {
					okColor.Fprintln(cmd.OutOrStdout(), "course passed; awards issued")
				} else {
					warnColor.Fprintln(cmd.OutOrStdout(), "nothing awarded")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "course id")
	cmd.Flags().StringVar(&studentID, "student", "", "student id")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}
