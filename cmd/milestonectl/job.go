package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-milestones/internal/app"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

func newJobCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Inspect or retry job_run rows",
	}
	cmd.AddCommand(newJobGetCommand(), newJobRetryCommand())
	return cmd
}

func newJobGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUIDFlag("job", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				job, err := a.Jobs.GetByID(dbctx.Context{Ctx: cmd.Context()}, id)
				if err != nil {
					return fmt.Errorf("GetByID() > %w", err)
				}
				if job == nil {
					return fmt.Errorf("job %s not found", id)
				}
				printJob(cmd.OutOrStdout(), job)
				return nil
			})
		},
	}
}

func newJobRetryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Requeue a dead job with a fresh attempt budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUIDFlag("job", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				job, err := a.Jobs.Retry(dbctx.Context{Ctx: cmd.Context()}, id)
				if err != nil {
					return fmt.Errorf("Retry() > %w", err)
				}
				if job == nil {
					return fmt.Errorf("job %s not found", id)
				}
				if job.ID != id {
					warnColor.Fprintf(cmd.OutOrStdout(), "a newer job with the same key is already runnable\n")
				}
				printJob(cmd.OutOrStdout(), job)
				return nil
			})
		},
	}
}

func printJob(w io.Writer, job *types.JobRun) {
	status := warnColor.Sprint(job.Status)
	switch job.Status {
	case domainjobs.StatusSucceeded:
		status = okColor.Sprint(job.Status)
	case domainjobs.StatusDead:
		status = errColor.Sprint(job.Status)
	}
	boldColor.Fprintf(w, "job %s\n", job.ID)
	fmt.Fprintf(w, "  type:     %s\n", job.JobType)
	fmt.Fprintf(w, "  status:   %s (%s)\n", status, job.Stage)
	fmt.Fprintf(w, "  attempts: %d/%d\n", job.Attempts, job.MaxAttempts)
	if job.NextRunAt != nil && !job.IsTerminal() {
		fmt.Fprintf(w, "  next run: %s\n", job.NextRunAt.Format(time.RFC3339))
	}
	if job.Error != "" {
		fmt.Fprintf(w, "  error:    %s\n", job.Error)
	}
}
