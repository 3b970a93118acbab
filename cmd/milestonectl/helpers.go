package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-milestones/internal/app"
	"github.com/yungbote/neurobridge-milestones/internal/config"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	boldColor = color.New(color.Bold)
)

func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	loader, err := config.NewLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logMode != "" {
		cfg.App.LogMode = logMode
	}
	return cfg, nil
}

// withApp wires the full application and closes it once fn returns. Nothing
// long-lived is started.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.App.LogMode)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("app.New() > %w", err)
	}
	defer a.Close(context.Background())
	return fn(a)
}

func parseUUIDFlag(name, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s: invalid id %q", name, value)
	}
	return id, nil
}

func parseOptionalUUIDFlag(name, value string) (*uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := parseUUIDFlag(name, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func printTrackResult(w io.Writer, res services.TrackResult) {
	switch res.Outcome {
	case services.OutcomeRecorded:
		okColor.Fprintf(w, "recorded: %d milestone(s) credited\n", res.Credited)
	case services.OutcomeFailed:
		errColor.Fprintf(w, "failed: %v\n", res.Err)
	default:
		warnColor.Fprintf(w, "%s\n", res.Outcome)
	}
	if res.Achieved {
		okColor.Fprintln(w, "milestone achieved")
	}
	if res.CoursePassed {
		okColor.Fprintln(w, "course passed")
	}
}

func printProgress(w io.Writer, p *services.CourseProgress) {
	boldColor.Fprintf(w, "course %s / student %s\n", p.CourseID, p.StudentID)
	if p.Passed {
		passedAt := ""
		if p.PassedAt != nil {
			passedAt = " at " + p.PassedAt.Format("2006-01-02 15:04")
		}
		okColor.Fprintf(w, "PASSED%s\n", passedAt)
	} else {
		warnColor.Fprintln(w, "not passed")
	}
	for _, m := range p.Milestones {
		mark := warnColor.Sprint("[ ]")
		if m.Achieved {
			mark = okColor.Sprint("[x]")
		}
		required := ""
		if m.RequiredToPass {
			required = " (required)"
		}
		fmt.Fprintf(w, "%s %s%s\n", mark, m.Name, required)
		fmt.Fprintf(w, "    %s: %d/%d", m.Type, m.Progress, m.CountRequirement)
		if m.MinScoreRequirement > 0 || m.ScorePossible > 0 {
			fmt.Fprintf(w, "  score %d/%d", m.ScoreAchieved, m.MinScoreRequirement)
			if m.ScorePossible > 0 {
				fmt.Fprintf(w, " of %d possible", m.ScorePossible)
			}
		}
		fmt.Fprintln(w)
	}
}
