package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-milestones/internal/app"
)

func newProgressCommand() *cobra.Command {
	var courseID, studentID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show a student's milestone progress in a course",
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
				p, err := a.Engine.Progress.GetCourseProgress(cmd.Context(), cid, sid)
				if err != nil {
					return fmt.Errorf("GetCourseProgress() > %w", err)
				}
				if p == nil {
					return fmt.Errorf("course %s or student %s not found", cid, sid)
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(p)
				}
				printProgress(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "course id")
	cmd.Flags().StringVar(&studentID, "student", "", "student id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}
