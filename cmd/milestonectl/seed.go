package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-milestones/internal/app"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/seed"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				if err := a.DB.Migrate(); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				okColor.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a course with its blocks, milestones and students from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer fh.Close()
			def, err := seed.Parse(fh)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := seed.Apply(dbctx.Context{Ctx: cmd.Context()}, a.DB.DB(), a.Repos, def)
				if err != nil {
					return fmt.Errorf("seed.Apply() > %w", err)
				}
				printSeedResult(cmd, res)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "course definition file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printSeedResult(cmd *cobra.Command, res *seed.Result) {
	w := cmd.OutOrStdout()
	okColor.Fprintf(w, "course %s created: %s\n", res.Course.Slug, res.Course.ID)

	slugs := make([]string, 0, len(res.Blocks))
	for slug := range res.Blocks {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		b := res.Blocks[slug]
		line := fmt.Sprintf("  block %-24s %-24s %s", slug, b.Type, b.ID)
		if a, ok := res.Assessments[slug]; ok {
			line += fmt.Sprintf(" (assessment %s)", a.ID)
		}
		fmt.Fprintln(w, line)
	}
	for _, m := range res.Milestones {
		fmt.Fprintf(w, "  milestone %-32s %s\n", m.Name, m.ID)
	}
	for _, s := range res.Students {
		fmt.Fprintf(w, "  student %-34s %s\n", s.Email, s.ID)
	}
}
