package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logMode    string
)

func main() {
	rootCommand := newRootCommand()
	if err := rootCommand.Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "milestonectl",
		Short:         "Operate the milestone engine from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().StringVar(&logMode, "log-mode", "", "override app.log_mode (development or production)")

	rootCommand.AddCommand(
		newMigrateCommand(),
		newSeedCommand(),
		newTrackCommand(),
		newAnswerCommand(),
		newRemoveCommand(),
		newRescoreCommand(),
		newEvaluateCommand(),
		newProgressCommand(),
		newEventsCommand(),
		newJobCommand(),
	)
	return rootCommand
}
