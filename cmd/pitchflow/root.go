package main

import (
	"github.com/spf13/cobra"

	"pitchflow/internal/logging"
)

func newRootCmd() *cobra.Command {
	opts := logging.FromEnv()

	root := &cobra.Command{
		Use:           "pitchflow",
		Short:         "Branching flow demo and football match preprocessing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.Output = cmd.ErrOrStderr()
			logging.Configure(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.Level, "log-level", opts.Level, "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.JSON, "log-json", opts.JSON, "emit JSON logs")

	root.AddCommand(
		newBranchCmd(),
		newPrepareCmd(),
		newServeCmd(),
		newApplyCmd(),
	)
	return root
}
