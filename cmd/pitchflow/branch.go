package main

import (
	"github.com/spf13/cobra"

	"pitchflow/internal/flows/counterbranch"
)

func newBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branch",
		Short: "Run the counter branch flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := counterbranch.Run(cmd.Context(), cmd.OutOrStdout())
			return err
		},
	}
}
