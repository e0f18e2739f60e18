package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pitchflow/internal/config"
	"pitchflow/internal/logging"
	"pitchflow/internal/pipeline"
	"pitchflow/internal/spec"
)

func newPrepareCmd() *cobra.Command {
	var (
		paramsPath string
		watch      bool
	)
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Derive features, fit the categorical pipeline and write train/test splits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			params, err := config.LoadParams(paramsPath)
			if err != nil {
				return err
			}
			if err := prepare(ctx, params, cmd.OutOrStdout()); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return config.Watch(ctx, paramsPath, func(p spec.Features) {
				if err := prepare(ctx, p, cmd.OutOrStdout()); err != nil {
					logging.L().Error("prepare: rerun failed", "err", err)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&paramsPath, "params", "p", "params.yml", "path to params.yml")
	cmd.Flags().BoolVar(&watch, "watch", false, "rerun whenever params.yml changes")
	return cmd
}

func prepare(ctx context.Context, params spec.Features, out io.Writer) error {
	r, err := pipeline.Build(params)
	if err != nil {
		return err
	}
	defer r.Close()

	res, err := r.Run(ctx)
	if err != nil {
		return err
	}
	rep := res.Report
	fmt.Fprintf(out, "prepared %d rows: %d train, %d test, %d columns (seed %d)\n",
		rep.Rows, rep.TrainRows, rep.TestRows, len(rep.Columns), rep.Seed)
	return nil
}
