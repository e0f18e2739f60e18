package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"pitchflow/internal/dataset"
	"pitchflow/internal/transform"
)

func newApplyCmd() *cobra.Command {
	var addr, input string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Transform CSV rows through a running pitchflow server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := dataset.ReadCSV(input)
			if err != nil {
				return err
			}
			c, err := transform.NewGRPCClient(addr)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Health(cmd.Context()); err != nil {
				return err
			}
			out, err := applyAll(cmd.Context(), c, in)
			if err != nil {
				return err
			}
			return dataset.Encode(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:7070", "server address")
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV file to transform")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func applyAll(ctx context.Context, c transform.Client, in *dataset.Frame) (*dataset.Frame, error) {
	out := dataset.New(nil, make([][]string, 0, in.Len()))
	for i := range in.Len() {
		cols, vals, err := c.Apply(ctx, in.Record(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if out.Header == nil {
			out.Header = cols
		} else if !slices.Equal(out.Header, cols) {
			return nil, fmt.Errorf("row %d: server changed columns", i)
		}
		out.Rows = append(out.Rows, vals)
	}
	return out, nil
}
