package main

import (
	"github.com/spf13/cobra"

	"pitchflow/internal/engine"
)

func newServeCmd() *cobra.Command {
	cfg := engine.Config{
		GRPCAddr:     ":7070",
		MetricsAddr:  ":9100",
		PipelinePath: "data/pipeline.pkl",
	}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a fitted pipeline over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := engine.Bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return e.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&cfg.PipelinePath, "pipeline", cfg.PipelinePath, "fitted pipeline artifact")
	cmd.Flags().StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "metrics listen address, empty to disable")
	return cmd
}
