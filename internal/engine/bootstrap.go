package engine

import (
	"context"
	"fmt"

	"pitchflow/internal/logging"
	"pitchflow/internal/preprocess"
	"pitchflow/internal/telemetry"
	"pitchflow/internal/transport"
)

type Config struct {
	GRPCAddr     string
	MetricsAddr  string // empty disables /metrics
	PipelinePath string
}

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	// 1. fitted pipeline
	pipe, err := preprocess.Load(cfg.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	// 2. transport server
	srv, err := transport.StartServer(cfg.GRPCAddr, pipe)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}

	// 3. metrics
	e := &Engine{transport: srv}
	if cfg.MetricsAddr != "" {
		e.metrics = telemetry.Expose(cfg.MetricsAddr)
	}
	logging.L().Info("engine: serving pipeline",
		"grpc", srv.Addr().String(), "metrics", cfg.MetricsAddr,
		"pipeline", cfg.PipelinePath, "columns", len(pipe.Columns()))
	return e, nil
}
