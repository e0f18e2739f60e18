package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pitchflow/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logging.InitFromEnv()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.L().Error("pitchflow", "err", err)
		stop()
		os.Exit(1)
	}
}
