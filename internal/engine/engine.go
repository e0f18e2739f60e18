package engine

import (
	"context"
	"net/http"

	"pitchflow/internal/transport"
)

type Engine struct {
	transport *transport.Server
	metrics   *http.Server
}

// Run serves until ctx is cancelled or the transport stops on its own.
func (e *Engine) Run(ctx context.Context) error {
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			e.transport.Stop()
		case <-done:
		}
		if e.metrics != nil {
			_ = e.metrics.Close()
		}
	}()

	err := e.transport.Serve()
	close(done)
	<-stopped
	return err
}
