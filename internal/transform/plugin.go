package transform

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"pitchflow/internal/preprocess"
	"pitchflow/internal/transport"
)

// Client applies a fitted pipeline to one column->value record and returns
// the output columns with their values.
type Client interface {
	Apply(ctx context.Context, rec map[string]string) (cols, vals []string, err error)
	Health(ctx context.Context) error
	Close() error
}

// GRPCClient talks to a pitchflow server.
type GRPCClient struct {
	conn   *grpc.ClientConn
	svc    *transport.TransformClient
	health healthpb.HealthClient
}

func NewGRPCClient(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	conn, err := transport.Dial(target, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{
		conn:   conn,
		svc:    transport.NewTransformClient(conn),
		health: healthpb.NewHealthClient(conn),
	}, nil
}

func (c *GRPCClient) Apply(ctx context.Context, rec map[string]string) ([]string, []string, error) {
	req, err := transport.EncodeRecord(rec)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.svc.Apply(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	cols, vals := transport.DecodeRow(resp)
	return cols, vals, nil
}

func (c *GRPCClient) Health(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: transport.ServiceName})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("transform: server status %s", resp.GetStatus())
	}
	return nil
}

func (c *GRPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// InProcessClient applies a pipeline loaded into this process.
type InProcessClient struct {
	pipe *preprocess.Pipeline
}

func NewInProcessClient(pipe *preprocess.Pipeline) *InProcessClient {
	return &InProcessClient{pipe: pipe}
}

func (c *InProcessClient) Apply(_ context.Context, rec map[string]string) ([]string, []string, error) {
	return c.pipe.TransformRecord(rec)
}

func (c *InProcessClient) Health(context.Context) error {
	if !c.pipe.Fitted() {
		return preprocess.ErrNotFitted
	}
	return nil
}

func (c *InProcessClient) Close() error { return nil }
