package transport

import (
	"context"
	"errors"
	"net"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"pitchflow/internal/dataset"
	"pitchflow/internal/logging"
	"pitchflow/internal/preprocess"
	"pitchflow/internal/telemetry"
)

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
}

// NewServer registers the Transform and health services for pipe.
func NewServer(pipe *preprocess.Pipeline) *Server {
	s := &Server{grpc: grpc.NewServer(), health: health.NewServer()}
	RegisterTransformServer(s.grpc, &pipelineServer{pipe: pipe})
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

func StartServer(addr string, pipe *preprocess.Pipeline) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := NewServer(pipe)
	s.lis = lis
	return s, nil
}

func (s *Server) Addr() net.Addr { return s.lis.Addr() }

func (s *Server) Serve() error {
	return s.ServeListener(s.lis)
}

func (s *Server) ServeListener(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

type pipelineServer struct {
	pipe *preprocess.Pipeline
}

func (p *pipelineServer) Apply(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	rec := make(map[string]string, len(in.GetFields()))
	for k, v := range in.GetFields() {
		rec[k] = cell(v)
	}
	cols, vals, err := p.pipe.TransformRecord(rec)
	if err != nil {
		telemetry.RowsTransformed.WithLabelValues("error").Inc()
		logging.L().Debug("transport: apply failed", "err", err)
		switch {
		case errors.Is(err, dataset.ErrNoColumn):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		case errors.Is(err, preprocess.ErrNotFitted):
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		default:
			return nil, status.Error(codes.Internal, err.Error())
		}
	}
	telemetry.RowsTransformed.WithLabelValues("ok").Inc()
	return EncodeRow(cols, vals)
}

func cell(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	default:
		return ""
	}
}

// EncodeRecord builds a request Struct from a column->value record.
func EncodeRecord(rec map[string]string) (*structpb.Struct, error) {
	m := make(map[string]any, len(rec))
	for k, v := range rec {
		m[k] = v
	}
	return structpb.NewStruct(m)
}

func EncodeRow(cols, vals []string) (*structpb.Struct, error) {
	c := make([]any, len(cols))
	v := make([]any, len(vals))
	for i := range cols {
		c[i] = cols[i]
	}
	for i := range vals {
		v[i] = vals[i]
	}
	return structpb.NewStruct(map[string]any{"columns": c, "values": v})
}

func DecodeRow(st *structpb.Struct) (cols, vals []string) {
	f := st.GetFields()
	for _, x := range f["columns"].GetListValue().GetValues() {
		cols = append(cols, x.GetStringValue())
	}
	for _, x := range f["values"].GetListValue().GetValues() {
		vals = append(vals, cell(x))
	}
	return cols, vals
}
