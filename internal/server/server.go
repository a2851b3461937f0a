package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fedtech/jobtracker/internal/assist"
	"github.com/fedtech/jobtracker/internal/export"
)

// Deps are the collaborators behind the gRPC services.
type Deps struct {
	Store    JobStore
	Text     assist.TextExtractor
	Exporter *export.Service
	Logger   *slog.Logger
}

// New builds a gRPC server with every service, health and reflection registered.
// Health starts as SERVING.
func New(deps Deps, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryInterceptor(logger))}, opts...)
	gs := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	RegisterJobsServer(gs, NewJobsService(deps.Store, logger))
	RegisterExtractServer(gs, NewExtractService(deps.Text, logger))
	RegisterExportServer(gs, NewExportService(deps.Exporter, logger))

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range []string{JobsServiceName, ExtractServiceName, ExportServiceName} {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	return gs, hs
}
