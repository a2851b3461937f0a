package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/fedtech/jobtracker/internal/common"
)

const requestIDHeader = "x-request-id"

// UnaryInterceptor tags each call with a request id, logs it, and maps domain
// errors onto gRPC status codes.
func UnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(requestIDHeader); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, reqID := common.EnsureRequestID(ctx)
		log := logger.With("request_id", reqID, "method", info.FullMethod)
		ctx = common.WithLogger(ctx, log)

		start := time.Now()
		resp, err := handler(ctx, req)
		err = common.ToStatus(err)
		if err != nil {
			log.Warn("rpc.failed", "code", status.Code(err).String(), "error", err, "duration_ms", time.Since(start).Milliseconds())
			return nil, err
		}
		log.Debug("rpc.ok", "duration_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}
