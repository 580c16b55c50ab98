package api

import (
	"context"
	"fmt"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor logs every unary call with its outcome and latency.
func LoggingInterceptor(l general_i.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)

		if err != nil {
			l.Warning(fmt.Sprintf("%s failed in %s: %s", info.FullMethod, elapsed, status.Code(err)))
			return resp, err
		}
		l.Info(fmt.Sprintf("%s served in %s", info.FullMethod, elapsed))
		return resp, nil
	}
}
