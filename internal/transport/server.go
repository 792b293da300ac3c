package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-checked service. It serves once the bridge holds a genesis header.
const ServiceName = "btcbridge.Bridge"

// NewGRPCServer builds the gRPC server with the health service registered behind the
// recovery, tags, prometheus and zap interceptors.
func NewGRPCServer(logger *zap.Logger, hs *health.Server) *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger),
	}
	stream := []grpc.StreamServerInterceptor{
		grpcRecovery.StreamServerInterceptor(),
		grpcCtxTags.StreamServerInterceptor(),
		grpcPrometheus.StreamServerInterceptor,
		grpcZap.StreamServerInterceptor(logger),
	}
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(unary...)),
		grpc.StreamInterceptor(grpcMiddleware.ChainStreamServer(stream...)),
	)
	grpcPrometheus.EnableHandlingTimeHistogram()
	grpcPrometheus.Register(srv)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// NewGateway dials the gRPC endpoint for /healthz and mounts the REST routes. The returned
// close function releases the health connection.
func NewGateway(grpcAddr string, h *Handler) (*gwruntime.ServeMux, func() error, error) {
	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", grpcAddr, err)
	}
	mux := gwruntime.NewServeMux(
		gwruntime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)),
		gwruntime.WithMarshalerOption(gwruntime.MIMEWildcard, &gwruntime.JSONBuiltin{}),
	)
	if err := h.Register(mux); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return mux, conn.Close, nil
}

// NewHTTPServer serves the gateway and the prometheus registry behind permissive CORS.
func NewHTTPServer(addr string, gateway http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/", gateway)
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
}

// HealthReporter keeps the health status in step with the bridge initialization.
type HealthReporter struct {
	health   *health.Server
	bridge   Bridge
	interval time.Duration
	logger   *zap.Logger
}

func NewHealthReporter(hs *health.Server, b Bridge, interval time.Duration, logger *zap.Logger) *HealthReporter {
	return &HealthReporter{health: hs, bridge: b, interval: interval, logger: logger.Named("health")}
}

// Run refreshes the status every interval until ctx is canceled, then marks the service down.
func (h *HealthReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Refresh()
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			h.Refresh()
		}
	}
}

// Refresh sets and returns the current serving status.
func (h *HealthReporter) Refresh() healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if _, _, err := h.bridge.Tips(); err != nil {
		h.logger.Debug("bridge not serving", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus(ServiceName, status)
	h.health.SetServingStatus("", status)
	return status
}
