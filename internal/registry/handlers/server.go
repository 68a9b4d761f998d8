// Package handlers exposes the registry over HTTP and serves the gRPC
// health service that backs the HTTP health endpoint.
package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name the registry reports to the gRPC health service.
const ServiceName = "registry"

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	health       *health.Server
	httpServer   *http.Server
	healthConn   *grpc.ClientConn
	logger       *zap.Logger
	grpcPort     int
	grpcEndpoint string
	httpEndpoint string
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	grpcServer := grpc.NewServer(grpcOpts...)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	return &Server{
		grpcServer:   grpcServer,
		health:       healthServer,
		httpServer:   &http.Server{ReadHeaderTimeout: 10 * time.Second},
		logger:       logger,
		grpcPort:     grpcPort,
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
}

// RegisterHTTPHandler installs the REST router. The /healthz route calls
// back into this server's gRPC health service with the given dial options.
func (s *Server) RegisterHTTPHandler(h *RegistryHandler, rateLimit int, dialOpts []grpc.DialOption) error {
	conn, err := grpc.NewClient(fmt.Sprintf("localhost:%d", s.grpcPort), dialOpts...)
	if err != nil {
		return fmt.Errorf("failed to create health client: %w", err)
	}
	s.healthConn = conn

	s.httpServer.Handler = NewRouter(h, grpc_health_v1.NewHealthClient(conn), s.logger, rateLimit)
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	// Start gRPC Server
	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen error: %w", err)
			return
		}
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	// Start HTTP Server
	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop marks the service as not serving, then gracefully shuts down both servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	s.grpcServer.GracefulStop()

	if s.healthConn != nil {
		if err := s.healthConn.Close(); err != nil {
			s.logger.Warn("Health client close error", zap.Error(err))
		}
	}

	s.logger.Info("Servers stopped")
}
