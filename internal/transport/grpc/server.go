// Package grpc serves the operator-facing gRPC listener: the standard health
// service fed by dependency probes, plus reflection for grpcurl.
package grpc

import (
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Options struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	opts   Options
	log    *slog.Logger
}

func NewServer(opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "grpc"))

	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(log),
			loggingInterceptor(log),
			defaultRequestTimeoutInterceptor(opts.RequestTimeout),
		),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &Server{grpc: gs, health: hs, opts: opts, log: log}
}

// Health exposes the status table that probes write into.
func (s *Server) Health() *health.Server {
	return s.health
}

func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc server started", slog.String("grpc_addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Shutdown flips every service to NOT_SERVING, then drains in-flight calls
// for up to the shutdown timeout before forcing the stop.
func (s *Server) Shutdown() {
	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s.log.Info("shutting down grpc server", slog.Duration("timeout", timeout))
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		s.log.Info("grpc server stopped")
	case <-timer.C:
		s.log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.grpc.Stop()
	}
}
