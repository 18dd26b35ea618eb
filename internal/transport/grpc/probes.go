package grpc

import (
	"context"
	"log/slog"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Probe checks one dependency. A nil error means it is serving.
type Probe struct {
	Service string
	Check   func(ctx context.Context) error
}

// RunProbes evaluates every probe now and then once per interval until ctx
// ends, writing each result into the health table. The overall ("") status
// is SERVING only while every probe passes.
func (s *Server) RunProbes(ctx context.Context, interval time.Duration, probes ...Probe) {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	s.evaluate(ctx, interval, probes)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evaluate(ctx, interval, probes)
		}
	}
}

func (s *Server) evaluate(ctx context.Context, timeout time.Duration, probes []Probe) {
	overall := healthpb.HealthCheckResponse_SERVING
	for _, p := range probes {
		st := healthpb.HealthCheckResponse_SERVING
		if err := runProbe(ctx, timeout, p); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			overall = st
			s.log.Warn("dependency probe failed", slog.String("service", p.Service), slog.Any("err", err))
		}
		s.health.SetServingStatus(p.Service, st)
	}
	s.health.SetServingStatus("", overall)
}

func runProbe(ctx context.Context, timeout time.Duration, p Probe) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Check(ctx)
}
