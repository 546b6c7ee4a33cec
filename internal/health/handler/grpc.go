package handler

import (
	"context"
	"fmt"
	"log"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// checkTimeout bounds each readiness dependency check.
const checkTimeout = 2 * time.Second

// Pinger checks database connectivity (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the course access policy engine evaluates.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server implements grpc.health.v1.Health for readiness and liveness. Watch and List are not supported.
type Server struct {
	healthpb.UnimplementedHealthServer
	pinger Pinger
	policy PolicyChecker
}

// NewServer returns a health server. pinger and policy may be nil to skip that check.
func NewServer(pinger Pinger, policy PolicyChecker) *Server {
	return &Server{pinger: pinger, policy: policy}
}

// Ready returns nil when every configured dependency is healthy.
func (s *Server) Ready(ctx context.Context) error {
	if s.pinger != nil {
		pctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.pinger.PingContext(pctx)
		cancel()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if s.policy != nil {
		pctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.policy.HealthCheck(pctx)
		cancel()
		if err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	return nil
}

// Check reports SERVING when Ready succeeds and NOT_SERVING otherwise. It never returns a gRPC error,
// so health checkers can tell "up but not ready" from "down".
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if err := s.Ready(ctx); err != nil {
		log.Printf("health: not serving: %v", err)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
