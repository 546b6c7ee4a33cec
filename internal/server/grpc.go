// Package server wires the transport surfaces: the fiber HTTP API lives in httpapi, and this file hosts
// the gRPC server used for health and readiness checks.
package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	healthhandler "biometric-attendance/backend/internal/health/handler"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// HealthPinger is used for readiness (e.g. *sql.DB). If nil, Check skips the DB ping.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used for readiness (the OPA course access policy). If nil, Check skips it.
	HealthPolicyChecker healthhandler.PolicyChecker
}

// NewGRPCServer returns a gRPC server instrumented with the global otel providers.
func NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}, opts...)
	return grpc.NewServer(opts...)
}

// RegisterServices registers the grpc.health.v1 service and returns the handler so the HTTP readiness
// endpoint can share it.
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) *healthhandler.Server {
	h := healthhandler.NewServer(deps.HealthPinger, deps.HealthPolicyChecker)
	healthpb.RegisterHealthServer(s, h)
	return h
}
