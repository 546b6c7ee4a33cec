package server

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// mockServiceRegistrar implements grpc.ServiceRegistrar for testing.
type mockServiceRegistrar struct {
	services []string
}

func (m *mockServiceRegistrar) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	m.services = append(m.services, desc.ServiceName)
}

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error { return errors.New("connection refused") }

func TestRegisterServices_Health(t *testing.T) {
	reg := &mockServiceRegistrar{}
	h := RegisterServices(reg, Deps{})
	if len(reg.services) != 1 || reg.services[0] != "grpc.health.v1.Health" {
		t.Fatalf("registered = %v, want [grpc.health.v1.Health]", reg.services)
	}
	if h == nil {
		t.Fatal("RegisterServices returned nil handler")
	}
	resp, err := h.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", resp.GetStatus())
	}
}

func TestRegisterServices_SharesReadiness(t *testing.T) {
	h := RegisterServices(&mockServiceRegistrar{}, Deps{HealthPinger: failingPinger{}})
	if err := h.Ready(context.Background()); err == nil {
		t.Error("Ready should fail when the database ping fails")
	}
}

func TestNewGRPCServer(t *testing.T) {
	s := NewGRPCServer()
	defer s.Stop()
	RegisterServices(s, Deps{})
	if _, ok := s.GetServiceInfo()["grpc.health.v1.Health"]; !ok {
		t.Error("health service not registered on server")
	}
}
