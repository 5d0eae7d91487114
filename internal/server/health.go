package server

import (
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService serves the standard gRPC health protocol so orchestrators can
// check on the combat server.
type HealthService struct {
	addr    string
	service string
	logger  *zap.Logger
	grpc    *grpc.Server
	health  *health.Server

	listener net.Listener
	ready    chan struct{}
}

// NewHealthService creates a health server for the named service on addr.
//
// Precondition: addr is a "host:port" listen address; logger must be non-nil.
// Postcondition: The service reports NOT_SERVING until SetServing(true).
func NewHealthService(addr, service string, logger *zap.Logger) *HealthService {
	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthService{
		addr:    addr,
		service: service,
		logger:  logger,
		grpc:    srv,
		health:  hs,
		ready:   make(chan struct{}),
	}
}

// SetServing flips the reported status of the service.
func (h *HealthService) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(h.service, status)
	h.health.SetServingStatus("", status)
}

// Start listens and serves until Stop.
func (h *HealthService) Start() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("health listen %s: %w", h.addr, err)
	}
	h.listener = lis
	close(h.ready)
	h.logger.Info("health service listening", zap.String("addr", lis.Addr().String()))
	if err := h.grpc.Serve(lis); err != nil {
		return fmt.Errorf("health serve: %w", err)
	}
	return nil
}

// Addr blocks until the listener is bound and returns its address.
func (h *HealthService) Addr() string {
	<-h.ready
	return h.listener.Addr().String()
}

// Stop marks the service down and drains the gRPC server.
func (h *HealthService) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
