package server

import (
	"net"

	"google.golang.org/grpc"

	"github.com/kiosk404/scrivener/pkg/logger"
)

// GRPCAPIServer wraps a grpc.Server with its listen address.
type GRPCAPIServer struct {
	*grpc.Server
	address string
}

// NewGRPCAPIServer creates a GRPCAPIServer for the given address.
func NewGRPCAPIServer(server *grpc.Server, address string) *GRPCAPIServer {
	return &GRPCAPIServer{Server: server, address: address}
}

// Run starts serving. Listen failures are fatal; Serve errors after a Stop
// are expected and logged at debug.
func (s *GRPCAPIServer) Run() {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		logger.Fatal("[Server] gRPC listen on %s failed: %v", s.address, err)
	}

	logger.Info("[Server] gRPC server listening on %s", s.address)
	if err := s.Serve(listen); err != nil {
		logger.Debug("[Server] gRPC serve returned: %v", err)
	}
}

// Stop gracefully stops the gRPC server.
func (s *GRPCAPIServer) Stop() {
	s.GracefulStop()
	logger.Info("[Server] gRPC server stopped")
}
