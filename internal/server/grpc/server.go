package grpcserver

import (
	"context"
	"net"
	"sync"
	"time"

	sluicev1 "github.com/rzbill/sluice/api/sluice/v1"
	"github.com/rzbill/sluice/internal/auth"
	"github.com/rzbill/sluice/internal/runtime"
	"google.golang.org/grpc"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt    *runtime.Runtime
	grpc  *grpc.Server
	mu    sync.Mutex
	lis   net.Listener
	ready chan struct{}
}

// stopGrace bounds GracefulStop; open WatchEvents streams never finish on
// their own.
const stopGrace = 5 * time.Second

// New constructs a gRPC server and registers services. Callers are
// authenticated with v.
func New(rt *runtime.Runtime, v *auth.Verifier, opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(auth.UnaryServerInterceptor(v)),
		grpc.ChainStreamInterceptor(auth.StreamServerInterceptor(v)),
	}, opts...)
	s := &Server{rt: rt, grpc: grpc.NewServer(opts...), ready: make(chan struct{})}
	sluicev1.RegisterHealthServiceServer(s.grpc, &healthSvc{rt: rt})
	sluicev1.RegisterStreamsServiceServer(s.grpc, &streamsSvc{svc: rt.Ledger(), book: rt.Rail(), journal: rt.Journal()})
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lis = l
	s.mu.Unlock()
	close(s.ready)
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.stop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr blocks until the listener is bound and returns its address, or ""
// when ctx ends first.
func (s *Server) Addr(ctx context.Context) string {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lis.Addr().String()
}

func (s *Server) stop() {
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopGrace):
		s.grpc.Stop()
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.stop()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
