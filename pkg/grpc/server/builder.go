package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Option func(*Options)

type Options struct {
	port              int
	listener          net.Listener
	logger            *zap.Logger
	reflection        bool
	unaryInterceptors []grpc.UnaryServerInterceptor
	enableLogging     bool
	maxRecvMsgSize    int
}

const (
	DefaultPort = 50051
	// DefaultMaxRecvMsgSize leaves room for base64-encoded workbook uploads.
	DefaultMaxRecvMsgSize = 32 << 20
)

func WithPort(port int) Option {
	return func(o *Options) {
		o.port = port
	}
}

// WithListener serves on an existing listener instead of binding the port.
func WithListener(lis net.Listener) Option {
	return func(o *Options) {
		o.listener = lis
	}
}

func WithMaxRecvMsgSize(bytes int) Option {
	return func(o *Options) {
		o.maxRecvMsgSize = bytes
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func WithReflection(enabled bool) Option {
	return func(o *Options) {
		o.reflection = enabled
	}
}

func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(o *Options) {
		o.unaryInterceptors = append(o.unaryInterceptors, interceptors...)
	}
}

func WithLogging(enabled bool) Option {
	return func(o *Options) {
		o.enableLogging = enabled
	}
}

// Server wraps a grpc.Server with a health service that follows its
// lifecycle: registered services report NOT_SERVING until Start and again
// once Shutdown begins.
type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server
	services     []string
}

// New creates a new gRPC server using the builder options.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:           DefaultPort,
		logger:         zap.NewNop(),
		maxRecvMsgSize: DefaultMaxRecvMsgSize,
	}

	for _, opt := range opts {
		opt(options)
	}

	lis := options.listener
	if lis == nil {
		if options.port < 1 || options.port > 65535 {
			return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", options.port)
		}
		var err error
		lis, err = net.Listen("tcp", fmt.Sprintf(":%d", options.port))
		if err != nil {
			return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
		}
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	interceptors := options.unaryInterceptors
	if options.enableLogging {
		interceptors = append([]grpc.UnaryServerInterceptor{LoggingInterceptor(logger)}, interceptors...)
	}

	serverOpts := []grpc.ServerOption{grpc.MaxRecvMsgSize(options.maxRecvMsgSize)}
	if len(interceptors) > 0 {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(interceptors...))
	}

	grpcServer := grpc.NewServer(serverOpts...)
	if options.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	s := &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		logger:       logger.Named("grpc-server"),
		healthServer: healthServer,
		services:     []string{""},
	}
	s.setServing(healthpb.HealthCheckResponse_NOT_SERVING)
	return s, nil
}

// RegisterService registers impl under desc and adds desc.ServiceName to the
// health service.
func (s *Server) RegisterService(desc *grpc.ServiceDesc, impl any) {
	s.grpcServer.RegisterService(desc, impl)
	s.services = append(s.services, desc.ServiceName)
	s.healthServer.SetServingStatus(desc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	s.logger.Info("registered service", zap.String("service", desc.ServiceName))
}

func (s *Server) setServing(status healthpb.HealthCheckResponse_ServingStatus) {
	for _, name := range s.services {
		s.healthServer.SetServingStatus(name, status)
	}
}

// Start marks every registered service SERVING and serves in a goroutine.
func (s *Server) Start() {
	s.setServing(healthpb.HealthCheckResponse_SERVING)

	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()

	s.logger.Info("gRPC server started",
		zap.String("addr", s.lis.Addr().String()),
		zap.Strings("services", s.services[1:]))
}

// Shutdown drains in-flight calls, forcing a stop once ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")
	s.setServing(healthpb.HealthCheckResponse_NOT_SERVING)

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		_ = s.lis.Close()
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
