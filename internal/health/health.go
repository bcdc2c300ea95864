// Package health exposes database readiness over the standard gRPC health
// protocol.
package health

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health entry clients can probe besides the overall "".
const ServiceName = "salon.core.Appointments"

const requestIDKey = "x-request-id"

// Pinger checks a dependency; a nil error means ready.
type Pinger func(ctx context.Context) error

type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	ping     Pinger
	interval time.Duration
	log      logrus.FieldLogger
}

func NewServer(ping Pinger, interval time.Duration, log logrus.FieldLogger) *Server {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	s := &Server{
		grpc:     grpc.NewServer(grpc.ChainUnaryInterceptor(requestIDInterceptor(log))),
		health:   health.NewServer(),
		ping:     ping,
		interval: interval,
		log:      log,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)

	s.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Check pings once and publishes the result.
func (s *Server) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.ping(ctx); err != nil {
		s.log.WithError(err).Warn("database not ready")
		s.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return false
	}
	s.set(healthpb.HealthCheckResponse_SERVING)
	return true
}

// Watch re-checks readiness until ctx is done.
func (s *Server) Watch(ctx context.Context) {
	s.Check(ctx)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Check(ctx)
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop flips every entry to NOT_SERVING and drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) set(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// requestIDInterceptor reads x-request-id from incoming metadata or assigns
// one, and echoes it back in the response header.
func requestIDInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestIDKey); len(vals) > 0 {
				id = vals[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDKey, id))

		resp, err := handler(ctx, req)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"request_id": id,
				"method":     info.FullMethod,
			}).Warn("grpc call failed")
		}
		return resp, err
	}
}
