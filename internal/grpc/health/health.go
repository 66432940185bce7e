// Package health поднимает gRPC-сервер со стандартным сервисом grpc.health.v1.Health.
//
// Статус SERVING выставляется только после успешной проверки базы данных,
// при остановке все сервисы переводятся в NOT_SERVING.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
)

// ServiceName имя сервиса, под которым публикуется статус API.
const ServiceName = "medical-contacts"

const pingTimeout = 2 * time.Second

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server gRPC-сервер проверки состояния.
type Server struct {
	log     *slog.Logger
	address string
	pinger  Pinger
	grpc    *grpc.Server
	health  *grpchealth.Server
}

// New создает сервер. Пока не вызван Check, все сервисы считаются NOT_SERVING.
func New(log *slog.Logger, address string, pinger Pinger) *Server {
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{
		log:     log,
		address: address,
		pinger:  pinger,
		grpc:    gs,
		health:  hs,
	}
}

// Check пингует базу и выставляет соответствующий статус.
func (s *Server) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	const op = "health.Check"

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		s.log.Warn("database ping failed", slog.String("op", op), sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Serve обслуживает запросы на переданном listener до остановки.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Run слушает адрес из конфига, периодически обновляет статус и останавливается по отмене ctx.
func (s *Server) Run(ctx context.Context, interval time.Duration) error {
	const op = "health.Run"

	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.Check(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.Stop()
				return
			case <-ticker.C:
				s.Check(ctx)
			}
		}
	}()

	s.log.Info("gRPC health server starting", slog.String("address", lis.Addr().String()))
	if err := s.Serve(lis); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stop переводит сервисы в NOT_SERVING и дожидается завершения активных вызовов.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
