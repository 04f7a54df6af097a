package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/skyreserve/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	log        *zap.Logger
}

func NewServers(cfg *config.Config, handler http.Handler, log *zap.Logger) *Servers {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Run serves the REST API and the gRPC health service and blocks until ctx
// is canceled or a server fails.
func (s *Servers) Run(ctx context.Context, grpcAddr string) error {
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", grpcAddr, err)
	}

	errCh := make(chan error, 2)
	go func() {
		s.log.Info("grpc server started", zap.String("address", grpcAddr))
		errCh <- s.grpcServer.Serve(lis)
	}()
	go func() {
		s.log.Info("http server started", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	select {
	case err := <-errCh:
		s.shutdown()
		return err
	case <-ctx.Done():
		s.log.Info("shutting down servers")
		return s.shutdown()
	}
}

func (s *Servers) shutdown() error {
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.grpcServer.GracefulStop()
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Run is a shortcut for NewServers(...).Run.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, log *zap.Logger) error {
	return NewServers(cfg, handler, log).Run(ctx, cfg.GRPC.Address)
}
