package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/catalogsync/handler"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/listener"
	"github.com/bjorheimar/catalog-sync/internal/pkg/broker"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type ServeOptions struct {
	*RootOptions
	NoListener bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger API, the Kafka listener and gRPC health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(commandContext(cmd), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.NoListener, "no-listener", false, "do not consume sync requests from Kafka")
	return cmd
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func serve(parent context.Context, opts *ServeOptions) error {
	cfg := opts.cfg
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Kafka listener
	if !opts.NoListener && len(cfg.Kafka.Brokers) > 0 {
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		a.log.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
		go listener.NewSyncListener(consumer, a.dispatcher, a.log).Start(ctx)
	}

	// HTTP
	app := fiber.New(fiber.Config{
		ErrorHandler:          handler.ErrorHandler(a.log),
		DisableStartupMessage: true,
	})
	handler.NewSyncHandler(a.dispatcher, a.storeRepo, a.invRepo, a.log).Register(app, cfg.JWT.SecretKey)

	// gRPC health + reflection
	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 2)
	go func() {
		a.log.Info("Starting gRPC server", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("serve grpc: %w", err)
		}
	}()
	go func() {
		a.log.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := app.Listen(listenAddr(cfg.Server.HTTPPort)); err != nil {
			errCh <- fmt.Errorf("serve http: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	case err = <-errCh:
		a.log.Error("Server failed", zap.Error(err))
	}

	a.log.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()
	if shutdownErr := app.ShutdownWithTimeout(10 * time.Second); shutdownErr != nil {
		a.log.Warn("HTTP shutdown", zap.Error(shutdownErr))
	}
	grpcServer.GracefulStop()
	a.log.Info("Server stopped")
	return err
}
