package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopfront/order-service/app"
	"github.com/shopfront/order-service/configs"
	"github.com/shopfront/order-service/infrastructure/logger"
	"github.com/shopfront/order-service/infrastructure/metrics"
	grpc_server "github.com/shopfront/order-service/server/grpc"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	bootLogger, err := logger.InitZap("info")
	if err != nil {
		panic(err)
	}

	if os.Getenv("APP_ENV") == "dev" {
		app.Globals.Config, err = configs.LoadConfig("./testdata/.env")
	} else {
		app.Globals.Config, err = configs.LoadConfig("")
	}
	if err != nil {
		bootLogger.Fatal("LoadConfig of main init failed", zap.Error(err))
	}
	config := *app.Globals.Config

	app.Globals.ZapLogger, err = logger.InitZap(config.App.LogLevel)
	if err != nil {
		bootLogger.Fatal("InitZap failed", zap.Error(err))
	}
	defer func() { _ = app.Globals.ZapLogger.Sync() }()
	app.Globals.Logger = logger.NewZapLogger(app.Globals.ZapLogger)

	if err := app.SetupRepositories(config); err != nil {
		app.Globals.Logger.Fatal("main SetupRepositories failed", "fn", "main", "error", err)
	}

	app.Globals.Idempotency, err = app.SetupIdempotency(config)
	if err != nil {
		app.Globals.Logger.Fatal("main SetupIdempotency failed", "fn", "main", "error", err)
	}

	app.Globals.Publisher = app.SetupPublisher(config)
	app.Globals.OrderManager = app.SetupOrderManager(config)

	grpcServer := grpc_server.NewServer(config.GRPCServer.Address, uint16(config.GRPCServer.Port),
		app.Globals.OrderManager, app.Globals.Logger)
	metricsServer := metrics.NewServer(config.Metrics.Address, config.Metrics.Port)

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Start()
	}()
	go func() {
		app.Globals.Logger.Info("metrics server started", "fn", "main", "address", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		app.Globals.Logger.Info("shutdown signal received", "fn", "main", "signal", sig.String())
	case err := <-errCh:
		app.Globals.Logger.Error("server failed", "fn", "main", "error", err)
	}

	grpcServer.Stop(shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		app.Globals.Logger.Error("metrics server shutdown failed", "fn", "main", "error", err)
	}

	if err := app.Globals.Publisher.Close(); err != nil {
		app.Globals.Logger.Error("publisher close failed", "fn", "main", "error", err)
	}

	if app.Globals.MongoDriver != nil {
		if err := app.Globals.MongoDriver.Disconnect(ctx); err != nil {
			app.Globals.Logger.Error("mongo disconnect failed", "fn", "main", "error", err)
		}
	}
	app.Globals.Logger.Info("order service stopped", "fn", "main")
}
