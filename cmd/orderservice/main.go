package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tmavn/ordertrack/internal/orderservice/app"
	"github.com/tmavn/ordertrack/internal/orderservice/repository/postgres"
	transporthttp "github.com/tmavn/ordertrack/internal/orderservice/transport/http"
	"github.com/tmavn/ordertrack/internal/platform/config"
	"github.com/tmavn/ordertrack/internal/platform/database"
	"github.com/tmavn/ordertrack/internal/platform/logger"
	"github.com/tmavn/ordertrack/internal/platform/moduleaccess"
	"github.com/tmavn/ordertrack/internal/platform/restclient"
)

const serviceName = "orderservice"

func main() {
	cfg, err := config.Load("./configs", "config.defaults")
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Order service starting...", "port", cfg.ServerPort, "log_level", cfg.LogLevel)

	dbPool, err := database.NewDBPool(context.Background(), cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Successfully connected to PostgreSQL database")

	access, err := moduleaccess.Load(appLogger, cfg.BaseDirectory, cfg.ModuleAccessFile)
	if err != nil {
		appLogger.Error("Failed to load module access registry", "error", err)
		os.Exit(1)
	}

	restClient := restclient.New(appLogger, &http.Client{Timeout: cfg.HTTPTimeout})

	orderRepo := postgres.NewPgOrderRepository(dbPool)
	listenerRepo := postgres.NewPgListenerRepository(dbPool)
	notifyRepo := postgres.NewPgStateChangeNotifyRepository(dbPool)

	orderService := app.NewOrderService(orderRepo, access, restClient, appLogger)
	listenerService := app.NewListenerService(listenerRepo, appLogger)
	stateChangeService := app.NewStateChangeService(listenerRepo, notifyRepo, restClient, appLogger)

	orderHandler := transporthttp.NewOrderHandler(orderService, stateChangeService, cfg.BaseDirectory, appLogger)
	listenerHandler := transporthttp.NewListenerHandler(listenerService, cfg.BaseDirectory, appLogger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(transporthttp.RequestFilter(appLogger))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"service": serviceName, "status": "UP"})
	})
	r.Route("/api/v1/order", orderHandler.Routes)
	r.Route("/api/v1/listener", listenerHandler.Routes)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	received := <-quit
	appLogger.Info("Shutdown signal received", "signal", received.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	}
	appLogger.Info("Order service stopped")
}
