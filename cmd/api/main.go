// Entry point for REST API
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"truetime.service/internal/api"
	"truetime.service/internal/api/middleware"
	"truetime.service/internal/config"
	"truetime.service/internal/core"
	"truetime.service/internal/core/model"
	"truetime.service/internal/ingestion"
	"truetime.service/internal/ports/repository"
	"truetime.service/pkg/database"
	"truetime.service/pkg/logger"
	"truetime.service/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("truetime-api", cfg.OTLPEndpoint, cfg.IsLocalDev)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection
	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	// Initialize dependencies
	employeeRepo := repository.NewEmployeeRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := core.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL())
	directoryService := core.NewDirectoryService(employeeRepo, deviceRepo, shiftRepo)
	attendanceService := core.NewAttendanceService(attendanceRepo, employeeRepo, shiftRepo)

	clientFactory := newClientFactory(cfg)
	reconciler := ingestion.NewReconciler(attendanceRepo, deviceRepo)

	// Background device poller shares the process with the API by
	// default; run cmd/sync-worker instead to scale it out separately.
	pollCtx, stopPolling := context.WithCancel(context.Background())
	defer stopPolling()
	if cfg.IngestionEnabled {
		scheduler := ingestion.NewScheduler(deviceRepo, reconciler, clientFactory, cfg.PollInterval())
		go scheduler.Run(pollCtx)
	}

	// Setup router and server
	router := api.NewRouter(api.RouterDeps{
		Auth:       authService,
		Directory:  directoryService,
		Attendance: attendanceService,
		Reconciler: reconciler,
		Clients:    clientFactory,
		JWTSecret:  []byte(cfg.JWTSecret),
	})

	// Middleware to inject logger with trace ID
	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.EnrichContextWithLogger(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	handler := otelhttp.NewHandler(loggerMiddleware(middleware.RequestID(router)), "api")

	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	stopPolling()

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

// newClientFactory picks the device transport by configuration.
func newClientFactory(cfg config.Config) ingestion.ClientFactory {
	timeout := cfg.ConnTimeout()
	return ingestion.NewCachingFactory(func(device *model.BiometricDevice) ingestion.DeviceClient {
		if cfg.DeviceClientMode == "mock" {
			return ingestion.NewMockClient(device.SerialNumber)
		}
		return ingestion.NewHTTPTerminalClient(device, timeout)
	})
}
