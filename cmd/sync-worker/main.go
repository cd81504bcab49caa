// Standalone device polling worker. Runs the same ingestion loop as the
// API binary, for deployments that scale polling separately.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"truetime.service/internal/config"
	"truetime.service/internal/core/model"
	"truetime.service/internal/ingestion"
	"truetime.service/internal/ports/repository"
	"truetime.service/pkg/database"
	"truetime.service/pkg/logger"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}

	logger.Setup(cfg.IsLocalDev)

	// DB connection
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()
	log.Println("Successfully connected to the database.")

	// Initialize Dependencies
	attendanceRepo := repository.NewAttendanceRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	reconciler := ingestion.NewReconciler(attendanceRepo, deviceRepo)

	timeout := cfg.ConnTimeout()
	clientFactory := ingestion.NewCachingFactory(func(device *model.BiometricDevice) ingestion.DeviceClient {
		if cfg.DeviceClientMode == "mock" {
			return ingestion.NewMockClient(device.SerialNumber)
		}
		return ingestion.NewHTTPTerminalClient(device, timeout)
	})

	// Start Worker
	ctx, cancel := context.WithCancel(context.Background())
	scheduler := ingestion.NewScheduler(deviceRepo, reconciler, clientFactory, cfg.PollInterval())

	go func() {
		scheduler.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down worker...")

	// Cancel the context to signal the scheduler to stop polling.
	cancel()

	log.Println("Worker exited gracefully")
}
