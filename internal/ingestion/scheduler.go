package ingestion

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// minPollInterval is the floor for the device polling interval.
const minPollInterval = 5 * time.Second

// Scheduler polls every registered device on a fixed interval. Devices
// are synced sequentially within a cycle to bound load on the shared
// database, and one device's failure never affects the others. The loop
// only terminates when the context is cancelled.
type Scheduler struct {
	devices    DeviceStore
	reconciler *Reconciler
	clients    ClientFactory
	interval   time.Duration
}

// NewScheduler wires the polling loop. Intervals below the floor are
// raised to it.
func NewScheduler(devices DeviceStore, reconciler *Reconciler, clients ClientFactory, interval time.Duration) *Scheduler {
	if interval < minPollInterval {
		interval = minPollInterval
	}
	return &Scheduler{
		devices:    devices,
		reconciler: reconciler,
		clients:    clients,
		interval:   interval,
	}
}

// Run executes sync cycles until the context is cancelled. Cancellation
// is checked between cycles and between devices, so shutdown never
// leaves a device sync half-applied beyond its own transaction.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("Ingestion scheduler started")

	for {
		s.runCycle(ctx)

		select {
		case <-ctx.Done():
			log.Info().Msg("Ingestion scheduler shutting down")
			return
		case <-time.After(s.interval):
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	devices, err := s.devices.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list devices for sync cycle")
		return
	}

	for _, device := range devices {
		if ctx.Err() != nil {
			return
		}

		client, err := s.clients(device)
		if err != nil {
			log.Warn().Err(err).
				Str("serial", device.SerialNumber).
				Str("ip", device.IPAddress).
				Msg("Unable to initialize device client")
			continue
		}

		if _, err := s.reconciler.SyncDevice(ctx, device, client); err != nil {
			log.Warn().Err(err).
				Str("serial", device.SerialNumber).
				Str("ip", device.IPAddress).
				Msg("Device sync failed")
		}
	}
}
