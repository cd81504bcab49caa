package ingestion

import (
	"context"

	"github.com/rs/zerolog/log"

	"truetime.service/internal/core"
	"truetime.service/internal/core/model"
	"truetime.service/internal/ports/repository"
)

// PunchStore is the slice of the event store the reconciler needs.
type PunchStore interface {
	RecordPunch(ctx context.Context, params repository.RecordPunchParams) (*model.PunchEvent, error)
}

// DeviceStore lists registered devices and finalizes sync attempts.
type DeviceStore interface {
	List(ctx context.Context) ([]*model.BiometricDevice, error)
	FinishSync(ctx context.Context, deviceID int64, highestExternalID int64) error
}

// Reconciler turns raw device batches into deduplicated punch events.
// Delivery from the terminals is at-least-once; the pre-filter against
// the device's high-water mark and the store's idempotent RecordPunch
// together make replays harmless.
type Reconciler struct {
	punches PunchStore
	devices DeviceStore
}

// NewReconciler wires the reconciler with its stores.
func NewReconciler(punches PunchStore, devices DeviceStore) *Reconciler {
	return &Reconciler{punches: punches, devices: devices}
}

// SyncDevice fetches one batch from the client and persists the punches
// the device has not delivered before. A fetch failure aborts the sync
// for this device only. Malformed payloads and payloads that hit a
// domain error (unknown employee, replayed id) are dropped and the rest
// of the batch continues. After a successful fetch the device's
// timestamps are stamped and its high-water mark advanced, even when
// nothing new was accepted.
func (r *Reconciler) SyncDevice(ctx context.Context, device *model.BiometricDevice, client DeviceClient) ([]*model.PunchEvent, error) {
	payloads, err := client.FetchLogs(ctx)
	if err != nil {
		return nil, err
	}

	var highest int64
	events := make([]*model.PunchEvent, 0, len(payloads))

	for _, payload := range payloads {
		if payload.ExternalID != nil && device.LastLogID != nil && *payload.ExternalID <= *device.LastLogID {
			// Already ingested in an earlier sync.
			continue
		}
		if payload.EmployeeCode == "" || payload.Timestamp.IsZero() {
			log.Ctx(ctx).Warn().
				Str("serial", device.SerialNumber).
				Msg("Dropping malformed payload from device")
			continue
		}

		direction := payload.Direction
		if direction == "" {
			direction = "in"
		}

		event, err := r.punches.RecordPunch(ctx, repository.RecordPunchParams{
			EmployeeCode: payload.EmployeeCode,
			DeviceSerial: device.SerialNumber,
			PunchedAt:    payload.Timestamp,
			Direction:    direction,
			RawPayload:   payload.RawPayload,
			ExternalID:   payload.ExternalID,
		})
		if err != nil {
			if core.IsDomainError(err) {
				log.Ctx(ctx).Warn().Err(err).
					Str("serial", device.SerialNumber).
					Str("employee_code", payload.EmployeeCode).
					Msg("Skipping payload from device")
				continue
			}
			return nil, err
		}

		events = append(events, event)
		if payload.ExternalID != nil && *payload.ExternalID > highest {
			highest = *payload.ExternalID
		}
	}

	if err := r.devices.FinishSync(ctx, device.ID, highest); err != nil {
		return nil, err
	}
	return events, nil
}
