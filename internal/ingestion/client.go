package ingestion

import (
	"context"
	"errors"
	"time"

	"truetime.service/internal/core/model"
)

// Device error taxonomy. Connection errors are transport-level and
// retried on the next poll; client errors mean the terminal answered
// with something we could not accept.
var (
	ErrConnection = errors.New("device connection failed")
	ErrClient     = errors.New("device client error")
)

// PunchPayload is one raw punch tuple as delivered by a terminal.
// ExternalID is the device-local sequence number when the terminal
// provides one.
type PunchPayload struct {
	ExternalID   *int64    `json:"externalId,omitempty"`
	EmployeeCode string    `json:"employeeCode"`
	Direction    string    `json:"direction"`
	Timestamp    time.Time `json:"timestamp"`
	RawPayload   string    `json:"rawPayload"`
}

// DeviceClient abstracts over real terminal hardware and test doubles.
// Implementations must report failures through ErrConnection or
// ErrClient so the reconciler can classify them.
type DeviceClient interface {
	FetchLogs(ctx context.Context) ([]PunchPayload, error)
}

// ClientFactory builds a client for one registered device. Selected by
// configuration, never by type switching.
type ClientFactory func(device *model.BiometricDevice) (DeviceClient, error)
