package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient produces one synthetic punch per fetch with a strictly
// increasing external id. Used for local development and tests when no
// terminal hardware is reachable.
type MockClient struct {
	SerialNumber string

	mu      sync.Mutex
	counter int64
}

func NewMockClient(serialNumber string) *MockClient {
	return &MockClient{SerialNumber: serialNumber}
}

func (c *MockClient) FetchLogs(ctx context.Context) ([]PunchPayload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	externalID := c.counter
	direction := "out"
	if c.counter%2 == 1 {
		direction = "in"
	}

	return []PunchPayload{{
		ExternalID:   &externalID,
		EmployeeCode: fmt.Sprintf("EMP%03d", c.counter),
		Direction:    direction,
		Timestamp:    time.Now().UTC(),
		RawPayload:   fmt.Sprintf("mock_payload_%d", c.counter),
	}}, nil
}
