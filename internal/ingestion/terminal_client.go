package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"

	"truetime.service/internal/core/model"
)

const fetchMaxTries = 3

// HTTPTerminalClient pulls punch logs from a biometric terminal's HTTP
// gateway. Terminals on factory networks flap regularly, so transport
// errors are retried with exponential backoff and each device gets its
// own circuit breaker to avoid hammering a terminal that is down.
type HTTPTerminalClient struct {
	client  *http.Client
	baseURL string
	commKey string
	cb      *gobreaker.CircuitBreaker
}

// NewHTTPTerminalClient builds a client for one registered device.
func NewHTTPTerminalClient(device *model.BiometricDevice, timeout time.Duration) *HTTPTerminalClient {
	settings := gobreaker.Settings{
		Name:        "terminal-" + device.SerialNumber,
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger than 50% after at least 5 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	}

	commKey := ""
	if device.CommKey != nil {
		commKey = *device.CommKey
	}

	return &HTTPTerminalClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: fmt.Sprintf("http://%s:%d", device.IPAddress, device.Port),
		commKey: commKey,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

// FetchLogs pulls the terminal's buffered punches. Connection failures
// are retried a few times before the whole sync attempt is reported as
// failed; protocol errors are not retried.
func (c *HTTPTerminalClient) FetchLogs(ctx context.Context) ([]PunchPayload, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return backoff.Retry(ctx, func() ([]PunchPayload, error) {
			payloads, err := c.fetchOnce(ctx)
			if err != nil && !errors.Is(err, ErrConnection) {
				return nil, backoff.Permanent(err)
			}
			return payloads, err
		}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(fetchMaxTries))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", ErrConnection)
		}
		return nil, err
	}
	return result.([]PunchPayload), nil
}

func (c *HTTPTerminalClient) fetchOnce(ctx context.Context) ([]PunchPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/logs", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrClient, err)
	}
	if c.commKey != "" {
		req.Header.Set("X-Comm-Key", c.commKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: terminal returned status %d", ErrClient, resp.StatusCode)
	}

	var payloads []PunchPayload
	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrClient, err)
	}

	for i := range payloads {
		payloads[i].Timestamp = payloads[i].Timestamp.UTC()
	}
	return payloads, nil
}
