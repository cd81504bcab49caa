package ingestion

import (
	"sync"

	"truetime.service/internal/core/model"
)

// NewCachingFactory memoizes clients per device serial so per-device
// state, the circuit breaker in particular, survives across polling
// cycles.
func NewCachingFactory(build func(device *model.BiometricDevice) DeviceClient) ClientFactory {
	var mu sync.Mutex
	clients := make(map[string]DeviceClient)

	return func(device *model.BiometricDevice) (DeviceClient, error) {
		mu.Lock()
		defer mu.Unlock()

		if client, ok := clients[device.SerialNumber]; ok {
			return client, nil
		}
		client := build(device)
		clients[device.SerialNumber] = client
		return client, nil
	}
}
