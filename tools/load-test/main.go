package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	// Configuration
	url := flag.String("url", "http://localhost:8080/api/v1/attendance/logs", "punch endpoint")
	token := flag.String("token", "", "bearer token of an admin or manager user")
	numEmployees := flag.Int("employees", 500, "number of distinct employee codes")
	concurrency := flag.Int("concurrency", 50, "number of concurrent requests")
	flag.Parse()

	requestsPerEmployee := 2
	totalRequests := *numEmployees * requestsPerEmployee

	fmt.Printf("Starting load test: %d employees (%d requests each) to %s with concurrency %d\n",
		*numEmployees, requestsPerEmployee, *url, *concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, *concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	startTime := time.Now()

	for i := 0; i < *numEmployees; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		employeeCode := fmt.Sprintf("EMP%03d", i%*numEmployees+1)

		go func(code string) {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			for j := 0; j < requestsPerEmployee; j++ {
				direction := "in"
				if j%2 == 1 {
					direction = "out"
				}
				payload := []byte(fmt.Sprintf(
					`{"employeeCode": %q, "deviceSerial": "SIM-001", "punchedAt": %q, "direction": %q}`,
					code, time.Now().UTC().Format(time.RFC3339), direction))

				req, err := http.NewRequest(http.MethodPost, *url, bytes.NewBuffer(payload))
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Authorization", "Bearer "+*token)

				resp, err := http.DefaultClient.Do(req)
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}

				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					atomic.AddInt64(&successCount, 1)
				} else {
					atomic.AddInt64(&failCount, 1)
				}
				resp.Body.Close()
			}
		}(employeeCode)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
