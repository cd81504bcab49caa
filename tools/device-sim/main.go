// Simulates a biometric terminal's HTTP gateway for local testing.
// Serves GET /logs with a growing batch of synthetic punches.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

type punchLog struct {
	ExternalID   int64     `json:"externalId"`
	EmployeeCode string    `json:"employeeCode"`
	Direction    string    `json:"direction"`
	Timestamp    time.Time `json:"timestamp"`
	RawPayload   string    `json:"rawPayload"`
}

type simulator struct {
	commKey string

	mu   sync.Mutex
	logs []punchLog
}

// tick appends one in/out pair for a rotating set of employees.
func (s *simulator) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := int64(len(s.logs)) + 1
	employee := fmt.Sprintf("EMP%03d", (next/2)%20+1)
	direction := "in"
	if next%2 == 0 {
		direction = "out"
	}

	s.logs = append(s.logs, punchLog{
		ExternalID:   next,
		EmployeeCode: employee,
		Direction:    direction,
		Timestamp:    time.Now().UTC(),
		RawPayload:   fmt.Sprintf("sim_%d", next),
	})
}

func (s *simulator) logsHandler(w http.ResponseWriter, r *http.Request) {
	if s.commKey != "" && r.Header.Get("X-Comm-Key") != s.commKey {
		http.Error(w, "Invalid comm key", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	batch := make([]punchLog, len(s.logs))
	copy(batch, s.logs)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(batch)
}

func main() {
	port := flag.Int("port", 4370, "listen port")
	commKey := flag.String("comm-key", "", "shared secret expected in X-Comm-Key")
	interval := flag.Duration("interval", 15*time.Second, "time between synthetic punches")
	flag.Parse()

	sim := &simulator{commKey: *commKey}

	go func() {
		for {
			sim.tick()
			time.Sleep(*interval)
		}
	}()

	http.HandleFunc("/logs", sim.logsHandler)
	log.Printf("Device simulator starting on port %d...", *port)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", *port), nil))
}
