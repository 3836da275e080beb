package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	carID         = "stress-car"
	totalRequests = 50
)

type purchaseRequest struct {
	UserID   string `json:"user_id"`
	CarID    string `json:"car_id"`
	UserName string `json:"user_name"`
	CarName  string `json:"car_name"`
	Price    int64  `json:"price"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Fires concurrent purchases of one car. Nothing serializes them, so several
// creations can read the car as available before any marks it sold; how many
// succeed depends on whether the inventory accepts repeated updates.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "purchase service base URL")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	var successCount atomic.Int32
	var failCount atomic.Int32
	var mu sync.Mutex
	ids := make(map[string]bool)

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			id, err := purchase(client, *baseURL, purchaseRequest{
				UserID:   fmt.Sprintf("user-%d", userID),
				CarID:    carID,
				UserName: fmt.Sprintf("User %d", userID),
				CarName:  "Stress Car",
				Price:    10000,
			})
			if err != nil {
				failCount.Add(1)
				log.Printf("user-%d: %v", userID, err)
				return
			}

			successCount.Add(1)
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Car:              %s\n", carID)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Distinct IDs:     %d\n", len(ids))
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if len(ids) == int(success) {
		fmt.Println("PASS: every successful purchase got a unique ID")
	} else {
		fmt.Printf("FAIL: %d successes but %d distinct IDs\n", success, len(ids))
	}

	if success > 1 {
		fmt.Printf("NOTE: %d purchases recorded for the same car (no cross-request locking)\n", success)
	}
}

func purchase(client *http.Client, baseURL string, req purchaseRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/purchase", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var msg messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s (purchase %s)", resp.StatusCode, msg.Message, msg.ID)
	}

	return strings.TrimPrefix(msg.Message, "created:"), nil
}
