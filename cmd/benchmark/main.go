package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	token       string
	concurrency int
	duration    time.Duration
	payees      int
	funds       int
)

// Metrics
var (
	totalRequests uint64
	success201    uint64 // Created
	fail409       uint64 // Code conflicts exhausted retries
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.StringVar(&token, "token", "", "Bearer token for the API")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.IntVar(&payees, "payees", 200, "Seeded payee ID range (1..N)")
	flag.IntVar(&funds, "funds", 3, "Seeded fund ID range (1..N)")
}

func main() {
	flag.Parse()
	if token == "" {
		log.Fatal("missing -token: obtain one via /api/auth/login")
	}
	log.Printf("Starting Benchmark: workers=%d duration=%s", concurrency, duration)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}

	wg.Wait()
	printResults(time.Since(start))
}

// worker hammers the create endpoint. Every LDDAP create races the
// sequential code generator, so high worker counts surface retry
// pressure as 409s.
func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		payload := map[string]interface{}{
			"payee_id":       rand.Intn(payees) + 1,
			"fund_source_id": rand.Intn(funds) + 1,
			"method":         "LDDAP",
			"lddap_type":     "ONLINE",
			"date_received":  time.Now().UTC().Format(time.RFC3339),
			"particulars":    "Benchmark voucher",
			"items": []map[string]interface{}{
				{"description": "Office supplies", "amount": fmt.Sprintf("%d.00", rand.Intn(9000)+1000)},
			},
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST", targetURL+"/api/v1/disbursements", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 201:
			atomic.AddUint64(&success201, 1)
		case 409:
			atomic.AddUint64(&fail409, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s201 := atomic.LoadUint64(&success201)
	f409 := atomic.LoadUint64(&fail409)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()
	conflictRate := 0.0
	if total > 0 {
		conflictRate = float64(f409) / float64(total) * 100
	}

	results := map[string]interface{}{
		"duration_sec":      d.Seconds(),
		"total_requests":    total,
		"throughput_tps":    tps,
		"success_created":   s201,
		"code_conflicts":    f409,
		"conflict_rate_pct": conflictRate,
		"errors":            fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	file, _ := os.Create("results_benchmark.json")
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
