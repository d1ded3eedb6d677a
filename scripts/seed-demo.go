//go:build ignore
// +build ignore

// seed-demo seeds 6 months of realistic transaction history for a demo
// user and runs the full analytics pipeline against it.
//
// Usage:
//   USE_MEMORY_STORE=true go run ./cmd/server &
//   go run scripts/seed-demo.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const demoUser = "demo"

type transaction struct {
	Merchant string    `json:"merchant"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
	IsIncome bool      `json:"isIncome"`
}

func main() {
	rng := rand.New(rand.NewSource(42)) // deterministic for reproducibility

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8111"
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, -6, 0)

	var txns []transaction

	// Biweekly salary
	for d := start; d.Before(today); d = d.AddDate(0, 0, 14) {
		txns = append(txns, transaction{
			Merchant: "Acme Corp Payroll", Amount: -2850, Date: d,
			Category: "income", IsIncome: true,
		})
	}

	// Monthly fixed bills
	monthly := []struct {
		merchant, category string
		amount             float64
		day                int
	}{
		{"Sunrise Apartments", "housing", 1450, 1},
		{"Netflix", "entertainment", 15.99, 3},
		{"Spotify", "entertainment", 11.99, 7},
		{"Summit Fitness", "health", 45, 12},
	}
	for d := start; d.Before(today); d = d.AddDate(0, 1, 0) {
		for _, m := range monthly {
			txns = append(txns, transaction{
				Merchant: m.merchant, Amount: m.amount,
				Date:     time.Date(d.Year(), d.Month(), m.day, 0, 0, 0, 0, time.UTC),
				Category: m.category,
			})
		}
		// Utility bill varies month to month
		txns = append(txns, transaction{
			Merchant: "City Power & Light",
			Amount:   float64(85 + rng.Intn(40)),
			Date:     time.Date(d.Year(), d.Month(), 20, 0, 0, 0, 0, time.UTC),
			Category: "utilities",
		})
	}

	// Discretionary noise
	shops := []struct {
		merchant, category string
		min, span          int
	}{
		{"Whole Foods Market", "groceries", 40, 80},
		{"Corner Coffee", "dining", 4, 8},
		{"Shell Oil", "gas", 30, 30},
	}
	for d := start; d.Before(today); d = d.AddDate(0, 0, 2+rng.Intn(3)) {
		shop := shops[rng.Intn(len(shops))]
		txns = append(txns, transaction{
			Merchant: shop.merchant,
			Amount:   float64(shop.min) + rng.Float64()*float64(shop.span),
			Date:     d,
			Category: shop.category,
		})
	}

	// One anomalous charge last week to light up the detector
	txns = append(txns, transaction{
		Merchant: "City Power & Light", Amount: 412,
		Date: today.AddDate(0, 0, -5), Category: "utilities",
	})

	log.Printf("Seeding %d transactions for user %q", len(txns), demoUser)
	post(apiURL+"/v1/transactions", map[string]any{
		"userId":         demoUser,
		"currentBalance": 3200.0,
		"transactions":   txns,
	})

	for _, path := range []string{
		"/v1/recurring/refresh?user=" + demoUser,
		"/v1/baselines/rebuild?user=" + demoUser,
		"/v1/anomalies/scan?user=" + demoUser,
		"/v1/snapshots/reconcile?user=" + demoUser,
	} {
		post(apiURL+path, nil)
	}

	resp, err := http.Get(apiURL + "/v1/forecast?user=" + demoUser)
	if err != nil {
		log.Fatalf("forecast request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Forecast: %s\n", body)
}

func post(url string, payload any) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			log.Fatalf("encode failed: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		log.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("POST %s returned %d: %s", url, resp.StatusCode, body)
	}
	log.Printf("POST %s ok", url)
}
