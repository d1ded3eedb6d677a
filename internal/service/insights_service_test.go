package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/clearspend/backend/internal/insights"
	"github.com/clearspend/backend/internal/store"
)

var serviceToday = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(st store.Store) *InsightsService {
	svc := NewInsightsService(st)
	svc.now = func() time.Time { return serviceToday }
	return svc
}

// seedHistory loads a realistic six-month history for the user: a monthly
// Netflix subscription, a bill with slight variation, and enough one-off
// spending to clear the detection minimum.
func seedHistory(t *testing.T, st store.Store, userID string) {
	t.Helper()

	var txns []insights.Transaction
	billAmounts := []float64{95, 105, 95, 105, 100}
	for i := 0; i < 6; i++ {
		txns = append(txns, insights.Transaction{
			ID:       "netflix-" + string(rune('a'+i)),
			UserID:   userID,
			Merchant: "Netflix",
			Amount:   15.99,
			Date:     time.Date(2025, time.Month(1+i), 3, 0, 0, 0, 0, time.UTC),
			Category: "entertainment",
		})
		if i < len(billAmounts) {
			txns = append(txns, insights.Transaction{
				ID:       "electric-" + string(rune('a'+i)),
				UserID:   userID,
				Merchant: "Electric Co",
				Amount:   billAmounts[i],
				Date:     time.Date(2025, time.Month(1+i), 20, 0, 0, 0, 0, time.UTC),
				Category: "utilities",
			})
		}
	}
	for i := 0; i < 4; i++ {
		txns = append(txns, insights.Transaction{
			ID:       "coffee-" + string(rune('a'+i)),
			UserID:   userID,
			Merchant: "Corner Coffee",
			Amount:   4.50,
			Date:     time.Date(2025, 5, 2+i*9, 0, 0, 0, 0, time.UTC),
			Category: "dining",
		})
	}

	if err := st.UpsertTransactions(context.Background(), txns); err != nil {
		t.Fatalf("failed to seed transactions: %v", err)
	}
	if err := st.SetBalance(context.Background(), userID, 500); err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
}

func TestRefreshRecurring(t *testing.T) {
	ctx := context.Background()

	t.Run("detects and caches items", func(t *testing.T) {
		st := store.NewMemoryStore()
		seedHistory(t, st, "alice")
		svc := newTestService(st)

		result, err := svc.RefreshRecurring(ctx, "alice")
		if err != nil {
			t.Fatalf("RefreshRecurring failed: %v", err)
		}
		if result.InsufficientData {
			t.Fatal("expected enough data for detection")
		}
		if len(result.Items) == 0 {
			t.Fatal("expected at least one recurring item")
		}

		found := false
		for _, item := range result.Items {
			if item.MerchantKey == "netflix" && item.Frequency == insights.FrequencyMonthly {
				found = true
			}
		}
		if !found {
			t.Errorf("expected monthly netflix item, got %+v", result.Items)
		}

		cached, err := st.ListRecurringItems(ctx, "alice")
		if err != nil {
			t.Fatalf("ListRecurringItems failed: %v", err)
		}
		if len(cached) != len(result.Items) {
			t.Errorf("cache has %d items, detection returned %d", len(cached), len(result.Items))
		}
	})

	t.Run("insufficient data leaves cache alone", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := newTestService(st)

		if err := st.UpsertTransactions(ctx, []insights.Transaction{
			{ID: "t1", UserID: "bob", Merchant: "Shop", Amount: 10, Date: serviceToday},
		}); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		result, err := svc.RefreshRecurring(ctx, "bob")
		if err != nil {
			t.Fatalf("RefreshRecurring failed: %v", err)
		}
		if !result.InsufficientData {
			t.Error("expected insufficient data with one transaction")
		}
	})

	t.Run("store error propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		mockStore.EXPECT().
			ListTransactions(gomock.Any(), "alice", gomock.Nil(), gomock.Nil(), gomock.Any(), "").
			Return(nil, "", errors.New("firestore unavailable"))

		svc := newTestService(mockStore)
		if _, err := svc.RefreshRecurring(ctx, "alice"); err == nil {
			t.Fatal("expected error from failing store")
		}
	})
}

func TestRebuildBaselines(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedHistory(t, st, "alice")
	svc := newTestService(st)

	baselines, skipped, err := svc.RebuildBaselines(ctx, "alice")
	if err != nil {
		t.Fatalf("RebuildBaselines failed: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	// Netflix, Electric Co and Corner Coffee all have >= 2 transactions.
	if len(baselines) != 3 {
		t.Fatalf("got %d baselines, want 3", len(baselines))
	}

	stored, err := st.ListBaselines(ctx, "alice")
	if err != nil {
		t.Fatalf("ListBaselines failed: %v", err)
	}
	if len(stored) != 3 {
		t.Errorf("stored %d baselines, want 3", len(stored))
	}
	for _, b := range stored {
		if b.MerchantKey == "netflix" && !b.IsLikelySubscription {
			t.Error("netflix baseline should be flagged as a subscription")
		}
	}
}

func TestScanAnomalies(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedHistory(t, st, "alice")
	svc := newTestService(st)

	if _, _, err := svc.RebuildBaselines(ctx, "alice"); err != nil {
		t.Fatalf("RebuildBaselines failed: %v", err)
	}

	// A charge four times the Electric Co baseline, inside the scan window.
	if err := st.UpsertTransactions(ctx, []insights.Transaction{
		{ID: "electric-spike", UserID: "alice", Merchant: "Electric Co", Amount: 400,
			Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), Category: "utilities"},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	result, err := svc.ScanAnomalies(ctx, "alice", 30)
	if err != nil {
		t.Fatalf("ScanAnomalies failed: %v", err)
	}

	var unusual *insights.Anomaly
	for i := range result.Anomalies {
		if result.Anomalies[i].Type == insights.AnomalyUnusualAmount && result.Anomalies[i].TransactionID == "electric-spike" {
			unusual = &result.Anomalies[i]
		}
	}
	if unusual == nil {
		t.Fatalf("expected unusual_amount anomaly, got %+v", result.Anomalies)
	}
	if result.NewCount != len(result.Anomalies) {
		t.Errorf("first scan: newCount = %d, want %d", result.NewCount, len(result.Anomalies))
	}

	// Rescanning the same window reports nothing new.
	again, err := svc.ScanAnomalies(ctx, "alice", 30)
	if err != nil {
		t.Fatalf("second ScanAnomalies failed: %v", err)
	}
	if again.NewCount != 0 {
		t.Errorf("second scan: newCount = %d, want 0", again.NewCount)
	}
}

func TestForecast(t *testing.T) {
	ctx := context.Background()

	t.Run("produces forecast and snapshots", func(t *testing.T) {
		st := store.NewMemoryStore()
		seedHistory(t, st, "alice")
		svc := newTestService(st)

		forecast, err := svc.Forecast(ctx, "alice", 30)
		if err != nil {
			t.Fatalf("Forecast failed: %v", err)
		}
		if len(forecast.Days) != 30 {
			t.Fatalf("got %d forecast days, want 30", len(forecast.Days))
		}
		if forecast.CurrentBalance != 500 {
			t.Errorf("currentBalance = %v, want 500", forecast.CurrentBalance)
		}

		// Refreshing on demand should have populated the recurring cache.
		cached, err := st.ListRecurringItems(ctx, "alice")
		if err != nil {
			t.Fatalf("ListRecurringItems failed: %v", err)
		}
		if len(cached) == 0 {
			t.Error("forecast should refresh the recurring cache when empty")
		}

		snaps, err := st.ListSnapshots(ctx, "alice", nil)
		if err != nil {
			t.Fatalf("ListSnapshots failed: %v", err)
		}
		if len(snaps) != 30 {
			t.Errorf("got %d snapshots, want 30", len(snaps))
		}
		for _, snap := range snaps {
			if snap.Reconciled {
				t.Error("fresh snapshots must not be reconciled")
			}
		}
	})

	t.Run("no balance is an error", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := newTestService(st)

		_, err := svc.Forecast(ctx, "ghost", 30)
		if err == nil || !strings.Contains(err.Error(), "no balance") {
			t.Fatalf("expected no-balance error, got %v", err)
		}
	})
}

func TestReconcileAndAccuracy(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedHistory(t, st, "alice")
	svc := newTestService(st)

	// Snapshots predicted two weeks ago, now in the past.
	var snaps []insights.PredictionSnapshot
	for i := 0; i < 5; i++ {
		snaps = append(snaps, insights.PredictionSnapshot{
			UserID:           "alice",
			Date:             serviceToday.AddDate(0, 0, -10+i),
			PredictedBalance: 490 - float64(i)*10,
			Confidence:       insights.ConfidenceMedium,
		})
	}
	if err := st.PutSnapshots(ctx, snaps); err != nil {
		t.Fatalf("seed snapshots failed: %v", err)
	}

	result, err := svc.ReconcileSnapshots(ctx, "alice")
	if err != nil {
		t.Fatalf("ReconcileSnapshots failed: %v", err)
	}
	if result.ReconciledCount != 5 {
		t.Fatalf("reconciled %d snapshots, want 5", result.ReconciledCount)
	}

	metrics, err := svc.AccuracyReport(ctx, "alice", 30)
	if err != nil {
		t.Fatalf("AccuracyReport failed: %v", err)
	}
	if metrics.InsufficientData {
		t.Fatal("expected enough reconciled snapshots for metrics")
	}
	if metrics.SnapshotCount != 5 {
		t.Errorf("snapshotCount = %d, want 5", metrics.SnapshotCount)
	}

	t.Run("insufficient data below minimum", func(t *testing.T) {
		fresh := store.NewMemoryStore()
		freshSvc := newTestService(fresh)

		metrics, err := freshSvc.AccuracyReport(ctx, "nobody", 30)
		if err != nil {
			t.Fatalf("AccuracyReport failed: %v", err)
		}
		if !metrics.InsufficientData {
			t.Error("expected insufficient data with no snapshots")
		}
	})
}
