// Package service orchestrates the analytics engine against the store:
// it loads transaction history, runs the pure pipeline stages and writes
// the derived results back.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/clearspend/backend/internal/insights"
	"github.com/clearspend/backend/internal/store"
)

// Defaults applied when a request leaves a knob unset.
const (
	defaultScanLookbackDays  = 30
	defaultAccuracyWindow    = 30
	defaultSpendingRateDays  = 30
	defaultLowBalanceAmount  = 100.0
	defaultLargeItemFraction = 0.5

	// recentContextDays bounds the transaction context handed to the
	// anomaly checks; duplicate and spike detection only look days back.
	recentContextDays = 90

	listPageSize = 1000
)

// InsightsService runs the analytics pipeline for one user at a time.
type InsightsService struct {
	store store.Store

	detectorCfg insights.DetectorConfig

	// LowBalanceThreshold and LargeItemFraction tune forecast alerts.
	LowBalanceThreshold float64
	LargeItemFraction   float64

	// now is injectable for tests.
	now func() time.Time
}

// NewInsightsService creates a service with default thresholds.
func NewInsightsService(st store.Store) *InsightsService {
	return &InsightsService{
		store:               st,
		detectorCfg:         insights.DefaultDetectorConfig(),
		LowBalanceThreshold: defaultLowBalanceAmount,
		LargeItemFraction:   defaultLargeItemFraction,
		now:                 time.Now,
	}
}

// ScanResult summarizes an anomaly scan.
type ScanResult struct {
	Anomalies      []insights.Anomaly `json:"anomalies"`
	NewCount       int                `json:"newCount"`
	SkippedRecords int                `json:"skippedRecords"`
}

// ReconcileResult summarizes a snapshot reconciliation pass.
type ReconcileResult struct {
	ReconciledCount int `json:"reconciledCount"`
	SkippedRecords  int `json:"skippedRecords"`
}

// loadTransactions pages through the user's transactions, optionally
// bounded by date.
func (s *InsightsService) loadTransactions(ctx context.Context, userID string, startDate, endDate *time.Time) ([]insights.Transaction, error) {
	var all []insights.Transaction
	pageToken := ""
	for {
		txns, nextToken, err := s.store.ListTransactions(ctx, userID, startDate, endDate, listPageSize, pageToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions: %w", err)
		}
		all = append(all, txns...)
		if nextToken == "" {
			return all, nil
		}
		pageToken = nextToken
	}
}

// historyDays reports the span in days from the oldest transaction to today.
func historyDays(txns []insights.Transaction, today time.Time) int {
	if len(txns) == 0 {
		return 0
	}
	oldest := txns[0].Date
	for _, txn := range txns[1:] {
		if txn.Date.Before(oldest) {
			oldest = txn.Date
		}
	}
	days := int(today.Sub(oldest).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// RefreshRecurring reruns pattern detection over the user's full history
// and replaces the cached recurring items.
func (s *InsightsService) RefreshRecurring(ctx context.Context, userID string) (insights.RecurringResult, error) {
	txns, err := s.loadTransactions(ctx, userID, nil, nil)
	if err != nil {
		return insights.RecurringResult{}, err
	}

	result := insights.DetectRecurring(txns, s.detectorCfg)
	if result.InsufficientData {
		log.Printf("[Insights] user %s: %d transactions, not enough for pattern detection", userID, len(txns))
		return result, nil
	}

	if err := s.store.PutRecurringItems(ctx, userID, result.Items); err != nil {
		return insights.RecurringResult{}, fmt.Errorf("failed to cache recurring items: %w", err)
	}

	log.Printf("[Insights] user %s: detected %d recurring items (%d records skipped)",
		userID, len(result.Items), result.SkippedRecords)
	return result, nil
}

// RebuildBaselines recomputes every merchant baseline from full history
// and upserts them.
func (s *InsightsService) RebuildBaselines(ctx context.Context, userID string) ([]insights.MerchantBaseline, int, error) {
	txns, err := s.loadTransactions(ctx, userID, nil, nil)
	if err != nil {
		return nil, 0, err
	}

	baselines, skipped := insights.BuildBaselines(txns)
	for _, b := range baselines {
		if err := s.store.UpsertBaseline(ctx, userID, b); err != nil {
			return nil, 0, fmt.Errorf("failed to upsert baseline for %s: %w", b.MerchantKey, err)
		}
	}

	log.Printf("[Insights] user %s: rebuilt %d baselines (%d records skipped)", userID, len(baselines), skipped)
	return baselines, skipped, nil
}

// ScanAnomalies runs the rule checks over recent transactions against the
// stored baselines. The store deduplicates by (user, transaction, type),
// so rescanning the same window never re-reports a finding.
func (s *InsightsService) ScanAnomalies(ctx context.Context, userID string, lookbackDays int) (ScanResult, error) {
	if lookbackDays <= 0 {
		lookbackDays = defaultScanLookbackDays
	}
	today := s.now().UTC()

	scanStart := today.AddDate(0, 0, -lookbackDays)
	incoming, err := s.loadTransactions(ctx, userID, &scanStart, nil)
	if err != nil {
		return ScanResult{}, err
	}

	contextStart := today.AddDate(0, 0, -recentContextDays)
	recent, err := s.loadTransactions(ctx, userID, &contextStart, nil)
	if err != nil {
		return ScanResult{}, err
	}

	baselines, err := s.store.ListBaselines(ctx, userID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to list baselines: %w", err)
	}

	prefs, err := s.store.GetAnomalyPreferences(ctx, userID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	anomalies, skipped := insights.DetectAnomalies(incoming, baselines, recent, prefs)

	newCount := 0
	for _, a := range anomalies {
		created, err := s.store.UpsertAnomaly(ctx, userID, a)
		if err != nil {
			return ScanResult{}, fmt.Errorf("failed to upsert anomaly: %w", err)
		}
		if created {
			newCount++
		}
	}

	log.Printf("[Insights] user %s: scan found %d anomalies (%d new, %d records skipped)",
		userID, len(anomalies), newCount, skipped)
	return ScanResult{Anomalies: anomalies, NewCount: newCount, SkippedRecords: skipped}, nil
}

// Forecast projects the user's balance over the horizon and persists one
// prediction snapshot per projected day for later reconciliation.
func (s *InsightsService) Forecast(ctx context.Context, userID string, horizonDays int) (insights.Forecast, error) {
	today := s.now().UTC()

	balance, err := s.store.GetBalance(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return insights.Forecast{}, fmt.Errorf("no balance recorded for user %s", userID)
	}
	if err != nil {
		return insights.Forecast{}, fmt.Errorf("failed to get balance: %w", err)
	}

	items, err := s.store.ListRecurringItems(ctx, userID)
	if err != nil {
		return insights.Forecast{}, fmt.Errorf("failed to list recurring items: %w", err)
	}
	if len(items) == 0 {
		// Nothing cached yet; detection may simply never have run.
		result, err := s.RefreshRecurring(ctx, userID)
		if err != nil {
			return insights.Forecast{}, err
		}
		items = result.Items
	}

	txns, err := s.loadTransactions(ctx, userID, nil, nil)
	if err != nil {
		return insights.Forecast{}, err
	}

	rate := insights.ComputeSpendingRate(txns, items, defaultSpendingRateDays, today)

	forecast := insights.GenerateForecast(insights.ForecastRequest{
		CurrentBalance:      balance,
		RecurringItems:      items,
		Rate:                rate,
		HorizonDays:         horizonDays,
		LowBalanceThreshold: s.LowBalanceThreshold,
		LargeItemFraction:   s.LargeItemFraction,
		HistoryDays:         historyDays(txns, today),
		Today:               today,
	})

	snaps := insights.SnapshotForecast(userID, forecast)
	if err := s.store.PutSnapshots(ctx, snaps); err != nil {
		return insights.Forecast{}, fmt.Errorf("failed to persist snapshots: %w", err)
	}

	log.Printf("[Insights] user %s: forecast %d days, lowest balance %.2f on %s",
		userID, len(forecast.Days), forecast.LowestBalance, forecast.LowestBalanceDate.Format("2006-01-02"))
	return forecast, nil
}

// ReconcileSnapshots fills in actuals for past prediction snapshots.
func (s *InsightsService) ReconcileSnapshots(ctx context.Context, userID string) (ReconcileResult, error) {
	today := s.now().UTC()

	unreconciled := false
	snaps, err := s.store.ListSnapshots(ctx, userID, &unreconciled)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return ReconcileResult{}, nil
	}

	balance, err := s.store.GetBalance(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ReconcileResult{}, fmt.Errorf("no balance recorded for user %s", userID)
	}
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to get balance: %w", err)
	}

	txns, err := s.loadTransactions(ctx, userID, nil, nil)
	if err != nil {
		return ReconcileResult{}, err
	}

	updated, skipped := insights.ReconcileSnapshots(snaps, txns, balance, today)
	if len(updated) > 0 {
		if err := s.store.PutSnapshots(ctx, updated); err != nil {
			return ReconcileResult{}, fmt.Errorf("failed to persist reconciled snapshots: %w", err)
		}
	}

	log.Printf("[Insights] user %s: reconciled %d snapshots (%d records skipped)", userID, len(updated), skipped)
	return ReconcileResult{ReconciledCount: len(updated), SkippedRecords: skipped}, nil
}

// AccuracyReport aggregates forecast error over the trailing window.
func (s *InsightsService) AccuracyReport(ctx context.Context, userID string, windowDays int) (insights.AccuracyMetrics, error) {
	if windowDays <= 0 {
		windowDays = defaultAccuracyWindow
	}
	today := s.now().UTC()

	reconciled := true
	snaps, err := s.store.ListSnapshots(ctx, userID, &reconciled)
	if err != nil {
		return insights.AccuracyMetrics{}, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return insights.ComputeAccuracy(snaps, windowDays, today), nil
}
