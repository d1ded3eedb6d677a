package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// batchConcurrency bounds how many users are processed at once during a
// scheduled run.
const batchConcurrency = 8

// BatchSummary reports the outcome of a full pipeline run across users.
type BatchSummary struct {
	UserCount  int `json:"userCount"`
	ErrorCount int `json:"errorCount"`
}

// RunAllUsers executes the full nightly pipeline for every user: refresh
// recurring items, rebuild baselines, scan for anomalies, reconcile past
// snapshots, then write a fresh forecast. One user's failure is logged
// and counted without aborting the rest of the run.
func (s *InsightsService) RunAllUsers(ctx context.Context) (BatchSummary, error) {
	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("failed to list users: %w", err)
	}

	errCounts := make(chan int, len(userIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			if err := s.runUser(ctx, userID); err != nil {
				log.Printf("[Insights] batch run failed for user %s: %v", userID, err)
				errCounts <- 1
			}
			// Context cancellation is the only thing that stops the batch.
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return BatchSummary{}, err
	}
	close(errCounts)

	summary := BatchSummary{UserCount: len(userIDs)}
	for n := range errCounts {
		summary.ErrorCount += n
	}

	log.Printf("[Insights] batch run completed: users=%d errors=%d", summary.UserCount, summary.ErrorCount)
	return summary, nil
}

// runUser runs every pipeline stage for one user in dependency order.
func (s *InsightsService) runUser(ctx context.Context, userID string) error {
	if _, err := s.RefreshRecurring(ctx, userID); err != nil {
		return fmt.Errorf("refresh recurring: %w", err)
	}
	if _, _, err := s.RebuildBaselines(ctx, userID); err != nil {
		return fmt.Errorf("rebuild baselines: %w", err)
	}
	if _, err := s.ScanAnomalies(ctx, userID, 0); err != nil {
		return fmt.Errorf("scan anomalies: %w", err)
	}
	if _, err := s.ReconcileSnapshots(ctx, userID); err != nil {
		return fmt.Errorf("reconcile snapshots: %w", err)
	}
	if _, err := s.Forecast(ctx, userID, 0); err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	return nil
}
