package insights

import (
	"math"
	"sort"
	"time"
)

// minReconciledSnapshots is the floor below which accuracy metrics report
// insufficient data instead of numbers.
const minReconciledSnapshots = 3

// SnapshotForecast converts a forecast into one PredictionSnapshot per
// projected day, ready for the caller to persist keyed by user and date.
func SnapshotForecast(userID string, f Forecast) []PredictionSnapshot {
	snaps := make([]PredictionSnapshot, 0, len(f.Days))
	for _, d := range f.Days {
		snaps = append(snaps, PredictionSnapshot{
			UserID:            userID,
			Date:              dateOnly(d.Date),
			PredictedBalance:  d.ProjectedBalance,
			PredictedIncome:   d.ProjectedIncome,
			PredictedExpenses: d.ProjectedExpenses,
			Confidence:        f.Confidence,
		})
	}
	return snaps
}

// ReconcileSnapshots fills in actuals for every unreconciled snapshot whose
// date has passed. Actual income and expenses come straight from that
// date's transactions; the actual balance is estimated by walking backward
// from the current real balance through the signed flows that happened
// after the snapshot date. Returns the updated snapshots (inputs are not
// mutated) and the count of malformed transactions skipped.
func ReconcileSnapshots(snaps []PredictionSnapshot, txns []Transaction, currentBalance float64, today time.Time) ([]PredictionSnapshot, int) {
	valid, skipped := validTransactions(txns)
	cutoff := dateOnly(today)

	var updated []PredictionSnapshot
	for _, s := range snaps {
		if s.Reconciled || !dateOnly(s.Date).Before(cutoff) {
			continue
		}
		day := dateOnly(s.Date)

		var income, expenses, flowsAfter float64
		for _, t := range valid {
			td := dateOnly(t.Date)
			if td.Equal(day) {
				if t.Amount > 0 {
					expenses += t.Amount
				} else {
					income += -t.Amount
				}
			}
			if td.After(day) {
				// positive = outflow, so adding it back walks the balance
				// toward the past
				flowsAfter += t.Amount
			}
		}

		s.ActualIncome = round2(income)
		s.ActualExpenses = round2(expenses)
		s.ActualBalance = round2(currentBalance + flowsAfter)
		s.VarianceAmount = round2(s.ActualBalance - s.PredictedBalance)
		if s.PredictedBalance != 0 {
			s.VariancePercent = round2(s.VarianceAmount / math.Abs(s.PredictedBalance) * 100)
		} else {
			s.VariancePercent = 0
		}
		s.Reconciled = true
		updated = append(updated, s)
	}
	return updated, skipped
}

// ComputeAccuracy aggregates error metrics over the reconciled snapshots
// inside the trailing window. Fewer than three reconciled snapshots yields
// an insufficient-data result, which callers must treat as "no result
// yet," not a failure.
func ComputeAccuracy(snaps []PredictionSnapshot, windowDays int, today time.Time) AccuracyMetrics {
	if windowDays <= 0 {
		windowDays = 30
	}
	start := dateOnly(today).AddDate(0, 0, -windowDays)
	end := dateOnly(today)

	var window []PredictionSnapshot
	for _, s := range snaps {
		d := dateOnly(s.Date)
		if s.Reconciled && !d.Before(start) && d.Before(end) {
			window = append(window, s)
		}
	}
	if len(window) < minReconciledSnapshots {
		return AccuracyMetrics{SnapshotCount: len(window), InsufficientData: true}
	}
	sort.Slice(window, func(i, j int) bool { return window[i].Date.Before(window[j].Date) })

	var absSum, pctSum, sqSum float64
	for _, s := range window {
		absSum += math.Abs(s.VarianceAmount)
		pctSum += math.Abs(s.VariancePercent)
		sqSum += s.VarianceAmount * s.VarianceAmount
	}
	n := float64(len(window))

	correct := 0
	pairs := len(window) - 1
	for i := 1; i < len(window); i++ {
		predDelta := window[i].PredictedBalance - window[i-1].PredictedBalance
		actDelta := window[i].ActualBalance - window[i-1].ActualBalance
		if predDelta*actDelta > 0 || (predDelta == 0 && actDelta == 0) {
			correct++
		}
	}

	return AccuracyMetrics{
		SnapshotCount:     len(window),
		MeanAbsoluteError: round2(absSum / n),
		MeanPercentError:  round2(pctSum / n),
		RMSE:              round2(math.Sqrt(sqSum / n)),
		DirectionAccuracy: float64(correct) / float64(pairs),
	}
}
