// Package insights implements the transaction pattern analytics engine:
// recurring payment detection, per-merchant baselines, anomaly checks,
// cash flow forecasting and prediction accuracy tracking. All entry points
// are pure functions over caller-supplied data; the reference date is
// always passed in explicitly.
package insights

import (
	"math"
	"time"
)

// Frequency classifies the cadence of a recurring payment.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	// FrequencyIrregular means the observed intervals fit no known cadence.
	FrequencyIrregular Frequency = "irregular"
)

// IntervalDays returns the canonical interval for a frequency, or 0 for irregular.
func (f Frequency) IntervalDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	case FrequencyQuarterly:
		return 90
	case FrequencyYearly:
		return 365
	default:
		return 0
	}
}

// ConfidenceLevel buckets a 0-100 confidence score for display.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

func levelForScore(score int) ConfidenceLevel {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 60:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Transaction is a single bank transaction as supplied by the ingestion
// pipeline. Amounts are signed: positive is an outflow (expense), negative
// an inflow (income). The engine never mutates transactions.
type Transaction struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Merchant           string    `json:"merchant"`
	Amount             float64   `json:"amount"`
	Date               time.Time `json:"date"`
	Category           string    `json:"category"`
	IsIncome           bool      `json:"isIncome"`
	ExcludedFromBudget bool      `json:"excludedFromBudget"`
}

// RecurringItem is a detected bill, subscription or income source.
type RecurringItem struct {
	MerchantKey      string          `json:"merchantKey"`
	DisplayName      string          `json:"displayName"`
	AverageAmount    float64         `json:"averageAmount"`
	Frequency        Frequency       `json:"frequency"`
	LastDate         time.Time       `json:"lastDate"`
	NextExpectedDate time.Time       `json:"nextExpectedDate"`
	OccurrenceCount  int             `json:"occurrenceCount"`
	Confidence       int             `json:"confidence"`
	ConfidenceLevel  ConfidenceLevel `json:"confidenceLevel"`
	Category         string          `json:"category"`
	IsIncome         bool            `json:"isIncome"`
}

// MerchantBaseline summarizes a merchant's historical amounts and cadence.
// Baselines exist for every merchant with at least two transactions,
// including ordinary shopping merchants the recurring detector excludes.
type MerchantBaseline struct {
	MerchantKey            string    `json:"merchantKey"`
	AverageAmount          float64   `json:"averageAmount"`
	MedianAmount           float64   `json:"medianAmount"`
	StdDeviation           float64   `json:"stdDeviation"`
	MinAmount              float64   `json:"minAmount"`
	MaxAmount              float64   `json:"maxAmount"`
	TypicalFrequency       Frequency `json:"typicalFrequency"`
	AverageDaysBetween     float64   `json:"averageDaysBetween"`
	TransactionCount       int       `json:"transactionCount"`
	TypicalCategory        string    `json:"typicalCategory"`
	IsLikelySubscription   bool      `json:"isLikelySubscription"`
	SubscriptionAmount     float64   `json:"subscriptionAmount"`
	SubscriptionDayOfMonth int       `json:"subscriptionDayOfMonth"`
	FirstSeenDate          time.Time `json:"firstSeenDate"`
	LastSeenDate           time.Time `json:"lastSeenDate"`
}

// AnomalyType identifies which rule check produced an anomaly.
type AnomalyType string

const (
	AnomalyUnusualAmount    AnomalyType = "unusual_amount"
	AnomalyDuplicateCharge  AnomalyType = "duplicate_charge"
	AnomalyPriceIncrease    AnomalyType = "price_increase"
	AnomalyNewMerchantLarge AnomalyType = "new_merchant_large"
	AnomalyFrequencySpike   AnomalyType = "frequency_spike"
)

// Severity grades how unusual a finding is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Anomaly is a transaction (or transaction cluster) that deviates from the
// merchant's baseline behavior. TransactionID is empty for multi-transaction
// findings such as frequency spikes.
type Anomaly struct {
	TransactionID         string      `json:"transactionId,omitempty"`
	Type                  AnomalyType `json:"type"`
	Severity              Severity    `json:"severity"`
	Title                 string      `json:"title"`
	Description           string      `json:"description"`
	MerchantName          string      `json:"merchantName"`
	Amount                float64     `json:"amount"`
	ExpectedAmount        float64     `json:"expectedAmount"`
	DeviationPercent      float64     `json:"deviationPercent"`
	RelatedTransactionIDs []string    `json:"relatedTransactionIds,omitempty"`
}

// AnomalyPreferences holds the user-tunable knobs for the anomaly checks.
type AnomalyPreferences struct {
	UnusualAmountEnabled   bool    `json:"unusualAmountEnabled"`
	DuplicateChargeEnabled bool    `json:"duplicateChargeEnabled"`
	PriceIncreaseEnabled   bool    `json:"priceIncreaseEnabled"`
	NewMerchantEnabled     bool    `json:"newMerchantEnabled"`
	FrequencySpikeEnabled  bool    `json:"frequencySpikeEnabled"`
	// SensitivityLevel ranges 1 (least sensitive) to 10 (most sensitive)
	// and scales the unusual-amount severity bands.
	SensitivityLevel       int     `json:"sensitivityLevel"`
	UnusualAmountThreshold float64 `json:"unusualAmountThreshold"` // standard deviations
	DuplicateWindowHours   int     `json:"duplicateWindowHours"`
	PriceIncreaseThreshold float64 `json:"priceIncreaseThreshold"` // fraction, 0.10 = 10%
	NewMerchantThreshold   float64 `json:"newMerchantThreshold"`   // currency units
}

// DefaultAnomalyPreferences returns the preferences applied before a user
// has saved any of their own.
func DefaultAnomalyPreferences() AnomalyPreferences {
	return AnomalyPreferences{
		UnusualAmountEnabled:   true,
		DuplicateChargeEnabled: true,
		PriceIncreaseEnabled:   true,
		NewMerchantEnabled:     true,
		FrequencySpikeEnabled:  true,
		SensitivityLevel:       5,
		UnusualAmountThreshold: 2.0,
		DuplicateWindowHours:   48,
		PriceIncreaseThreshold: 0.10,
		NewMerchantThreshold:   100,
	}
}

// DetectorConfig controls the recurring pattern detector. The exclusion
// lists are heuristic data, not logic: callers can tune or replace them
// without touching the detection algorithm.
type DetectorConfig struct {
	ExcludedMerchants  []string `json:"excludedMerchants"`  // substring match on merchant text
	ExcludedCategories []string `json:"excludedCategories"` // exact match on category code
	MinTransactions    int      `json:"minTransactions"`    // below this the run reports insufficient data
	MinConfidence      int      `json:"minConfidence"`
	AmountTolerance    float64  `json:"amountTolerance"` // fraction of the group mean
}

// DefaultDetectorConfig returns the stock configuration with the ordinary
// shopping exclusions.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ExcludedMerchants: []string{
			"uber", "lyft", "doordash", "grubhub", "instacart",
			"mcdonald", "starbucks", "chipotle",
			"walmart", "target", "costco", "whole foods", "trader joe",
			"shell", "chevron", "exxon", "7-eleven",
			"amazon", "venmo", "zelle", "cash app", "atm",
		},
		ExcludedCategories: []string{
			"groceries", "gas", "dining", "restaurants", "fast_food",
			"shopping", "transfer", "cash_withdrawal",
		},
		MinTransactions: 10,
		MinConfidence:   60,
		AmountTolerance: 0.15,
	}
}

// RecurringResult is the outcome of one detection run. InsufficientData is
// a distinct "no result yet" state, not an error.
type RecurringResult struct {
	Items            []RecurringItem `json:"items"`
	SkippedRecords   int             `json:"skippedRecords"`
	InsufficientData bool            `json:"insufficientData"`
}

// AlertType identifies a forecast alert.
type AlertType string

const (
	AlertLowBalance      AlertType = "low_balance"
	AlertNegativeBalance AlertType = "negative_balance"
	AlertLargeExpense    AlertType = "large_expense"
	AlertMissedIncome    AlertType = "missed_income"
)

// AlertSeverity grades forecast alerts.
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// ForecastAlert flags a notable event within the projection horizon.
type ForecastAlert struct {
	Type     AlertType     `json:"type"`
	Severity AlertSeverity `json:"severity"`
	Date     time.Time     `json:"date"`
	Message  string        `json:"message"`
	Amount   float64       `json:"amount"`
}

// ForecastDay is one projected day of the balance forecast.
type ForecastDay struct {
	Date              time.Time `json:"date"`
	ProjectedBalance  float64   `json:"projectedBalance"`
	ProjectedIncome   float64   `json:"projectedIncome"`
	ProjectedExpenses float64   `json:"projectedExpenses"`
	IsLowBalance      bool      `json:"isLowBalance"`
	IsNegative        bool      `json:"isNegative"`
}

// Forecast is a day-by-day balance projection. It is a pure output value
// recomputed on demand; identical inputs always produce identical output.
type Forecast struct {
	GeneratedFor       time.Time       `json:"generatedFor"`
	CurrentBalance     float64         `json:"currentBalance"`
	ProjectedEndBalance float64        `json:"projectedEndBalance"`
	LowestBalance      float64         `json:"lowestBalance"`
	LowestBalanceDate  time.Time       `json:"lowestBalanceDate"`
	TotalIncome        float64         `json:"totalIncome"`
	TotalExpenses      float64         `json:"totalExpenses"`
	NetCashFlow        float64         `json:"netCashFlow"`
	Days               []ForecastDay   `json:"dailyForecasts"`
	Alerts             []ForecastAlert `json:"alerts"`
	Confidence         ConfidenceLevel `json:"confidence"`
}

// PredictionSnapshot records one projected day of a forecast so the
// prediction can later be reconciled against what actually happened.
type PredictionSnapshot struct {
	UserID            string          `json:"userId"`
	Date              time.Time       `json:"date"`
	PredictedBalance  float64         `json:"predictedBalance"`
	PredictedIncome   float64         `json:"predictedIncome"`
	PredictedExpenses float64         `json:"predictedExpenses"`
	Confidence        ConfidenceLevel `json:"confidence"`
	Reconciled        bool            `json:"reconciled"`
	ActualBalance     float64         `json:"actualBalance,omitempty"`
	ActualIncome      float64         `json:"actualIncome,omitempty"`
	ActualExpenses    float64         `json:"actualExpenses,omitempty"`
	VarianceAmount    float64         `json:"varianceAmount,omitempty"`
	VariancePercent   float64         `json:"variancePercent,omitempty"`
}

// AccuracyMetrics aggregates forecast error over a trailing window.
type AccuracyMetrics struct {
	SnapshotCount     int     `json:"snapshotCount"`
	MeanAbsoluteError float64 `json:"meanAbsoluteError"`
	MeanPercentError  float64 `json:"meanPercentError"`
	RMSE              float64 `json:"rmse"`
	DirectionAccuracy float64 `json:"directionAccuracy"`
	InsufficientData  bool    `json:"insufficientData"`
}

// validTransactions drops records the engine cannot use (zero date,
// NaN/Inf amount) and reports how many were skipped.
func validTransactions(txns []Transaction) ([]Transaction, int) {
	valid := make([]Transaction, 0, len(txns))
	skipped := 0
	for _, t := range txns {
		if t.Date.IsZero() || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			skipped++
			continue
		}
		valid = append(valid, t)
	}
	return valid, skipped
}

// dateOnly truncates a timestamp to midnight UTC so calendar-day
// comparisons are stable regardless of the input's clock time or zone.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return dateOnly(a).Equal(dateOnly(b))
}

func daysBetween(earlier, later time.Time) float64 {
	return later.Sub(earlier).Hours() / 24
}
