package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// DetectAnomalies runs the five independent rule checks over the incoming
// transactions. baselines is the stored per-merchant view, recent is the
// surrounding transaction context (it may include the incoming records),
// and prefs supplies the enable flags and thresholds. A single transaction
// can produce multiple anomalies from different checks. The second return
// value counts malformed incoming records that were skipped.
//
// Checks are pure: persistence and dedup against previously reported
// anomalies happen at the storage boundary, keyed by transaction and type.
func DetectAnomalies(incoming []Transaction, baselines []MerchantBaseline, recent []Transaction, prefs AnomalyPreferences) ([]Anomaly, int) {
	valid, skipped := validTransactions(incoming)

	byKey := make(map[string]*MerchantBaseline, len(baselines))
	for i := range baselines {
		byKey[baselines[i].MerchantKey] = &baselines[i]
	}

	var anomalies []Anomaly
	duplicatePairs := make(map[string]bool)
	latestByKey := make(map[string]Transaction)

	for _, t := range valid {
		if t.Amount <= 0 {
			continue // checks apply to charges, not inflows
		}
		key := MerchantKey(t.Merchant)
		if key == "" {
			continue
		}
		baseline := byKey[key]
		if prev, ok := latestByKey[key]; !ok || t.Date.After(prev.Date) {
			latestByKey[key] = t
		}

		if prefs.UnusualAmountEnabled && baseline != nil {
			if a, ok := checkUnusualAmount(t, baseline, prefs); ok {
				anomalies = append(anomalies, a)
			}
		}
		if prefs.DuplicateChargeEnabled {
			if a, ok := checkDuplicateCharge(t, key, recent, prefs, duplicatePairs); ok {
				anomalies = append(anomalies, a)
			}
		}
		if prefs.PriceIncreaseEnabled && baseline != nil {
			if a, ok := checkPriceIncrease(t, baseline, prefs); ok {
				anomalies = append(anomalies, a)
			}
		}
		if prefs.NewMerchantEnabled && baseline == nil {
			if a, ok := checkNewMerchantLarge(t, prefs); ok {
				anomalies = append(anomalies, a)
			}
		}
	}

	// Frequency spikes are evaluated once per merchant per run, anchored on
	// the merchant's latest incoming charge, so a burst yields one report
	// instead of one per transaction.
	if prefs.FrequencySpikeEnabled {
		keys := make([]string, 0, len(latestByKey))
		for key := range latestByKey {
			if byKey[key] != nil {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			if a, ok := checkFrequencySpike(latestByKey[key], key, byKey[key], recent); ok {
				anomalies = append(anomalies, a)
			}
		}
	}
	return anomalies, skipped
}

// checkUnusualAmount fires when a charge sits far above the merchant's
// historical mean, measured in standard deviations. It needs at least
// three observations and a non-degenerate spread to say anything.
func checkUnusualAmount(t Transaction, b *MerchantBaseline, prefs AnomalyPreferences) (Anomaly, bool) {
	if b.TransactionCount < 3 || b.StdDeviation < 1 {
		return Anomaly{}, false
	}
	deviations := (t.Amount - b.AverageAmount) / b.StdDeviation
	if deviations < prefs.UnusualAmountThreshold {
		return Anomaly{}, false
	}

	var pctDeviation float64
	if b.AverageAmount > 0 {
		pctDeviation = (t.Amount - b.AverageAmount) / b.AverageAmount * 100
	}

	mult := (11 - float64(clampSensitivity(prefs.SensitivityLevel))) / 5
	var severity Severity
	switch {
	case pctDeviation >= 500*mult:
		severity = SeverityCritical
	case pctDeviation >= 200*mult:
		severity = SeverityHigh
	case pctDeviation >= 100*mult:
		severity = SeverityMedium
	default:
		severity = SeverityLow
	}

	return Anomaly{
		TransactionID:    t.ID,
		Type:             AnomalyUnusualAmount,
		Severity:         severity,
		Title:            fmt.Sprintf("Unusual charge at %s", DisplayName(t.Merchant)),
		Description:      fmt.Sprintf("%.2f is %.1f standard deviations above the typical %.2f", t.Amount, deviations, b.AverageAmount),
		MerchantName:     DisplayName(t.Merchant),
		Amount:           t.Amount,
		ExpectedAmount:   b.AverageAmount,
		DeviationPercent: pctDeviation,
	}, true
}

// checkDuplicateCharge fires when the same merchant charges the same
// amount more than once inside the configured window. Each cluster is
// reported once per run regardless of how many of its members are in the
// incoming set.
func checkDuplicateCharge(t Transaction, key string, recent []Transaction, prefs AnomalyPreferences, reported map[string]bool) (Anomaly, bool) {
	window := time.Duration(prefs.DuplicateWindowHours) * time.Hour
	if window <= 0 {
		window = 48 * time.Hour
	}

	var related []string
	for _, r := range recent {
		if r.ID == t.ID || MerchantKey(r.Merchant) != key {
			continue
		}
		if math.Abs(r.Amount-t.Amount) > 0.01 {
			continue
		}
		gap := t.Date.Sub(r.Date)
		if gap < 0 {
			gap = -gap
		}
		if gap <= window {
			related = append(related, r.ID)
		}
	}
	if len(related) == 0 {
		return Anomaly{}, false
	}

	cluster := append([]string{t.ID}, related...)
	sort.Strings(cluster)
	clusterKey := strings.Join(cluster, "|")
	if reported[clusterKey] {
		return Anomaly{}, false
	}
	reported[clusterKey] = true

	return Anomaly{
		TransactionID:         t.ID,
		Type:                  AnomalyDuplicateCharge,
		Severity:              SeverityHigh,
		Title:                 fmt.Sprintf("Possible duplicate charge at %s", DisplayName(t.Merchant)),
		Description:           fmt.Sprintf("%d charge(s) of %.2f within %d hours", len(related)+1, t.Amount, int(window.Hours())),
		MerchantName:          DisplayName(t.Merchant),
		Amount:                t.Amount,
		ExpectedAmount:        t.Amount,
		RelatedTransactionIDs: related,
	}, true
}

// checkPriceIncrease fires when a likely subscription charges noticeably
// more than its established price.
func checkPriceIncrease(t Transaction, b *MerchantBaseline, prefs AnomalyPreferences) (Anomaly, bool) {
	if !b.IsLikelySubscription || b.SubscriptionAmount <= 0 {
		return Anomaly{}, false
	}
	increase := (t.Amount - b.SubscriptionAmount) / b.SubscriptionAmount
	if increase < prefs.PriceIncreaseThreshold {
		return Anomaly{}, false
	}

	severity := SeverityMedium
	if increase >= 0.25 {
		severity = SeverityHigh
	}
	return Anomaly{
		TransactionID:    t.ID,
		Type:             AnomalyPriceIncrease,
		Severity:         severity,
		Title:            fmt.Sprintf("%s price increased", DisplayName(t.Merchant)),
		Description:      fmt.Sprintf("Subscription went from %.2f to %.2f (+%.0f%%)", b.SubscriptionAmount, t.Amount, increase*100),
		MerchantName:     DisplayName(t.Merchant),
		Amount:           t.Amount,
		ExpectedAmount:   b.SubscriptionAmount,
		DeviationPercent: increase * 100,
	}, true
}

// checkNewMerchantLarge fires on a large first-ever charge at a merchant
// with no baseline.
func checkNewMerchantLarge(t Transaction, prefs AnomalyPreferences) (Anomaly, bool) {
	if t.IsIncome || t.Amount < prefs.NewMerchantThreshold {
		return Anomaly{}, false
	}
	severity := SeverityMedium
	if t.Amount >= 5*prefs.NewMerchantThreshold {
		severity = SeverityHigh
	}
	return Anomaly{
		TransactionID:  t.ID,
		Type:           AnomalyNewMerchantLarge,
		Severity:       severity,
		Title:          fmt.Sprintf("Large purchase at new merchant %s", DisplayName(t.Merchant)),
		Description:    fmt.Sprintf("First charge at this merchant is %.2f", t.Amount),
		MerchantName:   DisplayName(t.Merchant),
		Amount:         t.Amount,
		ExpectedAmount: 0,
	}, true
}

// checkFrequencySpike fires when a merchant with a known cadence charges
// far more often than usual over the trailing seven days. The finding
// spans multiple transactions, so TransactionID is left empty.
func checkFrequencySpike(t Transaction, key string, b *MerchantBaseline, recent []Transaction) (Anomaly, bool) {
	if b.AverageDaysBetween <= 0 {
		return Anomaly{}, false
	}
	windowStart := t.Date.AddDate(0, 0, -7)

	var related []string
	for _, r := range recent {
		if MerchantKey(r.Merchant) != key {
			continue
		}
		if r.Date.After(windowStart) && !r.Date.After(t.Date) {
			related = append(related, r.ID)
		}
	}
	// One charge in a week is never a spike, whatever the cadence says.
	if len(related) < 2 {
		return Anomaly{}, false
	}
	actual := float64(len(related))
	expectedPerWeek := 7 / b.AverageDaysBetween
	if expectedPerWeek <= 0 {
		return Anomaly{}, false
	}
	ratio := actual / expectedPerWeek
	if ratio < 2 {
		return Anomaly{}, false
	}

	severity := SeverityMedium
	if ratio >= 4 {
		severity = SeverityHigh
	}
	return Anomaly{
		Type:                  AnomalyFrequencySpike,
		Severity:              severity,
		Title:                 fmt.Sprintf("Unusual activity at %s", DisplayName(t.Merchant)),
		Description:           fmt.Sprintf("%d charges in the last 7 days vs about %.1f expected", len(related), expectedPerWeek),
		MerchantName:          DisplayName(t.Merchant),
		Amount:                t.Amount,
		ExpectedAmount:        expectedPerWeek,
		DeviationPercent:      (ratio - 1) * 100,
		RelatedTransactionIDs: related,
	}, true
}

func clampSensitivity(level int) int {
	if level < 1 {
		return 1
	}
	if level > 10 {
		return 10
	}
	return level
}
