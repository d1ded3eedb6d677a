package insights

import (
	"math"
	"sort"
	"strings"
)

// frequencyWindow maps a mean day-interval range onto a cadence. Gaps
// between windows (e.g. 18-25 days) intentionally classify as irregular.
type frequencyWindow struct {
	freq     Frequency
	min, max float64
}

var frequencyWindows = []frequencyWindow{
	{FrequencyWeekly, 5, 10},
	{FrequencyBiweekly, 12, 18},
	{FrequencyMonthly, 25, 35},
	{FrequencyQuarterly, 80, 100},
	{FrequencyYearly, 350, 380},
}

// classifyFrequency buckets a mean interval, returning FrequencyIrregular
// when it falls outside every window.
func classifyFrequency(meanIntervalDays float64) Frequency {
	for _, w := range frequencyWindows {
		if meanIntervalDays >= w.min && meanIntervalDays <= w.max {
			return w.freq
		}
	}
	return FrequencyIrregular
}

// DetectRecurring discovers recurring payment patterns in transaction
// history. Transactions matching the exclusion lists are dropped, the rest
// are grouped by merchant key, and each group is classified by amount
// consistency and interval regularity. Results are ordered by confidence
// descending, ties broken by the most recent occurrence.
//
// The run reports InsufficientData when fewer than cfg.MinTransactions
// usable records are supplied; callers must treat that as "no result yet."
func DetectRecurring(txns []Transaction, cfg DetectorConfig) RecurringResult {
	valid, skipped := validTransactions(txns)
	res := RecurringResult{SkippedRecords: skipped}
	if len(valid) < cfg.MinTransactions {
		res.InsufficientData = true
		return res
	}

	groups := make(map[string][]Transaction)
	for _, t := range valid {
		if excludedFromDetection(t, cfg) {
			continue
		}
		key := MerchantKey(t.Merchant)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], t)
	}

	for key, group := range groups {
		if item, ok := classifyGroup(key, group, cfg); ok {
			res.Items = append(res.Items, item)
		}
	}

	sort.Slice(res.Items, func(i, j int) bool {
		if res.Items[i].Confidence != res.Items[j].Confidence {
			return res.Items[i].Confidence > res.Items[j].Confidence
		}
		return res.Items[i].LastDate.After(res.Items[j].LastDate)
	})
	return res
}

func excludedFromDetection(t Transaction, cfg DetectorConfig) bool {
	merchant := strings.ToLower(t.Merchant)
	for _, sub := range cfg.ExcludedMerchants {
		if sub != "" && strings.Contains(merchant, strings.ToLower(sub)) {
			return true
		}
	}
	category := strings.ToLower(t.Category)
	for _, c := range cfg.ExcludedCategories {
		if category == strings.ToLower(c) {
			return true
		}
	}
	return false
}

// classifyGroup decides whether one merchant's transactions form a
// recurring pattern.
func classifyGroup(key string, group []Transaction, cfg DetectorConfig) (RecurringItem, bool) {
	if len(group) < 2 {
		return RecurringItem{}, false
	}

	sorted := make([]Transaction, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var sum float64
	for _, t := range sorted {
		sum += math.Abs(t.Amount)
	}
	mean := sum / float64(len(sorted))
	if mean == 0 {
		return RecurringItem{}, false
	}
	for _, t := range sorted {
		if math.Abs(math.Abs(t.Amount)-mean) > cfg.AmountTolerance*mean {
			return RecurringItem{}, false
		}
	}

	intervals := make([]float64, 0, len(sorted)-1)
	var intervalSum float64
	for i := 1; i < len(sorted); i++ {
		d := daysBetween(sorted[i-1].Date, sorted[i].Date)
		intervals = append(intervals, d)
		intervalSum += d
	}
	meanInterval := intervalSum / float64(len(intervals))

	freq := classifyFrequency(meanInterval)
	if freq == FrequencyIrregular {
		return RecurringItem{}, false
	}

	confidence := 50
	occurrenceBoost := len(sorted) * 5
	if occurrenceBoost > 25 {
		occurrenceBoost = 25
	}
	confidence += occurrenceBoost
	confidence += 10 // amount consistency already established above
	if intervalsNearCanonical(intervals, freq) {
		confidence += 15
	}
	if confidence > 100 {
		confidence = 100
	}
	if confidence < cfg.MinConfidence {
		return RecurringItem{}, false
	}

	last := sorted[len(sorted)-1]
	isIncome := signedMean(sorted) < 0

	return RecurringItem{
		MerchantKey:      key,
		DisplayName:      DisplayName(last.Merchant),
		AverageAmount:    math.Round(mean*100) / 100,
		Frequency:        freq,
		LastDate:         last.Date,
		NextExpectedDate: last.Date.AddDate(0, 0, freq.IntervalDays()),
		OccurrenceCount:  len(sorted),
		Confidence:       confidence,
		ConfidenceLevel:  levelForScore(confidence),
		Category:         mostCommonCategory(sorted),
		IsIncome:         isIncome,
	}, true
}

// intervalsNearCanonical reports whether every observed interval is within
// 25% of the frequency's canonical interval.
func intervalsNearCanonical(intervals []float64, freq Frequency) bool {
	canonical := float64(freq.IntervalDays())
	for _, d := range intervals {
		if math.Abs(d-canonical) > 0.25*canonical {
			return false
		}
	}
	return true
}

func signedMean(txns []Transaction) float64 {
	var sum float64
	for _, t := range txns {
		sum += t.Amount
	}
	return sum / float64(len(txns))
}

// mostCommonCategory returns the modal category of a date-sorted group,
// breaking ties in favor of the category seen first.
func mostCommonCategory(sorted []Transaction) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range sorted {
		if _, seen := counts[t.Category]; !seen {
			order = append(order, t.Category)
		}
		counts[t.Category]++
	}
	best := ""
	bestCount := 0
	for _, cat := range order {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}
	return best
}
