package insights

import (
	"math"
	"sort"
)

// subscriptionMaxCV is the coefficient-of-variation ceiling for flagging a
// monthly merchant as a likely subscription.
const subscriptionMaxCV = 0.05

// BuildBaselines computes one MerchantBaseline per merchant key with at
// least two usable transactions. Unlike the recurring detector it applies
// no exclusion filter and never rejects a merchant for cadence: a coffee
// shop gets a baseline with an irregular typical frequency. The second
// return value is the count of malformed records skipped.
func BuildBaselines(txns []Transaction) ([]MerchantBaseline, int) {
	valid, skipped := validTransactions(txns)

	groups := make(map[string][]Transaction)
	for _, t := range valid {
		key := MerchantKey(t.Merchant)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], t)
	}

	var baselines []MerchantBaseline
	for key, group := range groups {
		if len(group) < 2 {
			continue
		}
		baselines = append(baselines, buildBaseline(key, group))
	}

	sort.Slice(baselines, func(i, j int) bool {
		return baselines[i].MerchantKey < baselines[j].MerchantKey
	})
	return baselines, skipped
}

func buildBaseline(key string, group []Transaction) MerchantBaseline {
	sorted := make([]Transaction, len(group))
	copy(sorted, group)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	amounts := make([]float64, len(sorted))
	for i, t := range sorted {
		amounts[i] = math.Abs(t.Amount)
	}

	mean := meanOf(amounts)
	stddev := populationStdDev(amounts, mean)
	minAmt, maxAmt := amounts[0], amounts[0]
	for _, a := range amounts[1:] {
		if a < minAmt {
			minAmt = a
		}
		if a > maxAmt {
			maxAmt = a
		}
	}

	var intervalSum float64
	for i := 1; i < len(sorted); i++ {
		intervalSum += daysBetween(sorted[i-1].Date, sorted[i].Date)
	}
	avgDaysBetween := intervalSum / float64(len(sorted)-1)
	freq := classifyFrequency(avgDaysBetween)

	b := MerchantBaseline{
		MerchantKey:        key,
		AverageAmount:      mean,
		MedianAmount:       medianOf(amounts),
		StdDeviation:       stddev,
		MinAmount:          minAmt,
		MaxAmount:          maxAmt,
		TypicalFrequency:   freq,
		AverageDaysBetween: avgDaysBetween,
		TransactionCount:   len(sorted),
		TypicalCategory:    mostCommonCategory(sorted),
		FirstSeenDate:      sorted[0].Date,
		LastSeenDate:       sorted[len(sorted)-1].Date,
	}

	if freq == FrequencyMonthly && mean > 0 && stddev/mean < subscriptionMaxCV && len(sorted) >= 3 {
		b.IsLikelySubscription = true
		b.SubscriptionAmount = b.MedianAmount
		var daySum float64
		for _, t := range sorted {
			daySum += float64(t.Date.Day())
		}
		b.SubscriptionDayOfMonth = int(math.Round(daySum / float64(len(sorted))))
	}
	return b
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func populationStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
