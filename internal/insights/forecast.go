package insights

import (
	"fmt"
	"math"
	"time"
)

// weekendSpendMultiplier scales the discretionary daily rate on Saturdays
// and Sundays.
const weekendSpendMultiplier = 1.3

// SpendingRate is the discretionary daily spend used by the projection
// loop. The weekend adjustment is owned by the rate, not the loop: ForDate
// applies the multiplier when the projected date falls on a weekend.
type SpendingRate struct {
	Daily             float64 `json:"daily"`
	WeekendMultiplier float64 `json:"weekendMultiplier"`
}

// FlatRate returns a rate with no weekend adjustment.
func FlatRate(daily float64) SpendingRate {
	return SpendingRate{Daily: daily, WeekendMultiplier: 1}
}

// ForDate returns the spend contribution for one projected day.
func (r SpendingRate) ForDate(d time.Time) float64 {
	wd := d.Weekday()
	if (wd == time.Saturday || wd == time.Sunday) && r.WeekendMultiplier > 0 {
		return r.Daily * r.WeekendMultiplier
	}
	return r.Daily
}

// ComputeSpendingRate derives the daily discretionary rate from trailing
// history: non-recurring, non-excluded expenses over the window divided by
// the window length, with the weekend multiplier attached.
func ComputeSpendingRate(txns []Transaction, recurring []RecurringItem, windowDays int, today time.Time) SpendingRate {
	if windowDays <= 0 {
		windowDays = 30
	}
	recurringKeys := make(map[string]bool, len(recurring))
	for _, item := range recurring {
		recurringKeys[item.MerchantKey] = true
	}

	cutoff := dateOnly(today).AddDate(0, 0, -windowDays)
	var total float64
	for _, t := range txns {
		if t.Amount <= 0 || t.ExcludedFromBudget || t.Date.IsZero() {
			continue
		}
		if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			continue
		}
		if t.Date.Before(cutoff) || t.Date.After(today) {
			continue
		}
		if recurringKeys[MerchantKey(t.Merchant)] {
			continue
		}
		total += t.Amount
	}
	return SpendingRate{
		Daily:             total / float64(windowDays),
		WeekendMultiplier: weekendSpendMultiplier,
	}
}

// ForecastRequest carries everything the projection needs. Today is
// explicit so runs are reproducible.
type ForecastRequest struct {
	CurrentBalance      float64
	RecurringItems      []RecurringItem
	Rate                SpendingRate
	HorizonDays         int     // default 30
	LowBalanceThreshold float64
	// LargeItemFraction enables large_expense / missed_income alerts when a
	// single recurring item exceeds this fraction of the current balance.
	// Zero disables them.
	LargeItemFraction float64
	// HistoryDays is the span of transaction history behind the recurring
	// items, used only for the confidence rating.
	HistoryDays int
	Today       time.Time
}

// GenerateForecast projects the account balance day by day across the
// horizon. Recurring items are applied on their expected dates and advanced
// by their canonical intervals on local working copies; the caller's slice
// is never mutated. Identical requests produce identical forecasts.
func GenerateForecast(req ForecastRequest) Forecast {
	horizon := req.HorizonDays
	if horizon <= 0 {
		horizon = 30
	}
	today := dateOnly(req.Today)

	items := make([]RecurringItem, len(req.RecurringItems))
	copy(items, req.RecurringItems)

	f := Forecast{
		GeneratedFor:      today,
		CurrentBalance:    req.CurrentBalance,
		LowestBalance:     req.CurrentBalance,
		LowestBalanceDate: today,
		Days:              make([]ForecastDay, 0, horizon),
		Confidence:        forecastConfidence(req.RecurringItems, req.HistoryDays),
	}

	// Overdue items: alert on income that never arrived, then roll every
	// stale expected date forward past today so the loop below sees it.
	for i := range items {
		interval := items[i].Frequency.IntervalDays()
		if interval <= 0 {
			continue
		}
		if items[i].IsIncome && !items[i].NextExpectedDate.IsZero() && dateOnly(items[i].NextExpectedDate).Before(today) {
			f.Alerts = append(f.Alerts, ForecastAlert{
				Type:     AlertMissedIncome,
				Severity: AlertWarning,
				Date:     dateOnly(items[i].NextExpectedDate),
				Message:  fmt.Sprintf("Expected income from %s on %s has not arrived", items[i].DisplayName, dateOnly(items[i].NextExpectedDate).Format("2006-01-02")),
				Amount:   items[i].AverageAmount,
			})
		}
		for !dateOnly(items[i].NextExpectedDate).After(today) {
			items[i].NextExpectedDate = items[i].NextExpectedDate.AddDate(0, 0, interval)
		}
	}

	balance := req.CurrentBalance
	lowAlerted := false
	negativeAlerted := false
	largeAlerted := make(map[int]bool, len(items))

	for day := 1; day <= horizon; day++ {
		date := today.AddDate(0, 0, day)

		spend := req.Rate.ForDate(date)
		balance -= spend
		dayExpenses := spend
		dayIncome := 0.0

		for i := range items {
			interval := items[i].Frequency.IntervalDays()
			if interval <= 0 {
				continue
			}
			// A weekly item can land on this day more than once only if its
			// expected date was not advanced; the loop guards regardless.
			for sameDay(items[i].NextExpectedDate, date) {
				amount := math.Abs(items[i].AverageAmount)
				if items[i].IsIncome {
					balance += amount
					dayIncome += amount
					f.TotalIncome += amount
				} else {
					balance -= amount
					dayExpenses += amount
					f.TotalExpenses += amount
					if req.LargeItemFraction > 0 && req.CurrentBalance > 0 &&
						amount >= req.LargeItemFraction*req.CurrentBalance && !largeAlerted[i] {
						largeAlerted[i] = true
						f.Alerts = append(f.Alerts, ForecastAlert{
							Type:     AlertLargeExpense,
							Severity: AlertWarning,
							Date:     date,
							Message:  fmt.Sprintf("%s (%.2f) is a large share of your current balance", items[i].DisplayName, amount),
							Amount:   amount,
						})
					}
				}
				items[i].NextExpectedDate = items[i].NextExpectedDate.AddDate(0, 0, interval)
			}
		}

		isNegative := balance < 0
		isLow := balance < req.LowBalanceThreshold && balance >= 0

		f.Days = append(f.Days, ForecastDay{
			Date:              date,
			ProjectedBalance:  round2(balance),
			ProjectedIncome:   round2(dayIncome),
			ProjectedExpenses: round2(dayExpenses),
			IsLowBalance:      isLow,
			IsNegative:        isNegative,
		})

		if isLow && !lowAlerted {
			lowAlerted = true
			f.Alerts = append(f.Alerts, ForecastAlert{
				Type:     AlertLowBalance,
				Severity: AlertWarning,
				Date:     date,
				Message:  fmt.Sprintf("Balance projected to drop below %.2f on %s", req.LowBalanceThreshold, date.Format("2006-01-02")),
				Amount:   round2(balance),
			})
		}
		if isNegative && !negativeAlerted {
			negativeAlerted = true
			f.Alerts = append(f.Alerts, ForecastAlert{
				Type:     AlertNegativeBalance,
				Severity: AlertCritical,
				Date:     date,
				Message:  fmt.Sprintf("Balance projected to go negative on %s", date.Format("2006-01-02")),
				Amount:   round2(balance),
			})
		}
		if balance < f.LowestBalance {
			f.LowestBalance = balance
			f.LowestBalanceDate = date
		}
	}

	f.ProjectedEndBalance = round2(balance)
	f.LowestBalance = round2(f.LowestBalance)
	f.TotalIncome = round2(f.TotalIncome)
	f.TotalExpenses = round2(f.TotalExpenses)
	f.NetCashFlow = round2(f.TotalIncome - f.TotalExpenses)
	return f
}

// forecastConfidence is a weighted-majority rule over the recurring items'
// own confidence plus the depth of history behind them.
func forecastConfidence(items []RecurringItem, historyDays int) ConfidenceLevel {
	if len(items) == 0 || historyDays < 30 {
		return ConfidenceLow
	}
	high := 0
	for _, item := range items {
		if item.ConfidenceLevel == ConfidenceHigh || item.Confidence >= 80 {
			high++
		}
	}
	if historyDays >= 90 && high*2 > len(items) {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
