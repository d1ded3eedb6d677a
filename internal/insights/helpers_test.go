package insights

import (
	"fmt"
	"time"
)

var testEpoch = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

// tx builds an expense transaction dated dayOffset days after the test epoch.
func tx(id, merchant string, amount float64, dayOffset int) Transaction {
	return Transaction{
		ID:       id,
		UserID:   "user-1",
		Merchant: merchant,
		Amount:   amount,
		Date:     testEpoch.AddDate(0, 0, dayOffset),
		Category: "utilities",
	}
}

// series builds n transactions at the same merchant and amount, spaced
// intervalDays apart.
func series(merchant string, amount float64, n, intervalDays int) []Transaction {
	out := make([]Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, tx(fmt.Sprintf("%s-%d", MerchantKey(merchant), i), merchant, amount, i*intervalDays))
	}
	return out
}
