package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearspend/backend/internal/insights"
)

func day(offset int) time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestMemoryStoreTransactions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	txns := []insights.Transaction{
		{ID: "t1", UserID: "alice", Merchant: "Netflix", Amount: 15.99, Date: day(0)},
		{ID: "t2", UserID: "alice", Merchant: "Coffee", Amount: 4.50, Date: day(5)},
		{ID: "t3", UserID: "bob", Merchant: "Gym", Amount: 40, Date: day(2)},
		{UserID: "alice", Merchant: "Grocer", Amount: 80, Date: day(9)},
	}
	require.NoError(t, s.UpsertTransactions(ctx, txns))

	got, next, err := s.ListTransactions(ctx, "alice", nil, nil, 50, "")
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Len(t, got, 3)
	for _, txn := range got {
		assert.Equal(t, "alice", txn.UserID)
		assert.NotEmpty(t, txn.ID, "IDs should be assigned on write")
	}

	// Date range filter
	start, end := day(1), day(6)
	got, _, err = s.ListTransactions(ctx, "alice", &start, &end, 50, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].ID)

	// Upsert replaces by ID rather than duplicating
	require.NoError(t, s.UpsertTransactions(ctx, []insights.Transaction{
		{ID: "t1", UserID: "alice", Merchant: "Netflix", Amount: 17.99, Date: day(0)},
	}))
	got, _, err = s.ListTransactions(ctx, "alice", nil, nil, 50, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMemoryStoreTransactionPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var txns []insights.Transaction
	for i := 0; i < 5; i++ {
		txns = append(txns, insights.Transaction{
			ID:       string(rune('a' + i)),
			UserID:   "alice",
			Merchant: "Shop",
			Amount:   10,
			Date:     day(i),
		})
	}
	require.NoError(t, s.UpsertTransactions(ctx, txns))

	page1, token, err := s.ListTransactions(ctx, "alice", nil, nil, 2, "")
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotEmpty(t, token)

	page2, token, err := s.ListTransactions(ctx, "alice", nil, nil, 2, token)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotEmpty(t, token)

	page3, token, err := s.ListTransactions(ctx, "alice", nil, nil, 2, token)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.Empty(t, token)

	seen := map[string]bool{}
	for _, txn := range append(append(page1, page2...), page3...) {
		assert.False(t, seen[txn.ID], "transaction %s returned twice", txn.ID)
		seen[txn.ID] = true
	}
}

func TestMemoryStoreBalance(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetBalance(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetBalance(ctx, "alice", 1250.50))
	balance, err := s.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1250.50, balance)
}

func TestMemoryStoreRecurringItems(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	items, err := s.ListRecurringItems(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, items)

	first := []insights.RecurringItem{
		{MerchantKey: "netflix", AverageAmount: 15.99, Frequency: insights.FrequencyMonthly},
		{MerchantKey: "gym", AverageAmount: 40, Frequency: insights.FrequencyMonthly},
	}
	require.NoError(t, s.PutRecurringItems(ctx, "alice", first))

	// A later detection run replaces the cache wholesale.
	require.NoError(t, s.PutRecurringItems(ctx, "alice", first[:1]))
	items, err = s.ListRecurringItems(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "netflix", items[0].MerchantKey)
}

func TestMemoryStoreBaselines(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.UpsertBaseline(ctx, "alice", insights.MerchantBaseline{MerchantKey: "netflix", AverageAmount: 15.99}))
	require.NoError(t, s.UpsertBaseline(ctx, "alice", insights.MerchantBaseline{MerchantKey: "grocer", AverageAmount: 82.10}))
	require.NoError(t, s.UpsertBaseline(ctx, "bob", insights.MerchantBaseline{MerchantKey: "netflix", AverageAmount: 22.99}))

	// Re-upsert overwrites rather than duplicating
	require.NoError(t, s.UpsertBaseline(ctx, "alice", insights.MerchantBaseline{MerchantKey: "netflix", AverageAmount: 17.99}))

	baselines, err := s.ListBaselines(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, baselines, 2)
	byKey := map[string]insights.MerchantBaseline{}
	for _, b := range baselines {
		byKey[b.MerchantKey] = b
	}
	assert.Equal(t, 17.99, byKey["netflix"].AverageAmount)
	assert.Equal(t, 82.10, byKey["grocer"].AverageAmount)
}

func TestMemoryStoreAnomalies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := insights.Anomaly{
		TransactionID: "t1",
		Type:          insights.AnomalyUnusualAmount,
		Severity:      insights.SeverityHigh,
		MerchantName:  "Electric Co",
		Amount:        412,
	}

	created, err := s.UpsertAnomaly(ctx, "alice", a)
	require.NoError(t, err)
	assert.True(t, created)

	// Same transaction and type on a re-scan is not a new finding.
	created, err = s.UpsertAnomaly(ctx, "alice", a)
	require.NoError(t, err)
	assert.False(t, created)

	// A different check on the same transaction is.
	a.Type = insights.AnomalyDuplicateCharge
	created, err = s.UpsertAnomaly(ctx, "alice", a)
	require.NoError(t, err)
	assert.True(t, created)

	// Frequency spikes carry no transaction ID and dedup by merchant.
	spike := insights.Anomaly{
		Type:         insights.AnomalyFrequencySpike,
		Severity:     insights.SeverityMedium,
		MerchantName: "Electric Co",
	}
	created, err = s.UpsertAnomaly(ctx, "alice", spike)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = s.UpsertAnomaly(ctx, "alice", spike)
	require.NoError(t, err)
	assert.False(t, created)

	anomalies, _, err := s.ListAnomalies(ctx, "alice", 50, "")
	require.NoError(t, err)
	assert.Len(t, anomalies, 3)

	anomalies, _, err = s.ListAnomalies(ctx, "bob", 50, "")
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestMemoryStoreSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	snaps := []insights.PredictionSnapshot{
		{UserID: "alice", Date: day(1), PredictedBalance: 900},
		{UserID: "alice", Date: day(2), PredictedBalance: 880},
	}
	require.NoError(t, s.PutSnapshots(ctx, snaps))

	// Re-forecasting the same day overwrites its snapshot.
	require.NoError(t, s.PutSnapshots(ctx, []insights.PredictionSnapshot{
		{UserID: "alice", Date: day(1), PredictedBalance: 905},
	}))

	all, err := s.ListSnapshots(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 905.0, all[0].PredictedBalance)

	reconciled := insights.PredictionSnapshot{
		UserID: "alice", Date: day(2), PredictedBalance: 880,
		Reconciled: true, ActualBalance: 870,
	}
	require.NoError(t, s.PutSnapshots(ctx, []insights.PredictionSnapshot{reconciled}))

	wantReconciled := true
	got, err := s.ListSnapshots(ctx, "alice", &wantReconciled)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 870.0, got[0].ActualBalance)

	wantReconciled = false
	got, err = s.ListSnapshots(ctx, "alice", &wantReconciled)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 905.0, got[0].PredictedBalance)
}

func TestMemoryStoreAnomalyPreferences(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	prefs, err := s.GetAnomalyPreferences(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, insights.DefaultAnomalyPreferences(), prefs)

	prefs.SensitivityLevel = 8
	prefs.DuplicateChargeEnabled = false
	require.NoError(t, s.UpdateAnomalyPreferences(ctx, "alice", prefs))

	got, err := s.GetAnomalyPreferences(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 8, got.SensitivityLevel)
	assert.False(t, got.DuplicateChargeEnabled)

	// Other users still see defaults.
	got, err = s.GetAnomalyPreferences(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, insights.DefaultAnomalyPreferences(), got)
}

func TestMemoryStoreListUserIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ids, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.SetBalance(ctx, "carol", 10))
	require.NoError(t, s.SetBalance(ctx, "alice", 20))
	require.NoError(t, s.SetBalance(ctx, "bob", 30))

	ids, err = s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, ids)
}

func TestPageTokenRoundTrip(t *testing.T) {
	token := EncodePageToken("alice/txn-42")
	require.NotEmpty(t, token)

	docID, err := DecodePageToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice/txn-42", docID)

	docID, err = DecodePageToken("")
	require.NoError(t, err)
	assert.Empty(t, docID)

	_, err = DecodePageToken("not-base64!!!")
	assert.Error(t, err)
}
