package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clearspend/backend/internal/insights"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	// Storage maps. Transactions are keyed by userID+"/"+txnID so IDs
	// only need to be unique per user; everything else is keyed by the
	// same composite keys the Firestore store uses for its doc IDs.
	transactions map[string]insights.Transaction
	balances     map[string]float64
	recurring    map[string][]insights.RecurringItem
	baselines    map[string]insights.MerchantBaseline
	anomalies    map[string]insights.Anomaly
	snapshots    map[string]insights.PredictionSnapshot
	preferences  map[string]insights.AnomalyPreferences
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]insights.Transaction),
		balances:     make(map[string]float64),
		recurring:    make(map[string][]insights.RecurringItem),
		baselines:    make(map[string]insights.MerchantBaseline),
		anomalies:    make(map[string]insights.Anomaly),
		snapshots:    make(map[string]insights.PredictionSnapshot),
		preferences:  make(map[string]insights.AnomalyPreferences),
	}
}

// paginateIDs applies cursor-based pagination to a sorted slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	sort.Strings(ids)

	// Find cursor position
	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			for i, id := range ids {
				if id > cursorID {
					startIdx = i
					break
				}
				// If we've reached the end without finding a greater ID
				if i == len(ids)-1 {
					return nil, ""
				}
			}
		}
	}

	// Slice from startIdx
	ids = ids[startIdx:]

	// Apply page size
	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}

	return ids, nextToken
}

// Transaction operations

func (m *MemoryStore) UpsertTransactions(ctx context.Context, txns []insights.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, txn := range txns {
		if txn.ID == "" {
			txn.ID = uuid.New().String()
		}
		m.transactions[txn.UserID+"/"+txn.ID] = txn
	}
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]insights.Transaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// First pass: collect matching keys
	var matchingIDs []string
	for key, txn := range m.transactions {
		if txn.UserID != userID {
			continue
		}
		if startDate != nil && txn.Date.Before(*startDate) {
			continue
		}
		if endDate != nil && txn.Date.After(*endDate) {
			continue
		}
		matchingIDs = append(matchingIDs, key)
	}

	pageIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)

	txns := make([]insights.Transaction, 0, len(pageIDs))
	for _, key := range pageIDs {
		txns = append(txns, m.transactions[key])
	}
	return txns, nextToken, nil
}

// Balance operations

func (m *MemoryStore) GetBalance(ctx context.Context, userID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	balance, ok := m.balances[userID]
	if !ok {
		return 0, ErrNotFound
	}
	return balance, nil
}

func (m *MemoryStore) SetBalance(ctx context.Context, userID string, balance float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[userID] = balance
	return nil
}

// Recurring item cache

func (m *MemoryStore) PutRecurringItems(ctx context.Context, userID string, items []insights.RecurringItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]insights.RecurringItem, len(items))
	copy(stored, items)
	m.recurring[userID] = stored
	return nil
}

func (m *MemoryStore) ListRecurringItems(ctx context.Context, userID string) ([]insights.RecurringItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]insights.RecurringItem, len(m.recurring[userID]))
	copy(items, m.recurring[userID])
	return items, nil
}

// Baseline operations

func (m *MemoryStore) UpsertBaseline(ctx context.Context, userID string, baseline insights.MerchantBaseline) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.baselines[userID+"__"+baseline.MerchantKey] = baseline
	return nil
}

func (m *MemoryStore) ListBaselines(ctx context.Context, userID string) ([]insights.MerchantBaseline, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key, b := range m.baselines {
		if key == userID+"__"+b.MerchantKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	baselines := make([]insights.MerchantBaseline, 0, len(keys))
	for _, key := range keys {
		baselines = append(baselines, m.baselines[key])
	}
	return baselines, nil
}

// Anomaly operations

func (m *MemoryStore) UpsertAnomaly(ctx context.Context, userID string, anomaly insights.Anomaly) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := anomalyKey(userID, anomaly)
	_, existed := m.anomalies[key]
	m.anomalies[key] = anomaly
	return !existed, nil
}

func (m *MemoryStore) ListAnomalies(ctx context.Context, userID string, pageSize int32, pageToken string) ([]insights.Anomaly, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matchingIDs []string
	for key := range m.anomalies {
		if key == anomalyKey(userID, m.anomalies[key]) {
			matchingIDs = append(matchingIDs, key)
		}
	}

	pageIDs, nextToken := paginateIDs(matchingIDs, pageSize, pageToken)

	anomalies := make([]insights.Anomaly, 0, len(pageIDs))
	for _, key := range pageIDs {
		anomalies = append(anomalies, m.anomalies[key])
	}
	return anomalies, nextToken, nil
}

// Prediction snapshot operations

func (m *MemoryStore) PutSnapshots(ctx context.Context, snaps []insights.PredictionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, snap := range snaps {
		m.snapshots[snapshotKey(snap.UserID, snap.Date)] = snap
	}
	return nil
}

func (m *MemoryStore) ListSnapshots(ctx context.Context, userID string, reconciled *bool) ([]insights.PredictionSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key, snap := range m.snapshots {
		if snap.UserID != userID {
			continue
		}
		if reconciled != nil && snap.Reconciled != *reconciled {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	snaps := make([]insights.PredictionSnapshot, 0, len(keys))
	for _, key := range keys {
		snaps = append(snaps, m.snapshots[key])
	}
	return snaps, nil
}

// Anomaly preference operations

func (m *MemoryStore) GetAnomalyPreferences(ctx context.Context, userID string) (insights.AnomalyPreferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefs, ok := m.preferences[userID]
	if !ok {
		return insights.DefaultAnomalyPreferences(), nil
	}
	return prefs, nil
}

func (m *MemoryStore) UpdateAnomalyPreferences(ctx context.Context, userID string, prefs insights.AnomalyPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.preferences[userID] = prefs
	return nil
}

// User operations

func (m *MemoryStore) ListUserIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.balances))
	for id := range m.balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
