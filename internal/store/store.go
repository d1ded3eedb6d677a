// Package store provides persistence for the analytics engine's derived
// data: merchant baselines, anomalies, recurring item caches and prediction
// snapshots, plus the transaction history and balances they are derived
// from. Upsert-by-key semantics live here; the engine itself never decides
// whether something already exists.
package store

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/clearspend/backend/internal/insights"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines the interface for all database operations used by the service
type Store interface {
	// Transaction operations. Transactions are written by the ingestion
	// side and read-only to the engine.
	UpsertTransactions(ctx context.Context, txns []insights.Transaction) error
	ListTransactions(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]insights.Transaction, string, error)

	// Balance operations
	GetBalance(ctx context.Context, userID string) (float64, error)
	SetBalance(ctx context.Context, userID string, balance float64) error

	// Recurring item cache, replaced wholesale on each detection run.
	PutRecurringItems(ctx context.Context, userID string, items []insights.RecurringItem) error
	ListRecurringItems(ctx context.Context, userID string) ([]insights.RecurringItem, error)

	// Baseline operations, keyed by user+merchant.
	UpsertBaseline(ctx context.Context, userID string, baseline insights.MerchantBaseline) error
	ListBaselines(ctx context.Context, userID string) ([]insights.MerchantBaseline, error)

	// Anomaly operations, keyed by user+transaction+type. UpsertAnomaly
	// reports whether the anomaly was newly created, so repeated scans do
	// not duplicate findings.
	UpsertAnomaly(ctx context.Context, userID string, anomaly insights.Anomaly) (bool, error)
	ListAnomalies(ctx context.Context, userID string, pageSize int32, pageToken string) ([]insights.Anomaly, string, error)

	// Prediction snapshot operations, keyed by user+date.
	PutSnapshots(ctx context.Context, snaps []insights.PredictionSnapshot) error
	ListSnapshots(ctx context.Context, userID string, reconciled *bool) ([]insights.PredictionSnapshot, error)

	// Anomaly preference operations. Get returns the defaults when the
	// user has never saved preferences.
	GetAnomalyPreferences(ctx context.Context, userID string) (insights.AnomalyPreferences, error)
	UpdateAnomalyPreferences(ctx context.Context, userID string, prefs insights.AnomalyPreferences) error

	// ListUserIDs returns every user with a stored balance, for batch runs.
	ListUserIDs(ctx context.Context) ([]string, error)
}

// anomalyKey builds the dedup key for an anomaly. Multi-transaction
// findings carry no transaction ID, so the merchant stands in for it.
func anomalyKey(userID string, a insights.Anomaly) string {
	ref := a.TransactionID
	if ref == "" {
		ref = insights.MerchantKey(a.MerchantName)
	}
	return userID + "__" + ref + "__" + string(a.Type)
}

// snapshotKey builds the storage key for a prediction snapshot.
func snapshotKey(userID string, date time.Time) string {
	return userID + "__" + date.UTC().Format("2006-01-02")
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
