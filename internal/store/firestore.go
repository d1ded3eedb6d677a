package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/clearspend/backend/internal/insights"
)

// Firestore collection names.
const (
	colTransactions = "transactions"
	colBalances     = "balances"
	colRecurring    = "recurringItems"
	colBaselines    = "merchantBaselines"
	colAnomalies    = "anomalies"
	colSnapshots    = "predictionSnapshots"
	colPreferences  = "anomalyPreferences"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

type balanceDoc struct {
	UserID  string
	Balance float64
}

type recurringDoc struct {
	UserID string
	Items  []insights.RecurringItem
}

type baselineDoc struct {
	UserID string
	insights.MerchantBaseline
}

type anomalyDoc struct {
	UserID string
	insights.Anomaly
}

// applyDateAwarePagination handles pagination for queries with date range filters.
// Firestore requires OrderBy on inequality fields first, so we use OrderBy("Date") + OrderBy(__name__).
// The cursor must include both the Date value and the document ID.
func (s *FirestoreStore) applyDateAwarePagination(ctx context.Context, query firestore.Query, collection string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy("Date", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		// Fetch the cursor document to get its Date value for composite StartAfter
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		dateVal := cursorDoc.Data()["Date"]
		query = query.StartAfter(dateVal, docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query for cursor-based pagination.
// It fetches pageSize+1 docs so the caller can detect whether a next page exists.
func (s *FirestoreStore) applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1) // +1 to detect next page
	return query, nil
}

// Transaction operations

// UpsertTransactions writes transactions through a BulkWriter, assigning
// IDs to any that arrive without one.
func (s *FirestoreStore) UpsertTransactions(ctx context.Context, txns []insights.Transaction) error {
	bw := s.client.BulkWriter(ctx)
	for _, txn := range txns {
		if txn.ID == "" {
			txn.ID = uuid.New().String()
		}
		docID := txn.UserID + "__" + txn.ID
		if _, err := bw.Set(s.client.Collection(colTransactions).Doc(docID), txn); err != nil {
			return fmt.Errorf("failed to queue transaction write: %w", err)
		}
	}
	bw.End()
	return nil
}

// ListTransactions lists a user's transactions, optionally bounded by date.
func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]insights.Transaction, string, error) {
	query := s.client.Collection(colTransactions).Query.Where("UserID", "==", userID)

	hasDateFilter := startDate != nil || endDate != nil
	if startDate != nil {
		query = query.Where("Date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("Date", "<=", *endDate)
	}

	// When date range filters are present, Firestore requires OrderBy on
	// the range field first, so the cursor has to carry the date too.
	var err error
	if hasDateFilter {
		query, err = s.applyDateAwarePagination(ctx, query, colTransactions, pageSize, pageToken)
	} else {
		query, err = s.applyCursorPagination(query, pageSize, pageToken)
	}
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	txns := make([]insights.Transaction, 0, len(docs))
	for _, doc := range docs {
		var txn insights.Transaction
		if err := doc.DataTo(&txn); err != nil {
			return nil, "", fmt.Errorf("failed to parse transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, nextPageToken, nil
}

// Balance operations

func (s *FirestoreStore) GetBalance(ctx context.Context, userID string) (float64, error) {
	doc, err := s.client.Collection(colBalances).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	var b balanceDoc
	if err := doc.DataTo(&b); err != nil {
		return 0, fmt.Errorf("failed to parse balance: %w", err)
	}
	return b.Balance, nil
}

func (s *FirestoreStore) SetBalance(ctx context.Context, userID string, balance float64) error {
	_, err := s.client.Collection(colBalances).Doc(userID).Set(ctx, balanceDoc{UserID: userID, Balance: balance})
	return err
}

// Recurring item cache

// PutRecurringItems replaces the user's cached detection results.
func (s *FirestoreStore) PutRecurringItems(ctx context.Context, userID string, items []insights.RecurringItem) error {
	_, err := s.client.Collection(colRecurring).Doc(userID).Set(ctx, recurringDoc{UserID: userID, Items: items})
	return err
}

func (s *FirestoreStore) ListRecurringItems(ctx context.Context, userID string) ([]insights.RecurringItem, error) {
	doc, err := s.client.Collection(colRecurring).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring items: %w", err)
	}

	var rd recurringDoc
	if err := doc.DataTo(&rd); err != nil {
		return nil, fmt.Errorf("failed to parse recurring items: %w", err)
	}
	return rd.Items, nil
}

// Baseline operations

func (s *FirestoreStore) UpsertBaseline(ctx context.Context, userID string, baseline insights.MerchantBaseline) error {
	docID := userID + "__" + baseline.MerchantKey
	_, err := s.client.Collection(colBaselines).Doc(docID).Set(ctx, baselineDoc{UserID: userID, MerchantBaseline: baseline})
	return err
}

func (s *FirestoreStore) ListBaselines(ctx context.Context, userID string) ([]insights.MerchantBaseline, error) {
	query := s.client.Collection(colBaselines).Query.Where("UserID", "==", userID)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list baselines: %w", err)
	}

	baselines := make([]insights.MerchantBaseline, 0, len(docs))
	for _, doc := range docs {
		var bd baselineDoc
		if err := doc.DataTo(&bd); err != nil {
			return nil, fmt.Errorf("failed to parse baseline: %w", err)
		}
		baselines = append(baselines, bd.MerchantBaseline)
	}
	return baselines, nil
}

// Anomaly operations

// UpsertAnomaly writes an anomaly under its dedup key and reports whether
// it was newly created.
func (s *FirestoreStore) UpsertAnomaly(ctx context.Context, userID string, anomaly insights.Anomaly) (bool, error) {
	ref := s.client.Collection(colAnomalies).Doc(anomalyKey(userID, anomaly))

	created := false
	_, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		created = true
	} else if err != nil {
		return false, fmt.Errorf("failed to check anomaly: %w", err)
	}

	if _, err := ref.Set(ctx, anomalyDoc{UserID: userID, Anomaly: anomaly}); err != nil {
		return false, fmt.Errorf("failed to write anomaly: %w", err)
	}
	return created, nil
}

func (s *FirestoreStore) ListAnomalies(ctx context.Context, userID string, pageSize int32, pageToken string) ([]insights.Anomaly, string, error) {
	query := s.client.Collection(colAnomalies).Query.Where("UserID", "==", userID)

	query, err := s.applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list anomalies: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	anomalies := make([]insights.Anomaly, 0, len(docs))
	for _, doc := range docs {
		var ad anomalyDoc
		if err := doc.DataTo(&ad); err != nil {
			return nil, "", fmt.Errorf("failed to parse anomaly: %w", err)
		}
		anomalies = append(anomalies, ad.Anomaly)
	}
	return anomalies, nextPageToken, nil
}

// Prediction snapshot operations

func (s *FirestoreStore) PutSnapshots(ctx context.Context, snaps []insights.PredictionSnapshot) error {
	bw := s.client.BulkWriter(ctx)
	for _, snap := range snaps {
		docID := snapshotKey(snap.UserID, snap.Date)
		if _, err := bw.Set(s.client.Collection(colSnapshots).Doc(docID), snap); err != nil {
			return fmt.Errorf("failed to queue snapshot write: %w", err)
		}
	}
	bw.End()
	return nil
}

func (s *FirestoreStore) ListSnapshots(ctx context.Context, userID string, reconciled *bool) ([]insights.PredictionSnapshot, error) {
	query := s.client.Collection(colSnapshots).Query.Where("UserID", "==", userID)
	if reconciled != nil {
		query = query.Where("Reconciled", "==", *reconciled)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snaps := make([]insights.PredictionSnapshot, 0, len(docs))
	for _, doc := range docs {
		var snap insights.PredictionSnapshot
		if err := doc.DataTo(&snap); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Anomaly preference operations

func (s *FirestoreStore) GetAnomalyPreferences(ctx context.Context, userID string) (insights.AnomalyPreferences, error) {
	doc, err := s.client.Collection(colPreferences).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return insights.DefaultAnomalyPreferences(), nil
	}
	if err != nil {
		return insights.AnomalyPreferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	var prefs insights.AnomalyPreferences
	if err := doc.DataTo(&prefs); err != nil {
		return insights.AnomalyPreferences{}, fmt.Errorf("failed to parse preferences: %w", err)
	}
	return prefs, nil
}

func (s *FirestoreStore) UpdateAnomalyPreferences(ctx context.Context, userID string, prefs insights.AnomalyPreferences) error {
	_, err := s.client.Collection(colPreferences).Doc(userID).Set(ctx, prefs)
	return err
}

// User operations

// ListUserIDs walks the balances collection; every user with analytics
// data has a balance document.
func (s *FirestoreStore) ListUserIDs(ctx context.Context) ([]string, error) {
	iter := s.client.Collection(colBalances).Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}
