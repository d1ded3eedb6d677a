package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/clearspend/backend/internal/insights"
	"github.com/clearspend/backend/internal/store"
)

// Handler exposes the insights pipeline over JSON HTTP. Authentication is
// handled upstream; the user is identified by the `user` query parameter.
type Handler struct {
	svc *InsightsService
	st  store.Store
}

// NewHandler creates the HTTP handler around a service.
func NewHandler(svc *InsightsService, st store.Store) *Handler {
	return &Handler{svc: svc, st: st}
}

// Register mounts every route on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)

	mux.HandleFunc("GET /v1/recurring", h.getRecurring)
	mux.HandleFunc("POST /v1/recurring/refresh", h.refreshRecurring)
	mux.HandleFunc("GET /v1/baselines", h.getBaselines)
	mux.HandleFunc("POST /v1/baselines/rebuild", h.rebuildBaselines)
	mux.HandleFunc("GET /v1/anomalies", h.getAnomalies)
	mux.HandleFunc("POST /v1/anomalies/scan", h.scanAnomalies)
	mux.HandleFunc("GET /v1/anomalies/preferences", h.getPreferences)
	mux.HandleFunc("PUT /v1/anomalies/preferences", h.putPreferences)
	mux.HandleFunc("GET /v1/forecast", h.getForecast)
	mux.HandleFunc("POST /v1/snapshots/reconcile", h.reconcileSnapshots)
	mux.HandleFunc("GET /v1/accuracy", h.getAccuracy)
	mux.HandleFunc("POST /v1/transactions", h.postTransactions)
	mux.HandleFunc("POST /v1/batch/run", h.runBatch)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requireUser pulls the user ID off the query string, writing a 400 when
// it is missing.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required")
		return "", false
	}
	return userID, true
}

// queryInt parses an optional integer query parameter, returning 0 when
// absent so the service applies its default.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return n, nil
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) getRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.st.ListRecurringItems(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) refreshRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	result, err := h.svc.RefreshRecurring(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getBaselines(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	baselines, err := h.st.ListBaselines(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"baselines": baselines})
}

func (h *Handler) rebuildBaselines(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	baselines, skipped, err := h.svc.RebuildBaselines(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"baselines": baselines, "skippedRecords": skipped})
}

func (h *Handler) getAnomalies(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	pageSize, err := queryInt(r, "pageSize")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	anomalies, nextToken, err := h.st.ListAnomalies(r.Context(), userID, int32(pageSize), r.URL.Query().Get("pageToken"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"anomalies": anomalies, "nextPageToken": nextToken})
}

func (h *Handler) scanAnomalies(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	lookback, err := queryInt(r, "lookbackDays")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.ScanAnomalies(r.Context(), userID, lookback)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	prefs, err := h.st.GetAnomalyPreferences(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) putPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var prefs insights.AnomalyPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preferences payload")
		return
	}
	if prefs.SensitivityLevel < 1 || prefs.SensitivityLevel > 10 {
		writeError(w, http.StatusBadRequest, "sensitivityLevel must be between 1 and 10")
		return
	}
	if err := h.st.UpdateAnomalyPreferences(r.Context(), userID, prefs); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) getForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	horizon, err := queryInt(r, "horizonDays")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	forecast, err := h.svc.Forecast(r.Context(), userID, horizon)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (h *Handler) reconcileSnapshots(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ReconcileSnapshots(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getAccuracy(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	window, err := queryInt(r, "windowDays")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics, err := h.svc.AccuracyReport(r.Context(), userID, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// transactionsPayload seeds transaction history (and optionally the
// current balance) for a user, primarily for local development against
// the memory store.
type transactionsPayload struct {
	UserID         string                 `json:"userId"`
	CurrentBalance *float64               `json:"currentBalance,omitempty"`
	Transactions   []insights.Transaction `json:"transactions"`
}

func (h *Handler) postTransactions(w http.ResponseWriter, r *http.Request) {
	var payload transactionsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid transactions payload")
		return
	}
	if payload.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	for i := range payload.Transactions {
		payload.Transactions[i].UserID = payload.UserID
	}
	if err := h.st.UpsertTransactions(r.Context(), payload.Transactions); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if payload.CurrentBalance != nil {
		if err := h.st.SetBalance(r.Context(), payload.UserID, *payload.CurrentBalance); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ingested": len(payload.Transactions)})
}

// runBatch kicks off the full pipeline for every user. Meant to be called
// by a scheduler, so it takes no user parameter.
func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.RunAllUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
