package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"applysync/internal/store"
)

type RunsHandler struct {
	Runs RunLister
}

// List serves GET /runs?limit=N.
func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 500 {
			WriteError(w, r, http.StatusBadRequest, "bad_limit", "limit must be 1..500")
			return
		}
		limit = n
	}
	runs, err := h.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	WriteJSON(w, http.StatusOK, runs)
}

type SyncHandler struct {
	Tracker *Tracker
	RunSync func(ctx context.Context) error
	Log     *zap.Logger

	// Base is the context background runs inherit.
	Base context.Context
}

func (h SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Tracker.Snapshot())
}

// Run starts a sync in the background unless one is already in progress.
func (h SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.RunSync == nil {
		WriteError(w, r, http.StatusNotImplemented, "not_supported", "manual runs are disabled")
		return
	}
	if h.Tracker.Snapshot().Running {
		WriteError(w, r, http.StatusConflict, "already_running", "a sync run is already in progress")
		return
	}
	reqID := RequestIDFrom(r.Context())
	go func() {
		if err := h.RunSync(h.Base); err != nil {
			h.Log.Warn("manual run failed", zap.String("request_id", reqID), zap.Error(err))
		}
	}()
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
