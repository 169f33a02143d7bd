package httpapi

import (
	"sync"
	"time"

	"applysync/internal/domain"
)

type SyncStatus struct {
	LastRunAt string          `json:"last_run_at"`
	LastOkAt  string          `json:"last_ok_at"`
	LastError string          `json:"last_error"`
	LastStats domain.RunStats `json:"last_stats"`
	Running   bool            `json:"running"`
}

// Tracker holds the daemon's view of the current and last sync run. It is
// shared by the scheduler and the HTTP handlers.
type Tracker struct {
	mu sync.Mutex
	st SyncStatus
}

func (t *Tracker) Snapshot() SyncStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}

// Begin marks a run as started. It returns false if one is already running.
func (t *Tracker) Begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st.Running {
		return false
	}
	t.st.Running = true
	t.st.LastRunAt = time.Now().Format(time.RFC3339)
	return true
}

func (t *Tracker) Finish(stats domain.RunStats, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().Format(time.RFC3339)
	t.st.Running = false
	t.st.LastStats = stats
	if err != nil {
		t.st.LastError = err.Error()
		return
	}
	t.st.LastError = ""
	t.st.LastOkAt = now
}
