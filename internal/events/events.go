package events

import (
	"encoding/json"
	"time"
)

const (
	TypePing        = "ping"
	TypeRunStarted  = "run_started"
	TypeRunFinished = "run_finished"
	TypeRunFailed   = "run_failed"
)

// Event is the envelope streamed to /events subscribers.
type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func New(typ, runID string, data any) Event {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	return Event{
		Type:    typ,
		Version: 1,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
}

func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
