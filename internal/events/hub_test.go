package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	assert.Equal(t, 2, h.Len())

	h.Publish(New(TypeRunStarted, "r1", nil))
	assert.Equal(t, TypeRunStarted, (<-a).Type)
	assert.Equal(t, "r1", (<-b).RunID)

	h.Unsubscribe(a)
	assert.Equal(t, 1, h.Len())
	_, open := <-a
	assert.False(t, open)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	for range 25 {
		h.Publish(New(TypePing, "", nil))
	}
	assert.Len(t, ch, cap(ch))
}

func TestNilHubDiscards(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() { h.Publish(New(TypePing, "", nil)) })
}

func TestEncode(t *testing.T) {
	e := New(TypeRunFinished, "r1", map[string]int{"candidatesPosted": 2})
	var back map[string]any
	require.NoError(t, json.Unmarshal([]byte(e.Encode()), &back))
	assert.Equal(t, "run_finished", back["type"])
	assert.EqualValues(t, 1, back["v"])
	assert.Equal(t, map[string]any{"candidatesPosted": float64(2)}, back["data"])
}
