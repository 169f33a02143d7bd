package httpapi

import (
	"fmt"
	"net/http"

	"applysync/internal/events"
)

type EventsHandler struct {
	Hub *events.Hub
}

// ServeSSE streams run events until the client goes away.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	if h.Hub == nil {
		WriteError(w, r, http.StatusNotImplemented, "not_supported", "events are disabled")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	fmt.Fprintf(w, "event: message\ndata: %s\n\n", events.New(events.TypePing, "", nil).Encode())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", e.Encode())
			flusher.Flush()
		}
	}
}
