package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/subboxer/pkg/domain"
)

// streamBuffer is the per-client event buffer. Slow clients miss events rather than stall
// the session.
const streamBuffer = 64

// SubscribeEvents handles the GET /events request (SSE).
//
// The optional "types" query parameter is a comma-separated list of event types to keep,
// e.g. /events?types=layers_changed,plane_changed.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("streaming not supported")
		return
	}

	filter := map[domain.EventType]bool{}
	if q := r.URL.Query().Get("types"); q != "" {
		for _, t := range strings.Split(q, ",") {
			filter[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	events, cancel := s.Session.Subscribe(streamBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.Logger.Info("event stream opened", "remote", r.RemoteAddr)

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("event stream closed", "remote", r.RemoteAddr)
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if len(filter) > 0 && !filter[e.Type] {
				continue
			}
			data, err := json.Marshal(e.Data)
			if err != nil {
				s.Logger.Warn("event encode failed", "type", e.Type, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}
