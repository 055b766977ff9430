// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"
)

// heartbeatPeriod is how often the SSE stream emits a keepalive comment.
const heartbeatPeriod = 30 * time.Second

// handleSSE subscribes the authenticated caller and streams hub events as
// Server-Sent Events. The identity comes from the bearer token; no join
// signal is needed because SSE is one-way.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := s.coordinator.Hub().Subscribe(caller.ID)
	defer s.coordinator.Hub().Unsubscribe(sub)

	fmt.Fprintf(w, "event: connected\ndata: {\"identity\":%q}\n\n", caller.ID)
	flusher.Flush()

	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(event.Payload)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
			flusher.Flush()
		}
	}
}
