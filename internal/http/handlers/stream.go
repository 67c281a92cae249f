package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/preston-bernstein/scorekeeper-service/internal/logging"
)

const defaultHeartbeat = 15 * time.Second

// StreamConfig tunes the server-sent events endpoint.
type StreamConfig struct {
	Heartbeat time.Duration
}

func (c StreamConfig) withDefaults() StreamConfig {
	if c.Heartbeat <= 0 {
		c.Heartbeat = defaultHeartbeat
	}
	return c
}

// Events streams session changes as server-sent events. The first event is a
// snapshot of the current state; each later event carries the change and the
// state after it, with the revision as the event id. Events older than one
// already sent are dropped.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodGet) {
		return
	}
	if h.events == nil {
		writeError(w, r, http.StatusServiceUnavailable, "event stream unavailable", h.logger)
		return
	}

	ctx := r.Context()
	feed, err := h.events.Subscribe(ctx)
	if err != nil {
		logging.Error(loggerFromContext(r, h.logger), "subscribe to match events failed", err)
		writeError(w, r, http.StatusServiceUnavailable, "event stream unavailable", h.logger)
		return
	}

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	logger := loggerFromContext(r, h.logger)
	state := h.session.State()
	if err := writeEvent(w, "snapshot", state.Revision, state); err != nil {
		return
	}
	_ = rc.Flush()
	last := state.Revision

	ticker := time.NewTicker(h.stream.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		case ev, ok := <-feed:
			if !ok {
				return
			}
			if ev.Revision < last {
				continue
			}
			if ev.Revision > last {
				last = ev.Revision
			}
			if err := writeEvent(w, "change", ev.Revision, ev); err != nil {
				logging.Debug(logger, "event stream closed", slog.String("reason", err.Error()))
				return
			}
			_ = rc.Flush()
		}
	}
}

func writeEvent(w io.Writer, name string, id uint64, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n", name, id, data)
	return err
}
