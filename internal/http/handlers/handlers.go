package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/preston-bernstein/scorekeeper-service/internal/events"
	"github.com/preston-bernstein/scorekeeper-service/internal/logging"
	"github.com/preston-bernstein/scorekeeper-service/internal/match"
	"github.com/preston-bernstein/scorekeeper-service/internal/scoring"
)

// maxBodyBytes bounds JSON request bodies. Team names are free-form, so the cap
// only guards the server, not name length.
const maxBodyBytes = 1 << 20

// EventSource supplies change events for the streaming endpoint.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan events.Event, error)
}

// MutationResponse is returned by every state-changing endpoint.
type MutationResponse struct {
	Change match.Change `json:"change"`
	State  match.State  `json:"state"`
}

// Handler wires HTTP routes to the match session.
type Handler struct {
	session *match.Session
	events  EventSource
	logger  *slog.Logger
	stream  StreamConfig
}

// NewHandler constructs a Handler. A nil source makes /match/events answer 503.
func NewHandler(session *match.Session, source EventSource, logger *slog.Logger, stream StreamConfig) *Handler {
	return &Handler{
		session: session,
		events:  source,
		logger:  logger,
		stream:  stream.withDefaults(),
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodGet) {
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic once a session is attached.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodGet) {
		return
	}
	if h.session == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no match session", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "sessionId": h.session.ID()}, h.logger)
}

// Match returns the full current state.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.session.State(), h.logger)
}

// Palettes returns the selectable catalogue.
func (h *Handler) Palettes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.session.Palettes(), h.logger)
}

// ResetAll starts a new match.
func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodPost) {
		return
	}
	state := h.session.ResetAll()
	h.respond(w, match.Change{Op: match.OpResetAll, Applied: true}, state)
}

// ToggleSettings flips the settings overlay flag.
func (h *Handler) ToggleSettings(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodPost) {
		return
	}
	state := h.session.ToggleSettings()
	h.respond(w, match.Change{Op: match.OpToggleSettings, Applied: true}, state)
}

type paletteRequest struct {
	Key string `json:"key"`
}

// SelectPalette applies a catalogue entry. Unknown keys answer 200 with applied=false.
func (h *Handler) SelectPalette(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.logger, http.MethodPut, http.MethodPost) {
		return
	}
	var req paletteRequest
	if !h.decode(w, r, &req) {
		return
	}
	state, change := h.session.SelectPalette(req.Key)
	if !change.Applied {
		loggerFromContext(r, h.logger).Info("palette key not in catalogue",
			slog.String(logging.FieldPalette, req.Key))
	}
	h.respond(w, change, state)
}

type quickSetRequest struct {
	Value *int `json:"value"`
}

type nameRequest struct {
	Name *string `json:"name"`
}

// SideAction serves /match/{side}/{action}.
func (h *Handler) SideAction(w http.ResponseWriter, r *http.Request) {
	side, err := scoring.ParseSide(r.PathValue("side"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "unknown side", h.logger)
		return
	}

	switch r.PathValue("action") {
	case "increment":
		if requireMethod(w, r, h.logger, http.MethodPost) {
			h.respond(w, sideChange(match.OpIncrement, side, true), h.session.Increment(side))
		}
	case "decrement":
		if requireMethod(w, r, h.logger, http.MethodPost) {
			state, change := h.session.Decrement(side)
			h.respond(w, change, state)
		}
	case "reset":
		if requireMethod(w, r, h.logger, http.MethodPost) {
			h.respond(w, sideChange(match.OpResetSide, side, true), h.session.ResetSide(side))
		}
	case "quickset":
		if requireMethod(w, r, h.logger, http.MethodPut, http.MethodPost) {
			h.quickSet(w, r, side)
		}
	case "name":
		if requireMethod(w, r, h.logger, http.MethodPut, http.MethodPost) {
			h.teamName(w, r, side)
		}
	default:
		writeError(w, r, http.StatusNotFound, "not found", h.logger)
	}
}

func (h *Handler) quickSet(w http.ResponseWriter, r *http.Request, side scoring.Side) {
	var req quickSetRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeError(w, r, http.StatusBadRequest, "value is required", h.logger)
		return
	}
	state, err := h.session.SetQuickSetValue(side, *req.Value)
	if errors.Is(err, scoring.ErrQuickSetRange) {
		writeError(w, r, http.StatusBadRequest, "value must be between 0 and 4", h.logger)
		return
	}
	h.respond(w, sideChange(match.OpQuickSet, side, true), state)
}

func (h *Handler) teamName(w http.ResponseWriter, r *http.Request, side scoring.Side) {
	var req nameRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == nil {
		writeError(w, r, http.StatusBadRequest, "name is required", h.logger)
		return
	}
	state := h.session.SetTeamName(side, *req.Name)
	h.respond(w, sideChange(match.OpTeamName, side, true), state)
}

func (h *Handler) respond(w http.ResponseWriter, change match.Change, state match.State) {
	writeJSON(w, http.StatusOK, MutationResponse{Change: change, State: state}, h.logger)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body exceeds 1 MiB", h.logger)
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return false
	}
	return true
}

func sideChange(op match.Op, side scoring.Side, applied bool) match.Change {
	return match.Change{Op: op, Side: side.String(), Applied: applied}
}

func requireMethod(w http.ResponseWriter, r *http.Request, logger *slog.Logger, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", logger)
	return false
}
