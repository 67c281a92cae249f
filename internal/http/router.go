package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/scorekeeper-service/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux.
// Methods are checked by the handlers so mismatches answer with a JSON 405.
func NewRouter(h *handlers.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ready", h.Ready)
	mux.HandleFunc("/palettes", h.Palettes)
	mux.HandleFunc("/match", h.Match)
	mux.HandleFunc("/match/events", h.Events)
	mux.HandleFunc("/match/reset", h.ResetAll)
	mux.HandleFunc("/match/palette", h.SelectPalette)
	mux.HandleFunc("/match/settings/toggle", h.ToggleSettings)
	mux.HandleFunc("/match/{side}/{action}", h.SideAction)
	return mux
}
