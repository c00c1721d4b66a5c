package httptransport

import (
	"context"
	"net/http"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandlers struct {
	pinger Pinger
}

func NewHealthHandlers(p Pinger) *HealthHandlers {
	return &HealthHandlers{pinger: p}
}

// Health reports the archive as "disabled" when no database is configured.
// A down archive is reported without failing the check.
func (h *HealthHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.pinger == nil {
			WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "disabled"})
			return
		}
		if err := h.pinger.Ping(r.Context()); err != nil {
			metricHealthDBDown.Add(1)
			WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "down"})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}
