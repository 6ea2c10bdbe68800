package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/matheus3301/wppclone/internal/status"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	State       string `json:"state,omitempty"`
	Users       int    `json:"users"`
	Online      int    `json:"online"`
	Subscribers int    `json:"subscribers"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health. Without a lifecycle machine the router is
// assumed to be serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      "ok",
		Users:       len(h.svc.Users()),
		Online:      h.svc.Presence().Count(),
		Subscribers: h.svc.Bus().Subscribers(),
		Uptime:      time.Since(h.started).Round(time.Second).String(),
	}
	code := http.StatusOK
	if h.state != nil {
		cur := h.state.Current()
		resp.State = string(cur)
		if cur != status.Serving {
			resp.Status = strings.ToLower(string(cur))
			code = http.StatusServiceUnavailable
		}
	}
	h.JSON(w, code, resp)
}
