package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/status"
	"go.uber.org/zap"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	svc      *chat.Service
	logger   *zap.Logger
	started  time.Time
	upgrader websocket.Upgrader
	ping     time.Duration
	state    *status.Machine
}

// Option configures a Handler.
type Option func(*Handler)

// WithState reports the daemon lifecycle state on /health.
func WithState(m *status.Machine) Option {
	return func(h *Handler) { h.state = m }
}

// NewHandler creates a Handler serving svc.
func NewHandler(svc *chat.Service, logger *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		svc:     svc,
		logger:  logger,
		started: time.Now(),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
			return true
		}},
		ping: defaultPingPeriod,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("encode response", zap.Error(err))
	}
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, ErrorResponse{Success: false, Error: message})
}

// Fail maps a service error to its HTTP status. Persistence details stay in the log.
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chat.ErrInvalidInput),
		errors.Is(err, chat.ErrDuplicatePhone),
		errors.Is(err, chat.ErrDuplicateContact):
		h.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrNotFound):
		h.Error(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.Error(w, http.StatusInternalServerError, chat.ErrPersistence.Error())
	}
}

// decode reads a JSON body into dst. A body cut off by MaxBodySize gets a
// 413, anything else undecodable a 400.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.Error(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
