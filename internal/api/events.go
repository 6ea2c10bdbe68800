package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/metrics"
	"go.uber.org/zap"
)

const (
	defaultPingPeriod = 30 * time.Second
	writeWait         = 10 * time.Second
	eventBuffer       = 64
)

// Frame is one event as sent over the websocket.
type Frame struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	TS      string `json:"ts"`
	Payload any    `json:"payload"`
}

// NewFrame stamps a bus event with a fresh id for the wire.
func NewFrame(evt bus.Event) Frame {
	return Frame{
		ID:      uuid.NewString(),
		Kind:    evt.Kind,
		TS:      evt.Timestamp.UTC().Format(chat.TimeFormat),
		Payload: evt.Payload,
	}
}

// Events handles GET /events. It streams every bus event as a Frame. When
// ?phone= names a user, the connection counts as that user's heartbeat: it is
// refreshed on connect and on every pong.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone != "" && !chat.ValidPhone(phone) {
		h.Error(w, http.StatusBadRequest, "invalid input: phone must be 6 digits")
		return
	}

	// Subscribe before the handshake completes so no event after it is missed.
	events, unsubscribe := h.svc.Bus().Subscribe(r.URL.Query().Get("kind"), eventBuffer)
	defer unsubscribe()

	h.touch(phone)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	metrics.EventSubscribers.Inc()
	defer metrics.EventSubscribers.Dec()
	h.logger.Debug("event stream opened", zap.String("phone", phone))

	pongWait := 2 * h.ping
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(4096)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			h.touch(phone)
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.ping)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			h.logger.Debug("event stream closed", zap.String("phone", phone))
			return
		case evt := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(NewFrame(evt)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) touch(phone string) {
	if phone == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if _, err := h.svc.Heartbeat(ctx, phone); err != nil && !errors.Is(err, chat.ErrNotFound) {
		h.logger.Warn("event stream heartbeat failed", zap.String("phone", phone), zap.Error(err))
	}
}
