package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/matheus3301/wppclone/internal/store"
)

// SendMessageRequest is the body of POST /messages.
type SendMessageRequest struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Message  string `json:"message"`
	IsImage  bool   `json:"isImage"`
}

// MessageResponse wraps the stored message in the success envelope.
type MessageResponse struct {
	Success bool          `json:"success"`
	Message store.Message `json:"message"`
}

// SendMessage handles POST /messages.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !h.decode(w, r, &req) {
		return
	}
	msg, err := h.svc.SendMessage(r.Context(), req.Sender, req.Receiver, req.Message, req.IsImage)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, MessageResponse{Success: true, Message: msg})
}

// GetMessages handles GET /messages/{user}/{contact}.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.svc.Messages(chi.URLParam(r, "user"), chi.URLParam(r, "contact")))
}

// ChatList handles GET /chats/{phone}.
func (h *Handler) ChatList(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.svc.ChatList(chi.URLParam(r, "phone")))
}
