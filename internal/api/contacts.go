package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/matheus3301/wppclone/internal/store"
)

// AddContactRequest is the body of POST /contacts.
type AddContactRequest struct {
	UserPhone    string `json:"userPhone"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
}

// ContactResponse wraps the new contact in the success envelope.
type ContactResponse struct {
	Success bool          `json:"success"`
	Contact store.Contact `json:"contact"`
}

// AddContact handles POST /contacts.
func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	var req AddContactRequest
	if !h.decode(w, r, &req) {
		return
	}
	contact, err := h.svc.AddContact(r.Context(), req.UserPhone, req.ContactName, req.ContactPhone)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, ContactResponse{Success: true, Contact: contact})
}

// ListContacts handles GET /contacts/{phone}.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.svc.Contacts(chi.URLParam(r, "phone")))
}
