package chat

import "github.com/matheus3301/wppclone/internal/store"

// PresenceChange is the payload of presence.changed events.
type PresenceChange struct {
	Phone  string `json:"phone"`
	Status string `json:"status"`
}

// ContactAdded is the payload of contact.added events.
type ContactAdded struct {
	Owner   string        `json:"owner"`
	Contact store.Contact `json:"contact"`
}

// MessageSent is the payload of message.sent events.
type MessageSent struct {
	Receiver string        `json:"receiver"`
	Message  store.Message `json:"message"`
}
