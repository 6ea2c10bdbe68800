package bus

import "time"

// Event kinds published by the chat service. Subscribers filter by prefix,
// e.g. "message." or "presence.".
const (
	KindUserRegistered  = "user.registered"
	KindPresenceChanged = "presence.changed"
	KindProfileUpdated  = "profile.updated"
	KindContactAdded    = "contact.added"
	KindMessageSent     = "message.sent"
)

// KindDaemonState is published by the daemon lifecycle machine.
const KindDaemonState = "daemon.state_changed"

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
