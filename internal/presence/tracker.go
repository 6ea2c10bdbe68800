// Package presence tracks which users are online from explicit heartbeats.
// A phone is online while its last heartbeat is younger than the TTL.
package presence

import (
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long a heartbeat keeps a user online.
const DefaultTTL = 90 * time.Second

// Tracker records the last heartbeat per phone.
type Tracker struct {
	mu       sync.RWMutex
	lastSeen map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewTracker creates a tracker. A non-positive ttl falls back to DefaultTTL.
func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// TTL returns the configured heartbeat lifetime.
func (t *Tracker) TTL() time.Duration { return t.ttl }

// Touch records a heartbeat and reports whether the phone was offline before.
func (t *Tracker) Touch(phone string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	last, ok := t.lastSeen[phone]
	t.lastSeen[phone] = now
	return !ok || now.Sub(last) >= t.ttl
}

// Forget drops the phone's heartbeat and reports whether it was online.
func (t *Tracker) Forget(phone string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	last, ok := t.lastSeen[phone]
	delete(t.lastSeen, phone)
	return ok && t.now().Sub(last) < t.ttl
}

// Online reports whether the phone has a live heartbeat.
func (t *Tracker) Online(phone string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	last, ok := t.lastSeen[phone]
	return ok && t.now().Sub(last) < t.ttl
}

// Count returns the number of phones with a live heartbeat.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	now := t.now()
	n := 0
	for _, last := range t.lastSeen {
		if now.Sub(last) < t.ttl {
			n++
		}
	}
	return n
}

// Expired removes and returns every phone whose heartbeat is past the TTL, sorted.
func (t *Tracker) Expired() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	var out []string
	for phone, last := range t.lastSeen {
		if now.Sub(last) >= t.ttl {
			out = append(out, phone)
			delete(t.lastSeen, phone)
		}
	}
	sort.Strings(out)
	return out
}
