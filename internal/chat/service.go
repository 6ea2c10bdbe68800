// Package chat implements the user, contact, and thread operations on top of a
// snapshot store. Every mutation is validated, applied to a copy of the state,
// persisted, and only then made visible.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/metrics"
	"github.com/matheus3301/wppclone/internal/presence"
	"github.com/matheus3301/wppclone/internal/store"
	"go.uber.org/zap"
)

// TimeFormat is the message timestamp layout: ISO-8601 UTC with milliseconds.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Defaults applied to new users and to contacts without a backing user.
const (
	DefaultBio        = "Hey there! I'm using WhatsApp Clone"
	DefaultProfilePic = "https://via.placeholder.com/150"
)

// Service owns the in-memory state and serializes every operation on it.
type Service struct {
	mu       sync.Mutex
	state    *store.Snapshot
	persist  store.Snapshotter
	presence *presence.Tracker
	bus      *bus.Bus
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides message ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService loads the persisted snapshot and returns a ready service.
// Users persisted as online get a fresh heartbeat so they expire normally
// if they never reconnect.
func NewService(ctx context.Context, persist store.Snapshotter, tracker *presence.Tracker, b *bus.Bus, logger *zap.Logger, opts ...Option) (*Service, error) {
	snap, err := persist.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if tracker == nil {
		tracker = presence.NewTracker(0)
	}
	if b == nil {
		b = bus.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		state:    snap,
		persist:  persist,
		presence: tracker,
		bus:      b,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, u := range snap.Users {
		if u.Status == store.StatusOnline {
			tracker.Touch(u.Phone)
		}
	}
	metrics.UsersOnline.Set(float64(tracker.Count()))

	logger.Info("chat state loaded",
		zap.Int("users", len(snap.Users)),
		zap.Int("contact_lists", len(snap.Contacts)),
		zap.Int("thread_owners", len(snap.Chats)),
	)
	return s, nil
}

// Presence returns the heartbeat tracker backing user status.
func (s *Service) Presence() *presence.Tracker { return s.presence }

// Bus returns the event bus the service publishes on.
func (s *Service) Bus() *bus.Bus { return s.bus }

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() *store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// commit persists next and swaps it in. On failure the live state is untouched.
// Callers must hold s.mu.
func (s *Service) commit(ctx context.Context, op string, next *store.Snapshot) error {
	start := time.Now()
	err := s.persist.Save(ctx, next)
	metrics.SnapshotSaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PersistenceFailures.Inc()
		s.logger.Error("snapshot save failed, change discarded", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
	}
	s.state = next
	return nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(TimeFormat)
}

func indexUser(snap *store.Snapshot, phone string) int {
	for i := range snap.Users {
		if snap.Users[i].Phone == phone {
			return i
		}
	}
	return -1
}
