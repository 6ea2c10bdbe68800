package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/metrics"
	"github.com/matheus3301/wppclone/internal/store"
	"go.uber.org/zap"
)

// ProfileUpdate carries the fields to change. Nil means leave as is.
type ProfileUpdate struct {
	Name       *string
	Bio        *string
	ProfilePic *string
}

// Register creates a user and its empty contact list and thread map.
func (s *Service) Register(ctx context.Context, name, phone string) (store.User, error) {
	name = SanitizeName(name)
	if name == "" {
		return store.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := CheckPhone("phone", phone); err != nil {
		return store.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexUser(s.state, phone) >= 0 {
		return store.User{}, fmt.Errorf("%w: %s", ErrDuplicatePhone, phone)
	}

	user := store.User{
		Name:       name,
		Phone:      phone,
		Bio:        DefaultBio,
		ProfilePic: DefaultProfilePic,
		Status:     store.StatusOnline,
	}

	next := s.state.Clone()
	next.Users = append(next.Users, user)
	if _, ok := next.Contacts[phone]; !ok {
		next.Contacts[phone] = []store.Contact{}
	}
	if _, ok := next.Chats[phone]; !ok {
		next.Chats[phone] = make(map[string][]store.Message)
	}
	if err := s.commit(ctx, "register", next); err != nil {
		return store.User{}, err
	}

	s.presence.Touch(phone)
	metrics.UsersRegistered.Inc()
	metrics.UsersOnline.Set(float64(s.presence.Count()))
	s.bus.Emit(bus.KindUserRegistered, user)
	s.logger.Info("user registered", zap.String("phone", phone))
	return user, nil
}

// Login marks the user online and returns it.
func (s *Service) Login(ctx context.Context, phone string) (store.User, error) {
	if err := CheckPhone("phone", phone); err != nil {
		return store.User{}, err
	}
	return s.markOnline(ctx, "login", phone)
}

// Heartbeat refreshes the user's presence and returns it.
func (s *Service) Heartbeat(ctx context.Context, phone string) (store.User, error) {
	if err := CheckPhone("phone", phone); err != nil {
		return store.User{}, err
	}
	return s.markOnline(ctx, "heartbeat", phone)
}

func (s *Service) markOnline(ctx context.Context, op, phone string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexUser(s.state, phone)
	if i < 0 {
		return store.User{}, fmt.Errorf("%w: user %s", ErrNotFound, phone)
	}

	if s.state.Users[i].Status != store.StatusOnline {
		next := s.state.Clone()
		next.Users[i].Status = store.StatusOnline
		if err := s.commit(ctx, op, next); err != nil {
			return store.User{}, err
		}
		s.bus.Emit(bus.KindPresenceChanged, PresenceChange{Phone: phone, Status: store.StatusOnline})
	}
	s.presence.Touch(phone)
	metrics.UsersOnline.Set(float64(s.presence.Count()))
	return s.state.Users[i], nil
}

// Logout marks the user offline. Unknown phones are ignored.
func (s *Service) Logout(ctx context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexUser(s.state, phone)
	if i < 0 {
		return nil
	}

	if s.state.Users[i].Status != store.StatusOffline {
		next := s.state.Clone()
		next.Users[i].Status = store.StatusOffline
		if err := s.commit(ctx, "logout", next); err != nil {
			return err
		}
		s.bus.Emit(bus.KindPresenceChanged, PresenceChange{Phone: phone, Status: store.StatusOffline})
	}
	s.presence.Forget(phone)
	metrics.UsersOnline.Set(float64(s.presence.Count()))
	return nil
}

// ExpirePresence flips every user with a lapsed heartbeat to offline in a single write.
func (s *Service) ExpirePresence(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := s.presence.Expired()
	metrics.UsersOnline.Set(float64(s.presence.Count()))
	if len(expired) == 0 {
		return nil, nil
	}

	next := s.state.Clone()
	var changed []string
	for _, phone := range expired {
		i := indexUser(next, phone)
		if i < 0 || next.Users[i].Status == store.StatusOffline {
			continue
		}
		next.Users[i].Status = store.StatusOffline
		changed = append(changed, phone)
	}
	if len(changed) == 0 {
		return nil, nil
	}
	if err := s.commit(ctx, "expire_presence", next); err != nil {
		// Re-arm the heartbeats so the next sweep retries.
		for _, phone := range changed {
			s.presence.Touch(phone)
		}
		return nil, err
	}
	for _, phone := range changed {
		s.bus.Emit(bus.KindPresenceChanged, PresenceChange{Phone: phone, Status: store.StatusOffline})
	}
	return changed, nil
}

// Users returns every registered user in registration order.
func (s *Service) Users() []store.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.User{}, s.state.Users...)
}

// User returns the user registered at phone.
func (s *Service) User(phone string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexUser(s.state, phone)
	if i < 0 {
		return store.User{}, fmt.Errorf("%w: user %s", ErrNotFound, phone)
	}
	return s.state.Users[i], nil
}

// UpdateProfile applies the provided fields, then copies the user's name and
// picture into every contact record that points at this user, across all owners.
func (s *Service) UpdateProfile(ctx context.Context, phone string, upd ProfileUpdate) (store.User, error) {
	var name, bio, pic string
	if upd.Name != nil {
		name = SanitizeName(*upd.Name)
		if name == "" {
			return store.User{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
	}
	if upd.Bio != nil {
		bio = sanitize(*upd.Bio, maxBioRunes)
	}
	if upd.ProfilePic != nil {
		pic = strings.TrimSpace(*upd.ProfilePic)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexUser(s.state, phone)
	if i < 0 {
		return store.User{}, fmt.Errorf("%w: user %s", ErrNotFound, phone)
	}

	next := s.state.Clone()
	user := &next.Users[i]
	if upd.Name != nil {
		user.Name = name
	}
	if upd.Bio != nil {
		user.Bio = bio
	}
	if upd.ProfilePic != nil {
		user.ProfilePic = pic
	}

	propagated := 0
	for _, list := range next.Contacts {
		for j := range list {
			if list[j].Phone == phone && list[j].IsUser {
				list[j].Name = user.Name
				list[j].ProfilePic = user.ProfilePic
				propagated++
			}
		}
	}

	if err := s.commit(ctx, "update_profile", next); err != nil {
		return store.User{}, err
	}

	updated := next.Users[i]
	metrics.ProfileUpdates.Inc()
	s.bus.Emit(bus.KindProfileUpdated, updated)
	s.logger.Info("profile updated", zap.String("phone", phone), zap.Int("contacts_propagated", propagated))
	return updated, nil
}
